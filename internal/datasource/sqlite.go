package datasource

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/packzoom/pkg/model"
)

// SQLiteReader reads the dataset back out of a layout database.
type SQLiteReader struct {
	db   *sql.DB
	path string
}

// NewSQLiteReader opens path read-only.
func NewSQLiteReader(path string) (*SQLiteReader, error) {
	dsn := fmt.Sprintf("file:%s?mode=ro&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}
	return &SQLiteReader{db: db, path: path}, nil
}

// Close closes the database connection.
func (r *SQLiteReader) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// LoadTree rebuilds the dataset from the nodes table. Rows are stored in
// pre-order, so every parent is seen before its children.
func (r *SQLiteReader) LoadTree(ctx context.Context) (*model.Datum, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, parent, name, slug, datum_id, size
		FROM nodes
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query nodes in %s: %w", r.path, err)
	}
	defer rows.Close()

	byID := make(map[int64]*model.Datum)
	var root *model.Datum
	for rows.Next() {
		var (
			id          int64
			parent      sql.NullInt64
			name        string
			slug, datum sql.NullString
			size        sql.NullFloat64
		)
		if err := rows.Scan(&id, &parent, &name, &slug, &datum, &size); err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		d := &model.Datum{Name: name, Slug: slug.String, ID: datum.String}
		if size.Valid {
			d.Size = model.Weight(size.Float64)
		}
		byID[id] = d

		if !parent.Valid {
			if root != nil {
				return nil, fmt.Errorf("%s: more than one root node", r.path)
			}
			root = d
			continue
		}
		p, ok := byID[parent.Int64]
		if !ok {
			return nil, fmt.Errorf("%s: node %d listed before its parent %d", r.path, id, parent.Int64)
		}
		p.Children = append(p.Children, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating nodes: %w", err)
	}
	if root == nil {
		return nil, fmt.Errorf("%s: %w", r.path, model.ErrEmptyTree)
	}
	return root, nil
}
