// Package export writes packed hierarchies to disk: SVG and PNG snapshots of
// the current view, a SQLite layout database, and a layout JSON document.
package export

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/vanderheijden86/packzoom/pkg/debug"
	"github.com/vanderheijden86/packzoom/pkg/metrics"
	"github.com/vanderheijden86/packzoom/pkg/model"

	json "github.com/goccy/go-json"
	_ "modernc.org/sqlite"
)

// SQLiteExporter writes a packed hierarchy to a layout database.
type SQLiteExporter struct {
	Hierarchy *model.Hierarchy
	Title     string
	Version   string
}

// NewSQLiteExporter creates an exporter for h.
func NewSQLiteExporter(h *model.Hierarchy) *SQLiteExporter {
	return &SQLiteExporter{Hierarchy: h, Version: "dev"}
}

// ExportSQLite writes h to a fresh database at path.
func ExportSQLite(path string, h *model.Hierarchy) error {
	return NewSQLiteExporter(h).Export(path)
}

// Export writes the database, replacing any existing file at path.
func (e *SQLiteExporter) Export(path string) error {
	if e.Hierarchy == nil || e.Hierarchy.Len() == 0 {
		return model.ErrEmptyTree
	}
	defer metrics.Timer(metrics.Export)()
	start := time.Now()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing database: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	dbClosed := false
	defer func() {
		if !dbClosed {
			db.Close()
		}
	}()

	if err := CreateSchema(db); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	if err := e.insertNodes(db); err != nil {
		return fmt.Errorf("insert nodes: %w", err)
	}

	if err := e.insertMeta(db); err != nil {
		return fmt.Errorf("insert meta: %w", err)
	}

	if err := db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	dbClosed = true

	debug.LogTiming("sqlite export "+path, time.Since(start))
	return nil
}

// insertNodes inserts every node in pre-order.
func (e *SQLiteExporter) insertNodes(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO nodes (id, parent, name, slug, datum_id, depth, kind, size, value, x, y, r, classes, path)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, n := range ExportNodes(e.Hierarchy) {
		var size *float64
		if n.Size > 0 {
			size = &n.Size
		}
		_, err := stmt.Exec(
			n.ID,
			n.Parent,
			n.Name,
			nullString(n.Slug),
			nullString(n.DatumID),
			n.Depth,
			n.Kind,
			size,
			n.Value,
			n.X,
			n.Y,
			n.R,
			n.Classes,
			n.Path,
		)
		if err != nil {
			return fmt.Errorf("insert node %d (%q): %w", n.ID, n.Name, err)
		}
	}

	return tx.Commit()
}

// insertMeta inserts export metadata.
func (e *SQLiteExporter) insertMeta(db *sql.DB) error {
	m := newExportMeta(e.Hierarchy, e.Title, e.Version)
	meta := map[string]string{
		"version":        m.Version,
		"generated_at":   m.GeneratedAt.Format(time.RFC3339),
		"node_count":     strconv.Itoa(m.NodeCount),
		"leaf_count":     strconv.Itoa(m.LeafCount),
		"total_value":    strconv.FormatFloat(m.TotalValue, 'g', -1, 64),
		"schema_version": strconv.Itoa(m.SchemaVersion),
	}
	if m.Title != "" {
		meta["title"] = m.Title
	}

	for key, value := range meta {
		if err := InsertMetaValue(db, key, value); err != nil {
			return fmt.Errorf("insert meta %s: %w", key, err)
		}
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// ExportJSON writes the packed layout and metadata as an indented JSON
// document.
func ExportJSON(path string, h *model.Hierarchy, title, version string) error {
	if h == nil || h.Len() == 0 {
		return model.ErrEmptyTree
	}
	defer metrics.Timer(metrics.Export)()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	doc := struct {
		Meta  ExportMeta   `json:"meta"`
		Nodes []ExportNode `json:"nodes"`
	}{
		Meta:  newExportMeta(h, title, version),
		Nodes: ExportNodes(h),
	}
	return writeJSON(path, doc)
}

// writeJSON writes data as JSON to a file.
func writeJSON(path string, data interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
