package export

import (
	"database/sql"
	"fmt"
)

// Schema version for tracking migrations
const SchemaVersion = 1

// CreateSchema creates all tables and indexes in the database.
func CreateSchema(db *sql.DB) error {
	if err := createNodesTable(db); err != nil {
		return fmt.Errorf("create nodes table: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}

	if err := createMetaTable(db); err != nil {
		return fmt.Errorf("create meta table: %w", err)
	}

	return nil
}

// createNodesTable creates the packed node table. Rows are inserted in
// pre-order so readers can rebuild the tree in one pass.
func createNodesTable(db *sql.DB) error {
	nodesSQL := `
		CREATE TABLE IF NOT EXISTS nodes (
			id INTEGER PRIMARY KEY,
			parent INTEGER REFERENCES nodes(id),
			name TEXT NOT NULL,
			slug TEXT,
			datum_id TEXT,
			depth INTEGER NOT NULL,
			kind TEXT NOT NULL,
			size REAL,
			value REAL NOT NULL,
			x REAL NOT NULL,
			y REAL NOT NULL,
			r REAL NOT NULL,
			classes TEXT NOT NULL,
			path TEXT NOT NULL
		)
	`
	if _, err := db.Exec(nodesSQL); err != nil {
		return err
	}
	return nil
}

// createIndexes creates lookup indexes for common queries.
func createIndexes(db *sql.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_nodes_parent ON nodes(parent)`,
		`CREATE INDEX IF NOT EXISTS idx_nodes_depth ON nodes(depth)`,
		`CREATE INDEX IF NOT EXISTS idx_nodes_path ON nodes(path)`,
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}

// createMetaTable creates the export metadata table.
func createMetaTable(db *sql.DB) error {
	metaSQL := `
		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`
	if _, err := db.Exec(metaSQL); err != nil {
		return fmt.Errorf("create meta table: %w", err)
	}
	return nil
}

// InsertMetaValue inserts or updates a metadata key-value pair.
func InsertMetaValue(db *sql.DB, key, value string) error {
	_, err := db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)`, key, value)
	return err
}
