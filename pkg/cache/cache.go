// Package cache provides SQLite-backed storage for parsed file models so
// unchanged files are not re-parsed between runs. The database lives in the
// configured cache directory as parse.db.
package cache

import (
	"database/sql"
	"fmt"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// schemaSQL defines the SQLite schema for the parse cache.
// Tables:
//   - file_index: content hash and parse time per source file
//   - models: serialized FileModel per source file
const schemaSQL = `
CREATE TABLE IF NOT EXISTS file_index (
    file_path TEXT PRIMARY KEY,
    content_hash TEXT NOT NULL,
    parsed_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS models (
    file_path TEXT PRIMARY KEY,
    model_json TEXT NOT NULL
);
`

// Cache manages the parse.db SQLite database.
type Cache struct {
	db     *sql.DB
	dbPath string
}

// Open opens or creates the cache database in the given directory and
// initializes the schema if the database is new.
func Open(dir string) (*Cache, error) {
	dbPath := filepath.Join(dir, "parse.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	// WAL mode for concurrent readers during a parse run.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	c := &Cache{db: db, dbPath: dbPath}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return c, nil
}

// Close closes the database connection.
func (c *Cache) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Clear removes all cached data.
func (c *Cache) Clear() error {
	if _, err := c.db.Exec("DELETE FROM models; DELETE FROM file_index;"); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	return nil
}

// Path returns the database file path.
func (c *Cache) Path() string {
	return c.dbPath
}

// Stats holds cache statistics.
type Stats struct {
	FileCount  int64
	ModelCount int64
}

// GetStats returns statistics about the cache contents.
func (c *Cache) GetStats() (*Stats, error) {
	var stats Stats

	if err := c.db.QueryRow("SELECT COUNT(*) FROM file_index").Scan(&stats.FileCount); err != nil {
		return nil, fmt.Errorf("count file index: %w", err)
	}
	if err := c.db.QueryRow("SELECT COUNT(*) FROM models").Scan(&stats.ModelCount); err != nil {
		return nil, fmt.Errorf("count models: %w", err)
	}
	return &stats, nil
}
