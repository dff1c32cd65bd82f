package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fischerjooo/c2puml-sub000/pkg/model"
)

// HashContent returns the content hash used for change detection.
func HashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// GetModel retrieves the cached model for a file, but only when the stored
// content hash matches. The second return value reports a usable hit.
func (c *Cache) GetModel(path, hash string) (*model.FileModel, bool, error) {
	var storedHash string
	err := c.db.QueryRow(
		"SELECT content_hash FROM file_index WHERE file_path = ?", path,
	).Scan(&storedHash)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get file hash %s: %w", path, err)
	}
	if storedHash != hash {
		return nil, false, nil
	}

	var modelJSON string
	err = c.db.QueryRow(
		"SELECT model_json FROM models WHERE file_path = ?", path,
	).Scan(&modelJSON)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get model %s: %w", path, err)
	}

	fm := &model.FileModel{}
	if err := json.Unmarshal([]byte(modelJSON), fm); err != nil {
		// A corrupt row is treated as a miss; the caller re-parses and
		// overwrites it.
		return nil, false, nil
	}
	return fm, true, nil
}

// PutModel stores a parsed model and its content hash.
func (c *Cache) PutModel(path, hash string, fm *model.FileModel) error {
	data, err := json.Marshal(fm)
	if err != nil {
		return fmt.Errorf("marshal model %s: %w", path, err)
	}

	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if _, err := tx.Exec(`
		INSERT OR REPLACE INTO file_index (file_path, content_hash, parsed_at)
		VALUES (?, ?, ?)`,
		path, hash, time.Now().Format(time.RFC3339),
	); err != nil {
		tx.Rollback()
		return fmt.Errorf("save file entry %s: %w", path, err)
	}
	if _, err := tx.Exec(`
		INSERT OR REPLACE INTO models (file_path, model_json) VALUES (?, ?)`,
		path, string(data),
	); err != nil {
		tx.Rollback()
		return fmt.Errorf("save model %s: %w", path, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// DeleteFile removes one file's rows from both tables.
func (c *Cache) DeleteFile(path string) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM file_index WHERE file_path = ?", path); err != nil {
		tx.Rollback()
		return fmt.Errorf("delete file entry %s: %w", path, err)
	}
	if _, err := tx.Exec("DELETE FROM models WHERE file_path = ?", path); err != nil {
		tx.Rollback()
		return fmt.Errorf("delete model %s: %w", path, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// PruneStale removes rows for files no longer in the provided set.
// Returns the number of files pruned.
func (c *Cache) PruneStale(validPaths map[string]bool) (int, error) {
	rows, err := c.db.Query("SELECT file_path FROM file_index ORDER BY file_path")
	if err != nil {
		return 0, fmt.Errorf("query file entries: %w", err)
	}
	defer rows.Close()

	var stale []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return 0, fmt.Errorf("scan row: %w", err)
		}
		if !validPaths[path] {
			stale = append(stale, path)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate rows: %w", err)
	}

	for i, path := range stale {
		if err := c.DeleteFile(path); err != nil {
			return i, err
		}
	}
	return len(stale), nil
}
