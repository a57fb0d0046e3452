package storage

import (
	"database/sql"
	"fmt"
)

// InitSchema creates all necessary tables and indexes.
// Note: WAL mode is configured in db.go.
func InitSchema(db *sql.DB) error {
	if err := createCacheTable(db); err != nil {
		return err
	}
	return createCacheHistoryTable(db)
}

func createCacheTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS availability_cache (
		slug TEXT PRIMARY KEY,
		payload TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);`

	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to create availability_cache table: %w", err)
	}
	return nil
}

func createCacheHistoryTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS availability_cache_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		slug TEXT NOT NULL,
		payload TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_cache_history_slug
		ON availability_cache_history(slug, created_at DESC);`

	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to create availability_cache_history table: %w", err)
	}
	return nil
}
