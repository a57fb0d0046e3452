package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/edupricing/availability-go/internal/errors"
	"github.com/edupricing/availability-go/internal/ingest"
)

// historyRetention is how many prior payloads are kept per slug. Older
// rows are deleted right after each write.
const historyRetention = 3

// CacheRecord is the live cached payload for one institution slug.
type CacheRecord struct {
	Slug      string
	Payload   ingest.Payload
	UpdatedAt time.Time
}

// HistoryRecord is one archived payload, kept for forensic rollback. It is
// never served to clients directly.
type HistoryRecord struct {
	ID        int64
	Slug      string
	Payload   ingest.Payload
	CreatedAt time.Time
}

// ReadCache returns the live record for slug, or nil when nothing is
// cached yet.
func (db *DB) ReadCache(ctx context.Context, slug string) (*CacheRecord, error) {
	query := `SELECT payload, updated_at FROM availability_cache WHERE slug = ?`

	var raw string
	var updatedAt int64
	err := db.conn.QueryRowContext(ctx, query, slug).Scan(&raw, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewStorageError("read cache", err)
	}

	record := &CacheRecord{Slug: slug, UpdatedAt: time.Unix(updatedAt, 0)}
	if err := json.Unmarshal([]byte(raw), &record.Payload); err != nil {
		return nil, apperrors.NewStorageError("read cache", fmt.Errorf("decode payload for %q: %w", slug, err))
	}
	return record, nil
}

// WriteCache overwrites the live record for slug, archives the payload to
// history, and prunes history beyond the retention bound. All three steps
// run in one transaction so a failure partway leaves the previous state
// intact. Returns the new updatedAt.
func (db *DB) WriteCache(ctx context.Context, slug string, payload ingest.Payload) (time.Time, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return time.Time{}, apperrors.NewStorageError("write cache", err)
	}

	now := time.Now()
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return time.Time{}, apperrors.NewStorageError("write cache", err)
	}
	defer func() { _ = tx.Rollback() }()

	upsert := `
	INSERT INTO availability_cache (slug, payload, updated_at)
	VALUES (?, ?, ?)
	ON CONFLICT(slug) DO UPDATE SET
		payload = excluded.payload,
		updated_at = excluded.updated_at`
	if _, err := tx.ExecContext(ctx, upsert, slug, string(raw), now.Unix()); err != nil {
		return time.Time{}, apperrors.NewStorageError("write cache", err)
	}

	appendHistory := `
	INSERT INTO availability_cache_history (slug, payload, created_at)
	VALUES (?, ?, ?)`
	if _, err := tx.ExecContext(ctx, appendHistory, slug, string(raw), now.Unix()); err != nil {
		return time.Time{}, apperrors.NewStorageError("write cache", err)
	}

	// Same-second writes are ordered by rowid.
	prune := `
	DELETE FROM availability_cache_history
	WHERE slug = ? AND id NOT IN (
		SELECT id FROM availability_cache_history
		WHERE slug = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	)`
	if _, err := tx.ExecContext(ctx, prune, slug, slug, historyRetention); err != nil {
		return time.Time{}, apperrors.NewStorageError("write cache", err)
	}

	if err := tx.Commit(); err != nil {
		return time.Time{}, apperrors.NewStorageError("write cache", err)
	}
	return time.Unix(now.Unix(), 0), nil
}

// ReadHistory returns up to n archived payloads for slug, newest first.
// n is capped at the retention bound.
func (db *DB) ReadHistory(ctx context.Context, slug string, n int) ([]HistoryRecord, error) {
	if n <= 0 || n > historyRetention {
		n = historyRetention
	}

	query := `
	SELECT id, payload, created_at FROM availability_cache_history
	WHERE slug = ?
	ORDER BY created_at DESC, id DESC
	LIMIT ?`
	rows, err := db.conn.QueryContext(ctx, query, slug, n)
	if err != nil {
		return nil, apperrors.NewStorageError("read history", err)
	}
	defer func() { _ = rows.Close() }()

	var records []HistoryRecord
	for rows.Next() {
		var rec HistoryRecord
		var raw string
		var createdAt int64
		if err := rows.Scan(&rec.ID, &raw, &createdAt); err != nil {
			return nil, apperrors.NewStorageError("read history", err)
		}
		if err := json.Unmarshal([]byte(raw), &rec.Payload); err != nil {
			return nil, apperrors.NewStorageError("read history", fmt.Errorf("decode payload for %q: %w", slug, err))
		}
		rec.Slug = slug
		rec.CreatedAt = time.Unix(createdAt, 0)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("read history", err)
	}
	return records, nil
}

// CountCacheRecords returns the number of live cache records. Used by the
// readiness probe.
func (db *DB) CountCacheRecords(ctx context.Context) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM availability_cache`).Scan(&count)
	if err != nil {
		return 0, apperrors.NewStorageError("count cache", err)
	}
	return count, nil
}
