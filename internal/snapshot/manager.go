// Package snapshot persists the SQLite cache database to an S3-compatible
// object store, so a fresh instance can warm-start from the last uploaded
// copy instead of an empty cache.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/edupricing/availability-go/internal/logger"
	"github.com/edupricing/availability-go/internal/metrics"
	"github.com/edupricing/availability-go/internal/objstore"
	"github.com/edupricing/availability-go/internal/storage"
)

// Manager handles snapshot upload and restore for one database file.
type Manager struct {
	client  *objstore.Client
	key     string
	tempDir string
	metrics *metrics.Metrics
	log     *logger.Logger
}

// New creates a snapshot manager. key is the object key the compressed
// snapshot lives under.
func New(client *objstore.Client, key, tempDir string, m *metrics.Metrics, log *logger.Logger) *Manager {
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &Manager{
		client:  client,
		key:     key,
		tempDir: tempDir,
		metrics: m,
		log:     log.WithModule("snapshot"),
	}
}

// RestoreIfMissing downloads and decompresses the latest snapshot into
// dbPath when no database file exists yet. Reports whether a restore
// happened. A missing remote snapshot is not an error; the service simply
// starts cold.
func (m *Manager) RestoreIfMissing(ctx context.Context, dbPath string) (bool, error) {
	if _, err := os.Stat(dbPath); err == nil {
		m.log.WithField("path", dbPath).Info("database exists, skipping snapshot restore")
		return false, nil
	}

	body, etag, err := m.client.Download(ctx, m.key)
	if err != nil {
		if errors.Is(err, objstore.ErrNotFound) {
			m.log.Info("no remote snapshot, starting with empty cache")
			return false, nil
		}
		m.metrics.RecordSnapshotOp("restore", "error")
		return false, fmt.Errorf("download snapshot: %w", err)
	}
	defer func() { _ = body.Close() }()

	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return false, fmt.Errorf("create data directory: %w", err)
		}
	}

	if err := objstore.DecompressStream(body, dbPath); err != nil {
		_ = os.Remove(dbPath)
		m.metrics.RecordSnapshotOp("restore", "error")
		return false, fmt.Errorf("decompress snapshot: %w", err)
	}

	m.metrics.RecordSnapshotOp("restore", "success")
	m.log.WithField("etag", etag).Info("restored cache database from snapshot")
	return true, nil
}

// Upload captures a consistent copy of the database, compresses it and
// uploads it. Returns the ETag of the uploaded object.
func (m *Manager) Upload(ctx context.Context, db *storage.DB) (string, error) {
	snapshotPath := filepath.Join(m.tempDir, fmt.Sprintf("availability_%d.db", time.Now().UnixNano()))
	if err := db.CreateSnapshotFile(ctx, snapshotPath); err != nil {
		m.metrics.RecordSnapshotOp("upload", "error")
		return "", err
	}
	defer func() { _ = os.Remove(snapshotPath) }()

	compressedPath := snapshotPath + ".zst"
	if err := objstore.CompressFile(snapshotPath, compressedPath); err != nil {
		m.metrics.RecordSnapshotOp("upload", "error")
		return "", err
	}
	defer func() { _ = os.Remove(compressedPath) }()

	compressed, err := os.Open(compressedPath)
	if err != nil {
		m.metrics.RecordSnapshotOp("upload", "error")
		return "", fmt.Errorf("open compressed snapshot: %w", err)
	}
	defer func() { _ = compressed.Close() }()

	etag, err := m.client.Upload(ctx, m.key, compressed, "application/zstd")
	if err != nil {
		m.metrics.RecordSnapshotOp("upload", "error")
		return "", err
	}

	m.metrics.RecordSnapshotOp("upload", "success")
	m.log.WithField("etag", etag).Info("uploaded cache snapshot")
	return etag, nil
}

// Run uploads a snapshot every interval until the context is canceled.
// Upload failures are logged and the loop keeps going.
func (m *Manager) Run(ctx context.Context, db *storage.DB, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := m.Upload(ctx, db); err != nil {
				m.log.WithError(err).Error("periodic snapshot upload failed")
			}
		}
	}
}
