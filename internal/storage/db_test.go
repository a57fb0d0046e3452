package storage

import (
	"context"
	"path/filepath"
	"testing"
)

func TestNewCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "availability.db")

	db, err := New(path)
	if err != nil {
		t.Fatalf("New(%q) failed: %v", path, err)
	}
	defer func() { _ = db.Close() }()

	if db.Path() != path {
		t.Errorf("Path() = %q, want %q", db.Path(), path)
	}
}

func TestCreateSnapshotFile(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if _, err := db.WriteCache(ctx, "uvm", testPayload("Enfermería")); err != nil {
		t.Fatalf("WriteCache failed: %v", err)
	}

	dest := filepath.Join(t.TempDir(), "snapshot.db")
	if err := db.CreateSnapshotFile(ctx, dest); err != nil {
		t.Fatalf("CreateSnapshotFile failed: %v", err)
	}

	// The snapshot is a fully usable database.
	snap, err := New(dest)
	if err != nil {
		t.Fatalf("open snapshot failed: %v", err)
	}
	defer func() { _ = snap.Close() }()

	record, err := snap.ReadCache(ctx, "uvm")
	if err != nil {
		t.Fatalf("ReadCache on snapshot failed: %v", err)
	}
	if record == nil || record.Payload.Availability[0].Programa != "Enfermería" {
		t.Errorf("snapshot record = %+v", record)
	}
}
