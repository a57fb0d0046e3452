package objstore

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestNewRequiresAllFields(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"Missing endpoint", Config{AccessKeyID: "k", SecretKey: "s", BucketName: "b"}},
		{"Missing access key", Config{Endpoint: "https://e", SecretKey: "s", BucketName: "b"}},
		{"Missing secret", Config{Endpoint: "https://e", AccessKeyID: "k", BucketName: "b"}},
		{"Missing bucket", Config{Endpoint: "https://e", AccessKeyID: "k", SecretKey: "s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(context.Background(), tt.cfg); err == nil {
				t.Error("expected error for incomplete config")
			}
		})
	}
}

func TestCompressRoundTrip(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "source.db")
	compressedPath := filepath.Join(dir, "source.db.zst")
	restoredPath := filepath.Join(dir, "restored.db")

	content := bytes.Repeat([]byte("availability cache payload "), 1000)
	if err := os.WriteFile(srcPath, content, 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	if err := CompressFile(srcPath, compressedPath); err != nil {
		t.Fatalf("CompressFile failed: %v", err)
	}

	info, err := os.Stat(compressedPath)
	if err != nil {
		t.Fatalf("stat compressed: %v", err)
	}
	if info.Size() >= int64(len(content)) {
		t.Errorf("compressed size %d not smaller than source %d", info.Size(), len(content))
	}

	compressed, err := os.Open(compressedPath)
	if err != nil {
		t.Fatalf("open compressed: %v", err)
	}
	defer func() { _ = compressed.Close() }()

	if err := DecompressStream(compressed, restoredPath); err != nil {
		t.Fatalf("DecompressStream failed: %v", err)
	}

	restored, err := os.ReadFile(restoredPath)
	if err != nil {
		t.Fatalf("read restored: %v", err)
	}
	if !bytes.Equal(restored, content) {
		t.Error("restored content differs from source")
	}
}
