package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestUpstreamError_Unwrap(t *testing.T) {
	t.Parallel()

	inner := errors.New("connection reset")
	err := NewUpstreamError("https://sheets.googleapis.com/v4/spreadsheets/x", 502, inner)

	if !errors.Is(err, inner) {
		t.Error("expected errors.Is to find wrapped error")
	}

	var ue *UpstreamError
	if !errors.As(err, &ue) {
		t.Fatal("expected errors.As to match *UpstreamError")
	}
	if ue.Status != 502 {
		t.Errorf("expected status 502, got %d", ue.Status)
	}
}

func TestIsQuotaExceeded(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("boom"), false},
		{"upstream 500", NewUpstreamError("u", 500, nil), false},
		{"upstream 429", NewUpstreamError("u", 429, nil), true},
		{"wrapped 429", fmt.Errorf("ingest: %w", NewUpstreamError("u", 429, nil)), true},
		{"config error", NewConfigError("credentials", "missing"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsQuotaExceeded(tt.err); got != tt.want {
				t.Errorf("IsQuotaExceeded(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestStorageError_Message(t *testing.T) {
	t.Parallel()

	err := NewStorageError("write", errors.New("disk full"))
	want := "storage error during write: disk full"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, err.Err) {
		t.Error("expected Unwrap to expose inner error")
	}
}

func TestConfigError_Message(t *testing.T) {
	t.Parallel()

	err := NewConfigError("OFERTA_SPREADSHEET_ID", "is required")
	want := "config error on OFERTA_SPREADSHEET_ID: is required"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}
