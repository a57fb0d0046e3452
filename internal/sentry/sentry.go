// Package sentry wraps the Sentry Go SDK initialization for error
// tracking. The SDK stays disabled when no DSN is configured.
package sentry

import (
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/edupricing/availability-go/internal/buildinfo"
)

// Config holds Sentry configuration.
type Config struct {
	// DSN is the Sentry project DSN. Empty disables Sentry entirely.
	DSN string

	// Environment identifies the deployment environment.
	Environment string

	// SampleRate controls error sampling (0.0-1.0, default 1.0 = 100%).
	SampleRate float64
}

// Initialize sets up the Sentry SDK. If DSN is empty, Sentry is disabled
// and nil is returned.
func Initialize(cfg Config) error {
	if cfg.DSN == "" {
		return nil // Sentry disabled
	}

	sampleRate := cfg.SampleRate
	if sampleRate <= 0 {
		sampleRate = 1.0
	}

	return sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          buildinfo.Version,
		SampleRate:       sampleRate,
		AttachStacktrace: true,
	})
}

// Flush waits for buffered events to be sent to the server.
// Returns true if all events were sent within the timeout.
func Flush(timeout time.Duration) bool {
	return sentry.Flush(timeout)
}

// IsEnabled returns true if Sentry is initialized and active.
func IsEnabled() bool {
	return sentry.CurrentHub().Client() != nil
}

// CaptureException captures an error and sends it to Sentry.
func CaptureException(err error) {
	sentry.CaptureException(err)
}
