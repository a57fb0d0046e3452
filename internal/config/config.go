// Package config provides application configuration management.
// It loads settings from environment variables and provides defaults for
// server mode, cache TTL, sheets fetcher limits, and optional features.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Spreadsheet source
	SpreadsheetID string

	// Google credentials. OAuth refresh-token flow takes precedence when a
	// refresh token is present; otherwise the service-account blob is used.
	GoogleClientID       string
	GoogleClientSecret   string
	GoogleRedirectURI    string
	GoogleRefreshToken   string
	GoogleServiceAccount string // raw JSON or base64-encoded JSON

	// Server
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration

	// Data
	DataDir  string        // Data directory for the SQLite cache database
	CacheTTL time.Duration // Freshness window for cached payloads (default: 10 minutes)

	// Sheets fetcher
	SheetsTimeout     time.Duration // Per-request timeout for the spreadsheet API
	SheetsMaxParallel int           // Concurrent tab fetches per ingestion
	SheetsMinDelay    time.Duration // Minimum delay between spreadsheet API requests

	// Background refresh
	RefreshSlugs    []string      // Slugs refreshed proactively (empty = disabled)
	RefreshInterval time.Duration // How often the refresh job runs

	// Snapshot feature (S3-compatible object storage)
	SnapshotEnabled   bool
	SnapshotEndpoint  string
	SnapshotAccessKey string
	SnapshotSecretKey string
	SnapshotBucket    string
	SnapshotKey       string
	SnapshotInterval  time.Duration

	// Sentry
	SentryDSN         string
	SentryEnvironment string
	SentrySampleRate  float64

	// Better Stack log shipping
	BetterStackToken    string
	BetterStackEndpoint string

	// Metrics auth
	MetricsUsername string
	MetricsPassword string
}

// Load reads configuration from environment variables
// It attempts to load .env file first, then reads from env vars
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		SpreadsheetID: getEnv(EnvSpreadsheetID, ""),

		GoogleClientID:       getEnv(EnvGoogleClientID, ""),
		GoogleClientSecret:   getEnv(EnvGoogleClientSecret, ""),
		GoogleRedirectURI:    getEnv(EnvGoogleRedirectURI, ""),
		GoogleRefreshToken:   getEnv(EnvGoogleRefreshToken, ""),
		GoogleServiceAccount: getEnv(EnvGoogleServiceAccount, ""),

		Port:            getEnv(EnvPort, "10000"),
		LogLevel:        getEnv(EnvLogLevel, "info"),
		ShutdownTimeout: getDurationEnv(EnvShutdownTimeout, 30*time.Second),

		DataDir:  getEnv(EnvDataDir, getDefaultDataDir()),
		CacheTTL: getDurationEnv(EnvCacheTTL, 10*time.Minute),

		SheetsTimeout:     getDurationEnv(EnvSheetsTimeout, 30*time.Second),
		SheetsMaxParallel: getIntEnv(EnvSheetsMaxParallel, 8),
		SheetsMinDelay:    getDurationEnv(EnvSheetsMinDelay, 100*time.Millisecond),

		RefreshSlugs:    splitList(getEnv(EnvRefreshSlugs, "")),
		RefreshInterval: getDurationEnv(EnvRefreshInterval, 8*time.Minute),

		SnapshotEnabled:   getBoolEnv(EnvSnapshotEnabled, false),
		SnapshotEndpoint:  getEnv(EnvSnapshotEndpoint, ""),
		SnapshotAccessKey: getEnv(EnvSnapshotAccessKey, ""),
		SnapshotSecretKey: getEnv(EnvSnapshotSecretKey, ""),
		SnapshotBucket:    getEnv(EnvSnapshotBucket, ""),
		SnapshotKey:       getEnv(EnvSnapshotKey, "snapshots/availability.db.zst"),
		SnapshotInterval:  getDurationEnv(EnvSnapshotInterval, time.Hour),

		SentryDSN:         getEnv(EnvSentryDSN, ""),
		SentryEnvironment: getEnv(EnvSentryEnvironment, "production"),
		SentrySampleRate:  getFloatEnv(EnvSentrySampleRate, 1.0),

		BetterStackToken:    getEnv(EnvBetterStackToken, ""),
		BetterStackEndpoint: getEnv(EnvBetterStackEndpoint, ""),

		MetricsUsername: getEnv(EnvMetricsUsername, "prometheus"),
		MetricsPassword: getEnv(EnvMetricsPassword, ""),
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	var errs []error

	if c.SpreadsheetID == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvSpreadsheetID))
	}
	if c.Port == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvPort))
	}
	if c.DataDir == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvDataDir))
	}
	if c.CacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvCacheTTL, c.CacheTTL))
	}
	if c.SheetsTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvSheetsTimeout, c.SheetsTimeout))
	}
	if c.SheetsMaxParallel <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %d", EnvSheetsMaxParallel, c.SheetsMaxParallel))
	}
	if c.SnapshotEnabled {
		if c.SnapshotEndpoint == "" || c.SnapshotAccessKey == "" || c.SnapshotSecretKey == "" || c.SnapshotBucket == "" {
			errs = append(errs, errors.New("snapshot enabled but endpoint/credentials/bucket incomplete"))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// HasOAuthCredentials reports whether the OAuth refresh-token flow is configured.
func (c *Config) HasOAuthCredentials() bool {
	return c.GoogleRefreshToken != "" && c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// HasServiceAccount reports whether a service-account credential blob is configured.
func (c *Config) HasServiceAccount() bool {
	return c.GoogleServiceAccount != ""
}

// ServiceAccountJSON returns the decoded service-account credential blob.
// The env var may hold raw JSON or base64-encoded JSON (easier to pass
// through some deployment UIs).
func (c *Config) ServiceAccountJSON() []byte {
	blob := strings.TrimSpace(c.GoogleServiceAccount)
	if blob == "" {
		return nil
	}
	if strings.HasPrefix(blob, "{") {
		return []byte(blob)
	}
	if decoded, err := base64.StdEncoding.DecodeString(blob); err == nil {
		return decoded
	}
	return []byte(blob)
}

// SQLitePath returns the full path to the SQLite cache database file
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "availability.db")
}

// getEnv retrieves environment variable with fallback to default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv retrieves integer environment variable with fallback to default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getDurationEnv retrieves duration environment variable with fallback to default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getFloatEnv retrieves float64 environment variable with fallback to default value
func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getBoolEnv retrieves boolean environment variable with fallback to default value
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// splitList splits a comma-separated env value into trimmed non-empty items
func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

// getDefaultDataDir returns platform-specific default data directory
func getDefaultDataDir() string {
	if runtime.GOOS == "windows" {
		return "./data"
	}
	return "/data"
}
