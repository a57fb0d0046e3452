// Package config defines environment variable keys for configuration.
package config

//nolint:gosec // Environment variable keys are not credentials.
const (
	// Core (Required)
	EnvSpreadsheetID = "OFERTA_SPREADSHEET_ID"

	// Google credentials (one of the two paths must be usable for ingestion)
	EnvGoogleClientID       = "OFERTA_GOOGLE_CLIENT_ID"
	EnvGoogleClientSecret   = "OFERTA_GOOGLE_CLIENT_SECRET"
	EnvGoogleRedirectURI    = "OFERTA_GOOGLE_REDIRECT_URI"
	EnvGoogleRefreshToken   = "OFERTA_GOOGLE_REFRESH_TOKEN"
	EnvGoogleServiceAccount = "OFERTA_GOOGLE_SERVICE_ACCOUNT_JSON"

	// Server
	EnvPort            = "OFERTA_PORT"
	EnvLogLevel        = "OFERTA_LOG_LEVEL"
	EnvShutdownTimeout = "OFERTA_SHUTDOWN_TIMEOUT"

	// Data
	EnvDataDir  = "OFERTA_DATA_DIR"
	EnvCacheTTL = "OFERTA_CACHE_TTL"

	// Sheets fetcher
	EnvSheetsTimeout     = "OFERTA_SHEETS_TIMEOUT"
	EnvSheetsMaxParallel = "OFERTA_SHEETS_MAX_PARALLEL"
	EnvSheetsMinDelay    = "OFERTA_SHEETS_MIN_DELAY"

	// Background refresh
	EnvRefreshSlugs    = "OFERTA_REFRESH_SLUGS"
	EnvRefreshInterval = "OFERTA_REFRESH_INTERVAL"

	// Snapshot feature
	EnvSnapshotEnabled   = "OFERTA_SNAPSHOT_ENABLED"
	EnvSnapshotEndpoint  = "OFERTA_SNAPSHOT_ENDPOINT"
	EnvSnapshotAccessKey = "OFERTA_SNAPSHOT_ACCESS_KEY_ID"
	EnvSnapshotSecretKey = "OFERTA_SNAPSHOT_SECRET_ACCESS_KEY"
	EnvSnapshotBucket    = "OFERTA_SNAPSHOT_BUCKET"
	EnvSnapshotKey       = "OFERTA_SNAPSHOT_KEY"
	EnvSnapshotInterval  = "OFERTA_SNAPSHOT_INTERVAL"

	// Sentry feature
	EnvSentryDSN         = "OFERTA_SENTRY_DSN"
	EnvSentryEnvironment = "OFERTA_SENTRY_ENVIRONMENT"
	EnvSentrySampleRate  = "OFERTA_SENTRY_SAMPLE_RATE"

	// Better Stack feature
	EnvBetterStackToken    = "OFERTA_BETTERSTACK_TOKEN"
	EnvBetterStackEndpoint = "OFERTA_BETTERSTACK_ENDPOINT"

	// Metrics auth
	EnvMetricsUsername = "OFERTA_METRICS_USERNAME"
	EnvMetricsPassword = "OFERTA_METRICS_PASSWORD"
)
