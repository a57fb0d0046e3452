// Package metrics defines the Prometheus instrumentation for the
// availability ingestion pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ingestion metrics
	IngestionsTotal          *prometheus.CounterVec
	IngestionDurationSeconds *prometheus.HistogramVec

	// Sheets API metrics
	SheetsRequestsTotal   *prometheus.CounterVec
	SheetsDurationSeconds *prometheus.HistogramVec
	UpstreamStatusTotal   *prometheus.CounterVec

	// Cache metrics
	CacheHitsTotal      *prometheus.CounterVec
	CacheMissesTotal    *prometheus.CounterVec
	StaleFallbacksTotal *prometheus.CounterVec

	// Parser metrics
	ParseWarningsTotal *prometheus.CounterVec
	EntriesParsedTotal *prometheus.CounterVec

	// HTTP metrics
	HTTPErrorsTotal *prometheus.CounterVec

	// Snapshot metrics
	SnapshotOpsTotal *prometheus.CounterVec
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		IngestionsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "oferta_ingestions_total",
				Help: "Total number of ingestion runs by slug and outcome",
			},
			[]string{"slug", "status"}, // status: success, stale_fallback, quota_exceeded, error
		),

		IngestionDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "oferta_ingestion_duration_seconds",
				Help:    "Full ingestion duration in seconds by slug",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
			},
			[]string{"slug"},
		),

		SheetsRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "oferta_sheets_requests_total",
				Help: "Total spreadsheet API requests by kind and status",
			},
			[]string{"kind", "status"}, // kind: metadata, values, grid; status: success, error
		),

		SheetsDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "oferta_sheets_duration_seconds",
				Help:    "Spreadsheet API request duration in seconds by kind",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"kind"},
		),

		UpstreamStatusTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "oferta_upstream_status_total",
				Help: "Non-2xx spreadsheet API responses by HTTP status",
			},
			[]string{"status"},
		),

		CacheHitsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "oferta_cache_hits_total",
				Help: "Total number of fresh cache hits by slug",
			},
			[]string{"slug"},
		),

		CacheMissesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "oferta_cache_misses_total",
				Help: "Total number of cache misses by slug",
			},
			[]string{"slug"},
		),

		StaleFallbacksTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "oferta_stale_fallbacks_total",
				Help: "Requests served stale cache after a quota failure",
			},
			[]string{"slug"},
		),

		ParseWarningsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "oferta_parse_warnings_total",
				Help: "Layout heuristic warnings by tab parse mode",
			},
			[]string{"mode"}, // mode: ignored, online, standard
		),

		EntriesParsedTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "oferta_entries_parsed_total",
				Help: "Availability entries emitted by modality",
			},
			[]string{"modalidad"}, // presencial, mixta, online
		),

		HTTPErrorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "oferta_http_errors_total",
				Help: "Total HTTP errors by type",
			},
			[]string{"error_type"}, // error_type: no_cache, quota, ingestion, bad_request
		),

		SnapshotOpsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "oferta_snapshot_ops_total",
				Help: "Snapshot upload/download operations by status",
			},
			[]string{"op", "status"}, // op: upload, download; status: success, error, not_found
		),
	}

	return m
}

// RecordIngestion records an ingestion run outcome with its duration
func (m *Metrics) RecordIngestion(slug, status string, duration float64) {
	m.IngestionsTotal.WithLabelValues(slug, status).Inc()
	m.IngestionDurationSeconds.WithLabelValues(slug).Observe(duration)
}

// RecordSheetsRequest records a spreadsheet API request with status
func (m *Metrics) RecordSheetsRequest(kind, status string, duration float64) {
	m.SheetsRequestsTotal.WithLabelValues(kind, status).Inc()
	m.SheetsDurationSeconds.WithLabelValues(kind).Observe(duration)
}

// RecordUpstreamStatus records a non-2xx response status
func (m *Metrics) RecordUpstreamStatus(status string) {
	m.UpstreamStatusTotal.WithLabelValues(status).Inc()
}

// RecordCacheHit records a fresh cache hit
func (m *Metrics) RecordCacheHit(slug string) {
	m.CacheHitsTotal.WithLabelValues(slug).Inc()
}

// RecordCacheMiss records a cache miss
func (m *Metrics) RecordCacheMiss(slug string) {
	m.CacheMissesTotal.WithLabelValues(slug).Inc()
}

// RecordStaleFallback records a request served from stale cache
func (m *Metrics) RecordStaleFallback(slug string) {
	m.StaleFallbacksTotal.WithLabelValues(slug).Inc()
}

// RecordParseWarning records a layout heuristic warning
func (m *Metrics) RecordParseWarning(mode string) {
	m.ParseWarningsTotal.WithLabelValues(mode).Inc()
}

// RecordEntriesParsed adds to the per-modality entry counter
func (m *Metrics) RecordEntriesParsed(modalidad string, count int) {
	m.EntriesParsedTotal.WithLabelValues(modalidad).Add(float64(count))
}

// RecordHTTPError records an HTTP error response
func (m *Metrics) RecordHTTPError(errorType string) {
	m.HTTPErrorsTotal.WithLabelValues(errorType).Inc()
}

// RecordSnapshotOp records a snapshot operation outcome
func (m *Metrics) RecordSnapshotOp(op, status string) {
	m.SnapshotOpsTotal.WithLabelValues(op, status).Inc()
}
