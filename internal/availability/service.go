// Package availability coordinates the serving path: decide between cached
// and freshly ingested payloads, run the full spreadsheet ingestion when
// needed, and fall back to stale cache when the upstream quota is
// exhausted.
package availability

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/edupricing/availability-go/internal/errors"
	"github.com/edupricing/availability-go/internal/ingest"
	"github.com/edupricing/availability-go/internal/logger"
	"github.com/edupricing/availability-go/internal/metrics"
	"github.com/edupricing/availability-go/internal/storage"
)

// Fetcher retrieves spreadsheet data. Implemented by sheets.Client.
type Fetcher interface {
	AccessToken(ctx context.Context) (string, error)
	ListTabNames(ctx context.Context, token, spreadsheetID string) ([]string, error)
	GetTabValues(ctx context.Context, token, spreadsheetID, tab string) ([][]string, error)
	GetTabLinks(ctx context.Context, token, spreadsheetID, tab string) (*ingest.TabGrid, error)
}

// CacheStore persists availability payloads. Implemented by storage.DB.
type CacheStore interface {
	ReadCache(ctx context.Context, slug string) (*storage.CacheRecord, error)
	WriteCache(ctx context.Context, slug string, payload ingest.Payload) (time.Time, error)
	ReadHistory(ctx context.Context, slug string, n int) ([]storage.HistoryRecord, error)
}

// Request carries the per-request serving options.
type Request struct {
	Slug      string
	Debug     bool
	Refresh   bool
	CacheOnly bool
}

// Result is a served payload plus its provenance.
type Result struct {
	Payload   ingest.Payload
	UpdatedAt time.Time
	Stale     bool
	Warning   string
}

// Service is the request-facing ingestion orchestrator.
type Service struct {
	fetcher       Fetcher
	cache         CacheStore
	spreadsheetID string
	ttl           time.Duration
	maxParallel   int
	metrics       *metrics.Metrics
	log           *logger.Logger
}

// NewService creates the orchestrator. ttl is the cache freshness window;
// maxParallel bounds concurrent tab fetches within one ingestion.
func NewService(fetcher Fetcher, cache CacheStore, spreadsheetID string, ttl time.Duration, maxParallel int, m *metrics.Metrics, log *logger.Logger) *Service {
	if maxParallel <= 0 {
		maxParallel = 1
	}
	return &Service{
		fetcher:       fetcher,
		cache:         cache,
		spreadsheetID: spreadsheetID,
		ttl:           ttl,
		maxParallel:   maxParallel,
		metrics:       m,
		log:           log.WithModule("availability"),
	}
}

// Get serves one availability request. The decision order is: cache-only
// short-circuit, fresh-cache hit, full ingestion, stale-cache fallback on
// quota exhaustion. Cache reads never block an ingestion and a cache read
// failure degrades to "nothing cached" rather than failing the request.
func (s *Service) Get(ctx context.Context, req Request) (*Result, error) {
	cached, err := s.cache.ReadCache(ctx, req.Slug)
	if err != nil {
		s.log.WithError(err).WithField("slug", req.Slug).Warn("cache read failed, treating as empty")
		cached = nil
	}

	if req.CacheOnly {
		if cached == nil {
			s.metrics.RecordCacheMiss(req.Slug)
			return nil, apperrors.ErrNoCache
		}
		s.metrics.RecordCacheHit(req.Slug)
		return &Result{Payload: cached.Payload, UpdatedAt: cached.UpdatedAt}, nil
	}

	if !req.Refresh && cached != nil && time.Since(cached.UpdatedAt) < s.ttl {
		s.metrics.RecordCacheHit(req.Slug)
		return &Result{Payload: cached.Payload, UpdatedAt: cached.UpdatedAt}, nil
	}
	s.metrics.RecordCacheMiss(req.Slug)

	start := time.Now()
	payload, err := s.ingest(ctx)
	if err != nil {
		s.metrics.RecordIngestion(req.Slug, "error", time.Since(start).Seconds())

		if apperrors.IsQuotaExceeded(err) && cached != nil {
			s.metrics.RecordStaleFallback(req.Slug)
			s.log.WithField("slug", req.Slug).Warn("quota exceeded, serving stale cache")
			return &Result{
				Payload:   cached.Payload,
				UpdatedAt: cached.UpdatedAt,
				Stale:     true,
				Warning:   "upstream quota exceeded, serving stale data",
			}, nil
		}
		return nil, err
	}
	s.metrics.RecordIngestion(req.Slug, "success", time.Since(start).Seconds())

	// Persistence is best effort: the freshly computed payload is correct
	// even when the write fails, so serve it either way.
	updatedAt, err := s.cache.WriteCache(ctx, req.Slug, payload)
	if err != nil {
		s.log.WithError(err).WithField("slug", req.Slug).Error("cache write failed after ingestion")
		updatedAt = time.Now()
	}

	return &Result{Payload: payload, UpdatedAt: updatedAt}, nil
}

// History returns up to n archived payloads for the slug, newest first.
func (s *Service) History(ctx context.Context, slug string, n int) ([]storage.HistoryRecord, error) {
	return s.cache.ReadHistory(ctx, slug, n)
}

// tabResult is the parse output of one tab, kept in tab order.
type tabResult struct {
	entries []ingest.Entry
	debug   ingest.SheetDebug
}

// ingest runs one full ingestion: token, tab list, parallel per-tab
// fetches, parse, normalize. The token is obtained once and shared
// read-only by all tab fetches. Individual fetches are not retried.
func (s *Service) ingest(ctx context.Context) (ingest.Payload, error) {
	token, err := s.fetcher.AccessToken(ctx)
	if err != nil {
		return ingest.Payload{}, fmt.Errorf("ingestion aborted: %w", err)
	}

	tabs, err := s.fetcher.ListTabNames(ctx, token, s.spreadsheetID)
	if err != nil {
		return ingest.Payload{}, err
	}

	results := make([]tabResult, len(tabs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxParallel)
	for i, tab := range tabs {
		g.Go(func() error {
			values, err := s.fetcher.GetTabValues(gctx, token, s.spreadsheetID, tab)
			if err != nil {
				return err
			}
			grid, err := s.fetcher.GetTabLinks(gctx, token, s.spreadsheetID, tab)
			if err != nil {
				return err
			}

			entries, debug := ingest.ParseTab(tab, values, ingest.ExtractLinks(grid))
			results[i] = tabResult{entries: entries, debug: debug}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ingest.Payload{}, err
	}

	var entries []ingest.Entry
	debug := make([]ingest.SheetDebug, 0, len(results))
	for _, r := range results {
		entries = append(entries, r.entries...)
		debug = append(debug, r.debug)

		for range r.debug.Warnings {
			s.metrics.RecordParseWarning(r.debug.Mode)
		}
	}

	payload := ingest.Normalize(entries, debug)
	for _, e := range payload.Availability {
		s.metrics.RecordEntriesParsed(e.Modalidad, 1)
	}
	return payload, nil
}
