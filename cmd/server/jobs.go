// Package main provides the availability ingestion server entry point.
package main

import (
	"context"
	"time"

	"github.com/edupricing/availability-go/internal/availability"
	"github.com/edupricing/availability-go/internal/config"
	"github.com/edupricing/availability-go/internal/logger"
)

// refreshInitialDelay lets the server come up before the first proactive
// ingestion hits the spreadsheet API.
const refreshInitialDelay = 30 * time.Second

// refreshSlugs proactively re-ingests the configured slugs so interactive
// requests mostly hit a fresh cache. Failures are logged and the next tick
// tries again; a quota failure here costs nothing since the cache keeps
// its last payload.
func refreshSlugs(ctx context.Context, service *availability.Service, cfg *config.Config, log *logger.Logger) {
	log = log.WithModule("refresh")

	select {
	case <-ctx.Done():
		return
	case <-time.After(refreshInitialDelay):
		performRefresh(ctx, service, cfg, log)
	}

	ticker := time.NewTicker(cfg.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			performRefresh(ctx, service, cfg, log)
		}
	}
}

// performRefresh runs one refresh pass over all configured slugs.
func performRefresh(ctx context.Context, service *availability.Service, cfg *config.Config, log *logger.Logger) {
	for _, slug := range cfg.RefreshSlugs {
		start := time.Now()
		result, err := service.Get(ctx, availability.Request{Slug: slug, Refresh: true})
		if err != nil {
			log.WithError(err).WithField("slug", slug).Error("Proactive refresh failed")
			continue
		}

		entry := log.WithField("slug", slug).
			WithField("entries", len(result.Payload.Availability)).
			WithField("duration_ms", time.Since(start).Milliseconds())
		if result.Stale {
			entry.Warn("Proactive refresh served stale data")
		} else {
			entry.Info("Proactive refresh complete")
		}
	}
}
