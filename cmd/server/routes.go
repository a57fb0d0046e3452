// Package main provides the availability ingestion server entry point.
package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/edupricing/availability-go/internal/availability"
	"github.com/edupricing/availability-go/internal/buildinfo"
	"github.com/edupricing/availability-go/internal/config"
	"github.com/edupricing/availability-go/internal/storage"
)

// setupRoutes configures all HTTP routes
func setupRoutes(router *gin.Engine, handler *availability.Handler, db *storage.DB, registry *prometheus.Registry, cfg *config.Config) {
	// Root endpoint - service identification
	rootHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "availability",
			"version": buildinfo.Version,
		})
	}
	router.GET("/", rootHandler)
	router.HEAD("/", rootHandler)

	// Liveness probe - only checks that the process is serving; never
	// touches dependencies
	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/healthz", healthHandler)
	router.HEAD("/healthz", healthHandler)

	// Readiness probe - full dependency check plus cache population
	readyHandler := func(c *gin.Context) {
		count, err := db.CountCacheRecords(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
				"reason": err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":   "ready",
			"database": "connected",
			"cache": gin.H{
				"slugs": count,
			},
		})
	}
	router.GET("/ready", readyHandler)
	router.HEAD("/ready", readyHandler)

	// Availability endpoints
	router.GET("/availability", handler.GetAvailability)
	router.GET("/availability/history", handler.GetHistory)

	// Prometheus metrics endpoint
	router.GET("/metrics",
		metricsAuthMiddleware(cfg.MetricsUsername, cfg.MetricsPassword),
		gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
}
