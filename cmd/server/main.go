// Package main provides the availability ingestion server entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/edupricing/availability-go/internal/availability"
	"github.com/edupricing/availability-go/internal/config"
	"github.com/edupricing/availability-go/internal/logger"
	"github.com/edupricing/availability-go/internal/metrics"
	"github.com/edupricing/availability-go/internal/objstore"
	"github.com/edupricing/availability-go/internal/sentry"
	"github.com/edupricing/availability-go/internal/sheets"
	"github.com/edupricing/availability-go/internal/snapshot"
	"github.com/edupricing/availability-go/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewWithOptions(cfg.LogLevel, os.Stdout, logger.Options{
		BetterStackToken:    cfg.BetterStackToken,
		BetterStackEndpoint: cfg.BetterStackEndpoint,
	})
	log.Info("Starting availability server")

	// Initialize Sentry (disabled when no DSN is configured)
	if err := sentry.Initialize(sentry.Config{
		DSN:         cfg.SentryDSN,
		Environment: cfg.SentryEnvironment,
		SampleRate:  cfg.SentrySampleRate,
	}); err != nil {
		log.WithError(err).Warn("Failed to initialize Sentry, continuing without error tracking")
	}
	defer sentry.Flush(2 * time.Second)

	// Create Prometheus registry with standard collectors
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	registry.MustRegister(collectors.NewBuildInfoCollector())
	m := metrics.New(registry)

	// Warm-start from the remote snapshot before opening the database
	var snapshotManager *snapshot.Manager
	if cfg.SnapshotEnabled {
		store, err := objstore.New(context.Background(), objstore.Config{
			Endpoint:    cfg.SnapshotEndpoint,
			AccessKeyID: cfg.SnapshotAccessKey,
			SecretKey:   cfg.SnapshotSecretKey,
			BucketName:  cfg.SnapshotBucket,
		})
		if err != nil {
			log.WithError(err).Fatal("Failed to create object store client")
		}
		snapshotManager = snapshot.New(store, cfg.SnapshotKey, cfg.DataDir, m, log)

		restored, err := snapshotManager.RestoreIfMissing(context.Background(), cfg.SQLitePath())
		if err != nil {
			log.WithError(err).Warn("Snapshot restore failed, starting with empty cache")
		} else if restored {
			log.Info("Cache database restored from snapshot")
		}
	}

	// Connect to database
	db, err := storage.New(cfg.SQLitePath())
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	defer func() { _ = db.Close() }()
	log.WithField("path", cfg.SQLitePath()).
		WithField("cache_ttl", cfg.CacheTTL).
		Info("Database connected")

	// Build the ingestion pipeline: credentials, API client, orchestrator
	tokenSource, err := sheets.NewTokenSource(context.Background(), cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to configure Google credentials")
	}
	sheetsClient := sheets.NewClient(cfg, tokenSource, m, log)
	service := availability.NewService(
		sheetsClient, db, cfg.SpreadsheetID,
		cfg.CacheTTL, cfg.SheetsMaxParallel, m, log,
	)
	handler := availability.NewHandler(service, m, log)

	// Set Gin mode based on log level
	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if sentry.IsEnabled() {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(securityHeadersMiddleware())
	router.Use(requestIDMiddleware())
	router.Use(loggingMiddleware(log))

	setupRoutes(router, handler, db, registry, cfg)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2 * cfg.SheetsTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup

	if len(cfg.RefreshSlugs) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.WithField("panic", r).Error("Panic in refresh goroutine")
				}
			}()
			refreshSlugs(ctx, service, cfg, log)
		}()
	}

	if snapshotManager != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.WithField("panic", r).Error("Panic in snapshot goroutine")
				}
			}()
			snapshotManager.Run(ctx, db, cfg.SnapshotInterval)
		}()
	}

	// Start server in goroutine
	go func() {
		log.WithField("port", cfg.Port).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	cancel()

	// Wait for goroutines to finish (with timeout)
	goDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(goDone)
	}()

	select {
	case <-goDone:
		log.Info("All background goroutines stopped")
	case <-time.After(5 * time.Second):
		log.Warn("Timeout waiting for goroutines to stop")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}

	// Final snapshot so a redeploy starts from the freshest cache
	if snapshotManager != nil {
		uploadCtx, uploadCancel := context.WithTimeout(context.Background(), 30*time.Second)
		if _, err := snapshotManager.Upload(uploadCtx, db); err != nil {
			log.WithError(err).Error("Final snapshot upload failed")
		}
		uploadCancel()
	}

	if err := db.Close(); err != nil {
		log.WithError(err).Error("Failed to close database")
	}

	log.Info("Server stopped")
}
