package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pitchdash/ingestion/internal/client"
	"pitchdash/ingestion/internal/config"
	"pitchdash/ingestion/internal/logging"
	"pitchdash/ingestion/internal/metrics"
	"pitchdash/ingestion/internal/repository"
	"pitchdash/ingestion/internal/scheduler"
	"pitchdash/ingestion/internal/snapshot"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg := config.MustLoad()

	// Setup logger
	logging.Setup(cfg.AppEnv, cfg.LogLevel, os.Stdout)

	log.Info().Msg("Starting pitch data update worker")
	log.Info().
		Str("env", cfg.AppEnv).
		Str("log_level", cfg.LogLevel).
		Msg("Configuration loaded")

	// Create context that listens for cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("Received shutdown signal, gracefully shutting down...")
		cancel()
	}()

	// Database is optional; snapshots are always kept on disk
	var db *repository.Database
	if cfg.HasDatabase() {
		var err error
		db, err = repository.NewDatabase(ctx, repository.Config{URL: cfg.DatabaseURL})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer db.Close()

		if err := db.Migrate(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to migrate database")
		}
		log.Info().Msg("Database connection established")
	}

	// Start metrics HTTP server
	if cfg.EnableMetrics {
		go startMetricsServer(cfg.MetricsPort, db)
	}

	// Update system uptime metric
	startTime := time.Now()
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				metrics.SystemUptime.Set(time.Since(startTime).Seconds())
			case <-ctx.Done():
				return
			}
		}
	}()

	rosters := client.NewRosterScraper(client.TeamRosterPages, cfg.RosterTimeout, cfg.RosterRequestDelay).
		WithRetries(cfg.RosterRetries)
	savant := client.NewSavant(cfg.SavantTimeout)
	store := snapshot.NewStore(cfg.SnapshotPath)

	updater := scheduler.NewUpdater(cfg, rosters, savant, store, db)
	sched := scheduler.NewScheduler(cfg.WeeklyUpdateCron, updater)

	if cfg.EnableScheduler {
		log.Info().Msg("Starting scheduler...")
		if err := sched.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to start scheduler")
		}
	}

	// Run initial update if enabled
	if cfg.InitialSyncEnabled {
		log.Info().Msg("Running initial data update...")
		go sched.RunNow(ctx)
	}

	// Keep running until context is cancelled
	<-ctx.Done()

	// Graceful shutdown
	log.Info().Msg("Shutting down scheduler...")
	sched.Stop()

	log.Info().Msg("Worker shutdown complete")
}

// startMetricsServer starts the Prometheus metrics HTTP server
func startMetricsServer(port int, db *repository.Database) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		body := map[string]interface{}{"status": "healthy"}
		status := http.StatusOK

		if db != nil {
			if err := db.Health(r.Context()); err != nil {
				body["status"] = "unhealthy"
				body["error"] = err.Error()
				status = http.StatusServiceUnavailable
			} else {
				body["database"] = db.PoolStats()
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	})

	addr := fmt.Sprintf(":%d", port)
	log.Info().Int("port", port).Msg("Starting metrics server")

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error().Err(err).Msg("Metrics server failed")
	}
}
