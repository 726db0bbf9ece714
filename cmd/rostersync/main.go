// Roster Sync
//
// Scrapes every MLB club roster page and stores the player -> team snapshot
// read by the roster provider, as a JSON file and optionally in PostgreSQL.
// Runs once and exits.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pitchdash/ingestion/internal/client"
	"pitchdash/ingestion/internal/config"
	"pitchdash/ingestion/internal/metrics"
	"pitchdash/ingestion/internal/models"
	"pitchdash/ingestion/internal/repository"
	"pitchdash/ingestion/internal/snapshot"

	"go.uber.org/zap"
)

// RosterScraper is satisfied by client.RosterScraper
type RosterScraper interface {
	ScrapeAll(ctx context.Context) (*models.RosterSnapshot, error)
}

// RosterSync handles scraping and storing rosters
type RosterSync struct {
	scraper RosterScraper
	store   *snapshot.Store
	db      *repository.Database
	logger  *zap.Logger
}

// NewRosterSync creates a new sync service. db may be nil.
func NewRosterSync(scraper RosterScraper, store *snapshot.Store, db *repository.Database, logger *zap.Logger) *RosterSync {
	return &RosterSync{
		scraper: scraper,
		store:   store,
		db:      db,
		logger:  logger,
	}
}

// validateSnapshot rejects scrapes that cover too few clubs and warns about
// clubs with unusually short rosters
func validateSnapshot(snap *models.RosterSnapshot, logger *zap.Logger) error {
	for _, club := range snapshot.ShortClubs(snap) {
		logger.Warn("Roster page may have changed - few players found",
			zap.String("team", club.Team),
			zap.Int("players", club.Count),
			zap.Int("expected_min", snapshot.MinPlayersPerClub),
		)
	}

	if err := snapshot.Validate(snap); err != nil {
		return fmt.Errorf("%w, keeping previous snapshot", err)
	}
	return nil
}

// Sync performs a full roster sync
func (r *RosterSync) Sync(ctx context.Context) error {
	start := time.Now()
	r.logger.Info("Starting roster sync")

	snap, err := r.scraper.ScrapeAll(ctx)
	if err != nil {
		metrics.RecordSync("rosters", "error", time.Since(start).Seconds())
		r.logger.Error("Roster scrape failed", zap.Error(err))
		return fmt.Errorf("scraping rosters: %w", err)
	}

	if err := validateSnapshot(snap, r.logger); err != nil {
		metrics.RecordSync("rosters", "error", time.Since(start).Seconds())
		r.logger.Error("Roster snapshot rejected", zap.Error(err))
		return err
	}

	if err := r.store.Save(snap); err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	r.logger.Info("Snapshot saved", zap.String("path", r.store.Path))

	if r.db != nil {
		if err := r.db.Migrate(ctx); err != nil {
			return fmt.Errorf("migrating database: %w", err)
		}
		id, err := r.db.Rosters.ReplaceSnapshot(ctx, snap)
		if err != nil {
			return fmt.Errorf("storing snapshot: %w", err)
		}
		r.logger.Info("Snapshot stored in database", zap.Int64("snapshot_id", id))
	}

	metrics.RecordSync("rosters", "success", time.Since(start).Seconds())
	metrics.UpdateRosterSize(len(snap.Entries))

	r.logger.Info("Roster sync completed",
		zap.Duration("duration", time.Since(start)),
		zap.Int("clubs", len(snap.TeamCounts())),
		zap.Int("players", len(snap.Entries)))

	return nil
}

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	logger.Info("Starting Roster Sync",
		zap.String("snapshot", cfg.SnapshotPath),
		zap.Bool("database", cfg.HasDatabase()),
		zap.Int("clubs", len(client.TeamRosterPages)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var db *repository.Database
	if cfg.HasDatabase() {
		db, err = repository.NewDatabase(ctx, repository.Config{URL: cfg.DatabaseURL})
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()
	}

	scraper := client.NewRosterScraper(client.TeamRosterPages, cfg.RosterTimeout, cfg.RosterRequestDelay).
		WithRetries(cfg.RosterRetries)
	sync := NewRosterSync(scraper, snapshot.NewStore(cfg.SnapshotPath), db, logger)

	if err := sync.Sync(ctx); err != nil {
		logger.Fatal("Sync failed", zap.Error(err))
	}
	logger.Info("Roster sync completed successfully")
}
