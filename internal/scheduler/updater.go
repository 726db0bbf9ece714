package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pitchdash/ingestion/internal/config"
	"pitchdash/ingestion/internal/metrics"
	"pitchdash/ingestion/internal/models"
	"pitchdash/ingestion/internal/providers"
	"pitchdash/ingestion/internal/report"
	"pitchdash/ingestion/internal/repository"
	"pitchdash/ingestion/internal/resolver"
	"pitchdash/ingestion/internal/snapshot"
	"pitchdash/ingestion/internal/tablefile"

	"github.com/rs/zerolog/log"
)

// RosterSource scrapes the current club rosters
type RosterSource interface {
	ScrapeAll(ctx context.Context) (*models.RosterSnapshot, error)
}

// LeaderboardSource fetches a leaderboard page as a table
type LeaderboardSource interface {
	FetchLeaderboard(ctx context.Context, url string) (*models.Table, error)
}

// Leaderboard is one scraped table and where its joined output goes
type Leaderboard struct {
	Name   string
	URL    string
	Output string
}

// Leaderboards returns the pitch mix and velocity leaderboards from cfg
func Leaderboards(cfg *config.Config) []Leaderboard {
	return []Leaderboard{
		{Name: "pitch_mix", URL: cfg.PitchMixURL, Output: cfg.PitchMixOutput},
		{Name: "velocities", URL: cfg.VelocitiesURL, Output: cfg.VelocitiesOutput},
	}
}

// Updater runs the weekly refresh: rosters, then every leaderboard joined
// against the roster by player name
type Updater struct {
	cfg          *config.Config
	rosters      RosterSource
	savant       LeaderboardSource
	store        *snapshot.Store
	db           *repository.Database
	leaderboards []Leaderboard
}

// NewUpdater creates an updater. db may be nil.
func NewUpdater(cfg *config.Config, rosters RosterSource, savant LeaderboardSource, store *snapshot.Store, db *repository.Database) *Updater {
	return &Updater{
		cfg:          cfg,
		rosters:      rosters,
		savant:       savant,
		store:        store,
		db:           db,
		leaderboards: Leaderboards(cfg),
	}
}

// Run performs one full update. Each leaderboard is independent; the
// returned error joins every leaderboard that failed.
func (u *Updater) Run(ctx context.Context) error {
	start := time.Now()
	log.Info().Msg("Starting weekly data update...")

	// fresh rosters answer first; names from the last joined table fill the gaps
	list := []providers.Provider{
		providers.NewRosterByName(u.syncRosters(ctx), u.cfg.NameMatchThreshold),
	}
	if extra := u.joinedTableEntries(); len(extra) > 0 {
		list = append(list, providers.NewRosterByName(&models.RosterSnapshot{Entries: extra}, u.cfg.NameMatchThreshold))
	}

	r := resolver.New(u.cfg.OfflineDefaultTeam, list...)

	var errs []error
	updated := 0
	for _, lb := range u.leaderboards {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := u.updateLeaderboard(ctx, r, lb); err != nil {
			log.Error().Err(err).Str("leaderboard", lb.Name).Msg("Leaderboard update failed")
			metrics.RecordError("updater", lb.Name)
			errs = append(errs, fmt.Errorf("%s: %w", lb.Name, err))
			continue
		}
		updated++
	}

	log.Info().
		Int("updated", updated).
		Int("failed", len(errs)).
		Dur("duration", time.Since(start)).
		Msg("Weekly data update complete")

	return errors.Join(errs...)
}

// syncRosters scrapes fresh rosters, falling back to the stored snapshot
// and finally to an empty one. Incomplete scrapes never replace the stored snapshot.
func (u *Updater) syncRosters(ctx context.Context) *models.RosterSnapshot {
	start := time.Now()

	snap, err := u.rosters.ScrapeAll(ctx)
	if err == nil {
		for _, club := range snapshot.ShortClubs(snap) {
			log.Warn().Str("team", club.Team).Int("players", club.Count).Msg("Roster page may have changed - few players found")
		}
		err = snapshot.Validate(snap)
	}
	if err != nil {
		metrics.RecordSync("rosters", "error", time.Since(start).Seconds())
		log.Warn().Err(err).Msg("Roster scrape failed, using stored snapshot")

		stored, loadErr := u.store.Load()
		if loadErr != nil {
			log.Warn().Err(loadErr).Msg("No stored roster snapshot, all players will be unassigned")
			return &models.RosterSnapshot{}
		}
		return stored
	}

	if err := u.store.Save(snap); err != nil {
		log.Error().Err(err).Str("path", u.store.Path).Msg("Failed to save roster snapshot")
	}
	if u.db != nil {
		if _, err := u.db.Rosters.ReplaceSnapshot(ctx, snap); err != nil {
			log.Error().Err(err).Msg("Failed to store roster snapshot in database")
		}
	}

	metrics.RecordSync("rosters", "success", time.Since(start).Seconds())
	metrics.UpdateRosterSize(len(snap.Entries))
	log.Info().Int("players", len(snap.Entries)).Msg("Rosters synced")

	return snap
}

// joinedTableEntries reads name -> team pairs from a previously joined table
func (u *Updater) joinedTableEntries() []models.RosterEntry {
	if u.cfg.JoinedTablePath == "" {
		return nil
	}

	table, err := tablefile.Read(u.cfg.JoinedTablePath)
	if err != nil {
		log.Warn().Err(err).Str("path", u.cfg.JoinedTablePath).Msg("Skipping joined table")
		return nil
	}

	entries := snapshot.EntriesFromTable(table, u.cfg.DefaultTeam, u.cfg.OfflineDefaultTeam)
	log.Debug().Int("entries", len(entries)).Msg("Loaded names from joined table")
	return entries
}

func (u *Updater) updateLeaderboard(ctx context.Context, r *resolver.Resolver, lb Leaderboard) error {
	start := time.Now()

	table, err := u.savant.FetchLeaderboard(ctx, lb.URL)
	if err != nil {
		metrics.RecordSync(lb.Name, "error", time.Since(start).Seconds())
		return err
	}

	if resolver.HasTeamColumn(table) {
		log.Info().Str("leaderboard", lb.Name).Msg("Team column already present, writing unchanged")
	} else {
		joined, summary, err := r.Join(ctx, table, resolver.Options{Workers: u.cfg.JoinWorkers})
		if err != nil {
			metrics.RecordSync(lb.Name, "error", time.Since(start).Seconds())
			return err
		}
		report.Log(summary, r.DefaultTeam())
		table = joined
	}

	if err := tablefile.Write(lb.Output, table); err != nil {
		metrics.RecordSync(lb.Name, "error", time.Since(start).Seconds())
		return err
	}

	metrics.RecordSync(lb.Name, "success", time.Since(start).Seconds())
	log.Info().
		Str("leaderboard", lb.Name).
		Int("rows", len(table.Rows)).
		Str("output", lb.Output).
		Msg("Leaderboard saved")
	return nil
}
