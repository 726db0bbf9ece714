package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"syscall"

	"pitchdash/ingestion/internal/cache"
	"pitchdash/ingestion/internal/client"
	"pitchdash/ingestion/internal/config"
	"pitchdash/ingestion/internal/logging"
	"pitchdash/ingestion/internal/models"
	"pitchdash/ingestion/internal/providers"
	"pitchdash/ingestion/internal/report"
	"pitchdash/ingestion/internal/repository"
	"pitchdash/ingestion/internal/resolver"
	"pitchdash/ingestion/internal/snapshot"
	"pitchdash/ingestion/internal/tablefile"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// options holds the command-line flags
type options struct {
	input       string
	output      string
	defaultTeam string
	providers   []string
	workers     int
	snapshot    string
	staticTable string
	quiet       bool
}

func newRootCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assignteams",
		Short: "Insert a Team column into a player statistics CSV.",
		Long: `assignteams reads a CSV whose first column is the player name and second
column the MLB player ID, looks up every player's team through the configured
providers, and writes the same CSV with a Team column inserted second.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := applyFlags(cmd, cfg, opts); err != nil {
				return err
			}

			logging.Setup(cfg.AppEnv, cfg.LogLevel, cmd.ErrOrStderr())
			return run(cmd.Context(), cfg, opts, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.input, "input", "i", "stats.csv", "input CSV (name, player id, stats...)")
	f.StringVarP(&opts.output, "output", "o", "stats_with_teams_complete.csv", "output CSV")
	f.StringVar(&opts.defaultTeam, "default", "", "label for unresolved players (DEFAULT_TEAM)")
	f.StringSliceVar(&opts.providers, "providers", nil, "provider priority order, e.g. api,static,roster (PROVIDERS)")
	f.IntVarP(&opts.workers, "workers", "w", 0, "records resolved concurrently (JOIN_WORKERS)")
	f.StringVar(&opts.snapshot, "snapshot", "", "roster snapshot file (ROSTER_SNAPSHOT_PATH)")
	f.StringVar(&opts.staticTable, "static-table", "", "JSON id -> team table replacing the built-in one (STATIC_TABLE_PATH)")
	f.BoolVarP(&opts.quiet, "quiet", "q", false, "do not print the summary table")

	return cmd
}

// applyFlags overrides environment configuration with explicitly set flags
func applyFlags(cmd *cobra.Command, cfg *config.Config, opts *options) error {
	f := cmd.Flags()
	if f.Changed("default") {
		cfg.DefaultTeam = opts.defaultTeam
	}
	if f.Changed("providers") {
		cfg.Providers = opts.providers
	}
	if f.Changed("workers") {
		cfg.JoinWorkers = opts.workers
	}
	if f.Changed("snapshot") {
		cfg.SnapshotPath = opts.snapshot
	}
	if f.Changed("static-table") {
		cfg.StaticTablePath = opts.staticTable
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	return nil
}

func run(ctx context.Context, cfg *config.Config, opts *options, out io.Writer) error {
	table, err := tablefile.Read(opts.input)
	if err != nil {
		return err
	}
	log.Info().Str("input", opts.input).Int("rows", len(table.Rows)).Msg("Input loaded")

	var db *repository.Database
	if cfg.HasDatabase() {
		db, err = repository.NewDatabase(ctx, repository.Config{URL: cfg.DatabaseURL})
		if err != nil {
			log.Warn().Err(err).Msg("Database unavailable, run will not be recorded")
			db = nil
		} else {
			defer db.Close()
		}
	}

	names := cfg.ProviderNames()
	src := providers.Sources{
		API:      client.NewStatsAPI(cfg.StatsAPIBaseURL, cfg.StatsAPITimeout),
		CacheTTL: cfg.CacheTTL(),
	}

	if cfg.RedisEnabled {
		redisCache, err := cache.NewRedisCache(cache.Config{
			Host:     cfg.RedisHost,
			Port:     strconv.Itoa(cfg.RedisPort),
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			log.Warn().Err(err).Msg("Failed to connect to Redis - continuing without cache")
		} else {
			defer redisCache.Close()
			src.Cache = redisCache
		}
	}

	if cfg.StaticTablePath != "" {
		src.Static, err = providers.LoadStaticTable(cfg.StaticTablePath)
		if err != nil {
			return err
		}
	}

	if slices.Contains(names, string(models.TierRoster)) {
		src.Snapshot = loadSnapshot(ctx, cfg, db)
	}

	list, err := providers.Build(names, src)
	if err != nil {
		return err
	}

	record := models.NewJoinRun(opts.input, opts.output, cfg.DefaultTeam, names)
	r := resolver.New(cfg.DefaultTeam, list...)

	joined, summary, err := r.Join(ctx, table, resolver.Options{Workers: cfg.JoinWorkers})
	if err != nil {
		return err
	}

	if err := tablefile.Write(opts.output, joined); err != nil {
		return err
	}
	log.Info().Str("output", opts.output).Msg("Output written")

	if !opts.quiet {
		report.Render(out, summary, cfg.DefaultTeam)
	}
	report.Log(summary, cfg.DefaultTeam)

	if db != nil {
		record.Finish(summary)
		if err := db.Migrate(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to migrate database")
		} else if err := db.Runs.Create(ctx, record); err != nil {
			log.Warn().Err(err).Msg("Failed to record join run")
		} else {
			log.Info().Str("run_id", record.ID.String()).Msg("Join run recorded")
		}
	}

	return nil
}

// loadSnapshot reads the roster snapshot file, then the database copy.
// A missing snapshot disables the roster provider.
func loadSnapshot(ctx context.Context, cfg *config.Config, db *repository.Database) *models.RosterSnapshot {
	snap, err := snapshot.NewStore(cfg.SnapshotPath).Load()
	if err == nil {
		log.Info().Int("players", len(snap.Entries)).Time("generated_at", snap.GeneratedAt).Msg("Roster snapshot loaded")
		return snap
	}
	if !errors.Is(err, snapshot.ErrNotFound) {
		log.Warn().Err(err).Msg("Failed to read roster snapshot")
	}

	if db == nil {
		return nil
	}
	snap, err = db.Rosters.Latest(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("No roster snapshot in database")
		return nil
	}
	return snap
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(&options{}).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
