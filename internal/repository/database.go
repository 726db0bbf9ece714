package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// Database holds the database connection pool and provides access to repositories
type Database struct {
	Pool *pgxpool.Pool

	// Repositories
	Rosters *RosterRepository
	Runs    *RunRepository
}

// Config holds database configuration
type Config struct {
	URL      string
	MaxConns int32
}

// NewDatabase creates a new database connection pool and initializes repositories
func NewDatabase(ctx context.Context, cfg Config) (*Database, error) {
	// Configure connection pool
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	// Set pool configuration
	poolConfig.MaxConns = 5
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	// Create connection pool
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().
		Str("host", poolConfig.ConnConfig.Host).
		Uint16("port", poolConfig.ConnConfig.Port).
		Str("database", poolConfig.ConnConfig.Database).
		Msg("Successfully connected to database")

	db := &Database{
		Pool: pool,
	}
	db.Rosters = &RosterRepository{db: db}
	db.Runs = &RunRepository{db: db}

	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS roster_snapshots (
	id           BIGSERIAL PRIMARY KEY,
	generated_at TIMESTAMPTZ NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS roster_entries (
	snapshot_id BIGINT NOT NULL REFERENCES roster_snapshots(id) ON DELETE CASCADE,
	position    INT NOT NULL,
	player_id   INT NOT NULL,
	player_name TEXT NOT NULL,
	team_code   TEXT NOT NULL,
	PRIMARY KEY (snapshot_id, position)
);

CREATE INDEX IF NOT EXISTS idx_roster_entries_player ON roster_entries (player_id);

CREATE TABLE IF NOT EXISTS join_runs (
	id            UUID PRIMARY KEY,
	input_path    TEXT NOT NULL,
	output_path   TEXT NOT NULL,
	default_label TEXT NOT NULL,
	providers     TEXT[] NOT NULL,
	total         INT NOT NULL,
	defaulted     INT NOT NULL,
	summary       JSONB NOT NULL,
	started_at    TIMESTAMPTZ NOT NULL,
	finished_at   TIMESTAMPTZ NOT NULL
);
`

// Migrate creates the tables used by the repositories if they are missing
func (db *Database) Migrate(ctx context.Context) error {
	if _, err := db.Pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	log.Debug().Msg("Database schema up to date")
	return nil
}

// Close closes the database connection pool
func (db *Database) Close() {
	if db.Pool != nil {
		db.Pool.Close()
		log.Info().Msg("Database connection pool closed")
	}
}

// Health checks if the database is healthy
func (db *Database) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.Pool.Ping(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	return nil
}

// PoolStats returns database pool statistics
func (db *Database) PoolStats() map[string]interface{} {
	stat := db.Pool.Stat()
	return map[string]interface{}{
		"total_conns":    stat.TotalConns(),
		"acquired_conns": stat.AcquiredConns(),
		"idle_conns":     stat.IdleConns(),
		"max_conns":      stat.MaxConns(),
	}
}
