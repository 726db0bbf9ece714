package repository

import (
	"context"
	"errors"
	"fmt"

	"pitchdash/ingestion/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// ErrNoSnapshot is returned by Latest when no roster has been stored yet
var ErrNoSnapshot = errors.New("no roster snapshot stored")

// RosterRepository handles roster snapshot database operations
type RosterRepository struct {
	db *Database
}

// ReplaceSnapshot stores snap as the newest snapshot and drops older ones
func (r *RosterRepository) ReplaceSnapshot(ctx context.Context, snap *models.RosterSnapshot) (int64, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var id int64
	err = tx.QueryRow(ctx,
		`INSERT INTO roster_snapshots (generated_at) VALUES ($1) RETURNING id`,
		snap.GeneratedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create roster snapshot: %w", err)
	}

	rows := make([][]any, len(snap.Entries))
	for i, e := range snap.Entries {
		rows[i] = []any{id, i, e.PlayerID, e.Name, e.Team}
	}

	copied, err := tx.CopyFrom(ctx,
		pgx.Identifier{"roster_entries"},
		[]string{"snapshot_id", "position", "player_id", "player_name", "team_code"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert roster entries: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM roster_snapshots WHERE id <> $1`, id); err != nil {
		return 0, fmt.Errorf("failed to delete old roster snapshots: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit roster snapshot: %w", err)
	}

	log.Debug().
		Int64("snapshot_id", id).
		Int64("entries", copied).
		Msg("Roster snapshot stored")

	return id, nil
}

// Latest returns the most recently stored snapshot
func (r *RosterRepository) Latest(ctx context.Context) (*models.RosterSnapshot, error) {
	var id int64
	var snap models.RosterSnapshot

	err := r.db.Pool.QueryRow(ctx,
		`SELECT id, generated_at FROM roster_snapshots ORDER BY generated_at DESC, id DESC LIMIT 1`,
	).Scan(&id, &snap.GeneratedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest roster snapshot: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT player_id, player_name, team_code
		FROM roster_entries
		WHERE snapshot_id = $1
		ORDER BY position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query roster entries: %w", err)
	}

	entries, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.RosterEntry])
	if err != nil {
		return nil, fmt.Errorf("failed to scan roster entries: %w", err)
	}
	snap.Entries = entries

	return &snap, nil
}
