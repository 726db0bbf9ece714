package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"pitchdash/ingestion/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// RunRepository handles join run database operations
type RunRepository struct {
	db *Database
}

// Create inserts a finished join run
func (r *RunRepository) Create(ctx context.Context, run *models.JoinRun) error {
	if run.Summary == nil {
		return fmt.Errorf("join run %s has no summary", run.ID)
	}

	summary, err := json.Marshal(run.Summary)
	if err != nil {
		return fmt.Errorf("failed to marshal run summary: %w", err)
	}

	providers := run.Providers
	if providers == nil {
		providers = []string{}
	}

	query := `
		INSERT INTO join_runs (
			id, input_path, output_path, default_label, providers,
			total, defaulted, summary, started_at, finished_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = r.db.Pool.Exec(
		ctx, query,
		run.ID, run.InputPath, run.OutputPath, run.DefaultLabel, providers,
		run.Summary.Total, run.Summary.Defaulted, summary, run.StartedAt, run.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create join run: %w", err)
	}

	log.Debug().
		Str("run_id", run.ID.String()).
		Int("total", run.Summary.Total).
		Msg("Join run recorded")

	return nil
}

// GetByID retrieves a join run
func (r *RunRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.JoinRun, error) {
	query := `
		SELECT id, input_path, output_path, default_label, providers,
		       summary, started_at, finished_at
		FROM join_runs
		WHERE id = $1
	`

	var run models.JoinRun
	var summary []byte
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&run.ID, &run.InputPath, &run.OutputPath, &run.DefaultLabel, &run.Providers,
		&summary, &run.StartedAt, &run.FinishedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("join run not found: id=%s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get join run: %w", err)
	}

	run.Summary = models.NewJoinSummary()
	if err := json.Unmarshal(summary, run.Summary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run summary: %w", err)
	}

	return &run, nil
}
