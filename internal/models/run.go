package models

import (
	"time"

	"github.com/google/uuid"
)

// JoinRun records one team-assignment join for later auditing
type JoinRun struct {
	ID           uuid.UUID    `json:"id" db:"id"`
	InputPath    string       `json:"input_path" db:"input_path"`
	OutputPath   string       `json:"output_path" db:"output_path"`
	DefaultLabel string       `json:"default_label" db:"default_label"`
	Providers    []string     `json:"providers" db:"providers"`
	Summary      *JoinSummary `json:"summary" db:"summary"`
	StartedAt    time.Time    `json:"started_at" db:"started_at"`
	FinishedAt   time.Time    `json:"finished_at" db:"finished_at"`
}

// NewJoinRun starts a run record with a fresh ID
func NewJoinRun(inputPath, outputPath, defaultLabel string, providers []string) *JoinRun {
	return &JoinRun{
		ID:           uuid.New(),
		InputPath:    inputPath,
		OutputPath:   outputPath,
		DefaultLabel: defaultLabel,
		Providers:    providers,
		StartedAt:    time.Now().UTC(),
	}
}

// Finish attaches the summary and stamps the end time
func (r *JoinRun) Finish(s *JoinSummary) {
	r.Summary = s
	r.FinishedAt = time.Now().UTC()
}
