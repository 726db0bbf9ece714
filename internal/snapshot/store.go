// Package snapshot persists scraped roster snapshots as JSON files.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pitchdash/ingestion/internal/models"
)

// ErrNotFound is returned when no snapshot has been saved yet
var ErrNotFound = errors.New("roster snapshot not found")

// Store reads and writes a single snapshot file
type Store struct {
	Path string // e.g. "data/team_rosters.json"
}

// NewStore creates a store for path
func NewStore(path string) *Store {
	return &Store{Path: path}
}

// Exists returns true if a snapshot file is present
func (s *Store) Exists() bool {
	_, err := os.Stat(s.Path)
	return err == nil
}

// Load reads the snapshot
func (s *Store) Load() (*models.RosterSnapshot, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, s.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snap models.RosterSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot %s: %w", s.Path, err)
	}
	return &snap, nil
}

// Save writes the snapshot as indented JSON, replacing any previous file
// only once the new content is fully on disk
func (s *Store) Save(snap *models.RosterSnapshot) error {
	body, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, append(body, '\n'), 0o644); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.Path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to move snapshot into place: %w", err)
	}
	return nil
}

// EntriesFromTable turns a previously joined table with "Player" and "Team"
// columns into name-only roster entries. Defaulted rows are skipped.
func EntriesFromTable(table *models.Table, defaultLabels ...string) []models.RosterEntry {
	nameCol := table.ColumnIndex("Player")
	teamCol := table.ColumnIndex(models.TeamColumn)
	if nameCol < 0 || teamCol < 0 {
		return nil
	}

	skip := make(map[string]bool, len(defaultLabels))
	for _, label := range defaultLabels {
		skip[label] = true
	}

	var out []models.RosterEntry
	for _, row := range table.Rows {
		if nameCol >= len(row) || teamCol >= len(row) {
			continue
		}
		name := strings.TrimSpace(row[nameCol])
		team := strings.TrimSpace(row[teamCol])
		if name == "" || team == "" || skip[team] {
			continue
		}
		out = append(out, models.RosterEntry{Name: name, Team: team})
	}
	return out
}
