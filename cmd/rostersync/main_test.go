package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"pitchdash/ingestion/internal/models"
	"pitchdash/ingestion/internal/snapshot"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeScraper struct {
	snap *models.RosterSnapshot
	err  error
}

func (f fakeScraper) ScrapeAll(context.Context) (*models.RosterSnapshot, error) {
	return f.snap, f.err
}

// leagueSnapshot builds a snapshot with players on the given number of clubs
func leagueSnapshot(clubs, perClub int) *models.RosterSnapshot {
	snap := &models.RosterSnapshot{}
	id := 1
	for c := 0; c < clubs; c++ {
		for p := 0; p < perClub; p++ {
			snap.Entries = append(snap.Entries, models.RosterEntry{
				PlayerID: id,
				Name:     fmt.Sprintf("Player %d", id),
				Team:     fmt.Sprintf("T%02d", c),
			})
			id++
		}
	}
	return snap
}

func TestValidateSnapshot(t *testing.T) {
	logger := zap.NewNop()

	assert.NoError(t, validateSnapshot(leagueSnapshot(30, 26), logger))
	assert.NoError(t, validateSnapshot(leagueSnapshot(15, 5), logger), "Short rosters only warn")
	assert.ErrorIs(t, validateSnapshot(leagueSnapshot(14, 26), logger), snapshot.ErrIncomplete)
}

func TestRosterSync_Sync(t *testing.T) {
	store := snapshot.NewStore(filepath.Join(t.TempDir(), "team_rosters.json"))
	sync := NewRosterSync(fakeScraper{snap: leagueSnapshot(30, 26)}, store, nil, zap.NewNop())

	require.NoError(t, sync.Sync(context.Background()))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Len(t, got.Entries, 30*26)
}

func TestRosterSync_KeepsPreviousSnapshot(t *testing.T) {
	store := snapshot.NewStore(filepath.Join(t.TempDir(), "team_rosters.json"))
	require.NoError(t, store.Save(leagueSnapshot(30, 26)))

	partial := NewRosterSync(fakeScraper{snap: leagueSnapshot(3, 26)}, store, nil, zap.NewNop())
	assert.Error(t, partial.Sync(context.Background()))

	failing := NewRosterSync(fakeScraper{err: errors.New("blocked")}, store, nil, zap.NewNop())
	assert.Error(t, failing.Sync(context.Background()))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Len(t, got.Entries, 30*26, "Rejected scrapes leave the stored snapshot alone")
}
