package scheduler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"pitchdash/ingestion/internal/config"
	"pitchdash/ingestion/internal/models"
	"pitchdash/ingestion/internal/snapshot"
	"pitchdash/ingestion/internal/tablefile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRosters struct {
	snap *models.RosterSnapshot
	err  error
}

func (f *fakeRosters) ScrapeAll(context.Context) (*models.RosterSnapshot, error) {
	return f.snap, f.err
}

type fakeSavant map[string]*models.Table

func (f fakeSavant) FetchLeaderboard(_ context.Context, url string) (*models.Table, error) {
	t, ok := f[url]
	if !ok {
		return nil, errors.New("page unavailable")
	}
	return t, nil
}

func testConfig(dir string) *config.Config {
	return &config.Config{
		PitchMixURL:        "mix",
		VelocitiesURL:      "velo",
		PitchMixOutput:     filepath.Join(dir, "pitch_mix.csv"),
		VelocitiesOutput:   filepath.Join(dir, "pitch_velos.csv"),
		DefaultTeam:        "Free Agent",
		OfflineDefaultTeam: "Unknown",
		JoinWorkers:        1,
	}
}

func rosterSnapshot() *models.RosterSnapshot {
	return &models.RosterSnapshot{
		GeneratedAt: time.Now().UTC(),
		Entries: []models.RosterEntry{
			{PlayerID: 605397, Name: "Joe Musgrove", Team: "SD"},
			{PlayerID: 656731, Name: "Tylor Megill", Team: "NYM"},
		},
	}
}

// leagueSnapshot is rosterSnapshot padded with enough clubs to pass validation
func leagueSnapshot() *models.RosterSnapshot {
	snap := rosterSnapshot()
	for c := 0; c < snapshot.MinClubs; c++ {
		snap.Entries = append(snap.Entries, models.RosterEntry{
			PlayerID: 1000 + c,
			Name:     fmt.Sprintf("Depth Arm %d", c),
			Team:     fmt.Sprintf("C%02d", c),
		})
	}
	return snap
}

func TestUpdater_Run(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	store := snapshot.NewStore(filepath.Join(dir, "team_rosters.json"))

	savant := fakeSavant{
		"mix": {
			Header: []string{"Player", "player_id", "pitch_count"},
			Rows: [][]string{
				{"Musgrove, Joe", "605397", "2100"},
				{"Someone Else", "1", "800"},
			},
		},
		"velo": {
			Header: []string{"Player", "Team", "ff_avg_speed"},
			Rows:   [][]string{{"Megill, Tylor", "NYM", "95.1"}},
		},
	}

	u := NewUpdater(cfg, &fakeRosters{snap: leagueSnapshot()}, savant, store, nil)
	require.NoError(t, u.Run(context.Background()))

	assert.True(t, store.Exists(), "Fresh rosters are saved")

	mix, err := tablefile.Read(cfg.PitchMixOutput)
	require.NoError(t, err)
	assert.Equal(t, []string{"Player", "Team", "player_id", "pitch_count"}, mix.Header)
	assert.Equal(t, [][]string{
		{"Musgrove, Joe", "SD", "605397", "2100"},
		{"Someone Else", "Unknown", "1", "800"},
	}, mix.Rows)

	velo, err := tablefile.Read(cfg.VelocitiesOutput)
	require.NoError(t, err)
	assert.Equal(t, savant["velo"], velo, "Tables with a Team column are written unchanged")
}

func TestUpdater_FallsBackToStoredSnapshot(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	store := snapshot.NewStore(filepath.Join(dir, "team_rosters.json"))
	require.NoError(t, store.Save(rosterSnapshot()))

	savant := fakeSavant{
		"mix": {
			Header: []string{"Player", "player_id"},
			Rows:   [][]string{{"Tylor Megill", "656731"}},
		},
	}

	u := NewUpdater(cfg, &fakeRosters{err: errors.New("mlb.com down")}, savant, store, nil)
	err := u.Run(context.Background())
	require.Error(t, err, "Missing velocities page is reported")
	assert.Contains(t, err.Error(), "velocities")

	mix, err := tablefile.Read(cfg.PitchMixOutput)
	require.NoError(t, err)
	assert.Equal(t, "NYM", mix.Rows[0][1])
	_, err = os.Stat(cfg.VelocitiesOutput)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestUpdater_UsesJoinedTableNames(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	cfg.JoinedTablePath = filepath.Join(dir, "stats_with_teams_final.csv")
	require.NoError(t, tablefile.Write(cfg.JoinedTablePath, &models.Table{
		Header: []string{"Player", "Team", "ERA"},
		Rows:   [][]string{{"Paul Skenes", "PIT", "1.96"}},
	}))

	savant := fakeSavant{
		"mix":  {Header: []string{"Player", "player_id"}, Rows: [][]string{{"Skenes, Paul", "694973"}}},
		"velo": {Header: []string{"Player", "player_id"}, Rows: [][]string{{"Nobody", "0"}}},
	}

	store := snapshot.NewStore(filepath.Join(dir, "team_rosters.json"))
	u := NewUpdater(cfg, &fakeRosters{err: errors.New("offline")}, savant, store, nil)
	require.NoError(t, u.Run(context.Background()))

	mix, err := tablefile.Read(cfg.PitchMixOutput)
	require.NoError(t, err)
	assert.Equal(t, "PIT", mix.Rows[0][1])
}

func TestUpdater_IncompleteScrapeKeepsStoredSnapshot(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	store := snapshot.NewStore(filepath.Join(dir, "team_rosters.json"))
	require.NoError(t, store.Save(rosterSnapshot()))

	partial := &models.RosterSnapshot{
		Entries: []models.RosterEntry{{PlayerID: 1, Name: "Zac Gallen", Team: "ARI"}},
	}
	savant := fakeSavant{
		"mix":  {Header: []string{"Player", "player_id"}, Rows: [][]string{{"Megill, Tylor", "656731"}}},
		"velo": {Header: []string{"Player", "player_id"}, Rows: [][]string{{"Gallen, Zac", "1"}}},
	}

	u := NewUpdater(cfg, &fakeRosters{snap: partial}, savant, store, nil)
	require.NoError(t, u.Run(context.Background()))

	stored, err := store.Load()
	require.NoError(t, err)
	assert.Len(t, stored.Entries, 2, "Partial scrape must not replace the stored snapshot")

	mix, err := tablefile.Read(cfg.PitchMixOutput)
	require.NoError(t, err)
	assert.Equal(t, "NYM", mix.Rows[0][1])

	velo, err := tablefile.Read(cfg.VelocitiesOutput)
	require.NoError(t, err)
	assert.Equal(t, "Unknown", velo.Rows[0][1], "Rejected scrape is not used for the join")
}

func TestUpdater_FreshRosterBeforeJoinedTable(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	cfg.JoinedTablePath = filepath.Join(dir, "stats_with_teams_final.csv")
	require.NoError(t, tablefile.Write(cfg.JoinedTablePath, &models.Table{
		Header: []string{"Player", "Team", "ERA"},
		Rows: [][]string{
			{"Megill, Tylor", "LAD", "4.10"},
			{"Paul Skenes", "PIT", "1.96"},
		},
	}))

	savant := fakeSavant{
		"mix": {
			Header: []string{"Player", "player_id", "pitch_count"},
			Rows: [][]string{
				{"Megill, Tylor", "656731", "100"},
				{"Skenes, Paul", "694973", "200"},
			},
		},
		"velo": {Header: []string{"Player", "Team"}, Rows: [][]string{{"Nobody", "FA"}}},
	}

	store := snapshot.NewStore(filepath.Join(dir, "team_rosters.json"))
	u := NewUpdater(cfg, &fakeRosters{snap: leagueSnapshot()}, savant, store, nil)
	require.NoError(t, u.Run(context.Background()))

	mix, err := tablefile.Read(cfg.PitchMixOutput)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Megill, Tylor", "NYM", "656731", "100"},
		{"Skenes, Paul", "PIT", "694973", "200"},
	}, mix.Rows)
}

type countingJob struct {
	runs  atomic.Int32
	block chan struct{}
}

func (j *countingJob) Run(context.Context) error {
	j.runs.Add(1)
	if j.block != nil {
		<-j.block
	}
	return nil
}

func TestScheduler_InvalidSpec(t *testing.T) {
	s := NewScheduler("not a cron spec", &countingJob{})
	assert.Error(t, s.Start(context.Background()))
}

func TestScheduler_RunNowSkipsOverlap(t *testing.T) {
	job := &countingJob{block: make(chan struct{})}
	s := NewScheduler("0 6 * * 1", job)
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	done := make(chan bool)
	go func() { done <- s.RunNow(context.Background()) }()

	require.Eventually(t, func() bool { return job.runs.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.False(t, s.RunNow(context.Background()), "Overlapping run is skipped")

	close(job.block)
	assert.True(t, <-done)
	assert.EqualValues(t, 1, job.runs.Load())
}

func TestScheduler_StopWaitsForRunNow(t *testing.T) {
	job := &countingJob{block: make(chan struct{})}
	s := NewScheduler("0 6 * * 1", job)

	go s.RunNow(context.Background())
	require.Eventually(t, func() bool { return job.runs.Load() == 1 }, time.Second, 5*time.Millisecond)

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while an update was running")
	case <-time.After(50 * time.Millisecond):
	}

	close(job.block)
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return after the update finished")
	}

	assert.False(t, s.RunNow(context.Background()), "No updates start after Stop")
	assert.EqualValues(t, 1, job.runs.Load())
}
