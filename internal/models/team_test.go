package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinSummary_Add(t *testing.T) {
	s := NewJoinSummary()
	s.Add(Assignment{Team: "NYM", Tier: TierAPI})
	s.Add(Assignment{Team: "ATL", Tier: TierStatic})
	s.Add(Assignment{Team: "NYM", Tier: TierRoster})
	s.Add(Assignment{Team: "Free Agent", Tier: TierDefault})

	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 1, s.Defaulted)
	assert.Equal(t, 3, s.Resolved())
	assert.Equal(t, 1, s.ByTier[TierAPI])
	assert.Equal(t, 1, s.ByTier[TierDefault])
	assert.NotContains(t, s.ByTeam, "Free Agent", "Defaulted records stay out of the team breakdown")
	assert.Equal(t, []TeamCount{{"ATL", 1}, {"NYM", 2}}, s.SortedTeams())
}

func TestRecordFromRow(t *testing.T) {
	rec := RecordFromRow([]string{"Jane Doe", " 663623 ", "12.5"})
	id, ok := rec.PlayerID()
	require.True(t, ok)
	assert.Equal(t, 663623, id)
	assert.Equal(t, "Jane Doe", rec.Name)

	for _, row := range [][]string{{"John Roe", ""}, {"John Roe", "n/a"}, {"John Roe"}, {}} {
		_, ok := RecordFromRow(row).PlayerID()
		assert.False(t, ok, "row %v should not yield an ID", row)
	}
}

func TestRosterSnapshot_ByID(t *testing.T) {
	snap := RosterSnapshot{Entries: []RosterEntry{
		{PlayerID: 1, Name: "A", Team: "SEA"},
		{PlayerID: 2, Name: "B", Team: ""},
		{PlayerID: 1, Name: "A", Team: "TEX"},
	}}

	assert.Equal(t, map[int]string{1: "TEX"}, snap.ByID())
	assert.Equal(t, 1, snap.TeamCounts()["SEA"])
}

func TestPersonInput_TeamAbbreviation(t *testing.T) {
	var withCurrent PeopleResponse
	require.NoError(t, json.Unmarshal([]byte(`{"people":[{"id":656731,"currentTeam":{"id":121,"abbreviation":"NYM"}}]}`), &withCurrent))
	assert.Equal(t, "NYM", withCurrent.People[0].TeamAbbreviation())

	var fromStats PeopleResponse
	require.NoError(t, json.Unmarshal([]byte(`{"people":[{"id":1,"currentTeam":{"id":5},"stats":[{"stat":{}},{"stat":{"team":{"abbreviation":"SD"}}}]}]}`), &fromStats))
	assert.Equal(t, "SD", fromStats.People[0].TeamAbbreviation())

	var none PeopleResponse
	require.NoError(t, json.Unmarshal([]byte(`{"people":[{"id":2}]}`), &none))
	assert.Empty(t, none.People[0].TeamAbbreviation())
}
