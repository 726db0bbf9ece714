package models

import (
	"sort"
	"time"
)

// Tier identifies which source supplied a player's team code
type Tier string

const (
	TierAPI     Tier = "api"
	TierStatic  Tier = "static"
	TierRoster  Tier = "roster"
	TierDefault Tier = "default"
)

// Tiers lists every tier in resolution order, default last
var Tiers = []Tier{TierAPI, TierStatic, TierRoster, TierDefault}

// Assignment is the team code chosen for one player record
type Assignment struct {
	Team string
	Tier Tier
}

// Defaulted returns true if no provider resolved the record
func (a Assignment) Defaulted() bool {
	return a.Tier == TierDefault
}

// RosterEntry is one player found on a club's roster page
type RosterEntry struct {
	PlayerID int    `json:"player_id" db:"player_id"`
	Name     string `json:"name" db:"player_name"`
	Team     string `json:"team" db:"team_code"`
}

// RosterSnapshot is a scraped player -> team mapping persisted between runs
type RosterSnapshot struct {
	GeneratedAt time.Time     `json:"generated_at"`
	Entries     []RosterEntry `json:"entries"`
}

// ByID indexes the snapshot by player ID. Later entries win on duplicates,
// matching the order clubs were scraped in.
func (s *RosterSnapshot) ByID() map[int]string {
	out := make(map[int]string, len(s.Entries))
	for _, e := range s.Entries {
		if e.PlayerID <= 0 || e.Team == "" {
			continue
		}
		out[e.PlayerID] = e.Team
	}
	return out
}

// TeamCounts returns the number of players per club in the snapshot
func (s *RosterSnapshot) TeamCounts() map[string]int {
	out := make(map[string]int)
	for _, e := range s.Entries {
		out[e.Team]++
	}
	return out
}

// JoinSummary holds the end-of-run counts of a team-assignment join
type JoinSummary struct {
	Total     int            `json:"total"`
	ByTier    map[Tier]int   `json:"by_tier"`
	Defaulted int            `json:"defaulted"`
	ByTeam    map[string]int `json:"by_team"`
}

// NewJoinSummary returns an empty summary
func NewJoinSummary() *JoinSummary {
	return &JoinSummary{
		ByTier: make(map[Tier]int),
		ByTeam: make(map[string]int),
	}
}

// Add counts one assignment. Defaulted records are excluded from the team breakdown.
func (s *JoinSummary) Add(a Assignment) {
	s.Total++
	s.ByTier[a.Tier]++
	if a.Defaulted() {
		s.Defaulted++
		return
	}
	s.ByTeam[a.Team]++
}

// Resolved returns the number of records a provider answered for
func (s *JoinSummary) Resolved() int {
	return s.Total - s.Defaulted
}

// TeamCount is a single row of the per-team breakdown
type TeamCount struct {
	Team  string
	Count int
}

// SortedTeams returns the per-team breakdown sorted by team code
func (s *JoinSummary) SortedTeams() []TeamCount {
	out := make([]TeamCount, 0, len(s.ByTeam))
	for team, n := range s.ByTeam {
		out = append(out, TeamCount{Team: team, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Team < out[j].Team })
	return out
}
