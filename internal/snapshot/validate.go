package snapshot

import (
	"errors"
	"fmt"
	"sort"

	"pitchdash/ingestion/internal/models"
)

const (
	// MinPlayersPerClub is the roster size below which a club page probably changed layout
	MinPlayersPerClub = 20
	// MinClubs is the number of clubs a scrape must cover to replace the stored snapshot
	MinClubs = 15
)

// ErrIncomplete is returned by Validate for scrapes covering too few clubs
var ErrIncomplete = errors.New("roster snapshot incomplete")

// Validate rejects snapshots that cover fewer than MinClubs clubs
func Validate(snap *models.RosterSnapshot) error {
	if snap == nil {
		return fmt.Errorf("%w: no snapshot", ErrIncomplete)
	}
	if clubs := len(snap.TeamCounts()); clubs < MinClubs {
		return fmt.Errorf("%w: %d clubs scraped, need %d", ErrIncomplete, clubs, MinClubs)
	}
	return nil
}

// ShortClubs returns the clubs with fewer than MinPlayersPerClub players,
// sorted by team code
func ShortClubs(snap *models.RosterSnapshot) []models.TeamCount {
	var out []models.TeamCount
	for team, n := range snap.TeamCounts() {
		if n < MinPlayersPerClub {
			out = append(out, models.TeamCount{Team: team, Count: n})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Team < out[j].Team })
	return out
}
