package providers

import (
	"context"
	"strings"
	"unicode"

	"pitchdash/ingestion/internal/models"

	"github.com/antzucaro/matchr"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Roster answers from a previously scraped roster snapshot, keyed by player ID
type Roster struct {
	byID map[int]string
}

// NewRoster creates the id-keyed roster snapshot provider
func NewRoster(snap *models.RosterSnapshot) *Roster {
	return &Roster{byID: snap.ByID()}
}

func (r *Roster) Tier() models.Tier { return models.TierRoster }
func (r *Roster) Kind() KeyKind     { return ByID }

func (r *Roster) Lookup(_ context.Context, q Query) (string, error) {
	return r.byID[q.PlayerID], nil
}

// RosterByName answers from a roster snapshot keyed by normalized player name.
// Names shared by players on different clubs are ambiguous and never answered.
type RosterByName struct {
	byName    map[string]string
	threshold float64
}

// NewRosterByName creates the name-keyed roster provider. A threshold above
// zero enables Jaro-Winkler matching when no exact name is found.
func NewRosterByName(snap *models.RosterSnapshot, threshold float64) *RosterByName {
	byName := make(map[string]string, len(snap.Entries))
	ambiguous := make(map[string]bool)

	for _, e := range snap.Entries {
		key := NormalizeName(e.Name)
		if key == "" || e.Team == "" || ambiguous[key] {
			continue
		}
		if existing, ok := byName[key]; ok && existing != e.Team {
			delete(byName, key)
			ambiguous[key] = true
			continue
		}
		byName[key] = e.Team
	}

	return &RosterByName{byName: byName, threshold: threshold}
}

func (r *RosterByName) Tier() models.Tier { return models.TierRoster }
func (r *RosterByName) Kind() KeyKind     { return ByName }

func (r *RosterByName) Lookup(_ context.Context, q Query) (string, error) {
	key := NormalizeName(q.Name)
	if key == "" {
		return "", nil
	}
	if team, ok := r.byName[key]; ok {
		return team, nil
	}
	if r.threshold <= 0 {
		return "", nil
	}

	var best float64
	var bestTeam string
	for name, team := range r.byName {
		score := matchr.JaroWinkler(key, name, false)
		if score > best || (score == best && team < bestTeam) {
			best = score
			bestTeam = team
		}
	}
	if best >= r.threshold {
		return bestTeam, nil
	}
	return "", nil
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeName folds a player name for matching: accents and case are
// dropped, periods removed, and "Last, First" reordered to "First Last".
func NormalizeName(name string) string {
	folded, _, err := transform.String(stripMarks, name)
	if err != nil {
		folded = name
	}
	folded = strings.ToLower(strings.ReplaceAll(folded, ".", ""))

	if last, first, ok := strings.Cut(folded, ","); ok {
		folded = first + " " + last
	}
	return strings.Join(strings.Fields(folded), " ")
}
