package models

import "strings"

// PeopleResponse is the Stats API payload for /people/{id}
type PeopleResponse struct {
	People []PersonInput `json:"people"`
}

// PersonInput is a single person from the Stats API
type PersonInput struct {
	ID          int        `json:"id"`
	FullName    string     `json:"fullName"`
	Active      bool       `json:"active"`
	CurrentTeam *TeamRef   `json:"currentTeam,omitempty"`
	Stats       []StatLine `json:"stats,omitempty"`
}

// TeamRef is the team reference embedded in person payloads
type TeamRef struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
}

// StatLine is one entry of a hydrated stats group
type StatLine struct {
	Stat struct {
		Team *TeamRef `json:"team,omitempty"`
	} `json:"stat"`
}

// TeamAbbreviation returns the current team abbreviation, falling back to
// the first team found in the person's stat lines. Empty when none is set.
func (p *PersonInput) TeamAbbreviation() string {
	if p.CurrentTeam != nil {
		if abbr := strings.TrimSpace(p.CurrentTeam.Abbreviation); abbr != "" {
			return abbr
		}
	}
	for _, s := range p.Stats {
		if s.Stat.Team == nil {
			continue
		}
		if abbr := strings.TrimSpace(s.Stat.Team.Abbreviation); abbr != "" {
			return abbr
		}
	}
	return ""
}
