// Package report prints and logs the end-of-run join summary.
package report

import (
	"fmt"
	"io"

	"pitchdash/ingestion/internal/models"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}

// Render writes the per-tier counts and the per-team breakdown to w
func Render(w io.Writer, s *models.JoinSummary, defaultLabel string) {
	tiers := newTable(w)
	tiers.SetTitle("Team assignment")
	tiers.AppendHeader(table.Row{"Source", "Records"})
	for _, tier := range models.Tiers {
		label := string(tier)
		if tier == models.TierDefault {
			label = fmt.Sprintf("default (%s)", defaultLabel)
		}
		tiers.AppendRow(table.Row{label, s.ByTier[tier]})
	}
	tiers.AppendFooter(table.Row{"Total", s.Total})
	tiers.Render()

	teams := newTable(w)
	teams.SetTitle("Players per team")
	teams.AppendHeader(table.Row{"Team", "Players"})
	for _, tc := range s.SortedTeams() {
		teams.AppendRow(table.Row{tc.Team, tc.Count})
	}
	teams.AppendFooter(table.Row{"Resolved", s.Resolved()})
	teams.Render()
}

// Log emits the summary through the global logger
func Log(s *models.JoinSummary, defaultLabel string) {
	event := log.Info().
		Int("total", s.Total).
		Int("defaulted", s.Defaulted).
		Str("default_label", defaultLabel)
	for _, tier := range models.Tiers {
		event = event.Int("tier_"+string(tier), s.ByTier[tier])
	}
	event.Msg("Team assignment summary")

	for _, tc := range s.SortedTeams() {
		log.Info().Str("team", tc.Team).Int("players", tc.Count).Msg("Team count")
	}
}
