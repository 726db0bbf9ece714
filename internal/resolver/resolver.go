// Package resolver assigns a team code to every player record of a table by
// consulting providers in priority order.
package resolver

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"pitchdash/ingestion/internal/metrics"
	"pitchdash/ingestion/internal/models"
	"pitchdash/ingestion/internal/providers"

	"github.com/rs/zerolog/log"
)

const progressEvery = 100

// Resolve returns exactly one assignment for rec. The first provider with a
// non-empty answer wins; when none answers the default label is used.
// Provider errors count as no answer.
func Resolve(ctx context.Context, rec models.PlayerRecord, list []providers.Provider, defaultTeam string) models.Assignment {
	playerID, hasID := rec.PlayerID()

	for _, p := range list {
		q := providers.Query{Name: rec.Name}
		if p.Kind() == providers.ByID {
			if !hasID {
				continue
			}
			q.PlayerID = playerID
		}

		team, err := p.Lookup(ctx, q)
		if err != nil {
			log.Debug().
				Err(err).
				Str("provider", string(p.Tier())).
				Str("player", rec.Name).
				Str("identifier", rec.Identifier).
				Msg("Provider lookup failed")
			metrics.RecordProviderError(string(p.Tier()))
			continue
		}

		if team = strings.TrimSpace(team); team != "" {
			return models.Assignment{Team: team, Tier: p.Tier()}
		}
	}

	return models.Assignment{Team: defaultTeam, Tier: models.TierDefault}
}

// Options controls a join
type Options struct {
	// Workers bounds how many records are resolved at once. Values below 2
	// resolve sequentially.
	Workers int
}

// Resolver joins tables against a fixed provider list
type Resolver struct {
	providers   []providers.Provider
	defaultTeam string
}

// New creates a resolver. list is consulted in order.
func New(defaultTeam string, list ...providers.Provider) *Resolver {
	return &Resolver{providers: list, defaultTeam: defaultTeam}
}

// DefaultTeam returns the label assigned when no provider answers
func (r *Resolver) DefaultTeam() string {
	return r.defaultTeam
}

// Resolve assigns a team to a single record
func (r *Resolver) Resolve(ctx context.Context, rec models.PlayerRecord) models.Assignment {
	return Resolve(ctx, rec, r.providers, r.defaultTeam)
}

// Join returns a copy of table with the Team column inserted as the second
// column, plus the run summary. A malformed header fails before any record is
// resolved; a cancelled context fails the whole join.
func (r *Resolver) Join(ctx context.Context, table *models.Table, opts Options) (*models.Table, *models.JoinSummary, error) {
	if err := table.Validate(); err != nil {
		return nil, nil, err
	}

	start := time.Now()
	assignments := make([]models.Assignment, len(table.Rows))
	var done atomic.Int64

	resolveRow := func(i int) {
		row := table.Rows[i]
		if len(row) < 2 {
			assignments[i] = models.Assignment{Team: r.defaultTeam, Tier: models.TierDefault}
		} else {
			assignments[i] = r.Resolve(ctx, models.RecordFromRow(row))
		}

		if n := done.Add(1); n%progressEvery == 0 {
			log.Info().Int64("processed", n).Int("total", len(table.Rows)).Msg("Join progress")
		}
	}

	if opts.Workers > 1 {
		sem := make(chan struct{}, opts.Workers)
		var wg sync.WaitGroup
		for i := range table.Rows {
			if ctx.Err() != nil {
				break
			}
			sem <- struct{}{}
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				defer func() { <-sem }()
				resolveRow(i)
			}(i)
		}
		wg.Wait()
	} else {
		for i := range table.Rows {
			if ctx.Err() != nil {
				break
			}
			resolveRow(i)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("join cancelled after %d of %d records: %w", done.Load(), len(table.Rows), err)
	}

	out := &models.Table{
		Header: insertTeam(table.Header, models.TeamColumn),
		Rows:   make([][]string, len(table.Rows)),
	}
	summary := models.NewJoinSummary()

	for i, row := range table.Rows {
		a := assignments[i]
		out.Rows[i] = insertTeam(row, a.Team)
		summary.Add(a)
		metrics.RecordResolution(string(a.Tier))
	}

	log.Info().
		Int("total", summary.Total).
		Int("resolved", summary.Resolved()).
		Int("defaulted", summary.Defaulted).
		Dur("duration", time.Since(start)).
		Msg("Team assignment join completed")

	return out, summary, nil
}

// HasTeamColumn returns true if the table already carries a Team column
func HasTeamColumn(table *models.Table) bool {
	return table.ColumnIndex(models.TeamColumn) >= 0
}

// insertTeam returns a new row with team placed at index 1
func insertTeam(row []string, team string) []string {
	out := make([]string, 0, len(row)+1)
	if len(row) == 0 {
		return append(out, "", team)
	}
	out = append(out, row[0], team)
	return append(out, row[1:]...)
}
