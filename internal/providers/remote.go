package providers

import (
	"context"
	"errors"

	"pitchdash/ingestion/internal/client"
	"pitchdash/ingestion/internal/models"
)

// TeamLookup is satisfied by client.StatsAPI
type TeamLookup interface {
	CurrentTeam(ctx context.Context, playerID int) (string, error)
}

// Remote asks the MLB Stats API for a player's current team
type Remote struct {
	api TeamLookup
}

// NewRemote creates the remote lookup provider
func NewRemote(api TeamLookup) *Remote {
	return &Remote{api: api}
}

func (r *Remote) Tier() models.Tier { return models.TierAPI }
func (r *Remote) Kind() KeyKind     { return ByID }

// Lookup returns the current team abbreviation. An unknown player is an
// empty answer, not an error.
func (r *Remote) Lookup(ctx context.Context, q Query) (string, error) {
	team, err := r.api.CurrentTeam(ctx, q.PlayerID)
	if errors.Is(err, client.ErrNotFound) {
		return "", nil
	}
	return team, err
}
