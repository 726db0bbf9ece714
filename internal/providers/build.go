package providers

import (
	"fmt"
	"time"

	"pitchdash/ingestion/internal/models"

	"github.com/rs/zerolog/log"
)

// Sources carries the backing data each named provider is built from
type Sources struct {
	API      TeamLookup
	Cache    TeamCache
	CacheTTL time.Duration
	Static   StaticTable
	Snapshot *models.RosterSnapshot
}

// Build returns the providers named in names, in the same priority order.
// A roster provider without a snapshot is left out with a warning.
func Build(names []string, src Sources) ([]Provider, error) {
	out := make([]Provider, 0, len(names))

	for _, name := range names {
		switch name {
		case string(models.TierAPI):
			if src.API == nil {
				return nil, fmt.Errorf("provider %q requires a Stats API client", name)
			}
			var p Provider = NewRemote(src.API)
			if src.Cache != nil {
				p = NewCached(p, src.Cache, src.CacheTTL)
			}
			out = append(out, p)

		case string(models.TierStatic):
			table := src.Static
			if table == nil {
				table = DefaultStaticTable()
			}
			out = append(out, NewStatic(table))

		case string(models.TierRoster):
			if src.Snapshot == nil {
				log.Warn().Msg("No roster snapshot available, roster provider disabled")
				continue
			}
			out = append(out, NewRoster(src.Snapshot))

		default:
			return nil, fmt.Errorf("unknown provider %q", name)
		}
	}

	return out, nil
}
