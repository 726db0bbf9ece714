package providers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pitchdash/ingestion/internal/metrics"
	"pitchdash/ingestion/internal/models"

	"github.com/rs/zerolog/log"
)

// TeamCache stores answers of an id-keyed provider between runs
type TeamCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// Cached serves an id-keyed provider's answers from a cache. Only non-empty
// answers are stored; cache failures fall through to the wrapped provider.
type Cached struct {
	next  Provider
	cache TeamCache
	ttl   time.Duration

	readFailed  sync.Once
	writeFailed sync.Once
}

// NewCached wraps next with cache. next must be an id-keyed provider.
func NewCached(next Provider, cache TeamCache, ttl time.Duration) *Cached {
	return &Cached{next: next, cache: cache, ttl: ttl}
}

func (c *Cached) Tier() models.Tier { return c.next.Tier() }
func (c *Cached) Kind() KeyKind     { return c.next.Kind() }

func (c *Cached) key(q Query) string {
	return fmt.Sprintf("team:%s:player:%d", c.next.Tier(), q.PlayerID)
}

func (c *Cached) Lookup(ctx context.Context, q Query) (string, error) {
	key := c.key(q)

	team, ok, err := c.cache.Get(ctx, key)
	switch {
	case err != nil:
		c.readFailed.Do(func() {
			log.Warn().Err(err).Msg("Team cache unavailable, looking up without it")
		})
		log.Debug().Err(err).Str("key", key).Msg("Team cache read failed")
		metrics.RecordError("cache", "read")
	case ok && team != "":
		metrics.RecordCacheHit()
		return team, nil
	default:
		metrics.RecordCacheMiss()
	}

	team, err = c.next.Lookup(ctx, q)
	if err != nil || team == "" {
		return team, err
	}

	if err := c.cache.Set(ctx, key, team, c.ttl); err != nil {
		c.writeFailed.Do(func() {
			log.Warn().Err(err).Msg("Team cache writes failing")
		})
		log.Debug().Err(err).Str("key", key).Msg("Team cache write failed")
		metrics.RecordError("cache", "write")
	}
	return team, nil
}
