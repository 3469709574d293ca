package market

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"news-atlas/internal/cache"
)

// Cached memoizes weekly closes in Redis. Concurrent misses for the same key
// share one upstream fetch through the cache lock.
type Cached struct {
	next  Provider
	name  string
	store *cache.RedisCache
	ttl   time.Duration
}

func NewCached(next Provider, name string, store *cache.RedisCache, ttl time.Duration) *Cached {
	if ttl <= 0 {
		ttl = cache.WeeklyClosesTTL
	}
	return &Cached{next: next, name: name, store: store, ttl: ttl}
}

func (c *Cached) WeeklyCloses(ctx context.Context, symbol string, months int) ([]PricePoint, error) {
	symbol = NormalizeSymbol(symbol)
	key := cache.WeeklyClosesKey(c.name, symbol, months)

	raw, err := c.store.GetOrSet(ctx, key, c.ttl, func() (any, error) {
		return c.next.WeeklyCloses(ctx, symbol, months)
	})
	if err != nil {
		return nil, err
	}

	var points []PricePoint
	if err := json.Unmarshal(raw, &points); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Discarding unreadable cached closes")
		_ = c.store.Del(ctx, key)
		return c.next.WeeklyCloses(ctx, symbol, months)
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("cached closes %s: %w", symbol, ErrNoData)
	}
	return points, nil
}
