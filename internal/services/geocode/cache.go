package geocode

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"news-atlas/internal/cache"
)

// Cache stores geocoding outcomes, failures included, keyed by Normalize.
type Cache interface {
	Get(ctx context.Context, key string) (Coordinates, bool)
	Set(ctx context.Context, key string, c Coordinates)
}

// MemoryCache is an in-process cache. Entries never expire.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]Coordinates
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]Coordinates)}
}

func (m *MemoryCache) Get(_ context.Context, key string) (Coordinates, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.entries[key]
	return c, ok
}

func (m *MemoryCache) Set(_ context.Context, key string, c Coordinates) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = c
}

func (m *MemoryCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// RedisCache shares geocoding results between processes. Entries expire after ttl.
type RedisCache struct {
	store *cache.RedisCache
	ttl   time.Duration
}

func NewRedisCache(store *cache.RedisCache, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = cache.GeocodeTTL
	}
	return &RedisCache{store: store, ttl: ttl}
}

func (r *RedisCache) Get(ctx context.Context, key string) (Coordinates, bool) {
	var c Coordinates
	if err := r.store.GetJSON(ctx, cache.GeocodeKey(key), &c); err != nil {
		if !errors.Is(err, cache.ErrKeyNotFound) {
			log.Warn().Err(err).Str("location", key).Msg("Geocode cache read failed")
		}
		return Coordinates{}, false
	}
	return c, true
}

func (r *RedisCache) Set(ctx context.Context, key string, c Coordinates) {
	if err := r.store.Set(ctx, cache.GeocodeKey(key), c, r.ttl); err != nil {
		log.Warn().Err(err).Str("location", key).Msg("Geocode cache write failed")
	}
}
