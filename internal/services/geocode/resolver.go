package geocode

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"news-atlas/internal/retry"
)

// Resolver chains a primary and a secondary provider behind a cache.
type Resolver struct {
	primary   Provider
	secondary Provider
	cache     Cache
	policy    retry.Policy
}

// NewResolver builds a Resolver. Either provider may be nil; a nil cache
// becomes a MemoryCache.
func NewResolver(primary, secondary Provider, c Cache, policy retry.Policy) *Resolver {
	if c == nil {
		c = NewMemoryCache()
	}
	policy.Retryable = IsTransient
	return &Resolver{
		primary:   primary,
		secondary: secondary,
		cache:     c,
		policy:    policy,
	}
}

// Resolve returns coordinates for location, or the zero value when every
// provider fails. Both outcomes are cached.
func (r *Resolver) Resolve(ctx context.Context, location string) Coordinates {
	key := Normalize(location)
	if key == "" || key == "unknown" {
		return Coordinates{}
	}

	if c, ok := r.cache.Get(ctx, key); ok {
		return c
	}

	c := r.lookup(ctx, strings.TrimSpace(location))
	if ctx.Err() != nil {
		// A cancelled lookup says nothing about the location itself.
		return c
	}
	r.cache.Set(ctx, key, c)
	return c
}

func (r *Resolver) lookup(ctx context.Context, location string) Coordinates {
	if r.primary != nil {
		c, err := r.withRetry(ctx, r.primary, location)
		if err == nil {
			return c
		}
		log.Debug().Err(err).Str("location", location).Msg("Primary geocoder failed")
	}

	fallback := r.secondary
	if fallback == nil {
		fallback = r.primary
	}
	if fallback == nil {
		return Coordinates{}
	}

	if r.secondary != nil {
		c, err := r.withRetry(ctx, r.secondary, location)
		if err == nil {
			return c
		}
		log.Debug().Err(err).Str("location", location).Msg("Secondary geocoder failed")
	}

	simplified := Simplify(location)
	if simplified == "" || strings.EqualFold(simplified, location) || ctx.Err() != nil {
		return Coordinates{}
	}
	c, err := fallback.Geocode(ctx, simplified)
	if err != nil || c.IsZero() {
		log.Debug().Err(err).Str("location", simplified).Msg("Simplified geocode failed")
		return Coordinates{}
	}
	return c
}

func (r *Resolver) withRetry(ctx context.Context, p Provider, query string) (Coordinates, error) {
	c, err := retry.Do(ctx, r.policy, func(ctx context.Context) (Coordinates, error) {
		return p.Geocode(ctx, query)
	})
	if err == nil && c.IsZero() {
		return c, ErrNotFound
	}
	return c, err
}
