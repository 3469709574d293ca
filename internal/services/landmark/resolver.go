package landmark

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"news-atlas/internal/services/geocode"
)

const DefaultNearbyRadius = 5000

// Geocoder is the slice of geocode.Resolver the nearby stage needs.
type Geocoder interface {
	Resolve(ctx context.Context, location string) geocode.Coordinates
}

type Config struct {
	Thresholds   Thresholds
	MaxQueries   int
	NearbyRadius int
}

func DefaultConfig() Config {
	return Config{
		Thresholds:   DefaultThresholds(),
		MaxQueries:   DefaultMaxQueries,
		NearbyRadius: DefaultNearbyRadius,
	}
}

var nearbyTypes = map[string][]string{
	CategoryFinance:     {"bank"},
	CategoryPolitical:   {"city_hall", "embassy", "local_government_office"},
	CategoryHealth:      {"hospital"},
	CategoryTransport:   {"airport", "train_station"},
	CategorySports:      {"stadium"},
	CategoryEnvironment: {"park"},
	CategoryGeneral:     {"tourist_attraction", "museum"},
}

// Resolver finds a prominent, validated landmark for a vague area.
type Resolver struct {
	places   PlacesSearch
	geocoder Geocoder
	cfg      Config
}

// NewResolver builds a Resolver. geocoder may be nil, which disables the
// nearby-search stage.
func NewResolver(places PlacesSearch, geocoder Geocoder, cfg Config) *Resolver {
	if cfg.MaxQueries <= 0 {
		cfg.MaxQueries = DefaultMaxQueries
	}
	if cfg.NearbyRadius <= 0 {
		cfg.NearbyRadius = DefaultNearbyRadius
	}
	return &Resolver{places: places, geocoder: geocoder, cfg: cfg}
}

// Resolve returns the most prominent valid landmark for area, or false when
// nothing qualifies. Search failures are logged and skipped.
func (r *Resolver) Resolve(ctx context.Context, area, topic, category string) (*Landmark, bool) {
	if r == nil || r.places == nil || strings.TrimSpace(area) == "" {
		return nil, false
	}

	var best *Landmark
	for _, q := range Queries(area, topic, category, r.cfg.MaxQueries) {
		if ctx.Err() != nil {
			return best, best != nil
		}
		results, err := r.places.SearchText(ctx, q)
		if err != nil {
			log.Debug().Err(err).Str("query", q).Msg("Landmark text search failed")
			continue
		}
		best = r.pickBest(best, results, category, q)
	}

	if best == nil && r.geocoder != nil && ctx.Err() == nil {
		best = r.nearby(ctx, area, category)
	}

	if best != nil {
		log.Debug().Str("area", area).Str("landmark", best.Name).Float64("prominence", best.Prominence).Msg("Landmark resolved")
	}
	return best, best != nil
}

func (r *Resolver) nearby(ctx context.Context, area, category string) *Landmark {
	center := r.geocoder.Resolve(ctx, area)
	if center.IsZero() {
		return nil
	}

	types, ok := nearbyTypes[NormalizeCategory(category)]
	if !ok {
		types = nearbyTypes[CategoryGeneral]
	}

	var best *Landmark
	for _, t := range types {
		results, err := r.places.NearbySearch(ctx, center, r.cfg.NearbyRadius, t)
		if err != nil {
			log.Debug().Err(err).Str("type", t).Msg("Landmark nearby search failed")
			continue
		}
		best = r.pickBest(best, results, category, "nearby:"+t)
	}
	return best
}

func (r *Resolver) pickBest(best *Landmark, results []Place, category, query string) *Landmark {
	for _, p := range results {
		if p.Location.IsZero() || !IsValidLandmark(p, category, r.cfg.Thresholds) {
			continue
		}
		score := Prominence(p)
		if best == nil || score > best.Prominence {
			best = &Landmark{
				Name:       p.Name,
				Address:    p.Address,
				Location:   p.Location,
				Prominence: score,
				Query:      query,
			}
		}
	}
	return best
}
