package repo

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"

	"news-atlas/internal/models"
)

var ErrNotFound = errors.New("article not found")

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Repository stores located articles.
type Repository interface {
	Save(ctx context.Context, article models.LocatedArticle) error
	Get(ctx context.Context, id string) (models.LocatedArticle, error)
	List(ctx context.Context, arg ListParams) ([]models.LocatedArticle, error)
	Popular(ctx context.Context, limit int) ([]models.LocatedArticle, error)
	Nearby(ctx context.Context, arg NearbyParams) ([]NearbyArticle, error)
}

// ListParams filters the newest-first listing. An empty Category lists all.
type ListParams struct {
	Category string
	Limit    int
}

type NearbyParams struct {
	Lat      float64
	Lng      float64
	RadiusKm float64
	Limit    int
}

type NearbyArticle struct {
	models.LocatedArticle
	DistanceKm float64 `json:"distance_km"`
}

// ClampLimit applies DefaultLimit and MaxLimit.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	}
	return limit
}

func sortNewest(articles []models.LocatedArticle) {
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})
}

func sortPopular(articles []models.LocatedArticle) {
	sort.SliceStable(articles, func(i, j int) bool {
		if articles[i].PopularityScore != articles[j].PopularityScore {
			return articles[i].PopularityScore > articles[j].PopularityScore
		}
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})
}

func matchesCategory(a models.LocatedArticle, category string) bool {
	return category == "" || strings.EqualFold(a.Category, category)
}

// withinRadius returns the geocoded articles within arg.RadiusKm, nearest first.
func withinRadius(articles []models.LocatedArticle, arg NearbyParams) []NearbyArticle {
	var results []NearbyArticle
	for _, a := range articles {
		c := a.Location.Coordinates
		if c.IsZero() {
			continue
		}
		distance := haversineDistance(arg.Lat, arg.Lng, c.Lat, c.Lng)
		if distance <= arg.RadiusKm {
			results = append(results, NearbyArticle{LocatedArticle: a, DistanceKm: distance})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].DistanceKm < results[j].DistanceKm
	})
	if limit := ClampLimit(arg.Limit); len(results) > limit {
		results = results[:limit]
	}
	return results
}

// haversineDistance returns the great-circle distance in kilometers.
func haversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	const R = 6371

	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return R * c
}
