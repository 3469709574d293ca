package repo

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news-atlas/internal/cache"
	"news-atlas/internal/models"
	"news-atlas/internal/services/geocode"
)

func located(id, category string, score float64, age time.Duration, at geocode.Coordinates) models.LocatedArticle {
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	return models.LocatedArticle{
		Article: models.Article{
			ID:          id,
			Title:       "Article " + id,
			Source:      "Reuters",
			PublishedAt: base.Add(-age),
		},
		Location:        models.LocationResult{LocationName: "Somewhere", Coordinates: at},
		Category:        category,
		PopularityScore: score,
		ProcessedAt:     base,
	}
}

var (
	nyse        = geocode.Coordinates{Lat: 40.7069, Lng: -74.0113}
	wallStreet  = geocode.Coordinates{Lat: 40.7060, Lng: -74.0088}
	westminster = geocode.Coordinates{Lat: 51.4995, Lng: -0.1248}
)

func seed(t *testing.T, r Repository) {
	t.Helper()
	ctx := context.Background()
	for _, a := range []models.LocatedArticle{
		located("a", models.CategoryFinancial, 0.5, 3*time.Hour, nyse),
		located("b", models.CategoryPolitical, 1.0, 2*time.Hour, westminster),
		located("c", models.CategoryFinancial, 0.8, 1*time.Hour, wallStreet),
		located("d", models.CategoryPolitical, 0.7, 4*time.Hour, geocode.Coordinates{}),
	} {
		require.NoError(t, r.Save(ctx, a))
	}
}

func ids(articles []models.LocatedArticle) []string {
	out := make([]string, len(articles))
	for i, a := range articles {
		out[i] = a.ID
	}
	return out
}

func exerciseRepository(t *testing.T, r Repository) {
	ctx := context.Background()
	seed(t, r)

	t.Run("get", func(t *testing.T) {
		got, err := r.Get(ctx, "b")
		require.NoError(t, err)
		assert.Equal(t, "Article b", got.Title)
		assert.Equal(t, westminster, got.Location.Coordinates)

		_, err = r.Get(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("list newest first", func(t *testing.T) {
		got, err := r.List(ctx, ListParams{})
		require.NoError(t, err)
		assert.Equal(t, []string{"c", "b", "a", "d"}, ids(got))
	})

	t.Run("list by category", func(t *testing.T) {
		got, err := r.List(ctx, ListParams{Category: "financial", Limit: 1})
		require.NoError(t, err)
		assert.Equal(t, []string{"c"}, ids(got))
	})

	t.Run("popular", func(t *testing.T) {
		got, err := r.Popular(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "c", "d"}, ids(got))
	})

	t.Run("nearby", func(t *testing.T) {
		got, err := r.Nearby(ctx, NearbyParams{Lat: nyse.Lat, Lng: nyse.Lng, RadiusKm: 5, Limit: 10})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "a", got[0].ID)
		assert.Equal(t, "c", got[1].ID)
		assert.Less(t, got[1].DistanceKm, 1.0)
	})
}

func TestMemoryRepository(t *testing.T) {
	exerciseRepository(t, NewMemoryRepository())
}

func TestRedisRepository(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := cache.NewRedisCache(mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	exerciseRepository(t, NewRedisRepository(c))
}

func TestMemoryRepositoryAssignsIDs(t *testing.T) {
	r := NewMemoryRepository()
	a := located("", models.CategoryPolitical, 0.5, 0, geocode.Coordinates{})
	a.URL = "https://example.com/story"

	require.NoError(t, r.Save(context.Background(), a))
	require.NoError(t, r.Save(context.Background(), a))
	assert.Equal(t, 1, r.Len())
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, ClampLimit(0))
	assert.Equal(t, MaxLimit, ClampLimit(5000))
	assert.Equal(t, 7, ClampLimit(7))
}

func TestHaversineDistance(t *testing.T) {
	d := haversineDistance(51.5074, -0.1278, 48.8566, 2.3522)
	assert.InDelta(t, 343, d, 2)
}
