package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"googlemaps.github.io/maps"

	"news-atlas/internal/cache"
)

func TestNominatimGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("q") {
		case "Paris, France":
			_, _ = w.Write([]byte(`[{"lat": "48.8566", "lon": "2.3522", "display_name": "Paris"}]`))
		case "busy":
			w.WriteHeader(http.StatusServiceUnavailable)
		case "bad":
			w.WriteHeader(http.StatusBadRequest)
		default:
			_, _ = w.Write([]byte(`[]`))
		}
	}))
	defer srv.Close()

	n := NewNominatim(srv.URL+"/", "test-agent")
	ctx := context.Background()

	c, err := n.Geocode(ctx, "Paris, France")
	require.NoError(t, err)
	assert.Equal(t, Coordinates{Lat: 48.8566, Lng: 2.3522}, c)

	_, err = n.Geocode(ctx, "Atlantis")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, IsTransient(err))

	_, err = n.Geocode(ctx, "busy")
	assert.ErrorIs(t, err, ErrTransient)
	assert.True(t, IsTransient(err))

	_, err = n.Geocode(ctx, "bad")
	assert.Error(t, err)
	assert.False(t, IsTransient(err))
}

func TestNominatimReverse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reverse", r.URL.Path)
		_, _ = w.Write([]byte(`{"display_name": "Austin, Texas, United States",
			"address": {"city": "Austin", "state": "Texas", "country": "United States", "country_code": "us"}}`))
	}))
	defer srv.Close()

	place, err := NewNominatim(srv.URL, "").Reverse(context.Background(), Coordinates{Lat: 30.27, Lng: -97.74})
	require.NoError(t, err)
	assert.Equal(t, "US", place.CountryCode)
	assert.Equal(t, "Austin", place.City)
	assert.Equal(t, "United States", place.Country)
}

func TestGoogleGeocode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("address") == "nowhere" {
			_, _ = w.Write([]byte(`{"results": [], "status": "ZERO_RESULTS"}`))
			return
		}
		_, _ = w.Write([]byte(`{"status": "OK", "results": [{
			"formatted_address": "11 Wall St, New York, NY 10005, USA",
			"geometry": {"location": {"lat": 40.7069, "lng": -74.0113}}}]}`))
	}))
	defer srv.Close()

	g, err := NewGoogle("AIzaTestKey", maps.WithBaseURL(srv.URL))
	require.NoError(t, err)

	c, err := g.Geocode(context.Background(), "New York Stock Exchange")
	require.NoError(t, err)
	assert.Equal(t, Coordinates{Lat: 40.7069, Lng: -74.0113}, c)

	_, err = g.Geocode(context.Background(), "nowhere")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisGeocodeCache(t *testing.T) {
	mr := miniredis.RunT(t)
	store, err := cache.NewRedisCache(mr.Addr(), "", 0)
	require.NoError(t, err)
	defer store.Close()

	c := NewRedisCache(store, time.Hour)
	ctx := context.Background()

	_, ok := c.Get(ctx, "paris, france")
	assert.False(t, ok)

	c.Set(ctx, "paris, france", paris)
	c.Set(ctx, "atlantis", Coordinates{})

	got, ok := c.Get(ctx, "paris, france")
	assert.True(t, ok)
	assert.Equal(t, paris, got)

	got, ok = c.Get(ctx, "atlantis")
	assert.True(t, ok, "failures are cached too")
	assert.True(t, got.IsZero())
}
