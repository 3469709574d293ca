package landmark

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news-atlas/internal/services/geocode"
)

func TestIsValidLandmark(t *testing.T) {
	th := DefaultThresholds()
	tests := []struct {
		name     string
		place    Place
		category string
		want     bool
	}{
		{
			name:     "residential street address",
			place:    Place{Name: "123 Main Street Apartment 4B", Rating: 5, UserRatingsTotal: 10000},
			category: "finance",
			want:     false,
		},
		{
			name:     "stock exchange with enough prominence",
			place:    Place{Name: "New York Stock Exchange", Rating: 4.6, UserRatingsTotal: 500},
			category: "finance",
			want:     true,
		},
		{
			name:     "obscure finance office",
			place:    Place{Name: "Smith Capital Partners", Rating: 4.0, UserRatingsTotal: 12, Types: []string{"point_of_interest"}},
			category: "finance",
			want:     false,
		},
		{
			name:     "obscure but institutional",
			place:    Place{Name: "Bank of Lithuania", Rating: 3.9, UserRatingsTotal: 40, Types: []string{"bank", "finance"}},
			category: "financial",
			want:     true,
		},
		{
			name:     "embassy without reviews",
			place:    Place{Name: "Embassy of France", Types: []string{"embassy"}},
			category: "political",
			want:     true,
		},
		{
			name:     "suite in address",
			place:    Place{Name: "Policy Institute", Address: "1 K St, Suite 400, Washington", Rating: 4.9, UserRatingsTotal: 900},
			category: "political",
			want:     false,
		},
		{
			name:     "bare premise",
			place:    Place{Name: "Lakeside Tower", Types: []string{"premise"}, Rating: 4, UserRatingsTotal: 1000},
			category: "energy",
			want:     false,
		},
		{
			name:     "wind farm with a few reviews",
			place:    Place{Name: "Roscoe Wind Farm", Rating: 4.3, UserRatingsTotal: 37},
			category: "energy",
			want:     true,
		},
		{
			name:     "empty name",
			place:    Place{Rating: 5, UserRatingsTotal: 5000},
			category: "finance",
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidLandmark(tt.place, tt.category, th))
		})
	}
}

func TestIsResidential(t *testing.T) {
	assert.True(t, IsResidential(Place{Name: "123 Main Street Apartment 4B"}))
	assert.True(t, IsResidential(Place{Name: "77B Baker Road"}))
	assert.True(t, IsResidential(Place{Name: "Riverside Residences"}))
	assert.True(t, IsResidential(Place{Name: "Unit 7 Business Park"}))
	assert.True(t, IsResidential(Place{Name: "Somewhere", Types: []string{"street_address", "geocode"}}))
	assert.False(t, IsResidential(Place{Name: "United Nations Headquarters"}))
	assert.False(t, IsResidential(Place{Name: "New York Stock Exchange", Address: "11 Wall St, New York"}))
	assert.False(t, IsResidential(Place{Name: "Bank of England", Types: []string{"bank", "premise"}}))
}

func TestQueries(t *testing.T) {
	qs := Queries("London, United Kingdom", "interest rate decision", "finance", 0)
	require.NotEmpty(t, qs)
	assert.Equal(t, "London Stock Exchange", qs[0])
	assert.Equal(t, "Bank of England", qs[1])
	assert.Contains(t, qs, "central bank of London")
	assert.LessOrEqual(t, len(qs), DefaultMaxQueries)

	qs = Queries("Texas", "wind farm investment", "energy", 3)
	assert.Equal(t, []string{"Texas wind farm", "Texas power plant", "Texas oil refinery"}, qs)

	qs = Queries("NYC", "", "political", 2)
	assert.Equal(t, []string{"United Nations Headquarters", "New York City Hall"}, qs)

	assert.Empty(t, Queries(" , Spain", "", "finance", 5))
}

func TestQueriesUnknownCategoryUsesGeneral(t *testing.T) {
	qs := Queries("Lisbon", "", "culture", 5)
	assert.Equal(t, []string{"Lisbon city hall", "Lisbon landmark", "Lisbon museum"}, qs)
}

func TestCountryDefaults(t *testing.T) {
	code, ok := CountryOf("Madrid, Spain")
	require.True(t, ok)
	assert.Equal(t, "ES", code)

	code, ok = CountryOf("Austin, Texas")
	require.True(t, ok)
	assert.Equal(t, "US", code)

	_, ok = CountryOf("Atlantis")
	assert.False(t, ok)

	l, ok := CountryDefault("us", "financial")
	require.True(t, ok)
	assert.Contains(t, l.Name, "New York Stock Exchange")
	assert.False(t, l.Location.IsZero())

	l, ok = CountryDefault("FR", "sports")
	require.True(t, ok)
	assert.Contains(t, l.Name, "Eiffel Tower")

	_, ok = CountryDefault("ZZ", "finance")
	assert.False(t, ok)
}

type fakePlaces struct {
	text   map[string][]Place
	nearby map[string][]Place
	errs   map[string]error
	calls  []string
}

func (f *fakePlaces) SearchText(_ context.Context, query string) ([]Place, error) {
	f.calls = append(f.calls, query)
	if err := f.errs[query]; err != nil {
		return nil, err
	}
	return f.text[query], nil
}

func (f *fakePlaces) NearbySearch(_ context.Context, _ geocode.Coordinates, _ int, placeType string) ([]Place, error) {
	f.calls = append(f.calls, "nearby:"+placeType)
	return f.nearby[placeType], nil
}

type staticGeocoder map[string]geocode.Coordinates

func (s staticGeocoder) Resolve(_ context.Context, location string) geocode.Coordinates {
	return s[location]
}

func TestResolverPicksMostProminentValidCandidate(t *testing.T) {
	places := &fakePlaces{
		text: map[string][]Place{
			"New York Stock Exchange": {
				{Name: "New York Stock Exchange", Rating: 4.6, UserRatingsTotal: 500, Location: geocode.Coordinates{Lat: 40.7069, Lng: -74.0113}},
				{Name: "12 Broad Street Apartment 3", Rating: 5, UserRatingsTotal: 5000, Location: geocode.Coordinates{Lat: 40.70, Lng: -74.01}},
			},
			"Federal Reserve Bank of New York": {
				{Name: "Federal Reserve Bank of New York", Rating: 4.5, UserRatingsTotal: 300, Location: geocode.Coordinates{Lat: 40.7081, Lng: -74.0087}},
			},
		},
		errs: map[string]error{"New York stock exchange": errors.New("quota")},
	}
	r := NewResolver(places, nil, DefaultConfig())

	got, ok := r.Resolve(context.Background(), "New York, USA", "markets", "finance")
	require.True(t, ok)
	assert.Equal(t, "New York Stock Exchange", got.Name)
	assert.InDelta(t, 2300, got.Prominence, 0.001)
	assert.Equal(t, "New York Stock Exchange", got.Query)
}

func TestResolverNearbyStage(t *testing.T) {
	places := &fakePlaces{
		nearby: map[string][]Place{
			"bank": {{Name: "Banco de Portugal", Types: []string{"bank"}, Location: geocode.Coordinates{Lat: 38.70, Lng: -9.13}}},
		},
	}
	geo := staticGeocoder{"Lisbon, Portugal": {Lat: 38.72, Lng: -9.14}}
	r := NewResolver(places, geo, DefaultConfig())

	got, ok := r.Resolve(context.Background(), "Lisbon, Portugal", "", "finance")
	require.True(t, ok)
	assert.Equal(t, "Banco de Portugal", got.Name)
	assert.Equal(t, "nearby:bank", got.Query)
}

func TestResolverNothingValid(t *testing.T) {
	places := &fakePlaces{text: map[string][]Place{
		"Springfield stock exchange": {{Name: "4 Elm Street", Location: geocode.Coordinates{Lat: 1, Lng: 1}}},
	}}
	r := NewResolver(places, nil, DefaultConfig())

	got, ok := r.Resolve(context.Background(), "Springfield", "", "finance")
	assert.False(t, ok)
	assert.Nil(t, got)

	var nilResolver *Resolver
	_, ok = nilResolver.Resolve(context.Background(), "Springfield", "", "finance")
	assert.False(t, ok)
}
