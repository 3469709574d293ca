package geocode

import (
	"context"
	"fmt"
	"strings"

	"googlemaps.github.io/maps"
)

// Google wraps the Google Geocoding API.
type Google struct {
	client *maps.Client
}

func NewGoogle(apiKey string, opts ...maps.ClientOption) (*Google, error) {
	client, err := maps.NewClient(append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create google maps client: %w", err)
	}
	return &Google{client: client}, nil
}

// Client exposes the underlying maps client so Places search can share it.
func (g *Google) Client() *maps.Client {
	return g.client
}

func (g *Google) Geocode(ctx context.Context, query string) (Coordinates, error) {
	results, err := g.client.Geocode(ctx, &maps.GeocodingRequest{Address: query})
	if err != nil {
		return Coordinates{}, ClassifyGoogleError(ctx, err)
	}
	if len(results) == 0 {
		return Coordinates{}, fmt.Errorf("google %q: %w", query, ErrNotFound)
	}
	loc := results[0].Geometry.Location
	return Coordinates{Lat: loc.Lat, Lng: loc.Lng}, nil
}

func (g *Google) Reverse(ctx context.Context, c Coordinates) (Place, error) {
	results, err := g.client.ReverseGeocode(ctx, &maps.GeocodingRequest{
		LatLng: &maps.LatLng{Lat: c.Lat, Lng: c.Lng},
	})
	if err != nil {
		return Place{}, ClassifyGoogleError(ctx, err)
	}
	if len(results) == 0 {
		return Place{}, fmt.Errorf("google reverse: %w", ErrNotFound)
	}

	place := Place{DisplayName: results[0].FormattedAddress}
	for _, comp := range results[0].AddressComponents {
		for _, t := range comp.Types {
			switch t {
			case "country":
				place.Country = comp.LongName
				place.CountryCode = strings.ToUpper(comp.ShortName)
			case "locality":
				place.City = comp.LongName
			}
		}
	}
	if place.CountryCode == "" {
		return Place{}, fmt.Errorf("google reverse: %w", ErrNotFound)
	}
	return place, nil
}

// ClassifyGoogleError maps Google status errors onto ErrNotFound and ErrTransient.
func ClassifyGoogleError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "ZERO_RESULTS"), strings.Contains(msg, "NOT_FOUND"):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case strings.Contains(msg, "OVER_QUERY_LIMIT"), strings.Contains(msg, "UNKNOWN_ERROR"):
		return fmt.Errorf("%w: %v", ErrTransient, err)
	case IsTransient(err):
		return fmt.Errorf("%w: %v", ErrTransient, err)
	}
	return fmt.Errorf("google maps: %w", err)
}
