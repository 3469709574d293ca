package landmark

import (
	"context"
	"errors"
	"fmt"

	"googlemaps.github.io/maps"

	"news-atlas/internal/services/geocode"
)

// GooglePlaces implements PlacesSearch on the Google Places API.
type GooglePlaces struct {
	client *maps.Client
}

func NewGooglePlaces(client *maps.Client) *GooglePlaces {
	return &GooglePlaces{client: client}
}

func (g *GooglePlaces) SearchText(ctx context.Context, query string) ([]Place, error) {
	resp, err := g.client.TextSearch(ctx, &maps.TextSearchRequest{Query: query})
	if err != nil {
		return g.handleError(ctx, err)
	}
	return convertResults(resp.Results), nil
}

func (g *GooglePlaces) NearbySearch(ctx context.Context, center geocode.Coordinates, radiusMeters int, placeType string) ([]Place, error) {
	req := &maps.NearbySearchRequest{
		Location: &maps.LatLng{Lat: center.Lat, Lng: center.Lng},
		Radius:   uint(radiusMeters),
	}
	if placeType != "" {
		req.Type = maps.PlaceType(placeType)
	}

	resp, err := g.client.NearbySearch(ctx, req)
	if err != nil {
		return g.handleError(ctx, err)
	}
	return convertResults(resp.Results), nil
}

func (g *GooglePlaces) handleError(ctx context.Context, err error) ([]Place, error) {
	classified := geocode.ClassifyGoogleError(ctx, err)
	if errors.Is(classified, geocode.ErrNotFound) {
		return nil, nil
	}
	return nil, fmt.Errorf("places search: %w", classified)
}

func convertResults(results []maps.PlacesSearchResult) []Place {
	places := make([]Place, 0, len(results))
	for _, r := range results {
		address := r.FormattedAddress
		if address == "" {
			address = r.Vicinity
		}
		places = append(places, Place{
			Name:             r.Name,
			Address:          address,
			Location:         geocode.Coordinates{Lat: r.Geometry.Location.Lat, Lng: r.Geometry.Location.Lng},
			Types:            r.Types,
			Rating:           float64(r.Rating),
			UserRatingsTotal: r.UserRatingsTotal,
		})
	}
	return places
}
