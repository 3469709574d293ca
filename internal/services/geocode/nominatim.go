package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultNominatimURL       = "https://nominatim.openstreetmap.org"
	DefaultNominatimUserAgent = "news_atlas_app"
)

// Nominatim queries an OpenStreetMap Nominatim instance.
type Nominatim struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

func NewNominatim(baseURL, userAgent string) *Nominatim {
	if baseURL == "" {
		baseURL = DefaultNominatimURL
	}
	if userAgent == "" {
		userAgent = DefaultNominatimUserAgent
	}
	return &Nominatim{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

type nominatimResult struct {
	Lat         string           `json:"lat"`
	Lon         string           `json:"lon"`
	DisplayName string           `json:"display_name"`
	Address     nominatimAddress `json:"address"`
}

type nominatimAddress struct {
	City        string `json:"city"`
	Town        string `json:"town"`
	State       string `json:"state"`
	Country     string `json:"country"`
	CountryCode string `json:"country_code"`
}

func (n *Nominatim) Geocode(ctx context.Context, query string) (Coordinates, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")

	var results []nominatimResult
	if err := n.get(ctx, "/search", params, &results); err != nil {
		return Coordinates{}, err
	}
	if len(results) == 0 {
		return Coordinates{}, fmt.Errorf("nominatim %q: %w", query, ErrNotFound)
	}
	return parseLatLon(results[0].Lat, results[0].Lon)
}

func (n *Nominatim) Reverse(ctx context.Context, c Coordinates) (Place, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(c.Lat, 'f', 6, 64))
	params.Set("lon", strconv.FormatFloat(c.Lng, 'f', 6, 64))
	params.Set("format", "json")
	params.Set("zoom", "10")

	var result nominatimResult
	if err := n.get(ctx, "/reverse", params, &result); err != nil {
		return Place{}, err
	}
	if result.Address.CountryCode == "" {
		return Place{}, fmt.Errorf("nominatim reverse: %w", ErrNotFound)
	}

	city := result.Address.City
	if city == "" {
		city = result.Address.Town
	}
	return Place{
		DisplayName: result.DisplayName,
		City:        city,
		Country:     result.Address.Country,
		CountryCode: strings.ToUpper(result.Address.CountryCode),
	}, nil
}

func (n *Nominatim) get(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to build nominatim request: %w", err)
	}
	req.Header.Set("User-Agent", n.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: nominatim: %v", ErrTransient, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return fmt.Errorf("%w: nominatim status %d", ErrTransient, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("nominatim status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode nominatim response: %w", err)
	}
	return nil
}

func parseLatLon(lat, lon string) (Coordinates, error) {
	la, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("invalid latitude %q: %w", lat, err)
	}
	lo, err := strconv.ParseFloat(lon, 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("invalid longitude %q: %w", lon, err)
	}
	return Coordinates{Lat: la, Lng: lo}, nil
}
