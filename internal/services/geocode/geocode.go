package geocode

import (
	"context"
	"errors"
	"net"
	"strings"
)

var (
	// ErrNotFound means the provider answered but had no match. It is not retried.
	ErrNotFound = errors.New("location not found")
	// ErrTransient marks timeouts, rate limits and 5xx responses.
	ErrTransient = errors.New("transient geocoding failure")
)

// Coordinates is a WGS84 point. The zero value means unresolved.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (c Coordinates) IsZero() bool {
	return c.Lat == 0 && c.Lng == 0
}

// Place is the subset of a reverse-geocoding answer the pipelines use.
type Place struct {
	DisplayName string `json:"display_name"`
	City        string `json:"city"`
	Country     string `json:"country"`
	CountryCode string `json:"country_code"`
}

// Provider turns a free-text query into coordinates.
type Provider interface {
	Geocode(ctx context.Context, query string) (Coordinates, error)
}

// ReverseProvider turns coordinates into a place description.
type ReverseProvider interface {
	Reverse(ctx context.Context, c Coordinates) (Place, error)
}

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, ErrTransient) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// Normalize produces the cache key for a location string.
func Normalize(location string) string {
	return strings.ToLower(strings.Join(strings.Fields(location), " "))
}

// Simplify drops the trailing country segment and keeps at most the first two
// comma-separated segments. Single-segment input is returned unchanged.
func Simplify(location string) string {
	parts := segments(location)
	if len(parts) < 2 {
		return strings.TrimSpace(location)
	}
	parts = parts[:len(parts)-1]
	if len(parts) > 2 {
		parts = parts[:2]
	}
	return strings.Join(parts, ", ")
}

func segments(location string) []string {
	raw := strings.Split(location, ",")
	parts := make([]string, 0, len(raw))
	for _, p := range raw {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
