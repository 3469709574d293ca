package landmark

import (
	"context"
	"strings"

	"news-atlas/internal/services/geocode"
)

// Categories understood by the query table and the validator.
const (
	CategoryFinance     = "finance"
	CategoryPolitical   = "political"
	CategoryEnergy      = "energy"
	CategoryTechnology  = "technology"
	CategoryHealth      = "health"
	CategoryMilitary    = "military"
	CategorySports      = "sports"
	CategoryTransport   = "transport"
	CategoryEnvironment = "environment"
	CategoryGeneral     = "general"
)

// Place is a single places-search hit.
type Place struct {
	Name             string              `json:"name"`
	Address          string              `json:"address"`
	Location         geocode.Coordinates `json:"location"`
	Types            []string            `json:"types"`
	Rating           float64             `json:"rating"`
	UserRatingsTotal int                 `json:"user_ratings_total"`
}

// PlacesSearch is the places API used to discover landmarks.
type PlacesSearch interface {
	SearchText(ctx context.Context, query string) ([]Place, error)
	NearbySearch(ctx context.Context, center geocode.Coordinates, radiusMeters int, placeType string) ([]Place, error)
}

// Landmark is a validated, named place.
type Landmark struct {
	Name       string              `json:"name"`
	Address    string              `json:"address,omitempty"`
	Location   geocode.Coordinates `json:"location"`
	Prominence float64             `json:"prominence"`
	Query      string              `json:"query,omitempty"`
}

// NormalizeCategory folds the free-text categories a model produces onto the
// known set.
func NormalizeCategory(category string) string {
	c := strings.ToLower(strings.TrimSpace(category))
	switch c {
	case "finance", "financial", "business", "economy", "economic", "markets", "market", "banking":
		return CategoryFinance
	case "political", "politics", "government", "policy", "diplomacy", "election", "elections":
		return CategoryPolitical
	case "energy", "oil", "power", "utilities":
		return CategoryEnergy
	case "technology", "tech", "science":
		return CategoryTechnology
	case "health", "healthcare", "medical", "medicine":
		return CategoryHealth
	case "military", "defense", "defence", "war", "conflict":
		return CategoryMilitary
	case "sports", "sport":
		return CategorySports
	case "transport", "transportation", "aviation", "shipping", "logistics":
		return CategoryTransport
	case "environment", "climate", "weather":
		return CategoryEnvironment
	case "":
		return CategoryGeneral
	}
	return c
}
