package location

import (
	"fmt"
	"strings"

	"news-atlas/internal/models"
	"news-atlas/internal/services/geocode"
)

const (
	fallbackMatchConfidence  = 0.3
	fallbackRandomConfidence = 0.1
)

type knownCity struct {
	keyword string
	name    string
	coords  geocode.Coordinates
}

var knownCities = []knownCity{
	{"new york", "New York, NY, USA", geocode.Coordinates{Lat: 40.7128, Lng: -74.0060}},
	{"washington", "Washington, DC, USA", geocode.Coordinates{Lat: 38.9072, Lng: -77.0369}},
	{"london", "London, United Kingdom", geocode.Coordinates{Lat: 51.5074, Lng: -0.1278}},
	{"paris", "Paris, France", geocode.Coordinates{Lat: 48.8566, Lng: 2.3522}},
	{"tokyo", "Tokyo, Japan", geocode.Coordinates{Lat: 35.6762, Lng: 139.6503}},
	{"beijing", "Beijing, China", geocode.Coordinates{Lat: 39.9042, Lng: 116.4074}},
	{"moscow", "Moscow, Russia", geocode.Coordinates{Lat: 55.7558, Lng: 37.6173}},
}

// FallbackDetect locates an article without a text generator by matching city
// names in its title and summary. With no match a random known city is chosen
// at the lowest confidence. intn must return a value in [0, n).
func FallbackDetect(article models.Article, intn func(int) int) models.LocationResult {
	text := strings.ToLower(article.Title + " " + article.Summary)
	for _, city := range knownCities {
		if strings.Contains(text, city.keyword) {
			return models.LocationResult{
				LocationName: city.name,
				Coordinates:  city.coords,
				Confidence:   fallbackMatchConfidence,
				Topic:        "general",
				Category:     "general",
				Reasoning:    fmt.Sprintf("Keyword match on %q in the article text.", city.keyword),
			}
		}
	}

	city := knownCities[intn(len(knownCities))]
	return models.LocationResult{
		LocationName: city.name,
		Coordinates:  city.coords,
		Confidence:   fallbackRandomConfidence,
		Topic:        "general",
		Category:     "general",
		Reasoning:    "No location found in the article text; using a default city.",
	}
}
