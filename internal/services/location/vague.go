package location

import (
	"regexp"
	"strings"
)

var landmarkIndicator = regexp.MustCompile(`(?i)\b(` + strings.Join([]string{
	"building", "buildings", "palace", "exchange", "embassy", "consulate", "parliament", "capitol",
	"congress", "senate", "assembly", "tower", "headquarters", "hq", "bank", "ministry", "department",
	"plant", "station", "port", "airport", "farm", "field", "refinery", "factory", "mine", "dam",
	"bridge", "square", "hall", "court", "courthouse", "university", "campus", "stadium", "arena",
	"museum", "cathedral", "temple", "church", "mosque", "kremlin", "pentagon", "white house",
	"center", "centre", "office", "base", "hospital", "park", "reserve", "chancellery", "diet",
}, "|") + `)\b`)

// commonPlaces are cities, regions and countries that on their own never
// identify a landmark.
var commonPlaces = toSet(
	"new york", "new york city", "nyc", "washington", "washington dc", "london", "paris", "tokyo",
	"beijing", "shanghai", "hong kong", "moscow", "berlin", "frankfurt", "madrid", "rome", "milan",
	"brussels", "geneva", "zurich", "dubai", "riyadh", "mumbai", "new delhi", "delhi", "seoul",
	"sydney", "toronto", "ottawa", "singapore", "san francisco", "los angeles", "chicago", "houston",
	"boston", "seattle", "kyiv", "kiev", "tehran", "jerusalem", "tel aviv", "cairo", "istanbul",
	"texas", "california", "florida", "silicon valley", "wall street", "europe", "asia", "africa",
	"middle east", "united states", "usa", "us", "uk", "united kingdom", "china", "japan", "russia",
	"germany", "france", "india", "spain", "italy", "canada", "brazil", "mexico", "ukraine", "israel",
	"iran", "australia", "south korea", "saudi arabia",
)

func toSet(items ...string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, it := range items {
		set[it] = true
	}
	return set
}

// IsVague reports whether a location string lacks landmark specificity: a one
// or two word common place, or a first segment of fewer than three words
// without any landmark indicator.
func IsVague(location string) bool {
	loc := strings.TrimSpace(location)
	if loc == "" || strings.EqualFold(loc, "unknown") {
		return true
	}

	first, _, _ := strings.Cut(loc, ",")
	first = strings.ToLower(strings.Join(strings.Fields(first), " "))
	words := strings.Fields(first)

	if len(words) <= 2 && commonPlaces[first] {
		return true
	}
	return !landmarkIndicator.MatchString(first) && len(words) < 3
}
