package landmark

import (
	"regexp"
	"strings"
)

const DefaultMinProminence = 1000

// Thresholds are the tunable acceptance limits for IsValidLandmark.
type Thresholds struct {
	MinProminence float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{MinProminence: DefaultMinProminence}
}

var (
	streetNumberPattern = regexp.MustCompile(`^\s*\d+[A-Za-z]?(?:-\d+)?\s+\S`)
	residentialPattern  = regexp.MustCompile(`(?i)\b(apartments?|residences?|suites?|units?)\b`)
)

var bareAddressTypes = map[string]bool{
	"street_address": true,
	"premise":        true,
	"subpremise":     true,
	"route":          true,
	"geocode":        true,
}

var institutionTypes = map[string]map[string]bool{
	CategoryFinance: {
		"bank":           true,
		"finance":        true,
		"stock_exchange": true,
	},
	CategoryPolitical: {
		"city_hall":               true,
		"courthouse":              true,
		"embassy":                 true,
		"local_government_office": true,
		"capitol":                 true,
		"government":              true,
	},
}

var genericTypes = map[string]bool{
	"point_of_interest": true,
	"establishment":     true,
	"political":         true,
	"locality":          true,
}

// Prominence is rating times review count.
func Prominence(p Place) float64 {
	return p.Rating * float64(p.UserRatingsTotal)
}

// IsResidential reports whether a place looks like a private address: a name
// starting with a street number, an apartment/residence/suite/unit keyword in
// the name or address, or only bare address place types.
func IsResidential(p Place) bool {
	if streetNumberPattern.MatchString(p.Name) {
		return true
	}
	if residentialPattern.MatchString(p.Name) || residentialPattern.MatchString(p.Address) {
		return true
	}
	if len(p.Types) == 0 {
		return false
	}
	for _, t := range p.Types {
		if !bareAddressTypes[t] {
			return false
		}
	}
	return true
}

// IsValidLandmark decides whether p is prominent and public enough to stand in
// for a location. Finance and political landmarks need MinProminence or an
// institution type.
func IsValidLandmark(p Place, category string, th Thresholds) bool {
	if strings.TrimSpace(p.Name) == "" || IsResidential(p) {
		return false
	}

	prominence := Prominence(p)
	switch cat := NormalizeCategory(category); cat {
	case CategoryFinance, CategoryPolitical:
		return prominence >= th.MinProminence || hasType(p, institutionTypes[cat])
	default:
		if prominence > 0 {
			return true
		}
		for _, t := range p.Types {
			if !genericTypes[t] && !bareAddressTypes[t] {
				return true
			}
		}
		return false
	}
}

func hasType(p Place, set map[string]bool) bool {
	for _, t := range p.Types {
		if set[t] {
			return true
		}
	}
	return false
}
