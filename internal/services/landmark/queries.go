package landmark

import (
	"fmt"
	"strings"
)

const DefaultMaxQueries = 6

var categoryTemplates = map[string][]string{
	CategoryFinance:     {"%s stock exchange", "central bank of %s", "%s financial district", "%s bank headquarters"},
	CategoryPolitical:   {"%s parliament", "%s city hall", "%s government building", "US embassy %s"},
	CategoryEnergy:      {"%s power plant", "%s wind farm", "%s oil refinery", "%s energy company headquarters"},
	CategoryTechnology:  {"%s tech campus", "%s technology park", "%s innovation center"},
	CategoryHealth:      {"%s hospital", "%s medical center", "%s health ministry"},
	CategoryMilitary:    {"%s military base", "%s defense ministry"},
	CategorySports:      {"%s stadium", "%s arena"},
	CategoryTransport:   {"%s international airport", "port of %s", "%s central station"},
	CategoryEnvironment: {"%s national park", "%s environmental agency"},
	CategoryGeneral:     {"%s city hall", "%s landmark", "%s museum"},
}

type topicRule struct {
	keywords  []string
	templates []string
}

// Topic rules are checked in order; every matching rule contributes.
var topicRules = []topicRule{
	{[]string{"wind"}, []string{"%s wind farm"}},
	{[]string{"solar"}, []string{"%s solar farm", "%s solar power plant"}},
	{[]string{"nuclear"}, []string{"%s nuclear power plant"}},
	{[]string{"oil", "gas", "refinery", "pipeline"}, []string{"%s oil refinery", "%s oil field"}},
	{[]string{"interest rate", "inflation", "central bank", "monetary"}, []string{"central bank of %s"}},
	{[]string{"stock", "shares", "ipo", "earnings", "market"}, []string{"%s stock exchange"}},
	{[]string{"election", "vote", "ballot"}, []string{"%s election commission", "%s capitol"}},
	{[]string{"court", "trial", "lawsuit", "ruling"}, []string{"%s supreme court", "%s courthouse"}},
	{[]string{"shipping", "port", "trade", "tariff"}, []string{"port of %s"}},
	{[]string{"airline", "airport", "flight"}, []string{"%s international airport"}},
	{[]string{"ai", "software", "chip", "semiconductor", "tech"}, []string{"%s tech campus"}},
	{[]string{"hospital", "vaccine", "pandemic", "drug"}, []string{"%s hospital"}},
}

// City overrides name the landmark directly for the capitals that dominate
// financial and political coverage.
var cityOverrides = map[string]map[string][]string{
	"new york": {
		CategoryFinance:   {"New York Stock Exchange", "Federal Reserve Bank of New York"},
		CategoryPolitical: {"United Nations Headquarters", "New York City Hall"},
	},
	"london": {
		CategoryFinance:   {"London Stock Exchange", "Bank of England"},
		CategoryPolitical: {"Palace of Westminster", "Foreign, Commonwealth and Development Office"},
	},
	"washington": {
		CategoryFinance:   {"Marriner S. Eccles Federal Reserve Board Building", "US Department of the Treasury"},
		CategoryPolitical: {"United States Capitol", "White House"},
	},
	"tokyo": {
		CategoryFinance:   {"Tokyo Stock Exchange", "Bank of Japan"},
		CategoryPolitical: {"National Diet Building", "Prime Minister's Office of Japan"},
	},
	"paris": {
		CategoryFinance:   {"Euronext Paris", "Banque de France"},
		CategoryPolitical: {"Élysée Palace", "Assemblée nationale"},
	},
	"beijing": {
		CategoryFinance:   {"People's Bank of China"},
		CategoryPolitical: {"Great Hall of the People", "Zhongnanhai"},
	},
	"brussels": {
		CategoryFinance:   {"National Bank of Belgium"},
		CategoryPolitical: {"Berlaymont building", "European Parliament Brussels"},
	},
	"frankfurt": {
		CategoryFinance: {"European Central Bank", "Frankfurt Stock Exchange"},
	},
	"hong kong": {
		CategoryFinance:   {"Hong Kong Stock Exchange", "Hong Kong Monetary Authority"},
		CategoryPolitical: {"Central Government Offices Hong Kong"},
	},
	"moscow": {
		CategoryFinance:   {"Moscow Exchange", "Bank of Russia"},
		CategoryPolitical: {"Moscow Kremlin", "State Duma"},
	},
	"berlin": {
		CategoryFinance:   {"Deutsche Bundesbank Berlin"},
		CategoryPolitical: {"Reichstag Building", "German Chancellery"},
	},
}

var cityAliases = map[string]string{
	"nyc":             "new york",
	"new york city":   "new york",
	"manhattan":       "new york",
	"washington dc":   "washington",
	"washington d.c.": "washington",
	"d.c.":            "washington",
}

// Queries builds the ranked search queries for an area: city overrides first,
// then topic-driven templates, then the category templates. Duplicates are
// dropped and the list is capped at max (DefaultMaxQueries when max <= 0).
func Queries(area, topic, category string, max int) []string {
	if max <= 0 {
		max = DefaultMaxQueries
	}
	city := primarySegment(area)
	if city == "" {
		return nil
	}
	cat := NormalizeCategory(category)

	var out []string
	seen := make(map[string]bool)
	add := func(q string) {
		key := strings.ToLower(q)
		if len(out) >= max || seen[key] {
			return
		}
		seen[key] = true
		out = append(out, q)
	}

	if overrides, ok := cityOverrides[canonicalCity(city)]; ok {
		for _, name := range overrides[cat] {
			add(name)
		}
	}

	topicText := " " + strings.ToLower(topic) + " "
	for _, rule := range topicRules {
		if !matchesAny(topicText, rule.keywords) {
			continue
		}
		for _, tmpl := range rule.templates {
			add(fmt.Sprintf(tmpl, city))
		}
	}

	templates, ok := categoryTemplates[cat]
	if !ok {
		templates = categoryTemplates[CategoryGeneral]
	}
	for _, tmpl := range templates {
		add(fmt.Sprintf(tmpl, city))
	}
	return out
}

func matchesAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, " "+kw+" ") || (len(kw) > 3 && strings.Contains(text, " "+kw)) {
			return true
		}
	}
	return false
}

func primarySegment(area string) string {
	first, _, _ := strings.Cut(area, ",")
	return strings.TrimSpace(first)
}

func canonicalCity(city string) string {
	c := strings.ToLower(strings.TrimSpace(city))
	if alias, ok := cityAliases[c]; ok {
		return alias
	}
	return c
}
