package location

import (
	"fmt"
	"strings"

	"news-atlas/internal/models"
)

const (
	excerptLimit      = 500
	categorizeExcerpt = 300
)

const locationSystemPrompt = "You are a location detection assistant. Always respond with valid JSON only."

const locationInstructions = `Analyze this news article and identify its topic, its category and the SPECIFIC real-world landmark the story is about.

Categories: finance, political, energy, technology, health, military, sports, transport, environment, general.

Rules:
- Name a specific, publicly known place (a building, institution, facility or site), never a bare city, region or country.
- Format the location as "Landmark, City, Region, Country".
- Never name a private residence or a street address.
- If no location can be determined, use "Unknown" for location.

Examples:
- finance: "Fed holds rates steady" -> "Marriner S. Eccles Federal Reserve Board Building, Washington, DC, USA"
- finance: "FTSE closes higher" -> "London Stock Exchange, London, United Kingdom"
- political: "Bundestag passes budget" -> "Reichstag Building, Berlin, Germany"
- political: "Diet debates defence bill" -> "National Diet Building, Tokyo, Japan"
- energy: "New wind farm investment in Texas" -> "Roscoe Wind Farm, Roscoe, Texas, USA"
- energy: "Refinery outage lifts fuel prices" -> "Port Arthur Refinery, Port Arthur, Texas, USA"
- technology: "Chipmaker unveils new fab" -> "TSMC Fab 18, Tainan, Taiwan"
- health: "WHO issues new guidance" -> "World Health Organization Headquarters, Geneva, Switzerland"

Respond with ONLY a JSON object in this format:
{
    "location": "Landmark, City, Region, Country",
    "topic": "short topic",
    "category": "one of the categories above",
    "confidence": 0.0-1.0,
    "reasoning": "brief explanation naming the landmark"
}`

func buildLocationPrompt(a models.Article) string {
	var sb strings.Builder
	sb.WriteString(locationInstructions)
	fmt.Fprintf(&sb, "\n\nTitle: %s\nSummary: %s", a.Title, truncateRunes(excerptSource(a), excerptLimit))
	return sb.String()
}

func buildCategorizePrompt(a models.Article) string {
	return fmt.Sprintf(`Categorize this news article as either "financial" or "political":

Title: %s
Summary: %s

Respond with ONLY one word: "financial" or "political".`, a.Title, truncateRunes(excerptSource(a), categorizeExcerpt))
}

func excerptSource(a models.Article) string {
	if strings.TrimSpace(a.Summary) != "" {
		return a.Summary
	}
	return a.Content
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
