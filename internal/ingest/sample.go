package ingest

import (
	"context"
	"time"

	"news-atlas/internal/models"
)

// SampleArticles returns a small fixed batch for local runs without feeds.
func SampleArticles(now time.Time) []models.Article {
	articles := []models.Article{
		{
			Title:       "Federal Reserve holds interest rates steady",
			Summary:     "Policymakers kept the benchmark rate unchanged and signalled patience on future cuts as inflation cools.",
			URL:         "https://example.com/fed-holds-rates",
			Source:      "Reuters",
			PublishedAt: now.Add(-2 * time.Hour),
		},
		{
			Title:       "Parliament debates new defence spending bill",
			Summary:     "Lawmakers in London argued over a proposal to raise defence spending over the next five years.",
			URL:         "https://example.com/uk-defence-bill",
			Source:      "BBC",
			PublishedAt: now.Add(-4 * time.Hour),
		},
		{
			Title:       "Utility announces new wind farm investment in Texas",
			Summary:     "A $2bn investment will add wind capacity across West Texas, the company said.",
			URL:         "https://example.com/texas-wind-farm",
			Source:      "Bloomberg",
			PublishedAt: now.Add(-6 * time.Hour),
		},
		{
			Title:       "Tokyo stocks close higher on export optimism",
			Summary:     "The Nikkei rose as exporters gained on a weaker yen.",
			URL:         "https://example.com/tokyo-stocks",
			Source:      "Financial Times",
			PublishedAt: now.Add(-8 * time.Hour),
		},
		{
			Title:       "EU leaders meet in Brussels over trade rules",
			Summary:     "Heads of government gathered to agree a common position on new trade measures.",
			URL:         "https://example.com/eu-trade-summit",
			Source:      "CNN",
			PublishedAt: now.Add(-10 * time.Hour),
		},
	}
	for i := range articles {
		articles[i].EnsureID()
	}
	return articles
}

// SampleSource serves SampleArticles stamped with the fetch time.
type SampleSource struct{}

func (SampleSource) Name() string { return "sample" }

func (SampleSource) Fetch(context.Context) ([]models.Article, error) {
	return SampleArticles(time.Now()), nil
}
