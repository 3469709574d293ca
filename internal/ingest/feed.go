package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog/log"

	"news-atlas/internal/models"
)

const DefaultMaxItems = 25

// FeedSource reads RSS and Atom feeds.
type FeedSource struct {
	urls     []string
	maxItems int
	parser   *gofeed.Parser
}

func NewFeedSource(urls []string, maxItems int) *FeedSource {
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}
	return &FeedSource{urls: urls, maxItems: maxItems, parser: gofeed.NewParser()}
}

func (f *FeedSource) Name() string { return "feeds" }

// Fetch parses every feed. A failing feed is skipped; the error is returned
// only when no feed could be read.
func (f *FeedSource) Fetch(ctx context.Context) ([]models.Article, error) {
	var (
		articles []models.Article
		lastErr  error
		ok       int
	)
	for _, u := range f.urls {
		items, err := f.fetchFeed(ctx, u)
		if err != nil {
			log.Warn().Err(err).Str("feed", u).Msg("Failed to fetch feed")
			lastErr = err
			continue
		}
		ok++
		articles = append(articles, items...)
	}
	if ok == 0 && lastErr != nil {
		return nil, lastErr
	}
	return articles, nil
}

func (f *FeedSource) fetchFeed(ctx context.Context, feedURL string) ([]models.Article, error) {
	feed, err := f.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed %s: %w", feedURL, err)
	}

	source := strings.TrimSpace(feed.Title)
	count := min(len(feed.Items), f.maxItems)
	articles := make([]models.Article, 0, count)
	for _, item := range feed.Items[:count] {
		if strings.TrimSpace(item.Title) == "" {
			continue
		}

		var published time.Time
		switch {
		case item.PublishedParsed != nil:
			published = *item.PublishedParsed
		case item.UpdatedParsed != nil:
			published = *item.UpdatedParsed
		default:
			published = time.Now()
		}

		summary := item.Description
		if summary == "" {
			summary = item.Content
		}

		a := models.Article{
			Title:       strings.TrimSpace(item.Title),
			Summary:     PlainText(summary),
			Content:     PlainText(item.Content),
			URL:         item.Link,
			Source:      source,
			PublishedAt: published.UTC(),
		}
		a.EnsureID()
		articles = append(articles, a)
	}
	return articles, nil
}

// PlainText strips markup from feed HTML and collapses whitespace.
func PlainText(html string) string {
	if !strings.ContainsAny(html, "<&") {
		return strings.Join(strings.Fields(html), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.Join(strings.Fields(html), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
