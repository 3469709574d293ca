package models

import (
	"crypto/sha1"
	"fmt"
	"strings"
	"time"

	"news-atlas/internal/services/geocode"
)

// Article is a news item as received from a feed, a file or an API caller.
type Article struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	Content     string    `json:"content,omitempty"`
	URL         string    `json:"url,omitempty"`
	Source      string    `json:"source,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// Body returns the richest text available: content, then summary, then title.
func (a Article) Body() string {
	switch {
	case strings.TrimSpace(a.Content) != "":
		return a.Content
	case strings.TrimSpace(a.Summary) != "":
		return a.Summary
	}
	return a.Title
}

// EnsureID derives a stable ID from the URL (or title) when none is set.
func (a *Article) EnsureID() string {
	if a.ID == "" {
		seed := a.URL
		if seed == "" {
			seed = a.Title + "|" + a.Source
		}
		hash := sha1.Sum([]byte(strings.ToLower(seed)))
		a.ID = fmt.Sprintf("%x", hash)[:16]
	}
	return a.ID
}

const UnknownLocation = "Unknown"

// LocationResult is the outcome of resolving an article to a place.
type LocationResult struct {
	LocationName string              `json:"location_name"`
	Coordinates  geocode.Coordinates `json:"coordinates"`
	Confidence   float64             `json:"confidence"`
	Topic        string              `json:"topic"`
	Category     string              `json:"location_category"`
	Reasoning    string              `json:"reasoning"`
	Landmark     string              `json:"landmark,omitempty"`
}

// Article categories used by the news listing.
const (
	CategoryFinancial = "financial"
	CategoryPolitical = "political"
)

// LocatedArticle is an article after the location pipeline and categorization ran.
type LocatedArticle struct {
	Article
	Location        LocationResult `json:"location"`
	Category        string         `json:"category"`
	PopularityScore float64        `json:"popularity_score"`
	ProcessedAt     time.Time      `json:"processed_at"`
}
