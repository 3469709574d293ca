package forecast

import (
	"context"
	"fmt"
	"time"

	finnhub "github.com/Finnhub-Stock-API/finnhub-go/v2"

	"news-atlas/internal/models"
)

// FinnhubNews reads company news from Finnhub.
type FinnhubNews struct {
	client   *finnhub.DefaultApiService
	lookback time.Duration
	now      func() time.Time
}

func NewFinnhubNews(client *finnhub.DefaultApiService, lookback time.Duration) *FinnhubNews {
	if lookback <= 0 {
		lookback = 7 * 24 * time.Hour
	}
	return &FinnhubNews{client: client, lookback: lookback, now: time.Now}
}

// LatestNews returns the most recent company article in the lookback window.
func (f *FinnhubNews) LatestNews(ctx context.Context, ticker string) (*models.Article, error) {
	to := f.now().UTC()
	from := to.Add(-f.lookback)

	res, _, err := f.client.CompanyNews(ctx).
		Symbol(ticker).
		From(from.Format("2006-01-02")).
		To(to.Format("2006-01-02")).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("finnhub company news %s: %w", ticker, err)
	}

	var latest *models.Article
	for _, item := range res {
		if item.Headline == nil || *item.Headline == "" {
			continue
		}
		a := models.Article{Title: *item.Headline}
		if item.Summary != nil {
			a.Summary = *item.Summary
			a.Content = *item.Summary
		}
		if item.Source != nil {
			a.Source = *item.Source
		}
		if item.Url != nil {
			a.URL = *item.Url
		}
		if item.Datetime != nil {
			a.PublishedAt = time.Unix(*item.Datetime, 0).UTC()
		}
		if latest == nil || a.PublishedAt.After(latest.PublishedAt) {
			latest = &a
		}
	}
	if latest != nil {
		latest.EnsureID()
	}
	return latest, nil
}
