package news

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news-atlas/internal/ingest"
	"news-atlas/internal/models"
	"news-atlas/internal/repo"
	"news-atlas/internal/services/geocode"
)

type stubLocator struct {
	mu    sync.Mutex
	calls int
}

func (l *stubLocator) ResolveLocation(_ context.Context, a models.Article) models.LocationResult {
	l.mu.Lock()
	l.calls++
	l.mu.Unlock()
	return models.LocationResult{
		LocationName: "London Stock Exchange, London, United Kingdom",
		Coordinates:  geocode.Coordinates{Lat: 51.5155, Lng: -0.0990},
		Confidence:   0.8,
		Category:     "finance",
	}
}

func (l *stubLocator) Categorize(_ context.Context, a models.Article) string {
	if strings.Contains(strings.ToLower(a.Title), "stocks") {
		return models.CategoryFinancial
	}
	return models.CategoryPolitical
}

type staticSource struct {
	name     string
	articles []models.Article
	err      error
}

func (s staticSource) Name() string { return s.name }

func (s staticSource) Fetch(context.Context) ([]models.Article, error) {
	return s.articles, s.err
}

type recordingPublisher struct {
	runIDs []string
	err    error
}

func (p *recordingPublisher) PublishLocated(_ context.Context, runID string, _ models.LocatedArticle) error {
	p.runIDs = append(p.runIDs, runID)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

var fixedNow = time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)

func newTestService(sources ...staticSource) (*NewsService, *repo.MemoryRepository, *stubLocator, *recordingPublisher) {
	r := repo.NewMemoryRepository()
	loc := &stubLocator{}
	pub := &recordingPublisher{}
	srcs := make([]ingest.Source, 0, len(sources))
	for _, s := range sources {
		srcs = append(srcs, s)
	}
	svc := NewNewsService(r, loc, srcs, WithPublisher(pub), WithClock(func() time.Time { return fixedNow }))
	return svc, r, loc, pub
}

func TestRefresh(t *testing.T) {
	articles := []models.Article{
		{Title: "Tech stocks rally", URL: "https://example.com/1", Source: "Reuters", PublishedAt: fixedNow.Add(-time.Hour)},
		{Title: "Election called", URL: "https://example.com/2", Source: "Local Paper"},
		{Title: "Tech stocks rally", URL: "https://example.com/1", Source: "Reuters"},
	}
	svc, r, loc, pub := newTestService(
		staticSource{name: "good", articles: articles},
		staticSource{name: "bad", err: errors.New("timeout")},
	)

	res, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, 2, res.Sources)
	assert.Equal(t, 3, res.Fetched)
	assert.Equal(t, 2, res.Processed)
	assert.Equal(t, 1, res.Skipped)
	assert.Zero(t, res.Failed)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "bad")

	assert.Equal(t, 2, r.Len())
	assert.Equal(t, 2, loc.calls)
	assert.Equal(t, []string{res.RunID, res.RunID}, pub.runIDs)

	financial, err := svc.List(context.Background(), "Financial", 0)
	require.NoError(t, err)
	require.Len(t, financial, 1)
	assert.Equal(t, "Tech stocks rally", financial[0].Title)
	assert.Equal(t, 0.8, financial[0].PopularityScore)

	political, err := svc.List(context.Background(), "political", 0)
	require.NoError(t, err)
	require.Len(t, political, 1)
	assert.Equal(t, fixedNow, political[0].PublishedAt)

	again, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Zero(t, again.Processed)
	assert.Equal(t, 3, again.Skipped)
	assert.NotEqual(t, res.RunID, again.RunID)
}

func TestRefreshRejectsConcurrentRun(t *testing.T) {
	svc, _, _, _ := newTestService()
	svc.refreshMu.Lock()
	defer svc.refreshMu.Unlock()

	_, err := svc.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrRefreshInProgress)
}

func TestRefreshStopsOnCancel(t *testing.T) {
	svc, r, _, _ := newTestService(staticSource{name: "s", articles: []models.Article{{Title: "A"}, {Title: "B"}}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := svc.Refresh(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	assert.Zero(t, r.Len())
}

func TestProcessIgnoresPublishFailure(t *testing.T) {
	svc, r, _, pub := newTestService()
	pub.err = errors.New("broker down")

	located, err := svc.Process(context.Background(), models.Article{Title: "Budget passes"})
	require.NoError(t, err)
	assert.NotEmpty(t, located.ID)
	assert.Equal(t, models.CategoryPolitical, located.Category)
	assert.Equal(t, 1, r.Len())
}

func TestPopular(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()
	_, err := svc.Process(ctx, models.Article{Title: "Minor", Source: "Blog"})
	require.NoError(t, err)
	_, err = svc.Process(ctx, models.Article{Title: "Major", Source: "BBC News", Summary: strings.Repeat("x", 201)})
	require.NoError(t, err)

	popular, err := svc.Popular(ctx, 10)
	require.NoError(t, err)
	require.Len(t, popular, 2)
	assert.Equal(t, "Major", popular[0].Title)
	assert.Equal(t, 1.0, popular[0].PopularityScore)
}

func TestNearby(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()
	_, err := svc.Process(ctx, models.Article{Title: "LSE update"})
	require.NoError(t, err)

	near, err := svc.Nearby(ctx, NearbyRequest{Lat: 51.5074, Lng: -0.1278, RadiusKm: 10})
	require.NoError(t, err)
	require.Len(t, near, 1)
	assert.Less(t, near[0].DistanceKm, 5.0)

	far, err := svc.Nearby(ctx, NearbyRequest{Lat: 40.7128, Lng: -74.0060, RadiusKm: 10})
	require.NoError(t, err)
	assert.Empty(t, far)
}

func TestPopularity(t *testing.T) {
	long := strings.Repeat("a", 201)
	tests := []struct {
		name    string
		article models.Article
		want    float64
	}{
		{"base", models.Article{Source: "Local"}, 0.5},
		{"major source", models.Article{Source: "Reuters"}, 0.8},
		{"long summary", models.Article{Source: "Local", Summary: long}, 0.7},
		{"both capped", models.Article{Source: "Financial Times", Summary: long}, 1.0},
		{"exactly 200 chars", models.Article{Summary: strings.Repeat("a", 200)}, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Popularity(tt.article), 1e-9)
		})
	}
}

func TestRequestValidation(t *testing.T) {
	assert.Error(t, ArticleImpactRequest{Article: models.Article{Title: "x"}}.Validate())
	assert.Error(t, ArticleImpactRequest{Assets: []string{" "}, Article: models.Article{Title: "x"}}.Validate())
	assert.Error(t, ArticleImpactRequest{Assets: []string{"AAPL"}}.Validate())
	assert.NoError(t, ArticleImpactRequest{Assets: []string{"AAPL"}, Article: models.Article{Content: "Apple beats"}}.Validate())

	assert.Error(t, PortfolioRequest{}.Validate())
	assert.NoError(t, PortfolioRequest{Tickers: []string{"AAPL"}}.Validate())

	req := NearbyRequest{Lat: 10, Lng: 10}
	require.NoError(t, req.Validate())
	assert.Equal(t, DefaultNearbyRadiusKm, req.RadiusKm)
	assert.Error(t, (&NearbyRequest{Lat: 91}).Validate())
	assert.Error(t, (&NearbyRequest{Lng: 10, RadiusKm: 1000}).Validate())
}
