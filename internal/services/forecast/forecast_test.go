package forecast

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news-atlas/internal/models"
	"news-atlas/internal/services/llm"
	"news-atlas/internal/services/market"
)

type fakeGenerator struct {
	mu    sync.Mutex
	text  string
	err   error
	calls []llm.GenerateRequest
}

func (g *fakeGenerator) Generate(_ context.Context, req llm.GenerateRequest) (llm.GeneratedText, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, req)
	if g.err != nil {
		return llm.GeneratedText{}, g.err
	}
	return llm.GeneratedText{Text: g.text, Provider: "fake"}, nil
}

type fakeMarket map[string][]float64

func (m fakeMarket) WeeklyCloses(_ context.Context, symbol string, _ int) ([]market.PricePoint, error) {
	closes, ok := m[symbol]
	if !ok {
		return nil, market.ErrNoData
	}
	start := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	points := make([]market.PricePoint, len(closes))
	for i, c := range closes {
		points[i] = market.PricePoint{Date: start.AddDate(0, 0, 7*i), Close: c}
	}
	return points, nil
}

const aaplOnly = `Sure! Here is the forecast:
{"predictions": {"AAPL": {"future_prices": [190.1, 193.4, 189.9, 195.2, 192.8, 197.5, 194.1, 199.0],
"explanation": "Strong iPhone demand lifts sentiment with some pullbacks."}}}`

var appleArticle = models.Article{
	Title:   "Apple beats iPhone estimates",
	Content: "Apple reported record iPhone sales for the quarter.",
	Source:  "Reuters",
}

func TestBaseline(t *testing.T) {
	t.Run("linear trend", func(t *testing.T) {
		got := Baseline([]float64{10, 12, 14, 16}, 3)
		require.Len(t, got, 3)
		assert.InDelta(t, 18, got[0], 1e-9)
		assert.InDelta(t, 20, got[1], 1e-9)
		assert.InDelta(t, 22, got[2], 1e-9)
	})

	t.Run("single close", func(t *testing.T) {
		assert.Equal(t, []float64{42, 42}, Baseline([]float64{42}, 2))
	})

	t.Run("no data", func(t *testing.T) {
		assert.Equal(t, []float64{100, 100, 100}, Baseline(nil, 3))
	})

	t.Run("zero horizon", func(t *testing.T) {
		assert.Nil(t, Baseline([]float64{1, 2}, 0))
	})
}

func TestForecastKeepsOnlyRelevantSymbols(t *testing.T) {
	gen := &fakeGenerator{text: aaplOnly}
	mk := fakeMarket{"AAPL": {180, 182, 185, 188}, "MSFT": {400, 405, 410}}
	r := NewReconciler(gen, mk, DefaultConfig())

	report, err := r.Forecast(context.Background(), []string{"aapl", " MSFT ", "AAPL"}, appleArticle)
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, report.Status)
	assert.Equal(t, []string{"AAPL"}, report.RelevantAssets)
	assert.Equal(t, 1, report.RelevantAssetsCount)
	require.Len(t, report.Predictions, 1)
	require.Contains(t, report.Predictions, "AAPL")

	aapl := report.Predictions["AAPL"]
	assert.Len(t, aapl.PredictedPrices, 8)
	assert.True(t, aapl.MatchesHorizon(8))
	assert.Equal(t, []float64{180, 182, 185, 188}, aapl.HistoricalPrices)
	assert.Len(t, aapl.HistoricalDates, 4)
	assert.NotEmpty(t, aapl.Explanation)
	assert.Equal(t, "Reuters", report.ArticleMetadata.Source)

	require.Len(t, gen.calls, 1)
	prompt := gen.calls[0].User
	assert.Contains(t, prompt, "AAPL: [$")
	assert.Contains(t, prompt, "MSFT: [$")
	assert.Contains(t, prompt, "TARGET ASSETS: AAPL, MSFT")
	assert.Contains(t, prompt, "NO MONOTONE")
}

func TestForecastAcceptsLengthMismatch(t *testing.T) {
	gen := &fakeGenerator{text: `{"AAPL": {"predicted_prices": ["$190.50", 191, 188.25], "explanation": "short"}}`}
	r := NewReconciler(gen, fakeMarket{}, DefaultConfig())

	report, err := r.Forecast(context.Background(), []string{"AAPL"}, appleArticle)
	require.NoError(t, err)

	aapl := report.Predictions["AAPL"]
	assert.Equal(t, []float64{190.5, 191, 188.25}, aapl.PredictedPrices)
	assert.False(t, aapl.MatchesHorizon(report.Horizon))
	assert.Empty(t, aapl.HistoricalPrices)
}

func TestForecastDropsUnusableEntries(t *testing.T) {
	gen := &fakeGenerator{text: `{"predictions": {
		"AAPL": {"future_prices": []},
		"MSFT": {"future_prices": ["up", "down"]},
		"TSLA": {"future_prices": [250, 260]}
	}}`}
	r := NewReconciler(gen, fakeMarket{}, DefaultConfig())

	report, err := r.Forecast(context.Background(), []string{"AAPL", "MSFT"}, appleArticle)
	require.NoError(t, err)

	assert.Empty(t, report.Predictions)
	assert.Equal(t, 0, report.RelevantAssetsCount)
}

func TestForecastUnparseableResponse(t *testing.T) {
	gen := &fakeGenerator{text: "I'm unable to predict stock prices."}
	r := NewReconciler(gen, fakeMarket{}, DefaultConfig())

	report, err := r.Forecast(context.Background(), []string{"AAPL"}, appleArticle)
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, report.Status)
	assert.Empty(t, report.Predictions)
}

func TestForecastGenerationFailure(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("connection refused")}
	r := NewReconciler(gen, fakeMarket{}, DefaultConfig())

	report, err := r.Forecast(context.Background(), []string{"AAPL"}, appleArticle)
	require.NoError(t, err)
	assert.Equal(t, StatusError, report.Status)
	assert.Contains(t, report.Message, "connection refused")
	assert.Empty(t, report.Predictions)
}

func TestForecastWithoutGenerator(t *testing.T) {
	r := NewReconciler(nil, fakeMarket{}, DefaultConfig())

	report, err := r.Forecast(context.Background(), []string{"AAPL"}, appleArticle)
	require.NoError(t, err)
	assert.Equal(t, StatusError, report.Status)
}

func TestForecastRequiresSymbols(t *testing.T) {
	r := NewReconciler(&fakeGenerator{}, fakeMarket{}, DefaultConfig())

	_, err := r.Forecast(context.Background(), []string{" ", ""}, appleArticle)
	assert.ErrorIs(t, err, ErrNoSymbols)
}

type fakeForecaster struct {
	mu       sync.Mutex
	articles map[string]models.Article
	fail     map[string]bool
}

func (f *fakeForecaster) Forecast(_ context.Context, symbols []string, article models.Article) (*Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sym := symbols[0]
	f.articles[sym] = article
	if f.fail[sym] {
		return &Report{Status: StatusError, Message: "generation failed"}, nil
	}
	return &Report{
		Status:      StatusSuccess,
		Predictions: map[string]Prediction{sym: {PredictedPrices: []float64{1, 2}, HistoricalPrices: []float64{1}, Explanation: "ok"}},
	}, nil
}

type staticNews map[string]*models.Article

func (s staticNews) LatestNews(_ context.Context, ticker string) (*models.Article, error) {
	if ticker == "ERR" {
		return nil, errors.New("rate limited")
	}
	return s[ticker], nil
}

func TestPortfolioPredict(t *testing.T) {
	fc := &fakeForecaster{articles: map[string]models.Article{}, fail: map[string]bool{"TSLA": true}}
	news := staticNews{"AAPL": {Title: "Apple launches new Mac", Source: "Bloomberg"}}
	p := NewPortfolio(fc, news, 2)

	report, err := p.Predict(context.Background(), []string{"aapl", "MSFT", "TSLA", "ERR"})
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, report.Status)
	require.Len(t, report.Stocks, 4)

	aapl := report.Stocks["AAPL"]
	assert.True(t, aapl.NewsFound)
	assert.Equal(t, "Apple launches new Mac", aapl.Article.Title)
	assert.Equal(t, []float64{1, 2}, aapl.PredictedPrices)
	assert.Empty(t, aapl.Error)

	msft := report.Stocks["MSFT"]
	assert.False(t, msft.NewsFound)
	assert.Equal(t, "Market Analysis for MSFT", msft.Article.Title)
	assert.Contains(t, fc.articles["MSFT"].Content, "Market analysis for MSFT.")

	assert.Equal(t, "generation failed", report.Stocks["TSLA"].Error)
	assert.False(t, report.Stocks["ERR"].NewsFound)
}

func TestPortfolioRequiresTickers(t *testing.T) {
	p := NewPortfolio(&fakeForecaster{}, nil, 0)
	_, err := p.Predict(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoSymbols)
}
