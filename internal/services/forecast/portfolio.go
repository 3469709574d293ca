package forecast

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"news-atlas/internal/models"
)

// NewsSource returns the latest article about a ticker, or nil when there is none.
type NewsSource interface {
	LatestNews(ctx context.Context, ticker string) (*models.Article, error)
}

// Forecaster is the part of Reconciler the portfolio predictor needs.
type Forecaster interface {
	Forecast(ctx context.Context, symbols []string, article models.Article) (*Report, error)
}

type ArticleRef struct {
	Title  string `json:"title"`
	Source string `json:"source"`
	URL    string `json:"url,omitempty"`
}

type StockResult struct {
	Article          ArticleRef `json:"article"`
	NewsFound        bool       `json:"news_found"`
	Error            string     `json:"error,omitempty"`
	HistoricalPrices []float64  `json:"historical_prices,omitempty"`
	HistoricalDates  []string   `json:"historical_dates,omitempty"`
	PredictedPrices  []float64  `json:"predicted_prices,omitempty"`
	Explanation      string     `json:"explanation,omitempty"`
}

type PortfolioReport struct {
	Status    string                 `json:"status"`
	Stocks    map[string]StockResult `json:"stocks"`
	Timestamp time.Time              `json:"timestamp"`
}

// Portfolio forecasts each ticker against its own latest news.
type Portfolio struct {
	forecaster  Forecaster
	news        NewsSource
	concurrency int
}

// NewPortfolio builds a Portfolio. news may be nil, in which case every ticker
// gets a synthetic market-analysis article.
func NewPortfolio(forecaster Forecaster, news NewsSource, concurrency int) *Portfolio {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Portfolio{forecaster: forecaster, news: news, concurrency: concurrency}
}

func (p *Portfolio) Predict(ctx context.Context, tickers []string) (*PortfolioReport, error) {
	tickers = normalizeSymbols(tickers)
	if len(tickers) == 0 {
		return nil, ErrNoSymbols
	}

	report := &PortfolioReport{
		Status:    StatusSuccess,
		Stocks:    make(map[string]StockResult, len(tickers)),
		Timestamp: time.Now().UTC(),
	}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for _, ticker := range tickers {
		g.Go(func() error {
			res := p.predictOne(gctx, ticker)
			mu.Lock()
			report.Stocks[ticker] = res
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		report.Status = StatusError
	}
	return report, nil
}

func (p *Portfolio) predictOne(ctx context.Context, ticker string) StockResult {
	article, found := p.articleFor(ctx, ticker)
	res := StockResult{
		Article:   ArticleRef{Title: article.Title, Source: article.Source, URL: article.URL},
		NewsFound: found,
	}

	report, err := p.forecaster.Forecast(ctx, []string{ticker}, article)
	switch {
	case err != nil:
		res.Error = err.Error()
		return res
	case report.Status != StatusSuccess:
		res.Error = report.Message
		return res
	}

	pred, ok := report.Predictions[ticker]
	if !ok || len(pred.PredictedPrices) == 0 {
		res.Error = "No predicted prices generated"
		return res
	}
	res.HistoricalPrices = pred.HistoricalPrices
	res.HistoricalDates = pred.HistoricalDates
	res.PredictedPrices = pred.PredictedPrices
	res.Explanation = pred.Explanation
	return res
}

func (p *Portfolio) articleFor(ctx context.Context, ticker string) (models.Article, bool) {
	if p.news != nil {
		article, err := p.news.LatestNews(ctx, ticker)
		switch {
		case err != nil:
			log.Warn().Err(err).Str("ticker", ticker).Msg("News lookup failed, using synthetic article")
		case article != nil:
			return *article, true
		}
	}
	return syntheticArticle(ticker), false
}

func syntheticArticle(ticker string) models.Article {
	return models.Article{
		Title: fmt.Sprintf("Market Analysis for %s", ticker),
		Content: fmt.Sprintf("Market analysis for %s. Recent trading activity and market sentiment for %s stock. "+
			"Financial performance and investor outlook based on current market conditions.", ticker, ticker),
		URL:         fmt.Sprintf("https://finance.yahoo.com/quote/%s", ticker),
		Source:      "Market Summary",
		PublishedAt: time.Now().UTC(),
	}
}
