package forecast

import (
	"errors"
	"time"

	"news-atlas/internal/services/market"
)

var ErrNoSymbols = errors.New("at least one stock symbol is required")

const (
	StatusSuccess = "success"
	StatusError   = "error"

	DefaultHorizon       = 8
	DefaultHistoryMonths = 12
	defaultConcurrency   = 4
)

// Prediction is the forecast for one symbol. PredictedPrices is taken as the
// model returned it and is never padded or truncated.
type Prediction struct {
	HistoricalPrices []float64 `json:"historical_prices"`
	HistoricalDates  []string  `json:"historical_dates,omitempty"`
	PredictedPrices  []float64 `json:"predicted_prices"`
	Explanation      string    `json:"explanation"`
}

// MatchesHorizon reports whether the model produced exactly horizon weeks.
func (p Prediction) MatchesHorizon(horizon int) bool {
	return len(p.PredictedPrices) == horizon
}

type ArticleMetadata struct {
	Title     string    `json:"title"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
}

// Report is the result of one forecast run. Only symbols the model found
// relevant appear in Predictions.
type Report struct {
	Status              string                `json:"status"`
	Message             string                `json:"message,omitempty"`
	ArticleMetadata     ArticleMetadata       `json:"article_metadata"`
	RelevantAssets      []string              `json:"relevant_assets"`
	RelevantAssetsCount int                   `json:"relevant_assets_count"`
	Predictions         map[string]Prediction `json:"predictions"`
	Horizon             int                   `json:"horizon"`
}

type history struct {
	symbol string
	points []market.PricePoint
}

func normalizeSymbols(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = market.NormalizeSymbol(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
