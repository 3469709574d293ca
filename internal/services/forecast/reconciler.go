package forecast

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"news-atlas/internal/models"
	"news-atlas/internal/services/llm"
	"news-atlas/internal/services/market"
)

type Config struct {
	Horizon       int
	HistoryMonths int
	Concurrency   int
}

func DefaultConfig() Config {
	return Config{
		Horizon:       DefaultHorizon,
		HistoryMonths: DefaultHistoryMonths,
		Concurrency:   defaultConcurrency,
	}
}

// Reconciler anchors model-generated price paths on a regression baseline and
// keeps only the symbols the model considered relevant.
type Reconciler struct {
	gen    llm.TextGenerator
	market market.Provider
	cfg    Config
	now    func() time.Time
}

func NewReconciler(gen llm.TextGenerator, provider market.Provider, cfg Config) *Reconciler {
	if cfg.Horizon <= 0 {
		cfg.Horizon = DefaultHorizon
	}
	if cfg.HistoryMonths <= 0 {
		cfg.HistoryMonths = DefaultHistoryMonths
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	return &Reconciler{gen: gen, market: provider, cfg: cfg, now: time.Now}
}

func (r *Reconciler) Horizon() int { return r.cfg.Horizon }

// Forecast predicts weekly prices for the symbols the article affects. The
// only error is ErrNoSymbols; generation failures come back as a report with
// StatusError.
func (r *Reconciler) Forecast(ctx context.Context, symbols []string, article models.Article) (*Report, error) {
	symbols = normalizeSymbols(symbols)
	if len(symbols) == 0 {
		return nil, ErrNoSymbols
	}

	report := &Report{
		Status: StatusSuccess,
		ArticleMetadata: ArticleMetadata{
			Title:     articleTitle(article),
			Source:    articleSource(article),
			Timestamp: r.now().UTC(),
		},
		RelevantAssets: []string{},
		Predictions:    map[string]Prediction{},
		Horizon:        r.cfg.Horizon,
	}

	if r.gen == nil {
		report.Status = StatusError
		report.Message = llm.ErrNoProviders.Error()
		return report, nil
	}

	histories := r.fetchHistories(ctx, symbols)
	baselines := make(map[string][]float64, len(histories))
	for _, h := range histories {
		baselines[h.symbol] = Baseline(market.Closes(h.points), r.cfg.Horizon)
	}

	out, err := r.gen.Generate(ctx, llm.GenerateRequest{
		System:      forecastSystemPrompt,
		User:        buildForecastPrompt(symbols, article, baselines, r.cfg.Horizon),
		Temperature: 0.7,
		MaxTokens:   1500,
	})
	if err != nil {
		log.Error().Err(err).Strs("symbols", symbols).Msg("Forecast generation failed")
		report.Status = StatusError
		report.Message = fmt.Sprintf("failed to generate predictions: %v", err)
		return report, nil
	}

	parsed := parsePredictions(out.Text, symbols)
	for _, h := range histories {
		pred, ok := parsed[h.symbol]
		if !ok {
			continue
		}
		pred.HistoricalPrices = market.Closes(h.points)
		pred.HistoricalDates = market.Dates(h.points)
		if !pred.MatchesHorizon(r.cfg.Horizon) {
			log.Warn().Str("symbol", h.symbol).Int("got", len(pred.PredictedPrices)).Int("want", r.cfg.Horizon).
				Msg("Prediction length differs from horizon")
		}
		report.Predictions[h.symbol] = pred
		report.RelevantAssets = append(report.RelevantAssets, h.symbol)
	}
	report.RelevantAssetsCount = len(report.RelevantAssets)

	log.Info().Strs("symbols", symbols).Strs("relevant", report.RelevantAssets).Str("provider", out.Provider).Msg("Forecast complete")
	return report, nil
}

// fetchHistories loads every symbol concurrently. A failed fetch leaves the
// symbol with an empty series. Results keep the input order.
func (r *Reconciler) fetchHistories(ctx context.Context, symbols []string) []history {
	out := make([]history, len(symbols))
	for i, sym := range symbols {
		out[i].symbol = sym
	}
	if r.market == nil {
		return out
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Concurrency)
	for i, sym := range symbols {
		g.Go(func() error {
			points, err := r.market.WeeklyCloses(gctx, sym, r.cfg.HistoryMonths)
			if err != nil {
				level := log.Warn()
				if errors.Is(err, market.ErrNoData) {
					level = log.Debug()
				}
				level.Err(err).Str("symbol", sym).Msg("No price history")
				return nil
			}
			out[i].points = points
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// parsePredictions reads the model output and keeps requested symbols that
// carry a non-empty numeric price list.
func parsePredictions(text string, symbols []string) map[string]Prediction {
	obj := llm.ExtractJSON(text).Object()
	if obj == nil {
		log.Warn().Msg("Forecast response contained no JSON object")
		return nil
	}

	entries, _ := obj["predictions"].(map[string]any)
	if len(entries) == 0 {
		entries = obj
	}

	byUpper := make(map[string]map[string]any, len(entries))
	for k, v := range entries {
		if m, ok := v.(map[string]any); ok {
			byUpper[strings.ToUpper(strings.TrimSpace(k))] = m
		}
	}

	out := make(map[string]Prediction)
	for _, sym := range symbols {
		entry, ok := byUpper[sym]
		if !ok {
			continue
		}
		prices, ok := priceList(entry, "future_prices", "predicted_prices")
		if !ok {
			continue
		}
		explanation, _ := entry["explanation"].(string)
		out[sym] = Prediction{PredictedPrices: prices, Explanation: strings.TrimSpace(explanation)}
	}
	return out
}

func priceList(entry map[string]any, keys ...string) ([]float64, bool) {
	for _, k := range keys {
		raw, ok := entry[k].([]any)
		if !ok || len(raw) == 0 {
			continue
		}
		prices := make([]float64, 0, len(raw))
		for _, v := range raw {
			f, ok := toPrice(v)
			if !ok {
				return nil, false
			}
			prices = append(prices, f)
		}
		return prices, true
	}
	return nil, false
}

func toPrice(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		s := strings.TrimPrefix(strings.TrimSpace(t), "$")
		f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
		return f, err == nil
	}
	return 0, false
}
