package market

import (
	"context"
	"fmt"
	"time"

	finnhub "github.com/Finnhub-Stock-API/finnhub-go/v2"
)

// Finnhub reads weekly candles from the Finnhub stock candles endpoint.
type Finnhub struct {
	client *finnhub.DefaultApiService
	now    func() time.Time
}

func NewFinnhub(client *finnhub.DefaultApiService) *Finnhub {
	return &Finnhub{client: client, now: time.Now}
}

// NewFinnhubClient builds the shared Finnhub API service for an API key.
func NewFinnhubClient(apiKey string) *finnhub.DefaultApiService {
	cfg := finnhub.NewConfiguration()
	cfg.AddDefaultHeader("X-Finnhub-Token", apiKey)
	return finnhub.NewAPIClient(cfg).DefaultApi
}

func (f *Finnhub) Name() string { return "finnhub" }

func (f *Finnhub) WeeklyCloses(ctx context.Context, symbol string, months int) ([]PricePoint, error) {
	symbol = NormalizeSymbol(symbol)
	from, to := historyWindow(f.now(), months)

	res, _, err := f.client.StockCandles(ctx).
		Symbol(symbol).
		Resolution("W").
		From(from.Unix()).
		To(to.Unix()).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("finnhub candles %s: %w", symbol, err)
	}

	closes := res.GetC()
	stamps := res.GetT()
	if res.GetS() == "no_data" || len(closes) == 0 {
		return nil, fmt.Errorf("finnhub candles %s: %w", symbol, ErrNoData)
	}

	points := make([]PricePoint, 0, len(closes))
	for i, c := range closes {
		if i >= len(stamps) {
			break
		}
		points = append(points, PricePoint{Date: time.Unix(stamps[i], 0).UTC(), Close: float64(c)})
	}
	return points, nil
}
