package market

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrNoData is returned when a provider has no history for a symbol.
var ErrNoData = errors.New("no market data")

// PricePoint is one weekly close.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// Provider returns weekly closes in chronological order.
type Provider interface {
	WeeklyCloses(ctx context.Context, symbol string, months int) ([]PricePoint, error)
}

// Closes extracts the close values of a series.
func Closes(points []PricePoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Close
	}
	return out
}

// Dates formats the dates of a series as YYYY-MM-DD.
func Dates(points []PricePoint) []string {
	out := make([]string, len(points))
	for i, p := range points {
		out[i] = p.Date.UTC().Format("2006-01-02")
	}
	return out
}

// NormalizeSymbol trims and upper-cases a ticker.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

func historyWindow(now time.Time, months int) (time.Time, time.Time) {
	if months <= 0 {
		months = 12
	}
	return now.AddDate(0, -months, 0), now
}
