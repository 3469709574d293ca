package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"
)

const DefaultYahooURL = "https://query1.finance.yahoo.com"

// Yahoo reads weekly candles from the Yahoo Finance v8 chart API.
type Yahoo struct {
	baseURL string
	client  *http.Client
	now     func() time.Time
}

func NewYahoo(baseURL string) *Yahoo {
	if baseURL == "" {
		baseURL = DefaultYahooURL
	}
	return &Yahoo{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
		now:     time.Now,
	}
}

func (y *Yahoo) Name() string { return "yahoo" }

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Close []*float64 `json:"close"`
		} `json:"quote"`
	} `json:"indicators"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (y *Yahoo) WeeklyCloses(ctx context.Context, symbol string, months int) ([]PricePoint, error) {
	symbol = NormalizeSymbol(symbol)
	from, to := historyWindow(y.now(), months)

	params := url.Values{}
	params.Set("period1", fmt.Sprint(from.Unix()))
	params.Set("period2", fmt.Sprint(to.Unix()))
	params.Set("interval", "1wk")
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?%s", y.baseURL, url.PathEscape(symbol), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build chart request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; news-atlas/1.0)")
	req.Header.Set("Accept", "application/json")

	resp, err := y.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo chart %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("yahoo chart %s: %w", symbol, ErrNoData)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("yahoo chart %s: status %d: %s", symbol, resp.StatusCode, body)
	}

	var out chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode chart response: %w", err)
	}
	if out.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo chart %s: %s: %w", symbol, out.Chart.Error.Description, ErrNoData)
	}
	if len(out.Chart.Result) == 0 {
		return nil, fmt.Errorf("yahoo chart %s: %w", symbol, ErrNoData)
	}

	points := parseChart(out.Chart.Result[0])
	if len(points) == 0 {
		return nil, fmt.Errorf("yahoo chart %s: %w", symbol, ErrNoData)
	}
	return points, nil
}

// parseChart pairs timestamps with closes, skipping weeks without a close.
func parseChart(r chartResult) []PricePoint {
	if len(r.Indicators.Quote) == 0 {
		return nil
	}
	closes := r.Indicators.Quote[0].Close

	points := make([]PricePoint, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		points = append(points, PricePoint{Date: time.Unix(ts, 0).UTC(), Close: *closes[i]})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return points
}
