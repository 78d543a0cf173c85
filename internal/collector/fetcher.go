// Package collector retrieves daily OHLCV series from market data providers.
package collector

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"time"

	"StockDashboard/internal/model"
)

// Fetcher retrieves the daily bars of one symbol between start and end,
// both inclusive calendar dates. An unknown symbol yields an empty series,
// not an error.
type Fetcher interface {
	Fetch(ctx context.Context, symbol string, start, end time.Time) (model.Series, error)
	Name() string
}

// newHTTPClient builds a client with optional proxy support.
func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
}

// clampToRange normalizes bar dates to calendar days, drops bars outside
// [start, end], sorts them and keeps the last bar for a repeated date.
func clampToRange(bars []model.OHLCV, start, end time.Time) []model.OHLCV {
	from, to := model.DateOf(start), model.DateOf(end)
	out := make([]model.OHLCV, 0, len(bars))
	for _, b := range bars {
		b.Time = model.DateOf(b.Time)
		if b.Time.Before(from) || b.Time.After(to) {
			continue
		}
		out = append(out, b)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })

	deduped := out[:0]
	for _, b := range out {
		if n := len(deduped); n > 0 && deduped[n-1].Time.Equal(b.Time) {
			deduped[n-1] = b
			continue
		}
		deduped = append(deduped, b)
	}
	return deduped
}
