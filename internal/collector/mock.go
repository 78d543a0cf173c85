package collector

import (
	"context"
	"sync/atomic"
	"time"

	"StockDashboard/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// Symbols without an entry in Series or Errors get generated bars around
// BasePrice, or an empty series when BasePrice is zero.
type MockFetcher struct {
	Series    map[string][]model.OHLCV
	Errors    map[string]error
	Delay     map[string]time.Duration
	BasePrice float64

	calls atomic.Int64
}

func (m *MockFetcher) Name() string { return "mock" }

// Calls reports how many times Fetch was invoked.
func (m *MockFetcher) Calls() int64 { return m.calls.Load() }

func (m *MockFetcher) Fetch(ctx context.Context, symbol string, start, end time.Time) (model.Series, error) {
	m.calls.Add(1)
	series := model.Series{Symbol: symbol}

	if d := m.Delay[symbol]; d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return series, ctx.Err()
		case <-timer.C:
		}
	}
	if err, ok := m.Errors[symbol]; ok {
		return series, err
	}
	// fixed bars are returned as given so tests can feed malformed input
	if bars, ok := m.Series[symbol]; ok {
		series.Bars = bars
		return series, nil
	}
	if m.BasePrice > 0 {
		series.Bars = generateMockBars(symbol, m.BasePrice, start, end)
	}
	return series, nil
}

// generateMockBars produces one gently trending bar per weekday in range.
// The symbol shifts the base price so different symbols do not overlap.
func generateMockBars(symbol string, basePrice float64, start, end time.Time) []model.OHLCV {
	offset := 0.0
	for _, r := range symbol {
		offset += float64(r)
	}
	base := basePrice + offset

	var bars []model.OHLCV
	i := 0
	for d := model.DateOf(start); !d.After(model.DateOf(end)); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		p := base * (1 + float64(i%40-20)*0.002)
		bars = append(bars, model.OHLCV{
			Time:   d,
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		})
		i++
	}
	return bars
}
