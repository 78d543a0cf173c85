package calculator

import "StockDashboard/internal/model"

// SMA computes the trailing simple moving average at every position.
// The first period-1 positions are undefined.
func SMA(prices []float64, period int) []model.Value {
	out := make([]model.Value, len(prices))
	if period <= 0 {
		return out
	}
	for i := period - 1; i < len(prices); i++ {
		out[i] = model.Defined(windowMean(prices, i, period))
	}
	return out
}

// windowMean averages the period values ending at end inclusive. Each window
// is summed afresh so long series do not accumulate rounding drift.
func windowMean(values []float64, end, period int) float64 {
	sum := 0.0
	for i := end - period + 1; i <= end; i++ {
		sum += values[i]
	}
	return sum / float64(period)
}
