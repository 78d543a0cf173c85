package calculator

import "StockDashboard/internal/model"

// DefaultRSIPeriod is the conventional RSI lookback.
const DefaultRSIPeriod = 14

// RSI computes the relative strength index at every position from trailing
// simple means of gains and losses over period deltas. Position i needs the
// deltas i-period+1..i, so the first defined reading is at index period.
//
// With no losses in the window RSI is 100. With neither gains nor losses
// (a flat window) it is undefined.
func RSI(closes []float64, period int) []model.Value {
	out := make([]model.Value, len(closes))
	if period <= 0 || len(closes) <= period {
		return out
	}

	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains[i] = change
		} else {
			losses[i] = -change
		}
	}

	for i := period; i < len(closes); i++ {
		avgGain := windowMean(gains, i, period)
		avgLoss := windowMean(losses, i, period)
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) model.Value {
	switch {
	case avgLoss == 0 && avgGain == 0:
		return model.Undefined
	case avgLoss == 0:
		return model.Defined(100)
	}
	rs := avgGain / avgLoss
	rsi := 100.0 - 100.0/(1.0+rs)
	if rsi < 0 {
		rsi = 0
	}
	if rsi > 100 {
		rsi = 100
	}
	return model.Defined(rsi)
}
