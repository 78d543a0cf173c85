package calculator

import (
	"math"

	"StockDashboard/internal/model"
)

// Bollinger defaults.
const (
	DefaultBollingerPeriod = 20
	DefaultBollingerK      = 2.0
)

// Bands holds the three Bollinger columns.
type Bands struct {
	Mid   []model.Value
	Upper []model.Value
	Lower []model.Value
}

// BollingerBands computes mid = SMA(period) and mid ± k population standard
// deviations of close. All three are undefined wherever mid is.
func BollingerBands(closes []float64, period int, k float64) Bands {
	n := len(closes)
	b := Bands{
		Mid:   make([]model.Value, n),
		Upper: make([]model.Value, n),
		Lower: make([]model.Value, n),
	}
	if period <= 0 {
		return b
	}
	for i := period - 1; i < n; i++ {
		mean := windowMean(closes, i, period)
		sd := populationStdDev(closes, i, period, mean)
		b.Mid[i] = model.Defined(mean)
		b.Upper[i] = model.Defined(mean + k*sd)
		b.Lower[i] = model.Defined(mean - k*sd)
	}
	return b
}

func populationStdDev(values []float64, end, period int, mean float64) float64 {
	variance := 0.0
	for i := end - period + 1; i <= end; i++ {
		d := values[i] - mean
		variance += d * d
	}
	variance /= float64(period)
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance)
}
