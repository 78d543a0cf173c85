package calculator

import (
	"StockDashboard/internal/model"
)

// Params holds indicator windows.
type Params struct {
	MAWindows       []int
	RSIPeriod       int
	BollingerPeriod int
	BollingerK      float64
}

// DefaultParams matches the dashboard defaults: MA20/MA50, RSI14, Bollinger 20/2.
func DefaultParams() Params {
	return Params{
		MAWindows:       []int{20, 50},
		RSIPeriod:       DefaultRSIPeriod,
		BollingerPeriod: DefaultBollingerPeriod,
		BollingerK:      DefaultBollingerK,
	}
}

// Engine derives indicator columns from a series.
type Engine struct {
	Params Params
}

// NewEngine creates an Engine, filling unset params with defaults.
func NewEngine(p Params) *Engine {
	def := DefaultParams()
	if len(p.MAWindows) == 0 {
		p.MAWindows = def.MAWindows
	}
	if p.RSIPeriod <= 0 {
		p.RSIPeriod = def.RSIPeriod
	}
	if p.BollingerPeriod <= 0 {
		p.BollingerPeriod = def.BollingerPeriod
	}
	if p.BollingerK <= 0 {
		p.BollingerK = def.BollingerK
	}
	return &Engine{Params: p}
}

// Compute builds the requested columns for series. An empty series yields an
// empty set. Windows longer than the series yield all-undefined columns.
func (e *Engine) Compute(series model.Series, toggles model.IndicatorToggles) model.IndicatorSet {
	if series.Empty() {
		return model.NewIndicatorSet(nil)
	}
	set := model.NewIndicatorSet(series.Dates())
	closes := series.Closes()

	if toggles.MovingAverages {
		for _, w := range e.Params.MAWindows {
			set.Columns[model.MAName(w)] = SMA(closes, w)
		}
	}
	if toggles.RSI {
		set.Columns[model.RSIName(e.Params.RSIPeriod)] = RSI(closes, e.Params.RSIPeriod)
	}
	if toggles.Bollinger {
		bands := BollingerBands(closes, e.Params.BollingerPeriod, e.Params.BollingerK)
		set.Columns[model.BollingerMid] = bands.Mid
		set.Columns[model.BollingerUpper] = bands.Upper
		set.Columns[model.BollingerLower] = bands.Lower
	}
	return set
}
