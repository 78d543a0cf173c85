// Package currency scales price-bearing values by a static per-currency rate.
package currency

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"StockDashboard/internal/model"
)

// Base is the currency market data is quoted in.
const Base = "USD"

// Converter holds the rate table, loaded once at start and read-only after.
type Converter struct {
	rates map[string]decimal.Decimal
}

// NewConverter builds a converter from code -> multiplier. USD is always 1.
func NewConverter(rates map[string]float64) (*Converter, error) {
	c := &Converter{rates: map[string]decimal.Decimal{Base: decimal.NewFromInt(1)}}
	for code, r := range rates {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code == Base {
			continue
		}
		if r <= 0 {
			return nil, model.NewConfigError("currencies", "rate for %s must be positive, got %v", code, r)
		}
		c.rates[code] = decimal.NewFromFloat(r)
	}
	return c, nil
}

// Codes lists the recognized currency codes.
func (c *Converter) Codes() []string {
	codes := make([]string, 0, len(c.rates))
	for code := range c.rates {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Rate returns the multiplier for code.
func (c *Converter) Rate(code string) (decimal.Decimal, error) {
	r, ok := c.rates[strings.ToUpper(code)]
	if !ok {
		return decimal.Zero, model.NewConfigError("currency", "unrecognized currency code %q", code)
	}
	return r, nil
}

// Supports reports whether code is in the table.
func (c *Converter) Supports(code string) bool {
	_, err := c.Rate(code)
	return err == nil
}

// Convert returns value * rate(code).
func (c *Converter) Convert(value float64, code string) (float64, error) {
	r, err := c.Rate(code)
	if err != nil {
		return 0, err
	}
	return scale(value, r), nil
}

// ConvertSeries returns a copy of s with open/high/low/close scaled. Volume is
// a share count and stays as is. s is not modified.
func (c *Converter) ConvertSeries(s model.Series, code string) (model.Series, error) {
	r, err := c.Rate(code)
	if err != nil {
		return model.Series{}, err
	}
	out := model.Series{Symbol: s.Symbol, Bars: make([]model.OHLCV, len(s.Bars))}
	for i, b := range s.Bars {
		out.Bars[i] = model.OHLCV{
			Time:   b.Time,
			Open:   scale(b.Open, r),
			High:   scale(b.High, r),
			Low:    scale(b.Low, r),
			Close:  scale(b.Close, r),
			Volume: b.Volume,
		}
	}
	return out, nil
}

// ConvertIndicators returns a copy of set with price columns (moving averages
// and bands) scaled. RSI columns are copied unchanged.
func (c *Converter) ConvertIndicators(set model.IndicatorSet, code string) (model.IndicatorSet, error) {
	r, err := c.Rate(code)
	if err != nil {
		return model.IndicatorSet{}, err
	}
	out := model.NewIndicatorSet(set.Dates)
	for name, col := range set.Columns {
		conv := make([]model.Value, len(col))
		for i, v := range col {
			if model.IsPriceColumn(name) {
				conv[i] = scaleValue(v, r)
			} else {
				conv[i] = v
			}
		}
		out.Columns[name] = conv
	}
	return out, nil
}

func scale(value float64, rate decimal.Decimal) float64 {
	if rate.Equal(decimal.NewFromInt(1)) {
		return value
	}
	return decimal.NewFromFloat(value).Mul(rate).InexactFloat64()
}

func scaleValue(v model.Value, rate decimal.Decimal) model.Value {
	if !v.Valid {
		return model.Undefined
	}
	return model.Defined(scale(v.Float64, rate))
}
