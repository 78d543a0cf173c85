package model

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Indicator column names.
const (
	BollingerMid   = "BB_MID"
	BollingerUpper = "BB_UPPER"
	BollingerLower = "BB_LOWER"
)

// MAName returns the column name of a moving average over period bars, e.g. "MA20".
func MAName(period int) string { return "MA" + strconv.Itoa(period) }

// RSIName returns the column name of an RSI over period bars, e.g. "RSI14".
func RSIName(period int) string { return "RSI" + strconv.Itoa(period) }

// IsPriceColumn reports whether the column is expressed in price units and
// therefore follows currency conversion. RSI is a ratio and does not.
func IsPriceColumn(name string) bool {
	return !strings.HasPrefix(name, "RSI")
}

// Value is a single indicator reading. Valid is false where the window is not
// yet full or the reading has no meaning; Float64 is then zero and must not
// be used.
type Value struct {
	Float64 float64
	Valid   bool
}

// Defined wraps f as a valid Value. NaN and infinities are reported as undefined.
func Defined(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}
	}
	return Value{Float64: f, Valid: true}
}

// Undefined is the absent reading.
var Undefined = Value{}

// MarshalJSON encodes an undefined value as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.Float64)
}

// UnmarshalJSON decodes null as undefined.
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Value{}
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Defined(f)
	return nil
}

// IndicatorToggles selects which indicator families are computed.
type IndicatorToggles struct {
	MovingAverages bool `json:"moving_averages" yaml:"moving_averages" envconfig:"MA"`
	RSI            bool `json:"rsi" yaml:"rsi" envconfig:"RSI"`
	Bollinger      bool `json:"bollinger" yaml:"bollinger" envconfig:"BOLLINGER"`
}

// Any reports whether at least one family is enabled.
func (t IndicatorToggles) Any() bool { return t.MovingAverages || t.RSI || t.Bollinger }

// IndicatorSet holds derived columns aligned one-to-one with a series' dates.
// It is built next to the series and never written into it.
type IndicatorSet struct {
	Dates   []time.Time        `json:"dates"`
	Columns map[string][]Value `json:"columns"`
}

// NewIndicatorSet returns an empty set aligned to dates.
func NewIndicatorSet(dates []time.Time) IndicatorSet {
	return IndicatorSet{Dates: dates, Columns: make(map[string][]Value)}
}

// Empty reports whether the set has no columns or no dates.
func (s IndicatorSet) Empty() bool { return len(s.Columns) == 0 || len(s.Dates) == 0 }

// Column returns the named column.
func (s IndicatorSet) Column(name string) ([]Value, bool) {
	col, ok := s.Columns[name]
	return col, ok
}

// At returns the reading of name at position i, undefined when absent.
func (s IndicatorSet) At(name string, i int) Value {
	col, ok := s.Columns[name]
	if !ok || i < 0 || i >= len(col) {
		return Undefined
	}
	return col[i]
}

// Latest returns the last reading of name.
func (s IndicatorSet) Latest(name string) Value {
	return s.At(name, len(s.Dates)-1)
}

// Names returns column names in display order: moving averages by period,
// Bollinger bands, then RSI.
func (s IndicatorSet) Names() []string {
	names := make([]string, 0, len(s.Columns))
	for name := range s.Columns {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ri, rj := columnRank(names[i]), columnRank(names[j])
		if ri != rj {
			return ri < rj
		}
		pi, pj := columnPeriod(names[i]), columnPeriod(names[j])
		if pi != pj {
			return pi < pj
		}
		return names[i] < names[j]
	})
	return names
}

func columnRank(name string) int {
	switch {
	case strings.HasPrefix(name, "MA"):
		return 0
	case name == BollingerMid:
		return 1
	case name == BollingerUpper:
		return 2
	case name == BollingerLower:
		return 3
	case strings.HasPrefix(name, "RSI"):
		return 4
	default:
		return 5
	}
}

func columnPeriod(name string) int {
	digits := strings.TrimLeft(name, "ABCDEFGHIJKLMNOPQRSTUVWXYZ_")
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return n
}
