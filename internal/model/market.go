package model

import (
	"fmt"
	"math"
	"time"
)

// OHLCV represents a single daily candlestick bar.
type OHLCV struct {
	Time   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Validate checks the price envelope of a single bar.
func (b OHLCV) Validate() error {
	for _, f := range [...]float64{b.Open, b.High, b.Low, b.Close, b.Volume} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("non-finite field in bar %s", b.Time.Format(DateLayout))
		}
	}
	if b.Open < 0 || b.High < 0 || b.Low < 0 || b.Close < 0 || b.Volume < 0 {
		return fmt.Errorf("negative field in bar %s", b.Time.Format(DateLayout))
	}
	if b.Low > b.Open || b.Low > b.Close || b.Open > b.High || b.Close > b.High {
		return fmt.Errorf("bar %s violates low <= open,close <= high", b.Time.Format(DateLayout))
	}
	return nil
}

// Series holds the daily bars of one symbol in chronological order.
type Series struct {
	Symbol string  `json:"symbol"`
	Bars   []OHLCV `json:"bars"`
}

// Len returns the number of bars.
func (s Series) Len() int { return len(s.Bars) }

// Empty reports whether the series has no bars.
func (s Series) Empty() bool { return len(s.Bars) == 0 }

// Closes extracts the close column.
func (s Series) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// Dates extracts the date column.
func (s Series) Dates() []time.Time {
	dates := make([]time.Time, len(s.Bars))
	for i, b := range s.Bars {
		dates[i] = b.Time
	}
	return dates
}

// Latest returns the bar with the maximum date. Bars are kept in date order,
// so this is the last one.
func (s Series) Latest() (OHLCV, bool) {
	if len(s.Bars) == 0 {
		return OHLCV{}, false
	}
	return s.Bars[len(s.Bars)-1], true
}

// Validate checks that dates strictly increase by calendar day and every bar
// respects the OHLC envelope.
func (s Series) Validate() error {
	for i, b := range s.Bars {
		if err := b.Validate(); err != nil {
			return err
		}
		if i == 0 {
			continue
		}
		prev := DateOf(s.Bars[i-1].Time)
		cur := DateOf(b.Time)
		if !cur.After(prev) {
			return fmt.Errorf("dates not strictly increasing at %s (after %s)",
				cur.Format(DateLayout), prev.Format(DateLayout))
		}
	}
	return nil
}

// DateLayout is the calendar date format used in config, CSV and logs.
const DateLayout = "2006-01-02"

// DateOf returns midnight UTC of t's calendar date as seen in t's location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
