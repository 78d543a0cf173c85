package model

import (
	"time"
)

// SymbolResult is the outcome of one symbol in one pass. Err tags a provider
// or computation failure; the other fields are then empty.
type SymbolResult struct {
	Symbol      string
	Currency    string
	Series      Series
	Indicators  IndicatorSet
	LatestClose Value
	PeriodHigh  Value
	PeriodLow   Value
	Err         error
}

// OK reports whether the symbol produced data.
func (r *SymbolResult) OK() bool { return r != nil && r.Err == nil && !r.Series.Empty() }

// ComparisonEntry is one row of the cross-symbol comparison.
type ComparisonEntry struct {
	Symbol string  `json:"symbol"`
	Close  float64 `json:"close"`
}

// Snapshot maps symbols to their latest currency-adjusted close, in the
// order the symbols were configured.
type Snapshot struct {
	Currency string            `json:"currency"`
	Entries  []ComparisonEntry `json:"entries"`
}

// Get returns the latest close of symbol.
func (s Snapshot) Get(symbol string) (float64, bool) {
	for _, e := range s.Entries {
		if e.Symbol == symbol {
			return e.Close, true
		}
	}
	return 0, false
}

// Symbols lists the symbols in the snapshot.
func (s Snapshot) Symbols() []string {
	out := make([]string, len(s.Entries))
	for i, e := range s.Entries {
		out[i] = e.Symbol
	}
	return out
}

// PassConfig is everything one pass needs from the user.
type PassConfig struct {
	Symbols    []string         `json:"symbols"`
	Start      time.Time        `json:"start_date"`
	End        time.Time        `json:"end_date"`
	Indicators IndicatorToggles `json:"indicators"`
	Currency   string           `json:"currency"`
	Interval   time.Duration    `json:"interval"`
}

// Normalized returns a copy with symbols normalized and currency upper-cased.
func (c PassConfig) Normalized() PassConfig {
	out := c
	out.Symbols = NormalizeSymbols(c.Symbols)
	out.Currency = NormalizeSymbol(c.Currency)
	return out
}

// Validate checks the date range. Currency codes are checked by the converter.
func (c PassConfig) Validate() error {
	if c.Start.IsZero() || c.End.IsZero() {
		return NewConfigError("date_range", "start and end dates are required")
	}
	if DateOf(c.Start).After(DateOf(c.End)) {
		return NewConfigError("date_range", "start date %s is after end date %s",
			c.Start.Format(DateLayout), c.End.Format(DateLayout))
	}
	if c.Interval < 0 {
		return NewConfigError("interval", "negative refresh interval %s", c.Interval)
	}
	return nil
}

// PassStatus is the outcome class of a published pass.
type PassStatus string

const (
	// StatusPending means nothing has been published yet.
	StatusPending     PassStatus = "PENDING"
	StatusOK          PassStatus = "OK"
	StatusEmpty       PassStatus = "EMPTY"
	StatusFailed      PassStatus = "FAILED"
	StatusConfigError PassStatus = "CONFIG_ERROR"
)

// RefreshState is the published output of a pass. A new value is built for
// every pass and never modified once published.
type RefreshState struct {
	Seq         uint64
	Status      PassStatus
	Config      PassConfig
	Snapshot    Snapshot
	Results     []*SymbolResult
	Valuations  []Valuation
	Err         error
	StartedAt   time.Time
	PublishedAt time.Time
}

// Result returns the result of symbol in this pass.
func (s *RefreshState) Result(symbol string) (*SymbolResult, bool) {
	for _, r := range s.Results {
		if r.Symbol == symbol {
			return r, true
		}
	}
	return nil, false
}

// Succeeded returns the results that produced data.
func (s *RefreshState) Succeeded() []*SymbolResult {
	var out []*SymbolResult
	for _, r := range s.Results {
		if r.OK() {
			out = append(out, r)
		}
	}
	return out
}

// Failed returns the error-tagged results.
func (s *RefreshState) Failed() []*SymbolResult {
	var out []*SymbolResult
	for _, r := range s.Results {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}
