package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func date(s string) time.Time {
	t, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestParseSymbols(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"aapl, AAPL, msft", []string{"AAPL", "MSFT"}},
		{" tsla ,, nvda ", []string{"TSLA", "NVDA"}},
		{"", []string{}},
		{"msft,aapl,MSFT", []string{"MSFT", "AAPL"}},
	}
	for _, tt := range tests {
		got := ParseSymbols(tt.input)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseSymbols(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestSeriesValidate(t *testing.T) {
	bar := func(d string, o, h, l, c float64) OHLCV {
		return OHLCV{Time: date(d), Open: o, High: h, Low: l, Close: c}
	}
	tests := []struct {
		name    string
		bars    []OHLCV
		wantErr bool
	}{
		{"empty", nil, false},
		{"ordered", []OHLCV{bar("2024-03-01", 10, 11, 9, 10), bar("2024-03-04", 10, 12, 10, 11)}, false},
		{"duplicate date", []OHLCV{bar("2024-03-01", 10, 11, 9, 10), bar("2024-03-01", 10, 11, 9, 10)}, true},
		{"out of order", []OHLCV{bar("2024-03-04", 10, 11, 9, 10), bar("2024-03-01", 10, 11, 9, 10)}, true},
		{"close above high", []OHLCV{bar("2024-03-01", 10, 11, 9, 12)}, true},
		{"low above open", []OHLCV{bar("2024-03-01", 10, 11, 10.5, 11)}, true},
		{"nan close", []OHLCV{{Time: date("2024-03-01"), Open: 1, High: 1, Low: 1, Close: math.NaN()}}, true},
		{"infinite high", []OHLCV{{Time: date("2024-03-01"), Open: 1, High: math.Inf(1), Low: 1, Close: 1}}, true},
		{"negative volume", []OHLCV{{Time: date("2024-03-01"), Open: 1, High: 1, Low: 1, Close: 1, Volume: -1}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Series{Symbol: "X", Bars: tt.bars}.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSeriesLatest(t *testing.T) {
	s := Series{Bars: []OHLCV{{Time: date("2024-03-01"), Close: 1}, {Time: date("2024-03-04"), Close: 2}}}
	b, ok := s.Latest()
	if !ok || b.Close != 2 {
		t.Errorf("expected last bar, got %+v %v", b, ok)
	}
	if _, ok := (Series{}).Latest(); ok {
		t.Error("empty series should have no latest bar")
	}
}

func TestValueJSON(t *testing.T) {
	data, err := json.Marshal([]Value{Defined(1.5), Undefined, Defined(math.NaN())})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "[1.5,null,null]" {
		t.Errorf("unexpected encoding %s", data)
	}

	var back []Value
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if !back[0].Valid || back[0].Float64 != 1.5 || back[1].Valid {
		t.Errorf("unexpected decode %+v", back)
	}
}

func TestIndicatorSetNames(t *testing.T) {
	set := NewIndicatorSet([]time.Time{date("2024-03-01")})
	for _, name := range []string{RSIName(14), BollingerLower, MAName(50), BollingerMid, MAName(5), BollingerUpper, MAName(20)} {
		set.Columns[name] = []Value{Defined(1)}
	}
	want := []string{"MA5", "MA20", "MA50", "BB_MID", "BB_UPPER", "BB_LOWER", "RSI14"}
	if got := set.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
	if v := set.Latest("MA5"); !v.Valid {
		t.Error("expected MA5 latest to be defined")
	}
	if v := set.Latest("MA200"); v.Valid {
		t.Error("missing column should read as undefined")
	}
	if v := set.At("MA5", 3); v.Valid {
		t.Error("out of range index should read as undefined")
	}
}

func TestPassConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     PassConfig
		wantErr bool
	}{
		{"valid", PassConfig{Start: date("2024-01-01"), End: date("2024-06-30")}, false},
		{"same day", PassConfig{Start: date("2024-01-01"), End: date("2024-01-01")}, false},
		{"start after end", PassConfig{Start: date("2024-07-01"), End: date("2024-06-30")}, true},
		{"missing start", PassConfig{End: date("2024-06-30")}, true},
		{"negative interval", PassConfig{Start: date("2024-01-01"), End: date("2024-06-30"), Interval: -time.Second}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			var cfgErr *ConfigurationError
			if err != nil && !errors.As(err, &cfgErr) {
				t.Errorf("expected a ConfigurationError, got %T", err)
			}
		})
	}
}

func TestPassConfigNormalized(t *testing.T) {
	cfg := PassConfig{Symbols: []string{"aapl", " AAPL ", "msft"}, Currency: " inr"}.Normalized()
	if !reflect.DeepEqual(cfg.Symbols, []string{"AAPL", "MSFT"}) || cfg.Currency != "INR" {
		t.Errorf("unexpected normalized config %+v", cfg)
	}
}

func TestErrorKind(t *testing.T) {
	base := errors.New("boom")
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{NewConfigError("currency", "bad"), "configuration"},
		{&ProviderError{Symbol: "X", Err: base}, "provider"},
		{fmt.Errorf("wrapped: %w", &ComputationError{Symbol: "X", Err: base}), "computation"},
		{base, "unknown"},
	}
	for _, tt := range tests {
		if got := ErrorKind(tt.err); got != tt.want {
			t.Errorf("ErrorKind(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
	if !errors.Is(&ProviderError{Symbol: "X", Err: ErrEmptySeries}, ErrEmptySeries) {
		t.Error("ProviderError should unwrap to its cause")
	}
}

func TestPositionValidate(t *testing.T) {
	if err := (Position{Symbol: "AAPL", Shares: -1}).Validate(); err == nil {
		t.Error("negative shares should be rejected")
	}
	if err := (Position{Symbol: "AAPL", PurchasePrice: decimal.NewFromInt(-5)}).Validate(); err == nil {
		t.Error("negative purchase price should be rejected")
	}
	p := Position{Symbol: "AAPL"}
	if err := p.Validate(); err != nil || p.Held() {
		t.Errorf("zero position should be valid and not held, err=%v", err)
	}
}

func TestSnapshotGet(t *testing.T) {
	s := Snapshot{Entries: []ComparisonEntry{{Symbol: "AAPL", Close: 190}, {Symbol: "MSFT", Close: 410}}}
	if c, ok := s.Get("MSFT"); !ok || c != 410 {
		t.Errorf("Get(MSFT) = %v %v", c, ok)
	}
	if _, ok := s.Get("TSLA"); ok {
		t.Error("TSLA should be absent")
	}
	if got := s.Symbols(); !reflect.DeepEqual(got, []string{"AAPL", "MSFT"}) {
		t.Errorf("Symbols() = %v", got)
	}
}
