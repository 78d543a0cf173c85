package report

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"StockDashboard/internal/model"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		amount   decimal.Decimal
		currency string
		want     string
	}{
		{decimal.NewFromInt(1200), "USD", "$1,200.00"},
		{decimal.RequireFromString("12.345"), "USD", "$12.35"},
		{decimal.NewFromInt(5), "XYZ", "5.00 XYZ"},
	}
	for _, tt := range tests {
		if got := FormatMoney(tt.amount, tt.currency); got != tt.want {
			t.Errorf("FormatMoney(%s, %s) = %q, want %q", tt.amount, tt.currency, got, tt.want)
		}
	}
}

func TestFormatPassReport(t *testing.T) {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	aapl := &model.SymbolResult{
		Symbol: "AAPL",
		Series: model.Series{Symbol: "AAPL", Bars: []model.OHLCV{
			{Time: day, Open: 100, High: 130, Low: 90, Close: 120},
		}},
		LatestClose: model.Defined(120),
		PeriodHigh:  model.Defined(130),
		PeriodLow:   model.Defined(90),
	}
	state := &model.RefreshState{
		Seq:      3,
		Status:   model.StatusOK,
		Config:   model.PassConfig{Symbols: []string{"AAPL", "BAD"}, Start: day, End: day, Currency: "USD"},
		Snapshot: model.Snapshot{Currency: "USD", Entries: []model.ComparisonEntry{{Symbol: "AAPL", Close: 120}}},
		Results: []*model.SymbolResult{aapl, {
			Symbol: "BAD", Err: &model.ProviderError{Symbol: "BAD", Err: errors.New("timeout")},
		}},
		Valuations: []model.Valuation{{
			Symbol: "AAPL", Currency: "USD", Shares: 10,
			Price: decimal.NewFromInt(120), Value: decimal.NewFromInt(1200),
			PurchasePrice: decimal.NewFromInt(100),
			ProfitLoss:    decimal.NewNullDecimal(decimal.NewFromInt(200)),
		}},
		PublishedAt: day,
	}

	out := FormatPassReport(state)
	for _, want := range []string{"pass 3", "$120.00", "$130.00", "75%", "BAD: provider error", "$1,200.00", "+$200.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestFormatPassReport_ConfigError(t *testing.T) {
	state := &model.RefreshState{
		Status: model.StatusConfigError,
		Err:    model.NewConfigError("currency", "unrecognized currency code %q", "EUR"),
	}
	out := FormatPassReport(state)
	if !strings.Contains(out, "Configuration error") || !strings.Contains(out, "EUR") {
		t.Errorf("unexpected report:\n%s", out)
	}
}

func TestFormatPortfolio_UndefinedProfitLoss(t *testing.T) {
	out := FormatPortfolio([]model.Valuation{{
		Symbol: "MSFT", Shares: 2, Price: decimal.NewFromInt(300), Value: decimal.NewFromInt(600),
	}}, "USD")
	if !strings.Contains(out, "n/a") {
		t.Errorf("undefined P/L should show n/a:\n%s", out)
	}
}
