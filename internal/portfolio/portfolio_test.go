package portfolio

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"StockDashboard/internal/model"
)

func TestValuate_Scenario(t *testing.T) {
	pos := model.Position{Symbol: "AAPL", Shares: 10, PurchasePrice: decimal.NewFromInt(100)}
	v, held, err := Valuate(pos, "USD", 120)
	if err != nil || !held {
		t.Fatalf("expected a valuation, got held=%v err=%v", held, err)
	}
	if !v.Value.Equal(decimal.NewFromInt(1200)) {
		t.Errorf("expected value 1200, got %s", v.Value)
	}
	if !v.ProfitLoss.Valid || !v.ProfitLoss.Decimal.Equal(decimal.NewFromInt(200)) {
		t.Errorf("expected P/L +200, got %+v", v.ProfitLoss)
	}
}

func TestValuate_Loss(t *testing.T) {
	pos := model.Position{Symbol: "TSLA", Shares: 4, PurchasePrice: decimal.NewFromInt(250)}
	v, _, err := Valuate(pos, "USD", 200)
	if err != nil {
		t.Fatal(err)
	}
	if !v.ProfitLoss.Valid || !v.ProfitLoss.Decimal.Equal(decimal.NewFromInt(-200)) {
		t.Errorf("expected P/L -200, got %+v", v.ProfitLoss)
	}
}

func TestValuate_UnsetPurchasePrice(t *testing.T) {
	pos := model.Position{Symbol: "MSFT", Shares: 5}
	v, held, err := Valuate(pos, "USD", 120)
	if err != nil || !held {
		t.Fatalf("expected a valuation, got held=%v err=%v", held, err)
	}
	if v.ProfitLoss.Valid {
		t.Errorf("P/L must be undefined without a purchase price, got %s", v.ProfitLoss.Decimal)
	}
	if !v.Value.Equal(decimal.NewFromInt(600)) {
		t.Errorf("expected value 600, got %s", v.Value)
	}
}

func TestValuate_ZeroSharesExcluded(t *testing.T) {
	_, held, err := Valuate(model.Position{Symbol: "X", PurchasePrice: decimal.NewFromInt(10)}, "USD", 12)
	if err != nil || held {
		t.Errorf("zero-share position should be excluded, got held=%v err=%v", held, err)
	}
}

func TestValuate_NegativeInput(t *testing.T) {
	tests := []model.Position{
		{Symbol: "X", Shares: -1},
		{Symbol: "X", Shares: 1, PurchasePrice: decimal.NewFromInt(-5)},
	}
	for _, pos := range tests {
		_, _, err := Valuate(pos, "USD", 10)
		var cfgErr *model.ConfigurationError
		if !errors.As(err, &cfgErr) {
			t.Errorf("%+v: expected ConfigurationError, got %v", pos, err)
		}
	}
}

func TestValuateAll(t *testing.T) {
	holdings := map[string]model.Position{
		"AAPL": {Symbol: "AAPL", Shares: 10, PurchasePrice: decimal.NewFromInt(100)},
		"MSFT": {Symbol: "MSFT", Shares: 2},
		"GONE": {Symbol: "GONE", Shares: 3},
	}
	snap := model.Snapshot{Currency: "INR", Entries: []model.ComparisonEntry{
		{Symbol: "MSFT", Close: 300},
		{Symbol: "AAPL", Close: 120},
	}}
	vals, err := ValuateAll(holdings, snap)
	if err != nil {
		t.Fatal(err)
	}
	if len(vals) != 2 || vals[0].Symbol != "MSFT" || vals[1].Symbol != "AAPL" {
		t.Fatalf("expected MSFT, AAPL in snapshot order, got %+v", vals)
	}
	if vals[0].Currency != "INR" {
		t.Errorf("expected snapshot currency, got %q", vals[0].Currency)
	}

	value, pl := Totals(vals)
	if !value.Equal(decimal.NewFromInt(1800)) {
		t.Errorf("expected total 1800, got %s", value)
	}
	if !pl.Valid || !pl.Decimal.Equal(decimal.NewFromInt(200)) {
		t.Errorf("expected total P/L 200, got %+v", pl)
	}
}

func TestTotals_NoProfitLoss(t *testing.T) {
	_, pl := Totals([]model.Valuation{{Value: decimal.NewFromInt(10)}})
	if pl.Valid {
		t.Error("total P/L should be undefined when no position has one")
	}
}

func TestManager_PersistsPositions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "portfolio.json")
	m, err := NewManager(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.Set(" aapl ", 10, decimal.NewFromInt(100)); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Set("msft", 0, decimal.NewFromInt(300)); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Set("tsla", -1, decimal.Zero); err == nil {
		t.Error("expected error for negative shares")
	}

	reloaded, err := NewManager(path)
	if err != nil {
		t.Fatal(err)
	}
	positions := reloaded.Positions()
	if len(positions) != 2 || positions[0].Symbol != "AAPL" || positions[1].Symbol != "MSFT" {
		t.Fatalf("unexpected positions after reload: %+v", positions)
	}
	if !positions[0].PurchasePrice.Equal(decimal.NewFromInt(100)) {
		t.Errorf("purchase price not persisted: %s", positions[0].PurchasePrice)
	}
	holdings := reloaded.Holdings()
	if _, ok := holdings["MSFT"]; ok {
		t.Error("zero-share position must not be a holding")
	}
	if _, ok := holdings["AAPL"]; !ok {
		t.Error("AAPL should be a holding")
	}

	if !reloaded.Remove("aapl") {
		t.Error("Remove should report an existing position")
	}
	if reloaded.Remove("AAPL") {
		t.Error("second Remove should report nothing removed")
	}
}

func TestManager_InMemory(t *testing.T) {
	m, err := NewManager("")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.Set("AAPL", 1, decimal.Zero); err != nil {
		t.Fatal(err)
	}
	if len(m.Holdings()) != 1 {
		t.Error("expected one holding")
	}
}
