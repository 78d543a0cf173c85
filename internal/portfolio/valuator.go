// Package portfolio stores user positions and marks them to market.
package portfolio

import (
	"github.com/shopspring/decimal"

	"StockDashboard/internal/model"
)

// Valuate marks pos to price, both in the display currency. It returns
// false for positions with no shares. P/L is only computed when a purchase
// price was entered.
func Valuate(pos model.Position, currency string, price float64) (model.Valuation, bool, error) {
	if err := pos.Validate(); err != nil {
		return model.Valuation{}, false, err
	}
	if price < 0 {
		return model.Valuation{}, false, model.NewConfigError("price", "%s: negative current price %v", pos.Symbol, price)
	}
	if !pos.Held() {
		return model.Valuation{}, false, nil
	}

	shares := decimal.NewFromInt(pos.Shares)
	current := decimal.NewFromFloat(price)
	v := model.Valuation{
		Symbol:        pos.Symbol,
		Currency:      currency,
		Shares:        pos.Shares,
		Price:         current,
		Value:         current.Mul(shares),
		PurchasePrice: pos.PurchasePrice,
	}
	if pos.PurchasePrice.IsPositive() {
		v.ProfitLoss = decimal.NewNullDecimal(current.Sub(pos.PurchasePrice).Mul(shares))
	}
	return v, true, nil
}

// ValuateAll values every held position whose symbol has a latest close in
// snap, in snapshot order. Any invalid position fails the whole call.
func ValuateAll(holdings map[string]model.Position, snap model.Snapshot) ([]model.Valuation, error) {
	if err := ValidatePositions(holdings); err != nil {
		return nil, err
	}
	out := []model.Valuation{}
	for _, e := range snap.Entries {
		pos, ok := holdings[e.Symbol]
		if !ok {
			continue
		}
		v, held, err := Valuate(pos, snap.Currency, e.Close)
		if err != nil {
			return nil, err
		}
		if held {
			out = append(out, v)
		}
	}
	return out, nil
}

// ValidatePositions rejects negative shares or purchase prices.
func ValidatePositions(holdings map[string]model.Position) error {
	for _, p := range holdings {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Totals sums value and the defined P/L figures of vals.
func Totals(vals []model.Valuation) (value decimal.Decimal, profitLoss decimal.NullDecimal) {
	value = decimal.Zero
	for _, v := range vals {
		value = value.Add(v.Value)
		if v.ProfitLoss.Valid {
			if !profitLoss.Valid {
				profitLoss = decimal.NewNullDecimal(decimal.Zero)
			}
			profitLoss.Decimal = profitLoss.Decimal.Add(v.ProfitLoss.Decimal)
		}
	}
	return value, profitLoss
}
