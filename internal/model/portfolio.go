package model

import "github.com/shopspring/decimal"

// Position is a user holding. A zero PurchasePrice means the price has not
// been entered yet.
type Position struct {
	Symbol        string          `json:"symbol"`
	Shares        int64           `json:"shares"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
}

// Validate rejects negative shares or price.
func (p Position) Validate() error {
	if p.Shares < 0 {
		return NewConfigError("shares", "%s: negative share count %d", p.Symbol, p.Shares)
	}
	if p.PurchasePrice.IsNegative() {
		return NewConfigError("purchase_price", "%s: negative purchase price %s", p.Symbol, p.PurchasePrice)
	}
	return nil
}

// Held reports whether the position takes part in valuation.
func (p Position) Held() bool { return p.Shares > 0 }

// Valuation is a held position marked to the currency-adjusted latest close.
// ProfitLoss is invalid when no purchase price was entered, which is not the
// same as a zero profit.
type Valuation struct {
	Symbol        string              `json:"symbol"`
	Currency      string              `json:"currency"`
	Shares        int64               `json:"shares"`
	Price         decimal.Decimal     `json:"price"`
	Value         decimal.Decimal     `json:"value"`
	PurchasePrice decimal.Decimal     `json:"purchase_price"`
	ProfitLoss    decimal.NullDecimal `json:"profit_loss"`
}
