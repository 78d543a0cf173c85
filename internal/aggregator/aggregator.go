// Package aggregator builds the cross-symbol comparison of latest closes.
package aggregator

import (
	"StockDashboard/internal/model"
)

// Build returns the latest currency-adjusted close of every symbol with data,
// ordered as in symbols. Duplicate symbols appear once; symbols with an empty
// series, an error or no result are left out rather than zero-filled.
func Build(currency string, symbols []string, results []*model.SymbolResult) model.Snapshot {
	bySymbol := make(map[string]*model.SymbolResult, len(results))
	for _, r := range results {
		if r == nil {
			continue
		}
		if _, dup := bySymbol[r.Symbol]; !dup {
			bySymbol[r.Symbol] = r
		}
	}

	snap := model.Snapshot{Currency: currency, Entries: []model.ComparisonEntry{}}
	for _, sym := range model.NormalizeSymbols(symbols) {
		r, ok := bySymbol[sym]
		if !ok || !r.OK() {
			continue
		}
		latest, ok := r.Series.Latest()
		if !ok {
			continue
		}
		snap.Entries = append(snap.Entries, model.ComparisonEntry{Symbol: sym, Close: latest.Close})
	}
	return snap
}
