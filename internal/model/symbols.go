package model

import "strings"

// NormalizeSymbol trims and upper-cases a ticker.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// NormalizeSymbols upper-cases every ticker, drops blanks and collapses
// duplicates, keeping the first occurrence's position.
func NormalizeSymbols(symbols []string) []string {
	out := make([]string, 0, len(symbols))
	seen := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		sym := NormalizeSymbol(s)
		if sym == "" || seen[sym] {
			continue
		}
		seen[sym] = true
		out = append(out, sym)
	}
	return out
}

// ParseSymbols splits a comma-separated ticker list such as "aapl, AAPL, msft"
// and normalizes it.
func ParseSymbols(input string) []string {
	return NormalizeSymbols(strings.Split(input, ","))
}
