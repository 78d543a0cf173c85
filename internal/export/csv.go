// Package export flattens published passes into row-per-date-per-symbol tables.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"StockDashboard/internal/model"
)

var baseHeader = []string{"Date", "Symbol", "Open", "High", "Low", "Close", "Volume"}

// Columns returns the indicator column names present in any successful
// result, in first-seen order.
func Columns(results []*model.SymbolResult) []string {
	seen := map[string]bool{}
	var names []string
	for _, r := range results {
		if !r.OK() {
			continue
		}
		for _, n := range r.Indicators.Names() {
			if !seen[n] {
				seen[n] = true
				names = append(names, n)
			}
		}
	}
	return names
}

// Rows builds the header and one row per bar of every successful result.
// Undefined indicator readings are empty cells.
func Rows(state *model.RefreshState) [][]string {
	cols := Columns(state.Results)
	header := append(append([]string{}, baseHeader...), cols...)
	rows := [][]string{header}

	for _, r := range state.Results {
		if !r.OK() {
			continue
		}
		for i, b := range r.Series.Bars {
			row := []string{
				b.Time.Format(model.DateLayout),
				r.Symbol,
				formatFloat(b.Open),
				formatFloat(b.High),
				formatFloat(b.Low),
				formatFloat(b.Close),
				formatFloat(b.Volume),
			}
			for _, c := range cols {
				row = append(row, formatValue(r.Indicators.At(c, i)))
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// WriteCSV writes Rows(state) as CSV.
func WriteCSV(w io.Writer, state *model.RefreshState) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(Rows(state)); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatValue(v model.Value) string {
	if !v.Valid {
		return ""
	}
	return formatFloat(v.Float64)
}
