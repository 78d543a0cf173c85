// Package report renders published passes as plain-text summaries.
package report

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"StockDashboard/internal/calculator"
	"StockDashboard/internal/model"
	"StockDashboard/internal/portfolio"
)

// FormatMoney displays amount in currency, e.g. "$1,200.00" or "₹8,300.00".
// Codes go-money does not know are printed as "<amount> <code>".
func FormatMoney(amount decimal.Decimal, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return fmt.Sprintf("%s %s", amount.StringFixed(2), currency)
	}
	factor, _ := decimal.NewFromInt(10).PowInt32(int32(cur.Fraction))
	return money.New(amount.Mul(factor).Round(0).IntPart(), currency).Display()
}

// FormatMoneyFloat is FormatMoney for float prices.
func FormatMoneyFloat(amount float64, currency string) string {
	return FormatMoney(decimal.NewFromFloat(amount), currency)
}

// FormatPassReport renders the comparison, indicator readings, symbol errors
// and portfolio of a published pass.
func FormatPassReport(state *model.RefreshState) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Stock Dashboard | pass %d | %s | %s\n",
		state.Seq, state.Status, state.PublishedAt.Format("2006-01-02 15:04:05")))
	if len(state.Config.Symbols) > 0 {
		b.WriteString(fmt.Sprintf("Range %s .. %s | currency %s\n",
			state.Config.Start.Format(model.DateLayout), state.Config.End.Format(model.DateLayout),
			state.Snapshot.Currency))
	}
	b.WriteString("\n")

	switch state.Status {
	case model.StatusConfigError:
		b.WriteString(fmt.Sprintf("Configuration error: %v\n", state.Err))
		return b.String()
	case model.StatusEmpty:
		b.WriteString("No symbols configured.\n")
		return b.String()
	case model.StatusPending:
		b.WriteString("Waiting for the first refresh.\n")
		return b.String()
	}

	if len(state.Snapshot.Entries) > 0 {
		b.WriteString("Latest close\n")
		tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "  Symbol\tClose\tHigh\tLow\tRange\tIndicators")
		for _, e := range state.Snapshot.Entries {
			r, _ := state.Result(e.Symbol)
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\t%s\n",
				e.Symbol,
				FormatMoneyFloat(e.Close, state.Snapshot.Currency),
				formatValueMoney(r.PeriodHigh, state.Snapshot.Currency),
				formatValueMoney(r.PeriodLow, state.Snapshot.Currency),
				formatRange(r),
				formatIndicators(r.Indicators))
		}
		tw.Flush()
	}

	if failed := state.Failed(); len(failed) > 0 {
		b.WriteString("\nUnavailable\n")
		for _, r := range failed {
			b.WriteString(fmt.Sprintf("  %s: %s error: %v\n", r.Symbol, model.ErrorKind(r.Err), r.Err))
		}
	}
	if state.Status == model.StatusFailed {
		b.WriteString("\nNo symbol returned data in this pass.\n")
	}

	if len(state.Valuations) > 0 {
		b.WriteString("\n")
		b.WriteString(FormatPortfolio(state.Valuations, state.Snapshot.Currency))
	}
	return b.String()
}

// FormatPortfolio renders valuations with totals.
func FormatPortfolio(vals []model.Valuation, currency string) string {
	var b strings.Builder
	b.WriteString("Portfolio\n")
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  Symbol\tShares\tPrice\tValue\tP/L")
	for _, v := range vals {
		fmt.Fprintf(tw, "  %s\t%d\t%s\t%s\t%s\n",
			v.Symbol, v.Shares,
			FormatMoney(v.Price, currency),
			FormatMoney(v.Value, currency),
			formatProfitLoss(v.ProfitLoss, currency))
	}
	value, pl := portfolio.Totals(vals)
	fmt.Fprintf(tw, "  Total\t\t\t%s\t%s\n", FormatMoney(value, currency), formatProfitLoss(pl, currency))
	tw.Flush()
	return b.String()
}

func formatProfitLoss(pl decimal.NullDecimal, currency string) string {
	if !pl.Valid {
		return "n/a"
	}
	s := FormatMoney(pl.Decimal, currency)
	if pl.Decimal.IsPositive() {
		return "+" + s
	}
	return s
}

func formatValueMoney(v model.Value, currency string) string {
	if !v.Valid {
		return "-"
	}
	return FormatMoneyFloat(v.Float64, currency)
}

// formatRange shows where the latest close sits between the period low and high.
func formatRange(r *model.SymbolResult) string {
	if !r.LatestClose.Valid || !r.PeriodHigh.Valid || !r.PeriodLow.Valid {
		return "-"
	}
	pos, err := calculator.RangePosition(r.LatestClose.Float64, r.PeriodHigh.Float64, r.PeriodLow.Float64)
	if err != nil {
		return "-"
	}
	return fmt.Sprintf("%.0f%%", pos*100)
}

func formatIndicators(set model.IndicatorSet) string {
	var parts []string
	for _, name := range set.Names() {
		v := set.Latest(name)
		if !v.Valid {
			parts = append(parts, name+"=-")
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%.2f", name, v.Float64))
	}
	return strings.Join(parts, " ")
}
