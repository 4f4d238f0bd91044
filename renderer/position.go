package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/gtip/treasury"
)

// PositionMarkdown renders the global liquidity position.
func PositionMarkdown(g *treasury.GlobalPosition) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Global Liquidity Position on %s\n\n", g.AsOf)
	fmt.Fprintf(&b, "Total Liquidity: %s (%d accounts)\n\n", g.TotalLiquidity, g.TotalAccounts)

	ConditionalBlock(&b, func(w io.Writer) bool {
		fmt.Fprint(w, "## By Region\n\n")
		fmt.Fprintln(w, "| Region | Total |")
		fmt.Fprintln(w, "|:---|---:|")
		for _, region := range sortedKeys(g.ByRegion) {
			fmt.Fprintf(w, "| %s | %s |\n", region, g.ByRegion[region])
		}
		fmt.Fprintln(w)
		return len(g.ByRegion) > 0
	})

	ConditionalBlock(&b, func(w io.Writer) bool {
		fmt.Fprint(w, "## By Currency (local amounts)\n\n")
		fmt.Fprintln(w, "| Currency | Local Total |")
		fmt.Fprintln(w, "|:---|---:|")
		for _, currency := range sortedKeys(g.ByCurrency) {
			fmt.Fprintf(w, "| %s | %s |\n", currency, g.ByCurrency[currency])
		}
		fmt.Fprintln(w)
		return len(g.ByCurrency) > 0
	})

	if g.ExcludedBalances > 0 {
		fmt.Fprintf(&b, "%d balance(s) excluded: no rate path to %s.\n", g.ExcludedBalances, g.ReportingCurrency)
	}
	return b.String()
}

// RegionalMarkdown renders the liquidity rollup of one region.
func RegionalMarkdown(r *treasury.RegionalPosition) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s Liquidity\n\n", r.Region)
	fmt.Fprintf(&b, "Total: %s (%d accounts)\n\n", r.Total, r.AccountCount)

	ConditionalBlock(&b, func(w io.Writer) bool {
		fmt.Fprint(w, "## Top Entities\n\n")
		fmt.Fprintln(w, "| Entity | Balance |")
		fmt.Fprintln(w, "|:---|---:|")
		for _, e := range r.TopEntities {
			fmt.Fprintf(w, "| %s | %s |\n", e.Entity, e.Balance)
		}
		fmt.Fprintln(w)
		return len(r.TopEntities) > 0
	})

	ConditionalBlock(&b, func(w io.Writer) bool {
		fmt.Fprint(w, "## By Currency (local amounts)\n\n")
		fmt.Fprintln(w, "| Currency | Local Total |")
		fmt.Fprintln(w, "|:---|---:|")
		for _, currency := range sortedKeys(r.ByCurrency) {
			fmt.Fprintf(w, "| %s | %s |\n", currency, r.ByCurrency[currency])
		}
		fmt.Fprintln(w)
		return len(r.ByCurrency) > 0
	})

	if r.ExcludedBalances > 0 {
		fmt.Fprintf(&b, "%d balance(s) excluded: no rate path to %s.\n", r.ExcludedBalances, r.ReportingCurrency)
	}
	return b.String()
}
