package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/gtip/treasury"
)

// SummaryMarkdown renders the at-a-glance snapshot overview.
func SummaryMarkdown(s *treasury.AnalyticsSummary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Treasury Summary on %s\n\n", s.AsOf)
	fmt.Fprintf(&b, "Total Liquidity: %s\n\n", s.TotalLiquidity)

	fmt.Fprintln(&b, "| | |")
	fmt.Fprintln(&b, "|:---|---:|")
	fmt.Fprintf(&b, "| Accounts | %d |\n", s.TotalAccounts)
	fmt.Fprintf(&b, "| Cash pools | %d |\n", s.TotalPools)
	fmt.Fprintf(&b, "| Pending settlements | %d |\n", s.PendingTransfers)
	fmt.Fprintf(&b, "| Data quality issues | %d |\n", s.DataQualityIssues)
	fmt.Fprintln(&b)

	ConditionalBlock(&b, func(w io.Writer) bool {
		fmt.Fprint(w, "## Regional Breakdown\n\n")
		fmt.Fprintln(w, "| Region | Total |")
		fmt.Fprintln(w, "|:---|---:|")
		for _, region := range sortedKeys(s.RegionalBreakdown) {
			fmt.Fprintf(w, "| %s | %s |\n", region, s.RegionalBreakdown[region])
		}
		fmt.Fprintln(w)
		return len(s.RegionalBreakdown) > 0
	})

	ConditionalBlock(&b, func(w io.Writer) bool {
		fmt.Fprint(w, "## Top Entities\n\n")
		fmt.Fprintln(w, "| Entity | Net Position |")
		fmt.Fprintln(w, "|:---|---:|")
		for _, e := range s.TopEntities {
			fmt.Fprintf(w, "| %s | %s |\n", e.Entity, e.Balance.SignedString())
		}
		return len(s.TopEntities) > 0
	})

	return b.String()
}

// TrendMarkdown renders the liquidity history table.
func TrendMarkdown(points []treasury.TrendPoint) string {
	var b strings.Builder

	fmt.Fprint(&b, "# Liquidity Trend\n\n")
	if len(points) == 0 {
		fmt.Fprint(&b, "No balances in the requested range.\n")
		return b.String()
	}

	fmt.Fprintln(&b, "| Date | Total Liquidity |")
	fmt.Fprintln(&b, "|:---|---:|")
	for _, p := range points {
		fmt.Fprintf(&b, "| %s | %s |\n", p.Date, p.TotalLiquidity)
	}
	return b.String()
}
