package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/gtip/treasury"
)

// PoolMarkdown renders the surplus/deficit breakdown of one pool.
func PoolMarkdown(c *treasury.PoolCalculation) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Cash Pool %s (%s, %s)\n\n", c.Pool, c.Type, c.Region)
	fmt.Fprintf(&b, "Total pooled: %s, average %s, efficiency %s\n\n", c.TotalPooled, c.Average, c.Efficiency)

	ConditionalBlock(&b, func(w io.Writer) bool {
		fmt.Fprint(w, "## Participants\n\n")
		fmt.Fprintln(w, "| Account | Entity | Balance | Variance | Status |")
		fmt.Fprintln(w, "|:---|:---|---:|---:|:---|")
		for _, p := range c.Participants {
			fmt.Fprintf(w, "| %s | %s | %s | %s | %s |\n",
				p.Account, p.Entity, p.Balance, p.Variance.SignedString(), p.Status)
		}
		fmt.Fprintln(w)
		return len(c.Participants) > 0
	})

	ConditionalBlock(&b, func(w io.Writer) bool {
		fmt.Fprint(w, "## Zero-Balancing Transfers\n\n")
		fmt.Fprintln(w, "| From | To | Amount |")
		fmt.Fprintln(w, "|:---|:---|---:|")
		for _, tx := range c.Transfers {
			fmt.Fprintf(w, "| %s | %s | %s |\n", tx.From, tx.To, tx.Value())
		}
		fmt.Fprintln(w)
		return len(c.Transfers) > 0
	})

	if c.ExcludedBalances > 0 {
		fmt.Fprintf(&b, "%d balance(s) excluded from the pool for missing rates.\n", c.ExcludedBalances)
	}
	return b.String()
}

// PoolsMarkdown renders the one-line status of every pool.
func PoolsMarkdown(statuses []treasury.PoolStatus) string {
	var b strings.Builder

	fmt.Fprint(&b, "# Cash Pools\n\n")
	if len(statuses) == 0 {
		fmt.Fprint(&b, "No cash pools configured.\n")
		return b.String()
	}

	fmt.Fprintln(&b, "| Pool | Type | Region | Participants | Total | Efficiency | Status |")
	fmt.Fprintln(&b, "|:---|:---|:---|---:|---:|---:|:---|")
	for _, s := range statuses {
		fmt.Fprintf(&b, "| %s | %s | %s | %d | %s | %s | %s |\n",
			s.Pool, s.Type, s.Region, s.Participants, s.TotalBalance, s.Efficiency, s.Status)
	}
	return b.String()
}
