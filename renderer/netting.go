package renderer

import (
	"fmt"
	"strings"

	"github.com/gtip/treasury"
)

// NettingMarkdown renders the settlement set of a netting run.
func NettingMarkdown(r *treasury.NettingResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Multilateral Netting on %s\n\n", r.AsOf)
	fmt.Fprintf(&b, "Settlement currency: %s\n\n", r.Currency)

	if r.TotalTransactions == 0 {
		fmt.Fprint(&b, "All entity positions are flat, nothing to settle.\n")
		return b.String()
	}

	fmt.Fprintln(&b, "| From | To | Amount | Status |")
	fmt.Fprintln(&b, "|:---|:---|---:|:---|")
	for _, tx := range r.Transactions {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", tx.From, tx.To, tx.Value(), tx.Status)
	}
	fmt.Fprintf(&b, "\nTotal netted: %s %s in %d transaction(s).\n", r.TotalNetted, r.Currency, r.TotalTransactions)

	if r.ExcludedBalances > 0 {
		fmt.Fprintf(&b, "\n%d balance(s) excluded: no rate path to %s.\n", r.ExcludedBalances, r.Currency)
	}
	return b.String()
}
