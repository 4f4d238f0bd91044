package renderer

import (
	"fmt"
	"strings"

	"github.com/gtip/treasury"
)

// ValidationMarkdown renders a data-quality report.
func ValidationMarkdown(r *treasury.ValidationReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Data Quality Report on %s\n\n", r.AsOf)
	if r.TotalIssues == 0 {
		fmt.Fprint(&b, "No issues found.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "%d issue(s): %d High, %d Medium, %d Low\n\n",
		r.TotalIssues,
		r.BySeverity[treasury.SeverityHigh],
		r.BySeverity[treasury.SeverityMedium],
		r.BySeverity[treasury.SeverityLow])

	fmt.Fprintln(&b, "| Check | Severity | Records | Description |")
	fmt.Fprintln(&b, "|:---|:---|---:|:---|")
	for _, issue := range r.Issues {
		fmt.Fprintf(&b, "| %s | %s | %d | %s |\n",
			issue.CheckType, issue.Severity, issue.AffectedRecords, issue.Description)
	}
	return b.String()
}
