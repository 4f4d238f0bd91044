package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/gtip/treasury"
	"github.com/gtip/treasury/renderer"
)

type summaryCmd struct {
	jsonOut bool
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display the at-a-glance treasury overview" }
func (*summaryCmd) Usage() string {
	return `tre summary [-json]

  Combines the liquidity, netting and validation products into one
  overview: total liquidity, pending settlements, data quality issues,
  regional breakdown and top entities.
`
}

func (p *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&p.jsonOut, "json", false, "Print the report as JSON instead of markdown.")
}

func (p *summaryCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := DecodeSnapshot()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if s.IsEmpty() {
		fmt.Fprintln(os.Stderr, "Warning:", treasury.ErrSnapshotEmpty)
	}

	summary := s.AnalyticsSummary()
	if p.jsonOut {
		return printJSON(summary)
	}
	printMarkdown(renderer.SummaryMarkdown(summary))
	return subcommands.ExitSuccess
}

type trendCmd struct {
	start   string
	jsonOut bool
}

func (*trendCmd) Name() string     { return "trend" }
func (*trendCmd) Synopsis() string { return "display the liquidity history over a date range" }
func (*trendCmd) Usage() string {
	return `tre trend [-s <start_date>] [-json]

  Rolls the balances up day by day from the start date to the as-of
  date, valuing each day with the rates known on that day.

Usage Examples:
# Last month of history.
$ tre trend -s -1m
`
}

func (p *trendCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.start, "s", "-30d", "Start of the history range (relative dates allowed).")
	f.BoolVar(&p.jsonOut, "json", false, "Print the report as JSON instead of markdown.")
}

func (p *trendCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := DecodeSnapshot()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	from, err := treasury.ParseDate(p.start)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing start date: %v\n", err)
		return subcommands.ExitFailure
	}

	points := s.History(from, s.On())
	if p.jsonOut {
		return printJSON(points)
	}
	printMarkdown(renderer.TrendMarkdown(points))
	return subcommands.ExitSuccess
}
