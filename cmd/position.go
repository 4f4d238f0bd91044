package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/gtip/treasury/renderer"
)

type positionCmd struct {
	jsonOut bool
}

func (*positionCmd) Name() string     { return "position" }
func (*positionCmd) Synopsis() string { return "display the global liquidity position" }
func (*positionCmd) Usage() string {
	return `tre position [-json]

  Aggregates every cash balance on the as-of date into the reporting
  currency and breaks the total down by region and by local currency.
  Balances whose currency has no rate path are excluded and counted.

Usage Examples:
# Global position for today in USD.
$ tre position

# Position on a past date, in euros.
$ tre -d 2025-06-30 -c EUR position
`
}

func (p *positionCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&p.jsonOut, "json", false, "Print the report as JSON instead of markdown.")
}

func (p *positionCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := DecodeSnapshot()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	report := s.GlobalPosition()
	if p.jsonOut {
		return printJSON(report)
	}
	printMarkdown(renderer.PositionMarkdown(report))
	return subcommands.ExitSuccess
}

type regionCmd struct {
	top     int
	jsonOut bool
}

func (*regionCmd) Name() string     { return "region" }
func (*regionCmd) Synopsis() string { return "display the liquidity position of one region" }
func (*regionCmd) Usage() string {
	return `tre region [-top <n>] [-json] <region>

  Aggregates the balances of a single region and ranks its entities.

Usage Examples:
# EMEA position with the 3 largest entities.
$ tre region -top 3 EMEA
`
}

func (p *regionCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&p.top, "top", 0, "Number of entities in the ranked view (default 5).")
	f.BoolVar(&p.jsonOut, "json", false, "Print the report as JSON instead of markdown.")
}

func (p *regionCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: region name is required")
		return subcommands.ExitUsageError
	}

	s, err := DecodeSnapshot()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	report := s.RegionalPosition(f.Arg(0), p.top)
	if p.jsonOut {
		return printJSON(report)
	}
	printMarkdown(renderer.RegionalMarkdown(report))
	return subcommands.ExitSuccess
}
