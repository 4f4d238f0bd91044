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

type validateCmd struct {
	jsonOut bool
	strict  bool
}

func (*validateCmd) Name() string     { return "validate" }
func (*validateCmd) Synopsis() string { return "run the data-quality rules over the snapshot" }
func (*validateCmd) Usage() string {
	return `tre validate [-strict] [-json]

  Runs every data-quality rule: accounts with no balance, duplicate
  balance records, negative cash on non-overdraft accounts, and balances
  with no rate path to the reporting currency. Records rejected at load
  time are listed as well.

  With -strict, any High severity issue fails the command.
`
}

func (p *validateCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&p.strict, "strict", false, "Exit with failure when High severity issues are found.")
	f.BoolVar(&p.jsonOut, "json", false, "Print the report as JSON instead of markdown.")
}

func (p *validateCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := DecodeSnapshot()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	for _, m := range s.Malformed() {
		fmt.Fprintln(os.Stderr, "Warning:", m.Error())
	}

	report := s.Validate()
	if p.jsonOut {
		return printJSON(report)
	}
	printMarkdown(renderer.ValidationMarkdown(report))

	if p.strict && report.BySeverity[treasury.SeverityHigh] > 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
