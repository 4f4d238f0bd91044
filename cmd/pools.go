package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/gtip/treasury/renderer"
)

type poolsCmd struct {
	jsonOut bool
}

func (*poolsCmd) Name() string     { return "pools" }
func (*poolsCmd) Synopsis() string { return "list every cash pool with its status" }
func (*poolsCmd) Usage() string {
	return `tre pools [-json]

  Summarizes every configured cash pool: participants, pooled total,
  efficiency and status. Misconfigured pools show as Invalid with the
  reason on stderr.
`
}

func (p *poolsCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&p.jsonOut, "json", false, "Print the report as JSON instead of markdown.")
}

func (p *poolsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := DecodeSnapshot()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	statuses, errs := s.PoolStatuses()
	for _, err := range errs {
		fmt.Fprintln(os.Stderr, "Warning:", err)
	}
	if p.jsonOut {
		return printJSON(statuses)
	}
	printMarkdown(renderer.PoolsMarkdown(statuses))
	return subcommands.ExitSuccess
}

type poolCmd struct {
	jsonOut bool
}

func (*poolCmd) Name() string     { return "pool" }
func (*poolCmd) Synopsis() string { return "display the surplus/deficit breakdown of one pool" }
func (*poolCmd) Usage() string {
	return `tre pool [-json] <pool_name>

  Computes the named pool's position: per-participant balance, variance
  from the pool average, efficiency score, and for physical pools the
  zero-balancing transfer set.

Usage Examples:
$ tre pool "EMEA Pool"
`
}

func (p *poolCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&p.jsonOut, "json", false, "Print the report as JSON instead of markdown.")
}

func (p *poolCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: pool name is required")
		return subcommands.ExitUsageError
	}

	s, err := DecodeSnapshot()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	calc, err := s.PoolCalculation(f.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if p.jsonOut {
		return printJSON(calc)
	}
	printMarkdown(renderer.PoolMarkdown(calc))
	return subcommands.ExitSuccess
}
