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

type nettingCmd struct {
	currency      string
	excludePooled bool
	jsonOut       bool
}

func (*nettingCmd) Name() string     { return "netting" }
func (*nettingCmd) Synopsis() string { return "compute the multilateral netting settlement set" }
func (*nettingCmd) Usage() string {
	return `tre netting [-settle <currency>] [-exclude-pooled] [-json]

  Nets every entity's inter-company position into the smallest bilateral
  settlement set. Entities within 0.01 of zero generate no transaction.

Usage Examples:
# Settle in the reporting currency.
$ tre netting

# Settle in euros, ignoring accounts already concentrated in pools.
$ tre netting -settle EUR -exclude-pooled
`
}

func (p *nettingCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.currency, "settle", "", "Settlement currency (defaults to the reporting currency).")
	f.BoolVar(&p.excludePooled, "exclude-pooled", false, "Leave pool participant accounts out of the netting run.")
	f.BoolVar(&p.jsonOut, "json", false, "Print the report as JSON instead of markdown.")
}

func (p *nettingCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := DecodeSnapshot()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	result := s.Netting(treasury.NettingOptions{
		Currency:      p.currency,
		ExcludePooled: p.excludePooled,
	})
	if p.jsonOut {
		return printJSON(result)
	}
	printMarkdown(renderer.NettingMarkdown(result))
	return subcommands.ExitSuccess
}
