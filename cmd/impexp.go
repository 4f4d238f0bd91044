package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/subcommands"
	"github.com/gtip/treasury"
)

type importCmd struct {
	feed      bool
	itemsPath string
	pairPath  string
	ratePath  string
	datePath  string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import records into the data folder" }
func (*importCmd) Usage() string {
	return `tre import [-feed] <kind> [<file>]

  Imports records of one kind (accounts, balances, fx_rates, entities,
  pools) from a CSV file, or from stdin when no file is given. Imported
  records are merged after the existing ones; snapshot construction
  reports duplicates.

  With -feed, the input is a JSON rate feed instead of CSV, and <kind>
  must be fx_rates. The jsonpath flags adapt to provider formats.

Usage Examples:
# Import balances from a bank statement export.
$ tre import balances statement.csv

# Import rates from a provider feed with custom paths.
$ tre import -feed -items '$.data.quotes[*]' -pair '$.symbol' fx_rates feed.json
`
}

func (p *importCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&p.feed, "feed", false, "Treat the input as a JSON rate feed (fx_rates only).")
	f.StringVar(&p.itemsPath, "items", treasury.DefaultRateFeed.Items, "jsonpath selecting the feed's quote list.")
	f.StringVar(&p.pairPath, "pair", treasury.DefaultRateFeed.Pair, "jsonpath to the currency pair in one quote.")
	f.StringVar(&p.ratePath, "rate", treasury.DefaultRateFeed.Rate, "jsonpath to the rate in one quote.")
	f.StringVar(&p.datePath, "date", treasury.DefaultRateFeed.Date, "jsonpath to the date in one quote.")
}

func (p *importCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() < 1 || f.NArg() > 2 {
		fmt.Fprintln(os.Stderr, "Error: want <kind> [<file>]")
		return subcommands.ExitUsageError
	}
	kind := f.Arg(0)

	in := io.Reader(os.Stdin)
	if f.NArg() == 2 {
		file, err := os.Open(f.Arg(1))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		defer file.Close()
		in = file
	}

	if p.feed {
		if kind != "fx_rates" {
			fmt.Fprintln(os.Stderr, "Error: -feed only imports fx_rates")
			return subcommands.ExitUsageError
		}
		rates, err := treasury.ImportRateFeed(in, treasury.RateFeed{
			Items: p.itemsPath,
			Pair:  p.pairPath,
			Rate:  p.ratePath,
			Date:  p.datePath,
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		return p.appendRates(rates)
	}

	switch kind {
	case "accounts":
		return mergeRecords(accountsFile, in, treasury.ImportAccounts, treasury.ExportAccounts)
	case "balances":
		return mergeRecords(balancesFile, in, treasury.ImportBalances, treasury.ExportBalances)
	case "fx_rates":
		return mergeRecords(ratesFile, in, treasury.ImportRates, treasury.ExportRates)
	case "entities":
		return mergeRecords(entitiesFile, in, treasury.ImportEntities, treasury.ExportEntities)
	case "pools":
		return mergeRecords(poolsFile, in, treasury.ImportPools, treasury.ExportPools)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown kind %q\n", kind)
		return subcommands.ExitUsageError
	}
}

func (p *importCmd) appendRates(rates []treasury.FXRate) subcommands.ExitStatus {
	existing, err := decodeFile(ratesFile, treasury.ImportRates)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if status := writeRecords(ratesFile, append(existing, rates...), treasury.ExportRates); status != subcommands.ExitSuccess {
		return status
	}
	fmt.Printf("Imported %d rate(s) into %s\n", len(rates), ratesFile)
	return subcommands.ExitSuccess
}

// mergeRecords reads one collection from 'in', appends it to the records
// already in the data folder, and writes the file back.
func mergeRecords[T any](name string, in io.Reader,
	decode func(io.Reader) ([]T, error), encode func(io.Writer, []T) error) subcommands.ExitStatus {

	records, err := decode(in)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	existing, err := decodeFile(name, decode)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if status := writeRecords(name, append(existing, records...), encode); status != subcommands.ExitSuccess {
		return status
	}
	fmt.Printf("Imported %d record(s) into %s\n", len(records), name)
	return subcommands.ExitSuccess
}

func writeRecords[T any](name string, records []T, encode func(io.Writer, []T) error) subcommands.ExitStatus {
	f, err := os.Create(filepath.Join(*dataDir, name))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer f.Close()
	if err := encode(f, records); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", name, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type exportCmd struct{}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export records from the data folder" }
func (*exportCmd) Usage() string {
	return `tre export <kind>

  Writes one record collection (accounts, balances, fx_rates, entities,
  pools) to stdout in the CSV import format.
`
}

func (*exportCmd) SetFlags(*flag.FlagSet) {}

func (p *exportCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: want <kind>")
		return subcommands.ExitUsageError
	}

	switch f.Arg(0) {
	case "accounts":
		return exportRecords(accountsFile, treasury.ImportAccounts, treasury.ExportAccounts)
	case "balances":
		return exportRecords(balancesFile, treasury.ImportBalances, treasury.ExportBalances)
	case "fx_rates":
		return exportRecords(ratesFile, treasury.ImportRates, treasury.ExportRates)
	case "entities":
		return exportRecords(entitiesFile, treasury.ImportEntities, treasury.ExportEntities)
	case "pools":
		return exportRecords(poolsFile, treasury.ImportPools, treasury.ExportPools)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown kind %q\n", f.Arg(0))
		return subcommands.ExitUsageError
	}
}

func exportRecords[T any](name string, decode func(io.Reader) ([]T, error), encode func(io.Writer, []T) error) subcommands.ExitStatus {
	records, err := decodeFile(name, decode)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := encode(os.Stdout, records); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
