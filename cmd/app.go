// Package cmd implements the CLI application to run treasury analytics.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/google/subcommands"
	"github.com/gtip/treasury"
)

// Commands lists the subcommands a main package registers.
var Commands = []subcommands.Command{
	&positionCmd{},
	&regionCmd{},
	&poolsCmd{},
	&poolCmd{},
	&nettingCmd{},
	&validateCmd{},
	&summaryCmd{},
	&trendCmd{},
	&importCmd{},
	&exportCmd{},
	&serveCmd{},
	&AssistCmd{},
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var dataDir = flag.String("data", ".", "Path to the folder holding the treasury CSV files")
var asOf = flag.String("d", "0d", "As-of date for the snapshot (defaults to today)")
var reportingCurrency = flag.String("c", "USD", "Reporting currency for all aggregates")

// file names inside the data folder, one CSV per record collection.
const (
	accountsFile = "accounts.csv"
	balancesFile = "balances.csv"
	ratesFile    = "fx_rates.csv"
	entitiesFile = "entities.csv"
	poolsFile    = "pools.csv"
)

// DecodeInputs loads the record collections from the app data folder.
// A missing file is an empty collection, not an error.
func DecodeInputs() (treasury.Inputs, error) {
	var in treasury.Inputs
	var err error

	if in.Accounts, err = decodeFile(accountsFile, treasury.ImportAccounts); err != nil {
		return in, err
	}
	if in.Balances, err = decodeFile(balancesFile, treasury.ImportBalances); err != nil {
		return in, err
	}
	if in.Rates, err = decodeFile(ratesFile, treasury.ImportRates); err != nil {
		return in, err
	}
	if in.Entities, err = decodeFile(entitiesFile, treasury.ImportEntities); err != nil {
		return in, err
	}
	if in.Pools, err = decodeFile(poolsFile, treasury.ImportPools); err != nil {
		return in, err
	}
	return in, nil
}

func decodeFile[T any](name string, decode func(r io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(filepath.Join(*dataDir, name))
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("warning, %s does not exist, using an empty collection instead", name)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	records, err := decode(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return records, nil
}

// DecodeSnapshot loads the data folder and builds the snapshot for the app
// date and reporting currency.
func DecodeSnapshot() (*treasury.Snapshot, error) {
	on, err := treasury.ParseDate(*asOf)
	if err != nil {
		return nil, fmt.Errorf("invalid -d date: %w", err)
	}
	in, err := DecodeInputs()
	if err != nil {
		return nil, err
	}
	return treasury.NewSnapshot(on, *reportingCurrency, in)
}
