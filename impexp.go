package treasury

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/PaesslerAG/jsonpath"
)

// this file contains functions to handle the import/export format.
// It should remain human readable, plain files and be easy to merge into a
// database: CSV per record collection, JSON for rate feeds.

// participantSeparator joins participant account ids inside one CSV cell.
const participantSeparator = ";"

// ImportAccounts reads bank accounts from 'r' in CSV format with a header
// row: account_id,entity_code,currency,region,type.
func ImportAccounts(r io.Reader) ([]BankAccount, error) {
	rows, err := readCSV(r, "accounts", []string{"account_id", "entity_code", "currency", "region", "type"})
	if err != nil {
		return nil, err
	}
	var accounts []BankAccount
	for _, row := range rows {
		accounts = append(accounts, BankAccount{
			ID:       row[0],
			Entity:   row[1],
			Currency: row[2],
			Region:   row[3],
			Type:     AccountType(row[4]),
		})
	}
	return accounts, nil
}

// ExportAccounts writes bank accounts to 'w' in the CSV import format.
func ExportAccounts(w io.Writer, accounts []BankAccount) error {
	rows := make([][]string, 0, len(accounts))
	for _, a := range accounts {
		rows = append(rows, []string{a.ID, a.Entity, a.Currency, a.Region, string(a.Type)})
	}
	return writeCSV(w, "accounts", []string{"account_id", "entity_code", "currency", "region", "type"}, rows)
}

// ImportBalances reads cash balances from 'r' in CSV format with a header
// row: account_id,date,currency,amount_local.
func ImportBalances(r io.Reader) ([]CashBalance, error) {
	rows, err := readCSV(r, "balances", []string{"account_id", "date", "currency", "amount_local"})
	if err != nil {
		return nil, err
	}
	var balances []CashBalance
	for i, row := range rows {
		day, err := ParseDate(row[1])
		if err != nil {
			return nil, fmt.Errorf("balances row %d: %w", i+1, err)
		}
		amount, err := ParseQuantity(row[3])
		if err != nil {
			return nil, fmt.Errorf("balances row %d: invalid amount %q: %w", i+1, row[3], err)
		}
		balances = append(balances, CashBalance{
			Account:  row[0],
			Date:     day,
			Currency: row[2],
			Amount:   amount,
		})
	}
	return balances, nil
}

// ExportBalances writes cash balances to 'w' in the CSV import format.
func ExportBalances(w io.Writer, balances []CashBalance) error {
	rows := make([][]string, 0, len(balances))
	for _, b := range balances {
		rows = append(rows, []string{b.Account, b.Date.String(), b.Currency, b.Amount.String()})
	}
	return writeCSV(w, "balances", []string{"account_id", "date", "currency", "amount_local"}, rows)
}

// ImportRates reads FX rates from 'r' in CSV format with a header row:
// pair,rate,rate_date.
func ImportRates(r io.Reader) ([]FXRate, error) {
	rows, err := readCSV(r, "fx_rates", []string{"pair", "rate", "rate_date"})
	if err != nil {
		return nil, err
	}
	var rates []FXRate
	for i, row := range rows {
		rate, err := ParseQuantity(row[1])
		if err != nil {
			return nil, fmt.Errorf("fx_rates row %d: invalid rate %q: %w", i+1, row[1], err)
		}
		day, err := ParseDate(row[2])
		if err != nil {
			return nil, fmt.Errorf("fx_rates row %d: %w", i+1, err)
		}
		rates = append(rates, FXRate{Pair: row[0], Rate: rate, Date: day})
	}
	return rates, nil
}

// ExportRates writes FX rates to 'w' in the CSV import format.
func ExportRates(w io.Writer, rates []FXRate) error {
	rows := make([][]string, 0, len(rates))
	for _, r := range rates {
		rows = append(rows, []string{r.Pair, r.Rate.String(), r.Date.String()})
	}
	return writeCSV(w, "fx_rates", []string{"pair", "rate", "rate_date"}, rows)
}

// ImportEntities reads legal entities from 'r' in CSV format with a header
// row: entity_code,name,country,region.
func ImportEntities(r io.Reader) ([]LegalEntity, error) {
	rows, err := readCSV(r, "entities", []string{"entity_code", "name", "country", "region"})
	if err != nil {
		return nil, err
	}
	var entities []LegalEntity
	for _, row := range rows {
		entities = append(entities, LegalEntity{Code: row[0], Name: row[1], Country: row[2], Region: row[3]})
	}
	return entities, nil
}

// ExportEntities writes legal entities to 'w' in the CSV import format.
func ExportEntities(w io.Writer, entities []LegalEntity) error {
	rows := make([][]string, 0, len(entities))
	for _, e := range entities {
		rows = append(rows, []string{e.Code, e.Name, e.Country, e.Region})
	}
	return writeCSV(w, "entities", []string{"entity_code", "name", "country", "region"}, rows)
}

// ImportPools reads cash pools from 'r' in CSV format with a header row:
// pool_name,type,region,participant_account_ids. Participants are separated
// by ";" inside the cell.
func ImportPools(r io.Reader) ([]CashPool, error) {
	rows, err := readCSV(r, "pools", []string{"pool_name", "type", "region", "participant_account_ids"})
	if err != nil {
		return nil, err
	}
	var pools []CashPool
	for _, row := range rows {
		var participants []string
		for _, id := range strings.Split(row[3], participantSeparator) {
			if id = strings.TrimSpace(id); id != "" {
				participants = append(participants, id)
			}
		}
		pools = append(pools, CashPool{
			Name:         row[0],
			Type:         PoolType(row[1]),
			Region:       row[2],
			Participants: participants,
		})
	}
	return pools, nil
}

// ExportPools writes cash pools to 'w' in the CSV import format.
func ExportPools(w io.Writer, pools []CashPool) error {
	rows := make([][]string, 0, len(pools))
	for _, p := range pools {
		rows = append(rows, []string{p.Name, string(p.Type), p.Region, strings.Join(p.Participants, participantSeparator)})
	}
	return writeCSV(w, "pools", []string{"pool_name", "type", "region", "participant_account_ids"}, rows)
}

func readCSV(r io.Reader, kind string, header []string) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("cannot parse %s CSV: %w", kind, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	got := records[0]
	if len(got) != len(header) {
		return nil, fmt.Errorf("cannot parse %s CSV: header %v, want %v", kind, got, header)
	}
	for i := range header {
		if !strings.EqualFold(strings.TrimSpace(got[i]), header[i]) {
			return nil, fmt.Errorf("cannot parse %s CSV: header %v, want %v", kind, got, header)
		}
	}
	return records[1:], nil
}

func writeCSV(w io.Writer, kind string, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("cannot write %s CSV: %w", kind, err)
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("cannot write %s CSV: %w", kind, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// RateFeed describes where pairs, rates and dates live inside a JSON rate
// feed, as jsonpath expressions evaluated against each item of Items.
// Providers rarely agree on field names; the paths keep one importer working
// for all of them.
type RateFeed struct {
	Items string // path selecting the list of quote objects
	Pair  string // path to the currency pair within one item
	Rate  string // path to the numeric rate within one item
	Date  string // path to the quote date within one item
}

// DefaultRateFeed matches the in-house feed shape:
//
//	{"rates": [{"pair": "EUR/USD", "rate": 1.10, "rate_date": "2025-06-30"}]}
var DefaultRateFeed = RateFeed{
	Items: "$.rates[*]",
	Pair:  "$.pair",
	Rate:  "$.rate",
	Date:  "$.rate_date",
}

// ImportRateFeed reads FX rates from a JSON provider feed using the feed's
// jsonpath mapping.
func ImportRateFeed(r io.Reader, feed RateFeed) ([]FXRate, error) {
	var jobj any
	if err := json.NewDecoder(r).Decode(&jobj); err != nil {
		return nil, fmt.Errorf("cannot parse rate feed: %w", err)
	}

	jitems, err := jsonpath.Get(feed.Items, jobj)
	if err != nil {
		return nil, fmt.Errorf("cannot select rate feed items %q: %w", feed.Items, err)
	}
	items, ok := jitems.([]any)
	if !ok {
		// jsonpath is never clear about whether it returns a list or a single
		// answer: a lone object counts as a one-item feed
		items = []any{jitems}
	}

	var rates []FXRate
	for i, item := range items {
		pair, err := feedString(item, feed.Pair)
		if err != nil {
			return nil, fmt.Errorf("rate feed item %d: %w", i, err)
		}
		value, err := feedFloat(item, feed.Rate)
		if err != nil {
			return nil, fmt.Errorf("rate feed item %d (%s): %w", i, pair, err)
		}
		day, err := feedString(item, feed.Date)
		if err != nil {
			return nil, fmt.Errorf("rate feed item %d (%s): %w", i, pair, err)
		}
		on, err := ParseDate(day)
		if err != nil {
			return nil, fmt.Errorf("rate feed item %d (%s): %w", i, pair, err)
		}
		rates = append(rates, FXRate{Pair: pair, Rate: Q(value), Date: on})
	}
	return rates, nil
}

func feedString(item any, path string) (string, error) {
	jval, err := jsonpath.Get(path, item)
	if err != nil {
		return "", fmt.Errorf("cannot evaluate %q: %w", path, err)
	}
	s, ok := jval.(string)
	if !ok {
		return "", fmt.Errorf("path %q: not a string: %v", path, jval)
	}
	return s, nil
}

func feedFloat(item any, path string) (float64, error) {
	jval, err := jsonpath.Get(path, item)
	if err != nil {
		return 0, fmt.Errorf("cannot evaluate %q: %w", path, err)
	}
	switch v := jval.(type) {
	case float64:
		return v, nil
	case string:
		// some providers quote the rate as a string
		var f float64
		if _, err := fmt.Sscanf(strings.TrimSpace(v), "%g", &f); err != nil {
			return 0, fmt.Errorf("path %q: invalid number %q: %w", path, v, err)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("path %q: not a number: %v", path, jval)
	}
}
