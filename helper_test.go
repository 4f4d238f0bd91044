package treasury

import (
	"testing"
	"time"
)

// EUR is a helper for test to create euro money from const
func EUR(v float64) Money { return M(v, "EUR") }

// USD is a helper for test to create usd money from const
func USD(v float64) Money { return M(v, "USD") }

// NO is a helper for test to create money from const wit no currency set
func NO(v float64) Money { return M(v, "") }

// D is a shorthand to build a 2025 date from month and day.
func D(m time.Month, d int) Date { return NewDate(2025, m, d) }

// mustSnapshot builds a snapshot and fails the test on a hard error.
func mustSnapshot(t *testing.T, on Date, currency string, in Inputs) *Snapshot {
	t.Helper()
	s, err := NewSnapshot(on, currency, in)
	if err != nil {
		t.Fatalf("NewSnapshot() error = %v", err)
	}
	return s
}

// treasuryInputs is the shared three-entity fixture: entity A holds a 300 USD
// surplus, B is 100 short and C is 200 short. ACC-A2 exercises conversion.
func treasuryInputs(on Date) Inputs {
	return Inputs{
		Entities: []LegalEntity{
			{Code: "A", Name: "Alpha Corp", Country: "US", Region: "Americas"},
			{Code: "B", Name: "Beta GmbH", Country: "DE", Region: "EMEA"},
			{Code: "C", Name: "Gamma KK", Country: "JP", Region: "APAC"},
		},
		Accounts: []BankAccount{
			{ID: "ACC-A1", Entity: "A", Currency: "USD", Type: Operating},
			{ID: "ACC-B1", Entity: "B", Currency: "USD", Type: Operating},
			{ID: "ACC-C1", Entity: "C", Currency: "USD", Type: Operating},
			{ID: "ACC-A2", Entity: "A", Currency: "EUR", Type: Investment},
		},
		Balances: []CashBalance{
			{Account: "ACC-A1", Date: on, Currency: "USD", Amount: Q(300)},
			{Account: "ACC-B1", Date: on, Currency: "USD", Amount: Q(-100)},
			{Account: "ACC-C1", Date: on, Currency: "USD", Amount: Q(-200)},
		},
		Rates: []FXRate{
			{Pair: "EUR/USD", Rate: Q(1.10), Date: on},
		},
	}
}
