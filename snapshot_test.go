package treasury

import (
	"testing"
	"time"
)

func TestNewSnapshot_RejectsMalformedRecords(t *testing.T) {
	on := D(time.June, 30)
	in := Inputs{
		Entities: []LegalEntity{
			{Code: "A", Region: "Americas"},
			{Code: "", Name: "nameless"}, // empty code
		},
		Accounts: []BankAccount{
			{ID: "ACC-A1", Entity: "A", Currency: "USD"},
			{ID: "", Entity: "A", Currency: "USD"},       // empty id
			{ID: "ACC-A2", Entity: "A", Currency: "usd"}, // lowercase currency
		},
		Balances: []CashBalance{
			{Account: "ACC-A1", Date: on, Currency: "USD", Amount: Q(100)},
			{Account: "ACC-XX", Date: on, Currency: "USD", Amount: Q(100)}, // unknown account
			{Account: "ACC-A1", Date: on, Currency: "US", Amount: Q(100)},  // bad currency
		},
		Rates: []FXRate{
			{Pair: "EUR/USD", Rate: Q(1.10), Date: on},
			{Pair: "EURUSD", Rate: Q(1.10), Date: on}, // no separator
			{Pair: "EUR/USD", Rate: Q(0), Date: on},   // non-positive
			{Pair: "EUR/USD", Rate: Q(-1), Date: on},  // non-positive
		},
	}

	s := mustSnapshot(t, on, "USD", in)

	if got, want := len(s.Malformed()), 8; got != want {
		t.Fatalf("len(Malformed()) = %d, want %d: %v", got, want, s.Malformed())
	}
	if got, want := len(s.Accounts()), 1; got != want {
		t.Errorf("len(Accounts()) = %d, want %d", got, want)
	}
	if got, want := len(s.BalancesOn(on)), 1; got != want {
		t.Errorf("len(BalancesOn(on)) = %d, want %d", got, want)
	}
}

func TestNewSnapshot_InvalidReportingCurrency(t *testing.T) {
	if _, err := NewSnapshot(D(time.June, 30), "dollars", Inputs{}); err == nil {
		t.Fatal("NewSnapshot() with invalid reporting currency: expected error, got nil")
	}
}

func TestNewSnapshot_FutureBalancesExcluded(t *testing.T) {
	on := D(time.June, 30)
	s := mustSnapshot(t, on, "USD", Inputs{
		Accounts: []BankAccount{{ID: "ACC-A1", Entity: "A", Currency: "USD"}},
		Balances: []CashBalance{
			{Account: "ACC-A1", Date: on, Currency: "USD", Amount: Q(100)},
			{Account: "ACC-A1", Date: on.Add(1), Currency: "USD", Amount: Q(999)},
		},
	})

	// the future balance is not part of the snapshot, and it is not malformed
	if got := len(s.BalancesOn(on.Add(1))); got != 0 {
		t.Errorf("BalancesOn(future) = %d balances, want 0", got)
	}
	if got := len(s.Malformed()); got != 0 {
		t.Errorf("len(Malformed()) = %d, want 0", got)
	}
}

func TestSnapshot_Empty(t *testing.T) {
	on := D(time.June, 30)
	s := mustSnapshot(t, on, "USD", Inputs{})

	if !s.IsEmpty() {
		t.Error("IsEmpty() = false, want true")
	}

	// every report degrades to a valid empty result, never an error
	global := s.GlobalPosition()
	if !global.TotalLiquidity.Equal(USD(0)) {
		t.Errorf("GlobalPosition().TotalLiquidity = %v, want %v", global.TotalLiquidity, USD(0))
	}
	if report := s.Validate(); report.TotalIssues != 0 {
		t.Errorf("Validate().TotalIssues = %d, want 0", report.TotalIssues)
	}
	if netting := s.Netting(NettingOptions{}); netting.TotalTransactions != 0 {
		t.Errorf("Netting().TotalTransactions = %d, want 0", netting.TotalTransactions)
	}
}

func TestSnapshot_RegionFallsBackToAccount(t *testing.T) {
	on := D(time.June, 30)
	s := mustSnapshot(t, on, "USD", Inputs{
		Entities: []LegalEntity{{Code: "A", Region: "EMEA"}},
		Accounts: []BankAccount{
			{ID: "ACC-A1", Entity: "A", Currency: "USD", Region: "Americas"},
			{ID: "ACC-Z1", Entity: "Z", Currency: "USD", Region: "APAC"}, // entity unknown
		},
	})

	a, _ := s.Account("ACC-A1")
	if got := s.region(a); got != "EMEA" {
		t.Errorf("region(ACC-A1) = %q, want %q (entity region wins)", got, "EMEA")
	}
	z, _ := s.Account("ACC-Z1")
	if got := s.region(z); got != "APAC" {
		t.Errorf("region(ACC-Z1) = %q, want %q", got, "APAC")
	}
}
