package treasury

import (
	"testing"
	"time"
)

func TestSnapshot_History(t *testing.T) {
	on := D(time.June, 30)
	s := mustSnapshot(t, on, "USD", Inputs{
		Entities: []LegalEntity{{Code: "A", Region: "EMEA"}},
		Accounts: []BankAccount{{ID: "ACC-1", Entity: "A", Currency: "EUR"}},
		Balances: []CashBalance{
			{Account: "ACC-1", Date: D(time.June, 1), Currency: "EUR", Amount: Q(1000)},
			{Account: "ACC-1", Date: D(time.June, 15), Currency: "EUR", Amount: Q(2000)},
			{Account: "ACC-1", Date: on, Currency: "EUR", Amount: Q(3000)},
		},
		Rates: []FXRate{
			{Pair: "EUR/USD", Rate: Q(1.00), Date: D(time.June, 1)},
			{Pair: "EUR/USD", Rate: Q(1.10), Date: D(time.June, 15)},
		},
	})

	points := s.History(D(time.June, 1), on)
	if len(points) != 3 {
		t.Fatalf("len(points) = %d, want 3: %v", len(points), points)
	}

	// each day is valued with that day's rate, never a later one
	testCases := []struct {
		date Date
		want Money
	}{
		{D(time.June, 1), USD(1000)},
		{D(time.June, 15), USD(2200)},
		{on, USD(3300)},
	}
	for i, tc := range testCases {
		if points[i].Date != tc.date {
			t.Errorf("points[%d].Date = %s, want %s", i, points[i].Date, tc.date)
		}
		if !points[i].TotalLiquidity.Equal(tc.want) {
			t.Errorf("points[%d].TotalLiquidity = %v, want %v", i, points[i].TotalLiquidity, tc.want)
		}
	}
}

func TestSnapshot_History_CapsAtSnapshotDate(t *testing.T) {
	on := D(time.June, 15)
	s := mustSnapshot(t, on, "USD", Inputs{
		Accounts: []BankAccount{{ID: "ACC-1", Entity: "A", Currency: "USD"}},
		Balances: []CashBalance{
			{Account: "ACC-1", Date: D(time.June, 1), Currency: "USD", Amount: Q(100)},
			{Account: "ACC-1", Date: on, Currency: "USD", Amount: Q(200)},
		},
	})

	points := s.History(D(time.June, 1), D(time.December, 31))
	if len(points) != 2 {
		t.Fatalf("len(points) = %d, want 2", len(points))
	}
	if last := points[len(points)-1].Date; last != on {
		t.Errorf("last point date = %s, want the snapshot date %s", last, on)
	}
}

func TestSnapshot_AnalyticsSummary(t *testing.T) {
	on := D(time.June, 30)
	in := treasuryInputs(on)
	in.Pools = []CashPool{
		{Name: "EMEA Pool", Type: Notional, Region: "EMEA", Participants: []string{"ACC-B1"}},
	}
	s := mustSnapshot(t, on, "USD", in)

	summary := s.AnalyticsSummary()

	if summary.AsOf != on {
		t.Errorf("AsOf = %s, want %s", summary.AsOf, on)
	}
	if summary.ReportingCurrency != "USD" {
		t.Errorf("ReportingCurrency = %s, want USD", summary.ReportingCurrency)
	}
	if want := USD(0); !summary.TotalLiquidity.Equal(want) {
		t.Errorf("TotalLiquidity = %v, want %v", summary.TotalLiquidity, want)
	}
	if summary.TotalAccounts != 3 {
		t.Errorf("TotalAccounts = %d, want 3", summary.TotalAccounts)
	}
	if summary.TotalPools != 1 {
		t.Errorf("TotalPools = %d, want 1", summary.TotalPools)
	}
	if summary.PendingTransfers != 2 {
		t.Errorf("PendingTransfers = %d, want 2", summary.PendingTransfers)
	}
	// ACC-A2 has no balance on the snapshot date
	if summary.DataQualityIssues != 2 {
		t.Errorf("DataQualityIssues = %d, want 2", summary.DataQualityIssues)
	}
	if len(summary.TopEntities) != 3 {
		t.Errorf("len(TopEntities) = %d, want 3", len(summary.TopEntities))
	}
	if summary.TopEntities[0].Entity != "A" {
		t.Errorf("TopEntities[0] = %+v, want entity A first", summary.TopEntities[0])
	}
}
