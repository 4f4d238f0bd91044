package treasury

import (
	"errors"
	"testing"
	"time"
)

func poolInputs(on Date, poolType PoolType, amounts ...float64) Inputs {
	in := Inputs{
		Entities: []LegalEntity{{Code: "A", Region: "EMEA"}},
		Pools: []CashPool{
			{Name: "EMEA Pool", Type: poolType, Region: "EMEA"},
		},
	}
	for i, amount := range amounts {
		id := "ACC-" + string(rune('1'+i))
		in.Accounts = append(in.Accounts, BankAccount{ID: id, Entity: "A", Currency: "USD", Type: Operating})
		in.Balances = append(in.Balances, CashBalance{Account: id, Date: on, Currency: "USD", Amount: Q(amount)})
		in.Pools[0].Participants = append(in.Pools[0].Participants, id)
	}
	return in
}

func TestSnapshot_PoolCalculation(t *testing.T) {
	on := D(time.June, 30)
	s := mustSnapshot(t, on, "USD", poolInputs(on, Notional, 300, 100, 200))

	calc, err := s.PoolCalculation("EMEA Pool")
	if err != nil {
		t.Fatalf("PoolCalculation() error = %v", err)
	}

	if want := USD(600); !calc.TotalPooled.Equal(want) {
		t.Errorf("TotalPooled = %v, want %v", calc.TotalPooled, want)
	}
	if want := USD(200); !calc.Average.Equal(want) {
		t.Errorf("Average = %v, want %v", calc.Average, want)
	}

	want := []PoolParticipant{
		{Account: "ACC-1", Entity: "A", Balance: USD(300), Variance: USD(100), Status: Surplus},
		{Account: "ACC-2", Entity: "A", Balance: USD(100), Variance: USD(-100), Status: Deficit},
		{Account: "ACC-3", Entity: "A", Balance: USD(200), Variance: USD(0), Status: Surplus},
	}
	if len(calc.Participants) != len(want) {
		t.Fatalf("len(Participants) = %d, want %d", len(calc.Participants), len(want))
	}
	for i := range want {
		got := calc.Participants[i]
		if got.Account != want[i].Account || !got.Balance.Equal(want[i].Balance) ||
			!got.Variance.Equal(want[i].Variance) || got.Status != want[i].Status {
			t.Errorf("Participants[%d] = %+v, want %+v", i, got, want[i])
		}
	}

	// notional pools never generate transfers
	if len(calc.Transfers) != 0 {
		t.Errorf("Transfers = %v, want none for a notional pool", calc.Transfers)
	}
}

func TestSnapshot_PoolCalculation_Efficiency(t *testing.T) {
	on := D(time.June, 30)

	// equal balances carry no dispersion at all
	s := mustSnapshot(t, on, "USD", poolInputs(on, Notional, 500, 500, 500))
	calc, err := s.PoolCalculation("EMEA Pool")
	if err != nil {
		t.Fatalf("PoolCalculation() error = %v", err)
	}
	if !calc.Efficiency.Equal(100) {
		t.Errorf("Efficiency = %v, want 100 for equal balances", calc.Efficiency)
	}

	// extreme dispersion clamps to the [0, 100] range
	s = mustSnapshot(t, on, "USD", poolInputs(on, Notional, 1000000, -999999))
	calc, err = s.PoolCalculation("EMEA Pool")
	if err != nil {
		t.Fatalf("PoolCalculation() error = %v", err)
	}
	if calc.Efficiency < 0 || calc.Efficiency > 100 {
		t.Errorf("Efficiency = %v, want within [0, 100]", calc.Efficiency)
	}
}

func TestSnapshot_PoolCalculation_PhysicalTransfers(t *testing.T) {
	on := D(time.June, 30)
	s := mustSnapshot(t, on, "USD", poolInputs(on, Physical, 300, 100, 200))

	calc, err := s.PoolCalculation("EMEA Pool")
	if err != nil {
		t.Fatalf("PoolCalculation() error = %v", err)
	}
	if len(calc.Transfers) != 1 {
		t.Fatalf("len(Transfers) = %d, want 1: %v", len(calc.Transfers), calc.Transfers)
	}
	tx := calc.Transfers[0]
	if tx.From != "ACC-1" || tx.To != "ACC-2" || !tx.Amount.Equal(Q(100)) {
		t.Errorf("Transfers[0] = %+v, want ACC-1 -> ACC-2 100", tx)
	}
	if tx.Pool != "EMEA Pool" {
		t.Errorf("Transfers[0].Pool = %q, want %q", tx.Pool, "EMEA Pool")
	}

	// transfers move every participant to the average
	remaining := map[string]Money{}
	for _, p := range calc.Participants {
		remaining[p.Account] = p.Variance
	}
	for _, tx := range calc.Transfers {
		remaining[tx.From] = remaining[tx.From].Sub(tx.Value())
		remaining[tx.To] = remaining[tx.To].Add(tx.Value())
	}
	eps := USD(RoundingEpsilon)
	for account, variance := range remaining {
		if variance.Abs().GreaterThan(eps) {
			t.Errorf("account %s left %v from the average after sweeping", account, variance)
		}
	}
}

func TestSnapshot_PoolCalculation_InvalidConfiguration(t *testing.T) {
	on := D(time.June, 30)

	in := poolInputs(on, Physical, 100, 200)
	in.Pools = append(in.Pools, CashPool{
		Name: "Rogue Pool", Type: Notional, Region: "EMEA", Participants: []string{"ACC-1"},
	})
	in.Pools = append(in.Pools, CashPool{Name: "Hollow Pool", Type: Notional, Region: "EMEA"})
	s := mustSnapshot(t, on, "USD", in)

	var invalid *InvalidPoolConfigurationError
	if _, err := s.PoolCalculation("EMEA Pool"); !errors.As(err, &invalid) {
		t.Errorf("PoolCalculation(shared participant) error = %v, want InvalidPoolConfigurationError", err)
	}
	if _, err := s.PoolCalculation("Hollow Pool"); !errors.As(err, &invalid) {
		t.Errorf("PoolCalculation(no participants) error = %v, want InvalidPoolConfigurationError", err)
	}
	if _, err := s.PoolCalculation("No Such Pool"); err == nil {
		t.Error("PoolCalculation(unknown pool): expected error, got nil")
	}
}

func TestSnapshot_PoolStatuses(t *testing.T) {
	on := D(time.June, 30)
	in := poolInputs(on, Physical, 100, 200)
	in.Pools = append(in.Pools, CashPool{Name: "Hollow Pool", Type: Notional, Region: "APAC"})
	s := mustSnapshot(t, on, "USD", in)

	statuses, errs := s.PoolStatuses()
	if len(statuses) != 2 {
		t.Fatalf("len(statuses) = %d, want 2", len(statuses))
	}
	if len(errs) != 1 {
		t.Fatalf("len(errs) = %d, want 1: %v", len(errs), errs)
	}

	// pools come back sorted by name
	if statuses[0].Pool != "EMEA Pool" || statuses[0].Status != "Active" {
		t.Errorf("statuses[0] = %+v, want EMEA Pool Active", statuses[0])
	}
	if !statuses[0].TotalBalance.Equal(USD(300)) {
		t.Errorf("statuses[0].TotalBalance = %v, want %v", statuses[0].TotalBalance, USD(300))
	}
	if statuses[1].Pool != "Hollow Pool" || statuses[1].Status != "Invalid" {
		t.Errorf("statuses[1] = %+v, want Hollow Pool Invalid", statuses[1])
	}
}
