package treasury

import (
	"fmt"
	"math"
)

// ParticipantStatus marks a pool participant's side of the average.
type ParticipantStatus string

const (
	Surplus ParticipantStatus = "Surplus"
	Deficit ParticipantStatus = "Deficit"
)

// PoolParticipant is one account's contribution to a pool calculation.
type PoolParticipant struct {
	Account  string            `json:"account"`
	Entity   string            `json:"entity"`
	Balance  Money             `json:"balance"`
	Variance Money             `json:"variance_from_avg"`
	Status   ParticipantStatus `json:"status"`
}

// PoolCalculation is the full surplus/deficit breakdown of one pool.
type PoolCalculation struct {
	Pool         string            `json:"pool_name"`
	Type         PoolType          `json:"pool_type"`
	Region       string            `json:"region"`
	TotalPooled  Money             `json:"total_pooled"`
	Average      Money             `json:"average_balance"`
	Efficiency   Percent           `json:"efficiency_0_to_100"`
	Participants []PoolParticipant `json:"participants"`
	// Transfers is the zero-balancing set for Physical pools: intra-pool
	// moves between participant accounts, never inter-company settlements.
	Transfers        []NettingTransaction `json:"transfers,omitempty"`
	ExcludedBalances int                  `json:"excluded_balances"`
}

// PoolStatus is the one-line summary of a pool.
type PoolStatus struct {
	Pool         string   `json:"pool_name"`
	Type         PoolType `json:"pool_type"`
	Region       string   `json:"region"`
	TotalBalance Money    `json:"total_balance_reporting_ccy"`
	Participants int      `json:"participants"`
	Efficiency   Percent  `json:"efficiency_0_to_100"`
	Status       string   `json:"status"` // Active, Inactive or Invalid
}

// PoolCalculation computes the position of the named pool on the snapshot
// date. A pool sharing an account with another pool, or holding no
// participants, fails with InvalidPoolConfigurationError; other pools are
// unaffected.
func (s *Snapshot) PoolCalculation(name string) (*PoolCalculation, error) {
	var pool *CashPool
	for i := range s.pools {
		if s.pools[i].Name == name {
			pool = &s.pools[i]
			break
		}
	}
	if pool == nil {
		return nil, fmt.Errorf("no pool named %q", name)
	}
	if len(pool.Participants) == 0 {
		return nil, &InvalidPoolConfigurationError{Pool: name, Reason: "no participant accounts"}
	}
	if shared := s.sharedParticipant(pool); shared != "" {
		return nil, &InvalidPoolConfigurationError{
			Pool:   name,
			Reason: fmt.Sprintf("account %q participates in more than one pool", shared),
		}
	}

	calc := &PoolCalculation{
		Pool:        pool.Name,
		Type:        pool.Type,
		Region:      pool.Region,
		TotalPooled: M(0, s.cur),
		Average:     M(0, s.cur),
	}

	// Participant balances in participant-list order would depend on pool
	// authoring; iterate the date's sorted balance slice instead so the
	// output order is stable.
	member := make(map[string]struct{}, len(pool.Participants))
	for _, id := range pool.Participants {
		member[id] = struct{}{}
	}
	balances := make(map[string]Money)
	for _, b := range s.BalancesOn(s.on) {
		if _, ok := member[b.Account]; !ok {
			continue
		}
		converted, err := s.Convert(b.Local())
		if err != nil {
			calc.ExcludedBalances++
			continue
		}
		bal := balances[b.Account]
		balances[b.Account] = bal.Add(converted)
	}
	for _, a := range s.accounts {
		balance, ok := balances[a.ID]
		if !ok {
			continue
		}
		calc.Participants = append(calc.Participants, PoolParticipant{
			Account: a.ID,
			Entity:  a.Entity,
			Balance: balance,
		})
		calc.TotalPooled = calc.TotalPooled.Add(balance)
	}

	if len(calc.Participants) == 0 {
		return calc, nil
	}

	calc.Average = calc.TotalPooled.Div(Q(len(calc.Participants)))
	for i := range calc.Participants {
		variance := calc.Participants[i].Balance.Sub(calc.Average)
		calc.Participants[i].Variance = variance
		if variance.IsNegative() {
			calc.Participants[i].Status = Deficit
		} else {
			calc.Participants[i].Status = Surplus
		}
	}

	calc.Efficiency = poolEfficiency(calc.Participants)

	if pool.Type == Physical {
		calc.Transfers = s.zeroBalancingTransfers(pool.Name, calc.Participants)
	}
	return calc, nil
}

// poolEfficiency scores how well a pool concentrates liquidity:
// 100·(1 − stddev/(mean+ε)) clamped to [0,100]. Participants sitting near
// the mean leave little idle surplus next to deficits; high dispersion means
// pooling is not capturing available offsets.
func poolEfficiency(participants []PoolParticipant) Percent {
	n := float64(len(participants))
	var mean float64
	for _, p := range participants {
		mean += p.Balance.AsFloat()
	}
	mean /= n

	var variance float64
	for _, p := range participants {
		d := p.Balance.AsFloat() - mean
		variance += d * d
	}
	stddev := math.Sqrt(variance / n)

	score := Percent(100 * (1 - stddev/(mean+RoundingEpsilon)))
	return score.Clamp(0, 100)
}

// zeroBalancingTransfers produces the sweep set bringing every participant
// to the pool average, using the same matcher as inter-company netting but
// scoped to the pool's accounts.
func (s *Snapshot) zeroBalancingTransfers(pool string, participants []PoolParticipant) []NettingTransaction {
	eps := M(RoundingEpsilon, s.cur)
	var creditors, debtors []netPosition
	for _, p := range participants {
		switch {
		case p.Variance.GreaterThan(eps):
			creditors = append(creditors, netPosition{code: p.Account, amount: p.Variance})
		case p.Variance.Neg().GreaterThan(eps):
			debtors = append(debtors, netPosition{code: p.Account, amount: p.Variance.Neg()})
		}
	}
	return matchPositions(creditors, debtors, s.on, s.cur, pool)
}

// sharedParticipant returns the first account of the pool that is claimed by
// another pool, or "" when the pool is disjoint.
func (s *Snapshot) sharedParticipant(pool *CashPool) string {
	for _, id := range pool.Participants {
		for i := range s.pools {
			if s.pools[i].Name == pool.Name {
				continue
			}
			for _, other := range s.pools[i].Participants {
				if other == id {
					return id
				}
			}
		}
	}
	return ""
}

// PoolStatuses summarizes every pool of the snapshot. Invalid pools appear
// with status Invalid and zero totals; their error is returned alongside so
// the operator sees why.
func (s *Snapshot) PoolStatuses() ([]PoolStatus, []error) {
	var statuses []PoolStatus
	var errs []error
	for _, pool := range s.pools {
		calc, err := s.PoolCalculation(pool.Name)
		if err != nil {
			errs = append(errs, err)
			statuses = append(statuses, PoolStatus{
				Pool:         pool.Name,
				Type:         pool.Type,
				Region:       pool.Region,
				TotalBalance: M(0, s.cur),
				Status:       "Invalid",
			})
			continue
		}
		status := "Active"
		if len(calc.Participants) == 0 {
			status = "Inactive"
		}
		statuses = append(statuses, PoolStatus{
			Pool:         pool.Name,
			Type:         pool.Type,
			Region:       pool.Region,
			TotalBalance: calc.TotalPooled,
			Participants: len(calc.Participants),
			Efficiency:   calc.Efficiency,
			Status:       status,
		})
	}
	return statuses, errs
}
