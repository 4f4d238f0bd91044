package treasury

import (
	"slices"
	"strings"
)

// TransactionStatus is the settlement state of a generated transaction.
// Every transaction starts Pending; the engine never settles its own output,
// that requires an explicit external settlement confirmation.
type TransactionStatus string

const (
	StatusPending TransactionStatus = "Pending"
	StatusSettled TransactionStatus = "Settled"
	StatusFailed  TransactionStatus = "Failed"
)

// RoundingEpsilon is the tolerance, in settlement-currency units, under
// which a net position counts as zero. It keeps micro-transaction noise out
// of the settlement set.
const RoundingEpsilon = 0.01

// NettingTransaction is one bilateral settlement: the surplus party funds
// the deficit party. Pool is set when the transfer is an intra-pool
// zero-balancing move rather than an inter-company settlement; From and To
// are then account ids instead of entity codes.
type NettingTransaction struct {
	From     string            `json:"from_entity"`
	To       string            `json:"to_entity"`
	Amount   Quantity          `json:"amount"`
	Currency string            `json:"currency"`
	Date     Date              `json:"date"`
	Status   TransactionStatus `json:"status"`
	Pool     string            `json:"pool,omitempty"`
}

// Value returns the transaction amount as Money.
func (t NettingTransaction) Value() Money { return M(t.Amount.value, t.Currency) }

// NettingResult is the settlement set of one netting run.
type NettingResult struct {
	AsOf              Date                      `json:"as_of_date"`
	Currency          string                    `json:"currency"`
	TotalTransactions int                       `json:"total_transactions"`
	TotalNetted       Quantity                  `json:"total_netted_amount"`
	ByStatus          map[TransactionStatus]int `json:"by_status"`
	Transactions      []NettingTransaction      `json:"transactions"`
	ExcludedBalances  int                       `json:"excluded_balances"`
}

// NettingOptions tunes a netting run.
type NettingOptions struct {
	// Currency is the single settlement currency of the run. Empty selects
	// the reporting currency.
	Currency string
	// ExcludePooled drops accounts that participate in a cash pool from the
	// entity net positions: their offsets are already captured intra-pool.
	ExcludePooled bool
}

// Netting computes the minimal bilateral settlement set that zeroes every
// entity's net position. Entities within RoundingEpsilon of zero generate no
// transaction. The run is deterministic: an unchanged snapshot reproduces
// the identical ordered transaction list.
func (s *Snapshot) Netting(opts NettingOptions) *NettingResult {
	currency := opts.Currency
	if currency == "" {
		currency = s.cur
	}

	pooled := make(map[string]struct{})
	if opts.ExcludePooled {
		for _, p := range s.pools {
			for _, id := range p.Participants {
				pooled[id] = struct{}{}
			}
		}
	}

	result := &NettingResult{
		AsOf:     s.on,
		Currency: currency,
		ByStatus: make(map[TransactionStatus]int),
	}

	positions := make(map[string]Money)
	for _, b := range s.BalancesOn(s.on) {
		if _, skip := pooled[b.Account]; skip {
			continue
		}
		a, _ := s.Account(b.Account)
		converted, err := s.ConvertTo(b.Local(), currency, s.on)
		if err != nil {
			result.ExcludedBalances++
			continue
		}
		p := positions[a.Entity]
		positions[a.Entity] = p.Add(converted)
	}

	var creditors, debtors []netPosition
	eps := M(RoundingEpsilon, currency)
	for entity, net := range positions {
		switch {
		case net.GreaterThan(eps):
			creditors = append(creditors, netPosition{code: entity, amount: net})
		case net.Neg().GreaterThan(eps):
			debtors = append(debtors, netPosition{code: entity, amount: net.Neg()})
		}
	}

	result.Transactions = matchPositions(creditors, debtors, s.on, currency, "")
	result.TotalTransactions = len(result.Transactions)
	total := M(0, currency)
	for _, t := range result.Transactions {
		result.ByStatus[t.Status]++
		total = total.Add(t.Value())
	}
	result.TotalNetted = total.Quantity()
	return result
}

// netPosition is one party of the matching loop; amount is always positive.
type netPosition struct {
	code   string
	amount Money
}

// matchPositions runs the greedy largest-against-largest matcher: both
// groups sorted descending by magnitude (ties by code ascending), the
// largest creditor repeatedly matched against the largest debtor for
// min(remainders), advancing whichever side drops within RoundingEpsilon of
// zero. The loop threads remainders through each step and must stay
// sequential or determinism breaks. It emits at most
// len(creditors)+len(debtors)-1 transactions: a heuristic bound, not a
// guaranteed minimum.
func matchPositions(creditors, debtors []netPosition, on Date, currency, pool string) []NettingTransaction {
	byMagnitude := func(a, b netPosition) int {
		if c := b.amount.value.Cmp(a.amount.value); c != 0 {
			return c
		}
		return strings.Compare(a.code, b.code)
	}
	slices.SortFunc(creditors, byMagnitude)
	slices.SortFunc(debtors, byMagnitude)

	eps := M(RoundingEpsilon, currency)
	var transactions []NettingTransaction
	i, j := 0, 0
	for i < len(creditors) && j < len(debtors) {
		amount := creditors[i].amount
		if debtors[j].amount.LessThan(amount) {
			amount = debtors[j].amount
		}

		transactions = append(transactions, NettingTransaction{
			From:     creditors[i].code,
			To:       debtors[j].code,
			Amount:   amount.Quantity(),
			Currency: currency,
			Date:     on,
			Status:   StatusPending,
			Pool:     pool,
		})

		creditors[i].amount = creditors[i].amount.Sub(amount)
		debtors[j].amount = debtors[j].amount.Sub(amount)
		if creditors[i].amount.LessThanOrEqual(eps) {
			i++
		}
		if debtors[j].amount.LessThanOrEqual(eps) {
			j++
		}
	}
	return transactions
}
