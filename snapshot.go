package treasury

import (
	"fmt"
	"slices"
	"strings"
)

// Inputs bundles the raw record collections a snapshot is built from.
// They come from the persistence/import layer as read-only slices.
type Inputs struct {
	Accounts []BankAccount `json:"accounts"`
	Balances []CashBalance `json:"balances"`
	Rates    []FXRate      `json:"fx_rates"`
	Entities []LegalEntity `json:"entities"`
	Pools    []CashPool    `json:"pools"`
}

// Snapshot is the full set of input records as of a single as-of date,
// treated as immutable for one computation. It is a stateless calculator:
// every report is computed on the fly from the snapshot, so re-running on
// unchanged input reproduces identical results.
//
// Record validation happens here, at the construction boundary, not deep
// inside each algorithm: malformed records are excluded and counted, and
// all collections are sorted so that accumulation order is stable across
// runs.
type Snapshot struct {
	on  Date
	cur string // reporting currency

	accounts []BankAccount // sorted by ID
	accIndex map[string]int
	balances []CashBalance // dates ≤ on, sorted by (account, date)
	rates    rateTable
	entities map[string]LegalEntity
	pools    []CashPool // sorted by name

	malformed []MalformedRecordError
}

// NewSnapshot validates and indexes the input records for the given as-of
// date. Per-record malformation never fails the construction; the offending
// records are excluded and reported by Malformed. Only an invalid reporting
// currency is a hard error.
func NewSnapshot(on Date, reportingCurrency string, in Inputs) (*Snapshot, error) {
	if err := ValidateCurrency(reportingCurrency); err != nil {
		return nil, fmt.Errorf("invalid reporting currency: %w", err)
	}
	s := &Snapshot{
		on:       on,
		cur:      reportingCurrency,
		accIndex: make(map[string]int),
		entities: make(map[string]LegalEntity),
	}

	for _, e := range in.Entities {
		if e.Code == "" {
			s.reject("entity", e.Name, "empty entity code")
			continue
		}
		s.entities[e.Code] = e
	}

	for _, a := range in.Accounts {
		switch {
		case a.ID == "":
			s.reject("account", a.Entity, "empty account id")
		case ValidateCurrency(a.Currency) != nil:
			s.reject("account", a.ID, fmt.Sprintf("invalid currency %q", a.Currency))
		default:
			s.accounts = append(s.accounts, a)
		}
	}
	slices.SortFunc(s.accounts, func(a, b BankAccount) int { return strings.Compare(a.ID, b.ID) })
	for i, a := range s.accounts {
		s.accIndex[a.ID] = i
	}

	for _, b := range in.Balances {
		switch {
		case b.Account == "":
			s.reject("balance", b.Date.String(), "empty account reference")
		case ValidateCurrency(b.Currency) != nil:
			s.reject("balance", b.Account, fmt.Sprintf("invalid currency %q", b.Currency))
		default:
			if _, ok := s.accIndex[b.Account]; !ok {
				s.reject("balance", b.Account, "unknown account reference")
				continue
			}
			if b.Date.After(on) {
				// not malformed, just not part of this snapshot
				continue
			}
			s.balances = append(s.balances, b)
		}
	}
	slices.SortFunc(s.balances, func(a, b CashBalance) int {
		if c := strings.Compare(a.Account, b.Account); c != 0 {
			return c
		}
		return strings.Compare(a.Date.String(), b.Date.String())
	})

	s.rates = newRateTable()
	for _, r := range in.Rates {
		base, quote, ok := splitPair(r.Pair)
		switch {
		case !ok:
			s.reject("fx_rate", r.Pair, "malformed currency pair")
		case ValidateCurrency(base) != nil || ValidateCurrency(quote) != nil:
			s.reject("fx_rate", r.Pair, "invalid currency in pair")
		case !r.Rate.IsPositive():
			s.reject("fx_rate", r.Pair, "non-positive rate")
		default:
			s.rates.add(r)
		}
	}
	s.rates.sort()

	s.pools = slices.Clone(in.Pools)
	slices.SortFunc(s.pools, func(a, b CashPool) int { return strings.Compare(a.Name, b.Name) })

	return s, nil
}

func (s *Snapshot) reject(kind, ref, reason string) {
	s.malformed = append(s.malformed, MalformedRecordError{Kind: kind, Ref: ref, Reason: reason})
}

// On returns the as-of date of the snapshot.
func (s *Snapshot) On() Date { return s.on }

// ReportingCurrency returns the currency all aggregates are normalized to.
func (s *Snapshot) ReportingCurrency() string { return s.cur }

// IsEmpty reports whether the snapshot holds no accounts and no balances.
func (s *Snapshot) IsEmpty() bool { return len(s.accounts) == 0 && len(s.balances) == 0 }

// Accounts returns the accounts sorted by id.
func (s *Snapshot) Accounts() []BankAccount { return slices.Clone(s.accounts) }

// Account looks up an account by id.
func (s *Snapshot) Account(id string) (BankAccount, bool) {
	i, ok := s.accIndex[id]
	if !ok {
		return BankAccount{}, false
	}
	return s.accounts[i], true
}

// Entity looks up a legal entity by code.
func (s *Snapshot) Entity(code string) (LegalEntity, bool) {
	e, ok := s.entities[code]
	return e, ok
}

// Pools returns the cash pools sorted by name.
func (s *Snapshot) Pools() []CashPool { return slices.Clone(s.pools) }

// Malformed returns the records excluded at construction.
func (s *Snapshot) Malformed() []MalformedRecordError { return slices.Clone(s.malformed) }

// BalancesOn returns the balances dated exactly 'on', in (account, date) order.
func (s *Snapshot) BalancesOn(on Date) []CashBalance {
	var out []CashBalance
	for _, b := range s.balances {
		if b.Date == on {
			out = append(out, b)
		}
	}
	return out
}

// region resolves the region of an account: the owning entity's region when
// the entity is known, else the account's own region field.
func (s *Snapshot) region(a BankAccount) string {
	if e, ok := s.entities[a.Entity]; ok && e.Region != "" {
		return e.Region
	}
	return a.Region
}
