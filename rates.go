package treasury

import (
	"slices"
	"strings"
)

// rateTable indexes FX rates by pair, each pair's quotes sorted by date.
type rateTable struct {
	pairs map[string][]FXRate
}

func newRateTable() rateTable {
	return rateTable{pairs: make(map[string][]FXRate)}
}

func (t rateTable) add(r FXRate) {
	t.pairs[r.Pair] = append(t.pairs[r.Pair], r)
}

func (t rateTable) sort() {
	for _, quotes := range t.pairs {
		slices.SortFunc(quotes, func(a, b FXRate) int {
			if c := strings.Compare(a.Date.String(), b.Date.String()); c != 0 {
				return c
			}
			// same-day requotes: last one in input order wins, keep stable
			return 0
		})
	}
}

// lookup returns the latest rate for the pair with rate_date ≤ on.
// A future-dated rate is never applied (lookahead bias).
func (t rateTable) lookup(pair string, on Date) (Quantity, bool) {
	quotes := t.pairs[pair]
	for i := len(quotes) - 1; i >= 0; i-- {
		if !quotes[i].Date.After(on) {
			return quotes[i].Rate, true
		}
	}
	return Quantity{}, false
}

// Rate returns the conversion rate from one currency to another as of 'on':
// units of 'to' per one unit of 'from'. The direct pair is looked up first,
// then the inverse pair (rate = 1/inverse). No implicit cross rate through a
// third currency: that would silently distort aggregates.
func (s *Snapshot) Rate(from, to string, on Date) (Quantity, error) {
	if from == to {
		// identity conversion needs no table at all
		return Q(1), nil
	}
	if rate, ok := s.rates.lookup(from+"/"+to, on); ok {
		return rate, nil
	}
	if inverse, ok := s.rates.lookup(to+"/"+from, on); ok {
		return inverse.Inv(), nil
	}
	return Quantity{}, &MissingRateError{From: from, To: to, On: on}
}

// ConvertTo converts a monetary amount into the target currency using the
// latest rate on or before 'on'.
func (s *Snapshot) ConvertTo(m Money, to string, on Date) (Money, error) {
	if m.Currency() == to {
		return m, nil
	}
	rate, err := s.Rate(m.Currency(), to, on)
	if err != nil {
		return Money{}, err
	}
	return M(m.value.Mul(rate.value), to), nil
}

// Convert converts a monetary amount into the reporting currency as of the
// snapshot date.
func (s *Snapshot) Convert(m Money) (Money, error) {
	return s.ConvertTo(m, s.cur, s.on)
}
