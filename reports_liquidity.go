package treasury

import (
	"slices"
	"strings"
)

// DefaultTopEntities is the size of the ranked entity view in regional
// rollups when the caller does not choose one.
const DefaultTopEntities = 5

// GlobalPosition is the normalized liquidity position across the whole
// organization on the snapshot date.
type GlobalPosition struct {
	AsOf              Date             `json:"as_of_date"`
	ReportingCurrency string           `json:"reporting_currency"`
	TotalLiquidity    Money            `json:"total_liquidity_reporting_ccy"`
	ByRegion          map[string]Money `json:"by_region"`
	ByCurrency        map[string]Money `json:"by_currency"` // local amounts, unconverted
	TotalAccounts     int              `json:"total_accounts"`
	ExcludedBalances  int              `json:"excluded_balances"`
}

// GlobalPosition aggregates all balances on the snapshot date. A balance
// whose currency has no rate path to the reporting currency degrades to the
// excluded count instead of aborting the aggregation: partial results are
// always returned.
func (s *Snapshot) GlobalPosition() *GlobalPosition {
	g := &GlobalPosition{
		AsOf:              s.on,
		ReportingCurrency: s.cur,
		TotalLiquidity:    M(0, s.cur),
		ByRegion:          make(map[string]Money),
		ByCurrency:        make(map[string]Money),
	}

	seen := make(map[string]struct{})
	for _, b := range s.BalancesOn(s.on) {
		a, _ := s.Account(b.Account)
		if _, ok := seen[b.Account]; !ok {
			seen[b.Account] = struct{}{}
			g.TotalAccounts++
		}

		// local currency distribution is reported unconverted
		local := g.ByCurrency[b.Currency]
		g.ByCurrency[b.Currency] = local.Add(b.Local())

		converted, err := s.Convert(b.Local())
		if err != nil {
			g.ExcludedBalances++
			continue
		}
		g.TotalLiquidity = g.TotalLiquidity.Add(converted)
		region := s.region(a)
		r := g.ByRegion[region]
		g.ByRegion[region] = r.Add(converted)
	}
	return g
}

// EntityBalance is one entry of the ranked top-entities view.
type EntityBalance struct {
	Entity  string `json:"entity_code"`
	Balance Money  `json:"balance"`
}

// RegionalPosition is the liquidity rollup of a single region.
type RegionalPosition struct {
	Region            string           `json:"region"`
	ReportingCurrency string           `json:"reporting_currency"`
	Total             Money            `json:"total_reporting_ccy"`
	AccountCount      int              `json:"account_count"`
	Entities          map[string]Money `json:"entities"`
	ByCurrency        map[string]Money `json:"currencies"`
	TopEntities       []EntityBalance  `json:"top_entities"`
	ExcludedBalances  int              `json:"excluded_balances"`
}

// RegionalPosition aggregates the balances of one region on the snapshot
// date. topN bounds the ranked entity view; zero or negative selects
// DefaultTopEntities. Ties rank by entity code ascending so repeated runs
// are identical.
func (s *Snapshot) RegionalPosition(region string, topN int) *RegionalPosition {
	if topN <= 0 {
		topN = DefaultTopEntities
	}
	r := &RegionalPosition{
		Region:            region,
		ReportingCurrency: s.cur,
		Total:             M(0, s.cur),
		Entities:          make(map[string]Money),
		ByCurrency:        make(map[string]Money),
	}

	seen := make(map[string]struct{})
	for _, b := range s.BalancesOn(s.on) {
		a, _ := s.Account(b.Account)
		if s.region(a) != region {
			continue
		}
		if _, ok := seen[b.Account]; !ok {
			seen[b.Account] = struct{}{}
			r.AccountCount++
		}

		local := r.ByCurrency[b.Currency]
		r.ByCurrency[b.Currency] = local.Add(b.Local())

		converted, err := s.Convert(b.Local())
		if err != nil {
			r.ExcludedBalances++
			continue
		}
		r.Total = r.Total.Add(converted)
		e := r.Entities[a.Entity]
		r.Entities[a.Entity] = e.Add(converted)
	}

	r.TopEntities = rankEntities(r.Entities, topN)
	return r
}

// rankEntities returns the top-n entities by balance, descending, ties
// broken by entity code ascending.
func rankEntities(balances map[string]Money, n int) []EntityBalance {
	ranked := make([]EntityBalance, 0, len(balances))
	for code, balance := range balances {
		ranked = append(ranked, EntityBalance{Entity: code, Balance: balance})
	}
	slices.SortFunc(ranked, func(a, b EntityBalance) int {
		if c := b.Balance.value.Cmp(a.Balance.value); c != 0 {
			return c
		}
		return strings.Compare(a.Entity, b.Entity)
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// EntityNetPositions sums every entity's converted balances on the snapshot
// date, signed. Balances without a rate path are excluded and counted.
func (s *Snapshot) EntityNetPositions() (positions map[string]Money, excluded int) {
	positions = make(map[string]Money)
	for _, b := range s.BalancesOn(s.on) {
		a, _ := s.Account(b.Account)
		converted, err := s.Convert(b.Local())
		if err != nil {
			excluded++
			continue
		}
		p := positions[a.Entity]
		positions[a.Entity] = p.Add(converted)
	}
	return positions, excluded
}
