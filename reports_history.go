package treasury

import "slices"

// TrendPoint is the global liquidity of one day in a history range.
type TrendPoint struct {
	Date             Date             `json:"date"`
	TotalLiquidity   Money            `json:"total_liquidity_reporting_ccy"`
	ByRegion         map[string]Money `json:"by_region"`
	ExcludedBalances int              `json:"excluded_balances"`
}

// History rolls the snapshot's balances up day by day over [from, to]. Only
// days that actually carry balances produce a point; each day is valued with
// the rates available on that day, never with later ones.
func (s *Snapshot) History(from, to Date) []TrendPoint {
	if to.After(s.on) {
		to = s.on
	}

	var days []Date
	seen := make(map[Date]struct{})
	for _, b := range s.balances {
		if b.Date.Before(from) || b.Date.After(to) {
			continue
		}
		if _, ok := seen[b.Date]; !ok {
			seen[b.Date] = struct{}{}
			days = append(days, b.Date)
		}
	}
	slices.SortFunc(days, func(a, b Date) int {
		switch {
		case a.Before(b):
			return -1
		case a.After(b):
			return 1
		}
		return 0
	})

	points := make([]TrendPoint, 0, len(days))
	for _, day := range days {
		point := TrendPoint{
			Date:           day,
			TotalLiquidity: M(0, s.cur),
			ByRegion:       make(map[string]Money),
		}
		for _, b := range s.BalancesOn(day) {
			a, _ := s.Account(b.Account)
			converted, err := s.ConvertTo(b.Local(), s.cur, day)
			if err != nil {
				point.ExcludedBalances++
				continue
			}
			point.TotalLiquidity = point.TotalLiquidity.Add(converted)
			region := s.region(a)
			r := point.ByRegion[region]
			point.ByRegion[region] = r.Add(converted)
		}
		points = append(points, point)
	}
	return points
}

// AnalyticsSummary is the at-a-glance overview of the whole snapshot.
type AnalyticsSummary struct {
	AsOf              Date             `json:"as_of_date"`
	ReportingCurrency string           `json:"reporting_currency"`
	TotalLiquidity    Money            `json:"total_liquidity_reporting_ccy"`
	TotalAccounts     int              `json:"total_accounts"`
	TotalPools        int              `json:"total_cash_pools"`
	PendingTransfers  int              `json:"active_netting_transactions"`
	DataQualityIssues int              `json:"data_quality_issues"`
	RegionalBreakdown map[string]Money `json:"regional_breakdown"`
	TopEntities       []EntityBalance  `json:"top_entities"`
}

// AnalyticsSummary combines the liquidity, netting and validation products
// into a single overview.
func (s *Snapshot) AnalyticsSummary() *AnalyticsSummary {
	global := s.GlobalPosition()
	netting := s.Netting(NettingOptions{})
	validation := s.Validate()

	entities, _ := s.EntityNetPositions()
	return &AnalyticsSummary{
		AsOf:              s.on,
		ReportingCurrency: s.cur,
		TotalLiquidity:    global.TotalLiquidity,
		TotalAccounts:     global.TotalAccounts,
		TotalPools:        len(s.pools),
		PendingTransfers:  netting.ByStatus[StatusPending],
		DataQualityIssues: validation.TotalIssues,
		RegionalBreakdown: global.ByRegion,
		TopEntities:       rankEntities(entities, DefaultTopEntities),
	}
}
