package arbitrage

import (
	"sort"

	"github.com/jscanga/Sports-Arbitrage-Finder/internal/domain"
)

// Sort orders opportunities in place by the given key. Profit sorts highest
// first; sport sorts by title, then profit; time sorts soonest commencing
// first. An unknown key falls back to profit.
func Sort(opps []domain.Opportunity, key domain.SortKey) {
	var less func(a, b domain.Opportunity) bool
	switch key {
	case domain.SortBySport:
		less = func(a, b domain.Opportunity) bool {
			if a.SportTitle != b.SportTitle {
				return a.SportTitle < b.SportTitle
			}
			return a.ProfitPct > b.ProfitPct
		}
	case domain.SortByTime:
		less = func(a, b domain.Opportunity) bool {
			if !a.CommenceTime.Equal(b.CommenceTime) {
				return a.CommenceTime.Before(b.CommenceTime)
			}
			return a.ProfitPct > b.ProfitPct
		}
	default:
		less = func(a, b domain.Opportunity) bool {
			if a.ProfitPct != b.ProfitPct {
				return a.ProfitPct > b.ProfitPct
			}
			return a.SportTitle < b.SportTitle
		}
	}
	sort.SliceStable(opps, func(i, j int) bool { return less(opps[i], opps[j]) })
}
