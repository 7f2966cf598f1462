package domain

import "time"

// Opportunity is a detected cross-bookmaker arbitrage on one game's
// head-to-head market. Opportunities are immutable once created and the whole
// result set is replaced on every scan.
type Opportunity struct {
	ID           string    `json:"id"`
	GameID       string    `json:"game_id"`
	SportKey     string    `json:"sport_key"`
	SportTitle   string    `json:"sport_title"`
	CommenceTime time.Time `json:"commence_time"`
	Live         bool      `json:"live"`

	HomeTeam      string `json:"home_team"`
	AwayTeam      string `json:"away_team"`
	HomePrice     int    `json:"home_price"`
	HomeBookmaker string `json:"home_bookmaker"`
	AwayPrice     int    `json:"away_price"`
	AwayBookmaker string `json:"away_bookmaker"`

	// Implied probabilities expressed as percentages of 100.
	HomeImpliedPct  float64 `json:"home_implied_pct"`
	AwayImpliedPct  float64 `json:"away_implied_pct"`
	TotalImpliedPct float64 `json:"total_implied_pct"`
	ProfitPct       float64 `json:"profit_pct"`

	DetectedAt time.Time `json:"detected_at"`
}

// SortKey orders a displayed opportunity list. Sorting never re-runs
// detection; it permutes the already-computed list.
type SortKey string

const (
	SortByProfit SortKey = "profit" // profit percent descending (default)
	SortBySport  SortKey = "sport"  // sport title ascending
	SortByTime   SortKey = "time"   // commence time ascending
)

// Allocation is the risk-free stake split for one opportunity and a chosen
// home-side stake. It is a pure function of (opportunity, stake); prices are
// the frozen snapshot captured at detection time.
type Allocation struct {
	HomeStake        float64 `json:"home_stake"`
	HomePayout       float64 `json:"home_payout"`
	AwayStake        float64 `json:"away_stake"`
	AwayPayout       float64 `json:"away_payout"`
	TotalStake       float64 `json:"total_stake"`
	GuaranteedPayout float64 `json:"guaranteed_payout"`
	GuaranteedProfit float64 `json:"guaranteed_profit"`
	ROIPct           float64 `json:"roi_pct"`
}
