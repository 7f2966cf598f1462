package arbitrage

import (
	"fmt"
	"math"

	"github.com/jscanga/Sports-Arbitrage-Finder/internal/domain"
)

// Allocate splits capital across the two sides of an opportunity so that the
// payout is the same whichever side wins. homeStake anchors the split: the
// away stake is derived so its payout matches the home payout.
//
// Returns ErrInvalidStake for a non-positive or non-finite stake and
// ErrInvalidOdds when either price is zero.
func Allocate(opp domain.Opportunity, homeStake float64) (domain.Allocation, error) {
	if homeStake <= 0 || math.IsNaN(homeStake) || math.IsInf(homeStake, 0) {
		return domain.Allocation{}, fmt.Errorf("arbitrage: allocate: %w", domain.ErrInvalidStake)
	}
	if opp.HomePrice == 0 || opp.AwayPrice == 0 {
		return domain.Allocation{}, fmt.Errorf("arbitrage: allocate: %w", domain.ErrInvalidOdds)
	}

	homePayout := Payout(homeStake, opp.HomePrice)
	awayStake := homePayout / PayoutMultiplier(opp.AwayPrice)
	awayPayout := Payout(awayStake, opp.AwayPrice)

	total := homeStake + awayStake
	// The two payouts are equal by construction; min guards the guarantee
	// against rounding drift.
	guaranteed := math.Min(homePayout, awayPayout)
	profit := guaranteed - total

	return domain.Allocation{
		HomeStake:        homeStake,
		HomePayout:       homePayout,
		AwayStake:        awayStake,
		AwayPayout:       awayPayout,
		TotalStake:       total,
		GuaranteedPayout: guaranteed,
		GuaranteedProfit: profit,
		ROIPct:           profit / total * 100,
	}, nil
}
