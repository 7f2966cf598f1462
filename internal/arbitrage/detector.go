package arbitrage

import (
	"time"

	"github.com/google/uuid"

	"github.com/jscanga/Sports-Arbitrage-Finder/internal/domain"
)

// epsilon guards the arbitrage threshold against float rounding. A book pair
// whose combined implied probability lands within epsilon of 1.0 is treated
// as break-even, not an opportunity.
const epsilon = 1e-6

// Detector finds cross-bookmaker arbitrage on two-outcome head-to-head
// markets. It is stateless; Detect is a pure function of its inputs apart
// from the generated opportunity IDs.
type Detector struct{}

// NewDetector creates a Detector.
func NewDetector() *Detector {
	return &Detector{}
}

// sideQuote is the best price seen for one side of a game.
type sideQuote struct {
	price     int
	bookmaker string
	found     bool
}

// better reports whether the candidate price beats the current best. A lower
// implied probability means a larger payout for the same stake.
func (s sideQuote) better(price int) bool {
	return !s.found || ImpliedProbability(price) < ImpliedProbability(s.price)
}

// Detect scans every game for a bookmaker pair whose combined implied
// probability on the head-to-head market is below 1. Games without a usable
// two-outcome h2h market on at least one bookmaker are skipped. now stamps
// DetectedAt and decides the live flag.
func (d *Detector) Detect(games []domain.Game, now time.Time) []domain.Opportunity {
	var opps []domain.Opportunity
	for i := range games {
		if opp, ok := d.detectGame(games[i], now); ok {
			opps = append(opps, opp)
		}
	}
	return opps
}

func (d *Detector) detectGame(game domain.Game, now time.Time) (domain.Opportunity, bool) {
	var home, away sideQuote

	for _, book := range game.Bookmakers {
		market, ok := book.Market(domain.MarketH2H)
		if !ok {
			continue
		}
		// Three-way markets (soccer with a draw outcome) have no two-sided
		// hedge, so anything that is not exactly two outcomes is skipped.
		if len(market.Outcomes) != 2 {
			continue
		}
		for _, outcome := range market.Outcomes {
			if outcome.Price == 0 {
				continue
			}
			switch outcome.Name {
			case game.HomeTeam:
				if home.better(outcome.Price) {
					home = sideQuote{price: outcome.Price, bookmaker: book.Title, found: true}
				}
			case game.AwayTeam:
				if away.better(outcome.Price) {
					away = sideQuote{price: outcome.Price, bookmaker: book.Title, found: true}
				}
			}
		}
	}

	if !home.found || !away.found {
		return domain.Opportunity{}, false
	}

	homeImplied := ImpliedProbability(home.price)
	awayImplied := ImpliedProbability(away.price)
	total := homeImplied + awayImplied
	if total >= 1.0-epsilon {
		return domain.Opportunity{}, false
	}

	return domain.Opportunity{
		ID:              uuid.NewString(),
		GameID:          game.ID,
		SportKey:        game.SportKey,
		SportTitle:      game.SportTitle,
		CommenceTime:    game.CommenceTime,
		Live:            game.Live(now),
		HomeTeam:        game.HomeTeam,
		AwayTeam:        game.AwayTeam,
		HomePrice:       home.price,
		HomeBookmaker:   home.bookmaker,
		AwayPrice:       away.price,
		AwayBookmaker:   away.bookmaker,
		HomeImpliedPct:  homeImplied * 100,
		AwayImpliedPct:  awayImplied * 100,
		TotalImpliedPct: total * 100,
		ProfitPct:       (1.0 - total) * 100,
		DetectedAt:      now,
	}, true
}
