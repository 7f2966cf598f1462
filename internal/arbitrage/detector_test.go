package arbitrage

import (
	"testing"
	"time"

	"github.com/jscanga/Sports-Arbitrage-Finder/internal/domain"
)

func h2hMarket(outcomes ...domain.Outcome) domain.Market {
	return domain.Market{Key: domain.MarketH2H, Outcomes: outcomes}
}

func testGame(bookmakers ...domain.BookmakerQuote) domain.Game {
	return domain.Game{
		ID:           "game-1",
		SportKey:     "basketball_nba",
		SportTitle:   "NBA",
		CommenceTime: time.Date(2026, 3, 1, 19, 0, 0, 0, time.UTC),
		HomeTeam:     "Lakers",
		AwayTeam:     "Celtics",
		Bookmakers:   bookmakers,
	}
}

func TestDetectFindsArbitrage(t *testing.T) {
	// Two books each favor the opposite side: +150 on both sides implies
	// 40% + 40% = 80%, a 20% margin.
	game := testGame(
		domain.BookmakerQuote{
			Key: "draftkings", Title: "DraftKings",
			Markets: []domain.Market{h2hMarket(
				domain.Outcome{Name: "Lakers", Price: 150},
				domain.Outcome{Name: "Celtics", Price: -200},
			)},
		},
		domain.BookmakerQuote{
			Key: "fanduel", Title: "FanDuel",
			Markets: []domain.Market{h2hMarket(
				domain.Outcome{Name: "Lakers", Price: -200},
				domain.Outcome{Name: "Celtics", Price: 150},
			)},
		},
	)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	opps := NewDetector().Detect([]domain.Game{game}, now)
	if len(opps) != 1 {
		t.Fatalf("got %d opportunities, want 1", len(opps))
	}

	opp := opps[0]
	if opp.HomeBookmaker != "DraftKings" || opp.AwayBookmaker != "FanDuel" {
		t.Errorf("best books = %s/%s, want DraftKings/FanDuel", opp.HomeBookmaker, opp.AwayBookmaker)
	}
	if opp.HomePrice != 150 || opp.AwayPrice != 150 {
		t.Errorf("best prices = %d/%d, want 150/150", opp.HomePrice, opp.AwayPrice)
	}
	approx(t, opp.TotalImpliedPct, 80.0, 1e-6)
	approx(t, opp.ProfitPct, 20.0, 1e-6)
	if opp.Live {
		t.Error("game commencing after now reported as live")
	}
	if opp.ID == "" {
		t.Error("opportunity ID not set")
	}
	if !opp.DetectedAt.Equal(now) {
		t.Errorf("DetectedAt = %v, want %v", opp.DetectedAt, now)
	}
}

func TestDetectNoArbitrageOnVig(t *testing.T) {
	// A standard -110/-110 line is the bookmaker's margin, not an arbitrage:
	// combined implied probability is about 104.8%.
	game := testGame(
		domain.BookmakerQuote{
			Key: "draftkings", Title: "DraftKings",
			Markets: []domain.Market{h2hMarket(
				domain.Outcome{Name: "Lakers", Price: -110},
				domain.Outcome{Name: "Celtics", Price: -110},
			)},
		},
	)

	if opps := NewDetector().Detect([]domain.Game{game}, time.Now()); len(opps) != 0 {
		t.Fatalf("got %d opportunities, want 0", len(opps))
	}
}

func TestDetectBreakEvenIsNotArbitrage(t *testing.T) {
	// +100/+100 sums to exactly 100% implied. Zero-profit pairs are excluded.
	game := testGame(
		domain.BookmakerQuote{
			Key: "draftkings", Title: "DraftKings",
			Markets: []domain.Market{h2hMarket(
				domain.Outcome{Name: "Lakers", Price: 100},
				domain.Outcome{Name: "Celtics", Price: 100},
			)},
		},
	)

	if opps := NewDetector().Detect([]domain.Game{game}, time.Now()); len(opps) != 0 {
		t.Fatalf("got %d opportunities, want 0", len(opps))
	}
}

func TestDetectSkipsThreeOutcomeMarkets(t *testing.T) {
	game := domain.Game{
		ID: "game-2", SportKey: "soccer_epl", SportTitle: "EPL",
		HomeTeam: "Arsenal", AwayTeam: "Chelsea",
		Bookmakers: []domain.BookmakerQuote{{
			Key: "draftkings", Title: "DraftKings",
			Markets: []domain.Market{h2hMarket(
				domain.Outcome{Name: "Arsenal", Price: 150},
				domain.Outcome{Name: "Chelsea", Price: 150},
				domain.Outcome{Name: "Draw", Price: 400},
			)},
		}},
	}

	if opps := NewDetector().Detect([]domain.Game{game}, time.Now()); len(opps) != 0 {
		t.Fatalf("three-outcome market produced %d opportunities, want 0", len(opps))
	}
}

func TestDetectSkipsZeroPrices(t *testing.T) {
	game := testGame(
		domain.BookmakerQuote{
			Key: "draftkings", Title: "DraftKings",
			Markets: []domain.Market{h2hMarket(
				domain.Outcome{Name: "Lakers", Price: 0},
				domain.Outcome{Name: "Celtics", Price: 150},
			)},
		},
	)

	if opps := NewDetector().Detect([]domain.Game{game}, time.Now()); len(opps) != 0 {
		t.Fatalf("zero-price outcome produced %d opportunities, want 0", len(opps))
	}
}

func TestDetectMarksLiveGames(t *testing.T) {
	game := testGame(
		domain.BookmakerQuote{
			Key: "draftkings", Title: "DraftKings",
			Markets: []domain.Market{h2hMarket(
				domain.Outcome{Name: "Lakers", Price: 150},
				domain.Outcome{Name: "Celtics", Price: 150},
			)},
		},
	)

	now := game.CommenceTime.Add(30 * time.Minute)
	opps := NewDetector().Detect([]domain.Game{game}, now)
	if len(opps) != 1 {
		t.Fatalf("got %d opportunities, want 1", len(opps))
	}
	if !opps[0].Live {
		t.Error("started game not marked live")
	}
}

func TestDetectIdempotent(t *testing.T) {
	game := testGame(
		domain.BookmakerQuote{
			Key: "draftkings", Title: "DraftKings",
			Markets: []domain.Market{h2hMarket(
				domain.Outcome{Name: "Lakers", Price: 150},
				domain.Outcome{Name: "Celtics", Price: 150},
			)},
		},
	)

	now := time.Now()
	d := NewDetector()
	a := d.Detect([]domain.Game{game}, now)
	b := d.Detect([]domain.Game{game}, now)
	if len(a) != 1 || len(b) != 1 {
		t.Fatalf("got %d and %d opportunities, want 1 each", len(a), len(b))
	}
	// Everything but the generated ID must match across runs.
	a[0].ID, b[0].ID = "", ""
	if a[0] != b[0] {
		t.Errorf("repeated detection diverged:\n%+v\n%+v", a[0], b[0])
	}
}
