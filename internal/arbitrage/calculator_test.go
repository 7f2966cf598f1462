package arbitrage

import (
	"errors"
	"math"
	"testing"

	"github.com/jscanga/Sports-Arbitrage-Finder/internal/domain"
)

func TestAllocate(t *testing.T) {
	// $100 on the home side at +150 pays $250. Matching that payout on the
	// away side at -130 needs 250 / (100/130 + 1) ≈ $141.30.
	opp := domain.Opportunity{HomePrice: 150, AwayPrice: -130}

	alloc, err := Allocate(opp, 100)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}

	approx(t, alloc.HomePayout, 250, 1e-9)
	approx(t, alloc.AwayStake, 141.30, 0.005)
	approx(t, alloc.AwayPayout, 250, 1e-9)
	approx(t, alloc.TotalStake, 241.30, 0.005)
	approx(t, alloc.GuaranteedPayout, 250, 1e-9)
	approx(t, alloc.GuaranteedProfit, 8.70, 0.005)
	approx(t, alloc.ROIPct, 3.605, 0.005)
}

func TestAllocatePayoutsBalance(t *testing.T) {
	tests := []struct {
		name      string
		home, away int
		stake     float64
	}{
		{"both underdogs", 150, 150, 100},
		{"mixed", 200, -110, 37.50},
		{"small stake", 105, 105, 0.01},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alloc, err := Allocate(domain.Opportunity{HomePrice: tt.home, AwayPrice: tt.away}, tt.stake)
			if err != nil {
				t.Fatalf("Allocate: %v", err)
			}
			if math.Abs(alloc.HomePayout-alloc.AwayPayout) > 1e-9 {
				t.Errorf("payouts differ: home %v, away %v", alloc.HomePayout, alloc.AwayPayout)
			}
			if alloc.GuaranteedProfit <= 0 {
				t.Errorf("arbitrage allocation lost money: %v", alloc.GuaranteedProfit)
			}
		})
	}
}

func TestAllocateRejectsBadStake(t *testing.T) {
	opp := domain.Opportunity{HomePrice: 150, AwayPrice: -130}
	for _, stake := range []float64{0, -10, math.NaN(), math.Inf(1)} {
		if _, err := Allocate(opp, stake); !errors.Is(err, domain.ErrInvalidStake) {
			t.Errorf("stake %v: got %v, want ErrInvalidStake", stake, err)
		}
	}
}

func TestAllocateRejectsZeroOdds(t *testing.T) {
	if _, err := Allocate(domain.Opportunity{HomePrice: 0, AwayPrice: -130}, 100); !errors.Is(err, domain.ErrInvalidOdds) {
		t.Errorf("got %v, want ErrInvalidOdds", err)
	}
	if _, err := Allocate(domain.Opportunity{HomePrice: 150, AwayPrice: 0}, 100); !errors.Is(err, domain.ErrInvalidOdds) {
		t.Errorf("got %v, want ErrInvalidOdds", err)
	}
}
