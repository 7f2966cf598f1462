package notify

import (
	"strings"
	"testing"

	"github.com/jscanga/Sports-Arbitrage-Finder/internal/domain"
)

func TestOpportunityAlert(t *testing.T) {
	opp := domain.Opportunity{
		SportTitle:    "NBA",
		HomeTeam:      "Lakers",
		AwayTeam:      "Celtics",
		HomePrice:     150,
		HomeBookmaker: "DraftKings",
		AwayPrice:     -130,
		AwayBookmaker: "FanDuel",
		TotalImpliedPct: 96.52,
		ProfitPct:       3.48,
	}

	title, message := OpportunityAlert(opp)
	if !strings.Contains(title, "Celtics @ Lakers") {
		t.Errorf("title %q missing matchup", title)
	}
	if !strings.Contains(title, "3.48%") {
		t.Errorf("title %q missing profit", title)
	}
	for _, want := range []string{"+150", "-130", "DraftKings", "FanDuel", "NBA"} {
		if !strings.Contains(message, want) {
			t.Errorf("message missing %q:\n%s", want, message)
		}
	}
	if strings.Contains(message, "live") {
		t.Error("pregame opportunity mentions live")
	}

	opp.Live = true
	_, message = OpportunityAlert(opp)
	if !strings.Contains(message, "live") {
		t.Error("live opportunity does not mention live")
	}
}
