package notify

import (
	"fmt"
	"strings"

	"github.com/jscanga/Sports-Arbitrage-Finder/internal/domain"
)

// Event types emitted by the scanner.
const (
	EventOpportunityFound = "opportunity_found"
	EventScanFailed       = "scan_failed"
)

// OpportunityAlert formats a detected opportunity as a notification
// title/message pair.
func OpportunityAlert(opp domain.Opportunity) (title, message string) {
	title = fmt.Sprintf("Arbitrage: %s @ %s (%.2f%%)", opp.AwayTeam, opp.HomeTeam, opp.ProfitPct)

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", opp.SportTitle)
	fmt.Fprintf(&b, "%s: %+d (%s)\n", opp.HomeTeam, opp.HomePrice, opp.HomeBookmaker)
	fmt.Fprintf(&b, "%s: %+d (%s)\n", opp.AwayTeam, opp.AwayPrice, opp.AwayBookmaker)
	fmt.Fprintf(&b, "Combined implied: %.2f%%, profit %.2f%%", opp.TotalImpliedPct, opp.ProfitPct)
	if opp.Live {
		b.WriteString("\nGame is live")
	}
	return title, b.String()
}

// ScanFailedAlert formats a failed scan as a notification title/message pair.
func ScanFailedAlert(err error) (title, message string) {
	return "Scan failed", err.Error()
}
