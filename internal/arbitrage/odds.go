// Package arbitrage holds the pure math of the system: American-odds
// conversion, cross-bookmaker arbitrage detection, and stake allocation.
// Nothing here touches the network or a store.
package arbitrage

// ImpliedProbability converts an American odds price to the bookmaker's
// implied win probability in [0, 1).
//
// Positive prices are underdog lines: +150 pays $150 profit on a $100 stake,
// implying 100/(150+100) = 40%. Negative prices are favorite lines: -130
// requires a $130 stake for $100 profit, implying 130/(130+100) ≈ 56.5%.
// A price of 0 is not a valid American line; callers filter those out.
func ImpliedProbability(price int) float64 {
	if price > 0 {
		return 100.0 / (float64(price) + 100.0)
	}
	abs := float64(-price)
	return abs / (abs + 100.0)
}

// PayoutMultiplier returns total payout (stake plus profit) per unit staked
// at the given American price.
func PayoutMultiplier(price int) float64 {
	if price > 0 {
		return float64(price)/100.0 + 1.0
	}
	return 100.0/float64(-price) + 1.0
}

// Payout returns the total payout (stake plus profit) for a stake placed at
// the given American price.
func Payout(stake float64, price int) float64 {
	return stake * PayoutMultiplier(price)
}
