package domain

import "strings"

// Sport is one entry from the provider's sports catalog. Sports are fetched
// fresh on every scan and never persisted.
type Sport struct {
	Key          string `json:"key"`
	Group        string `json:"group"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Active       bool   `json:"active"`
	HasOutrights bool   `json:"has_outrights"`
}

// Scannable reports whether the sport carries a two-sided head-to-head market
// worth scanning. Futures and outright-only catalogs (championship winner,
// top scorer, ...) have no opposing pair of outcomes to arbitrage.
func (s Sport) Scannable() bool {
	if !s.Active || s.HasOutrights {
		return false
	}
	if strings.Contains(s.Key, "_future_") || strings.Contains(s.Key, "outrights") {
		return false
	}
	return true
}
