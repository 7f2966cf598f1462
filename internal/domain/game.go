package domain

import (
	"fmt"
	"strings"
	"time"
)

// Market keys used by the odds provider.
const (
	MarketH2H     = "h2h"
	MarketSpreads = "spreads"
	MarketTotals  = "totals"
)

// EventType filters games by whether they have already started.
type EventType string

const (
	EventTypeAll     EventType = "all"
	EventTypeLive    EventType = "live"
	EventTypePregame EventType = "pregame"
)

// ParseEventType normalizes a user-supplied event type string. An empty
// string means no filtering.
func ParseEventType(s string) (EventType, error) {
	switch EventType(strings.ToLower(strings.TrimSpace(s))) {
	case "", EventTypeAll:
		return EventTypeAll, nil
	case EventTypeLive:
		return EventTypeLive, nil
	case EventTypePregame:
		return EventTypePregame, nil
	}
	return "", fmt.Errorf("unknown event type %q (valid: all, live, pregame)", s)
}

// Matches reports whether a game commencing at the given time satisfies the
// filter relative to now. Live means the game has already started.
func (e EventType) Matches(commence, now time.Time) bool {
	switch e {
	case EventTypeLive:
		return !commence.After(now)
	case EventTypePregame:
		return commence.After(now)
	default:
		return true
	}
}

// Outcome is one side of a bookmaker market: a team (or Over/Under) name and
// its price in American format. Point is only set for spread/total markets.
type Outcome struct {
	Name  string   `json:"name"`
	Price int      `json:"price"`
	Point *float64 `json:"point,omitempty"`
}

// Market is a single market quoted by one bookmaker for one game.
type Market struct {
	Key        string    `json:"key"`
	LastUpdate time.Time `json:"last_update"`
	Outcomes   []Outcome `json:"outcomes"`
}

// BookmakerQuote is the set of markets one bookmaker quotes for a game.
type BookmakerQuote struct {
	Key        string    `json:"key"`
	Title      string    `json:"title"`
	LastUpdate time.Time `json:"last_update"`
	Markets    []Market  `json:"markets"`
}

// Market returns the bookmaker's market with the given key, if quoted.
func (b BookmakerQuote) Market(key string) (Market, bool) {
	for _, m := range b.Markets {
		if m.Key == key {
			return m, true
		}
	}
	return Market{}, false
}

// Game is a single event with its per-bookmaker quotes.
//
// Invariant: HomeTeam and AwayTeam are non-empty, distinct, and are the keys
// used to match outcomes inside each bookmaker's head-to-head market.
type Game struct {
	ID           string           `json:"id"`
	SportKey     string           `json:"sport_key"`
	SportTitle   string           `json:"sport_title"`
	CommenceTime time.Time        `json:"commence_time"`
	HomeTeam     string           `json:"home_team"`
	AwayTeam     string           `json:"away_team"`
	Bookmakers   []BookmakerQuote `json:"bookmakers"`
}

// Live reports whether the game has started as of now.
func (g Game) Live(now time.Time) bool {
	return !g.CommenceTime.After(now)
}
