package oddsapi

import (
	"strconv"
	"time"

	"github.com/jscanga/Sports-Arbitrage-Finder/internal/domain"
)

// Wire types for The Odds API v4. Provider JSON is decoded into these and
// then converted to domain types through an explicit validation step, so the
// rest of the system never trusts the payload shape at use-site.

type apiSport struct {
	Key          string `json:"key"`
	Group        string `json:"group"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Active       bool   `json:"active"`
	HasOutrights bool   `json:"has_outrights"`
}

func (s apiSport) toDomain() domain.Sport {
	return domain.Sport{
		Key:          s.Key,
		Group:        s.Group,
		Title:        s.Title,
		Description:  s.Description,
		Active:       s.Active,
		HasOutrights: s.HasOutrights,
	}
}

type apiOutcome struct {
	Name  string   `json:"name"`
	Price float64  `json:"price"`
	Point *float64 `json:"point,omitempty"`
}

type apiMarket struct {
	Key        string       `json:"key"`
	LastUpdate time.Time    `json:"last_update"`
	Outcomes   []apiOutcome `json:"outcomes"`
}

type apiBookmaker struct {
	Key        string      `json:"key"`
	Title      string      `json:"title"`
	LastUpdate time.Time   `json:"last_update"`
	Markets    []apiMarket `json:"markets"`
}

type apiGame struct {
	ID           string         `json:"id"`
	SportKey     string         `json:"sport_key"`
	SportTitle   string         `json:"sport_title"`
	CommenceTime time.Time      `json:"commence_time"`
	HomeTeam     string         `json:"home_team"`
	AwayTeam     string         `json:"away_team"`
	Bookmakers   []apiBookmaker `json:"bookmakers"`
}

// valid reports whether the record carries the fields the detector keys on.
// Malformed records are skipped rather than aborting the whole sport.
func (g apiGame) valid() bool {
	return g.ID != "" && g.HomeTeam != "" && g.AwayTeam != "" && g.HomeTeam != g.AwayTeam
}

func (g apiGame) toDomain() domain.Game {
	out := domain.Game{
		ID:           g.ID,
		SportKey:     g.SportKey,
		SportTitle:   g.SportTitle,
		CommenceTime: g.CommenceTime,
		HomeTeam:     g.HomeTeam,
		AwayTeam:     g.AwayTeam,
	}
	for _, b := range g.Bookmakers {
		quote := domain.BookmakerQuote{
			Key:        b.Key,
			Title:      b.Title,
			LastUpdate: b.LastUpdate,
		}
		for _, m := range b.Markets {
			market := domain.Market{Key: m.Key, LastUpdate: m.LastUpdate}
			for _, o := range m.Outcomes {
				if o.Name == "" {
					continue
				}
				market.Outcomes = append(market.Outcomes, domain.Outcome{
					Name:  o.Name,
					Price: int(o.Price),
					Point: o.Point,
				})
			}
			quote.Markets = append(quote.Markets, market)
		}
		out.Bookmakers = append(out.Bookmakers, quote)
	}
	return out
}

// RateLimits is the provider quota state reported via response headers.
type RateLimits struct {
	Remaining int
	Used      int
}

func parseRateLimits(remaining, used string) RateLimits {
	rl := RateLimits{Remaining: -1, Used: -1}
	if n, err := strconv.ParseFloat(remaining, 64); err == nil {
		rl.Remaining = int(n)
	}
	if n, err := strconv.ParseFloat(used, 64); err == nil {
		rl.Used = int(n)
	}
	return rl
}
