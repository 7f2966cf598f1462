package oddsapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jscanga/Sports-Arbitrage-Finder/internal/domain"
)

func TestListSports(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sports/" {
			t.Errorf("path = %q", r.URL.Path)
		}
		gotKey = r.URL.Query().Get("apiKey")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"key":"basketball_nba","group":"Basketball","title":"NBA","active":true,"has_outrights":false},
			{"key":"","title":"broken"},
			{"key":"politics_us","title":"US Politics","active":true,"has_outrights":true}
		]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k123")
	sports, err := c.ListSports(context.Background())
	if err != nil {
		t.Fatalf("ListSports: %v", err)
	}
	if gotKey != "k123" {
		t.Errorf("apiKey = %q", gotKey)
	}
	if len(sports) != 2 {
		t.Fatalf("got %d sports, want 2 (empty key skipped)", len(sports))
	}
	if sports[0].Key != "basketball_nba" || !sports[0].Active {
		t.Errorf("first sport = %+v", sports[0])
	}
	if !sports[1].HasOutrights {
		t.Error("has_outrights not carried through")
	}
}

func TestGetOdds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sports/basketball_nba/odds/" {
			t.Errorf("path = %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("regions") != "us" || q.Get("markets") != "h2h" || q.Get("oddsFormat") != "american" {
			t.Errorf("query = %v", q)
		}
		w.Header().Set("X-Requests-Remaining", "480")
		w.Header().Set("X-Requests-Used", "20")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{
				"id":"g1","sport_key":"basketball_nba","sport_title":"NBA",
				"commence_time":"2026-08-31T23:00:00Z",
				"home_team":"Lakers","away_team":"Celtics",
				"bookmakers":[{
					"key":"draftkings","title":"DraftKings",
					"markets":[{
						"key":"h2h",
						"outcomes":[
							{"name":"Lakers","price":-110},
							{"name":"Celtics","price":-110},
							{"name":"","price":100}
						]
					}]
				}]
			},
			{"id":"","home_team":"A","away_team":"B"},
			{"id":"g3","home_team":"Same","away_team":"Same"}
		]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k")
	games, limits, err := c.GetOdds(context.Background(), "basketball_nba", OddsOptions{
		Regions: "us", Markets: "h2h", OddsFormat: "american",
	})
	if err != nil {
		t.Fatalf("GetOdds: %v", err)
	}
	if limits.Remaining != 480 || limits.Used != 20 {
		t.Errorf("limits = %+v, want 480/20", limits)
	}
	if len(games) != 1 {
		t.Fatalf("got %d games, want 1 (malformed records skipped)", len(games))
	}

	g := games[0]
	if g.HomeTeam != "Lakers" || g.AwayTeam != "Celtics" {
		t.Errorf("teams = %s / %s", g.HomeTeam, g.AwayTeam)
	}
	mkt, ok := g.Bookmakers[0].Market(domain.MarketH2H)
	if !ok {
		t.Fatal("h2h market missing")
	}
	if len(mkt.Outcomes) != 2 {
		t.Fatalf("got %d outcomes, want 2 (empty name skipped)", len(mkt.Outcomes))
	}
	if mkt.Outcomes[0].Price != -110 {
		t.Errorf("price = %d, want -110", mkt.Outcomes[0].Price)
	}
}

func TestStatusCodeMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, domain.ErrInvalidAPIKey},
		{"forbidden", http.StatusForbidden, domain.ErrInvalidAPIKey},
		{"too many requests", http.StatusTooManyRequests, domain.ErrRateLimited},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			c := NewClient(srv.URL, "bad")
			if _, err := c.ListSports(context.Background()); !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestUnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k")
	_, err := c.ListSports(context.Background())
	if err == nil {
		t.Fatal("expected error for 500")
	}
	if errors.Is(err, domain.ErrInvalidAPIKey) || errors.Is(err, domain.ErrRateLimited) {
		t.Errorf("500 mapped onto a sentinel: %v", err)
	}
}

func TestMissingRateLimitHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k")
	_, limits, err := c.GetOdds(context.Background(), "soccer_epl", DefaultOddsOptions())
	if err != nil {
		t.Fatalf("GetOdds: %v", err)
	}
	if limits.Remaining != -1 || limits.Used != -1 {
		t.Errorf("limits = %+v, want -1/-1 when headers absent", limits)
	}
}
