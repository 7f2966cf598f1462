package aggregator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jscanga/Sports-Arbitrage-Finder/internal/domain"
	"github.com/jscanga/Sports-Arbitrage-Finder/internal/platform/oddsapi"
)

type fakeProvider struct {
	sports     []domain.Sport
	sportsErr  error
	games      map[string][]domain.Game
	gamesErr   map[string]error
	remaining  int
	listCalls  int
	oddsCalls  []string
}

func (f *fakeProvider) ListSports(ctx context.Context) ([]domain.Sport, error) {
	f.listCalls++
	return f.sports, f.sportsErr
}

func (f *fakeProvider) GetOdds(ctx context.Context, sportKey string, opts oddsapi.OddsOptions) ([]domain.Game, oddsapi.RateLimits, error) {
	f.oddsCalls = append(f.oddsCalls, sportKey)
	if err := f.gamesErr[sportKey]; err != nil {
		return nil, oddsapi.RateLimits{Remaining: f.remaining}, err
	}
	return f.games[sportKey], oddsapi.RateLimits{Remaining: f.remaining}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newAggregator(p *fakeProvider) *Aggregator {
	return New(Config{
		Providers: func(string) OddsProvider { return p },
		Logger:    discardLogger(),
	})
}

func game(id, sport string, commence time.Time) domain.Game {
	return domain.Game{
		ID: id, SportKey: sport, SportTitle: sport,
		CommenceTime: commence,
		HomeTeam:     "Home " + id, AwayTeam: "Away " + id,
	}
}

func TestFetchMissingKeyMakesNoRequests(t *testing.T) {
	p := &fakeProvider{}
	_, err := newAggregator(p).Fetch(context.Background(), "   ", domain.EventTypeAll)
	if !errors.Is(err, domain.ErrMissingAPIKey) {
		t.Fatalf("got %v, want ErrMissingAPIKey", err)
	}
	if p.listCalls != 0 || len(p.oddsCalls) != 0 {
		t.Errorf("provider was called despite missing key: %d list, %d odds", p.listCalls, len(p.oddsCalls))
	}
}

func TestFetchCatalogFailureAborts(t *testing.T) {
	p := &fakeProvider{sportsErr: domain.ErrInvalidAPIKey}
	_, err := newAggregator(p).Fetch(context.Background(), "key", domain.EventTypeAll)
	if !errors.Is(err, domain.ErrInvalidAPIKey) {
		t.Fatalf("got %v, want ErrInvalidAPIKey", err)
	}
	if len(p.oddsCalls) != 0 {
		t.Errorf("odds fetched after catalog failure: %v", p.oddsCalls)
	}
}

func TestFetchSkipsNonScannableSports(t *testing.T) {
	p := &fakeProvider{
		sports: []domain.Sport{
			{Key: "basketball_nba", Active: true},
			{Key: "basketball_nba_inactive", Active: false},
			{Key: "soccer_epl_winner", Active: true, HasOutrights: true},
			{Key: "politics_us_future_elections", Active: true},
			{Key: "icehockey_nhl", Active: true},
		},
		remaining: 480,
	}

	result, err := newAggregator(p).Fetch(context.Background(), "key", domain.EventTypeAll)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	want := []string{"basketball_nba", "icehockey_nhl"}
	if len(p.oddsCalls) != len(want) {
		t.Fatalf("odds calls = %v, want %v", p.oddsCalls, want)
	}
	for i, key := range want {
		if p.oddsCalls[i] != key {
			t.Errorf("call %d = %s, want %s", i, p.oddsCalls[i], key)
		}
	}
	if result.SportCount != 2 {
		t.Errorf("SportCount = %d, want 2", result.SportCount)
	}
	if result.RequestsRemaining != 480 {
		t.Errorf("RequestsRemaining = %d, want 480", result.RequestsRemaining)
	}
}

func TestFetchSkipsFailedSport(t *testing.T) {
	now := time.Now()
	p := &fakeProvider{
		sports: []domain.Sport{
			{Key: "basketball_nba", Active: true},
			{Key: "icehockey_nhl", Active: true},
		},
		games: map[string][]domain.Game{
			"icehockey_nhl": {game("g1", "icehockey_nhl", now.Add(time.Hour))},
		},
		gamesErr: map[string]error{
			"basketball_nba": errors.New("upstream 500"),
		},
		remaining: -1,
	}

	result, err := newAggregator(p).Fetch(context.Background(), "key", domain.EventTypeAll)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if result.SportCount != 1 || result.SkippedSports != 1 {
		t.Errorf("SportCount/SkippedSports = %d/%d, want 1/1", result.SportCount, result.SkippedSports)
	}
	if len(result.Games) != 1 || result.Games[0].ID != "g1" {
		t.Errorf("games = %+v, want only g1", result.Games)
	}
}

func TestFetchEventTypeFilter(t *testing.T) {
	now := time.Now()
	p := &fakeProvider{
		sports: []domain.Sport{{Key: "basketball_nba", Active: true}},
		games: map[string][]domain.Game{
			"basketball_nba": {
				game("live", "basketball_nba", now.Add(-time.Hour)),
				game("pregame", "basketball_nba", now.Add(time.Hour)),
			},
		},
	}

	tests := []struct {
		eventType domain.EventType
		wantIDs   []string
	}{
		{domain.EventTypeAll, []string{"live", "pregame"}},
		{domain.EventTypeLive, []string{"live"}},
		{domain.EventTypePregame, []string{"pregame"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.eventType), func(t *testing.T) {
			result, err := newAggregator(p).Fetch(context.Background(), "key", tt.eventType)
			if err != nil {
				t.Fatalf("Fetch: %v", err)
			}
			if len(result.Games) != len(tt.wantIDs) {
				t.Fatalf("got %d games, want %d", len(result.Games), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if result.Games[i].ID != id {
					t.Errorf("game %d = %s, want %s", i, result.Games[i].ID, id)
				}
			}
		})
	}
}

type memoryCache struct {
	games map[string][]domain.Game
	sets  int
	hits  int
}

func (m *memoryCache) SetGames(ctx context.Context, sportKey string, games []domain.Game) error {
	m.games[sportKey] = games
	m.sets++
	return nil
}

func (m *memoryCache) GetGames(ctx context.Context, sportKey string) ([]domain.Game, error) {
	if g, ok := m.games[sportKey]; ok {
		m.hits++
		return g, nil
	}
	return nil, domain.ErrNotFound
}

func (m *memoryCache) Invalidate(ctx context.Context, sportKey string) error {
	delete(m.games, sportKey)
	return nil
}

func TestFetchUsesOddsCache(t *testing.T) {
	now := time.Now()
	p := &fakeProvider{
		sports: []domain.Sport{{Key: "basketball_nba", Active: true}},
		games: map[string][]domain.Game{
			"basketball_nba": {game("g1", "basketball_nba", now.Add(time.Hour))},
		},
	}
	cache := &memoryCache{games: map[string][]domain.Game{}}
	agg := New(Config{
		Providers: func(string) OddsProvider { return p },
		Cache:     cache,
		Logger:    discardLogger(),
	})

	ctx := context.Background()
	if _, err := agg.Fetch(ctx, "key", domain.EventTypeAll); err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	if _, err := agg.Fetch(ctx, "key", domain.EventTypeAll); err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if len(p.oddsCalls) != 1 {
		t.Errorf("provider odds calls = %d, want 1 (second scan should hit cache)", len(p.oddsCalls))
	}
	if cache.sets != 1 || cache.hits != 1 {
		t.Errorf("cache sets/hits = %d/%d, want 1/1", cache.sets, cache.hits)
	}
}
