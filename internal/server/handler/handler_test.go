package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jscanga/Sports-Arbitrage-Finder/internal/aggregator"
	"github.com/jscanga/Sports-Arbitrage-Finder/internal/arbitrage"
	"github.com/jscanga/Sports-Arbitrage-Finder/internal/domain"
	"github.com/jscanga/Sports-Arbitrage-Finder/internal/platform/oddsapi"
	"github.com/jscanga/Sports-Arbitrage-Finder/internal/service"
)

type stubProvider struct {
	sports []domain.Sport
	games  map[string][]domain.Game
}

func (p *stubProvider) ListSports(ctx context.Context) ([]domain.Sport, error) {
	return p.sports, nil
}

func (p *stubProvider) GetOdds(ctx context.Context, sportKey string, opts oddsapi.OddsOptions) ([]domain.Game, oddsapi.RateLimits, error) {
	return p.games[sportKey], oddsapi.RateLimits{Remaining: 450, Used: 50}, nil
}

type memSettings struct {
	vals map[string]string
}

func (m *memSettings) Load(ctx context.Context, key string) (string, error) {
	v, ok := m.vals[key]
	if !ok {
		return "", domain.ErrNotFound
	}
	return v, nil
}

func (m *memSettings) Save(ctx context.Context, key, value string) error {
	if m.vals == nil {
		m.vals = map[string]string{}
	}
	m.vals[key] = value
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func arbGame(now time.Time) domain.Game {
	return domain.Game{
		ID: "g1", SportKey: "basketball_nba", SportTitle: "NBA",
		CommenceTime: now.Add(2 * time.Hour),
		HomeTeam:     "Lakers", AwayTeam: "Celtics",
		Bookmakers: []domain.BookmakerQuote{
			{
				Key: "draftkings", Title: "DraftKings",
				Markets: []domain.Market{{
					Key: domain.MarketH2H,
					Outcomes: []domain.Outcome{
						{Name: "Lakers", Price: 150},
						{Name: "Celtics", Price: -200},
					},
				}},
			},
			{
				Key: "fanduel", Title: "FanDuel",
				Markets: []domain.Market{{
					Key: domain.MarketH2H,
					Outcomes: []domain.Outcome{
						{Name: "Lakers", Price: -200},
						{Name: "Celtics", Price: 150},
					},
				}},
			},
		},
	}
}

func newScanService(t *testing.T) *service.ScanService {
	t.Helper()
	provider := &stubProvider{
		sports: []domain.Sport{{Key: "basketball_nba", Active: true}},
		games:  map[string][]domain.Game{"basketball_nba": {arbGame(time.Now())}},
	}
	agg := aggregator.New(aggregator.Config{
		Providers: func(string) aggregator.OddsProvider { return provider },
		Logger:    testLogger(),
	})
	return service.NewScanService(
		agg, arbitrage.NewDetector(),
		nil, nil, nil, nil, nil, nil,
		service.ScanConfig{APIKey: "test-key"},
		testLogger(),
	)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response: %v (body %s)", err, rec.Body.String())
	}
}

func TestTriggerScan(t *testing.T) {
	svc := newScanService(t)
	h := NewScanHandler(svc, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/scan", strings.NewReader(`{"event_type":"all"}`))
	rec := httptest.NewRecorder()
	h.TriggerScan(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	var resp scanResponse
	decodeBody(t, rec, &resp)
	if resp.Scan.GameCount != 1 || len(resp.Opportunities) != 1 {
		t.Errorf("got %d games / %d opportunities, want 1/1", resp.Scan.GameCount, len(resp.Opportunities))
	}
	if resp.Scan.RequestsRemaining != 450 {
		t.Errorf("requests remaining = %d, want 450", resp.Scan.RequestsRemaining)
	}
}

func TestTriggerScanEmptyBody(t *testing.T) {
	h := NewScanHandler(newScanService(t), testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/scan", nil)
	rec := httptest.NewRecorder()
	h.TriggerScan(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
}

func TestTriggerScanBadEventType(t *testing.T) {
	h := NewScanHandler(newScanService(t), testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/scan", strings.NewReader(`{"event_type":"overtime"}`))
	rec := httptest.NewRecorder()
	h.TriggerScan(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestTriggerScanMissingKey(t *testing.T) {
	agg := aggregator.New(aggregator.Config{
		Providers: func(string) aggregator.OddsProvider { return &stubProvider{} },
		Logger:    testLogger(),
	})
	svc := service.NewScanService(
		agg, arbitrage.NewDetector(),
		nil, nil, nil, nil, nil, nil,
		service.ScanConfig{}, testLogger(),
	)
	h := NewScanHandler(svc, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/scan", nil)
	rec := httptest.NewRecorder()
	h.TriggerScan(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 (body %s)", rec.Code, rec.Body.String())
	}
}

func TestOpportunitiesBeforeFirstScan(t *testing.T) {
	h := NewOpportunityHandler(newScanService(t), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/opportunities", nil)
	rec := httptest.NewRecorder()
	h.ListOpportunities(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestOpportunitiesAfterScan(t *testing.T) {
	svc := newScanService(t)
	if _, err := svc.Run(context.Background(), ""); err != nil {
		t.Fatalf("Run: %v", err)
	}
	h := NewOpportunityHandler(svc, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/opportunities?sort=time", nil)
	rec := httptest.NewRecorder()
	h.ListOpportunities(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	var resp struct {
		Opportunities []domain.Opportunity `json:"opportunities"`
		Count         int                  `json:"count"`
	}
	decodeBody(t, rec, &resp)
	if resp.Count != 1 || len(resp.Opportunities) != 1 {
		t.Errorf("count = %d with %d opportunities, want 1/1", resp.Count, len(resp.Opportunities))
	}

	// The game is pregame, so the live filter hides it.
	req = httptest.NewRequest(http.MethodGet, "/api/opportunities?event_type=live", nil)
	rec = httptest.NewRecorder()
	h.ListOpportunities(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("live filter status = %d", rec.Code)
	}
	decodeBody(t, rec, &resp)
	if resp.Count != 0 {
		t.Errorf("live filter count = %d, want 0", resp.Count)
	}
}

func TestOpportunitiesRejectsUnknownSort(t *testing.T) {
	h := NewOpportunityHandler(newScanService(t), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/opportunities?sort=alphabetical", nil)
	rec := httptest.NewRecorder()
	h.ListOpportunities(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGamesAfterScan(t *testing.T) {
	svc := newScanService(t)
	if _, err := svc.Run(context.Background(), ""); err != nil {
		t.Fatalf("Run: %v", err)
	}
	h := NewGamesHandler(svc, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/games", nil)
	rec := httptest.NewRecorder()
	h.ListGames(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		ScanID string        `json:"scan_id"`
		Games  []domain.Game `json:"games"`
	}
	decodeBody(t, rec, &resp)
	if resp.ScanID == "" || len(resp.Games) != 1 {
		t.Errorf("scan_id %q with %d games, want 1 game", resp.ScanID, len(resp.Games))
	}
}

func TestAllocate(t *testing.T) {
	svc := newScanService(t)
	snap, err := svc.Run(context.Background(), "")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	h := NewAllocationHandler(svc, testLogger())

	body, _ := json.Marshal(allocationRequest{
		OpportunityID: snap.Opportunities[0].ID,
		Stake:         100,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/allocations", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Allocate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	var alloc domain.Allocation
	decodeBody(t, rec, &alloc)
	if alloc.GuaranteedProfit <= 0 {
		t.Errorf("guaranteed profit = %v, want > 0", alloc.GuaranteedProfit)
	}
}

func TestAllocateRawPrices(t *testing.T) {
	h := NewAllocationHandler(newScanService(t), testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/allocations",
		strings.NewReader(`{"home_price":150,"away_price":-130,"stake":100}`))
	rec := httptest.NewRecorder()
	h.Allocate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	var alloc domain.Allocation
	decodeBody(t, rec, &alloc)
	// $100 at +150 pays $250; the hedge at -130 needs about $141.30.
	if alloc.AwayStake != 141.30 {
		t.Errorf("away stake = %v, want 141.30 (rounded)", alloc.AwayStake)
	}
	if alloc.GuaranteedProfit != 8.70 {
		t.Errorf("guaranteed profit = %v, want 8.70 (rounded)", alloc.GuaranteedProfit)
	}
}

func TestAllocateErrors(t *testing.T) {
	svc := newScanService(t)
	snap, err := svc.Run(context.Background(), "")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	h := NewAllocationHandler(svc, testLogger())

	tests := []struct {
		name string
		body string
		want int
	}{
		{"unknown opportunity", `{"opportunity_id":"nope","stake":100}`, http.StatusNotFound},
		{"no target", `{"stake":100}`, http.StatusBadRequest},
		{"negative stake", `{"opportunity_id":"` + snap.Opportunities[0].ID + `","stake":-5}`, http.StatusUnprocessableEntity},
		{"zero odds side", `{"home_price":150,"away_price":0,"stake":100}`, http.StatusUnprocessableEntity},
		{"garbage body", `{{{`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/allocations", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.Allocate(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	svc := service.NewSettingsService(&memSettings{}, testLogger())
	h := NewSettingsHandler(svc, testLogger())

	put := httptest.NewRequest(http.MethodPut, "/api/settings/default_sort", strings.NewReader(`{"value":"time"}`))
	put.SetPathValue("key", "default_sort")
	rec := httptest.NewRecorder()
	h.PutSetting(rec, put)
	if rec.Code != http.StatusOK {
		t.Fatalf("put status = %d (body %s)", rec.Code, rec.Body.String())
	}

	get := httptest.NewRequest(http.MethodGet, "/api/settings/default_sort", nil)
	get.SetPathValue("key", "default_sort")
	rec = httptest.NewRecorder()
	h.GetSetting(rec, get)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	var resp map[string]string
	decodeBody(t, rec, &resp)
	if resp["value"] != "time" {
		t.Errorf("value = %q, want time", resp["value"])
	}
}

func TestSettingsErrors(t *testing.T) {
	svc := service.NewSettingsService(&memSettings{}, testLogger())
	h := NewSettingsHandler(svc, testLogger())

	get := httptest.NewRequest(http.MethodGet, "/api/settings/favorite_color", nil)
	get.SetPathValue("key", "favorite_color")
	rec := httptest.NewRecorder()
	h.GetSetting(rec, get)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown key status = %d, want 404", rec.Code)
	}

	put := httptest.NewRequest(http.MethodPut, "/api/settings/default_sort", strings.NewReader(`{"value":"alphabetical"}`))
	put.SetPathValue("key", "default_sort")
	rec = httptest.NewRecorder()
	h.PutSetting(rec, put)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid value status = %d, want 400", rec.Code)
	}
}

func TestStatus(t *testing.T) {
	svc := newScanService(t)
	h := NewStatusHandler(svc, "server", time.Now().Add(-time.Minute), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	h.GetStatus(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp map[string]any
	decodeBody(t, rec, &resp)
	if resp["mode"] != "server" {
		t.Errorf("mode = %v, want server", resp["mode"])
	}
	if resp["last_scan"] != nil {
		t.Errorf("last_scan = %v before first scan, want null", resp["last_scan"])
	}

	if _, err := svc.Run(context.Background(), ""); err != nil {
		t.Fatalf("Run: %v", err)
	}
	rec = httptest.NewRecorder()
	h.GetStatus(rec, req)
	decodeBody(t, rec, &resp)
	if resp["last_scan"] == nil {
		t.Error("last_scan still null after a completed scan")
	}
}
