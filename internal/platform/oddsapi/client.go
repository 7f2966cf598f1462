// Package oddsapi is the REST client for The Odds API v4, which provides the
// sports catalog and per-sport bookmaker odds.
package oddsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/jscanga/Sports-Arbitrage-Finder/internal/domain"
)

// DefaultBaseURL is the production API root.
const DefaultBaseURL = "https://api.the-odds-api.com/v4"

// OddsOptions parameterizes a per-sport odds request.
type OddsOptions struct {
	Regions    string // comma-separated region set, e.g. "us"
	Markets    string // comma-separated market keys, e.g. "h2h,spreads,totals"
	OddsFormat string // "american"
}

// DefaultOddsOptions matches the markets the arbitrage scan consumes.
func DefaultOddsOptions() OddsOptions {
	return OddsOptions{
		Regions:    "us",
		Markets:    "h2h,spreads,totals",
		OddsFormat: "american",
	}
}

// Client is the REST client for The Odds API. Authentication is a query
// parameter on every request.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a Client for the given API root and key.
//
// baseURL is e.g. "https://api.the-odds-api.com/v4".
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ListSports returns the full sports catalog. A non-success status is
// treated as an invalid-key condition per the provider's auth model.
func (c *Client) ListSports(ctx context.Context) ([]domain.Sport, error) {
	params := url.Values{}
	params.Set("apiKey", c.apiKey)

	body, _, err := c.doGet(ctx, "/sports/?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("oddsapi: list sports: %w", err)
	}

	var apiSports []apiSport
	if err := json.Unmarshal(body, &apiSports); err != nil {
		return nil, fmt.Errorf("oddsapi: decode sports: %w", err)
	}

	sports := make([]domain.Sport, 0, len(apiSports))
	for i := range apiSports {
		if apiSports[i].Key == "" {
			continue
		}
		sports = append(sports, apiSports[i].toDomain())
	}
	return sports, nil
}

// GetOdds returns current odds for one sport along with the provider quota
// state from the response headers. Malformed game records are skipped.
func (c *Client) GetOdds(ctx context.Context, sportKey string, opts OddsOptions) ([]domain.Game, RateLimits, error) {
	params := url.Values{}
	params.Set("apiKey", c.apiKey)
	params.Set("regions", opts.Regions)
	params.Set("markets", opts.Markets)
	params.Set("oddsFormat", opts.OddsFormat)

	path := fmt.Sprintf("/sports/%s/odds/?%s", url.PathEscape(sportKey), params.Encode())

	body, limits, err := c.doGet(ctx, path)
	if err != nil {
		return nil, limits, fmt.Errorf("oddsapi: get odds %s: %w", sportKey, err)
	}

	var apiGames []apiGame
	if err := json.Unmarshal(body, &apiGames); err != nil {
		return nil, limits, fmt.Errorf("oddsapi: decode odds %s: %w", sportKey, err)
	}

	games := make([]domain.Game, 0, len(apiGames))
	for i := range apiGames {
		if !apiGames[i].valid() {
			continue
		}
		games = append(games, apiGames[i].toDomain())
	}
	return games, limits, nil
}

// doGet sends a GET request and maps provider status codes onto domain
// errors: 401/403 become ErrInvalidAPIKey and 429 becomes ErrRateLimited.
func (c *Client) doGet(ctx context.Context, path string) ([]byte, RateLimits, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, RateLimits{Remaining: -1, Used: -1}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, RateLimits{Remaining: -1, Used: -1}, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	limits := parseRateLimits(
		resp.Header.Get("X-Requests-Remaining"),
		resp.Header.Get("X-Requests-Used"),
	)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, limits, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, limits, domain.ErrInvalidAPIKey
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, limits, domain.ErrRateLimited
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, limits, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(body, 256))
	}

	return body, limits, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
