// Package aggregator pulls the sports catalog and per-sport odds from the
// provider into one snapshot, applying the scannable-sport filter, request
// pacing, short-TTL caching and raw payload archival.
package aggregator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jscanga/Sports-Arbitrage-Finder/internal/domain"
	"github.com/jscanga/Sports-Arbitrage-Finder/internal/platform/oddsapi"
)

// OddsProvider is the slice of the odds API the aggregator consumes.
type OddsProvider interface {
	ListSports(ctx context.Context) ([]domain.Sport, error)
	GetOdds(ctx context.Context, sportKey string, opts oddsapi.OddsOptions) ([]domain.Game, oddsapi.RateLimits, error)
}

// ProviderFactory builds a provider bound to an API key. The key is resolved
// at scan time (settings override config), so the client cannot be built once
// at startup.
type ProviderFactory func(apiKey string) OddsProvider

// Result is one completed aggregation pass.
type Result struct {
	Games             []domain.Game
	SportCount        int // scannable sports actually fetched
	SkippedSports     int // sports that failed and were skipped
	RequestsRemaining int // provider quota after the last request; -1 when unknown
}

// Config wires an Aggregator.
type Config struct {
	Providers ProviderFactory
	Cache     domain.OddsCache   // optional; short-TTL per-sport cache
	Limiter   domain.RateLimiter // optional; paces provider requests
	Blob      domain.BlobWriter  // optional; archives each snapshot
	Logger    *slog.Logger

	// PaceDelay is the fallback pause between per-sport requests when no
	// limiter is configured. Zero disables pacing.
	PaceDelay time.Duration
	// PaceLimit/PaceWindow bound provider requests when Limiter is set.
	PaceLimit  int
	PaceWindow time.Duration
	// Odds defaults to DefaultOddsOptions when zero.
	Odds oddsapi.OddsOptions
}

// Aggregator fetches odds across every scannable sport.
type Aggregator struct {
	providers ProviderFactory
	cache     domain.OddsCache
	limiter   domain.RateLimiter
	blob      domain.BlobWriter
	logger    *slog.Logger

	paceDelay  time.Duration
	paceLimit  int
	paceWindow time.Duration
	odds       oddsapi.OddsOptions
}

// New creates an Aggregator.
func New(cfg Config) *Aggregator {
	if cfg.Odds == (oddsapi.OddsOptions{}) {
		cfg.Odds = oddsapi.DefaultOddsOptions()
	}
	return &Aggregator{
		providers:  cfg.Providers,
		cache:      cfg.Cache,
		limiter:    cfg.Limiter,
		blob:       cfg.Blob,
		logger:     cfg.Logger.With(slog.String("component", "aggregator")),
		paceDelay:  cfg.PaceDelay,
		paceLimit:  cfg.PaceLimit,
		paceWindow: cfg.PaceWindow,
		odds:       cfg.Odds,
	}
}

// Fetch pulls the catalog, filters it to scannable sports and collects each
// sport's odds sequentially. An empty API key fails before any network call.
// A catalog failure aborts the pass; a single sport's failure is logged and
// skipped. eventType filters the returned games by start status.
func (a *Aggregator) Fetch(ctx context.Context, apiKey string, eventType domain.EventType) (Result, error) {
	result := Result{RequestsRemaining: -1}

	if strings.TrimSpace(apiKey) == "" {
		return result, fmt.Errorf("aggregator: %w", domain.ErrMissingAPIKey)
	}
	provider := a.providers(apiKey)

	sports, err := provider.ListSports(ctx)
	if err != nil {
		// Without a catalog there is nothing to scan; auth failures surface
		// here on the first request.
		return result, fmt.Errorf("aggregator: fetch catalog: %w", err)
	}

	var scannable []domain.Sport
	for _, s := range sports {
		if s.Scannable() {
			scannable = append(scannable, s)
		}
	}
	a.logger.Info("catalog fetched",
		slog.Int("total_sports", len(sports)),
		slog.Int("scannable", len(scannable)),
	)

	now := time.Now().UTC()
	for i, sport := range scannable {
		if i > 0 {
			if err := a.pace(ctx); err != nil {
				return result, fmt.Errorf("aggregator: pacing: %w", err)
			}
		}

		games, err := a.sportOdds(ctx, provider, sport.Key, &result)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			result.SkippedSports++
			a.logger.Warn("sport fetch failed, skipping",
				slog.String("sport", sport.Key),
				slog.String("error", err.Error()),
			)
			continue
		}
		result.SportCount++

		for _, g := range games {
			if eventType.Matches(g.CommenceTime, now) {
				result.Games = append(result.Games, g)
			}
		}
	}

	a.archive(ctx, result)
	return result, nil
}

// sportOdds returns one sport's games, consulting the cache first. Cache
// errors degrade to a provider fetch.
func (a *Aggregator) sportOdds(ctx context.Context, provider OddsProvider, sportKey string, result *Result) ([]domain.Game, error) {
	if a.cache != nil {
		games, err := a.cache.GetGames(ctx, sportKey)
		if err == nil {
			return games, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			a.logger.Warn("odds cache read failed",
				slog.String("sport", sportKey),
				slog.String("error", err.Error()),
			)
		}
	}

	games, limits, err := provider.GetOdds(ctx, sportKey, a.odds)
	if limits.Remaining >= 0 {
		result.RequestsRemaining = limits.Remaining
	}
	if err != nil {
		return nil, err
	}

	if a.cache != nil {
		if err := a.cache.SetGames(ctx, sportKey, games); err != nil {
			a.logger.Warn("odds cache write failed",
				slog.String("sport", sportKey),
				slog.String("error", err.Error()),
			)
		}
	}
	return games, nil
}

// pace spaces out provider requests, preferring the distributed limiter when
// one is wired.
func (a *Aggregator) pace(ctx context.Context) error {
	if a.limiter != nil && a.paceLimit > 0 {
		return a.limiter.Wait(ctx, "oddsapi", a.paceLimit, a.paceWindow)
	}
	if a.paceDelay <= 0 {
		return nil
	}
	timer := time.NewTimer(a.paceDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// archive writes the snapshot to object storage. Failures are logged; the
// scan result is already in hand.
func (a *Aggregator) archive(ctx context.Context, result Result) {
	if a.blob == nil || len(result.Games) == 0 {
		return
	}
	payload, err := json.Marshal(result.Games)
	if err != nil {
		a.logger.Warn("snapshot marshal failed", slog.String("error", err.Error()))
		return
	}
	path := fmt.Sprintf("snapshots/%s.json", time.Now().UTC().Format("2006/01/02/150405.000000000"))
	if err := a.blob.Put(ctx, path, bytes.NewReader(payload), "application/json"); err != nil {
		a.logger.Warn("snapshot archive failed",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
	}
}
