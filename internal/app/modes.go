package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jscanga/Sports-Arbitrage-Finder/internal/aggregator"
	"github.com/jscanga/Sports-Arbitrage-Finder/internal/arbitrage"
	"github.com/jscanga/Sports-Arbitrage-Finder/internal/domain"
	"github.com/jscanga/Sports-Arbitrage-Finder/internal/platform/oddsapi"
	"github.com/jscanga/Sports-Arbitrage-Finder/internal/server"
	"github.com/jscanga/Sports-Arbitrage-Finder/internal/server/handler"
	"github.com/jscanga/Sports-Arbitrage-Finder/internal/server/ws"
	"github.com/jscanga/Sports-Arbitrage-Finder/internal/service"
)

// archiveSweepInterval is how often watch/full modes check for history that
// has aged past the retention window.
const archiveSweepInterval = 24 * time.Hour

// buildScanService assembles the aggregation and detection pipeline. The
// provider factory is invoked per scan so a key stored via the settings API
// takes effect without a restart.
func (a *App) buildScanService(deps *Dependencies) *service.ScanService {
	baseURL := a.cfg.OddsAPI.BaseURL
	agg := aggregator.New(aggregator.Config{
		Providers: func(apiKey string) aggregator.OddsProvider {
			return oddsapi.NewClient(baseURL, apiKey)
		},
		Cache:      deps.OddsCache,
		Limiter:    deps.RateLimiter,
		Blob:       deps.BlobWriter,
		Logger:     a.logger,
		PaceDelay:  a.cfg.Scan.PaceDelay.Duration,
		PaceLimit:  a.cfg.Scan.PaceLimit,
		PaceWindow: a.cfg.Scan.PaceWindow.Duration,
		Odds: oddsapi.OddsOptions{
			Regions:    a.cfg.OddsAPI.Regions,
			Markets:    a.cfg.OddsAPI.Markets,
			OddsFormat: a.cfg.OddsAPI.OddsFormat,
		},
	})

	return service.NewScanService(
		agg,
		arbitrage.NewDetector(),
		deps.ScanStore,
		deps.OpportunityStore,
		deps.SettingsStore,
		deps.LockManager,
		deps.SignalBus,
		deps.Notifier,
		service.ScanConfig{
			APIKey:             a.cfg.OddsAPI.ApiKey,
			DefaultEventType:   domain.EventType(a.cfg.Scan.EventType),
			DefaultSort:        domain.SortKey(a.cfg.Scan.Sort),
			NotifyMinProfitPct: a.cfg.Notify.MinProfitPct,
		},
		a.logger,
	)
}

// ScanMode runs a single scan, logs every detected opportunity, and exits.
func (a *App) ScanMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting scan mode")

	scanSvc := a.buildScanService(deps)
	snap, err := scanSvc.Run(ctx, "")
	if err != nil {
		return err
	}

	for _, opp := range snap.Opportunities {
		a.logger.InfoContext(ctx, "arbitrage opportunity",
			slog.String("sport", opp.SportTitle),
			slog.String("matchup", opp.AwayTeam+" @ "+opp.HomeTeam),
			slog.String("home_book", opp.HomeBookmaker),
			slog.Int("home_price", opp.HomePrice),
			slog.String("away_book", opp.AwayBookmaker),
			slog.Int("away_price", opp.AwayPrice),
			slog.Float64("profit_pct", opp.ProfitPct),
			slog.Bool("live", opp.Live),
		)
	}
	if len(snap.Opportunities) == 0 {
		a.logger.InfoContext(ctx, "no arbitrage opportunities found",
			slog.Int("games", snap.Scan.GameCount),
			slog.Int("sports", snap.Scan.SportCount),
		)
	}
	return nil
}

// ServerMode starts the HTTP + WebSocket API and blocks until shutdown.
func (a *App) ServerMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting server mode")

	g, ctx := errgroup.WithContext(ctx)
	scanSvc := a.buildScanService(deps)
	a.startHTTPServer(ctx, g, deps, scanSvc)
	return g.Wait()
}

// WatchMode scans on a fixed interval and sweeps aged history to object
// storage. No HTTP API is exposed.
func (a *App) WatchMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting watch mode",
		slog.Duration("interval", a.cfg.Scan.Interval.Duration),
	)

	g, ctx := errgroup.WithContext(ctx)
	scanSvc := a.buildScanService(deps)
	a.startWatchLoop(ctx, g, deps, scanSvc)
	return g.Wait()
}

// FullMode runs the watch loop and the HTTP API together.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting full mode",
		slog.Duration("interval", a.cfg.Scan.Interval.Duration),
	)

	g, ctx := errgroup.WithContext(ctx)
	scanSvc := a.buildScanService(deps)
	a.startWatchLoop(ctx, g, deps, scanSvc)
	a.startHTTPServer(ctx, g, deps, scanSvc)
	return g.Wait()
}

// startWatchLoop adds the periodic scan goroutine, plus a daily archive sweep
// when object storage is wired. Scan failures and lock contention are logged
// and the loop keeps going; only context cancellation stops it.
func (a *App) startWatchLoop(ctx context.Context, g *errgroup.Group, deps *Dependencies, scanSvc *service.ScanService) {
	g.Go(func() error {
		runOnce := func() {
			if _, err := scanSvc.Run(ctx, ""); err != nil {
				switch {
				case errors.Is(err, domain.ErrScanRunning):
					a.logger.InfoContext(ctx, "scan skipped, another scan is running")
				case ctx.Err() != nil:
				default:
					a.logger.ErrorContext(ctx, "scheduled scan failed",
						slog.String("error", err.Error()),
					)
				}
			}
		}

		runOnce()
		ticker := time.NewTicker(a.cfg.Scan.Interval.Duration)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				runOnce()
			}
		}
	})

	if deps.Archiver != nil {
		archiveSvc := service.NewArchiveService(
			deps.Archiver,
			deps.OpportunityStore,
			a.cfg.Scan.ArchiveRetentionDays,
			a.logger,
		)
		g.Go(func() error {
			ticker := time.NewTicker(archiveSweepInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-ticker.C:
					if _, err := archiveSvc.Sweep(ctx); err != nil && ctx.Err() == nil {
						a.logger.ErrorContext(ctx, "archive sweep failed",
							slog.String("error", err.Error()),
						)
					}
				}
			}
		})
	}
}

// startHTTPServer adds the WebSocket hub and HTTP server goroutines to the
// given errgroup. The server is shut down gracefully when the context is
// cancelled.
func (a *App) startHTTPServer(ctx context.Context, g *errgroup.Group, deps *Dependencies, scanSvc *service.ScanService) {
	startedAt := time.Now().UTC()

	hub := ws.NewHub(deps.SignalBus, a.logger, ws.Config{
		Mode:      a.cfg.Mode,
		StartedAt: startedAt,
	})
	g.Go(func() error {
		err := hub.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	settingsSvc := service.NewSettingsService(deps.SettingsStore, a.logger)

	handlers := server.Handlers{
		Health:        handler.NewHealthHandler(a.logger),
		Status:        handler.NewStatusHandler(scanSvc, a.cfg.Mode, startedAt, a.logger),
		Scan:          handler.NewScanHandler(scanSvc, a.logger),
		Games:         handler.NewGamesHandler(scanSvc, a.logger),
		Opportunities: handler.NewOpportunityHandler(scanSvc, a.logger),
		Allocations:   handler.NewAllocationHandler(scanSvc, a.logger),
		Settings:      handler.NewSettingsHandler(settingsSvc, a.logger),
	}
	if deps.BlobReader != nil {
		handlers.Archives = handler.NewArchiveHandler(deps.BlobReader, a.logger)
	}

	srv := server.NewServer(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		APIToken:    a.cfg.Server.ApiToken,
		Limiter:     deps.RateLimiter,
		RateLimit:   a.cfg.Server.RateLimit,
		RateWindow:  a.cfg.Server.RateWindow.Duration,
	}, handlers, hub, a.logger)

	g.Go(func() error {
		return srv.Start()
	})
	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})
}
