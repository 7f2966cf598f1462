// Package service contains the orchestration layer between transport
// (HTTP/WebSocket) and the aggregation, detection and persistence components.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jscanga/Sports-Arbitrage-Finder/internal/aggregator"
	"github.com/jscanga/Sports-Arbitrage-Finder/internal/arbitrage"
	"github.com/jscanga/Sports-Arbitrage-Finder/internal/domain"
	"github.com/jscanga/Sports-Arbitrage-Finder/internal/notify"
)

// Signal bus channels and streams published by the scan service.
const (
	ChannelScanStatus    = "scan_status"
	ChannelOpportunities = "opportunities"
	StreamScans          = "scans"
)

// scanLockKey serializes scans across processes.
const scanLockKey = "scan"

// Snapshot is the in-memory result of the most recent scan. The whole
// snapshot is replaced atomically on every completed scan.
type Snapshot struct {
	Scan          domain.Scan
	Games         []domain.Game
	Opportunities []domain.Opportunity
}

// ScanConfig holds the tunable parameters for the scan service.
type ScanConfig struct {
	// APIKey is the provider key from configuration; a key stored in
	// settings takes precedence.
	APIKey string
	// DefaultEventType and DefaultSort apply when a trigger does not
	// specify them.
	DefaultEventType domain.EventType
	DefaultSort      domain.SortKey
	// LockTTL bounds how long a crashed scan can hold the scan lock.
	LockTTL time.Duration
	// NotifyMinProfitPct suppresses alerts below this margin.
	NotifyMinProfitPct float64
}

// ScanService runs aggregation+detection passes and owns the latest
// snapshot. Persistence, pub/sub fan-out and notifications hang off each
// completed scan.
type ScanService struct {
	agg      *aggregator.Aggregator
	detector *arbitrage.Detector
	scans    domain.ScanStore
	opps     domain.OpportunityStore
	settings domain.SettingsStore
	locks    domain.LockManager
	bus      domain.SignalBus
	notifier *notify.Notifier
	cfg      ScanConfig
	logger   *slog.Logger

	mu     sync.RWMutex
	latest *Snapshot
}

// NewScanService creates a ScanService with all required dependencies. The
// lock manager, bus and notifier may be nil, in which case the corresponding
// behavior is skipped.
func NewScanService(
	agg *aggregator.Aggregator,
	detector *arbitrage.Detector,
	scans domain.ScanStore,
	opps domain.OpportunityStore,
	settings domain.SettingsStore,
	locks domain.LockManager,
	bus domain.SignalBus,
	notifier *notify.Notifier,
	cfg ScanConfig,
	logger *slog.Logger,
) *ScanService {
	if cfg.DefaultEventType == "" {
		cfg.DefaultEventType = domain.EventTypeAll
	}
	if cfg.DefaultSort == "" {
		cfg.DefaultSort = domain.SortByProfit
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 5 * time.Minute
	}
	return &ScanService{
		agg:      agg,
		detector: detector,
		scans:    scans,
		opps:     opps,
		settings: settings,
		locks:    locks,
		bus:      bus,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "scan_service")),
	}
}

// scanStatusEvent is the JSON shape published to the scan_status channel.
type scanStatusEvent struct {
	Event            string `json:"event"` // "scan_started", "scan_finished", "scan_failed"
	ScanID           string `json:"scan_id,omitempty"`
	EventType        string `json:"event_type,omitempty"`
	GameCount        int    `json:"game_count,omitempty"`
	OpportunityCount int    `json:"opportunity_count,omitempty"`
	Error            string `json:"error,omitempty"`
}

// Run performs one scan: fetch odds across every scannable sport, detect
// arbitrage, persist the results and replace the latest snapshot. An empty
// eventType falls back to the configured default. It returns
// domain.ErrScanRunning when another scan holds the lock.
func (s *ScanService) Run(ctx context.Context, eventType domain.EventType) (*Snapshot, error) {
	return s.run(ctx, eventType, "")
}

// RunWithKey is Run with a per-call API key that takes precedence over both
// the stored setting and the configured key. The key is used for this scan
// only and never persisted.
func (s *ScanService) RunWithKey(ctx context.Context, eventType domain.EventType, apiKey string) (*Snapshot, error) {
	return s.run(ctx, eventType, apiKey)
}

func (s *ScanService) run(ctx context.Context, eventType domain.EventType, apiKey string) (*Snapshot, error) {
	if eventType == "" {
		eventType = s.cfg.DefaultEventType
	}

	if s.locks != nil {
		unlock, err := s.locks.Acquire(ctx, scanLockKey, s.cfg.LockTTL)
		if err != nil {
			if errors.Is(err, domain.ErrLockHeld) {
				return nil, domain.ErrScanRunning
			}
			return nil, fmt.Errorf("scan_service: acquire lock: %w", err)
		}
		defer unlock()
	}

	scanID := uuid.NewString()
	started := time.Now().UTC()

	s.publishStatus(ctx, scanStatusEvent{
		Event:     "scan_started",
		ScanID:    scanID,
		EventType: string(eventType),
	})

	result, err := s.agg.Fetch(ctx, s.resolveAPIKey(ctx, apiKey), eventType)
	if err != nil {
		s.publishStatus(ctx, scanStatusEvent{
			Event:  "scan_failed",
			ScanID: scanID,
			Error:  err.Error(),
		})
		if s.notifier != nil {
			title, msg := notify.ScanFailedAlert(err)
			_ = s.notifier.Notify(ctx, notify.EventScanFailed, title, msg)
		}
		return nil, err
	}

	now := time.Now().UTC()
	opportunities := s.detector.Detect(result.Games, now)
	arbitrage.Sort(opportunities, s.cfg.DefaultSort)

	scan := domain.Scan{
		ID:                scanID,
		EventType:         eventType,
		StartedAt:         started,
		FinishedAt:        now,
		SportCount:        result.SportCount,
		GameCount:         len(result.Games),
		OpportunityCount:  len(opportunities),
		RequestsRemaining: result.RequestsRemaining,
	}

	s.persist(ctx, scan, opportunities)

	snapshot := &Snapshot{
		Scan:          scan,
		Games:         result.Games,
		Opportunities: opportunities,
	}
	s.mu.Lock()
	s.latest = snapshot
	s.mu.Unlock()

	s.publishResults(ctx, scan, opportunities)
	s.notifyOpportunities(ctx, opportunities)

	s.logger.InfoContext(ctx, "scan completed",
		slog.String("scan_id", scanID),
		slog.String("event_type", string(eventType)),
		slog.Int("sports", result.SportCount),
		slog.Int("games", len(result.Games)),
		slog.Int("opportunities", len(opportunities)),
		slog.Int("requests_remaining", result.RequestsRemaining),
		slog.Duration("took", now.Sub(started)),
	)

	return snapshot, nil
}

// resolveAPIKey picks the provider key for one scan: an explicit per-call
// key wins, then a key stored via the settings API, then the configured one.
func (s *ScanService) resolveAPIKey(ctx context.Context, override string) string {
	if strings.TrimSpace(override) != "" {
		return override
	}
	if s.settings != nil {
		key, err := s.settings.Load(ctx, domain.SettingOddsAPIKey)
		if err == nil && key != "" {
			return key
		}
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			s.logger.WarnContext(ctx, "settings lookup failed, using configured key",
				slog.String("error", err.Error()),
			)
		}
	}
	return s.cfg.APIKey
}

// persist writes the scan summary and its opportunities. Storage failures
// are logged, not fatal: the snapshot is already computed and the API can
// serve it.
func (s *ScanService) persist(ctx context.Context, scan domain.Scan, opps []domain.Opportunity) {
	if s.scans != nil {
		if err := s.scans.Insert(ctx, scan); err != nil {
			s.logger.ErrorContext(ctx, "persist scan failed",
				slog.String("scan_id", scan.ID),
				slog.String("error", err.Error()),
			)
		}
	}
	if s.opps != nil {
		if err := s.opps.InsertBatch(ctx, scan.ID, opps); err != nil {
			s.logger.ErrorContext(ctx, "persist opportunities failed",
				slog.String("scan_id", scan.ID),
				slog.String("error", err.Error()),
			)
		}
	}
}

// publishResults fans the finished scan out on the signal bus: a status
// event, the fresh opportunity list and a durable stream entry.
func (s *ScanService) publishResults(ctx context.Context, scan domain.Scan, opps []domain.Opportunity) {
	s.publishStatus(ctx, scanStatusEvent{
		Event:            "scan_finished",
		ScanID:           scan.ID,
		EventType:        string(scan.EventType),
		GameCount:        scan.GameCount,
		OpportunityCount: scan.OpportunityCount,
	})

	if s.bus == nil {
		return
	}
	if payload, err := json.Marshal(opps); err == nil {
		if err := s.bus.Publish(ctx, ChannelOpportunities, payload); err != nil {
			s.logger.WarnContext(ctx, "publish opportunities failed", slog.String("error", err.Error()))
		}
	}
	if payload, err := json.Marshal(scan); err == nil {
		if err := s.bus.StreamAppend(ctx, StreamScans, payload); err != nil {
			s.logger.WarnContext(ctx, "append scan stream failed", slog.String("error", err.Error()))
		}
	}
}

func (s *ScanService) publishStatus(ctx context.Context, ev scanStatusEvent) {
	if s.bus == nil {
		return
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if err := s.bus.Publish(ctx, ChannelScanStatus, payload); err != nil {
		s.logger.WarnContext(ctx, "publish scan status failed",
			slog.String("event", ev.Event),
			slog.String("error", err.Error()),
		)
	}
}

// notifyOpportunities alerts on opportunities at or above the configured
// margin.
func (s *ScanService) notifyOpportunities(ctx context.Context, opps []domain.Opportunity) {
	if s.notifier == nil {
		return
	}
	for _, opp := range opps {
		if opp.ProfitPct < s.cfg.NotifyMinProfitPct {
			continue
		}
		title, msg := notify.OpportunityAlert(opp)
		if err := s.notifier.Notify(ctx, notify.EventOpportunityFound, title, msg); err != nil {
			s.logger.WarnContext(ctx, "opportunity alert failed",
				slog.String("opp_id", opp.ID),
				slog.String("error", err.Error()),
			)
		}
	}
}

// Latest returns the most recent snapshot, or domain.ErrNoScan before the
// first completed scan.
func (s *ScanService) Latest() (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return nil, domain.ErrNoScan
	}
	return s.latest, nil
}

// Opportunities returns the latest opportunity list re-sorted by the given
// key. The stored snapshot is not mutated.
func (s *ScanService) Opportunities(sort domain.SortKey) ([]domain.Opportunity, error) {
	snap, err := s.Latest()
	if err != nil {
		return nil, err
	}
	out := make([]domain.Opportunity, len(snap.Opportunities))
	copy(out, snap.Opportunities)
	if sort == "" {
		sort = s.cfg.DefaultSort
	}
	arbitrage.Sort(out, sort)
	return out, nil
}

// Allocate computes the risk-free stake split for an opportunity from the
// latest snapshot. It returns domain.ErrNotFound for an unknown opportunity
// ID.
func (s *ScanService) Allocate(oppID string, homeStake float64) (domain.Allocation, error) {
	snap, err := s.Latest()
	if err != nil {
		return domain.Allocation{}, err
	}
	for _, opp := range snap.Opportunities {
		if opp.ID == oppID {
			return arbitrage.Allocate(opp, homeStake)
		}
	}
	return domain.Allocation{}, fmt.Errorf("scan_service: opportunity %s: %w", oppID, domain.ErrNotFound)
}

// History returns persisted opportunity history, most recent first.
func (s *ScanService) History(ctx context.Context, limit int) ([]domain.Opportunity, error) {
	if s.opps == nil {
		return nil, nil
	}
	return s.opps.ListRecent(ctx, limit)
}

// RecentScans returns persisted scan summaries, most recent first.
func (s *ScanService) RecentScans(ctx context.Context, limit int) ([]domain.Scan, error) {
	if s.scans == nil {
		return nil, nil
	}
	return s.scans.ListRecent(ctx, limit)
}
