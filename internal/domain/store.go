package domain

import (
	"context"
	"time"
)

// Scan is one completed aggregation+detection pass.
type Scan struct {
	ID                string    `json:"id"`
	EventType         EventType `json:"event_type"`
	StartedAt         time.Time `json:"started_at"`
	FinishedAt        time.Time `json:"finished_at"`
	SportCount        int       `json:"sport_count"`
	GameCount         int       `json:"game_count"`
	OpportunityCount  int       `json:"opportunity_count"`
	RequestsRemaining int       `json:"requests_remaining"` // provider quota after the scan; -1 when unknown
}

// ScanStore persists scan summaries.
type ScanStore interface {
	Insert(ctx context.Context, scan Scan) error
	ListRecent(ctx context.Context, limit int) ([]Scan, error)
}

// OpportunityStore persists detected opportunity history.
type OpportunityStore interface {
	InsertBatch(ctx context.Context, scanID string, opps []Opportunity) error
	ListRecent(ctx context.Context, limit int) ([]Opportunity, error)
	// ListBefore returns opportunities detected strictly before the cutoff,
	// for archival.
	ListBefore(ctx context.Context, before time.Time) ([]Opportunity, error)
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
}

// SettingsStore is the persistence port for host-application state (the
// provider API key, display preferences). Load returns ErrNotFound when the
// key is absent.
type SettingsStore interface {
	Load(ctx context.Context, key string) (string, error)
	Save(ctx context.Context, key, value string) error
}

// Well-known settings keys.
const (
	SettingOddsAPIKey       = "odds_api_key"
	SettingDefaultEventType = "default_event_type"
	SettingDefaultSort      = "default_sort"
)
