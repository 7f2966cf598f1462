package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jscanga/Sports-Arbitrage-Finder/internal/domain"
)

// ScanStore implements domain.ScanStore using PostgreSQL.
type ScanStore struct {
	pool *pgxpool.Pool
}

// NewScanStore creates a new ScanStore backed by the given connection pool.
func NewScanStore(pool *pgxpool.Pool) *ScanStore {
	return &ScanStore{pool: pool}
}

const scanSelectCols = `id, event_type, started_at, finished_at,
	sport_count, game_count, opportunity_count, requests_remaining`

// Insert stores a completed scan summary.
func (s *ScanStore) Insert(ctx context.Context, scan domain.Scan) error {
	const query = `
		INSERT INTO scans (
			id, event_type, started_at, finished_at,
			sport_count, game_count, opportunity_count, requests_remaining
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8
		)`

	_, err := s.pool.Exec(ctx, query,
		scan.ID, string(scan.EventType), scan.StartedAt, scan.FinishedAt,
		scan.SportCount, scan.GameCount, scan.OpportunityCount, scan.RequestsRemaining,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert scan %s: %w", scan.ID, err)
	}
	return nil
}

// ListRecent returns the most recent scans ordered by start time.
func (s *ScanStore) ListRecent(ctx context.Context, limit int) ([]domain.Scan, error) {
	query := `SELECT ` + scanSelectCols + ` FROM scans ORDER BY started_at DESC`
	args := []any{}

	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list recent scans: %w", err)
	}
	defer rows.Close()

	var scans []domain.Scan
	for rows.Next() {
		var scan domain.Scan
		var eventType string

		if err := rows.Scan(
			&scan.ID, &eventType, &scan.StartedAt, &scan.FinishedAt,
			&scan.SportCount, &scan.GameCount, &scan.OpportunityCount, &scan.RequestsRemaining,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		scan.EventType = domain.EventType(eventType)
		scans = append(scans, scan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list recent scans rows: %w", err)
	}
	return scans, nil
}

// Compile-time interface check.
var _ domain.ScanStore = (*ScanStore)(nil)
