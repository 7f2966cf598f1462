package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jscanga/Sports-Arbitrage-Finder/internal/domain"
)

// OpportunityStore implements domain.OpportunityStore using PostgreSQL.
type OpportunityStore struct {
	pool *pgxpool.Pool
}

// NewOpportunityStore creates a new OpportunityStore backed by the given
// connection pool.
func NewOpportunityStore(pool *pgxpool.Pool) *OpportunityStore {
	return &OpportunityStore{pool: pool}
}

const oppSelectCols = `id, game_id, sport_key, sport_title, commence_time, live,
	home_team, away_team, home_price, home_bookmaker, away_price, away_bookmaker,
	home_implied_pct, away_implied_pct, total_implied_pct, profit_pct, detected_at`

// InsertBatch stores every opportunity from one scan in a single transaction.
func (s *OpportunityStore) InsertBatch(ctx context.Context, scanID string, opps []domain.Opportunity) error {
	if len(opps) == 0 {
		return nil
	}

	const query = `
		INSERT INTO opportunities (
			id, scan_id, game_id, sport_key, sport_title, commence_time, live,
			home_team, away_team, home_price, home_bookmaker, away_price, away_bookmaker,
			home_implied_pct, away_implied_pct, total_implied_pct, profit_pct, detected_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18
		)`

	batch := &pgx.Batch{}
	for _, opp := range opps {
		batch.Queue(query,
			opp.ID, scanID, opp.GameID, opp.SportKey, opp.SportTitle, opp.CommenceTime, opp.Live,
			opp.HomeTeam, opp.AwayTeam, opp.HomePrice, opp.HomeBookmaker, opp.AwayPrice, opp.AwayBookmaker,
			opp.HomeImpliedPct, opp.AwayImpliedPct, opp.TotalImpliedPct, opp.ProfitPct, opp.DetectedAt,
		)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: begin opportunity batch: %w", err)
	}
	defer tx.Rollback(ctx)

	results := tx.SendBatch(ctx, batch)
	for range opps {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return fmt.Errorf("postgres: insert opportunity batch scan %s: %w", scanID, err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("postgres: close opportunity batch scan %s: %w", scanID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit opportunity batch scan %s: %w", scanID, err)
	}
	return nil
}

// ListRecent returns the most recently detected opportunities.
func (s *OpportunityStore) ListRecent(ctx context.Context, limit int) ([]domain.Opportunity, error) {
	query := `SELECT ` + oppSelectCols + ` FROM opportunities ORDER BY detected_at DESC`
	args := []any{}

	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list recent opportunities: %w", err)
	}
	defer rows.Close()

	return scanOpportunities(rows)
}

// ListBefore returns opportunities detected strictly before the cutoff, in
// detection order, for archival.
func (s *OpportunityStore) ListBefore(ctx context.Context, before time.Time) ([]domain.Opportunity, error) {
	query := `SELECT ` + oppSelectCols + ` FROM opportunities
		WHERE detected_at < $1 ORDER BY detected_at ASC`

	rows, err := s.pool.Query(ctx, query, before)
	if err != nil {
		return nil, fmt.Errorf("postgres: list opportunities before %s: %w", before, err)
	}
	defer rows.Close()

	return scanOpportunities(rows)
}

// DeleteBefore removes opportunities detected strictly before the cutoff and
// returns the number of rows deleted.
func (s *OpportunityStore) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM opportunities WHERE detected_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("postgres: delete opportunities before %s: %w", before, err)
	}
	return tag.RowsAffected(), nil
}

func scanOpportunities(rows pgx.Rows) ([]domain.Opportunity, error) {
	var opps []domain.Opportunity
	for rows.Next() {
		var opp domain.Opportunity
		if err := rows.Scan(
			&opp.ID, &opp.GameID, &opp.SportKey, &opp.SportTitle, &opp.CommenceTime, &opp.Live,
			&opp.HomeTeam, &opp.AwayTeam, &opp.HomePrice, &opp.HomeBookmaker, &opp.AwayPrice, &opp.AwayBookmaker,
			&opp.HomeImpliedPct, &opp.AwayImpliedPct, &opp.TotalImpliedPct, &opp.ProfitPct, &opp.DetectedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan opportunity: %w", err)
		}
		opps = append(opps, opp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: opportunity rows: %w", err)
	}
	return opps, nil
}

// Compile-time interface check.
var _ domain.OpportunityStore = (*OpportunityStore)(nil)
