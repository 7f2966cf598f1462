package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jscanga/Sports-Arbitrage-Finder/internal/domain"
)

// ArchiveService ships aged opportunity history to object storage and then
// deletes it from the primary store. Deletion only happens after the archive
// upload has succeeded.
type ArchiveService struct {
	archiver  domain.Archiver
	opps      domain.OpportunityStore
	retention time.Duration
	logger    *slog.Logger
}

// NewArchiveService creates an ArchiveService that retains retentionDays of
// history in the primary store.
func NewArchiveService(
	archiver domain.Archiver,
	opps domain.OpportunityStore,
	retentionDays int,
	logger *slog.Logger,
) *ArchiveService {
	return &ArchiveService{
		archiver:  archiver,
		opps:      opps,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		logger:    logger.With(slog.String("component", "archive_service")),
	}
}

// Sweep archives and deletes all opportunity history older than the
// retention period. It returns the number of records archived.
func (s *ArchiveService) Sweep(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().Add(-s.retention)

	archived, err := s.archiver.ArchiveOpportunities(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("archive_service: archive: %w", err)
	}
	if archived == 0 {
		return 0, nil
	}

	deleted, err := s.opps.DeleteBefore(ctx, cutoff)
	if err != nil {
		// Archive succeeded but cleanup did not; the next sweep re-archives
		// the same rows, which is harmless (same object key).
		return archived, fmt.Errorf("archive_service: delete archived rows: %w", err)
	}

	s.logger.InfoContext(ctx, "history archived",
		slog.Time("cutoff", cutoff),
		slog.Int64("archived", archived),
		slog.Int64("deleted", deleted),
	)
	return archived, nil
}
