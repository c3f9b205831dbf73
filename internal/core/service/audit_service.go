package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/meridianbank/core-banking/internal/api/metrics"
	"github.com/meridianbank/core-banking/internal/core/domain"
	"github.com/meridianbank/core-banking/internal/core/ports"
)

const maxAuditListLimit = 200

// AuditService owns the append-only audit ledger. Writes are two-phase:
// insert the row with a placeholder hash, then patch the digest computed over
// the canonical field concatenation back onto the same row. Finalised rows
// are never updated or deleted.
//
// The per-row hash detects field tampering but not deletion or reordering of
// rows; entries are deliberately not chained over their predecessor.
type AuditService struct {
	repo   ports.AuditRepository
	logger zerolog.Logger
}

func NewAuditService(repo ports.AuditRepository, logger zerolog.Logger) *AuditService {
	return &AuditService{repo: repo, logger: logger}
}

// RecordEvent persists one event and returns its monotonic log id.
func (s *AuditService) RecordEvent(ctx context.Context, event ports.AuditEvent) (int64, error) {
	if event.Action == "" {
		return 0, fmt.Errorf("record event: action is required")
	}

	severity := event.Severity
	switch severity {
	case domain.SeverityInfo, domain.SeverityWarning, domain.SeverityCritical:
	default:
		severity = domain.SeverityInfo
	}

	entry := &domain.AuditEntry{
		ActorID:      event.ActorID,
		Action:       event.Action,
		ResourceType: event.ResourceType,
		ResourceID:   event.ResourceID,
		IPAddress:    event.IPAddress,
		UserAgent:    event.UserAgent,
		Details:      event.Details,
		Severity:     severity,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.Insert(ctx, entry); err != nil {
		return 0, fmt.Errorf("record event: insert: %w", err)
	}
	if err := s.repo.SetHash(ctx, entry.ID, entry.ComputeHash()); err != nil {
		return 0, fmt.Errorf("record event: finalise hash: %w", err)
	}

	metrics.AuditEventsTotal.WithLabelValues(severity).Inc()
	return entry.ID, nil
}

// VerifyEntry recomputes the digest over the stored fields and compares it to
// the stored hash. A mismatch means some field was altered after
// finalisation.
func (s *AuditService) VerifyEntry(ctx context.Context, id int64) (*domain.AuditEntry, error) {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := entry.VerifyHash(); err != nil {
		s.logger.Error().Int64("log_id", id).Msg("audit entry failed integrity check")
		return entry, err
	}
	return entry, nil
}

// List returns audit entries matching the filter, newest first.
func (s *AuditService) List(ctx context.Context, filter ports.ListAuditFilter) ([]*domain.AuditEntry, error) {
	if filter.Limit <= 0 || filter.Limit > maxAuditListLimit {
		filter.Limit = maxAuditListLimit
	}
	return s.repo.List(ctx, filter)
}
