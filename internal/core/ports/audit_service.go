package ports

import (
	"context"

	"github.com/meridianbank/core-banking/internal/core/domain"
)

// AuditService is the append-only, hash-verifiable event ledger. Only its own
// write path is required to complete; callers emit best-effort through an
// AuditEmitter.
type AuditService interface {
	// RecordEvent performs the two-phase write (insert, then patch the
	// digest) and returns the new monotonic log id.
	RecordEvent(ctx context.Context, event AuditEvent) (int64, error)

	// VerifyEntry recomputes the digest over the stored fields and compares
	// it to the stored hash.
	VerifyEntry(ctx context.Context, id int64) (*domain.AuditEntry, error)

	List(ctx context.Context, filter ListAuditFilter) ([]*domain.AuditEntry, error)
}
