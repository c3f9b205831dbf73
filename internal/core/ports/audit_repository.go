package ports

import (
	"context"
	"time"

	"github.com/meridianbank/core-banking/internal/core/domain"
)

// ListAuditFilter carries query parameters for audit log listings.
type ListAuditFilter struct {
	ActorID  string
	Action   string
	Severity string
	DateFrom time.Time
	DateTo   time.Time
	Limit    int64
}

// AuditRepository persists audit ledger rows. Insert and SetHash are the two
// phases of a write; after SetHash a row is never updated or deleted.
type AuditRepository interface {
	// Insert stores the entry with a placeholder hash and assigns its
	// monotonic id, returned on the entry itself.
	Insert(ctx context.Context, entry *domain.AuditEntry) error

	// SetHash finalises the row by patching the computed digest onto it.
	SetHash(ctx context.Context, id int64, hash string) error

	FindByID(ctx context.Context, id int64) (*domain.AuditEntry, error)
	List(ctx context.Context, filter ListAuditFilter) ([]*domain.AuditEntry, error)
}
