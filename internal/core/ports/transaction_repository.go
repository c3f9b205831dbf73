package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meridianbank/core-banking/internal/core/domain"
)

// ListTransactionsFilter carries the query parameters for transaction
// listings. OwnerUserID is enforced by the service layer for non-staff roles.
type ListTransactionsFilter struct {
	OwnerUserID string // empty = no owner scoping (staff)
	Type        domain.TransactionType
	DateFrom    time.Time
	DateTo      time.Time
	MinAmount   decimal.Decimal
	MaxAmount   decimal.Decimal
	Limit       int64 // capped by the service
}

// TransactionRepository persists transactions and owns the one atomic unit of
// the transfer engine.
type TransactionRepository interface {
	// Execute applies the transfer as a single atomic unit: debit the sender,
	// credit the receiver, insert the transaction row. Either all three
	// persist or none do. The debit is guarded so the sender balance can
	// never go negative even under concurrent transfers.
	Execute(ctx context.Context, t *domain.Transaction) error

	FindByTransactionID(ctx context.Context, transactionID string) (*domain.Transaction, error)
	List(ctx context.Context, filter ListTransactionsFilter) ([]*domain.Transaction, error)
}
