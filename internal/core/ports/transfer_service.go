package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/meridianbank/core-banking/internal/core/domain"
)

// InternalTransferInput moves funds between two accounts owned by the actor.
type InternalTransferInput struct {
	ActorID           string
	SenderAccountID   string
	ReceiverAccountID string
	Amount            decimal.Decimal
	Description       string
	IdempotencyKey    string
	IP                string
	UserAgent         string
}

// ExternalTransferInput moves funds from the actor's account to any account,
// addressed by account number.
type ExternalTransferInput struct {
	ActorID               string
	SenderAccountID       string
	ReceiverAccountNumber string
	Amount                decimal.Decimal
	Description           string
	IdempotencyKey        string
	IP                    string
	UserAgent             string
}

// TransferResult reports the executed (or replayed) transfer.
type TransferResult struct {
	TransactionID string
	Amount        decimal.Decimal
	Type          domain.TransactionType
	Status        domain.TransactionStatus
	// Replayed is true when the idempotency key matched a previous execution
	// and no balances were touched.
	Replayed bool
	// Suspicious is advisory only; flagged transfers still complete.
	Suspicious bool
}

// ListTransactionsInput carries the parameters for the listing endpoint.
type ListTransactionsInput struct {
	ActorID   string
	ActorRole string
	Type      domain.TransactionType
	DateFrom  string
	DateTo    string
	MinAmount decimal.Decimal
	MaxAmount decimal.Decimal
	Limit     int64
}

// TransferService is the balance-conserving transfer engine.
type TransferService interface {
	InternalTransfer(ctx context.Context, input InternalTransferInput) (*TransferResult, error)
	ExternalTransfer(ctx context.Context, input ExternalTransferInput) (*TransferResult, error)
	ListTransactions(ctx context.Context, input ListTransactionsInput) ([]*domain.Transaction, error)
}
