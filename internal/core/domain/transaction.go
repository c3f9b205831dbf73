package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies how funds moved.
type TransactionType string

const (
	TransferInternal TransactionType = "internal_transfer"
	TransferExternal TransactionType = "external_transfer"
	Deposit          TransactionType = "deposit"
	Withdrawal       TransactionType = "withdrawal"
)

// TransactionStatus is the terminal state of a transaction record.
type TransactionStatus string

const (
	TransactionCompleted TransactionStatus = "completed"
	TransactionFailed    TransactionStatus = "failed"
	TransactionPending   TransactionStatus = "pending"
)

// MaxIdempotencyKeyLength caps the caller-supplied retry token.
const MaxIdempotencyKeyLength = 100

// Transaction is the immutable record of a single executed transfer.
// TransactionID is the public identifier; IdempotencyKey, when present,
// is globally unique so a retried request can never produce a second row.
type Transaction struct {
	TransactionID     string            `json:"transaction_id"`
	IdempotencyKey    string            `json:"idempotency_key,omitempty"`
	SenderAccountID   string            `json:"sender_account_id"`
	ReceiverAccountID string            `json:"receiver_account_id"`
	Amount            decimal.Decimal   `json:"amount"`
	Type              TransactionType   `json:"transaction_type"`
	Description       string            `json:"description,omitempty"`
	Status            TransactionStatus `json:"status"`
	CreatedAt         time.Time         `json:"created_at"`
}
