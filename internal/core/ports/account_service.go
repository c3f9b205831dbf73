package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/meridianbank/core-banking/internal/core/domain"
)

// CreateAccountInput carries an account creation request. TargetUserID is
// honoured only for admins; everyone else opens accounts for themselves.
type CreateAccountInput struct {
	ActorID        string
	ActorRole      string
	TargetUserID   string
	Type           domain.AccountType
	OpeningBalance decimal.Decimal
	IP             string
	UserAgent      string
}

// UpdateAccountStatusInput carries a freeze/unfreeze/close request.
type UpdateAccountStatusInput struct {
	ActorID   string
	AccountID string
	Status    domain.AccountStatus
	Reason    string
	IP        string
	UserAgent string
}

// AccountService defines use-case operations on accounts.
type AccountService interface {
	Create(ctx context.Context, input CreateAccountInput) (*domain.Account, error)
	// List returns the caller's own accounts, or every account for staff
	// roles.
	List(ctx context.Context, actorID, actorRole string) ([]*domain.Account, error)
	UpdateStatus(ctx context.Context, input UpdateAccountStatusInput) error
}
