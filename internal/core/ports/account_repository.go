package ports

import (
	"context"

	"github.com/meridianbank/core-banking/internal/core/domain"
)

// AccountRepository defines persistence for accounts. Balances are never
// written through this interface; only the transaction repository mutates
// them, as atomic relative deltas.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	FindByNumber(ctx context.Context, accountNumber string) (*domain.Account, error)
	ListByOwner(ctx context.Context, userID string) ([]*domain.Account, error)
	ListAll(ctx context.Context) ([]*domain.Account, error)
	NumberExists(ctx context.Context, accountNumber string) (bool, error)
	// UpdateStatus sets the lifecycle status without touching the balance.
	UpdateStatus(ctx context.Context, id string, status domain.AccountStatus) error
}
