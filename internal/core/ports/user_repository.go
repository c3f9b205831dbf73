package ports

import (
	"context"

	"github.com/meridianbank/core-banking/internal/core/domain"
)

// UserRepository defines persistence for identity records. Users are never
// deleted.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	// UpdatePassword replaces the stored hash and clears the first-login flag.
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateRole(ctx context.Context, id, role string) error
}
