package ports

import (
	"context"

	"github.com/meridianbank/core-banking/internal/core/domain"
)

// CreateUserInput carries an admin-created user with an assigned role.
type CreateUserInput struct {
	ActorID   string
	FullName  string
	Email     string
	Phone     string
	Role      string
	Password  string
	IP        string
	UserAgent string
}

// UserService covers user administration: listing, admin creation with any
// role, and role changes. Users are never deleted.
type UserService interface {
	List(ctx context.Context) ([]*domain.User, error)
	Create(ctx context.Context, input CreateUserInput) (*domain.User, error)
	UpdateRole(ctx context.Context, actorID, userID, role, ip, userAgent string) error
}
