package ports

import (
	"context"

	"github.com/meridianbank/core-banking/internal/core/domain"
)

// Guard is the single capability-check interface every protected operation
// goes through: identify the caller from a bearer token, then authorize the
// role for an action. Implementations may be in-process or remote; callers
// must treat any failure as a denial (fail-closed).
type Guard interface {
	// Identify validates a bearer token and returns its claims.
	Identify(ctx context.Context, token string) (*domain.TokenClaims, error)

	// Authorize returns nil only when role is allowed to perform action.
	Authorize(ctx context.Context, role, action string) error
}
