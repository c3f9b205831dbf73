package service

import (
	"context"
	"fmt"

	"github.com/meridianbank/core-banking/internal/api/metrics"
	"github.com/meridianbank/core-banking/internal/core/domain"
	"github.com/meridianbank/core-banking/internal/core/ports"
	"github.com/meridianbank/core-banking/internal/core/rbac"
)

// AccessGuard satisfies ports.Guard in-process: token validation through the
// auth service and permission checks through the static matrix. A remote
// implementation could replace it without touching any caller.
type AccessGuard struct {
	auth ports.AuthService
}

func NewAccessGuard(auth ports.AuthService) *AccessGuard {
	return &AccessGuard{auth: auth}
}

// Identify validates the bearer token. Any failure, including a dependency
// failure, denies the caller.
func (g *AccessGuard) Identify(ctx context.Context, token string) (*domain.TokenClaims, error) {
	claims, err := g.auth.ValidateToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// Authorize consults the permission matrix. Fail-closed: unknown roles,
// unknown actions and explicit denials all return ErrForbidden.
func (g *AccessGuard) Authorize(_ context.Context, role, action string) error {
	decision := rbac.Check(role, action)
	if !decision.Allowed {
		metrics.PermissionDenialsTotal.WithLabelValues(string(decision.Reason)).Inc()
		return fmt.Errorf("role %s denied action %s (%s): %w", role, action, decision.Reason, domain.ErrForbidden)
	}
	return nil
}
