package ports

import (
	"context"

	"github.com/meridianbank/core-banking/internal/core/domain"
)

// RegisterInput carries a customer self-registration request.
type RegisterInput struct {
	FullName  string
	Email     string
	Phone     string
	Password  string
	IP        string
	UserAgent string
}

// AuthResult is returned on successful authentication.
type AuthResult struct {
	Token string
	User  *domain.User
}

// AuthService is the credential gate: registration, rate-limited login,
// stateless token validation and password changes.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)

	// Authenticate verifies credentials for email from ip. Returns a
	// *domain.RateLimitError once the fixed-window attempt counter for
	// (ip, email) is exhausted, domain.ErrInvalidCredentials on a bad
	// password or unknown user.
	Authenticate(ctx context.Context, email, password, ip, userAgent string) (*AuthResult, error)

	// ValidateToken parses and verifies a bearer token. Failures are
	// domain.ErrTokenExpired or domain.ErrTokenInvalid; callers surface both
	// as unauthorized.
	ValidateToken(ctx context.Context, token string) (*domain.TokenClaims, error)

	// ChangePassword verifies the current password and applies the policy to
	// the new one. Policy violations return *domain.PasswordPolicyError.
	ChangePassword(ctx context.Context, userID, current, next, ip, userAgent string) error
}
