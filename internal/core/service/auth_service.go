package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/meridianbank/core-banking/internal/api/metrics"
	"github.com/meridianbank/core-banking/internal/core/domain"
	"github.com/meridianbank/core-banking/internal/core/ports"
)

const (
	maxLoginAttempts = 5
	defaultTokenTTL  = 8 * time.Hour
	lockoutWindow    = 15 * time.Minute
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// AuthService implements registration, rate-limited login, token validation
// and password changes.
type AuthService struct {
	users     ports.UserRepository
	cache     ports.ExpiringCache
	audit     ports.AuditEmitter
	jwtSecret string
	tokenTTL  time.Duration
	logger    zerolog.Logger
}

func NewAuthService(users ports.UserRepository, cache ports.ExpiringCache, audit ports.AuditEmitter, jwtSecret string, tokenTTL time.Duration, logger zerolog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}
	return &AuthService{
		users:     users,
		cache:     cache,
		audit:     audit,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		logger:    logger,
	}
}

// Register creates a new customer identity.
func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	fullName := sanitize(input.FullName)
	email := strings.ToLower(sanitize(input.Email))
	phone := sanitize(input.Phone)

	if fullName == "" || email == "" || phone == "" || input.Password == "" {
		return nil, fmt.Errorf("register: %w", domain.ErrInvalidCredentials)
	}
	if !emailPattern.MatchString(email) {
		return nil, fmt.Errorf("register: invalid email format: %w", domain.ErrInvalidCredentials)
	}
	if err := checkPasswordPolicy(input.Password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		FullName:     fullName,
		Email:        email,
		Phone:        phone,
		PasswordHash: string(hash),
		Role:         domain.RoleCustomer,
		FirstLogin:   false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.audit.Emit(ports.AuditEvent{
		ActorID:      &user.ID,
		Action:       "user_registered",
		ResourceType: "user",
		ResourceID:   user.ID,
		IPAddress:    input.IP,
		UserAgent:    input.UserAgent,
		Details:      fmt.Sprintf("new customer registered with email %s", email),
		Severity:     domain.SeverityInfo,
	})

	s.logger.Info().Str("user_id", user.ID).Msg("user registered")
	return user, nil
}

// Authenticate verifies credentials with a fixed-window rate limit keyed by
// (ip, email). A boundary burst may exceed the nominal rate; that is the
// intended fixed-window behaviour.
func (s *AuthService) Authenticate(ctx context.Context, email, password, ip, userAgent string) (*ports.AuthResult, error) {
	email = strings.ToLower(sanitize(email))
	if email == "" || password == "" {
		return nil, fmt.Errorf("authenticate: %w", domain.ErrInvalidCredentials)
	}

	if err := s.checkRateLimit(ctx, email, ip, userAgent); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("invalid").Inc()
		var actor *string
		if user != nil {
			actor = &user.ID
		}
		s.audit.Emit(ports.AuditEvent{
			ActorID:      actor,
			Action:       "login_failed",
			ResourceType: "auth",
			IPAddress:    ip,
			UserAgent:    userAgent,
			Details:      fmt.Sprintf("failed login for email=%s from ip=%s", email, ip),
			Severity:     domain.SeverityWarning,
		})
		return nil, fmt.Errorf("authenticate: %w", domain.ErrInvalidCredentials)
	}

	// Successful authentication clears the attempt counter immediately.
	if err := s.cache.Delete(ctx, rateLimitKey(ip, email)); err != nil {
		s.logger.Warn().Err(err).Msg("failed to reset login attempt counter")
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, fmt.Errorf("authenticate: sign token: %w", err)
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	s.audit.Emit(ports.AuditEvent{
		ActorID:      &user.ID,
		Action:       "login_success",
		ResourceType: "auth",
		IPAddress:    ip,
		UserAgent:    userAgent,
		Details:      fmt.Sprintf("user %s logged in from ip=%s", user.Email, ip),
		Severity:     domain.SeverityInfo,
	})

	return &ports.AuthResult{Token: token, User: user}, nil
}

// checkRateLimit applies the fixed-window counter: first attempt creates the
// key with the lockout TTL, later attempts increment it, and the request is
// rejected once the counter reaches the limit. Cache failures only degrade
// rate limiting; they never block a login.
func (s *AuthService) checkRateLimit(ctx context.Context, email, ip, userAgent string) error {
	key := rateLimitKey(ip, email)

	val, found, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn().Err(err).Msg("rate limit check failed, allowing attempt")
		return nil
	}
	if !found {
		if err := s.cache.SetWithTTL(ctx, key, "1", lockoutWindow); err != nil {
			s.logger.Warn().Err(err).Msg("failed to create login attempt counter")
		}
		return nil
	}

	if attempts := parseCount(val); attempts >= maxLoginAttempts {
		remaining, err := s.cache.TTL(ctx, key)
		if err != nil {
			remaining = lockoutWindow
		}
		metrics.LoginAttemptsTotal.WithLabelValues("rate_limited").Inc()
		s.audit.Emit(ports.AuditEvent{
			Action:       "login_rate_limited",
			ResourceType: "auth",
			IPAddress:    ip,
			UserAgent:    userAgent,
			Details:      fmt.Sprintf("rate limit triggered for email=%s from ip=%s", email, ip),
			Severity:     domain.SeverityWarning,
		})
		return &domain.RateLimitError{RetryAfter: remaining}
	}

	if _, err := s.cache.Increment(ctx, key, lockoutWindow); err != nil {
		s.logger.Warn().Err(err).Msg("failed to increment login attempt counter")
	}
	return nil
}

// ValidateToken parses and verifies a bearer token, distinguishing expiry
// from malformation. Both are surfaced to callers as unauthorized.
func (s *AuthService) ValidateToken(_ context.Context, token string) (*domain.TokenClaims, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}
	if !parsed.Valid {
		return nil, domain.ErrTokenInvalid
	}

	userID, _ := claims["user_id"].(string)
	emailClaim, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	if userID == "" || role == "" {
		return nil, domain.ErrTokenInvalid
	}

	out := &domain.TokenClaims{UserID: userID, Email: emailClaim, Role: role}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}

// ChangePassword verifies the current password and applies the policy to the
// new one. Both failure modes emit a warning audit event.
func (s *AuthService) ChangePassword(ctx context.Context, userID, current, next, ip, userAgent string) error {
	if current == "" || next == "" {
		return fmt.Errorf("change password: %w", domain.ErrInvalidCredentials)
	}

	if err := checkPasswordPolicy(next); err != nil {
		s.audit.Emit(ports.AuditEvent{
			ActorID:      &userID,
			Action:       "password_change_failed",
			ResourceType: "user",
			ResourceID:   userID,
			IPAddress:    ip,
			UserAgent:    userAgent,
			Details:      fmt.Sprintf("password change failed: new password rejected by policy (%v)", err),
			Severity:     domain.SeverityWarning,
		})
		return err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)) != nil {
		s.audit.Emit(ports.AuditEvent{
			ActorID:      &userID,
			Action:       "password_change_failed",
			ResourceType: "user",
			ResourceID:   userID,
			IPAddress:    ip,
			UserAgent:    userAgent,
			Details:      "password change failed: incorrect current password",
			Severity:     domain.SeverityWarning,
		})
		return fmt.Errorf("change password: %w", domain.ErrWrongPassword)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("change password: hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return err
	}

	s.audit.Emit(ports.AuditEvent{
		ActorID:      &userID,
		Action:       "password_changed",
		ResourceType: "user",
		ResourceID:   userID,
		IPAddress:    ip,
		UserAgent:    userAgent,
		Details:      "user changed password",
		Severity:     domain.SeverityInfo,
	})
	return nil
}

func (s *AuthService) issueToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
		"exp":     time.Now().Add(s.tokenTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

func rateLimitKey(ip, email string) string {
	return fmt.Sprintf("login_attempts:%s:%s", ip, email)
}

func parseCount(val string) int {
	n := 0
	for _, r := range val {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}

// sanitize strips characters with markup significance from user input.
func sanitize(text string) string {
	replacer := strings.NewReplacer("<", "", ">", "", `"`, "", "'", "", "&", "")
	return strings.TrimSpace(replacer.Replace(text))
}
