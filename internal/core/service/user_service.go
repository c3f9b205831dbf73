package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/meridianbank/core-banking/internal/core/domain"
	"github.com/meridianbank/core-banking/internal/core/ports"
)

// UserService implements user administration: listing, admin creation and
// role changes. Users are never deleted.
type UserService struct {
	users  ports.UserRepository
	audit  ports.AuditEmitter
	logger zerolog.Logger
}

func NewUserService(users ports.UserRepository, audit ports.AuditEmitter, logger zerolog.Logger) *UserService {
	return &UserService{users: users, audit: audit, logger: logger}
}

// List returns all users.
func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	return s.users.List(ctx)
}

// Create registers a user with any role. New users must change the assigned
// password on first login.
func (s *UserService) Create(ctx context.Context, input ports.CreateUserInput) (*domain.User, error) {
	email := strings.ToLower(sanitize(input.Email))
	if input.FullName == "" || email == "" || input.Password == "" {
		return nil, fmt.Errorf("create user: %w", domain.ErrInvalidCredentials)
	}
	if !domain.ValidRole(input.Role) {
		return nil, fmt.Errorf("create user: invalid role %q", input.Role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("create user: hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		FullName:     sanitize(input.FullName),
		Email:        email,
		Phone:        sanitize(input.Phone),
		PasswordHash: string(hash),
		Role:         input.Role,
		FirstLogin:   true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.audit.Emit(ports.AuditEvent{
		ActorID:      &input.ActorID,
		Action:       "admin_user_created",
		ResourceType: "user",
		ResourceID:   user.ID,
		IPAddress:    input.IP,
		UserAgent:    input.UserAgent,
		Details:      fmt.Sprintf("user %s created with role %s", email, input.Role),
		Severity:     domain.SeverityInfo,
	})
	return user, nil
}

// UpdateRole changes a user's role.
func (s *UserService) UpdateRole(ctx context.Context, actorID, userID, role, ip, userAgent string) error {
	if !domain.ValidRole(role) {
		return fmt.Errorf("update role: invalid role %q", role)
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return err
	}
	if err := s.users.UpdateRole(ctx, userID, role); err != nil {
		return err
	}

	s.audit.Emit(ports.AuditEvent{
		ActorID:      &actorID,
		Action:       "user_role_updated",
		ResourceType: "user",
		ResourceID:   userID,
		IPAddress:    ip,
		UserAgent:    userAgent,
		Details:      fmt.Sprintf("role changed to %s", role),
		Severity:     domain.SeverityInfo,
	})
	s.logger.Info().Str("user_id", userID).Str("role", role).Msg("user role updated")
	return nil
}
