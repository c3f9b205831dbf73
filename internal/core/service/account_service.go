package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/meridianbank/core-banking/internal/core/domain"
	"github.com/meridianbank/core-banking/internal/core/ports"
)

const accountNumberAttempts = 5

// AccountService implements account creation, listing and status transitions.
type AccountService struct {
	accounts ports.AccountRepository
	users    ports.UserRepository
	audit    ports.AuditEmitter
	logger   zerolog.Logger
}

func NewAccountService(accounts ports.AccountRepository, users ports.UserRepository, audit ports.AuditEmitter, logger zerolog.Logger) *AccountService {
	return &AccountService{accounts: accounts, users: users, audit: audit, logger: logger}
}

// Create opens a new account. Admins may open accounts for other users;
// everyone else opens their own.
func (s *AccountService) Create(ctx context.Context, input ports.CreateAccountInput) (*domain.Account, error) {
	if input.Type != domain.AccountChecking && input.Type != domain.AccountSavings {
		return nil, fmt.Errorf("create account: invalid account type %q", input.Type)
	}
	if input.OpeningBalance.IsNegative() {
		return nil, fmt.Errorf("create account: %w", domain.ErrInvalidAmount)
	}

	ownerID := input.ActorID
	if input.TargetUserID != "" && input.ActorRole == domain.RoleAdmin {
		ownerID = input.TargetUserID
	}
	if _, err := s.users.FindByID(ctx, ownerID); err != nil {
		return nil, fmt.Errorf("create account: target user: %w", err)
	}

	number, err := s.uniqueAccountNumber(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	account := &domain.Account{
		ID:            uuid.NewString(),
		AccountNumber: number,
		UserID:        ownerID,
		Type:          input.Type,
		Balance:       input.OpeningBalance.Round(2),
		Status:        domain.AccountActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		s.logger.Error().Err(err).Msg("failed to create account")
		return nil, err
	}

	s.audit.Emit(ports.AuditEvent{
		ActorID:      &input.ActorID,
		Action:       "create_account",
		ResourceType: "account",
		ResourceID:   account.ID,
		IPAddress:    input.IP,
		UserAgent:    input.UserAgent,
		Details:      fmt.Sprintf("account %s created for user %s", number, ownerID),
		Severity:     domain.SeverityInfo,
	})

	s.logger.Info().Str("account_id", account.ID).Str("user_id", ownerID).Msg("account created")
	return account, nil
}

// List returns the actor's own accounts, or every account for staff roles.
func (s *AccountService) List(ctx context.Context, actorID, actorRole string) ([]*domain.Account, error) {
	if domain.StaffRole(actorRole) {
		return s.accounts.ListAll(ctx)
	}
	return s.accounts.ListByOwner(ctx, actorID)
}

// UpdateStatus applies a freeze/unfreeze/close transition. Closed is
// terminal; active and frozen are reversible.
func (s *AccountService) UpdateStatus(ctx context.Context, input ports.UpdateAccountStatusInput) error {
	account, err := s.accounts.FindByID(ctx, input.AccountID)
	if err != nil {
		return err
	}

	if !account.Status.CanTransitionTo(input.Status) {
		return fmt.Errorf("update status: %s to %s: %w", account.Status, input.Status, domain.ErrInvalidTransition)
	}

	if err := s.accounts.UpdateStatus(ctx, input.AccountID, input.Status); err != nil {
		return err
	}

	reason := input.Reason
	if reason == "" {
		reason = "status changed by admin"
	}
	s.audit.Emit(ports.AuditEvent{
		ActorID:      &input.ActorID,
		Action:       "update_account_status",
		ResourceType: "account",
		ResourceID:   input.AccountID,
		IPAddress:    input.IP,
		UserAgent:    input.UserAgent,
		Details:      fmt.Sprintf("status changed to %s. reason: %s", input.Status, reason),
		Severity:     domain.SeverityInfo,
	})
	return nil
}

// uniqueAccountNumber draws random fixed-length numeric strings until one is
// free, bounded to a handful of attempts.
func (s *AccountService) uniqueAccountNumber(ctx context.Context) (string, error) {
	for i := 0; i < accountNumberAttempts; i++ {
		number, err := randomDigits(domain.AccountNumberLength)
		if err != nil {
			return "", fmt.Errorf("generate account number: %w", err)
		}
		exists, err := s.accounts.NumberExists(ctx, number)
		if err != nil {
			return "", fmt.Errorf("check account number: %w", err)
		}
		if !exists {
			return number, nil
		}
	}
	return "", fmt.Errorf("generate account number: exhausted %d attempts", accountNumberAttempts)
}

func randomDigits(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	digits := make([]byte, n)
	for i, v := range b {
		digits[i] = '0' + v%10
	}
	return string(digits), nil
}
