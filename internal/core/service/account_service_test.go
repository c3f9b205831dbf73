package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/meridianbank/core-banking/internal/core/domain"
	"github.com/meridianbank/core-banking/internal/core/ports"
)

func newAccountFixture(t *testing.T) (*AccountService, *memAccountRepo, *memUserRepo, *recordingEmitter) {
	t.Helper()
	accounts := newMemAccountRepo()
	users := newMemUserRepo()
	emitter := &recordingEmitter{}
	svc := NewAccountService(accounts, users, emitter, zerolog.Nop())

	for _, u := range []*domain.User{
		{ID: "u1", Email: "u1@example.com", Role: domain.RoleCustomer},
		{ID: "u2", Email: "u2@example.com", Role: domain.RoleCustomer},
		{ID: "adm", Email: "adm@example.com", Role: domain.RoleAdmin},
	} {
		if err := users.Create(context.Background(), u); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}
	return svc, accounts, users, emitter
}

func TestCreateAccount_Success(t *testing.T) {
	svc, _, _, emitter := newAccountFixture(t)

	account, err := svc.Create(context.Background(), ports.CreateAccountInput{
		ActorID:        "u1",
		ActorRole:      domain.RoleCustomer,
		Type:           domain.AccountChecking,
		OpeningBalance: decimal.RequireFromString("100.00"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if account.UserID != "u1" {
		t.Fatalf("owner = %s, want u1", account.UserID)
	}
	if account.Status != domain.AccountActive {
		t.Fatalf("new accounts start active, got %s", account.Status)
	}
	if len(account.AccountNumber) != domain.AccountNumberLength {
		t.Fatalf("account number length = %d, want %d", len(account.AccountNumber), domain.AccountNumberLength)
	}
	if len(emitter.byAction("create_account")) != 1 {
		t.Fatalf("expected one create_account event")
	}
}

func TestCreateAccount_Validation(t *testing.T) {
	svc, _, _, _ := newAccountFixture(t)

	if _, err := svc.Create(context.Background(), ports.CreateAccountInput{
		ActorID:   "u1",
		ActorRole: domain.RoleCustomer,
		Type:      "premium",
	}); err == nil {
		t.Fatalf("unknown account type should be rejected")
	}

	_, err := svc.Create(context.Background(), ports.CreateAccountInput{
		ActorID:        "u1",
		ActorRole:      domain.RoleCustomer,
		Type:           domain.AccountSavings,
		OpeningBalance: decimal.RequireFromString("-1.00"),
	})
	if !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("negative opening balance: got %v", err)
	}
}

func TestCreateAccount_TargetUserOnlyForAdmins(t *testing.T) {
	svc, _, _, _ := newAccountFixture(t)

	// An admin can open an account on behalf of another user.
	account, err := svc.Create(context.Background(), ports.CreateAccountInput{
		ActorID:      "adm",
		ActorRole:    domain.RoleAdmin,
		TargetUserID: "u2",
		Type:         domain.AccountChecking,
	})
	if err != nil {
		t.Fatalf("admin create for target: %v", err)
	}
	if account.UserID != "u2" {
		t.Fatalf("owner = %s, want u2", account.UserID)
	}

	// A customer supplying a target still gets their own account.
	account, err = svc.Create(context.Background(), ports.CreateAccountInput{
		ActorID:      "u1",
		ActorRole:    domain.RoleCustomer,
		TargetUserID: "u2",
		Type:         domain.AccountChecking,
	})
	if err != nil {
		t.Fatalf("customer create: %v", err)
	}
	if account.UserID != "u1" {
		t.Fatalf("customer must not open accounts for others, owner = %s", account.UserID)
	}
}

func TestListAccounts_RoleScoping(t *testing.T) {
	svc, accounts, _, _ := newAccountFixture(t)
	accounts.put(&domain.Account{ID: "a1", AccountNumber: "111111111111", UserID: "u1", Status: domain.AccountActive})
	accounts.put(&domain.Account{ID: "a2", AccountNumber: "222222222222", UserID: "u2", Status: domain.AccountActive})

	own, err := svc.List(context.Background(), "u1", domain.RoleCustomer)
	if err != nil {
		t.Fatalf("list own: %v", err)
	}
	if len(own) != 1 || own[0].ID != "a1" {
		t.Fatalf("customer should only see own accounts, got %d", len(own))
	}

	all, err := svc.List(context.Background(), "adm", domain.RoleSupportAgent)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("staff should see all accounts, got %d", len(all))
	}
}

func TestUpdateAccountStatus_Transitions(t *testing.T) {
	svc, accounts, _, _ := newAccountFixture(t)
	accounts.put(&domain.Account{ID: "a1", AccountNumber: "111111111111", UserID: "u1", Status: domain.AccountActive})

	freeze := ports.UpdateAccountStatusInput{ActorID: "adm", AccountID: "a1", Status: domain.AccountFrozen}
	if err := svc.UpdateStatus(context.Background(), freeze); err != nil {
		t.Fatalf("freeze: %v", err)
	}

	unfreeze := ports.UpdateAccountStatusInput{ActorID: "adm", AccountID: "a1", Status: domain.AccountActive}
	if err := svc.UpdateStatus(context.Background(), unfreeze); err != nil {
		t.Fatalf("unfreeze: %v", err)
	}

	closeIt := ports.UpdateAccountStatusInput{ActorID: "adm", AccountID: "a1", Status: domain.AccountClosed}
	if err := svc.UpdateStatus(context.Background(), closeIt); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Closed is terminal.
	reopen := ports.UpdateAccountStatusInput{ActorID: "adm", AccountID: "a1", Status: domain.AccountActive}
	if err := svc.UpdateStatus(context.Background(), reopen); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("reopening closed account: got %v", err)
	}
}
