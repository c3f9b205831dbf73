package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/meridianbank/core-banking/internal/core/domain"
	"github.com/meridianbank/core-banking/internal/core/ports"
)

func TestAdminCreateUser(t *testing.T) {
	users := newMemUserRepo()
	emitter := &recordingEmitter{}
	svc := NewUserService(users, emitter, zerolog.Nop())

	user, err := svc.Create(context.Background(), ports.CreateUserInput{
		ActorID:  "adm",
		FullName: "Sam Auditor",
		Email:    "sam@example.com",
		Role:     domain.RoleAuditor,
		Password: "Initial!pass1",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if user.Role != domain.RoleAuditor {
		t.Fatalf("role = %s, want auditor", user.Role)
	}
	if !user.FirstLogin {
		t.Fatalf("admin-created users must change password on first login")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("Initial!pass1")) != nil {
		t.Fatalf("stored hash does not verify")
	}
	if len(emitter.byAction("admin_user_created")) != 1 {
		t.Fatalf("expected one admin_user_created event")
	}

	if _, err := svc.Create(context.Background(), ports.CreateUserInput{
		ActorID:  "adm",
		FullName: "Bad Role",
		Email:    "bad@example.com",
		Role:     "root",
		Password: "Initial!pass1",
	}); err == nil {
		t.Fatalf("unknown role should be rejected")
	}
}

func TestUpdateUserRole(t *testing.T) {
	users := newMemUserRepo()
	emitter := &recordingEmitter{}
	svc := NewUserService(users, emitter, zerolog.Nop())
	seedUser(t, users, "u1", "ana@example.com", "Str0ng!pass", domain.RoleCustomer)

	if err := svc.UpdateRole(context.Background(), "adm", "u1", domain.RoleSupportAgent, "10.0.0.1", "test"); err != nil {
		t.Fatalf("update role: %v", err)
	}
	updated, err := users.FindByID(context.Background(), "u1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if updated.Role != domain.RoleSupportAgent {
		t.Fatalf("role = %s, want support_agent", updated.Role)
	}

	if err := svc.UpdateRole(context.Background(), "adm", "u1", "root", "10.0.0.1", "test"); err == nil {
		t.Fatalf("unknown role should be rejected")
	}
	if err := svc.UpdateRole(context.Background(), "adm", "ghost", domain.RoleAdmin, "10.0.0.1", "test"); err == nil {
		t.Fatalf("unknown user should be rejected")
	}
}
