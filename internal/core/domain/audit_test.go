package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestCanonicalString_FieldOrder(t *testing.T) {
	actor := "u1"
	entry := &AuditEntry{
		ID:           42,
		ActorID:      &actor,
		Action:       "login_success",
		ResourceType: "auth",
		ResourceID:   "r1",
		IPAddress:    "10.0.0.1",
		UserAgent:    "agent",
		Details:      "details",
		Severity:     SeverityInfo,
	}

	want := "42:u1:login_success:auth:r1:10.0.0.1:agent:details:info"
	if got := entry.CanonicalString(); got != want {
		t.Fatalf("canonical string = %q, want %q", got, want)
	}
}

func TestCanonicalString_NilActorIsEmpty(t *testing.T) {
	entry := &AuditEntry{ID: 1, Action: "startup", Severity: SeverityInfo}
	if !strings.HasPrefix(entry.CanonicalString(), "1::startup") {
		t.Fatalf("nil actor should render empty: %q", entry.CanonicalString())
	}
}

func TestVerifyHash(t *testing.T) {
	entry := &AuditEntry{ID: 7, Action: "transfer", Severity: SeverityWarning}

	if err := entry.VerifyHash(); !errors.Is(err, ErrHashMissing) {
		t.Fatalf("unset hash: got %v", err)
	}

	entry.Hash = entry.ComputeHash()
	if err := entry.VerifyHash(); err != nil {
		t.Fatalf("valid hash rejected: %v", err)
	}

	entry.Details = "altered"
	if err := entry.VerifyHash(); !errors.Is(err, ErrHashMismatch) {
		t.Fatalf("tampered entry: got %v", err)
	}
}

func TestAccountStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to AccountStatus
		ok       bool
	}{
		{AccountActive, AccountFrozen, true},
		{AccountActive, AccountClosed, true},
		{AccountFrozen, AccountActive, true},
		{AccountFrozen, AccountClosed, true},
		{AccountClosed, AccountActive, false},
		{AccountClosed, AccountFrozen, false},
		{AccountActive, AccountActive, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.ok {
			t.Errorf("%s -> %s = %v, want %v", tc.from, tc.to, got, tc.ok)
		}
	}
}
