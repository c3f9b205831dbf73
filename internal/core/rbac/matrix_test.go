package rbac

import "testing"

func TestCheck_CustomerTransfers(t *testing.T) {
	d := Check("customer", ActionInternalTransfers)
	if !d.Allowed || d.Reason != ReasonAllowed {
		t.Fatalf("expected customer internal transfers allowed, got %+v", d)
	}
	if Check("customer", ActionFreezeAccounts).Allowed {
		t.Fatalf("customer must not freeze accounts")
	}
}

func TestCheck_StaffRoles(t *testing.T) {
	if Check("support_agent", ActionInternalTransfers).Allowed {
		t.Fatalf("support agent must not move funds")
	}
	if !Check("support_agent", ActionViewAllAccounts).Allowed {
		t.Fatalf("support agent should see all accounts")
	}
	if !Check("auditor", ActionViewAuditLogs).Allowed {
		t.Fatalf("auditor should view audit logs")
	}
	if Check("auditor", ActionManageOwnProfile).Allowed {
		t.Fatalf("auditor profile management should be denied")
	}
}

func TestCheck_AdminAllowedEverything(t *testing.T) {
	for action := range matrix["admin"] {
		if d := Check("admin", action); !d.Allowed {
			t.Fatalf("admin denied %q: %+v", action, d)
		}
	}
}

func TestCheck_UnknownActionFailsClosed(t *testing.T) {
	for role := range matrix {
		d := Check(role, "launch_missiles")
		if d.Allowed {
			t.Fatalf("role %q allowed unknown action", role)
		}
		if d.Reason != ReasonUnknownAction {
			t.Fatalf("role %q: expected unknown_action reason, got %q", role, d.Reason)
		}
	}
}

func TestCheck_UnknownRoleFailsClosed(t *testing.T) {
	d := Check("superuser", ActionViewOwnAccounts)
	if d.Allowed {
		t.Fatalf("unknown role must be denied")
	}
	if d.Reason != ReasonUnknownRole {
		t.Fatalf("expected unknown_role reason, got %q", d.Reason)
	}
}

func TestCheck_DeniedReasonDistinctFromUnknown(t *testing.T) {
	d := Check("customer", ActionViewAllAccounts)
	if d.Allowed {
		t.Fatalf("customer must not view all accounts")
	}
	if d.Reason != ReasonDenied {
		t.Fatalf("expected denied reason, got %q", d.Reason)
	}
}

func TestPermissions(t *testing.T) {
	perms := Permissions("auditor")
	if perms == nil {
		t.Fatalf("expected permissions for auditor")
	}
	if !perms[ActionViewAuditLogs] {
		t.Fatalf("auditor permissions missing view_audit_logs")
	}
	// Returned map is a copy: mutating it must not affect later checks.
	perms[ActionFreezeAccounts] = true
	if Check("auditor", ActionFreezeAccounts).Allowed {
		t.Fatalf("matrix mutated through Permissions copy")
	}
	if Permissions("nobody") != nil {
		t.Fatalf("expected nil for unknown role")
	}
}
