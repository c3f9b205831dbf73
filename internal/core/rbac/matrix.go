// Package rbac holds the static role→action permission matrix. It is pure
// data consulted in-process; there is no network boundary behind it.
package rbac

// Actions form a closed set. Anything outside it evaluates to denied.
const (
	ActionRegisterLogin     = "register_login"
	ActionManageOwnProfile  = "manage_own_profile"
	ActionViewOwnAccounts   = "view_own_accounts"
	ActionViewAllAccounts   = "view_all_accounts"
	ActionCreateAccounts    = "create_accounts"
	ActionInternalTransfers = "internal_transfers"
	ActionExternalTransfers = "external_transfers"
	ActionViewOwnTxns       = "view_own_transactions"
	ActionViewAllTxns       = "view_all_transactions"
	ActionFreezeAccounts    = "freeze_unfreeze_accounts"
	ActionManageUserRoles   = "manage_users_roles"
	ActionManageTickets     = "manage_tickets"
	ActionViewAuditLogs     = "view_audit_logs"
)

// Reason explains a decision for diagnostics. It must never be used to grant
// access: every non-allowed reason is a denial.
type Reason string

const (
	ReasonAllowed       Reason = "allowed"
	ReasonDenied        Reason = "denied"
	ReasonUnknownRole   Reason = "unknown_role"
	ReasonUnknownAction Reason = "unknown_action"
)

// Decision is the outcome of a permission check.
type Decision struct {
	Allowed bool
	Reason  Reason
}

var matrix = map[string]map[string]bool{
	"customer": {
		ActionRegisterLogin:     true,
		ActionManageOwnProfile:  true,
		ActionViewOwnAccounts:   true,
		ActionViewAllAccounts:   false,
		ActionCreateAccounts:    true,
		ActionInternalTransfers: true,
		ActionExternalTransfers: true,
		ActionViewOwnTxns:       true,
		ActionViewAllTxns:       false,
		ActionFreezeAccounts:    false,
		ActionManageUserRoles:   false,
		ActionManageTickets:     false,
		ActionViewAuditLogs:     false,
	},
	"support_agent": {
		ActionRegisterLogin:     true,
		ActionManageOwnProfile:  true,
		ActionViewOwnAccounts:   true,
		ActionViewAllAccounts:   true,
		ActionCreateAccounts:    false,
		ActionInternalTransfers: false,
		ActionExternalTransfers: false,
		ActionViewOwnTxns:       true,
		ActionViewAllTxns:       true,
		ActionFreezeAccounts:    false,
		ActionManageUserRoles:   false,
		ActionManageTickets:     true,
		ActionViewAuditLogs:     false,
	},
	"auditor": {
		ActionRegisterLogin:     true,
		ActionManageOwnProfile:  false,
		ActionViewOwnAccounts:   true,
		ActionViewAllAccounts:   true,
		ActionCreateAccounts:    false,
		ActionInternalTransfers: false,
		ActionExternalTransfers: false,
		ActionViewOwnTxns:       true,
		ActionViewAllTxns:       true,
		ActionFreezeAccounts:    false,
		ActionManageUserRoles:   false,
		ActionManageTickets:     false,
		ActionViewAuditLogs:     true,
	},
	"admin": {
		ActionRegisterLogin:     true,
		ActionManageOwnProfile:  true,
		ActionViewOwnAccounts:   true,
		ActionViewAllAccounts:   true,
		ActionCreateAccounts:    true,
		ActionInternalTransfers: true,
		ActionExternalTransfers: true,
		ActionViewOwnTxns:       true,
		ActionViewAllTxns:       true,
		ActionFreezeAccounts:    true,
		ActionManageUserRoles:   true,
		ActionManageTickets:     true,
		ActionViewAuditLogs:     true,
	},
}

// Check evaluates role against action. Fail-closed: unknown roles and unknown
// actions are both denied, distinguished only by the diagnostic reason.
func Check(role, action string) Decision {
	perms, ok := matrix[role]
	if !ok {
		return Decision{Allowed: false, Reason: ReasonUnknownRole}
	}
	allowed, ok := perms[action]
	if !ok {
		return Decision{Allowed: false, Reason: ReasonUnknownAction}
	}
	if !allowed {
		return Decision{Allowed: false, Reason: ReasonDenied}
	}
	return Decision{Allowed: true, Reason: ReasonAllowed}
}

// Permissions returns a copy of the full permission set for a role, or nil
// when the role is unknown.
func Permissions(role string) map[string]bool {
	perms, ok := matrix[role]
	if !ok {
		return nil
	}
	out := make(map[string]bool, len(perms))
	for action, allowed := range perms {
		out[action] = allowed
	}
	return out
}
