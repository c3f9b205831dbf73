package domain

import "time"

const (
	RoleCustomer     = "customer"
	RoleSupportAgent = "support_agent"
	RoleAuditor      = "auditor"
	RoleAdmin        = "admin"
)

// ValidRole reports whether role is one of the four defined roles.
func ValidRole(role string) bool {
	switch role {
	case RoleCustomer, RoleSupportAgent, RoleAuditor, RoleAdmin:
		return true
	}
	return false
}

// StaffRole reports whether role may see resources it does not own.
func StaffRole(role string) bool {
	switch role {
	case RoleSupportAgent, RoleAuditor, RoleAdmin:
		return true
	}
	return false
}

// User models an authenticated actor in the system.
type User struct {
	ID           string    `json:"id"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	FirstLogin   bool      `json:"is_first_login"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TokenClaims is the identity carried by a signed bearer token.
type TokenClaims struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}
