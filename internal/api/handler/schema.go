package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Auth ---

type registerRequest struct {
	FullName string `json:"full_name" validate:"required,min=2,max=120"`
	Email    string `json:"email"     validate:"required,email"`
	Phone    string `json:"phone"     validate:"omitempty,max=32"`
	Password string `json:"password"  validate:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=8"`
}

type userResponse struct {
	ID         string    `json:"id"`
	FullName   string    `json:"full_name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone,omitempty"`
	Role       string    `json:"role"`
	FirstLogin bool      `json:"first_login"`
	CreatedAt  time.Time `json:"created_at"`
}

type authResponse struct {
	Token string        `json:"token,omitempty"`
	User  *userResponse `json:"user,omitempty"`
}

type validateResponse struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// --- RBAC ---

type permissionCheckRequest struct {
	Role   string `json:"role"   validate:"required"`
	Action string `json:"action" validate:"required"`
}

type permissionCheckResponse struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason"`
}

type rolePermissionsResponse struct {
	Role        string          `json:"role"`
	Permissions map[string]bool `json:"permissions"`
}

// --- Accounts ---

type createAccountRequest struct {
	Type           string `json:"account_type"    validate:"required,oneof=checking savings"`
	OpeningBalance string `json:"opening_balance" validate:"omitempty"`
	// TargetUserID lets admins open accounts on behalf of a customer.
	TargetUserID string `json:"user_id" validate:"omitempty"`
}

type updateAccountStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active frozen closed"`
	Reason string `json:"reason" validate:"omitempty,max=250"`
}

type accountResponse struct {
	ID            string    `json:"id"`
	AccountNumber string    `json:"account_number"`
	UserID        string    `json:"user_id"`
	Type          string    `json:"account_type"`
	Balance       string    `json:"balance"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// --- Transfers ---

type internalTransferRequest struct {
	SenderAccountID   string `json:"sender_account_id"   validate:"required"`
	ReceiverAccountID string `json:"receiver_account_id" validate:"required"`
	Amount            string `json:"amount"              validate:"required"`
	Description       string `json:"description"         validate:"omitempty,max=250"`
}

type externalTransferRequest struct {
	SenderAccountID       string `json:"sender_account_id"       validate:"required"`
	ReceiverAccountNumber string `json:"receiver_account_number" validate:"required,len=12,numeric"`
	Amount                string `json:"amount"                  validate:"required"`
	Description           string `json:"description"             validate:"omitempty,max=250"`
}

type transferResponse struct {
	TransactionID string `json:"transaction_id"`
	Amount        string `json:"amount"`
	Type          string `json:"transaction_type"`
	Status        string `json:"status"`
	Replayed      bool   `json:"replayed"`
	Suspicious    bool   `json:"suspicious,omitempty"`
}

type transactionResponse struct {
	TransactionID     string    `json:"transaction_id"`
	SenderAccountID   string    `json:"sender_account_id"`
	ReceiverAccountID string    `json:"receiver_account_id"`
	Amount            string    `json:"amount"`
	Type              string    `json:"transaction_type"`
	Description       string    `json:"description,omitempty"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
}

// --- Audit ---

type recordAuditRequest struct {
	Action       string `json:"action"        validate:"required,max=120"`
	ResourceType string `json:"resource_type" validate:"omitempty,max=60"`
	ResourceID   string `json:"resource_id"   validate:"omitempty,max=120"`
	Details      string `json:"details"       validate:"omitempty,max=1000"`
	Severity     string `json:"severity"      validate:"omitempty,oneof=info warning critical"`
}

type auditEntryResponse struct {
	ID           int64     `json:"id"`
	ActorID      *string   `json:"actor_id"`
	Action       string    `json:"action"`
	ResourceType string    `json:"resource_type,omitempty"`
	ResourceID   string    `json:"resource_id,omitempty"`
	IPAddress    string    `json:"ip_address,omitempty"`
	UserAgent    string    `json:"user_agent,omitempty"`
	Details      string    `json:"details,omitempty"`
	Severity     string    `json:"severity"`
	Hash         string    `json:"log_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

type recordAuditResponse struct {
	ID int64 `json:"id"`
}

type verifyAuditResponse struct {
	ID    int64  `json:"id"`
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// --- Admin users ---

type createUserRequest struct {
	FullName string `json:"full_name" validate:"required,min=2,max=120"`
	Email    string `json:"email"     validate:"required,email"`
	Phone    string `json:"phone"     validate:"omitempty,max=32"`
	Role     string `json:"role"      validate:"required,oneof=customer support_agent auditor admin"`
	Password string `json:"password"  validate:"required,min=8"`
}

type updateUserRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=customer support_agent auditor admin"`
}
