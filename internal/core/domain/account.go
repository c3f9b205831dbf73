package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType distinguishes the two supported account products.
type AccountType string

const (
	AccountChecking AccountType = "checking"
	AccountSavings  AccountType = "savings"
)

// AccountStatus is the lifecycle state gating transfer eligibility.
type AccountStatus string

const (
	AccountActive AccountStatus = "active"
	AccountFrozen AccountStatus = "frozen"
	AccountClosed AccountStatus = "closed"
)

// validStatusTransitions: active and frozen are reversible, closed is terminal.
var validStatusTransitions = map[AccountStatus][]AccountStatus{
	AccountActive: {AccountFrozen, AccountClosed},
	AccountFrozen: {AccountActive, AccountClosed},
}

// CanTransitionTo reports whether a status change from s to next is allowed.
func (s AccountStatus) CanTransitionTo(next AccountStatus) bool {
	for _, allowed := range validStatusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// AccountNumberLength is the fixed length of generated account numbers.
const AccountNumberLength = 12

// Account is a funds holder owned by a single user. Balance never goes
// negative and is mutated only by the transfer engine.
type Account struct {
	ID            string          `json:"id"`
	AccountNumber string          `json:"account_number"`
	UserID        string          `json:"user_id"`
	Type          AccountType     `json:"account_type"`
	Balance       decimal.Decimal `json:"balance"`
	Status        AccountStatus   `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
