package service

import (
	"strings"
	"unicode"

	"github.com/meridianbank/core-banking/internal/core/domain"
)

const passwordSymbols = `!@#$%^&*(),.?":{}|<>`

// checkPasswordPolicy enforces the password strength rules: at least 8
// characters with one uppercase, one lowercase, one digit and one symbol from
// the fixed punctuation set.
func checkPasswordPolicy(password string) error {
	if len(password) < 8 {
		return &domain.PasswordPolicyError{Reason: "password must be at least 8 characters long"}
	}

	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
			symbol = true
		}
	}

	switch {
	case !upper:
		return &domain.PasswordPolicyError{Reason: "password must contain at least one uppercase letter"}
	case !lower:
		return &domain.PasswordPolicyError{Reason: "password must contain at least one lowercase letter"}
	case !digit:
		return &domain.PasswordPolicyError{Reason: "password must contain at least one digit"}
	case !symbol:
		return &domain.PasswordPolicyError{Reason: "password must contain at least one special character"}
	}
	return nil
}
