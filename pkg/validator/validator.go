package validator

import (
	"errors"
	"unicode"
)

var (
	ErrPasswordTooShort = errors.New("password must be at least 8 characters long")
	ErrPasswordTooWeak  = errors.New("password must contain at least one digit and one letter")
)

// Validator checks credentials at registration time. Stored hashes are
// never re-validated, so tightening the policy only affects new accounts.
type Validator interface {
	ValidatePassword(password string) error
}

type passwordValidator struct{}

func NewValidator() Validator {
	return &passwordValidator{}
}

func (v *passwordValidator) ValidatePassword(password string) error {
	if len(password) < 8 {
		return ErrPasswordTooShort
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}

		if hasLetter && hasDigit {
			return nil
		}
	}

	return ErrPasswordTooWeak
}
