package usecase

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingFields indicates a request left one or more required fields empty.
	ErrMissingFields = errors.New("all fields are required")
	// ErrDuplicateAccount indicates the email is already registered.
	ErrDuplicateAccount = errors.New("account already exists")
	// ErrAccountNotFound indicates no account matches the email.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountLocked indicates the account is locked and rejects all logins,
	// correct password included, until an administrator unlocks it.
	ErrAccountLocked = errors.New("account is locked")
	// ErrInvalidCredentials indicates the identity or password did not match.
	// Deliberately carries no detail about which of the two failed.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrPasswordPolicyViolation indicates the password does not satisfy complexity requirements.
	ErrPasswordPolicyViolation = errors.New("password does not meet complexity requirements")
	// ErrPasswordConfirmMismatch indicates the new password and its confirmation differ.
	ErrPasswordConfirmMismatch = errors.New("password confirmation does not match")
	// ErrNotAuthorized indicates the caller lacks the administrator role.
	ErrNotAuthorized = errors.New("administrator role required")
)

// BadCredentialsError reports a failed login against a known account together
// with how many attempts remain before the lock engages.
type BadCredentialsError struct {
	RetriesLeft int
}

func (e *BadCredentialsError) Error() string {
	return fmt.Sprintf("invalid credentials, %d attempts remaining", e.RetriesLeft)
}

// Unwrap lets callers match the generic sentinel with errors.Is.
func (e *BadCredentialsError) Unwrap() error {
	return ErrInvalidCredentials
}

// ReusedPasswordError reports that a proposed password collides with one of
// the recently used digests.
type ReusedPasswordError struct {
	HistorySize int
}

func (e *ReusedPasswordError) Error() string {
	return fmt.Sprintf("password matches one of the last %d passwords", e.HistorySize)
}
