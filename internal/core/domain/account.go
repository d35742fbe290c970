package domain

import "time"

// Account mirrors the persisted representation in the accounts table.
// Email is the unique, immutable identity key.
type Account struct {
	Email               string
	DisplayName         string
	PasswordHash        string
	FailedAttempts      int
	IsLocked            bool
	ResetPasswordNeeded bool
	IsAdmin             bool
	Version             int64
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// PasswordHistoryEntry tracks a retained password digest for reuse prevention.
// The history includes the current digest; entries are ordered most-recent-first.
type PasswordHistoryEntry struct {
	ID           string
	AccountEmail string
	PasswordHash string
	SetAt        time.Time
}

// LoginAttemptState reports the counter and lock state after a failed attempt
// has been applied atomically at the store.
type LoginAttemptState struct {
	FailedAttempts int
	Locked         bool
	// JustLocked is true only for the attempt that crossed the threshold.
	JustLocked bool
}
