package port

import (
	"context"

	"github.com/razbensimon/hit-computer-security-project/internal/core/domain"
)

// PasswordRotation carries everything a store needs to replace a password in
// one atomic unit: update the digest and flags, append the new digest to the
// history, and trim the history to the configured bound.
type PasswordRotation struct {
	Email   string
	NewHash string
	// HistorySize bounds the retained history after the rotation.
	HistorySize int
	// Version is the expected record version; a mismatch aborts the rotation
	// with repository.ErrConflict.
	Version int64
	// SetResetFlag marks the account as requiring a password change on the
	// next login (forgot-password). ClearResetFlag removes a pending mark
	// (change-password). At most one of the two is set.
	SetResetFlag   bool
	ClearResetFlag bool
}

// AccountRepository exposes persistence behavior for credential records.
// Every mutating operation is atomic with respect to a single identity.
type AccountRepository interface {
	// Create inserts the account and seeds its password history with the
	// initial digest. A duplicate email yields repository.ErrDuplicate.
	Create(ctx context.Context, account domain.Account) error
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	List(ctx context.Context) ([]domain.Account, error)
	Count(ctx context.Context) (int, error)

	// RecordFailedAttempt increments the failure counter and flips the lock
	// exactly when the new count reaches threshold, all in one conditional
	// update. Attempts against an already locked account do not mutate state.
	RecordFailedAttempt(ctx context.Context, email string, threshold int) (*domain.LoginAttemptState, error)
	ResetFailedAttempts(ctx context.Context, email string) error
	// Unlock clears the lock and the failure counter.
	Unlock(ctx context.Context, email string) error
	// Delete removes the record and its history. Deleting an absent email
	// reports deleted=false without error.
	Delete(ctx context.Context, email string) (bool, error)

	ListPasswordHistory(ctx context.Context, email string, limit int) ([]domain.PasswordHistoryEntry, error)
	RotatePassword(ctx context.Context, rotation PasswordRotation) error
}
