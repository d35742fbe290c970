package domain

import "time"

// AccountRegisteredEvent represents the payload for portal.account.registered messages.
type AccountRegisteredEvent struct {
	EventID      string
	Email        string
	DisplayName  string
	RegisteredAt time.Time
	Metadata     map[string]any
}

// AccountLockedEvent represents the payload for portal.account.locked messages.
// Published exactly once, on the failed attempt that crossed the threshold.
type AccountLockedEvent struct {
	EventID        string
	Email          string
	FailedAttempts int
	LockedAt       time.Time
	Metadata       map[string]any
}

// AccountUnlockedEvent represents the payload for portal.account.unlocked messages.
type AccountUnlockedEvent struct {
	EventID    string
	Email      string
	UnlockedBy string
	UnlockedAt time.Time
	Metadata   map[string]any
}

// PasswordChangedEvent represents the payload for portal.account.password.changed messages.
type PasswordChangedEvent struct {
	EventID   string
	Email     string
	ChangedAt time.Time
	Forced    bool
	Metadata  map[string]any
}

// PasswordResetRequestedEvent represents the payload for
// portal.account.password.reset_requested messages. The temporary credential
// itself never appears in the event.
type PasswordResetRequestedEvent struct {
	EventID           string
	Email             string
	MaskedDestination string
	RequestedAt       time.Time
	Metadata          map[string]any
}

// AccountDeletedEvent represents the payload for portal.account.deleted messages.
type AccountDeletedEvent struct {
	EventID   string
	Email     string
	DeletedBy string
	DeletedAt time.Time
	Metadata  map[string]any
}
