package port

import (
	"context"
	"time"
)

// RateLimitStore tracks request attempts per identifier over a sliding window.
type RateLimitStore interface {
	// RecordAttempt stores one attempt for the identifier at the given instant.
	RecordAttempt(ctx context.Context, identifier string, at time.Time) error
	// CountAttempts returns the number of attempts inside the window ending at reference.
	CountAttempts(ctx context.Context, identifier string, window time.Duration, reference time.Time) (int, error)
	// TrimWindow drops attempts that fell out of the window relative to reference.
	TrimWindow(ctx context.Context, identifier string, window time.Duration, reference time.Time) error
	// OldestAttempt reports the earliest attempt still inside the window, if any.
	OldestAttempt(ctx context.Context, identifier string, window time.Duration, reference time.Time) (time.Time, bool, error)
}
