package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/razbensimon/hit-computer-security-project/internal/core/domain"
	"github.com/razbensimon/hit-computer-security-project/internal/core/port"
	"github.com/razbensimon/hit-computer-security-project/internal/infra/logger"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for
// development environments without a broker.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(log *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: log}
}

func (p *StubPublisher) logEvent(eventType, email string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("Stub event published",
		zap.String("event_type", eventType),
		zap.String("email", logger.MaskEmail(email)),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishAccountRegistered logs portal.account.registered events.
func (p *StubPublisher) PublishAccountRegistered(_ context.Context, event domain.AccountRegisteredEvent) error {
	payload := map[string]any{
		"display_name":  event.DisplayName,
		"registered_at": event.RegisteredAt,
		"metadata":      event.Metadata,
	}
	p.logEvent("account.registered", event.Email, event.RegisteredAt, payload)
	return nil
}

// PublishAccountLocked logs portal.account.locked events.
func (p *StubPublisher) PublishAccountLocked(_ context.Context, event domain.AccountLockedEvent) error {
	payload := map[string]any{
		"failed_attempts": event.FailedAttempts,
		"locked_at":       event.LockedAt,
		"metadata":        event.Metadata,
	}
	p.logEvent("account.locked", event.Email, event.LockedAt, payload)
	return nil
}

// PublishAccountUnlocked logs portal.account.unlocked events.
func (p *StubPublisher) PublishAccountUnlocked(_ context.Context, event domain.AccountUnlockedEvent) error {
	payload := map[string]any{
		"unlocked_by": logger.MaskEmail(event.UnlockedBy),
		"unlocked_at": event.UnlockedAt,
		"metadata":    event.Metadata,
	}
	p.logEvent("account.unlocked", event.Email, event.UnlockedAt, payload)
	return nil
}

// PublishPasswordChanged logs portal.account.password.changed events.
func (p *StubPublisher) PublishPasswordChanged(_ context.Context, event domain.PasswordChangedEvent) error {
	payload := map[string]any{
		"changed_at": event.ChangedAt,
		"forced":     event.Forced,
		"metadata":   event.Metadata,
	}
	p.logEvent("account.password.changed", event.Email, event.ChangedAt, payload)
	return nil
}

// PublishPasswordResetRequested logs portal.account.password.reset_requested events.
func (p *StubPublisher) PublishPasswordResetRequested(_ context.Context, event domain.PasswordResetRequestedEvent) error {
	payload := map[string]any{
		"masked_destination": event.MaskedDestination,
		"requested_at":       event.RequestedAt,
		"metadata":           event.Metadata,
	}
	p.logEvent("account.password.reset_requested", event.Email, event.RequestedAt, payload)
	return nil
}

// PublishAccountDeleted logs portal.account.deleted events.
func (p *StubPublisher) PublishAccountDeleted(_ context.Context, event domain.AccountDeletedEvent) error {
	payload := map[string]any{
		"deleted_by": logger.MaskEmail(event.DeletedBy),
		"deleted_at": event.DeletedAt,
		"metadata":   event.Metadata,
	}
	p.logEvent("account.deleted", event.Email, event.DeletedAt, payload)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
