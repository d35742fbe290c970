package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/razbensimon/hit-computer-security-project/internal/core/domain"
	"github.com/razbensimon/hit-computer-security-project/internal/core/port"
	"github.com/razbensimon/hit-computer-security-project/internal/infra/config"
)

const schemaVersion = "1.0"

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	Email     string           `json:"email,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType, email string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	metadata := envelopeMetadata{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		Email:     email,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata:  metadata,
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishAccountRegistered publishes portal.account.registered events.
func (p *EventPublisher) PublishAccountRegistered(ctx context.Context, event domain.AccountRegisteredEvent) error {
	payload := struct {
		Email        string         `json:"email"`
		DisplayName  string         `json:"display_name"`
		RegisteredAt time.Time      `json:"registered_at"`
		Metadata     map[string]any `json:"metadata,omitempty"`
	}{
		Email:        event.Email,
		DisplayName:  event.DisplayName,
		RegisteredAt: event.RegisteredAt.UTC(),
		Metadata:     event.Metadata,
	}

	return p.publish(ctx, event.EventID, "account.registered", event.Email, event.RegisteredAt, payload)
}

// PublishAccountLocked publishes portal.account.locked events.
func (p *EventPublisher) PublishAccountLocked(ctx context.Context, event domain.AccountLockedEvent) error {
	payload := struct {
		Email          string         `json:"email"`
		FailedAttempts int            `json:"failed_attempts"`
		LockedAt       time.Time      `json:"locked_at"`
		Metadata       map[string]any `json:"metadata,omitempty"`
	}{
		Email:          event.Email,
		FailedAttempts: event.FailedAttempts,
		LockedAt:       event.LockedAt.UTC(),
		Metadata:       event.Metadata,
	}

	return p.publish(ctx, event.EventID, "account.locked", event.Email, event.LockedAt, payload)
}

// PublishAccountUnlocked publishes portal.account.unlocked events.
func (p *EventPublisher) PublishAccountUnlocked(ctx context.Context, event domain.AccountUnlockedEvent) error {
	payload := struct {
		Email      string         `json:"email"`
		UnlockedBy string         `json:"unlocked_by"`
		UnlockedAt time.Time      `json:"unlocked_at"`
		Metadata   map[string]any `json:"metadata,omitempty"`
	}{
		Email:      event.Email,
		UnlockedBy: event.UnlockedBy,
		UnlockedAt: event.UnlockedAt.UTC(),
		Metadata:   event.Metadata,
	}

	return p.publish(ctx, event.EventID, "account.unlocked", event.Email, event.UnlockedAt, payload)
}

// PublishPasswordChanged publishes portal.account.password.changed events.
// The payload carries flags only, never credential material.
func (p *EventPublisher) PublishPasswordChanged(ctx context.Context, event domain.PasswordChangedEvent) error {
	payload := struct {
		Email     string         `json:"email"`
		ChangedAt time.Time      `json:"changed_at"`
		Forced    bool           `json:"forced"`
		Metadata  map[string]any `json:"metadata,omitempty"`
	}{
		Email:     event.Email,
		ChangedAt: event.ChangedAt.UTC(),
		Forced:    event.Forced,
		Metadata:  event.Metadata,
	}

	return p.publish(ctx, event.EventID, "account.password.changed", event.Email, event.ChangedAt, payload)
}

// PublishPasswordResetRequested publishes portal.account.password.reset_requested events.
func (p *EventPublisher) PublishPasswordResetRequested(ctx context.Context, event domain.PasswordResetRequestedEvent) error {
	payload := struct {
		Email             string         `json:"email"`
		MaskedDestination string         `json:"masked_destination,omitempty"`
		RequestedAt       time.Time      `json:"requested_at"`
		Metadata          map[string]any `json:"metadata,omitempty"`
	}{
		Email:             event.Email,
		MaskedDestination: event.MaskedDestination,
		RequestedAt:       event.RequestedAt.UTC(),
		Metadata:          event.Metadata,
	}

	return p.publish(ctx, event.EventID, "account.password.reset_requested", event.Email, event.RequestedAt, payload)
}

// PublishAccountDeleted publishes portal.account.deleted events.
func (p *EventPublisher) PublishAccountDeleted(ctx context.Context, event domain.AccountDeletedEvent) error {
	payload := struct {
		Email     string         `json:"email"`
		DeletedBy string         `json:"deleted_by"`
		DeletedAt time.Time      `json:"deleted_at"`
		Metadata  map[string]any `json:"metadata,omitempty"`
	}{
		Email:     event.Email,
		DeletedBy: event.DeletedBy,
		DeletedAt: event.DeletedAt.UTC(),
		Metadata:  event.Metadata,
	}

	return p.publish(ctx, event.EventID, "account.deleted", event.Email, event.DeletedAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
