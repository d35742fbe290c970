package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/razbensimon/hit-computer-security-project/internal/core/domain"
	"github.com/razbensimon/hit-computer-security-project/internal/core/port"
	"github.com/razbensimon/hit-computer-security-project/internal/infra/logger"
	"github.com/razbensimon/hit-computer-security-project/internal/repository"
)

// AdminService exposes account management to administrators. Every gated
// operation checks the actor's role before touching the store.
type AdminService struct {
	accounts port.AccountRepository
	events   port.EventPublisher
	logger   *zap.Logger
}

// NewAdminService constructs an admin service.
func NewAdminService(accounts port.AccountRepository, events port.EventPublisher, log *zap.Logger) *AdminService {
	return &AdminService{accounts: accounts, events: events, logger: log}
}

// ListAccounts returns all accounts with their lock state. Admin only.
func (s *AdminService) ListAccounts(ctx context.Context, actor domain.Session) ([]domain.Account, error) {
	if !actor.IsAdmin {
		return nil, ErrNotAuthorized
	}

	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	return accounts, nil
}

// CountAccounts returns the total number of registered accounts.
func (s *AdminService) CountAccounts(ctx context.Context) (int, error) {
	count, err := s.accounts.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count accounts: %w", err)
	}
	return count, nil
}

// UnlockAccount clears the lock and the failure counter. Admin only.
func (s *AdminService) UnlockAccount(ctx context.Context, actor domain.Session, email string) error {
	if !actor.IsAdmin {
		return ErrNotAuthorized
	}

	email = strings.TrimSpace(email)
	if email == "" {
		return ErrMissingFields
	}

	if err := s.accounts.Unlock(ctx, email); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("unlock account: %w", err)
	}

	s.logger.Info("account unlocked",
		zap.String("email", logger.MaskEmail(email)),
		zap.String("unlocked_by", logger.MaskEmail(actor.Email)),
	)
	s.publishUnlocked(ctx, email, actor.Email)

	return nil
}

// DeleteAccount removes the account and its password history. Deleting an
// absent email succeeds without effect. Admin only.
func (s *AdminService) DeleteAccount(ctx context.Context, actor domain.Session, email string) error {
	if !actor.IsAdmin {
		return ErrNotAuthorized
	}

	email = strings.TrimSpace(email)
	if email == "" {
		return ErrMissingFields
	}

	deleted, err := s.accounts.Delete(ctx, email)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if !deleted {
		return nil
	}

	s.logger.Info("account deleted",
		zap.String("email", logger.MaskEmail(email)),
		zap.String("deleted_by", logger.MaskEmail(actor.Email)),
	)
	s.publishDeleted(ctx, email, actor.Email)

	return nil
}

func (s *AdminService) publishUnlocked(ctx context.Context, email, actorEmail string) {
	if s.events == nil {
		return
	}

	event := domain.AccountUnlockedEvent{
		EventID:    uuid.NewString(),
		Email:      email,
		UnlockedBy: actorEmail,
		UnlockedAt: time.Now().UTC(),
	}
	if err := s.events.PublishAccountUnlocked(ctx, event); err != nil {
		s.logger.Warn("failed to publish account unlocked event", zap.Error(err))
	}
}

func (s *AdminService) publishDeleted(ctx context.Context, email, actorEmail string) {
	if s.events == nil {
		return
	}

	event := domain.AccountDeletedEvent{
		EventID:   uuid.NewString(),
		Email:     email,
		DeletedBy: actorEmail,
		DeletedAt: time.Now().UTC(),
	}
	if err := s.events.PublishAccountDeleted(ctx, event); err != nil {
		s.logger.Warn("failed to publish account deleted event", zap.Error(err))
	}
}
