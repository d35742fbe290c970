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
	"github.com/razbensimon/hit-computer-security-project/internal/infra/security"
	"github.com/razbensimon/hit-computer-security-project/internal/repository"
)

// RegistrationService handles new account onboarding.
type RegistrationService struct {
	accounts          port.AccountRepository
	hasher            *security.Hasher
	passwordValidator *security.PasswordValidator
	events            port.EventPublisher
	logger            *zap.Logger
}

// NewRegistrationService constructs a registration service.
func NewRegistrationService(
	accounts port.AccountRepository,
	hasher *security.Hasher,
	validator *security.PasswordValidator,
	events port.EventPublisher,
	log *zap.Logger,
) *RegistrationService {
	if validator == nil {
		validator = security.DefaultPasswordValidator(10)
	}
	return &RegistrationService{
		accounts:          accounts,
		hasher:            hasher,
		passwordValidator: validator,
		events:            events,
		logger:            log,
	}
}

// Register creates an account with the password already hashed and the
// history seeded with the initial digest. Duplicate emails are rejected
// without disturbing the existing account.
func (s *RegistrationService) Register(ctx context.Context, email, displayName, password string) (*domain.Account, error) {
	email = strings.TrimSpace(email)
	displayName = strings.TrimSpace(displayName)
	if email == "" || displayName == "" || password == "" {
		return nil, ErrMissingFields
	}

	if err := s.passwordValidator.Validate(password); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPasswordPolicyViolation, err)
	}

	now := time.Now().UTC()
	account := domain.Account{
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: s.hasher.Hash(password),
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateAccount
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	s.logger.Info("account registered",
		zap.String("email", logger.MaskEmail(account.Email)),
	)
	s.publishRegistered(ctx, account)

	return &account, nil
}

func (s *RegistrationService) publishRegistered(ctx context.Context, account domain.Account) {
	if s.events == nil {
		return
	}

	event := domain.AccountRegisteredEvent{
		EventID:      uuid.NewString(),
		Email:        account.Email,
		DisplayName:  account.DisplayName,
		RegisteredAt: account.CreatedAt,
	}
	if err := s.events.PublishAccountRegistered(ctx, event); err != nil {
		s.logger.Warn("failed to publish account registered event", zap.Error(err))
	}
}
