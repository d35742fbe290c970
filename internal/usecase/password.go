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

// PasswordService rotates credentials: self-service changes and the
// forgot-password flow with a generated temporary credential.
type PasswordService struct {
	accounts          port.AccountRepository
	hasher            *security.Hasher
	passwordValidator *security.PasswordValidator
	notifier          port.Notifier
	events            port.EventPublisher
	logger            *zap.Logger
	historySize       int
	tempLength        int
}

// NewPasswordService constructs a password service.
func NewPasswordService(
	accounts port.AccountRepository,
	hasher *security.Hasher,
	validator *security.PasswordValidator,
	notifier port.Notifier,
	events port.EventPublisher,
	log *zap.Logger,
	historySize int,
	tempLength int,
) *PasswordService {
	if validator == nil {
		validator = security.DefaultPasswordValidator(10)
	}
	if historySize <= 0 {
		historySize = 3
	}
	if tempLength <= 0 {
		tempLength = 12
	}
	return &PasswordService{
		accounts:          accounts,
		hasher:            hasher,
		passwordValidator: validator,
		notifier:          notifier,
		events:            events,
		logger:            log,
		historySize:       historySize,
		tempLength:        tempLength,
	}
}

// ForgotPassword replaces the password with a generated temporary one, marks
// the account as requiring a change on the next login, and hands the plaintext
// to the notifier exactly once. It is never persisted or logged.
func (s *PasswordService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ErrMissingFields
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("lookup account: %w", err)
	}

	tempPassword, err := security.GenerateTemporaryPassword(s.tempLength)
	if err != nil {
		return fmt.Errorf("generate temporary password: %w", err)
	}

	rotation := port.PasswordRotation{
		Email:        account.Email,
		NewHash:      s.hasher.Hash(tempPassword),
		HistorySize:  s.historySize,
		Version:      account.Version,
		SetResetFlag: true,
	}
	if err := s.accounts.RotatePassword(ctx, rotation); err != nil {
		return fmt.Errorf("rotate password: %w", err)
	}

	if err := s.notifier.SendTemporaryPassword(ctx, port.TemporaryPasswordNotice{
		Email:             account.Email,
		DisplayName:       account.DisplayName,
		TemporaryPassword: tempPassword,
	}); err != nil {
		return fmt.Errorf("send temporary password: %w", err)
	}

	s.logger.Info("temporary password issued",
		zap.String("email", logger.MaskEmail(account.Email)),
	)
	s.publishResetRequested(ctx, account.Email)

	return nil
}

// ChangePassword verifies the current password, enforces the policy and the
// reuse bound, and installs the new password. A successful change clears a
// pending forced-reset mark.
func (s *PasswordService) ChangePassword(ctx context.Context, email, oldPassword, newPassword, confirmPassword string) error {
	email = strings.TrimSpace(email)
	if email == "" || oldPassword == "" || newPassword == "" || confirmPassword == "" {
		return ErrMissingFields
	}
	if newPassword != confirmPassword {
		return ErrPasswordConfirmMismatch
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("lookup account: %w", err)
	}

	if account.IsLocked {
		return ErrAccountLocked
	}

	if !s.hasher.Verify(oldPassword, account.PasswordHash) {
		return ErrInvalidCredentials
	}

	if err := s.passwordValidator.Validate(newPassword); err != nil {
		return fmt.Errorf("%w: %v", ErrPasswordPolicyViolation, err)
	}

	newHash := s.hasher.Hash(newPassword)
	reused, err := s.isReused(ctx, account.Email, newHash)
	if err != nil {
		return err
	}
	if reused {
		return &ReusedPasswordError{HistorySize: s.historySize}
	}

	rotation := port.PasswordRotation{
		Email:          account.Email,
		NewHash:        newHash,
		HistorySize:    s.historySize,
		Version:        account.Version,
		ClearResetFlag: true,
	}
	if err := s.accounts.RotatePassword(ctx, rotation); err != nil {
		return fmt.Errorf("rotate password: %w", err)
	}

	s.logger.Info("password changed",
		zap.String("email", logger.MaskEmail(account.Email)),
		zap.Bool("forced", account.ResetPasswordNeeded),
	)
	s.publishChanged(ctx, account.Email, account.ResetPasswordNeeded)

	return nil
}

// isReused compares the candidate digest against the retained history. The
// deterministic hash makes digest equality equivalent to password equality.
func (s *PasswordService) isReused(ctx context.Context, email, candidateHash string) (bool, error) {
	history, err := s.accounts.ListPasswordHistory(ctx, email, s.historySize)
	if err != nil {
		return false, fmt.Errorf("list password history: %w", err)
	}

	for _, entry := range history {
		if security.DigestsEqual(candidateHash, entry.PasswordHash) {
			return true, nil
		}
	}

	return false, nil
}

func (s *PasswordService) publishResetRequested(ctx context.Context, email string) {
	if s.events == nil {
		return
	}

	event := domain.PasswordResetRequestedEvent{
		EventID:           uuid.NewString(),
		Email:             email,
		MaskedDestination: logger.MaskEmail(email),
		RequestedAt:       time.Now().UTC(),
	}
	if err := s.events.PublishPasswordResetRequested(ctx, event); err != nil {
		s.logger.Warn("failed to publish password reset requested event", zap.Error(err))
	}
}

func (s *PasswordService) publishChanged(ctx context.Context, email string, forced bool) {
	if s.events == nil {
		return
	}

	event := domain.PasswordChangedEvent{
		EventID:   uuid.NewString(),
		Email:     email,
		ChangedAt: time.Now().UTC(),
		Forced:    forced,
	}
	if err := s.events.PublishPasswordChanged(ctx, event); err != nil {
		s.logger.Warn("failed to publish password changed event", zap.Error(err))
	}
}
