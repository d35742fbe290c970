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

// Redirect targets handed to the transport after a successful login.
const (
	RedirectHome           = "home"
	RedirectChangePassword = "change_password"
)

// LoginResult carries the authenticated session and its signed handoff token.
type LoginResult struct {
	Session        domain.Session
	Token          string
	RedirectTarget string
}

// AuthService authenticates accounts and drives the lockout state machine.
type AuthService struct {
	accounts         port.AccountRepository
	hasher           *security.Hasher
	codec            *security.SessionTokenCodec
	events           port.EventPublisher
	logger           *zap.Logger
	lockoutThreshold int
}

// NewAuthService constructs an auth service.
func NewAuthService(
	accounts port.AccountRepository,
	hasher *security.Hasher,
	codec *security.SessionTokenCodec,
	events port.EventPublisher,
	log *zap.Logger,
	lockoutThreshold int,
) *AuthService {
	if lockoutThreshold <= 0 {
		lockoutThreshold = 3
	}
	return &AuthService{
		accounts:         accounts,
		hasher:           hasher,
		codec:            codec,
		events:           events,
		logger:           log,
		lockoutThreshold: lockoutThreshold,
	}
}

// Login verifies the credentials and returns a signed session on success.
// Wrong passwords advance the failure counter; the attempt that reaches the
// threshold locks the account. A locked account rejects every login, correct
// password included, until an administrator unlocks it.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrMissingFields
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Unknown identities get the same rejection as wrong passwords.
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup account: %w", err)
	}

	if account.IsLocked {
		return nil, ErrAccountLocked
	}

	if !s.hasher.Verify(password, account.PasswordHash) {
		return nil, s.handleFailedAttempt(ctx, email)
	}

	if account.FailedAttempts > 0 {
		if err := s.accounts.ResetFailedAttempts(ctx, email); err != nil {
			return nil, fmt.Errorf("reset failed attempts: %w", err)
		}
	}

	session := domain.Session{
		Email:               account.Email,
		DisplayName:         account.DisplayName,
		IsAdmin:             account.IsAdmin,
		ResetPasswordNeeded: account.ResetPasswordNeeded,
	}

	token, err := s.codec.Issue(session)
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}

	target := RedirectHome
	if account.ResetPasswordNeeded {
		target = RedirectChangePassword
	}

	s.logger.Info("login succeeded",
		zap.String("email", logger.MaskEmail(account.Email)),
		zap.Bool("reset_password_needed", account.ResetPasswordNeeded),
	)

	return &LoginResult{Session: session, Token: token, RedirectTarget: target}, nil
}

func (s *AuthService) handleFailedAttempt(ctx context.Context, email string) error {
	state, err := s.accounts.RecordFailedAttempt(ctx, email, s.lockoutThreshold)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidCredentials
		}
		return fmt.Errorf("record failed attempt: %w", err)
	}

	if state.JustLocked {
		s.logger.Warn("account locked after repeated failures",
			zap.String("email", logger.MaskEmail(email)),
			zap.Int("failed_attempts", state.FailedAttempts),
		)
		s.publishLocked(ctx, email, state.FailedAttempts)
		return ErrAccountLocked
	}

	if state.Locked {
		return ErrAccountLocked
	}

	return &BadCredentialsError{RetriesLeft: s.lockoutThreshold - state.FailedAttempts}
}

func (s *AuthService) publishLocked(ctx context.Context, email string, attempts int) {
	if s.events == nil {
		return
	}

	event := domain.AccountLockedEvent{
		EventID:        uuid.NewString(),
		Email:          email,
		FailedAttempts: attempts,
		LockedAt:       time.Now().UTC(),
	}
	if err := s.events.PublishAccountLocked(ctx, event); err != nil {
		s.logger.Warn("failed to publish account locked event", zap.Error(err))
	}
}

// ParseSession validates a session token handed back by a client.
func (s *AuthService) ParseSession(token string) (domain.Session, error) {
	return s.codec.Parse(token)
}
