package usecase

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap/zaptest"

	"github.com/razbensimon/hit-computer-security-project/internal/core/domain"
	"github.com/razbensimon/hit-computer-security-project/internal/core/port"
	"github.com/razbensimon/hit-computer-security-project/internal/infra/security"
	"github.com/razbensimon/hit-computer-security-project/internal/repository"
)

const strongTestPassword = "Sup3r!SecurePass#7890"

// memoryAccountRepository is a mutex-protected in-memory stand-in with the
// same atomicity guarantees as the Postgres implementation, so concurrency
// tests against it are meaningful.
type memoryAccountRepository struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account
	history  map[string][]domain.PasswordHistoryEntry

	getCalls    int
	listCalls   int
	unlockCalls int
	deleteCalls int
}

func newMemoryAccountRepository() *memoryAccountRepository {
	return &memoryAccountRepository{
		accounts: make(map[string]*domain.Account),
		history:  make(map[string][]domain.PasswordHistoryEntry),
	}
}

func (m *memoryAccountRepository) Create(_ context.Context, account domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.accounts[account.Email]; exists {
		return repository.ErrDuplicate
	}

	stored := account
	m.accounts[account.Email] = &stored
	m.history[account.Email] = []domain.PasswordHistoryEntry{{
		ID:           uuid.NewString(),
		AccountEmail: account.Email,
		PasswordHash: account.PasswordHash,
		SetAt:        account.CreatedAt,
	}}
	return nil
}

func (m *memoryAccountRepository) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.getCalls++
	account, ok := m.accounts[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *account
	return &copied, nil
}

func (m *memoryAccountRepository) List(_ context.Context) ([]domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.listCalls++
	out := make([]domain.Account, 0, len(m.accounts))
	for _, account := range m.accounts {
		out = append(out, *account)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (m *memoryAccountRepository) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.accounts), nil
}

func (m *memoryAccountRepository) RecordFailedAttempt(_ context.Context, email string, threshold int) (*domain.LoginAttemptState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	account, ok := m.accounts[email]
	if !ok {
		return nil, repository.ErrNotFound
	}

	if account.IsLocked {
		return &domain.LoginAttemptState{
			FailedAttempts: account.FailedAttempts,
			Locked:         true,
		}, nil
	}

	account.FailedAttempts++
	account.Version++
	justLocked := account.FailedAttempts >= threshold
	account.IsLocked = justLocked

	return &domain.LoginAttemptState{
		FailedAttempts: account.FailedAttempts,
		Locked:         account.IsLocked,
		JustLocked:     justLocked,
	}, nil
}

func (m *memoryAccountRepository) ResetFailedAttempts(_ context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	account, ok := m.accounts[email]
	if !ok {
		return repository.ErrNotFound
	}
	account.FailedAttempts = 0
	account.Version++
	return nil
}

func (m *memoryAccountRepository) Unlock(_ context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.unlockCalls++
	account, ok := m.accounts[email]
	if !ok {
		return repository.ErrNotFound
	}
	account.IsLocked = false
	account.FailedAttempts = 0
	account.Version++
	return nil
}

func (m *memoryAccountRepository) Delete(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.deleteCalls++
	if _, ok := m.accounts[email]; !ok {
		return false, nil
	}
	delete(m.accounts, email)
	delete(m.history, email)
	return true, nil
}

func (m *memoryAccountRepository) ListPasswordHistory(_ context.Context, email string, limit int) ([]domain.PasswordHistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := m.history[email]
	out := make([]domain.PasswordHistoryEntry, len(entries))
	copy(out, entries)
	sort.Slice(out, func(i, j int) bool { return out[i].SetAt.After(out[j].SetAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memoryAccountRepository) RotatePassword(_ context.Context, rotation port.PasswordRotation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	account, ok := m.accounts[rotation.Email]
	if !ok {
		return repository.ErrNotFound
	}
	if account.Version != rotation.Version {
		return repository.ErrConflict
	}

	account.PasswordHash = rotation.NewHash
	account.Version++
	if rotation.SetResetFlag {
		account.ResetPasswordNeeded = true
	}
	if rotation.ClearResetFlag {
		account.ResetPasswordNeeded = false
	}

	entries := append(m.history[rotation.Email], domain.PasswordHistoryEntry{
		ID:           uuid.NewString(),
		AccountEmail: rotation.Email,
		PasswordHash: rotation.NewHash,
		SetAt:        time.Now().UTC(),
	})
	sort.Slice(entries, func(i, j int) bool { return entries[i].SetAt.After(entries[j].SetAt) })
	if rotation.HistorySize > 0 && len(entries) > rotation.HistorySize {
		entries = entries[:rotation.HistorySize]
	}
	m.history[rotation.Email] = entries

	return nil
}

var _ port.AccountRepository = (*memoryAccountRepository)(nil)

// stubEventPublisher records published events.
type stubEventPublisher struct {
	mu              sync.Mutex
	registered      []domain.AccountRegisteredEvent
	locked          []domain.AccountLockedEvent
	unlocked        []domain.AccountUnlockedEvent
	passwordChanged []domain.PasswordChangedEvent
	resetRequested  []domain.PasswordResetRequestedEvent
	deleted         []domain.AccountDeletedEvent
}

func (s *stubEventPublisher) PublishAccountRegistered(_ context.Context, event domain.AccountRegisteredEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registered = append(s.registered, event)
	return nil
}

func (s *stubEventPublisher) PublishAccountLocked(_ context.Context, event domain.AccountLockedEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locked = append(s.locked, event)
	return nil
}

func (s *stubEventPublisher) PublishAccountUnlocked(_ context.Context, event domain.AccountUnlockedEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unlocked = append(s.unlocked, event)
	return nil
}

func (s *stubEventPublisher) PublishPasswordChanged(_ context.Context, event domain.PasswordChangedEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.passwordChanged = append(s.passwordChanged, event)
	return nil
}

func (s *stubEventPublisher) PublishPasswordResetRequested(_ context.Context, event domain.PasswordResetRequestedEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetRequested = append(s.resetRequested, event)
	return nil
}

func (s *stubEventPublisher) PublishAccountDeleted(_ context.Context, event domain.AccountDeletedEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, event)
	return nil
}

func (s *stubEventPublisher) lockedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.locked)
}

var _ port.EventPublisher = (*stubEventPublisher)(nil)

// stubNotifier records temporary password notices.
type stubNotifier struct {
	mu      sync.Mutex
	notices []port.TemporaryPasswordNotice
	err     error
}

func (s *stubNotifier) SendTemporaryPassword(_ context.Context, notice port.TemporaryPasswordNotice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.notices = append(s.notices, notice)
	return nil
}

var _ port.Notifier = (*stubNotifier)(nil)

// memoryCustomerRepository is an in-memory customer store.
type memoryCustomerRepository struct {
	mu        sync.Mutex
	customers []domain.Customer
}

func (m *memoryCustomerRepository) Insert(_ context.Context, customer domain.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.customers = append(m.customers, customer)
	return nil
}

func (m *memoryCustomerRepository) List(_ context.Context) ([]domain.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Customer, len(m.customers))
	copy(out, m.customers)
	return out, nil
}

var _ port.CustomerRepository = (*memoryCustomerRepository)(nil)

func newTestHasher(t *testing.T) *security.Hasher {
	t.Helper()

	// Fast parameters keep the suite quick while preserving determinism.
	hasher, err := security.NewHasher("unit-test-secret-salt", security.HasherConfig{
		Memory:      8 * 1024,
		Iterations:  1,
		Parallelism: 1,
		KeyLength:   16,
	})
	if err != nil {
		t.Fatalf("NewHasher returned error: %v", err)
	}
	return hasher
}

func newTestCodec(t *testing.T) *security.SessionTokenCodec {
	t.Helper()

	codec, err := security.NewSessionTokenCodec("unit-test-signing-key", "customer-portal", 30*time.Minute)
	if err != nil {
		t.Fatalf("NewSessionTokenCodec returned error: %v", err)
	}
	return codec
}

type serviceFixture struct {
	accounts     *memoryAccountRepository
	events       *stubEventPublisher
	notifier     *stubNotifier
	hasher       *security.Hasher
	codec        *security.SessionTokenCodec
	auth         *AuthService
	registration *RegistrationService
	password     *PasswordService
	admin        *AdminService
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	accounts := newMemoryAccountRepository()
	events := &stubEventPublisher{}
	notifier := &stubNotifier{}
	hasher := newTestHasher(t)
	codec := newTestCodec(t)
	log := zaptest.NewLogger(t)
	validator := security.NewPasswordValidator(security.MinLengthRule(10))

	return &serviceFixture{
		accounts:     accounts,
		events:       events,
		notifier:     notifier,
		hasher:       hasher,
		codec:        codec,
		auth:         NewAuthService(accounts, hasher, codec, events, log, 3),
		registration: NewRegistrationService(accounts, hasher, validator, events, log),
		password:     NewPasswordService(accounts, hasher, validator, notifier, events, log, 3, 12),
		admin:        NewAdminService(accounts, events, log),
	}
}

func (f *serviceFixture) register(t *testing.T, email, displayName, password string) *domain.Account {
	t.Helper()

	account, err := f.registration.Register(context.Background(), email, displayName, password)
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	return account
}
