package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/razbensimon/hit-computer-security-project/internal/core/domain"
	"github.com/razbensimon/hit-computer-security-project/internal/core/port"
	"github.com/razbensimon/hit-computer-security-project/internal/repository"
)

func TestAccountRepository_CreateSeedsHistory(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewAccountRepository(mock)

	now := time.Now().UTC()
	account := domain.Account{
		Email:        "alice@example.com",
		DisplayName:  "Alice",
		PasswordHash: "digest-1",
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO portal\.accounts`).
		WithArgs(
			account.Email,
			account.DisplayName,
			account.PasswordHash,
			account.FailedAttempts,
			account.IsLocked,
			account.ResetPasswordNeeded,
			account.IsAdmin,
			account.Version,
			account.CreatedAt,
			account.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO portal\.account_password_history`).
		WithArgs(pgxmock.AnyArg(), account.Email, account.PasswordHash, account.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	if err := repo.Create(context.Background(), account); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAccountRepository_GetByEmailNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewAccountRepository(mock)

	mock.ExpectQuery(`SELECT .*FROM portal\.accounts`).
		WithArgs("ghost@example.com").
		WillReturnError(pgx.ErrNoRows)

	if _, err := repo.GetByEmail(context.Background(), "ghost@example.com"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAccountRepository_RecordFailedAttemptLocks(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewAccountRepository(mock)

	rows := pgxmock.NewRows([]string{"failed_attempts", "is_locked"}).AddRow(3, true)
	mock.ExpectQuery(`UPDATE portal\.accounts`).
		WithArgs(3, "bob@example.com").
		WillReturnRows(rows)

	state, err := repo.RecordFailedAttempt(context.Background(), "bob@example.com", 3)
	if err != nil {
		t.Fatalf("RecordFailedAttempt returned error: %v", err)
	}
	if state.FailedAttempts != 3 || !state.Locked || !state.JustLocked {
		t.Fatalf("expected lock transition, got %+v", state)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAccountRepository_RecordFailedAttemptAlreadyLocked(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewAccountRepository(mock)

	now := time.Now().UTC()
	mock.ExpectQuery(`UPDATE portal\.accounts`).
		WithArgs(3, "bob@example.com").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`SELECT .*FROM portal\.accounts`).
		WithArgs("bob@example.com").
		WillReturnRows(pgxmock.NewRows([]string{
			"email", "display_name", "password_hash", "failed_attempts", "is_locked", "reset_password_needed", "is_admin", "version", "created_at", "updated_at",
		}).AddRow(
			"bob@example.com", "Bob", "digest-1", 3, true, false, false, int64(4), now, now,
		))

	state, err := repo.RecordFailedAttempt(context.Background(), "bob@example.com", 3)
	if err != nil {
		t.Fatalf("RecordFailedAttempt returned error: %v", err)
	}
	if !state.Locked || state.JustLocked {
		t.Fatalf("expected already-locked state without a new transition, got %+v", state)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAccountRepository_ResetFailedAttemptsMissing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewAccountRepository(mock)

	mock.ExpectExec(`UPDATE portal\.accounts`).
		WithArgs(0, "ghost@example.com").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	if err := repo.ResetFailedAttempts(context.Background(), "ghost@example.com"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAccountRepository_DeleteAbsentAccount(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewAccountRepository(mock)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM portal\.account_password_history`).
		WithArgs("ghost@example.com").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(`DELETE FROM portal\.accounts`).
		WithArgs("ghost@example.com").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectCommit()

	deleted, err := repo.Delete(context.Background(), "ghost@example.com")
	if err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if deleted {
		t.Fatalf("expected deleted=false for an absent account")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAccountRepository_RotatePassword(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewAccountRepository(mock)

	rotation := port.PasswordRotation{
		Email:          "alice@example.com",
		NewHash:        "digest-2",
		HistorySize:    3,
		Version:        5,
		ClearResetFlag: true,
	}

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE portal\.accounts`).
		WithArgs(rotation.NewHash, false, rotation.Email, rotation.Version).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`INSERT INTO portal\.account_password_history`).
		WithArgs(pgxmock.AnyArg(), rotation.Email, rotation.NewHash, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`DELETE FROM portal\.account_password_history`).
		WithArgs(rotation.Email, rotation.HistorySize).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	if err := repo.RotatePassword(context.Background(), rotation); err != nil {
		t.Fatalf("RotatePassword returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAccountRepository_RotatePasswordVersionConflict(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewAccountRepository(mock)

	now := time.Now().UTC()
	rotation := port.PasswordRotation{
		Email:       "alice@example.com",
		NewHash:     "digest-2",
		HistorySize: 3,
		Version:     5,
	}

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE portal\.accounts`).
		WithArgs(rotation.NewHash, rotation.Email, rotation.Version).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery(`SELECT .*FROM portal\.accounts`).
		WithArgs(rotation.Email).
		WillReturnRows(pgxmock.NewRows([]string{
			"email", "display_name", "password_hash", "failed_attempts", "is_locked", "reset_password_needed", "is_admin", "version", "created_at", "updated_at",
		}).AddRow(
			"alice@example.com", "Alice", "digest-1", 0, false, false, false, 6, now, now,
		))
	mock.ExpectRollback()

	if err := repo.RotatePassword(context.Background(), rotation); !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
