package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	uuid "github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/razbensimon/hit-computer-security-project/internal/core/domain"
	"github.com/razbensimon/hit-computer-security-project/internal/core/port"
	"github.com/razbensimon/hit-computer-security-project/internal/repository"
)

type accountExecutor interface {
	pgExecutor
	pgTxBeginner
}

// AccountRepository implements port.AccountRepository using PostgreSQL.
type AccountRepository struct {
	exec    accountExecutor
	builder squirrel.StatementBuilderType
}

// NewAccountRepository constructs a repository backed by any executor that can
// also begin transactions (pool or mock).
func NewAccountRepository(exec accountExecutor) *AccountRepository {
	return &AccountRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var accountColumns = []string{
	"email",
	"display_name",
	"password_hash",
	"failed_attempts",
	"is_locked",
	"reset_password_needed",
	"is_admin",
	"version",
	"created_at",
	"updated_at",
}

// Create inserts the account row and seeds the password history with the
// initial digest inside one transaction.
func (r *AccountRepository) Create(ctx context.Context, account domain.Account) error {
	tx, err := r.exec.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create account: %w", err)
	}

	if err := r.createInTx(ctx, tx, account); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit create account: %w", err)
	}

	return nil
}

func (r *AccountRepository) createInTx(ctx context.Context, tx pgx.Tx, account domain.Account) error {
	stmt, args, err := r.builder.Insert("portal.accounts").
		Columns(accountColumns...).
		Values(
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
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert account sql: %w", err)
	}

	if _, err := tx.Exec(ctx, stmt, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("insert account: %w", err)
	}

	return r.insertHistory(ctx, tx, account.Email, account.PasswordHash, account.CreatedAt)
}

// GetByEmail retrieves an account by its identity key.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	stmt, args, err := r.builder.
		Select(accountColumns...).
		From("portal.accounts").
		Where(squirrel.Eq{"email": email}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select account sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var account domain.Account
	if err := row.Scan(
		&account.Email,
		&account.DisplayName,
		&account.PasswordHash,
		&account.FailedAttempts,
		&account.IsLocked,
		&account.ResetPasswordNeeded,
		&account.IsAdmin,
		&account.Version,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}

	return &account, nil
}

// List returns all accounts ordered by registration time.
func (r *AccountRepository) List(ctx context.Context) ([]domain.Account, error) {
	stmt, args, err := r.builder.
		Select(accountColumns...).
		From("portal.accounts").
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list accounts sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	accounts := make([]domain.Account, 0)
	for rows.Next() {
		var account domain.Account
		if err := rows.Scan(
			&account.Email,
			&account.DisplayName,
			&account.PasswordHash,
			&account.FailedAttempts,
			&account.IsLocked,
			&account.ResetPasswordNeeded,
			&account.IsAdmin,
			&account.Version,
			&account.CreatedAt,
			&account.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}

	return accounts, nil
}

// Count returns the total number of registered accounts.
func (r *AccountRepository) Count(ctx context.Context) (int, error) {
	stmt, args, err := r.builder.Select("COUNT(*)").
		From("portal.accounts").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count accounts sql: %w", err)
	}

	var count int64
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("scan accounts count: %w", err)
	}

	return int(count), nil
}

// RecordFailedAttempt applies the increment-and-maybe-lock transition as one
// conditional UPDATE so concurrent failures cannot both skip the lock. The
// statement only matches unlocked rows; an already locked account is left
// untouched and reported as locked.
func (r *AccountRepository) RecordFailedAttempt(ctx context.Context, email string, threshold int) (*domain.LoginAttemptState, error) {
	stmt, args, err := r.builder.Update("portal.accounts").
		Set("failed_attempts", squirrel.Expr("failed_attempts + 1")).
		Set("is_locked", squirrel.Expr("failed_attempts + 1 >= ?", threshold)).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"email": email}).
		Where("NOT is_locked").
		Suffix("RETURNING failed_attempts, is_locked").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build record failed attempt sql: %w", err)
	}

	var state domain.LoginAttemptState
	err = r.exec.QueryRow(ctx, stmt, args...).Scan(&state.FailedAttempts, &state.Locked)
	if err == nil {
		state.JustLocked = state.Locked
		return &state, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("record failed attempt: %w", err)
	}

	// No unlocked row matched: the account is either absent or already locked.
	account, err := r.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !account.IsLocked {
		return nil, fmt.Errorf("record failed attempt: unexpected state for %s", email)
	}

	return &domain.LoginAttemptState{
		FailedAttempts: account.FailedAttempts,
		Locked:         true,
		JustLocked:     false,
	}, nil
}

// ResetFailedAttempts zeroes the failure counter after a successful login.
func (r *AccountRepository) ResetFailedAttempts(ctx context.Context, email string) error {
	stmt, args, err := r.builder.Update("portal.accounts").
		Set("failed_attempts", 0).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"email": email}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build reset attempts sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("reset failed attempts: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Unlock clears the lock flag and the failure counter.
func (r *AccountRepository) Unlock(ctx context.Context, email string) error {
	stmt, args, err := r.builder.Update("portal.accounts").
		Set("is_locked", false).
		Set("failed_attempts", 0).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"email": email}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build unlock sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("unlock account: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes the account and its password history. Absent accounts are
// reported as deleted=false, not as an error.
func (r *AccountRepository) Delete(ctx context.Context, email string) (bool, error) {
	tx, err := r.exec.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin delete account: %w", err)
	}

	deleted, err := r.deleteInTx(ctx, tx, email)
	if err != nil {
		_ = tx.Rollback(ctx)
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit delete account: %w", err)
	}

	return deleted, nil
}

func (r *AccountRepository) deleteInTx(ctx context.Context, tx pgx.Tx, email string) (bool, error) {
	historyStmt, historyArgs, err := r.builder.Delete("portal.account_password_history").
		Where(squirrel.Eq{"account_email": email}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build delete history sql: %w", err)
	}
	if _, err := tx.Exec(ctx, historyStmt, historyArgs...); err != nil {
		return false, fmt.Errorf("delete password history: %w", err)
	}

	stmt, args, err := r.builder.Delete("portal.accounts").
		Where(squirrel.Eq{"email": email}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build delete account sql: %w", err)
	}

	ct, err := tx.Exec(ctx, stmt, args...)
	if err != nil {
		return false, fmt.Errorf("delete account: %w", err)
	}

	return ct.RowsAffected() > 0, nil
}

// ListPasswordHistory retrieves the most recent password digests, newest first.
func (r *AccountRepository) ListPasswordHistory(ctx context.Context, email string, limit int) ([]domain.PasswordHistoryEntry, error) {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return nil, fmt.Errorf("email is required")
	}

	builder := r.builder.Select("id", "account_email", "password_hash", "set_at").
		From("portal.account_password_history").
		Where(squirrel.Eq{"account_email": trimmed}).
		OrderBy("set_at DESC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	stmt, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select password history sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query password history: %w", err)
	}
	defer rows.Close()

	history := make([]domain.PasswordHistoryEntry, 0)
	for rows.Next() {
		var entry domain.PasswordHistoryEntry
		if err := rows.Scan(&entry.ID, &entry.AccountEmail, &entry.PasswordHash, &entry.SetAt); err != nil {
			return nil, fmt.Errorf("scan password history: %w", err)
		}
		history = append(history, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate password history: %w", err)
	}

	return history, nil
}

// RotatePassword replaces the digest, adjusts the reset flag, appends the new
// digest to the history, and trims the history to the configured bound, all
// inside one transaction guarded by the record version.
func (r *AccountRepository) RotatePassword(ctx context.Context, rotation port.PasswordRotation) error {
	tx, err := r.exec.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin rotate password: %w", err)
	}

	if err := r.rotateInTx(ctx, tx, rotation); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit rotate password: %w", err)
	}

	return nil
}

func (r *AccountRepository) rotateInTx(ctx context.Context, tx pgx.Tx, rotation port.PasswordRotation) error {
	update := r.builder.Update("portal.accounts").
		Set("password_hash", rotation.NewHash).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"email": rotation.Email}).
		Where(squirrel.Eq{"version": rotation.Version})

	if rotation.SetResetFlag {
		update = update.Set("reset_password_needed", true)
	} else if rotation.ClearResetFlag {
		update = update.Set("reset_password_needed", false)
	}

	stmt, args, err := update.ToSql()
	if err != nil {
		return fmt.Errorf("build rotate password sql: %w", err)
	}

	ct, err := tx.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("rotate password: %w", err)
	}
	if ct.RowsAffected() == 0 {
		if _, getErr := r.GetByEmail(ctx, rotation.Email); errors.Is(getErr, repository.ErrNotFound) {
			return repository.ErrNotFound
		}
		return repository.ErrConflict
	}

	if err := r.insertHistory(ctx, tx, rotation.Email, rotation.NewHash, time.Now().UTC()); err != nil {
		return err
	}

	if rotation.HistorySize > 0 {
		if err := r.trimHistory(ctx, tx, rotation.Email, rotation.HistorySize); err != nil {
			return err
		}
	}

	return nil
}

func (r *AccountRepository) insertHistory(ctx context.Context, exec pgExecutor, email, hash string, setAt time.Time) error {
	if setAt.IsZero() {
		setAt = time.Now().UTC()
	}

	stmt, args, err := r.builder.Insert("portal.account_password_history").
		Columns("id", "account_email", "password_hash", "set_at").
		Values(uuid.NewString(), email, hash, setAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert password history sql: %w", err)
	}

	if _, err := exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert password history: %w", err)
	}

	return nil
}

func (r *AccountRepository) trimHistory(ctx context.Context, exec pgExecutor, email string, keep int) error {
	stmt := `DELETE FROM portal.account_password_history
WHERE account_email = $1
  AND id NOT IN (
    SELECT id FROM portal.account_password_history
    WHERE account_email = $1
    ORDER BY set_at DESC
    LIMIT $2
  )`

	if _, err := exec.Exec(ctx, stmt, email, keep); err != nil {
		return fmt.Errorf("trim password history: %w", err)
	}

	return nil
}

var _ port.AccountRepository = (*AccountRepository)(nil)
