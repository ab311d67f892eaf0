package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/Fragarianos1981/Dr.platiPel/internal/core/domain"
	"github.com/Fragarianos1981/Dr.platiPel/internal/core/port"
	"github.com/Fragarianos1981/Dr.platiPel/internal/repository"
)

// AccountRepository implements port.AccountRepository using PostgreSQL.
type AccountRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewAccountRepository wires a PostgreSQL-backed account repository. Any
// executor satisfying pgExecutor works, which keeps the repository testable
// against a mocked connection.
func NewAccountRepository(exec pgExecutor) *AccountRepository {
	return &AccountRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithTx returns a repository instance operating within the supplied transaction.
func (r *AccountRepository) WithTx(tx pgx.Tx) *AccountRepository {
	if tx == nil {
		return r
	}
	return &AccountRepository{
		exec:    tx,
		builder: r.builder,
	}
}

// Create inserts a new account row.
func (r *AccountRepository) Create(ctx context.Context, account domain.Account) error {
	query := r.builder.Insert("plati.accounts").
		Columns(
			"id",
			"username",
			"email",
			"first_name",
			"last_name",
			"role",
			"password_hash",
			"second_password",
			"is_active",
			"created_at",
			"last_login",
		).
		Values(
			account.ID,
			account.Username,
			account.Email,
			account.FirstName,
			account.LastName,
			account.Role,
			account.PasswordHash,
			account.SecondPassword,
			account.IsActive,
			account.CreatedAt,
			account.LastLogin,
		)

	stmt, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build insert account sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("insert account: %w", err)
	}

	return nil
}

// GetByID retrieves an account by identifier.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	return r.getBy(ctx, squirrel.Eq{"id": id})
}

// GetByUsername retrieves an account by exact username.
func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	return r.getBy(ctx, squirrel.Eq{"username": username})
}

// GetByEmail retrieves an account by email address.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.getBy(ctx, squirrel.Eq{"email": email})
}

// GetByResetTokenHash retrieves the account holding the provided reset token hash.
func (r *AccountRepository) GetByResetTokenHash(ctx context.Context, tokenHash string) (*domain.Account, error) {
	return r.getBy(ctx, squirrel.Eq{"reset_token_hash": tokenHash})
}

func (r *AccountRepository) getBy(ctx context.Context, cond squirrel.Eq) (*domain.Account, error) {
	stmt, args, err := r.builder.
		Select(
			"id",
			"username",
			"email",
			"first_name",
			"last_name",
			"role",
			"password_hash",
			"second_password",
			"is_active",
			"created_at",
			"last_login",
			"reset_token_hash",
			"reset_token_expires_at",
			"reset_token_used_at",
		).
		From("plati.accounts").
		Where(cond).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select account sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	account, err := scanAccount(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}

	return account, nil
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		account        domain.Account
		role           string
		lastLogin      *time.Time
		resetTokenHash sql.NullString
		resetExpires   *time.Time
		resetUsed      *time.Time
	)

	if err := row.Scan(
		&account.ID,
		&account.Username,
		&account.Email,
		&account.FirstName,
		&account.LastName,
		&role,
		&account.PasswordHash,
		&account.SecondPassword,
		&account.IsActive,
		&account.CreatedAt,
		&lastLogin,
		&resetTokenHash,
		&resetExpires,
		&resetUsed,
	); err != nil {
		return nil, err
	}

	account.Role = domain.Role(role)
	account.LastLogin = lastLogin
	if resetTokenHash.Valid {
		val := resetTokenHash.String
		account.ResetTokenHash = &val
	}
	account.ResetTokenExpiresAt = resetExpires
	account.ResetTokenUsedAt = resetUsed

	return &account, nil
}

// Update modifies an existing account's identity and profile fields.
func (r *AccountRepository) Update(ctx context.Context, account domain.Account) error {
	stmt, args, err := r.builder.Update("plati.accounts").
		Set("username", account.Username).
		Set("email", account.Email).
		Set("first_name", account.FirstName).
		Set("last_name", account.LastName).
		Set("role", account.Role).
		Set("second_password", account.SecondPassword).
		Set("is_active", account.IsActive).
		Where(squirrel.Eq{"id": account.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update account sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("update account: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// SetActive toggles the soft-activation flag.
func (r *AccountRepository) SetActive(ctx context.Context, id string, active bool) error {
	stmt, args, err := r.builder.Update("plati.accounts").
		Set("is_active", active).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build set active sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("set account active: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// UpdateLastLogin stamps the successful login time.
func (r *AccountRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	stmt, args, err := r.builder.Update("plati.accounts").
		Set("last_login", at).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update last login sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// UpdatePassword updates the primary password hash.
func (r *AccountRepository) UpdatePassword(ctx context.Context, id string, passwordHash string, changedAt time.Time) error {
	stmt, args, err := r.builder.Update("plati.accounts").
		Set("password_hash", passwordHash).
		Set("password_changed_at", changedAt).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update password sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// SetResetToken stores the hashed reset token and clears any previous use marker.
func (r *AccountRepository) SetResetToken(ctx context.Context, id string, tokenHash string, expiresAt time.Time) error {
	stmt, args, err := r.builder.Update("plati.accounts").
		Set("reset_token_hash", tokenHash).
		Set("reset_token_expires_at", expiresAt).
		Set("reset_token_used_at", nil).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build set reset token sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("set reset token: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// MarkResetTokenUsed consumes the reset token so it cannot be replayed.
func (r *AccountRepository) MarkResetTokenUsed(ctx context.Context, id string, usedAt time.Time) error {
	stmt, args, err := r.builder.Update("plati.accounts").
		Set("reset_token_used_at", usedAt).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"reset_token_used_at": nil}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build mark reset token used sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("mark reset token used: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// List returns accounts with optional filtering and pagination.
func (r *AccountRepository) List(ctx context.Context, filter port.AccountFilter) ([]domain.Account, error) {
	query := r.builder.Select(
		"id",
		"username",
		"email",
		"first_name",
		"last_name",
		"role",
		"password_hash",
		"second_password",
		"is_active",
		"created_at",
		"last_login",
		"reset_token_hash",
		"reset_token_expires_at",
		"reset_token_used_at",
	).
		From("plati.accounts").
		OrderBy("created_at DESC")

	if filter.Role != "" {
		query = query.Where(squirrel.Eq{"role": filter.Role})
	}

	if filter.IsActive != nil {
		query = query.Where(squirrel.Eq{"is_active": *filter.IsActive})
	}

	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}

	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	stmt, args, err := query.ToSql()
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
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, *account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}

	return accounts, nil
}

// Count returns the total number of accounts matching the filter.
func (r *AccountRepository) Count(ctx context.Context, filter port.AccountFilter) (int, error) {
	query := r.builder.Select("COUNT(*)").
		From("plati.accounts")

	if filter.Role != "" {
		query = query.Where(squirrel.Eq{"role": filter.Role})
	}

	if filter.IsActive != nil {
		query = query.Where(squirrel.Eq{"is_active": *filter.IsActive})
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count accounts sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var count int64
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("scan accounts count: %w", err)
	}

	return int(count), nil
}

var _ port.AccountRepository = (*AccountRepository)(nil)
