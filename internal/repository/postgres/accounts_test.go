package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/Fragarianos1981/Dr.platiPel/internal/core/domain"
	"github.com/Fragarianos1981/Dr.platiPel/internal/core/port"
	"github.com/Fragarianos1981/Dr.platiPel/internal/repository"
)

var accountColumns = []string{
	"id", "username", "email", "first_name", "last_name", "role",
	"password_hash", "second_password", "is_active", "created_at",
	"last_login", "reset_token_hash", "reset_token_expires_at", "reset_token_used_at",
}

func TestAccountRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewAccountRepository(mock)

	createdAt := time.Now().UTC()
	account := domain.Account{
		ID:             "acc-1",
		Username:       "maria",
		Email:          "maria@example.com",
		FirstName:      "Maria",
		LastName:       "Papadopoulou",
		Role:           domain.RoleDoctor,
		PasswordHash:   "argon2id$v=19$m=65536,t=3,p=2$salt$hash",
		SecondPassword: "clinic-shared",
		IsActive:       true,
		CreatedAt:      createdAt,
	}

	mock.ExpectExec(`INSERT INTO plati\.accounts`).
		WithArgs(
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
			(*time.Time)(nil),
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Create(context.Background(), account); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAccountRepository_CreateDuplicate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewAccountRepository(mock)

	mock.ExpectExec(`INSERT INTO plati\.accounts`).
		WithArgs(
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
		).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err = repo.Create(context.Background(), domain.Account{ID: "acc-1", Username: "maria"})
	if !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAccountRepository_GetByUsername(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewAccountRepository(mock)

	createdAt := time.Now().UTC()
	lastLogin := createdAt.Add(-2 * time.Hour)
	tokenHash := "abc123"

	rows := pgxmock.NewRows(accountColumns).AddRow(
		"acc-1", "maria", "maria@example.com", "Maria", "Papadopoulou", "doctor",
		"argon2id$hash", "clinic-shared", true, createdAt,
		&lastLogin, tokenHash, nil, nil,
	)

	mock.ExpectQuery(`SELECT .*FROM plati\.accounts`).
		WithArgs("maria").
		WillReturnRows(rows)

	account, err := repo.GetByUsername(context.Background(), "maria")
	if err != nil {
		t.Fatalf("GetByUsername returned error: %v", err)
	}
	if account.ID != "acc-1" || account.Role != domain.RoleDoctor {
		t.Fatalf("unexpected account: %+v", account)
	}
	if account.LastLogin == nil || !account.LastLogin.Equal(lastLogin) {
		t.Fatal("expected last login to be populated")
	}
	if account.ResetTokenHash == nil || *account.ResetTokenHash != tokenHash {
		t.Fatal("expected reset token hash to be populated")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAccountRepository_GetByUsernameNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewAccountRepository(mock)

	mock.ExpectQuery(`SELECT .*FROM plati\.accounts`).
		WithArgs("ghost").
		WillReturnError(pgx.ErrNoRows)

	if _, err := repo.GetByUsername(context.Background(), "ghost"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAccountRepository_UpdateLastLogin(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewAccountRepository(mock)

	at := time.Now().UTC()

	mock.ExpectExec(`UPDATE plati\.accounts`).
		WithArgs(at, "acc-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.UpdateLastLogin(context.Background(), "acc-1", at); err != nil {
		t.Fatalf("UpdateLastLogin returned error: %v", err)
	}

	mock.ExpectExec(`UPDATE plati\.accounts`).
		WithArgs(at, "acc-missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	if err := repo.UpdateLastLogin(context.Background(), "acc-missing", at); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing row, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAccountRepository_MarkResetTokenUsedOnce(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewAccountRepository(mock)

	usedAt := time.Now().UTC()

	mock.ExpectExec(`UPDATE plati\.accounts`).
		WithArgs(usedAt, "acc-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.MarkResetTokenUsed(context.Background(), "acc-1", usedAt); err != nil {
		t.Fatalf("MarkResetTokenUsed returned error: %v", err)
	}

	// An already consumed token matches no rows.
	mock.ExpectExec(`UPDATE plati\.accounts`).
		WithArgs(usedAt, "acc-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	if err := repo.MarkResetTokenUsed(context.Background(), "acc-1", usedAt); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on replay, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAccountRepository_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewAccountRepository(mock)

	now := time.Now().UTC()

	rows := pgxmock.NewRows(accountColumns).AddRow(
		"acc-1", "maria", "maria@example.com", "Maria", "Papadopoulou", "doctor",
		"hash", "shared", true, now, nil, nil, nil, nil,
	).AddRow(
		"acc-2", "nikos", "nikos@example.com", "Nikos", "Georgiou", "secretary",
		"hash", "shared", true, now, nil, nil, nil, nil,
	)

	mock.ExpectQuery(`SELECT .*FROM plati\.accounts`).WillReturnRows(rows)

	accounts, err := repo.List(context.Background(), port.AccountFilter{})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(accounts) != 2 {
		t.Fatalf("expected two accounts, got %d", len(accounts))
	}
	if accounts[1].Role != domain.RoleSecretary {
		t.Fatalf("unexpected role: %s", accounts[1].Role)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
