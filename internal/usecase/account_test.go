package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/Fragarianos1981/Dr.platiPel/internal/core/domain"
	"github.com/Fragarianos1981/Dr.platiPel/internal/usecase"
)

func newAccountService(accounts *fakeAccountRepo, sessions *fakeSessionStore) *usecase.AccountService {
	return usecase.NewAccountService(accounts, sessions, &fakeEventPublisher{}, zap.NewNop())
}

func TestAccountCreate(t *testing.T) {
	accounts := newFakeAccountRepo()
	svc := newAccountService(accounts, newFakeSessionStore())

	account, err := svc.Create(context.Background(), usecase.CreateAccountInput{
		Username:       "eleni",
		Email:          "eleni@example.com",
		FullName:       "Eleni Ioannou",
		Role:           "secretary",
		Password:       "Sensible8pass",
		SecondPassword: "clinic-shared",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if account.ID == "" || !account.IsActive {
		t.Fatalf("unexpected account: %+v", account)
	}
	if account.FirstName != "Eleni" || account.LastName != "Ioannou" {
		t.Fatalf("full name was not split: %+v", account)
	}
	if !strings.HasPrefix(account.PasswordHash, "argon2id$") {
		t.Fatalf("password was not hashed: %s", account.PasswordHash)
	}
	if account.PasswordHash == "Sensible8pass" {
		t.Fatal("password stored in the clear")
	}
}

func TestAccountCreateValidation(t *testing.T) {
	svc := newAccountService(newFakeAccountRepo(), newFakeSessionStore())

	if _, err := svc.Create(context.Background(), usecase.CreateAccountInput{
		Username: "eleni", Role: "secretary", Password: "Sensible8pass",
	}); !errors.Is(err, usecase.ErrMissingField) {
		t.Fatalf("expected ErrMissingField without second password, got %v", err)
	}

	if _, err := svc.Create(context.Background(), usecase.CreateAccountInput{
		Username: "eleni", Role: "janitor", Password: "Sensible8pass", SecondPassword: "x",
	}); !errors.Is(err, usecase.ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}

	if _, err := svc.Create(context.Background(), usecase.CreateAccountInput{
		Username: "eleni", Role: "secretary", Password: "tiny", SecondPassword: "x",
	}); !errors.Is(err, usecase.ErrPasswordTooWeak) {
		t.Fatalf("expected ErrPasswordTooWeak, got %v", err)
	}
}

func TestAccountDeactivateRevokesSessions(t *testing.T) {
	account := activeAccount(t)
	accounts := newFakeAccountRepo(account)
	sessions := newFakeSessionStore()
	svc := newAccountService(accounts, sessions)

	session := domain.NewSession("sid-1", *account, loginMoment, "", "")
	sessions.sessions[session.ID] = session
	other := domain.NewSession("sid-2", domain.Account{ID: "acc-2"}, loginMoment, "", "")
	sessions.sessions[other.ID] = other

	if err := svc.SetActive(context.Background(), "acc-1", false, "admin-1"); err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}

	if accounts.byID["acc-1"].IsActive {
		t.Fatal("account should be inactive")
	}
	if _, ok := sessions.sessions["sid-1"]; ok {
		t.Fatal("deactivation must revoke the account's sessions")
	}
	if _, ok := sessions.sessions["sid-2"]; !ok {
		t.Fatal("other accounts' sessions must survive")
	}

	// Reactivation does not touch sessions.
	if err := svc.SetActive(context.Background(), "acc-1", true, "admin-1"); err != nil {
		t.Fatalf("reactivate failed: %v", err)
	}
	if !accounts.byID["acc-1"].IsActive {
		t.Fatal("account should be active again")
	}
}

func TestAccountChangePassword(t *testing.T) {
	account := activeAccount(t)
	accounts := newFakeAccountRepo(account)
	sessions := newFakeSessionStore()
	svc := newAccountService(accounts, sessions)

	session := domain.NewSession("sid-1", *account, loginMoment, "", "")
	sessions.sessions[session.ID] = session
	other := domain.NewSession("sid-2", *account, loginMoment, "", "")
	sessions.sessions[other.ID] = other

	if err := svc.ChangePassword(context.Background(), "acc-1", "wrong", "NewSecret9pass", "sid-1"); !errors.Is(err, usecase.ErrWrongPassword) {
		t.Fatalf("expected ErrWrongPassword, got %v", err)
	}
	if err := svc.ChangePassword(context.Background(), "acc-1", "Primary1pass", "tiny", "sid-1"); !errors.Is(err, usecase.ErrPasswordTooWeak) {
		t.Fatalf("expected ErrPasswordTooWeak, got %v", err)
	}

	if err := svc.ChangePassword(context.Background(), "acc-1", "Primary1pass", "NewSecret9pass", "sid-1"); err != nil {
		t.Fatalf("change failed: %v", err)
	}
	if !strings.HasPrefix(accounts.passwords["acc-1"], "argon2id$") {
		t.Fatal("new password was not installed")
	}
	if _, ok := sessions.sessions["sid-1"]; !ok {
		t.Fatal("the caller's own session must survive the password change")
	}
	if _, ok := sessions.sessions["sid-2"]; ok {
		t.Fatal("other sessions must be revoked after a password change")
	}
}

func TestAccountChangePasswordForeignKeepSessionNotRestored(t *testing.T) {
	account := activeAccount(t)
	accounts := newFakeAccountRepo(account)
	sessions := newFakeSessionStore()
	svc := newAccountService(accounts, sessions)

	// A session id belonging to someone else must not be resurrected.
	foreign := domain.NewSession("sid-foreign", domain.Account{ID: "acc-2"}, loginMoment, "", "")
	sessions.sessions[foreign.ID] = foreign
	mine := domain.NewSession("sid-1", *account, loginMoment, "", "")
	sessions.sessions[mine.ID] = mine

	if err := svc.ChangePassword(context.Background(), "acc-1", "Primary1pass", "NewSecret9pass", "sid-foreign"); err != nil {
		t.Fatalf("change failed: %v", err)
	}
	if _, ok := sessions.sessions["sid-1"]; ok {
		t.Fatal("the account's sessions must be revoked")
	}
	if _, ok := sessions.sessions["sid-foreign"]; !ok {
		t.Fatal("another account's session must be left alone")
	}
}
