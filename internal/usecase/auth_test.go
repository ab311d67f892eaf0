package usecase_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/pbkdf2"

	"github.com/Fragarianos1981/Dr.platiPel/internal/core/domain"
	"github.com/Fragarianos1981/Dr.platiPel/internal/infra/security"
	"github.com/Fragarianos1981/Dr.platiPel/internal/usecase"
)

var loginMoment = time.Date(2024, 6, 10, 8, 30, 0, 0, time.UTC)

func activeAccount(t *testing.T) *domain.Account {
	t.Helper()

	hash, err := security.HashPassword("Primary1pass")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	return &domain.Account{
		ID:             "acc-1",
		Username:       "maria",
		Email:          "maria@example.com",
		Role:           domain.RoleDoctor,
		PasswordHash:   hash,
		SecondPassword: "clinic-shared",
		IsActive:       true,
	}
}

func newAuthService(accounts *fakeAccountRepo, sessions *fakeSessionStore, events *fakeEventPublisher) *usecase.AuthService {
	return usecase.NewAuthService(accounts, sessions, events, zap.NewNop()).
		WithClock(func() time.Time { return loginMoment })
}

func login(svc *usecase.AuthService, username, p1, p2 string) (*domain.Session, *domain.Account, error) {
	return svc.Login(context.Background(), usecase.LoginInput{
		Username:  username,
		Password1: p1,
		Password2: p2,
		IP:        "10.0.0.9",
		UserAgent: "test",
	})
}

func TestLoginSuccess(t *testing.T) {
	accounts := newFakeAccountRepo(activeAccount(t))
	sessions := newFakeSessionStore()
	events := &fakeEventPublisher{}
	svc := newAuthService(accounts, sessions, events)

	session, account, err := login(svc, "maria", "Primary1pass", "clinic-shared")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if session.AccountID != "acc-1" || session.Role != domain.RoleDoctor {
		t.Fatalf("session does not match account: %+v", session)
	}
	if want := loginMoment.Add(8 * time.Hour); !session.ExpiresAt.Equal(want) {
		t.Fatalf("expected expiry %v, got %v", want, session.ExpiresAt)
	}
	if _, ok := sessions.sessions[session.ID]; !ok {
		t.Fatal("session was not saved")
	}
	if got, ok := accounts.lastLogin["acc-1"]; !ok || !got.Equal(loginMoment) {
		t.Fatalf("last login not stamped: %v ok=%v", got, ok)
	}
	if account.LastLogin == nil || !account.LastLogin.Equal(loginMoment) {
		t.Fatal("returned account should carry the fresh last login")
	}
	if events.logins != 1 {
		t.Fatalf("expected one login event, got %d", events.logins)
	}
}

func TestLoginMissingFields(t *testing.T) {
	svc := newAuthService(newFakeAccountRepo(activeAccount(t)), newFakeSessionStore(), &fakeEventPublisher{})

	cases := []struct{ username, p1, p2 string }{
		{"", "Primary1pass", "clinic-shared"},
		{"   ", "Primary1pass", "clinic-shared"},
		{"maria", "", "clinic-shared"},
		{"maria", "Primary1pass", ""},
	}

	for _, tc := range cases {
		if _, _, err := login(svc, tc.username, tc.p1, tc.p2); !errors.Is(err, usecase.ErrMissingField) {
			t.Fatalf("expected ErrMissingField for %+v, got %v", tc, err)
		}
	}
}

func TestLoginCollapsesFailureCauses(t *testing.T) {
	svc := newAuthService(newFakeAccountRepo(activeAccount(t)), newFakeSessionStore(), &fakeEventPublisher{})

	cases := []struct {
		name             string
		username, p1, p2 string
	}{
		{"unknown user", "nobody", "Primary1pass", "clinic-shared"},
		{"wrong first password", "maria", "wrong", "clinic-shared"},
		{"wrong second password", "maria", "Primary1pass", "wrong"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := login(svc, tc.username, tc.p1, tc.p2); !errors.Is(err, usecase.ErrInvalidCredentials) {
				t.Fatalf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}
}

func TestLoginInactiveCheckedAfterCredentials(t *testing.T) {
	account := activeAccount(t)
	account.IsActive = false
	svc := newAuthService(newFakeAccountRepo(account), newFakeSessionStore(), &fakeEventPublisher{})

	// Wrong credentials on a disabled account still answer invalid credentials.
	if _, _, err := login(svc, "maria", "wrong", "clinic-shared"); !errors.Is(err, usecase.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	// Correct credentials reveal the disabled state.
	if _, _, err := login(svc, "maria", "Primary1pass", "clinic-shared"); !errors.Is(err, usecase.ErrAccountInactive) {
		t.Fatalf("expected ErrAccountInactive, got %v", err)
	}
}

func TestLoginFailsWhenLastLoginWriteFails(t *testing.T) {
	accounts := newFakeAccountRepo(activeAccount(t))
	accounts.failLastLogin = true
	sessions := newFakeSessionStore()
	svc := newAuthService(accounts, sessions, &fakeEventPublisher{})

	if _, _, err := login(svc, "maria", "Primary1pass", "clinic-shared"); err == nil {
		t.Fatal("expected login to fail when last_login cannot be persisted")
	}
	if len(sessions.sessions) != 0 {
		t.Fatal("no session should exist after a failed login")
	}
}

func TestLoginRehashesLegacyHash(t *testing.T) {
	account := activeAccount(t)

	const password = "Primary1pass"
	salt := "legacysalt99"
	sum := pbkdf2.Key([]byte(password), []byte(salt), 150000, sha256.Size, sha256.New)
	account.PasswordHash = fmt.Sprintf("pbkdf2:sha256:150000$%s$%s", salt, hex.EncodeToString(sum))

	accounts := newFakeAccountRepo(account)
	svc := newAuthService(accounts, newFakeSessionStore(), &fakeEventPublisher{})

	if _, _, err := login(svc, "maria", password, "clinic-shared"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	upgraded, ok := accounts.passwords["acc-1"]
	if !ok {
		t.Fatal("legacy hash was not upgraded on login")
	}
	if !strings.HasPrefix(upgraded, "argon2id$") {
		t.Fatalf("upgraded hash is not argon2id: %s", upgraded)
	}
}

func TestResolveSession(t *testing.T) {
	sessions := newFakeSessionStore()
	svc := newAuthService(newFakeAccountRepo(), sessions, &fakeEventPublisher{})

	fresh := domain.NewSession("sid-fresh", domain.Account{ID: "acc-1", Role: domain.RoleSecretary}, loginMoment.Add(-time.Hour), "", "")
	expired := domain.NewSession("sid-old", domain.Account{ID: "acc-1"}, loginMoment.Add(-9*time.Hour), "", "")
	sessions.sessions[fresh.ID] = fresh
	sessions.sessions[expired.ID] = expired

	if _, err := svc.ResolveSession(context.Background(), "sid-fresh"); err != nil {
		t.Fatalf("fresh session should resolve: %v", err)
	}
	if _, err := svc.ResolveSession(context.Background(), "sid-old"); !errors.Is(err, usecase.ErrNotAuthenticated) {
		t.Fatalf("expired session should not resolve, got %v", err)
	}
	if _, err := svc.ResolveSession(context.Background(), "unknown"); !errors.Is(err, usecase.ErrNotAuthenticated) {
		t.Fatalf("unknown session should not resolve, got %v", err)
	}
	if _, err := svc.ResolveSession(context.Background(), ""); !errors.Is(err, usecase.ErrNotAuthenticated) {
		t.Fatalf("empty session id should not resolve, got %v", err)
	}
}

func TestLogout(t *testing.T) {
	sessions := newFakeSessionStore()
	events := &fakeEventPublisher{}
	svc := newAuthService(newFakeAccountRepo(), sessions, events)

	session := domain.NewSession("sid-1", domain.Account{ID: "acc-1"}, loginMoment, "", "")
	sessions.sessions[session.ID] = session

	if err := svc.Logout(context.Background(), "sid-1"); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if _, ok := sessions.sessions["sid-1"]; ok {
		t.Fatal("session should be gone after logout")
	}
	if events.logouts != 1 {
		t.Fatalf("expected one logout event, got %d", events.logouts)
	}

	// Unknown identifiers are ignored; the cookie is cleared either way.
	if err := svc.Logout(context.Background(), "sid-unknown"); err != nil {
		t.Fatalf("logout of unknown session should not fail: %v", err)
	}
}

func TestAuthorize(t *testing.T) {
	session := &domain.Session{Role: domain.RoleDoctor}

	if err := usecase.Authorize(session, domain.RoleSecretary); err != nil {
		t.Fatalf("doctor should satisfy secretary: %v", err)
	}
	if err := usecase.Authorize(session, domain.RoleTopUser); !errors.Is(err, usecase.ErrForbidden) {
		t.Fatalf("doctor should not satisfy topuser, got %v", err)
	}
	if err := usecase.Authorize(nil, domain.RoleSecretary); !errors.Is(err, usecase.ErrNotAuthenticated) {
		t.Fatalf("nil session should not authorize, got %v", err)
	}
}
