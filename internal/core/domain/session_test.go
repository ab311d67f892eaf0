package domain_test

import (
	"testing"
	"time"

	"github.com/Fragarianos1981/Dr.platiPel/internal/core/domain"
)

func TestNewSessionLifetime(t *testing.T) {
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	account := domain.Account{ID: "acc-1", Username: "maria", Role: domain.RoleDoctor}

	session := domain.NewSession("sid-1", account, at, "10.0.0.5", "test-agent")

	if session.AccountID != "acc-1" || session.Role != domain.RoleDoctor {
		t.Fatalf("session does not carry the account identity: %+v", session)
	}
	if want := at.Add(8 * time.Hour); !session.ExpiresAt.Equal(want) {
		t.Fatalf("expected expiry %v, got %v", want, session.ExpiresAt)
	}
}

func TestSessionIsActive(t *testing.T) {
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	session := domain.NewSession("sid-1", domain.Account{ID: "acc-1"}, at, "", "")

	if !session.IsActive(at.Add(time.Hour)) {
		t.Fatal("session should be active within its lifetime")
	}
	if session.IsActive(at.Add(domain.SessionLifetime)) {
		t.Fatal("session should expire exactly at the lifetime boundary")
	}

	if !session.Revoke(at.Add(time.Hour)) {
		t.Fatal("first revoke should report a state change")
	}
	if session.Revoke(at.Add(2 * time.Hour)) {
		t.Fatal("second revoke should be a no-op")
	}
	if session.IsActive(at.Add(2 * time.Hour)) {
		t.Fatal("revoked session should not be active")
	}
}
