package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Fragarianos1981/Dr.platiPel/internal/core/domain"
	"github.com/Fragarianos1981/Dr.platiPel/internal/repository"
	"github.com/Fragarianos1981/Dr.platiPel/internal/usecase"
)

const testCookieName = "plati_session"

type memorySessionStore struct {
	sessions map[string]domain.Session
}

func newMemorySessionStore() *memorySessionStore {
	return &memorySessionStore{sessions: make(map[string]domain.Session)}
}

func (s *memorySessionStore) Save(_ context.Context, session domain.Session) error {
	s.sessions[session.ID] = session
	return nil
}

func (s *memorySessionStore) Get(_ context.Context, id string) (*domain.Session, error) {
	if session, ok := s.sessions[id]; ok {
		return &session, nil
	}
	return nil, repository.ErrNotFound
}

func (s *memorySessionStore) Delete(_ context.Context, id string) error {
	delete(s.sessions, id)
	return nil
}

func (s *memorySessionStore) DeleteByAccount(_ context.Context, accountID string) error {
	for id, session := range s.sessions {
		if session.AccountID == accountID {
			delete(s.sessions, id)
		}
	}
	return nil
}

func newAuthTestRouter(t *testing.T, store *memorySessionStore, required domain.Role) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	authService := usecase.NewAuthService(nil, store, nil, zap.NewNop())

	router := gin.New()
	group := router.Group("/api/v1/patients")
	group.Use(RequireAuth(authService, testCookieName))
	if required != "" {
		group.Use(RequireRole(required))
	}
	group.GET("", func(c *gin.Context) {
		session, _ := CurrentSession(c)
		c.JSON(http.StatusOK, gin.H{"account_id": session.AccountID})
	})

	return router
}

func TestRequireAuthWithoutCookie(t *testing.T) {
	router := newAuthTestRouter(t, newMemorySessionStore(), "")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients?query=maria", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	var body struct {
		LoginURL string `json:"login_url"`
		Next     string `json:"next"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.LoginURL != LoginPath {
		t.Fatalf("expected login pointer %q, got %q", LoginPath, body.LoginURL)
	}
	if body.Next != "/api/v1/patients?query=maria" {
		t.Fatalf("next should carry path and query, got %q", body.Next)
	}
}

func TestRequireAuthWithValidSession(t *testing.T) {
	store := newMemorySessionStore()
	session := domain.NewSession("sid-1", domain.Account{ID: "acc-1", Role: domain.RoleSecretary}, time.Now(), "", "")
	store.sessions[session.ID] = session

	router := newAuthTestRouter(t, store, "")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients", nil)
	req.AddCookie(&http.Cookie{Name: testCookieName, Value: "sid-1"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		AccountID string `json:"account_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.AccountID != "acc-1" {
		t.Fatalf("handler should see the resolved session, got %q", body.AccountID)
	}
}

func TestRequireAuthWithExpiredSession(t *testing.T) {
	store := newMemorySessionStore()
	session := domain.NewSession("sid-old", domain.Account{ID: "acc-1"}, time.Now().Add(-9*time.Hour), "", "")
	store.sessions[session.ID] = session

	router := newAuthTestRouter(t, store, "")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients", nil)
	req.AddCookie(&http.Cookie{Name: testCookieName, Value: "sid-old"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired session, got %d", rec.Code)
	}
}

func TestRequireRoleBelowRequired(t *testing.T) {
	store := newMemorySessionStore()
	session := domain.NewSession("sid-1", domain.Account{ID: "acc-1", Role: domain.RoleSecretary}, time.Now(), "", "")
	store.sessions[session.ID] = session

	router := newAuthTestRouter(t, store, domain.RoleTopUser)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients", nil)
	req.AddCookie(&http.Cookie{Name: testCookieName, Value: "sid-1"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if _, ok := body["login_url"]; ok {
		t.Fatal("a role failure must not point at the login page")
	}
}

func TestRequireRoleSufficient(t *testing.T) {
	store := newMemorySessionStore()
	session := domain.NewSession("sid-1", domain.Account{ID: "acc-1", Role: domain.RoleDoctor}, time.Now(), "", "")
	store.sessions[session.ID] = session

	router := newAuthTestRouter(t, store, domain.RoleSecretary)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients", nil)
	req.AddCookie(&http.Cookie{Name: testCookieName, Value: "sid-1"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
