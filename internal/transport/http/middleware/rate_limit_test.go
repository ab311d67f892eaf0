package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Fragarianos1981/Dr.platiPel/internal/core/port"
)

type fakeAttemptStore struct {
	tally    port.RateLimitTally
	tallyErr error

	recorded  []string
	recordErr error
}

func (f *fakeAttemptStore) Tally(_ context.Context, _ string, _ time.Duration, _ time.Time) (port.RateLimitTally, error) {
	return f.tally, f.tallyErr
}

func (f *fakeAttemptStore) RecordAttempt(_ context.Context, key string, _ time.Time) error {
	f.recorded = append(f.recorded, key)
	return f.recordErr
}

var limitMoment = time.Date(2024, 6, 10, 8, 30, 0, 0, time.UTC)

func newLimitedRouter(store *fakeAttemptStore, limit int) *gin.Engine {
	gin.SetMode(gin.TestMode)

	limiter := NewRateLimiter(store, zap.NewNop()).
		WithClock(func() time.Time { return limitMoment })

	router := gin.New()
	router.POST("/api/v1/auth/login", limiter.RateLimit(RateLimitRule{
		Name:       "login",
		Limit:      limit,
		Window:     time.Minute,
		Identifier: func(c *gin.Context) (string, bool) { return "10.0.0.9", true },
	}), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	return router
}

func TestRateLimitAllowsAndCounts(t *testing.T) {
	store := &fakeAttemptStore{tally: port.RateLimitTally{
		Count:  1,
		Oldest: limitMoment.Add(-40 * time.Second),
	}}
	router := newLimitedRouter(store, 3)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(store.recorded) != 1 || store.recorded[0] != "login:10.0.0.9" {
		t.Fatalf("expected one recorded attempt under the rule key, got %v", store.recorded)
	}
	if got := rec.Header().Get("X-RateLimit-Remaining"); got != "1" {
		t.Fatalf("expected remaining 1 after this attempt, got %q", got)
	}
	wantReset := strconv.FormatInt(limitMoment.Add(20*time.Second).Unix(), 10)
	if got := rec.Header().Get("X-RateLimit-Reset"); got != wantReset {
		t.Fatalf("expected reset at oldest+window (%s), got %q", wantReset, got)
	}
	if got := rec.Header().Get("Retry-After"); got != "" {
		t.Fatalf("allowed requests must not carry Retry-After, got %q", got)
	}
}

func TestRateLimitRejectsAtThreshold(t *testing.T) {
	store := &fakeAttemptStore{tally: port.RateLimitTally{
		Count:  3,
		Oldest: limitMoment.Add(-15 * time.Second),
	}}
	router := newLimitedRouter(store, 3)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil))

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if len(store.recorded) != 0 {
		t.Fatalf("a rejected request must not be recorded, got %v", store.recorded)
	}
	if got := rec.Header().Get("Retry-After"); got != "45" {
		t.Fatalf("expected Retry-After 45, got %q", got)
	}

	var problem TooManyAttempts
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if problem.Status != http.StatusTooManyRequests || problem.RetryAfter != 45 {
		t.Fatalf("unexpected problem payload: %+v", problem)
	}
	if problem.Instance != "/api/v1/auth/login" {
		t.Fatalf("expected the route as instance, got %q", problem.Instance)
	}
}

func TestRateLimitFailsOpenOnStoreTrouble(t *testing.T) {
	store := &fakeAttemptStore{tallyErr: errors.New("redis unreachable")}
	router := newLimitedRouter(store, 3)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("store trouble must not lock staff out, got %d", rec.Code)
	}
	if len(store.recorded) != 0 {
		t.Fatalf("nothing should be recorded when the tally failed, got %v", store.recorded)
	}
}

func TestRateLimitSkipsWithoutIdentifier(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := &fakeAttemptStore{tally: port.RateLimitTally{Count: 99}}
	limiter := NewRateLimiter(store, zap.NewNop())

	router := gin.New()
	router.POST("/ping", limiter.RateLimit(RateLimitRule{
		Name:       "login",
		Limit:      1,
		Window:     time.Minute,
		Identifier: func(c *gin.Context) (string, bool) { return "", false },
	}), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ping", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("requests without an identifier pass through, got %d", rec.Code)
	}
}
