package redis

import (
	"context"
	"testing"
	"time"
)

func TestRateLimitRepository_TallyCountsWindowOnly(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewRateLimitRepository(client, "plati:rate-limit", 2*time.Minute)

	ctx := context.Background()
	now := time.Date(2024, 6, 10, 8, 30, 0, 0, time.UTC)

	// Two attempts inside the minute, one long before it.
	stale := now.Add(-5 * time.Minute)
	first := now.Add(-40 * time.Second)
	second := now.Add(-5 * time.Second)
	for _, at := range []time.Time{stale, first, second} {
		if err := repo.RecordAttempt(ctx, "login:10.0.0.9", at); err != nil {
			t.Fatalf("RecordAttempt returned error: %v", err)
		}
	}

	tally, err := repo.Tally(ctx, "login:10.0.0.9", time.Minute, now)
	if err != nil {
		t.Fatalf("Tally returned error: %v", err)
	}
	if tally.Count != 2 {
		t.Fatalf("expected two live attempts, got %d", tally.Count)
	}
	if !tally.Oldest.Equal(first) {
		t.Fatalf("expected oldest %v, got %v", first, tally.Oldest)
	}
}

func TestRateLimitRepository_TallyEmptyKey(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewRateLimitRepository(client, "plati:rate-limit", 2*time.Minute)

	tally, err := repo.Tally(context.Background(), "login:203.0.113.7", time.Minute, time.Now())
	if err != nil {
		t.Fatalf("Tally returned error: %v", err)
	}
	if tally.Count != 0 || !tally.Oldest.IsZero() {
		t.Fatalf("expected an empty tally, got %+v", tally)
	}
}

func TestRateLimitRepository_TallyRejectsBadWindow(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewRateLimitRepository(client, "plati:rate-limit", 0)

	if _, err := repo.Tally(context.Background(), "login:10.0.0.9", 0, time.Now()); err == nil {
		t.Fatal("expected an error for a non-positive window")
	}
}

func TestRateLimitRepository_KeysCarryPrefixAndTTL(t *testing.T) {
	client, server := newTestRedis(t)
	repo := NewRateLimitRepository(client, "plati:rate-limit", 2*time.Minute)

	if err := repo.RecordAttempt(context.Background(), "reset:10.0.0.9", time.Now()); err != nil {
		t.Fatalf("RecordAttempt returned error: %v", err)
	}

	remaining := server.TTL("plati:rate-limit:reset:10.0.0.9")
	if remaining <= 0 || remaining > 2*time.Minute {
		t.Fatalf("expected ttl within (0, 2m], got %v", remaining)
	}
}
