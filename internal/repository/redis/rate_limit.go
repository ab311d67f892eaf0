package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Fragarianos1981/Dr.platiPel/internal/core/port"
)

// RateLimitRepository keeps per-caller attempt logs in Redis sorted sets,
// scored by millisecond timestamps. One key per rule and caller; the TTL
// caps how long an idle key lingers after its last attempt.
type RateLimitRepository struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRateLimitRepository constructs a Redis-backed attempt log.
func NewRateLimitRepository(client *redis.Client, keyPrefix string, ttl time.Duration) *RateLimitRepository {
	return &RateLimitRepository{client: client, keyPrefix: keyPrefix, ttl: ttl}
}

// Tally prunes attempts older than the window and reports the count and the
// oldest surviving attempt in a single round trip.
func (r *RateLimitRepository) Tally(ctx context.Context, key string, window time.Duration, now time.Time) (port.RateLimitTally, error) {
	if window <= 0 {
		return port.RateLimitTally{}, fmt.Errorf("rate limit window must be positive, got %v", window)
	}

	k := r.key(key)
	cutoff := strconv.FormatInt(now.Add(-window).UnixMilli(), 10)

	pipe := r.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, k, "-inf", "("+cutoff)
	countCmd := pipe.ZCard(ctx, k)
	oldestCmd := pipe.ZRangeWithScores(ctx, k, 0, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return port.RateLimitTally{}, fmt.Errorf("redis tally attempts: %w", err)
	}

	tally := port.RateLimitTally{Count: int(countCmd.Val())}
	if entries := oldestCmd.Val(); len(entries) > 0 {
		tally.Oldest = time.UnixMilli(int64(entries[0].Score))
	}

	return tally, nil
}

// RecordAttempt appends an attempt and refreshes the key's TTL.
func (r *RateLimitRepository) RecordAttempt(ctx context.Context, key string, at time.Time) error {
	k := r.key(key)

	pipe := r.client.TxPipeline()
	pipe.ZAdd(ctx, k, redis.Z{
		Score:  float64(at.UnixMilli()),
		Member: at.UnixNano(),
	})
	if r.ttl > 0 {
		pipe.Expire(ctx, k, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis record attempt: %w", err)
	}

	return nil
}

func (r *RateLimitRepository) key(key string) string {
	if r.keyPrefix == "" {
		return key
	}
	return fmt.Sprintf("%s:%s", r.keyPrefix, key)
}

var _ port.RateLimitStore = (*RateLimitRepository)(nil)
