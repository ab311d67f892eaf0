package port

import (
	"context"
	"time"
)

// RateLimitTally summarizes the attempts still inside the active window.
type RateLimitTally struct {
	Count  int
	Oldest time.Time // zero when Count is zero
}

// RateLimitStore persists login and password-reset attempt logs.
type RateLimitStore interface {
	// Tally prunes attempts that fell out of the window and reports what remains.
	Tally(ctx context.Context, key string, window time.Duration, now time.Time) (RateLimitTally, error)
	// RecordAttempt appends an attempt at the given instant.
	RecordAttempt(ctx context.Context, key string, at time.Time) error
}
