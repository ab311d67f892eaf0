package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Fragarianos1981/Dr.platiPel/internal/core/port"
)

// IdentifierFunc extracts the value a limit is scoped by, typically an IP.
type IdentifierFunc func(*gin.Context) (string, bool)

// ClientIPIdentifier scopes a rule by the request's client IP.
func ClientIPIdentifier() IdentifierFunc {
	return func(c *gin.Context) (string, bool) {
		ip := c.ClientIP()
		return ip, ip != ""
	}
}

// RateLimitRule names one sliding-window limit. The name doubles as the
// storage key prefix, so rules with distinct names count independently.
type RateLimitRule struct {
	Name       string
	Limit      int
	Window     time.Duration
	Identifier IdentifierFunc
}

// TooManyAttempts is the RFC 9457 problem body for a tripped limit.
type TooManyAttempts struct {
	Type       string `json:"type"`
	Title      string `json:"title"`
	Status     int    `json:"status"`
	Detail     string `json:"detail"`
	Instance   string `json:"instance"`
	RetryAfter int    `json:"retry_after"`
	TraceID    string `json:"trace_id,omitempty"`
}

// RateLimiter throttles credential-guessing surfaces (login, password reset).
// Store trouble fails open: locking the whole clinic out of the system is
// worse than briefly losing brute-force protection.
type RateLimiter struct {
	store  port.RateLimitStore
	logger *zap.Logger
	now    func() time.Time
}

// NewRateLimiter builds the middleware helper around an attempt store.
func NewRateLimiter(store port.RateLimitStore, logger *zap.Logger) *RateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateLimiter{store: store, logger: logger, now: time.Now}
}

// WithClock overrides the time source. Test hook.
func (rl *RateLimiter) WithClock(now func() time.Time) *RateLimiter {
	if now != nil {
		rl.now = now
	}
	return rl
}

// RateLimit enforces the rule on every request passing through it.
func (rl *RateLimiter) RateLimit(rule RateLimitRule) gin.HandlerFunc {
	if rule.Identifier == nil || rule.Limit <= 0 || rule.Window <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if rule.Name == "" {
		rule.Name = "default"
	}

	return func(c *gin.Context) {
		if rl.store == nil {
			c.Next()
			return
		}

		identifier, ok := rule.Identifier(c)
		if !ok || identifier == "" {
			c.Next()
			return
		}

		now := rl.now()
		key := rule.Name + ":" + identifier

		tally, err := rl.store.Tally(c.Request.Context(), key, rule.Window, now)
		if err != nil {
			rl.logger.Warn("rate limit tally failed",
				zap.String("rule", rule.Name), zap.String("identifier", identifier), zap.Error(err))
			c.Next()
			return
		}

		reset := now.Add(rule.Window)
		if tally.Count > 0 {
			reset = tally.Oldest.Add(rule.Window)
		}

		if tally.Count >= rule.Limit {
			rl.reject(c, rule, reset, now)
			return
		}

		if err := rl.store.RecordAttempt(c.Request.Context(), key, now); err != nil {
			rl.logger.Warn("rate limit record failed",
				zap.String("rule", rule.Name), zap.String("identifier", identifier), zap.Error(err))
			c.Next()
			return
		}

		writeLimitHeaders(c, rule.Limit, rule.Limit-tally.Count-1, reset)
		c.Next()
	}
}

func (rl *RateLimiter) reject(c *gin.Context, rule RateLimitRule, reset, now time.Time) {
	retryAfter := int(math.Ceil(reset.Sub(now).Seconds()))
	if retryAfter < 0 {
		retryAfter = 0
	}

	writeLimitHeaders(c, rule.Limit, 0, reset)
	c.Header("Retry-After", strconv.Itoa(retryAfter))

	instance := c.FullPath()
	if instance == "" {
		instance = c.Request.URL.Path
	}

	c.AbortWithStatusJSON(http.StatusTooManyRequests, TooManyAttempts{
		Type:       "about:blank",
		Title:      "Too Many Attempts",
		Status:     http.StatusTooManyRequests,
		Detail:     "Attempt limit reached for this address. Wait before retrying.",
		Instance:   instance,
		RetryAfter: retryAfter,
		TraceID:    GetTraceID(c),
	})
}

func writeLimitHeaders(c *gin.Context, limit, remaining int, reset time.Time) {
	if remaining < 0 {
		remaining = 0
	}
	headers := c.Writer.Header()
	headers.Set("X-RateLimit-Limit", strconv.Itoa(limit))
	headers.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	headers.Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))
}
