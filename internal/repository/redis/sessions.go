package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Fragarianos1981/Dr.platiPel/internal/core/domain"
	"github.com/Fragarianos1981/Dr.platiPel/internal/core/port"
	"github.com/Fragarianos1981/Dr.platiPel/internal/repository"
)

// SessionStore keeps login sessions in Redis. Each session lives under its
// own key with a TTL matching the absolute expiry, and a per-account index
// set supports bulk revocation.
type SessionStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewSessionStore constructs a Redis-backed session store.
func NewSessionStore(client *redis.Client, keyPrefix string) *SessionStore {
	return &SessionStore{client: client, keyPrefix: keyPrefix}
}

type sessionRecord struct {
	ID        string     `json:"id"`
	AccountID string     `json:"account_id"`
	Username  string     `json:"username"`
	Role      string     `json:"role"`
	IP        string     `json:"ip"`
	UserAgent string     `json:"user_agent"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt time.Time  `json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
}

// Save persists the session with a TTL ending at its absolute expiry.
func (s *SessionStore) Save(ctx context.Context, session domain.Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return errors.New("session already expired")
	}

	payload, err := json.Marshal(sessionRecord{
		ID:        session.ID,
		AccountID: session.AccountID,
		Username:  session.Username,
		Role:      string(session.Role),
		IP:        session.IP,
		UserAgent: session.UserAgent,
		CreatedAt: session.CreatedAt,
		ExpiresAt: session.ExpiresAt,
		RevokedAt: session.RevokedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.sessionKey(session.ID), payload, ttl)
	pipe.SAdd(ctx, s.accountKey(session.AccountID), session.ID)
	pipe.Expire(ctx, s.accountKey(session.AccountID), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis save session: %w", err)
	}

	return nil
}

// Get retrieves a session by identifier.
func (s *SessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	payload, err := s.client.Get(ctx, s.sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("redis get session: %w", err)
	}

	var record sessionRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}

	return &domain.Session{
		ID:        record.ID,
		AccountID: record.AccountID,
		Username:  record.Username,
		Role:      domain.Role(record.Role),
		IP:        record.IP,
		UserAgent: record.UserAgent,
		CreatedAt: record.CreatedAt,
		ExpiresAt: record.ExpiresAt,
		RevokedAt: record.RevokedAt,
	}, nil
}

// Delete removes a single session.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	session, err := s.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.sessionKey(id))
	pipe.SRem(ctx, s.accountKey(session.AccountID), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis delete session: %w", err)
	}

	return nil
}

// DeleteByAccount revokes every session belonging to the account.
func (s *SessionStore) DeleteByAccount(ctx context.Context, accountID string) error {
	ids, err := s.client.SMembers(ctx, s.accountKey(accountID)).Result()
	if err != nil {
		return fmt.Errorf("redis list account sessions: %w", err)
	}

	if len(ids) == 0 {
		return nil
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, s.sessionKey(id))
	}
	keys = append(keys, s.accountKey(accountID))

	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis delete account sessions: %w", err)
	}

	return nil
}

func (s *SessionStore) sessionKey(id string) string {
	return fmt.Sprintf("%s:%s", s.keyPrefix, id)
}

func (s *SessionStore) accountKey(accountID string) string {
	return fmt.Sprintf("%s:account:%s", s.keyPrefix, accountID)
}

var _ port.SessionStore = (*SessionStore)(nil)
