package domain

import "time"

// SessionLifetime is the absolute validity window of a login session.
const SessionLifetime = 8 * time.Hour

// Session binds an opaque identifier to an authenticated account and its role.
// Sessions carry a fixed absolute lifetime; they are not refreshed by activity.
type Session struct {
	ID        string
	AccountID string
	Username  string
	Role      Role
	IP        string
	UserAgent string
	CreatedAt time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
}

// NewSession creates a session for the account starting at the supplied moment.
func NewSession(id string, account Account, at time.Time, ip, userAgent string) Session {
	return Session{
		ID:        id,
		AccountID: account.ID,
		Username:  account.Username,
		Role:      account.Role,
		IP:        ip,
		UserAgent: userAgent,
		CreatedAt: at,
		ExpiresAt: at.Add(SessionLifetime),
	}
}

// IsActive reports whether the session is still valid at the supplied moment.
func (s Session) IsActive(at time.Time) bool {
	if s.RevokedAt != nil {
		return false
	}
	return s.ExpiresAt.After(at)
}

// Revoke marks the session as terminated. Returns true when the session
// changed state.
func (s *Session) Revoke(at time.Time) bool {
	if s.RevokedAt != nil {
		return false
	}
	s.RevokedAt = &at
	return true
}
