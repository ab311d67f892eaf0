package usecase

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Fragarianos1981/Dr.platiPel/internal/core/domain"
	"github.com/Fragarianos1981/Dr.platiPel/internal/core/port"
	"github.com/Fragarianos1981/Dr.platiPel/internal/infra/security"
	"github.com/Fragarianos1981/Dr.platiPel/internal/repository"
)

const sessionIDBytes = 32

var (
	// ErrMissingField indicates a required login field was left blank.
	ErrMissingField = errors.New("required field missing")
	// ErrInvalidCredentials indicates the username or one of the passwords is
	// wrong. Lookup misses and password mismatches collapse into this single
	// error so responses cannot be used to probe for usernames.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountInactive indicates credentials verified but the account is disabled.
	ErrAccountInactive = errors.New("account is not active")
	// ErrNotAuthenticated indicates no valid session accompanies the request.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrForbidden indicates the authenticated role lacks the required capability.
	ErrForbidden = errors.New("forbidden")
)

// AuthService coordinates the dual-password login flow and session lifecycle.
type AuthService struct {
	accounts port.AccountRepository
	sessions port.SessionStore
	events   port.EventPublisher
	logger   *zap.Logger
	now      func() time.Time
}

// NewAuthService constructs an AuthService.
func NewAuthService(accounts port.AccountRepository, sessions port.SessionStore, events port.EventPublisher, logger *zap.Logger) *AuthService {
	return &AuthService{
		accounts: accounts,
		sessions: sessions,
		events:   events,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock overrides the time source. Test hook.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

// LoginInput carries the credentials and request metadata for a login attempt.
type LoginInput struct {
	Username  string
	Password1 string
	Password2 string
	IP        string
	UserAgent string
}

// Login validates both passwords and, on success, stamps last_login and opens
// a session. The activity check runs only after the credentials verify, so a
// disabled account answers differently from a wrong password. A failure to
// persist last_login fails the whole login; the timestamp and the session
// must agree.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*domain.Session, *domain.Account, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password1 == "" || input.Password2 == "" {
		return nil, nil, ErrMissingField
	}

	account, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("lookup account: %w", err)
	}

	ok, err := security.VerifyPassword(input.Password1, account.PasswordHash)
	if err != nil {
		return nil, nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, nil, ErrInvalidCredentials
	}

	// The second password is stored and compared in plaintext. The legacy
	// system worked this way and the stored values are shared between staff,
	// so the behavior is kept intact.
	if subtle.ConstantTimeCompare([]byte(input.Password2), []byte(account.SecondPassword)) != 1 {
		return nil, nil, ErrInvalidCredentials
	}

	if !account.IsActive {
		return nil, nil, ErrAccountInactive
	}

	now := s.now().UTC()

	if security.NeedsRehash(account.PasswordHash) {
		s.rehashPassword(ctx, account, input.Password1, now)
	}

	if err := s.accounts.UpdateLastLogin(ctx, account.ID, now); err != nil {
		return nil, nil, fmt.Errorf("update last login: %w", err)
	}
	account.LastLogin = &now

	sessionID, err := security.GenerateSecureToken(sessionIDBytes)
	if err != nil {
		return nil, nil, fmt.Errorf("generate session id: %w", err)
	}

	session := domain.NewSession(sessionID, *account, now, input.IP, input.UserAgent)
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, nil, fmt.Errorf("save session: %w", err)
	}

	if err := s.events.PublishLogin(ctx, domain.LoginEvent{
		EventID:   uuid.NewString(),
		AccountID: account.ID,
		Username:  account.Username,
		Role:      string(account.Role),
		SessionID: session.ID,
		IP:        input.IP,
		At:        now,
	}); err != nil {
		s.logger.Warn("publish login event failed", zap.Error(err))
	}

	return &session, account, nil
}

// rehashPassword upgrades a legacy hash after a successful verification. The
// login proceeds either way.
func (s *AuthService) rehashPassword(ctx context.Context, account *domain.Account, password string, at time.Time) {
	upgraded, err := security.HashPassword(password)
	if err != nil {
		s.logger.Warn("rehash legacy password failed", zap.Error(err))
		return
	}

	if err := s.accounts.UpdatePassword(ctx, account.ID, upgraded, at); err != nil {
		s.logger.Warn("store rehashed password failed", zap.Error(err))
		return
	}

	account.PasswordHash = upgraded
}

// Logout revokes the session. Unknown session identifiers are not an error;
// the caller's cookie is cleared regardless.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("lookup session: %w", err)
	}

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	if err := s.events.PublishLogout(ctx, domain.LogoutEvent{
		EventID:   uuid.NewString(),
		AccountID: session.AccountID,
		SessionID: session.ID,
		At:        s.now().UTC(),
	}); err != nil {
		s.logger.Warn("publish logout event failed", zap.Error(err))
	}

	return nil
}

// ResolveSession loads and validates the session behind an opaque cookie
// value. Expired or revoked sessions resolve to ErrNotAuthenticated.
func (s *AuthService) ResolveSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	if sessionID == "" {
		return nil, ErrNotAuthenticated
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotAuthenticated
		}
		return nil, fmt.Errorf("lookup session: %w", err)
	}

	if !session.IsActive(s.now().UTC()) {
		return nil, ErrNotAuthenticated
	}

	return session, nil
}

// Authorize reports whether the session's role satisfies the required role.
func Authorize(session *domain.Session, required domain.Role) error {
	if session == nil {
		return ErrNotAuthenticated
	}
	if !session.Role.AtLeast(required) {
		return ErrForbidden
	}
	return nil
}
