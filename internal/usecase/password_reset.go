package usecase

import (
	"context"
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

const (
	resetTokenTTL   = 24 * time.Hour
	resetTokenBytes = 32
)

var (
	// ErrResetTokenInvalid indicates the token is unknown or already used.
	ErrResetTokenInvalid = errors.New("reset token invalid")
	// ErrResetTokenExpired indicates the token's 24 hour window has passed.
	ErrResetTokenExpired = errors.New("reset token expired")
)

// PasswordResetService coordinates the forgot-password flow. Tokens are stored
// only as SHA-256 hashes and each token is good for exactly one reset.
type PasswordResetService struct {
	accounts port.AccountRepository
	sessions port.SessionStore
	events   port.EventPublisher
	logger   *zap.Logger
	now      func() time.Time
}

// NewPasswordResetService constructs a PasswordResetService.
func NewPasswordResetService(accounts port.AccountRepository, sessions port.SessionStore, events port.EventPublisher, logger *zap.Logger) *PasswordResetService {
	return &PasswordResetService{
		accounts: accounts,
		sessions: sessions,
		events:   events,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock overrides the time source. Test hook.
func (s *PasswordResetService) WithClock(now func() time.Time) *PasswordResetService {
	s.now = now
	return s
}

// ResetRequestResult carries the generated token back to the delivery layer.
// The token itself never goes into the HTTP response body.
type ResetRequestResult struct {
	AccountID string
	Email     string
	Token     string
	ExpiresAt time.Time
}

// Request generates a reset token for the account behind the email address.
// Unknown addresses return nil without error so the endpoint answers the same
// way whether or not the account exists.
func (s *PasswordResetService) Request(ctx context.Context, email string) (*ResetRequestResult, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrMissingField
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup account: %w", err)
	}

	token, err := security.GenerateSecureToken(resetTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("generate reset token: %w", err)
	}

	expiresAt := s.now().UTC().Add(resetTokenTTL)
	if err := s.accounts.SetResetToken(ctx, account.ID, security.HashToken(token), expiresAt); err != nil {
		return nil, fmt.Errorf("store reset token: %w", err)
	}

	return &ResetRequestResult{
		AccountID: account.ID,
		Email:     account.Email,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// Confirm consumes a reset token and installs the new password. Every session
// of the account is revoked afterwards.
func (s *PasswordResetService) Confirm(ctx context.Context, token, newPassword string) error {
	if token == "" || newPassword == "" {
		return ErrMissingField
	}

	account, err := s.accounts.GetByResetTokenHash(ctx, security.HashToken(token))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrResetTokenInvalid
		}
		return fmt.Errorf("lookup reset token: %w", err)
	}

	now := s.now().UTC()

	if account.ResetTokenUsedAt != nil {
		return ErrResetTokenInvalid
	}
	if account.ResetTokenExpiresAt == nil || now.After(*account.ResetTokenExpiresAt) {
		return ErrResetTokenExpired
	}

	if acceptable, _ := security.AssessPassword(newPassword); !acceptable {
		return ErrPasswordTooWeak
	}

	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	// Consuming the token before writing the password keeps a raced second
	// confirmation from succeeding; the repository guards against double use.
	if err := s.accounts.MarkResetTokenUsed(ctx, account.ID, now); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrResetTokenInvalid
		}
		return fmt.Errorf("consume reset token: %w", err)
	}

	if err := s.accounts.UpdatePassword(ctx, account.ID, hash, now); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if err := s.sessions.DeleteByAccount(ctx, account.ID); err != nil {
		s.logger.Warn("revoke sessions on password reset failed",
			zap.String("account_id", account.ID), zap.Error(err))
	}

	if err := s.events.PublishPasswordChanged(ctx, domain.PasswordChangedEvent{
		EventID:   uuid.NewString(),
		AccountID: account.ID,
		ChangedBy: account.ID,
		Via:       "reset",
		At:        now,
	}); err != nil {
		s.logger.Warn("publish password changed event failed", zap.Error(err))
	}

	return nil
}
