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

var (
	// ErrAccountNotFound indicates the referenced account does not exist.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountExists indicates the username or email is already taken.
	ErrAccountExists = errors.New("account already exists")
	// ErrInvalidRole indicates the supplied role is not one of the known values.
	ErrInvalidRole = errors.New("invalid role")
	// ErrPasswordTooWeak indicates the candidate password failed the minimum check.
	ErrPasswordTooWeak = errors.New("password too weak")
	// ErrWrongPassword indicates the current password did not verify.
	ErrWrongPassword = errors.New("wrong password")
)

// AccountService manages staff accounts. Every operation here is reserved for
// the top role; the transport layer enforces that before calls arrive.
type AccountService struct {
	accounts port.AccountRepository
	sessions port.SessionStore
	events   port.EventPublisher
	logger   *zap.Logger
	now      func() time.Time
}

// NewAccountService constructs an AccountService.
func NewAccountService(accounts port.AccountRepository, sessions port.SessionStore, events port.EventPublisher, logger *zap.Logger) *AccountService {
	return &AccountService{
		accounts: accounts,
		sessions: sessions,
		events:   events,
		logger:   logger,
		now:      time.Now,
	}
}

// CreateAccountInput carries the fields for a new staff account.
type CreateAccountInput struct {
	Username       string
	Email          string
	FullName       string
	Role           string
	Password       string
	SecondPassword string
	ActorID        string
}

// Create provisions a new staff account.
func (s *AccountService) Create(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" || input.SecondPassword == "" {
		return nil, ErrMissingField
	}

	role, ok := domain.ParseRole(input.Role)
	if !ok {
		return nil, ErrInvalidRole
	}

	if acceptable, _ := security.AssessPassword(input.Password); !acceptable {
		return nil, ErrPasswordTooWeak
	}

	hash, err := security.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := domain.Account{
		ID:             uuid.NewString(),
		Username:       username,
		Email:          strings.TrimSpace(input.Email),
		Role:           role,
		PasswordHash:   hash,
		SecondPassword: input.SecondPassword,
		IsActive:       true,
		CreatedAt:      s.now().UTC(),
	}
	account.SetFullName(input.FullName)

	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAccountExists
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	s.publishChange(ctx, account, "created", input.ActorID)

	return &account, nil
}

// UpdateAccountInput carries mutable profile fields. Nil pointers leave the
// stored value untouched.
type UpdateAccountInput struct {
	ID             string
	Email          *string
	FullName       *string
	Role           *string
	SecondPassword *string
	ActorID        string
}

// Update modifies an account's profile and role.
func (s *AccountService) Update(ctx context.Context, input UpdateAccountInput) (*domain.Account, error) {
	account, err := s.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Email != nil {
		account.Email = strings.TrimSpace(*input.Email)
	}
	if input.FullName != nil {
		account.SetFullName(*input.FullName)
	}
	if input.Role != nil {
		role, ok := domain.ParseRole(*input.Role)
		if !ok {
			return nil, ErrInvalidRole
		}
		account.Role = role
	}
	if input.SecondPassword != nil {
		if *input.SecondPassword == "" {
			return nil, ErrMissingField
		}
		account.SecondPassword = *input.SecondPassword
	}

	if err := s.accounts.Update(ctx, *account); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAccountExists
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("update account: %w", err)
	}

	s.publishChange(ctx, *account, "updated", input.ActorID)

	return account, nil
}

// SetActive toggles an account. Deactivation revokes every live session so the
// change takes effect immediately, not at the next login.
func (s *AccountService) SetActive(ctx context.Context, id string, active bool, actorID string) error {
	account, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.accounts.SetActive(ctx, id, active); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("set account active: %w", err)
	}

	if !active {
		if err := s.sessions.DeleteByAccount(ctx, id); err != nil {
			s.logger.Warn("revoke sessions on deactivate failed",
				zap.String("account_id", id), zap.Error(err))
		}
	}

	action := "deactivated"
	if active {
		action = "activated"
	}
	account.IsActive = active
	s.publishChange(ctx, *account, action, actorID)

	return nil
}

// ChangePassword updates the caller's own primary password after verifying
// the current one. All other sessions of the account are revoked.
func (s *AccountService) ChangePassword(ctx context.Context, accountID, currentPassword, newPassword, keepSessionID string) error {
	if currentPassword == "" || newPassword == "" {
		return ErrMissingField
	}

	account, err := s.Get(ctx, accountID)
	if err != nil {
		return err
	}

	ok, err := security.VerifyPassword(currentPassword, account.PasswordHash)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return ErrWrongPassword
	}

	if acceptable, _ := security.AssessPassword(newPassword); !acceptable {
		return ErrPasswordTooWeak
	}

	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	if err := s.accounts.UpdatePassword(ctx, accountID, hash, now); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	// The caller's own session survives the revocation sweep.
	var keep *domain.Session
	if keepSessionID != "" {
		if session, err := s.sessions.Get(ctx, keepSessionID); err == nil && session.AccountID == accountID {
			keep = session
		}
	}

	if err := s.sessions.DeleteByAccount(ctx, accountID); err != nil {
		s.logger.Warn("revoke sessions on password change failed",
			zap.String("account_id", accountID), zap.Error(err))
	}

	if keep != nil {
		if err := s.sessions.Save(ctx, *keep); err != nil {
			s.logger.Warn("restore current session after password change failed",
				zap.String("account_id", accountID), zap.Error(err))
		}
	}

	if err := s.events.PublishPasswordChanged(ctx, domain.PasswordChangedEvent{
		EventID:   uuid.NewString(),
		AccountID: accountID,
		ChangedBy: accountID,
		Via:       "change",
		At:        now,
	}); err != nil {
		s.logger.Warn("publish password changed event failed", zap.Error(err))
	}

	return nil
}

// Get retrieves an account by identifier.
func (s *AccountService) Get(ctx context.Context, id string) (*domain.Account, error) {
	if id == "" {
		return nil, ErrAccountNotFound
	}

	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("get account: %w", err)
	}

	return account, nil
}

// List returns accounts matching the filter plus the unpaged total.
func (s *AccountService) List(ctx context.Context, filter port.AccountFilter) ([]domain.Account, int, error) {
	accounts, err := s.accounts.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list accounts: %w", err)
	}

	total, err := s.accounts.Count(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count accounts: %w", err)
	}

	return accounts, total, nil
}

func (s *AccountService) publishChange(ctx context.Context, account domain.Account, action, actorID string) {
	if err := s.events.PublishAccountChanged(ctx, domain.AccountChangedEvent{
		EventID:   uuid.NewString(),
		AccountID: account.ID,
		Username:  account.Username,
		Role:      string(account.Role),
		Action:    action,
		ActorID:   actorID,
		At:        s.now().UTC(),
	}); err != nil {
		s.logger.Warn("publish account changed event failed", zap.Error(err))
	}
}
