package port

import (
	"context"
	"time"

	"github.com/Fragarianos1981/Dr.platiPel/internal/core/domain"
)

// AccountFilter narrows account listings.
type AccountFilter struct {
	Role     domain.Role
	IsActive *bool
	Limit    int
	Offset   int
}

// AccountRepository exposes persistence behavior for staff accounts.
type AccountRepository interface {
	Create(ctx context.Context, account domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	Update(ctx context.Context, account domain.Account) error
	SetActive(ctx context.Context, id string, active bool) error
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	UpdatePassword(ctx context.Context, id string, passwordHash string, changedAt time.Time) error
	SetResetToken(ctx context.Context, id string, tokenHash string, expiresAt time.Time) error
	GetByResetTokenHash(ctx context.Context, tokenHash string) (*domain.Account, error)
	MarkResetTokenUsed(ctx context.Context, id string, usedAt time.Time) error
	List(ctx context.Context, filter AccountFilter) ([]domain.Account, error)
	Count(ctx context.Context, filter AccountFilter) (int, error)
}
