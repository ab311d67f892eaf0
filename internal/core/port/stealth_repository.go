package port

import (
	"context"

	"github.com/Fragarianos1981/Dr.platiPel/internal/core/domain"
)

// StealthRepository persists sealed ledger entries. Plaintext never crosses
// this boundary.
type StealthRepository interface {
	Create(ctx context.Context, entry domain.SealedStealthEntry) error
	GetByID(ctx context.Context, id string) (*domain.SealedStealthEntry, error)
	Update(ctx context.Context, entry domain.SealedStealthEntry) error
	Delete(ctx context.Context, id string) error
	ListByOwner(ctx context.Context, ownerID string) ([]domain.SealedStealthEntry, error)
}
