package port

import (
	"context"

	"github.com/Fragarianos1981/Dr.platiPel/internal/core/domain"
)

// ChatRepository exposes persistence behavior for the staff message board.
type ChatRepository interface {
	Create(ctx context.Context, message domain.ChatMessage) error
	GetByID(ctx context.Context, id string) (*domain.ChatMessage, error)
	SetPinned(ctx context.Context, id string, pinned bool) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, limit, offset int) ([]domain.ChatMessage, error)
}
