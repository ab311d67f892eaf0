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
	"github.com/Fragarianos1981/Dr.platiPel/internal/repository"
)

var (
	// ErrMessageNotFound indicates the referenced board message does not exist.
	ErrMessageNotFound = errors.New("message not found")
	// ErrInvalidMessageKind indicates an unknown message kind.
	ErrInvalidMessageKind = errors.New("invalid message kind")
)

// ChatService manages the internal staff message board.
type ChatService struct {
	chat   port.ChatRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewChatService constructs a ChatService.
func NewChatService(chat port.ChatRepository, logger *zap.Logger) *ChatService {
	return &ChatService{
		chat:   chat,
		logger: logger,
		now:    time.Now,
	}
}

// PostInput carries the fields for a new board message.
type PostInput struct {
	AuthorID   string
	AuthorName string
	Body       string
	Kind       domain.ChatKind
}

// Post adds a message to the board. An empty kind defaults to a plain note.
func (s *ChatService) Post(ctx context.Context, input PostInput) (*domain.ChatMessage, error) {
	body := strings.TrimSpace(input.Body)
	if body == "" {
		return nil, ErrMissingField
	}

	kind := input.Kind
	if kind == "" {
		kind = domain.ChatNote
	}
	if !kind.Valid() {
		return nil, ErrInvalidMessageKind
	}

	message := domain.ChatMessage{
		ID:         uuid.NewString(),
		AuthorID:   input.AuthorID,
		AuthorName: input.AuthorName,
		Body:       body,
		Kind:       kind,
		CreatedAt:  s.now().UTC(),
	}

	if err := s.chat.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("post message: %w", err)
	}

	return &message, nil
}

// SetPinned pins or unpins a message so it stays at the top of the board.
func (s *ChatService) SetPinned(ctx context.Context, id string, pinned bool) error {
	if err := s.chat.SetPinned(ctx, id, pinned); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrMessageNotFound
		}
		return fmt.Errorf("pin message: %w", err)
	}

	return nil
}

// Delete removes a message. Authors may remove their own messages; the top
// role may remove any.
func (s *ChatService) Delete(ctx context.Context, id string, actor *domain.Session) error {
	message, err := s.chat.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrMessageNotFound
		}
		return fmt.Errorf("get message: %w", err)
	}

	if message.AuthorID != actor.AccountID && !actor.Role.CanModifyAccounts() {
		return ErrForbidden
	}

	if err := s.chat.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrMessageNotFound
		}
		return fmt.Errorf("delete message: %w", err)
	}

	return nil
}

// List returns board messages, pinned first.
func (s *ChatService) List(ctx context.Context, limit, offset int) ([]domain.ChatMessage, error) {
	messages, err := s.chat.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	return messages, nil
}
