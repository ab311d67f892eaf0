package postgres

import (
	"context"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/Fragarianos1981/Dr.platiPel/internal/core/domain"
	"github.com/Fragarianos1981/Dr.platiPel/internal/core/port"
	"github.com/Fragarianos1981/Dr.platiPel/internal/repository"
)

// ChatRepository implements port.ChatRepository using PostgreSQL.
type ChatRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewChatRepository wires a PostgreSQL-backed message board repository.
func NewChatRepository(exec pgExecutor) *ChatRepository {
	return &ChatRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var chatColumns = []string{
	"id",
	"author_id",
	"author_name",
	"body",
	"kind",
	"pinned",
	"created_at",
}

// Create inserts a new board message.
func (r *ChatRepository) Create(ctx context.Context, message domain.ChatMessage) error {
	stmt, args, err := r.builder.Insert("plati.chat_messages").
		Columns(chatColumns...).
		Values(
			message.ID,
			message.AuthorID,
			message.AuthorName,
			message.Body,
			message.Kind,
			message.Pinned,
			message.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert chat message sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert chat message: %w", err)
	}

	return nil
}

// GetByID retrieves a single board message.
func (r *ChatRepository) GetByID(ctx context.Context, id string) (*domain.ChatMessage, error) {
	stmt, args, err := r.builder.
		Select(chatColumns...).
		From("plati.chat_messages").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select chat message sql: %w", err)
	}

	message, err := scanChatMessage(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan chat message: %w", err)
	}

	return message, nil
}

func scanChatMessage(row pgx.Row) (*domain.ChatMessage, error) {
	var (
		message domain.ChatMessage
		kind    string
	)

	if err := row.Scan(
		&message.ID,
		&message.AuthorID,
		&message.AuthorName,
		&message.Body,
		&kind,
		&message.Pinned,
		&message.CreatedAt,
	); err != nil {
		return nil, err
	}

	message.Kind = domain.ChatKind(kind)

	return &message, nil
}

// SetPinned toggles the pinned flag on a message.
func (r *ChatRepository) SetPinned(ctx context.Context, id string, pinned bool) error {
	stmt, args, err := r.builder.Update("plati.chat_messages").
		Set("pinned", pinned).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build pin chat message sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("pin chat message: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes a message from the board.
func (r *ChatRepository) Delete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Delete("plati.chat_messages").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete chat message sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete chat message: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// List returns board messages, pinned first, then newest first.
func (r *ChatRepository) List(ctx context.Context, limit, offset int) ([]domain.ChatMessage, error) {
	query := r.builder.
		Select(chatColumns...).
		From("plati.chat_messages").
		OrderBy("pinned DESC", "created_at DESC")

	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	if offset > 0 {
		query = query.Offset(uint64(offset))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list chat messages sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query chat messages: %w", err)
	}
	defer rows.Close()

	messages := make([]domain.ChatMessage, 0)
	for rows.Next() {
		message, err := scanChatMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		messages = append(messages, *message)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chat messages: %w", err)
	}

	return messages, nil
}

var _ port.ChatRepository = (*ChatRepository)(nil)
