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

// StealthRepository implements port.StealthRepository using PostgreSQL. Rows
// carry only ciphertext columns; sealing happens a layer above.
type StealthRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewStealthRepository wires a PostgreSQL-backed sealed ledger repository.
func NewStealthRepository(exec pgExecutor) *StealthRepository {
	return &StealthRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var stealthColumns = []string{
	"id",
	"owner_id",
	"title_enc",
	"note_enc",
	"amount_enc",
	"entry_date",
	"created_at",
	"updated_at",
}

// Create inserts a sealed ledger entry.
func (r *StealthRepository) Create(ctx context.Context, entry domain.SealedStealthEntry) error {
	stmt, args, err := r.builder.Insert("plati.stealth_entries").
		Columns(stealthColumns...).
		Values(
			entry.ID,
			entry.OwnerID,
			entry.TitleEnc,
			entry.NoteEnc,
			entry.AmountEnc,
			entry.EntryDate,
			entry.CreatedAt,
			entry.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert stealth entry sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert stealth entry: %w", err)
	}

	return nil
}

// GetByID retrieves a sealed entry by identifier.
func (r *StealthRepository) GetByID(ctx context.Context, id string) (*domain.SealedStealthEntry, error) {
	stmt, args, err := r.builder.
		Select(stealthColumns...).
		From("plati.stealth_entries").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select stealth entry sql: %w", err)
	}

	entry, err := scanStealthEntry(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan stealth entry: %w", err)
	}

	return entry, nil
}

func scanStealthEntry(row pgx.Row) (*domain.SealedStealthEntry, error) {
	var entry domain.SealedStealthEntry

	if err := row.Scan(
		&entry.ID,
		&entry.OwnerID,
		&entry.TitleEnc,
		&entry.NoteEnc,
		&entry.AmountEnc,
		&entry.EntryDate,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &entry, nil
}

// Update replaces the ciphertext columns of an existing entry.
func (r *StealthRepository) Update(ctx context.Context, entry domain.SealedStealthEntry) error {
	stmt, args, err := r.builder.Update("plati.stealth_entries").
		Set("title_enc", entry.TitleEnc).
		Set("note_enc", entry.NoteEnc).
		Set("amount_enc", entry.AmountEnc).
		Set("entry_date", entry.EntryDate).
		Set("updated_at", entry.UpdatedAt).
		Where(squirrel.Eq{"id": entry.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update stealth entry sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update stealth entry: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes an entry permanently.
func (r *StealthRepository) Delete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Delete("plati.stealth_entries").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete stealth entry sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete stealth entry: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// ListByOwner returns an owner's sealed entries, newest entry date first.
func (r *StealthRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.SealedStealthEntry, error) {
	stmt, args, err := r.builder.
		Select(stealthColumns...).
		From("plati.stealth_entries").
		Where(squirrel.Eq{"owner_id": ownerID}).
		OrderBy("entry_date DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list stealth entries sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query stealth entries: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.SealedStealthEntry, 0)
	for rows.Next() {
		entry, err := scanStealthEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stealth entry: %w", err)
		}
		entries = append(entries, *entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stealth entries: %w", err)
	}

	return entries, nil
}

var _ port.StealthRepository = (*StealthRepository)(nil)
