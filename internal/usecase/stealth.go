package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Fragarianos1981/Dr.platiPel/internal/core/domain"
	"github.com/Fragarianos1981/Dr.platiPel/internal/core/port"
	"github.com/Fragarianos1981/Dr.platiPel/internal/infra/security"
	"github.com/Fragarianos1981/Dr.platiPel/internal/repository"
)

// ErrStealthEntryNotFound indicates the referenced ledger entry does not
// exist or belongs to another owner.
var ErrStealthEntryNotFound = errors.New("ledger entry not found")

// StealthService manages the hidden revenue ledger. Entries are sealed with
// authenticated encryption before storage and every access is published to
// the audit stream. Entries are strictly per owner; even two top-level
// accounts cannot read each other's entries.
type StealthService struct {
	entries port.StealthRepository
	box     *security.StealthBox
	events  port.EventPublisher
	logger  *zap.Logger
	now     func() time.Time
}

// NewStealthService constructs a StealthService.
func NewStealthService(entries port.StealthRepository, box *security.StealthBox, events port.EventPublisher, logger *zap.Logger) *StealthService {
	return &StealthService{
		entries: entries,
		box:     box,
		events:  events,
		logger:  logger,
		now:     time.Now,
	}
}

// StealthInput carries the plaintext fields of a ledger entry.
type StealthInput struct {
	Title     string
	Note      string
	Amount    float64
	EntryDate time.Time
}

// Add seals and stores a new ledger entry for the owner.
func (s *StealthService) Add(ctx context.Context, ownerID string, input StealthInput) (*domain.StealthEntry, error) {
	if input.Title == "" {
		return nil, ErrMissingField
	}

	now := s.now().UTC()
	entryDate := input.EntryDate
	if entryDate.IsZero() {
		entryDate = now
	}

	entry := domain.StealthEntry{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Title:     input.Title,
		Note:      input.Note,
		Amount:    input.Amount,
		EntryDate: entryDate,
		CreatedAt: now,
		UpdatedAt: now,
	}

	sealed, err := s.seal(entry)
	if err != nil {
		return nil, err
	}

	if err := s.entries.Create(ctx, *sealed); err != nil {
		return nil, fmt.Errorf("create ledger entry: %w", err)
	}

	s.publishAccess(ctx, ownerID, "add")

	return &entry, nil
}

// Update reseals an existing entry with new values.
func (s *StealthService) Update(ctx context.Context, ownerID, id string, input StealthInput) (*domain.StealthEntry, error) {
	existing, err := s.getOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	entry := domain.StealthEntry{
		ID:        existing.ID,
		OwnerID:   existing.OwnerID,
		Title:     input.Title,
		Note:      input.Note,
		Amount:    input.Amount,
		EntryDate: input.EntryDate,
		CreatedAt: existing.CreatedAt,
		UpdatedAt: s.now().UTC(),
	}
	if entry.EntryDate.IsZero() {
		entry.EntryDate = existing.EntryDate
	}

	sealed, err := s.seal(entry)
	if err != nil {
		return nil, err
	}

	if err := s.entries.Update(ctx, *sealed); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrStealthEntryNotFound
		}
		return nil, fmt.Errorf("update ledger entry: %w", err)
	}

	s.publishAccess(ctx, ownerID, "update")

	return &entry, nil
}

// Delete removes an entry permanently.
func (s *StealthService) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := s.getOwned(ctx, ownerID, id); err != nil {
		return err
	}

	if err := s.entries.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrStealthEntryNotFound
		}
		return fmt.Errorf("delete ledger entry: %w", err)
	}

	s.publishAccess(ctx, ownerID, "delete")

	return nil
}

// List opens and returns the owner's entries, newest entry date first.
func (s *StealthService) List(ctx context.Context, ownerID string) ([]domain.StealthEntry, error) {
	sealed, err := s.entries.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}

	entries := make([]domain.StealthEntry, 0, len(sealed))
	for _, record := range sealed {
		entry, err := s.open(record)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}

	s.publishAccess(ctx, ownerID, "list")

	return entries, nil
}

func (s *StealthService) getOwned(ctx context.Context, ownerID, id string) (*domain.SealedStealthEntry, error) {
	sealed, err := s.entries.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrStealthEntryNotFound
		}
		return nil, fmt.Errorf("get ledger entry: %w", err)
	}

	// An entry belonging to someone else answers exactly like a missing one.
	if sealed.OwnerID != ownerID {
		return nil, ErrStealthEntryNotFound
	}

	return sealed, nil
}

func (s *StealthService) seal(entry domain.StealthEntry) (*domain.SealedStealthEntry, error) {
	titleEnc, err := s.box.Seal(entry.Title)
	if err != nil {
		return nil, fmt.Errorf("seal title: %w", err)
	}

	noteEnc, err := s.box.Seal(entry.Note)
	if err != nil {
		return nil, fmt.Errorf("seal note: %w", err)
	}

	amountEnc, err := s.box.Seal(strconv.FormatFloat(entry.Amount, 'f', 2, 64))
	if err != nil {
		return nil, fmt.Errorf("seal amount: %w", err)
	}

	return &domain.SealedStealthEntry{
		ID:        entry.ID,
		OwnerID:   entry.OwnerID,
		TitleEnc:  titleEnc,
		NoteEnc:   noteEnc,
		AmountEnc: amountEnc,
		EntryDate: entry.EntryDate,
		CreatedAt: entry.CreatedAt,
		UpdatedAt: entry.UpdatedAt,
	}, nil
}

func (s *StealthService) open(sealed domain.SealedStealthEntry) (*domain.StealthEntry, error) {
	title, err := s.box.Open(sealed.TitleEnc)
	if err != nil {
		return nil, fmt.Errorf("open title: %w", err)
	}

	note, err := s.box.Open(sealed.NoteEnc)
	if err != nil {
		return nil, fmt.Errorf("open note: %w", err)
	}

	amountText, err := s.box.Open(sealed.AmountEnc)
	if err != nil {
		return nil, fmt.Errorf("open amount: %w", err)
	}

	amount, err := strconv.ParseFloat(amountText, 64)
	if err != nil {
		return nil, fmt.Errorf("parse sealed amount: %w", err)
	}

	return &domain.StealthEntry{
		ID:        sealed.ID,
		OwnerID:   sealed.OwnerID,
		Title:     title,
		Note:      note,
		Amount:    amount,
		EntryDate: sealed.EntryDate,
		CreatedAt: sealed.CreatedAt,
		UpdatedAt: sealed.UpdatedAt,
	}, nil
}

func (s *StealthService) publishAccess(ctx context.Context, ownerID, action string) {
	if err := s.events.PublishStealthAccess(ctx, domain.StealthAccessEvent{
		EventID:   uuid.NewString(),
		AccountID: ownerID,
		Action:    action,
		At:        s.now().UTC(),
	}); err != nil {
		s.logger.Warn("publish stealth access event failed", zap.Error(err))
	}
}
