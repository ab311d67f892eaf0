package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Fragarianos1981/Dr.platiPel/internal/core/domain"
	"github.com/Fragarianos1981/Dr.platiPel/internal/infra/security"
	"github.com/Fragarianos1981/Dr.platiPel/internal/repository"
	"github.com/Fragarianos1981/Dr.platiPel/internal/usecase"
)

type fakeStealthRepo struct {
	byID map[string]domain.SealedStealthEntry
}

func newFakeStealthRepo() *fakeStealthRepo {
	return &fakeStealthRepo{byID: make(map[string]domain.SealedStealthEntry)}
}

func (r *fakeStealthRepo) Create(_ context.Context, entry domain.SealedStealthEntry) error {
	r.byID[entry.ID] = entry
	return nil
}

func (r *fakeStealthRepo) GetByID(_ context.Context, id string) (*domain.SealedStealthEntry, error) {
	if entry, ok := r.byID[id]; ok {
		return &entry, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeStealthRepo) Update(_ context.Context, entry domain.SealedStealthEntry) error {
	if _, ok := r.byID[entry.ID]; !ok {
		return repository.ErrNotFound
	}
	r.byID[entry.ID] = entry
	return nil
}

func (r *fakeStealthRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *fakeStealthRepo) ListByOwner(_ context.Context, ownerID string) ([]domain.SealedStealthEntry, error) {
	entries := make([]domain.SealedStealthEntry, 0)
	for _, entry := range r.byID {
		if entry.OwnerID == ownerID {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func newStealthFixture(t *testing.T) (*usecase.StealthService, *fakeStealthRepo, *fakeEventPublisher) {
	t.Helper()

	box, err := security.NewStealthBox("ledger secret", "salt")
	if err != nil {
		t.Fatalf("init box: %v", err)
	}

	repo := newFakeStealthRepo()
	events := &fakeEventPublisher{}
	svc := usecase.NewStealthService(repo, box, events, zap.NewNop())
	return svc, repo, events
}

func TestStealthRoundTrip(t *testing.T) {
	svc, repo, events := newStealthFixture(t)

	entry, err := svc.Add(context.Background(), "owner-1", usecase.StealthInput{
		Title:     "cash visit",
		Note:      "no receipt",
		Amount:    120.50,
		EntryDate: time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}

	// Nothing readable at rest.
	sealed := repo.byID[entry.ID]
	if string(sealed.TitleEnc) == "cash visit" || string(sealed.NoteEnc) == "no receipt" {
		t.Fatal("plaintext leaked into storage")
	}

	entries, err := svc.List(context.Background(), "owner-1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	if entries[0].Title != "cash visit" || entries[0].Amount != 120.50 {
		t.Fatalf("round trip mangled the entry: %+v", entries[0])
	}

	if events.stealthAccesses != 2 {
		t.Fatalf("expected add and list audit events, got %d", events.stealthAccesses)
	}
}

func TestStealthOwnershipIsOpaque(t *testing.T) {
	svc, _, _ := newStealthFixture(t)

	entry, err := svc.Add(context.Background(), "owner-1", usecase.StealthInput{Title: "private"})
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}

	// Another top-level account gets the same answer as for a missing entry.
	if _, err := svc.Update(context.Background(), "owner-2", entry.ID, usecase.StealthInput{Title: "grab"}); !errors.Is(err, usecase.ErrStealthEntryNotFound) {
		t.Fatalf("foreign update should look like a miss, got %v", err)
	}
	if err := svc.Delete(context.Background(), "owner-2", entry.ID); !errors.Is(err, usecase.ErrStealthEntryNotFound) {
		t.Fatalf("foreign delete should look like a miss, got %v", err)
	}

	entries, err := svc.List(context.Background(), "owner-2")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(entries) != 0 {
		t.Fatal("foreign owner must not see the entry")
	}
}

func TestStealthRequiresTitle(t *testing.T) {
	svc, _, _ := newStealthFixture(t)

	if _, err := svc.Add(context.Background(), "owner-1", usecase.StealthInput{}); !errors.Is(err, usecase.ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
}
