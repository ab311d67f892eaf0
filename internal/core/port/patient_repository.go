package port

import (
	"context"

	"github.com/Fragarianos1981/Dr.platiPel/internal/core/domain"
)

// PatientFilter narrows patient listings.
type PatientFilter struct {
	// Search is matched (accent-insensitively) against name and AMKA.
	Search   string
	IsActive *bool
	Limit    int
	Offset   int
}

// PatientRepository exposes persistence behavior for patient records.
type PatientRepository interface {
	Create(ctx context.Context, patient domain.Patient) error
	GetByID(ctx context.Context, id string) (*domain.Patient, error)
	GetByAMKA(ctx context.Context, amka string) (*domain.Patient, error)
	Update(ctx context.Context, patient domain.Patient) error
	SoftDelete(ctx context.Context, id string) error
	List(ctx context.Context, filter PatientFilter) ([]domain.Patient, error)
	Count(ctx context.Context, filter PatientFilter) (int, error)
}

// VisitRepository exposes persistence behavior for consultations.
type VisitRepository interface {
	Create(ctx context.Context, visit domain.Visit) error
	GetByID(ctx context.Context, id string) (*domain.Visit, error)
	Update(ctx context.Context, visit domain.Visit) error
	ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]domain.Visit, error)
}

// VaccinationRepository exposes persistence behavior for vaccine doses.
type VaccinationRepository interface {
	Create(ctx context.Context, vaccination domain.Vaccination) error
	ListByPatient(ctx context.Context, patientID string) ([]domain.Vaccination, error)
}
