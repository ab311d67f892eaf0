package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Fragarianos1981/Dr.platiPel/internal/core/domain"
	"github.com/Fragarianos1981/Dr.platiPel/internal/core/port"
	"github.com/Fragarianos1981/Dr.platiPel/internal/repository"
)

// ErrVisitNotFound indicates the referenced visit does not exist.
var ErrVisitNotFound = errors.New("visit not found")

// VisitService manages consultations and the vaccination card.
type VisitService struct {
	visits       port.VisitRepository
	vaccinations port.VaccinationRepository
	patients     port.PatientRepository
	logger       *zap.Logger
	now          func() time.Time
}

// NewVisitService constructs a VisitService.
func NewVisitService(visits port.VisitRepository, vaccinations port.VaccinationRepository, patients port.PatientRepository, logger *zap.Logger) *VisitService {
	return &VisitService{
		visits:       visits,
		vaccinations: vaccinations,
		patients:     patients,
		logger:       logger,
		now:          time.Now,
	}
}

// VisitInput carries the writable fields of a consultation.
type VisitInput struct {
	PatientID    string
	DoctorID     string
	VisitedAt    time.Time
	Reason       string
	WeightKg     float64
	HeightCm     float64
	TemperatureC float64
	HeadCircumCm float64
	ExamFindings string
	Diagnosis    string
	Plan         string
}

// Record stores a new consultation for an existing patient.
func (s *VisitService) Record(ctx context.Context, input VisitInput) (*domain.Visit, error) {
	if input.PatientID == "" {
		return nil, ErrMissingField
	}

	if _, err := s.patients.GetByID(ctx, input.PatientID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("lookup patient: %w", err)
	}

	now := s.now().UTC()
	visitedAt := input.VisitedAt
	if visitedAt.IsZero() {
		visitedAt = now
	}

	visit := domain.Visit{
		ID:           uuid.NewString(),
		PatientID:    input.PatientID,
		DoctorID:     input.DoctorID,
		VisitedAt:    visitedAt,
		Reason:       input.Reason,
		WeightKg:     input.WeightKg,
		HeightCm:     input.HeightCm,
		TemperatureC: input.TemperatureC,
		HeadCircumCm: input.HeadCircumCm,
		ExamFindings: input.ExamFindings,
		Diagnosis:    input.Diagnosis,
		Plan:         input.Plan,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.visits.Create(ctx, visit); err != nil {
		return nil, fmt.Errorf("create visit: %w", err)
	}

	return &visit, nil
}

// Update rewrites a consultation's clinical fields.
func (s *VisitService) Update(ctx context.Context, id string, input VisitInput) (*domain.Visit, error) {
	visit, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !input.VisitedAt.IsZero() {
		visit.VisitedAt = input.VisitedAt
	}
	visit.Reason = input.Reason
	visit.WeightKg = input.WeightKg
	visit.HeightCm = input.HeightCm
	visit.TemperatureC = input.TemperatureC
	visit.HeadCircumCm = input.HeadCircumCm
	visit.ExamFindings = input.ExamFindings
	visit.Diagnosis = input.Diagnosis
	visit.Plan = input.Plan
	visit.UpdatedAt = s.now().UTC()

	if err := s.visits.Update(ctx, *visit); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrVisitNotFound
		}
		return nil, fmt.Errorf("update visit: %w", err)
	}

	return visit, nil
}

// Get retrieves a consultation by identifier.
func (s *VisitService) Get(ctx context.Context, id string) (*domain.Visit, error) {
	if id == "" {
		return nil, ErrVisitNotFound
	}

	visit, err := s.visits.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrVisitNotFound
		}
		return nil, fmt.Errorf("get visit: %w", err)
	}

	return visit, nil
}

// ListByPatient returns a patient's visit history, most recent first.
func (s *VisitService) ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]domain.Visit, error) {
	visits, err := s.visits.ListByPatient(ctx, patientID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list visits: %w", err)
	}

	return visits, nil
}

// VaccinationInput carries the fields for one administered dose.
type VaccinationInput struct {
	PatientID      string
	VaccineName    string
	DoseLabel      string
	AdministeredAt time.Time
	AdministeredBy string
	Notes          string
}

// RecordVaccination appends a dose to the patient's vaccination card.
func (s *VisitService) RecordVaccination(ctx context.Context, input VaccinationInput) (*domain.Vaccination, error) {
	if input.PatientID == "" || input.VaccineName == "" {
		return nil, ErrMissingField
	}

	if _, err := s.patients.GetByID(ctx, input.PatientID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("lookup patient: %w", err)
	}

	now := s.now().UTC()
	administeredAt := input.AdministeredAt
	if administeredAt.IsZero() {
		administeredAt = now
	}

	vaccination := domain.Vaccination{
		ID:             uuid.NewString(),
		PatientID:      input.PatientID,
		VaccineName:    input.VaccineName,
		DoseLabel:      input.DoseLabel,
		AdministeredAt: administeredAt,
		AdministeredBy: input.AdministeredBy,
		Notes:          input.Notes,
		CreatedAt:      now,
	}

	if err := s.vaccinations.Create(ctx, vaccination); err != nil {
		return nil, fmt.Errorf("create vaccination: %w", err)
	}

	return &vaccination, nil
}

// VaccinationCard returns every recorded dose for a patient in administration order.
func (s *VisitService) VaccinationCard(ctx context.Context, patientID string) ([]domain.Vaccination, error) {
	doses, err := s.vaccinations.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("list vaccinations: %w", err)
	}

	return doses, nil
}
