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
	// ErrPatientNotFound indicates the referenced patient does not exist.
	ErrPatientNotFound = errors.New("patient not found")
	// ErrPatientExists indicates another patient already holds the AMKA.
	ErrPatientExists = errors.New("patient already exists")
)

// PatientService manages the patient registry.
type PatientService struct {
	patients port.PatientRepository
	logger   *zap.Logger
	now      func() time.Time
}

// NewPatientService constructs a PatientService.
func NewPatientService(patients port.PatientRepository, logger *zap.Logger) *PatientService {
	return &PatientService{
		patients: patients,
		logger:   logger,
		now:      time.Now,
	}
}

// PatientInput carries the writable fields of a patient record.
type PatientInput struct {
	AMKA           string
	FirstName      string
	LastName       string
	BirthDate      time.Time
	Sex            string
	Phone          string
	Email          string
	Address        string
	FatherName     string
	MotherName     string
	GuardianName   string
	BloodType      string
	Allergies      string
	MedicalHistory string
	BirthWeightKg  float64
	BirthLengthCm  float64
}

// Create registers a new patient. The AMKA must pass the checksum; AMKA
// validation errors pass through so callers can report the precise failure.
func (s *PatientService) Create(ctx context.Context, input PatientInput) (*domain.Patient, error) {
	if strings.TrimSpace(input.FirstName) == "" && strings.TrimSpace(input.LastName) == "" {
		return nil, ErrMissingField
	}

	if err := domain.ValidateAMKA(input.AMKA); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	patient := domain.Patient{
		ID:             uuid.NewString(),
		AMKA:           input.AMKA,
		FirstName:      strings.TrimSpace(input.FirstName),
		LastName:       strings.TrimSpace(input.LastName),
		BirthDate:      input.BirthDate,
		Sex:            input.Sex,
		Phone:          input.Phone,
		Email:          input.Email,
		Address:        input.Address,
		FatherName:     input.FatherName,
		MotherName:     input.MotherName,
		GuardianName:   input.GuardianName,
		BloodType:      input.BloodType,
		Allergies:      input.Allergies,
		MedicalHistory: input.MedicalHistory,
		BirthWeightKg:  input.BirthWeightKg,
		BirthLengthCm:  input.BirthLengthCm,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.patients.Create(ctx, patient); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrPatientExists
		}
		return nil, fmt.Errorf("create patient: %w", err)
	}

	return &patient, nil
}

// Update rewrites a patient record with the supplied fields.
func (s *PatientService) Update(ctx context.Context, id string, input PatientInput) (*domain.Patient, error) {
	patient, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := domain.ValidateAMKA(input.AMKA); err != nil {
		return nil, err
	}

	patient.AMKA = input.AMKA
	patient.FirstName = strings.TrimSpace(input.FirstName)
	patient.LastName = strings.TrimSpace(input.LastName)
	patient.BirthDate = input.BirthDate
	patient.Sex = input.Sex
	patient.Phone = input.Phone
	patient.Email = input.Email
	patient.Address = input.Address
	patient.FatherName = input.FatherName
	patient.MotherName = input.MotherName
	patient.GuardianName = input.GuardianName
	patient.BloodType = input.BloodType
	patient.Allergies = input.Allergies
	patient.MedicalHistory = input.MedicalHistory
	patient.BirthWeightKg = input.BirthWeightKg
	patient.BirthLengthCm = input.BirthLengthCm
	patient.UpdatedAt = s.now().UTC()

	if err := s.patients.Update(ctx, *patient); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrPatientExists
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("update patient: %w", err)
	}

	return patient, nil
}

// Get retrieves a patient by identifier.
func (s *PatientService) Get(ctx context.Context, id string) (*domain.Patient, error) {
	if id == "" {
		return nil, ErrPatientNotFound
	}

	patient, err := s.patients.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("get patient: %w", err)
	}

	return patient, nil
}

// GetByAMKA retrieves a patient by national ID.
func (s *PatientService) GetByAMKA(ctx context.Context, amka string) (*domain.Patient, error) {
	patient, err := s.patients.GetByAMKA(ctx, amka)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("get patient by amka: %w", err)
	}

	return patient, nil
}

// List returns patients matching the filter plus the unpaged total. Name
// search is accent-insensitive.
func (s *PatientService) List(ctx context.Context, filter port.PatientFilter) ([]domain.Patient, int, error) {
	patients, err := s.patients.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list patients: %w", err)
	}

	total, err := s.patients.Count(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count patients: %w", err)
	}

	return patients, total, nil
}

// Archive soft-deletes a patient. The record stays queryable for history.
func (s *PatientService) Archive(ctx context.Context, id string) error {
	if err := s.patients.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPatientNotFound
		}
		return fmt.Errorf("archive patient: %w", err)
	}

	return nil
}
