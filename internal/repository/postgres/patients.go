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

// PatientRepository implements port.PatientRepository using PostgreSQL.
type PatientRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewPatientRepository wires a PostgreSQL-backed patient repository.
func NewPatientRepository(exec pgExecutor) *PatientRepository {
	return &PatientRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var patientColumns = []string{
	"id",
	"amka",
	"first_name",
	"last_name",
	"birth_date",
	"sex",
	"phone",
	"email",
	"address",
	"father_name",
	"mother_name",
	"guardian_name",
	"blood_type",
	"allergies",
	"medical_history",
	"birth_weight_kg",
	"birth_length_cm",
	"is_active",
	"created_at",
	"updated_at",
}

// Create inserts a new patient row. The search_name column carries the
// accent-stripped lowercase form of the full name used by search.
func (r *PatientRepository) Create(ctx context.Context, patient domain.Patient) error {
	query := r.builder.Insert("plati.patients").
		Columns(append(append([]string{}, patientColumns...), "search_name")...).
		Values(
			patient.ID,
			patient.AMKA,
			patient.FirstName,
			patient.LastName,
			patient.BirthDate,
			patient.Sex,
			patient.Phone,
			patient.Email,
			patient.Address,
			patient.FatherName,
			patient.MotherName,
			patient.GuardianName,
			patient.BloodType,
			patient.Allergies,
			patient.MedicalHistory,
			patient.BirthWeightKg,
			patient.BirthLengthCm,
			patient.IsActive,
			patient.CreatedAt,
			patient.UpdatedAt,
			domain.NormalizeSearchTerm(patient.FullName()),
		)

	stmt, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build insert patient sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("insert patient: %w", err)
	}

	return nil
}

// GetByID retrieves a patient by identifier.
func (r *PatientRepository) GetByID(ctx context.Context, id string) (*domain.Patient, error) {
	return r.getBy(ctx, squirrel.Eq{"id": id})
}

// GetByAMKA retrieves a patient by national ID.
func (r *PatientRepository) GetByAMKA(ctx context.Context, amka string) (*domain.Patient, error) {
	return r.getBy(ctx, squirrel.Eq{"amka": amka})
}

func (r *PatientRepository) getBy(ctx context.Context, cond squirrel.Eq) (*domain.Patient, error) {
	stmt, args, err := r.builder.
		Select(patientColumns...).
		From("plati.patients").
		Where(cond).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select patient sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	patient, err := scanPatient(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan patient: %w", err)
	}

	return patient, nil
}

func scanPatient(row pgx.Row) (*domain.Patient, error) {
	var patient domain.Patient

	if err := row.Scan(
		&patient.ID,
		&patient.AMKA,
		&patient.FirstName,
		&patient.LastName,
		&patient.BirthDate,
		&patient.Sex,
		&patient.Phone,
		&patient.Email,
		&patient.Address,
		&patient.FatherName,
		&patient.MotherName,
		&patient.GuardianName,
		&patient.BloodType,
		&patient.Allergies,
		&patient.MedicalHistory,
		&patient.BirthWeightKg,
		&patient.BirthLengthCm,
		&patient.IsActive,
		&patient.CreatedAt,
		&patient.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &patient, nil
}

// Update modifies an existing patient's fields and refreshes the search column.
func (r *PatientRepository) Update(ctx context.Context, patient domain.Patient) error {
	stmt, args, err := r.builder.Update("plati.patients").
		Set("amka", patient.AMKA).
		Set("first_name", patient.FirstName).
		Set("last_name", patient.LastName).
		Set("birth_date", patient.BirthDate).
		Set("sex", patient.Sex).
		Set("phone", patient.Phone).
		Set("email", patient.Email).
		Set("address", patient.Address).
		Set("father_name", patient.FatherName).
		Set("mother_name", patient.MotherName).
		Set("guardian_name", patient.GuardianName).
		Set("blood_type", patient.BloodType).
		Set("allergies", patient.Allergies).
		Set("medical_history", patient.MedicalHistory).
		Set("birth_weight_kg", patient.BirthWeightKg).
		Set("birth_length_cm", patient.BirthLengthCm).
		Set("updated_at", patient.UpdatedAt).
		Set("search_name", domain.NormalizeSearchTerm(patient.FullName())).
		Where(squirrel.Eq{"id": patient.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update patient sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("update patient: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// SoftDelete marks a patient record as inactive.
func (r *PatientRepository) SoftDelete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Update("plati.patients").
		Set("is_active", false).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build soft delete patient sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("soft delete patient: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *PatientRepository) applyFilter(query squirrel.SelectBuilder, filter port.PatientFilter) squirrel.SelectBuilder {
	if filter.Search != "" {
		normalized := "%" + domain.NormalizeSearchTerm(filter.Search) + "%"
		query = query.Where(squirrel.Or{
			squirrel.Like{"search_name": normalized},
			squirrel.Like{"amka": "%" + filter.Search + "%"},
		})
	}

	if filter.IsActive != nil {
		query = query.Where(squirrel.Eq{"is_active": *filter.IsActive})
	}

	return query
}

// List returns patients with optional search filtering and pagination.
func (r *PatientRepository) List(ctx context.Context, filter port.PatientFilter) ([]domain.Patient, error) {
	query := r.applyFilter(
		r.builder.Select(patientColumns...).
			From("plati.patients").
			OrderBy("last_name ASC", "first_name ASC"),
		filter,
	)

	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}

	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list patients sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query patients: %w", err)
	}
	defer rows.Close()

	patients := make([]domain.Patient, 0)
	for rows.Next() {
		patient, err := scanPatient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan patient: %w", err)
		}
		patients = append(patients, *patient)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate patients: %w", err)
	}

	return patients, nil
}

// Count returns the number of patients matching the filter.
func (r *PatientRepository) Count(ctx context.Context, filter port.PatientFilter) (int, error) {
	query := r.applyFilter(
		r.builder.Select("COUNT(*)").From("plati.patients"),
		filter,
	)

	stmt, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count patients sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var count int64
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("scan patients count: %w", err)
	}

	return int(count), nil
}

var _ port.PatientRepository = (*PatientRepository)(nil)
