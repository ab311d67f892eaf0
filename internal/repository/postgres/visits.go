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

// VisitRepository implements port.VisitRepository using PostgreSQL.
type VisitRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewVisitRepository wires a PostgreSQL-backed visit repository.
func NewVisitRepository(exec pgExecutor) *VisitRepository {
	return &VisitRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var visitColumns = []string{
	"id",
	"patient_id",
	"doctor_id",
	"visited_at",
	"reason",
	"weight_kg",
	"height_cm",
	"temperature_c",
	"head_circum_cm",
	"exam_findings",
	"diagnosis",
	"plan",
	"created_at",
	"updated_at",
}

// Create inserts a new visit row.
func (r *VisitRepository) Create(ctx context.Context, visit domain.Visit) error {
	stmt, args, err := r.builder.Insert("plati.visits").
		Columns(visitColumns...).
		Values(
			visit.ID,
			visit.PatientID,
			visit.DoctorID,
			visit.VisitedAt,
			visit.Reason,
			visit.WeightKg,
			visit.HeightCm,
			visit.TemperatureC,
			visit.HeadCircumCm,
			visit.ExamFindings,
			visit.Diagnosis,
			visit.Plan,
			visit.CreatedAt,
			visit.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert visit sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert visit: %w", err)
	}

	return nil
}

// GetByID retrieves a visit by identifier.
func (r *VisitRepository) GetByID(ctx context.Context, id string) (*domain.Visit, error) {
	stmt, args, err := r.builder.
		Select(visitColumns...).
		From("plati.visits").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select visit sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	visit, err := scanVisit(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan visit: %w", err)
	}

	return visit, nil
}

func scanVisit(row pgx.Row) (*domain.Visit, error) {
	var visit domain.Visit

	if err := row.Scan(
		&visit.ID,
		&visit.PatientID,
		&visit.DoctorID,
		&visit.VisitedAt,
		&visit.Reason,
		&visit.WeightKg,
		&visit.HeightCm,
		&visit.TemperatureC,
		&visit.HeadCircumCm,
		&visit.ExamFindings,
		&visit.Diagnosis,
		&visit.Plan,
		&visit.CreatedAt,
		&visit.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &visit, nil
}

// Update modifies an existing visit.
func (r *VisitRepository) Update(ctx context.Context, visit domain.Visit) error {
	stmt, args, err := r.builder.Update("plati.visits").
		Set("visited_at", visit.VisitedAt).
		Set("reason", visit.Reason).
		Set("weight_kg", visit.WeightKg).
		Set("height_cm", visit.HeightCm).
		Set("temperature_c", visit.TemperatureC).
		Set("head_circum_cm", visit.HeadCircumCm).
		Set("exam_findings", visit.ExamFindings).
		Set("diagnosis", visit.Diagnosis).
		Set("plan", visit.Plan).
		Set("updated_at", visit.UpdatedAt).
		Where(squirrel.Eq{"id": visit.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update visit sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update visit: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// ListByPatient returns a patient's visits, most recent first.
func (r *VisitRepository) ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]domain.Visit, error) {
	query := r.builder.Select(visitColumns...).
		From("plati.visits").
		Where(squirrel.Eq{"patient_id": patientID}).
		OrderBy("visited_at DESC")

	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	if offset > 0 {
		query = query.Offset(uint64(offset))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list visits sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query visits: %w", err)
	}
	defer rows.Close()

	visits := make([]domain.Visit, 0)
	for rows.Next() {
		visit, err := scanVisit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan visit: %w", err)
		}
		visits = append(visits, *visit)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate visits: %w", err)
	}

	return visits, nil
}

var _ port.VisitRepository = (*VisitRepository)(nil)

// VaccinationRepository implements port.VaccinationRepository using PostgreSQL.
type VaccinationRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewVaccinationRepository wires a PostgreSQL-backed vaccination repository.
func NewVaccinationRepository(exec pgExecutor) *VaccinationRepository {
	return &VaccinationRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new vaccination row.
func (r *VaccinationRepository) Create(ctx context.Context, vaccination domain.Vaccination) error {
	stmt, args, err := r.builder.Insert("plati.vaccinations").
		Columns(
			"id",
			"patient_id",
			"vaccine_name",
			"dose_label",
			"administered_at",
			"administered_by",
			"notes",
			"created_at",
		).
		Values(
			vaccination.ID,
			vaccination.PatientID,
			vaccination.VaccineName,
			vaccination.DoseLabel,
			vaccination.AdministeredAt,
			vaccination.AdministeredBy,
			vaccination.Notes,
			vaccination.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert vaccination sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert vaccination: %w", err)
	}

	return nil
}

// ListByPatient returns all recorded doses for a patient in administration order.
func (r *VaccinationRepository) ListByPatient(ctx context.Context, patientID string) ([]domain.Vaccination, error) {
	stmt, args, err := r.builder.Select(
		"id",
		"patient_id",
		"vaccine_name",
		"dose_label",
		"administered_at",
		"administered_by",
		"notes",
		"created_at",
	).
		From("plati.vaccinations").
		Where(squirrel.Eq{"patient_id": patientID}).
		OrderBy("administered_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list vaccinations sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query vaccinations: %w", err)
	}
	defer rows.Close()

	vaccinations := make([]domain.Vaccination, 0)
	for rows.Next() {
		var v domain.Vaccination
		if err := rows.Scan(
			&v.ID,
			&v.PatientID,
			&v.VaccineName,
			&v.DoseLabel,
			&v.AdministeredAt,
			&v.AdministeredBy,
			&v.Notes,
			&v.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan vaccination: %w", err)
		}
		vaccinations = append(vaccinations, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vaccinations: %w", err)
	}

	return vaccinations, nil
}

var _ port.VaccinationRepository = (*VaccinationRepository)(nil)
