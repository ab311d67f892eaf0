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

// CertificateRepository implements port.CertificateRepository using PostgreSQL.
type CertificateRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewCertificateRepository wires a PostgreSQL-backed certificate log.
func NewCertificateRepository(exec pgExecutor) *CertificateRepository {
	return &CertificateRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var certificateColumns = []string{
	"id",
	"number",
	"patient_id",
	"kind",
	"purpose",
	"issued_by",
	"issued_at",
}

// Create appends an issued certificate to the log.
func (r *CertificateRepository) Create(ctx context.Context, cert domain.CertificateLog) error {
	stmt, args, err := r.builder.Insert("plati.certificates").
		Columns(certificateColumns...).
		Values(
			cert.ID,
			cert.Number,
			cert.PatientID,
			cert.Kind,
			cert.Purpose,
			cert.IssuedBy,
			cert.IssuedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert certificate sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("insert certificate: %w", err)
	}

	return nil
}

// GetByNumber retrieves a certificate by its printed number.
func (r *CertificateRepository) GetByNumber(ctx context.Context, number string) (*domain.CertificateLog, error) {
	stmt, args, err := r.builder.
		Select(certificateColumns...).
		From("plati.certificates").
		Where(squirrel.Eq{"number": number}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select certificate sql: %w", err)
	}

	cert, err := scanCertificate(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan certificate: %w", err)
	}

	return cert, nil
}

func scanCertificate(row pgx.Row) (*domain.CertificateLog, error) {
	var (
		cert domain.CertificateLog
		kind string
	)

	if err := row.Scan(
		&cert.ID,
		&cert.Number,
		&cert.PatientID,
		&kind,
		&cert.Purpose,
		&cert.IssuedBy,
		&cert.IssuedAt,
	); err != nil {
		return nil, err
	}

	cert.Kind = domain.CertificateKind(kind)

	return &cert, nil
}

// ListByPatient returns every certificate issued for a patient, newest first.
func (r *CertificateRepository) ListByPatient(ctx context.Context, patientID string) ([]domain.CertificateLog, error) {
	stmt, args, err := r.builder.
		Select(certificateColumns...).
		From("plati.certificates").
		Where(squirrel.Eq{"patient_id": patientID}).
		OrderBy("issued_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list certificates sql: %w", err)
	}

	return r.queryCertificates(ctx, stmt, args)
}

// List returns the certificate log, newest first.
func (r *CertificateRepository) List(ctx context.Context, limit, offset int) ([]domain.CertificateLog, error) {
	query := r.builder.
		Select(certificateColumns...).
		From("plati.certificates").
		OrderBy("issued_at DESC")

	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	if offset > 0 {
		query = query.Offset(uint64(offset))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list certificates sql: %w", err)
	}

	return r.queryCertificates(ctx, stmt, args)
}

func (r *CertificateRepository) queryCertificates(ctx context.Context, stmt string, args []any) ([]domain.CertificateLog, error) {
	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query certificates: %w", err)
	}
	defer rows.Close()

	certs := make([]domain.CertificateLog, 0)
	for rows.Next() {
		cert, err := scanCertificate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan certificate: %w", err)
		}
		certs = append(certs, *cert)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate certificates: %w", err)
	}

	return certs, nil
}

var _ port.CertificateRepository = (*CertificateRepository)(nil)
