package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repositories groups the concrete PostgreSQL repository implementations.
type Repositories struct {
	Accounts     *AccountRepository
	Patients     *PatientRepository
	Visits       *VisitRepository
	Vaccinations *VaccinationRepository
	Services     *ServiceRepository
	Invoices     *InvoiceRepository
	Certificates *CertificateRepository
	Chat         *ChatRepository
	Stealth      *StealthRepository
}

// NewRepositories wires all repositories backed by the provided pool.
func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Accounts:     NewAccountRepository(pool),
		Patients:     NewPatientRepository(pool),
		Visits:       NewVisitRepository(pool),
		Vaccinations: NewVaccinationRepository(pool),
		Services:     NewServiceRepository(pool),
		Invoices:     NewInvoiceRepository(pool),
		Certificates: NewCertificateRepository(pool),
		Chat:         NewChatRepository(pool),
		Stealth:      NewStealthRepository(pool),
	}
}

// isUniqueViolation reports whether the error is a unique constraint breach.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
