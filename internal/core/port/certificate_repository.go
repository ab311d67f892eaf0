package port

import (
	"context"

	"github.com/Fragarianos1981/Dr.platiPel/internal/core/domain"
)

// CertificateRepository exposes persistence behavior for the certificate log.
type CertificateRepository interface {
	Create(ctx context.Context, cert domain.CertificateLog) error
	GetByNumber(ctx context.Context, number string) (*domain.CertificateLog, error)
	ListByPatient(ctx context.Context, patientID string) ([]domain.CertificateLog, error)
	List(ctx context.Context, limit, offset int) ([]domain.CertificateLog, error)
}
