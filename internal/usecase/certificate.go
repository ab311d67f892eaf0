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
	"github.com/Fragarianos1981/Dr.platiPel/internal/infra/security"
	"github.com/Fragarianos1981/Dr.platiPel/internal/repository"
)

const certificateNumberAttempts = 5

var (
	// ErrCertificateNotFound indicates the referenced certificate does not exist.
	ErrCertificateNotFound = errors.New("certificate not found")
	// ErrInvalidCertificateKind indicates an unknown certificate template.
	ErrInvalidCertificateKind = errors.New("invalid certificate kind")
)

// CertificateService issues medical certificates and keeps their log.
type CertificateService struct {
	certificates port.CertificateRepository
	patients     port.PatientRepository
	events       port.EventPublisher
	logger       *zap.Logger
	now          func() time.Time
}

// NewCertificateService constructs a CertificateService.
func NewCertificateService(certificates port.CertificateRepository, patients port.PatientRepository, events port.EventPublisher, logger *zap.Logger) *CertificateService {
	return &CertificateService{
		certificates: certificates,
		patients:     patients,
		events:       events,
		logger:       logger,
		now:          time.Now,
	}
}

// WithClock overrides the time source. Test hook.
func (s *CertificateService) WithClock(now func() time.Time) *CertificateService {
	s.now = now
	return s
}

// IssueInput carries the fields for issuing a certificate.
type IssueInput struct {
	PatientID string
	Kind      domain.CertificateKind
	Purpose   string
	IssuedBy  string
}

// Issue creates a certificate log entry with a CERT-YYYY-nnnnnn number. A
// collision on the random suffix retries with a fresh one.
func (s *CertificateService) Issue(ctx context.Context, input IssueInput) (*domain.CertificateLog, error) {
	if input.PatientID == "" {
		return nil, ErrMissingField
	}
	if !input.Kind.Valid() {
		return nil, ErrInvalidCertificateKind
	}

	if _, err := s.patients.GetByID(ctx, input.PatientID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("lookup patient: %w", err)
	}

	now := s.now().UTC()
	cert := domain.CertificateLog{
		ID:        uuid.NewString(),
		PatientID: input.PatientID,
		Kind:      input.Kind,
		Purpose:   input.Purpose,
		IssuedBy:  input.IssuedBy,
		IssuedAt:  now,
	}

	for attempt := 0; attempt < certificateNumberAttempts; attempt++ {
		suffix, err := security.GenerateNumericCode(6)
		if err != nil {
			return nil, fmt.Errorf("generate certificate number: %w", err)
		}
		cert.Number = fmt.Sprintf("CERT-%d-%s", now.Year(), suffix)

		err = s.certificates.Create(ctx, cert)
		if err == nil {
			s.publishIssued(ctx, cert)
			return &cert, nil
		}
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("create certificate: %w", err)
		}
	}

	return nil, fmt.Errorf("create certificate: could not allocate a unique number")
}

func (s *CertificateService) publishIssued(ctx context.Context, cert domain.CertificateLog) {
	if err := s.events.PublishCertificateIssued(ctx, domain.CertificateIssuedEvent{
		EventID:   uuid.NewString(),
		Number:    cert.Number,
		PatientID: cert.PatientID,
		Kind:      string(cert.Kind),
		IssuedBy:  cert.IssuedBy,
		At:        cert.IssuedAt,
	}); err != nil {
		s.logger.Warn("publish certificate issued event failed", zap.Error(err))
	}
}

// GetByNumber retrieves a certificate by its printed number, for verification.
func (s *CertificateService) GetByNumber(ctx context.Context, number string) (*domain.CertificateLog, error) {
	if number == "" {
		return nil, ErrCertificateNotFound
	}

	cert, err := s.certificates.GetByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCertificateNotFound
		}
		return nil, fmt.Errorf("get certificate: %w", err)
	}

	return cert, nil
}

// ListByPatient returns a patient's issued certificates, newest first.
func (s *CertificateService) ListByPatient(ctx context.Context, patientID string) ([]domain.CertificateLog, error) {
	certs, err := s.certificates.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("list certificates: %w", err)
	}

	return certs, nil
}

// List returns the full certificate log, newest first.
func (s *CertificateService) List(ctx context.Context, limit, offset int) ([]domain.CertificateLog, error) {
	certs, err := s.certificates.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list certificates: %w", err)
	}

	return certs, nil
}
