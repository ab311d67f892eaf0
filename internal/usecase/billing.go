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

const invoiceNumberAttempts = 5

var (
	// ErrServiceNotFound indicates the referenced price list entry does not exist.
	ErrServiceNotFound = errors.New("service not found")
	// ErrInvoiceNotFound indicates the referenced invoice does not exist.
	ErrInvoiceNotFound = errors.New("invoice not found")
	// ErrEmptyInvoice indicates an invoice was submitted without any lines.
	ErrEmptyInvoice = errors.New("invoice has no lines")
	// ErrInvalidPayment indicates a payment amount or method is unusable.
	ErrInvalidPayment = errors.New("invalid payment")
)

// BillingService manages the price list and invoices.
type BillingService struct {
	services port.ServiceRepository
	invoices port.InvoiceRepository
	patients port.PatientRepository
	logger   *zap.Logger
	now      func() time.Time
}

// NewBillingService constructs a BillingService.
func NewBillingService(services port.ServiceRepository, invoices port.InvoiceRepository, patients port.PatientRepository, logger *zap.Logger) *BillingService {
	return &BillingService{
		services: services,
		invoices: invoices,
		patients: patients,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock overrides the time source. Test hook.
func (s *BillingService) WithClock(now func() time.Time) *BillingService {
	s.now = now
	return s
}

// ServiceInput carries the writable fields of a price list entry.
type ServiceInput struct {
	Name        string
	Description string
	Price       float64
}

// CreateService adds a price list entry.
func (s *BillingService) CreateService(ctx context.Context, input ServiceInput) (*domain.ServiceItem, error) {
	if input.Name == "" {
		return nil, ErrMissingField
	}

	item := domain.ServiceItem{
		ID:          uuid.NewString(),
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		IsActive:    true,
		CreatedAt:   s.now().UTC(),
	}

	if err := s.services.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("create service: %w", err)
	}

	return &item, nil
}

// UpdateService modifies a price list entry.
func (s *BillingService) UpdateService(ctx context.Context, id string, input ServiceInput, active bool) (*domain.ServiceItem, error) {
	item, err := s.services.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("get service: %w", err)
	}

	item.Name = input.Name
	item.Description = input.Description
	item.Price = input.Price
	item.IsActive = active

	if err := s.services.Update(ctx, *item); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("update service: %w", err)
	}

	return item, nil
}

// ListServices returns the price list.
func (s *BillingService) ListServices(ctx context.Context, activeOnly bool) ([]domain.ServiceItem, error) {
	items, err := s.services.List(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}

	return items, nil
}

// InvoiceLineInput references a price list entry and a quantity.
type InvoiceLineInput struct {
	ServiceID string
	Quantity  int
}

// CreateInvoiceInput carries the fields for issuing an invoice.
type CreateInvoiceInput struct {
	PatientID string
	IssuedBy  string
	Lines     []InvoiceLineInput
	Notes     string
}

// CreateInvoice issues a new invoice. Unit prices are snapshotted from the
// price list at issue time so later price changes leave old invoices intact.
// Numbers follow the YYYYMM-nnnnnn scheme; a collision on the random suffix
// retries with a fresh one.
func (s *BillingService) CreateInvoice(ctx context.Context, input CreateInvoiceInput) (*domain.Invoice, error) {
	if input.PatientID == "" {
		return nil, ErrMissingField
	}
	if len(input.Lines) == 0 {
		return nil, ErrEmptyInvoice
	}

	if _, err := s.patients.GetByID(ctx, input.PatientID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("lookup patient: %w", err)
	}

	now := s.now().UTC()
	invoiceID := uuid.NewString()

	lines := make([]domain.InvoiceLine, 0, len(input.Lines))
	for _, lineInput := range input.Lines {
		if lineInput.Quantity <= 0 {
			return nil, ErrEmptyInvoice
		}

		item, err := s.services.GetByID(ctx, lineInput.ServiceID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrServiceNotFound
			}
			return nil, fmt.Errorf("lookup service: %w", err)
		}

		lines = append(lines, domain.InvoiceLine{
			ID:          uuid.NewString(),
			InvoiceID:   invoiceID,
			ServiceID:   item.ID,
			ServiceName: item.Name,
			Quantity:    lineInput.Quantity,
			UnitPrice:   item.Price,
		})
	}

	invoice := domain.Invoice{
		ID:        invoiceID,
		PatientID: input.PatientID,
		IssuedBy:  input.IssuedBy,
		IssuedAt:  now,
		Lines:     lines,
		VATRate:   domain.DefaultVATRate,
		Status:    domain.PaymentPending,
		Notes:     input.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}

	for attempt := 0; attempt < invoiceNumberAttempts; attempt++ {
		number, err := s.nextInvoiceNumber(now)
		if err != nil {
			return nil, err
		}
		invoice.Number = number

		err = s.invoices.Create(ctx, invoice)
		if err == nil {
			return &invoice, nil
		}
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("create invoice: %w", err)
		}
	}

	return nil, fmt.Errorf("create invoice: could not allocate a unique number")
}

func (s *BillingService) nextInvoiceNumber(at time.Time) (string, error) {
	suffix, err := security.GenerateNumericCode(6)
	if err != nil {
		return "", fmt.Errorf("generate invoice number: %w", err)
	}

	return fmt.Sprintf("%s-%s", at.Format("200601"), suffix), nil
}

// GetInvoice retrieves an invoice with its lines.
func (s *BillingService) GetInvoice(ctx context.Context, id string) (*domain.Invoice, error) {
	if id == "" {
		return nil, ErrInvoiceNotFound
	}

	invoice, err := s.invoices.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}

	return invoice, nil
}

// ListInvoices returns invoices matching the filter.
func (s *BillingService) ListInvoices(ctx context.Context, filter port.InvoiceFilter) ([]domain.Invoice, error) {
	invoices, err := s.invoices.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}

	return invoices, nil
}

// RecordPayment applies a payment to an invoice and persists the new
// settlement state.
func (s *BillingService) RecordPayment(ctx context.Context, invoiceID string, amount float64, method domain.PaymentMethod) (*domain.Invoice, error) {
	if amount <= 0 || !method.Valid() {
		return nil, ErrInvalidPayment
	}

	invoice, err := s.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	if invoice.Status == domain.PaymentCancelled {
		return nil, ErrInvalidPayment
	}

	invoice.RecordPayment(amount, method, s.now().UTC())

	if err := s.invoices.UpdatePayment(ctx, *invoice); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("record payment: %w", err)
	}

	return invoice, nil
}

// CancelInvoice voids an invoice. Paid invoices cannot be cancelled.
func (s *BillingService) CancelInvoice(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	invoice, err := s.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	if invoice.Status == domain.PaymentPaid {
		return nil, ErrInvalidPayment
	}

	invoice.Status = domain.PaymentCancelled
	invoice.UpdatedAt = s.now().UTC()

	if err := s.invoices.UpdatePayment(ctx, *invoice); err != nil {
		return nil, fmt.Errorf("cancel invoice: %w", err)
	}

	return invoice, nil
}
