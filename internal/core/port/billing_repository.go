package port

import (
	"context"

	"github.com/Fragarianos1981/Dr.platiPel/internal/core/domain"
)

// InvoiceFilter narrows invoice listings.
type InvoiceFilter struct {
	PatientID string
	Status    domain.PaymentStatus
	Limit     int
	Offset    int
}

// ServiceRepository exposes persistence behavior for the price list.
type ServiceRepository interface {
	Create(ctx context.Context, item domain.ServiceItem) error
	GetByID(ctx context.Context, id string) (*domain.ServiceItem, error)
	Update(ctx context.Context, item domain.ServiceItem) error
	List(ctx context.Context, activeOnly bool) ([]domain.ServiceItem, error)
}

// InvoiceRepository exposes persistence behavior for invoices and their lines.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice domain.Invoice) error
	GetByID(ctx context.Context, id string) (*domain.Invoice, error)
	GetByNumber(ctx context.Context, number string) (*domain.Invoice, error)
	UpdatePayment(ctx context.Context, invoice domain.Invoice) error
	List(ctx context.Context, filter InvoiceFilter) ([]domain.Invoice, error)
}
