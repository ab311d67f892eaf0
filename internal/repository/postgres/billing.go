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

// ServiceRepository implements port.ServiceRepository using PostgreSQL.
type ServiceRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewServiceRepository wires a PostgreSQL-backed price list repository.
func NewServiceRepository(exec pgExecutor) *ServiceRepository {
	return &ServiceRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new price list entry.
func (r *ServiceRepository) Create(ctx context.Context, item domain.ServiceItem) error {
	stmt, args, err := r.builder.Insert("plati.services").
		Columns("id", "name", "description", "price", "is_active", "created_at").
		Values(item.ID, item.Name, item.Description, item.Price, item.IsActive, item.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert service sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("insert service: %w", err)
	}

	return nil
}

// GetByID retrieves a price list entry.
func (r *ServiceRepository) GetByID(ctx context.Context, id string) (*domain.ServiceItem, error) {
	stmt, args, err := r.builder.
		Select("id", "name", "description", "price", "is_active", "created_at").
		From("plati.services").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select service sql: %w", err)
	}

	var item domain.ServiceItem
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(
		&item.ID,
		&item.Name,
		&item.Description,
		&item.Price,
		&item.IsActive,
		&item.CreatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan service: %w", err)
	}

	return &item, nil
}

// Update modifies a price list entry.
func (r *ServiceRepository) Update(ctx context.Context, item domain.ServiceItem) error {
	stmt, args, err := r.builder.Update("plati.services").
		Set("name", item.Name).
		Set("description", item.Description).
		Set("price", item.Price).
		Set("is_active", item.IsActive).
		Where(squirrel.Eq{"id": item.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update service sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update service: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// List returns price list entries, optionally active ones only.
func (r *ServiceRepository) List(ctx context.Context, activeOnly bool) ([]domain.ServiceItem, error) {
	query := r.builder.
		Select("id", "name", "description", "price", "is_active", "created_at").
		From("plati.services").
		OrderBy("name ASC")

	if activeOnly {
		query = query.Where(squirrel.Eq{"is_active": true})
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list services sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query services: %w", err)
	}
	defer rows.Close()

	items := make([]domain.ServiceItem, 0)
	for rows.Next() {
		var item domain.ServiceItem
		if err := rows.Scan(
			&item.ID,
			&item.Name,
			&item.Description,
			&item.Price,
			&item.IsActive,
			&item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate services: %w", err)
	}

	return items, nil
}

var _ port.ServiceRepository = (*ServiceRepository)(nil)

// InvoiceRepository implements port.InvoiceRepository using PostgreSQL.
type InvoiceRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewInvoiceRepository wires a PostgreSQL-backed invoice repository.
func NewInvoiceRepository(exec pgExecutor) *InvoiceRepository {
	return &InvoiceRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var invoiceColumns = []string{
	"id",
	"number",
	"patient_id",
	"issued_by",
	"issued_at",
	"vat_rate",
	"method",
	"status",
	"amount_paid",
	"notes",
	"created_at",
	"updated_at",
}

// Create inserts an invoice and its lines.
func (r *InvoiceRepository) Create(ctx context.Context, invoice domain.Invoice) error {
	stmt, args, err := r.builder.Insert("plati.invoices").
		Columns(invoiceColumns...).
		Values(
			invoice.ID,
			invoice.Number,
			invoice.PatientID,
			invoice.IssuedBy,
			invoice.IssuedAt,
			invoice.VATRate,
			invoice.Method,
			invoice.Status,
			invoice.AmountPaid,
			invoice.Notes,
			invoice.CreatedAt,
			invoice.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert invoice sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("insert invoice: %w", err)
	}

	for _, line := range invoice.Lines {
		lineStmt, lineArgs, err := r.builder.Insert("plati.invoice_lines").
			Columns("id", "invoice_id", "service_id", "service_name", "quantity", "unit_price").
			Values(line.ID, invoice.ID, line.ServiceID, line.ServiceName, line.Quantity, line.UnitPrice).
			ToSql()
		if err != nil {
			return fmt.Errorf("build insert invoice line sql: %w", err)
		}

		if _, err := r.exec.Exec(ctx, lineStmt, lineArgs...); err != nil {
			return fmt.Errorf("insert invoice line: %w", err)
		}
	}

	return nil
}

// GetByID retrieves an invoice with its lines.
func (r *InvoiceRepository) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	return r.getBy(ctx, squirrel.Eq{"id": id})
}

// GetByNumber retrieves an invoice by its printed number.
func (r *InvoiceRepository) GetByNumber(ctx context.Context, number string) (*domain.Invoice, error) {
	return r.getBy(ctx, squirrel.Eq{"number": number})
}

func (r *InvoiceRepository) getBy(ctx context.Context, cond squirrel.Eq) (*domain.Invoice, error) {
	stmt, args, err := r.builder.
		Select(invoiceColumns...).
		From("plati.invoices").
		Where(cond).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select invoice sql: %w", err)
	}

	invoice, err := scanInvoice(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan invoice: %w", err)
	}

	lines, err := r.listLines(ctx, invoice.ID)
	if err != nil {
		return nil, err
	}
	invoice.Lines = lines

	return invoice, nil
}

func scanInvoice(row pgx.Row) (*domain.Invoice, error) {
	var (
		invoice domain.Invoice
		method  string
		status  string
	)

	if err := row.Scan(
		&invoice.ID,
		&invoice.Number,
		&invoice.PatientID,
		&invoice.IssuedBy,
		&invoice.IssuedAt,
		&invoice.VATRate,
		&method,
		&status,
		&invoice.AmountPaid,
		&invoice.Notes,
		&invoice.CreatedAt,
		&invoice.UpdatedAt,
	); err != nil {
		return nil, err
	}

	invoice.Method = domain.PaymentMethod(method)
	invoice.Status = domain.PaymentStatus(status)

	return &invoice, nil
}

func (r *InvoiceRepository) listLines(ctx context.Context, invoiceID string) ([]domain.InvoiceLine, error) {
	stmt, args, err := r.builder.
		Select("id", "invoice_id", "service_id", "service_name", "quantity", "unit_price").
		From("plati.invoice_lines").
		Where(squirrel.Eq{"invoice_id": invoiceID}).
		OrderBy("service_name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list invoice lines sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query invoice lines: %w", err)
	}
	defer rows.Close()

	lines := make([]domain.InvoiceLine, 0)
	for rows.Next() {
		var line domain.InvoiceLine
		if err := rows.Scan(
			&line.ID,
			&line.InvoiceID,
			&line.ServiceID,
			&line.ServiceName,
			&line.Quantity,
			&line.UnitPrice,
		); err != nil {
			return nil, fmt.Errorf("scan invoice line: %w", err)
		}
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invoice lines: %w", err)
	}

	return lines, nil
}

// UpdatePayment persists the settlement fields after a payment is recorded.
func (r *InvoiceRepository) UpdatePayment(ctx context.Context, invoice domain.Invoice) error {
	stmt, args, err := r.builder.Update("plati.invoices").
		Set("method", invoice.Method).
		Set("status", invoice.Status).
		Set("amount_paid", invoice.AmountPaid).
		Set("updated_at", invoice.UpdatedAt).
		Where(squirrel.Eq{"id": invoice.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update invoice payment sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update invoice payment: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// List returns invoices without their lines; lines load on demand via GetByID.
func (r *InvoiceRepository) List(ctx context.Context, filter port.InvoiceFilter) ([]domain.Invoice, error) {
	query := r.builder.Select(invoiceColumns...).
		From("plati.invoices").
		OrderBy("issued_at DESC")

	if filter.PatientID != "" {
		query = query.Where(squirrel.Eq{"patient_id": filter.PatientID})
	}

	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"status": filter.Status})
	}

	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}

	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list invoices sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query invoices: %w", err)
	}
	defer rows.Close()

	invoices := make([]domain.Invoice, 0)
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		invoices = append(invoices, *invoice)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invoices: %w", err)
	}

	return invoices, nil
}

var _ port.InvoiceRepository = (*InvoiceRepository)(nil)
