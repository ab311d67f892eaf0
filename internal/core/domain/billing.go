package domain

import (
	"math"
	"time"
)

// DefaultVATRate is the Greek standard VAT rate applied to invoices.
const DefaultVATRate = 0.24

// PaymentMethod enumerates the accepted ways of settling an invoice.
type PaymentMethod string

const (
	PaymentCash      PaymentMethod = "cash"
	PaymentCard      PaymentMethod = "card"
	PaymentTransfer  PaymentMethod = "transfer"
	PaymentInsurance PaymentMethod = "insurance"
)

// Valid reports whether the payment method is a known value.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentTransfer, PaymentInsurance:
		return true
	}
	return false
}

// PaymentStatus enumerates the settlement states of an invoice.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentPaid      PaymentStatus = "paid"
	PaymentPartial   PaymentStatus = "partial"
	PaymentCancelled PaymentStatus = "cancelled"
)

// ServiceItem is one entry of the practice's price list.
type ServiceItem struct {
	ID          string
	Name        string
	Description string
	Price       float64
	IsActive    bool
	CreatedAt   time.Time
}

// InvoiceLine is one billed service on an invoice.
type InvoiceLine struct {
	ID          string
	InvoiceID   string
	ServiceID   string
	ServiceName string
	Quantity    int
	UnitPrice   float64
}

// Total returns the line total.
func (l InvoiceLine) Total() float64 {
	return float64(l.Quantity) * l.UnitPrice
}

// Invoice is one issued bill for a patient.
type Invoice struct {
	ID        string
	Number    string
	PatientID string
	IssuedBy  string
	IssuedAt  time.Time

	Lines   []InvoiceLine
	VATRate float64

	Method     PaymentMethod
	Status     PaymentStatus
	AmountPaid float64

	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Subtotal sums the line totals before tax.
func (inv Invoice) Subtotal() float64 {
	var sum float64
	for _, line := range inv.Lines {
		sum += line.Total()
	}
	return roundCents(sum)
}

// VATAmount returns the tax portion of the invoice.
func (inv Invoice) VATAmount() float64 {
	return roundCents(inv.Subtotal() * inv.VATRate)
}

// Total returns the amount owed including tax.
func (inv Invoice) Total() float64 {
	return roundCents(inv.Subtotal() + inv.VATAmount())
}

// BalanceDue returns the outstanding amount. Cancelled invoices owe nothing.
func (inv Invoice) BalanceDue() float64 {
	if inv.Status == PaymentCancelled {
		return 0
	}
	balance := inv.Total() - inv.AmountPaid
	if balance < 0 {
		return 0
	}
	return roundCents(balance)
}

// RecordPayment applies a payment and recomputes the settlement status.
func (inv *Invoice) RecordPayment(amount float64, method PaymentMethod, at time.Time) {
	inv.AmountPaid = roundCents(inv.AmountPaid + amount)
	inv.Method = method
	inv.UpdatedAt = at

	switch {
	case inv.AmountPaid >= inv.Total():
		inv.Status = PaymentPaid
	case inv.AmountPaid > 0:
		inv.Status = PaymentPartial
	default:
		inv.Status = PaymentPending
	}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
