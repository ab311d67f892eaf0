package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Fragarianos1981/Dr.platiPel/internal/core/domain"
	"github.com/Fragarianos1981/Dr.platiPel/internal/usecase"
)

var issueMoment = time.Date(2024, 7, 3, 11, 0, 0, 0, time.UTC)

func newBillingFixture(t *testing.T) (*usecase.BillingService, *fakeServiceRepo, *fakeInvoiceRepo) {
	t.Helper()

	services := newFakeServiceRepo(
		&domain.ServiceItem{ID: "svc-visit", Name: "Consultation", Price: 40, IsActive: true},
		&domain.ServiceItem{ID: "svc-vac", Name: "Vaccination", Price: 15.50, IsActive: true},
	)
	invoices := newFakeInvoiceRepo()
	patients := newFakePatientRepo(&domain.Patient{ID: "pat-1", IsActive: true})

	svc := usecase.NewBillingService(services, invoices, patients, zap.NewNop()).
		WithClock(func() time.Time { return issueMoment })

	return svc, services, invoices
}

func TestCreateInvoiceSnapshotsPrices(t *testing.T) {
	svc, services, _ := newBillingFixture(t)

	invoice, err := svc.CreateInvoice(context.Background(), usecase.CreateInvoiceInput{
		PatientID: "pat-1",
		IssuedBy:  "acc-1",
		Lines: []usecase.InvoiceLineInput{
			{ServiceID: "svc-visit", Quantity: 1},
			{ServiceID: "svc-vac", Quantity: 2},
		},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if !strings.HasPrefix(invoice.Number, "202407-") || len(invoice.Number) != 13 {
		t.Fatalf("unexpected invoice number %q", invoice.Number)
	}
	if invoice.Status != domain.PaymentPending {
		t.Fatalf("fresh invoice should be pending, got %s", invoice.Status)
	}
	if invoice.VATRate != domain.DefaultVATRate {
		t.Fatalf("expected default VAT rate, got %v", invoice.VATRate)
	}
	if invoice.Lines[1].UnitPrice != 15.50 || invoice.Lines[1].ServiceName != "Vaccination" {
		t.Fatalf("line should snapshot the price list entry: %+v", invoice.Lines[1])
	}

	// A later price change must not touch the issued invoice.
	services.byID["svc-vac"].Price = 99
	reloaded, err := svc.GetInvoice(context.Background(), invoice.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if reloaded.Lines[1].UnitPrice != 15.50 {
		t.Fatalf("price change leaked into issued invoice: %v", reloaded.Lines[1].UnitPrice)
	}
}

func TestCreateInvoiceRetriesOnNumberCollision(t *testing.T) {
	svc, _, invoices := newBillingFixture(t)
	invoices.dupesLeft = 2

	invoice, err := svc.CreateInvoice(context.Background(), usecase.CreateInvoiceInput{
		PatientID: "pat-1",
		Lines:     []usecase.InvoiceLineInput{{ServiceID: "svc-visit", Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("create should survive number collisions: %v", err)
	}
	if invoice.Number == "" {
		t.Fatal("expected an allocated number")
	}
}

func TestCreateInvoiceValidation(t *testing.T) {
	svc, _, _ := newBillingFixture(t)

	if _, err := svc.CreateInvoice(context.Background(), usecase.CreateInvoiceInput{
		PatientID: "pat-1",
	}); !errors.Is(err, usecase.ErrEmptyInvoice) {
		t.Fatalf("expected ErrEmptyInvoice for no lines, got %v", err)
	}

	if _, err := svc.CreateInvoice(context.Background(), usecase.CreateInvoiceInput{
		PatientID: "pat-1",
		Lines:     []usecase.InvoiceLineInput{{ServiceID: "svc-visit", Quantity: 0}},
	}); !errors.Is(err, usecase.ErrEmptyInvoice) {
		t.Fatalf("expected ErrEmptyInvoice for zero quantity, got %v", err)
	}

	if _, err := svc.CreateInvoice(context.Background(), usecase.CreateInvoiceInput{
		PatientID: "pat-unknown",
		Lines:     []usecase.InvoiceLineInput{{ServiceID: "svc-visit", Quantity: 1}},
	}); !errors.Is(err, usecase.ErrPatientNotFound) {
		t.Fatalf("expected ErrPatientNotFound, got %v", err)
	}

	if _, err := svc.CreateInvoice(context.Background(), usecase.CreateInvoiceInput{
		PatientID: "pat-1",
		Lines:     []usecase.InvoiceLineInput{{ServiceID: "svc-unknown", Quantity: 1}},
	}); !errors.Is(err, usecase.ErrServiceNotFound) {
		t.Fatalf("expected ErrServiceNotFound, got %v", err)
	}
}

func TestRecordPayment(t *testing.T) {
	svc, _, _ := newBillingFixture(t)

	invoice, err := svc.CreateInvoice(context.Background(), usecase.CreateInvoiceInput{
		PatientID: "pat-1",
		Lines:     []usecase.InvoiceLineInput{{ServiceID: "svc-visit", Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// 40 + 24% VAT = 49.60
	paid, err := svc.RecordPayment(context.Background(), invoice.ID, 20, domain.PaymentCash)
	if err != nil {
		t.Fatalf("payment failed: %v", err)
	}
	if paid.Status != domain.PaymentPartial {
		t.Fatalf("expected partial, got %s", paid.Status)
	}

	paid, err = svc.RecordPayment(context.Background(), invoice.ID, 29.60, domain.PaymentCard)
	if err != nil {
		t.Fatalf("payment failed: %v", err)
	}
	if paid.Status != domain.PaymentPaid {
		t.Fatalf("expected paid, got %s", paid.Status)
	}
}

func TestRecordPaymentValidation(t *testing.T) {
	svc, _, _ := newBillingFixture(t)

	invoice, err := svc.CreateInvoice(context.Background(), usecase.CreateInvoiceInput{
		PatientID: "pat-1",
		Lines:     []usecase.InvoiceLineInput{{ServiceID: "svc-visit", Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := svc.RecordPayment(context.Background(), invoice.ID, 0, domain.PaymentCash); !errors.Is(err, usecase.ErrInvalidPayment) {
		t.Fatalf("expected ErrInvalidPayment for zero amount, got %v", err)
	}
	if _, err := svc.RecordPayment(context.Background(), invoice.ID, 10, domain.PaymentMethod("iou")); !errors.Is(err, usecase.ErrInvalidPayment) {
		t.Fatalf("expected ErrInvalidPayment for unknown method, got %v", err)
	}

	if _, err := svc.CancelInvoice(context.Background(), invoice.ID); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if _, err := svc.RecordPayment(context.Background(), invoice.ID, 10, domain.PaymentCash); !errors.Is(err, usecase.ErrInvalidPayment) {
		t.Fatalf("expected ErrInvalidPayment on cancelled invoice, got %v", err)
	}
}

func TestCancelPaidInvoiceRejected(t *testing.T) {
	svc, _, _ := newBillingFixture(t)

	invoice, err := svc.CreateInvoice(context.Background(), usecase.CreateInvoiceInput{
		PatientID: "pat-1",
		Lines:     []usecase.InvoiceLineInput{{ServiceID: "svc-visit", Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := svc.RecordPayment(context.Background(), invoice.ID, 49.60, domain.PaymentCash); err != nil {
		t.Fatalf("payment failed: %v", err)
	}
	if _, err := svc.CancelInvoice(context.Background(), invoice.ID); !errors.Is(err, usecase.ErrInvalidPayment) {
		t.Fatalf("paid invoice must not be cancellable, got %v", err)
	}
}
