package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Fragarianos1981/Dr.platiPel/internal/core/domain"
	"github.com/Fragarianos1981/Dr.platiPel/internal/core/port"
	"github.com/Fragarianos1981/Dr.platiPel/internal/usecase"
)

// BillingHandler exposes the price list and invoicing.
type BillingHandler struct {
	billing *usecase.BillingService
}

// NewBillingHandler constructs BillingHandler.
func NewBillingHandler(billing *usecase.BillingService) *BillingHandler {
	return &BillingHandler{billing: billing}
}

// RegisterRoutes binds the price list and invoice routes.
func (h *BillingHandler) RegisterRoutes(services, invoices *gin.RouterGroup) {
	services.POST("", h.createService)
	services.GET("", h.listServices)
	services.PUT("/:id", h.updateService)

	invoices.POST("", h.createInvoice)
	invoices.GET("", h.listInvoices)
	invoices.GET("/:id", h.getInvoice)
	invoices.POST("/:id/payments", h.recordPayment)
	invoices.POST("/:id/cancel", h.cancelInvoice)
}

func billingErrorCases() []ErrorCase {
	return []ErrorCase{
		{Err: usecase.ErrMissingField, Status: http.StatusBadRequest, Message: "required field missing"},
		{Err: usecase.ErrEmptyInvoice, Status: http.StatusBadRequest, Message: "invoice needs at least one line with a positive quantity"},
		{Err: usecase.ErrInvalidPayment, Status: http.StatusBadRequest, Message: "payment amount or method is not usable"},
		{Err: usecase.ErrPatientNotFound, Status: http.StatusNotFound, Message: "patient not found"},
		{Err: usecase.ErrServiceNotFound, Status: http.StatusNotFound, Message: "service not found"},
		{Err: usecase.ErrInvoiceNotFound, Status: http.StatusNotFound, Message: "invoice not found"},
	}
}

func (h *BillingHandler) createService(c *gin.Context) {
	var req ServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid service payload"))
		return
	}

	item, err := h.billing.CreateService(c.Request.Context(), usecase.ServiceInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
	})
	if err != nil {
		RespondWithMappedError(c, err, billingErrorCases(), http.StatusInternalServerError, "service creation failed")
		return
	}

	c.JSON(http.StatusCreated, newServicePayload(*item))
}

func (h *BillingHandler) updateService(c *gin.Context) {
	var req ServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid service payload"))
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	item, err := h.billing.UpdateService(c.Request.Context(), c.Param("id"), usecase.ServiceInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
	}, active)
	if err != nil {
		RespondWithMappedError(c, err, billingErrorCases(), http.StatusInternalServerError, "service update failed")
		return
	}

	c.JSON(http.StatusOK, newServicePayload(*item))
}

func (h *BillingHandler) listServices(c *gin.Context) {
	items, err := h.billing.ListServices(c.Request.Context(), c.Query("active") == "true")
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "listing services failed"))
		return
	}

	payloads := make([]ServicePayload, 0, len(items))
	for _, item := range items {
		payloads = append(payloads, newServicePayload(item))
	}

	c.JSON(http.StatusOK, gin.H{"services": payloads})
}

// CreateInvoice godoc
// @Summary Issue an invoice
// @Description Issues an invoice with unit prices snapshotted from the price list.
// @Tags Billing
// @Accept json
// @Produce json
// @Param request body InvoiceCreateRequest true "Invoice payload"
// @Success 201 {object} InvoicePayload
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/invoices [post]
func (h *BillingHandler) createInvoice(c *gin.Context) {
	var req InvoiceCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid invoice payload"))
		return
	}

	lines := make([]usecase.InvoiceLineInput, 0, len(req.Lines))
	for _, line := range req.Lines {
		lines = append(lines, usecase.InvoiceLineInput{
			ServiceID: line.ServiceID,
			Quantity:  line.Quantity,
		})
	}

	invoice, err := h.billing.CreateInvoice(c.Request.Context(), usecase.CreateInvoiceInput{
		PatientID: req.PatientID,
		IssuedBy:  actorFromContext(c),
		Lines:     lines,
		Notes:     req.Notes,
	})
	if err != nil {
		RespondWithMappedError(c, err, billingErrorCases(), http.StatusInternalServerError, "invoice creation failed")
		return
	}

	c.JSON(http.StatusCreated, newInvoicePayload(*invoice))
}

func (h *BillingHandler) listInvoices(c *gin.Context) {
	filter := port.InvoiceFilter{
		PatientID: c.Query("patient_id"),
		Status:    domain.PaymentStatus(c.Query("status")),
		Limit:     queryInt(c, "limit", 50),
		Offset:    queryInt(c, "offset", 0),
	}

	invoices, err := h.billing.ListInvoices(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "listing invoices failed"))
		return
	}

	payloads := make([]InvoicePayload, 0, len(invoices))
	for _, invoice := range invoices {
		payloads = append(payloads, newInvoicePayload(invoice))
	}

	c.JSON(http.StatusOK, gin.H{"invoices": payloads})
}

func (h *BillingHandler) getInvoice(c *gin.Context) {
	invoice, err := h.billing.GetInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, billingErrorCases(), http.StatusInternalServerError, "lookup failed")
		return
	}

	c.JSON(http.StatusOK, newInvoicePayload(*invoice))
}

// RecordPayment godoc
// @Summary Record a payment against an invoice
// @Tags Billing
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID"
// @Param request body PaymentRequest true "Payment payload"
// @Success 200 {object} InvoicePayload
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/invoices/{id}/payments [post]
func (h *BillingHandler) recordPayment(c *gin.Context) {
	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid payment payload"))
		return
	}

	invoice, err := h.billing.RecordPayment(c.Request.Context(), c.Param("id"), req.Amount, domain.PaymentMethod(req.Method))
	if err != nil {
		RespondWithMappedError(c, err, billingErrorCases(), http.StatusInternalServerError, "recording payment failed")
		return
	}

	c.JSON(http.StatusOK, newInvoicePayload(*invoice))
}

func (h *BillingHandler) cancelInvoice(c *gin.Context) {
	invoice, err := h.billing.CancelInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, billingErrorCases(), http.StatusInternalServerError, "cancellation failed")
		return
	}

	c.JSON(http.StatusOK, newInvoicePayload(*invoice))
}
