package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Fragarianos1981/Dr.platiPel/internal/core/domain"
	"github.com/Fragarianos1981/Dr.platiPel/internal/usecase"
)

// CertificateHandler exposes certificate issuance and the verification log.
type CertificateHandler struct {
	certificates *usecase.CertificateService
}

// NewCertificateHandler constructs CertificateHandler.
func NewCertificateHandler(certificates *usecase.CertificateService) *CertificateHandler {
	return &CertificateHandler{certificates: certificates}
}

// RegisterRoutes binds certificate routes. Issuance carries its own middleware
// since only doctors sign certificates.
func (h *CertificateHandler) RegisterRoutes(r *gin.RouterGroup, issueMiddleware gin.HandlerFunc) {
	r.POST("", issueMiddleware, h.issue)
	r.GET("", h.list)
	r.GET("/number/:number", h.getByNumber)
	r.GET("/patient/:id", h.listByPatient)
}

func certificateErrorCases() []ErrorCase {
	return []ErrorCase{
		{Err: usecase.ErrMissingField, Status: http.StatusBadRequest, Message: "required field missing"},
		{Err: usecase.ErrInvalidCertificateKind, Status: http.StatusBadRequest, Message: "unknown certificate kind"},
		{Err: usecase.ErrPatientNotFound, Status: http.StatusNotFound, Message: "patient not found"},
		{Err: usecase.ErrCertificateNotFound, Status: http.StatusNotFound, Message: "certificate not found"},
	}
}

// Issue godoc
// @Summary Issue a medical certificate
// @Description Issues a numbered certificate and records it in the verification log.
// @Tags Certificates
// @Accept json
// @Produce json
// @Param request body CertificateIssueRequest true "Certificate payload"
// @Success 201 {object} CertificatePayload
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/certificates [post]
func (h *CertificateHandler) issue(c *gin.Context) {
	var req CertificateIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid certificate payload"))
		return
	}

	cert, err := h.certificates.Issue(c.Request.Context(), usecase.IssueInput{
		PatientID: req.PatientID,
		Kind:      domain.CertificateKind(req.Kind),
		Purpose:   req.Purpose,
		IssuedBy:  actorFromContext(c),
	})
	if err != nil {
		RespondWithMappedError(c, err, certificateErrorCases(), http.StatusInternalServerError, "certificate issuance failed")
		return
	}

	c.JSON(http.StatusCreated, newCertificatePayload(*cert))
}

// GetByNumber godoc
// @Summary Verify a certificate by its number
// @Tags Certificates
// @Produce json
// @Param number path string true "Certificate number"
// @Success 200 {object} CertificatePayload
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/certificates/number/{number} [get]
func (h *CertificateHandler) getByNumber(c *gin.Context) {
	cert, err := h.certificates.GetByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		RespondWithMappedError(c, err, certificateErrorCases(), http.StatusInternalServerError, "lookup failed")
		return
	}

	c.JSON(http.StatusOK, newCertificatePayload(*cert))
}

func (h *CertificateHandler) listByPatient(c *gin.Context) {
	certs, err := h.certificates.ListByPatient(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "listing certificates failed"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"certificates": certificatePayloads(certs)})
}

func (h *CertificateHandler) list(c *gin.Context) {
	certs, err := h.certificates.List(c.Request.Context(), queryInt(c, "limit", 50), queryInt(c, "offset", 0))
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "listing certificates failed"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"certificates": certificatePayloads(certs)})
}

func certificatePayloads(certs []domain.CertificateLog) []CertificatePayload {
	payloads := make([]CertificatePayload, 0, len(certs))
	for _, cert := range certs {
		payloads = append(payloads, newCertificatePayload(cert))
	}
	return payloads
}
