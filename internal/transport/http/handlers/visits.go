package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Fragarianos1981/Dr.platiPel/internal/usecase"
)

// VisitHandler exposes consultations and the vaccination card.
type VisitHandler struct {
	visits *usecase.VisitService
}

// NewVisitHandler constructs VisitHandler.
func NewVisitHandler(visits *usecase.VisitService) *VisitHandler {
	return &VisitHandler{visits: visits}
}

// RegisterRoutes binds the visit routes. Collection routes hang off the
// patient; item routes address the visit directly.
func (h *VisitHandler) RegisterRoutes(patients, visits *gin.RouterGroup) {
	patients.POST("/:id/visits", h.record)
	patients.GET("/:id/visits", h.listByPatient)
	patients.POST("/:id/vaccinations", h.recordVaccination)
	patients.GET("/:id/vaccinations", h.vaccinationCard)

	visits.GET("/:id", h.get)
	visits.PUT("/:id", h.update)
}

func visitErrorCases() []ErrorCase {
	return []ErrorCase{
		{Err: usecase.ErrMissingField, Status: http.StatusBadRequest, Message: "required field missing"},
		{Err: usecase.ErrPatientNotFound, Status: http.StatusNotFound, Message: "patient not found"},
		{Err: usecase.ErrVisitNotFound, Status: http.StatusNotFound, Message: "visit not found"},
	}
}

func (h *VisitHandler) bindInput(c *gin.Context) (usecase.VisitInput, bool) {
	var req VisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid visit payload"))
		return usecase.VisitInput{}, false
	}

	input := usecase.VisitInput{
		Reason:       req.Reason,
		WeightKg:     req.WeightKg,
		HeightCm:     req.HeightCm,
		TemperatureC: req.TemperatureC,
		HeadCircumCm: req.HeadCircumCm,
		ExamFindings: req.ExamFindings,
		Diagnosis:    req.Diagnosis,
		Plan:         req.Plan,
	}

	if req.VisitedAt != "" {
		visitedAt, err := time.Parse(time.RFC3339, req.VisitedAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "visited_at must be RFC 3339"))
			return usecase.VisitInput{}, false
		}
		input.VisitedAt = visitedAt
	}

	return input, true
}

// Record godoc
// @Summary Record a consultation
// @Tags Visits
// @Accept json
// @Produce json
// @Param id path string true "Patient ID"
// @Param request body VisitRequest true "Visit payload"
// @Success 201 {object} VisitPayload
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/patients/{id}/visits [post]
func (h *VisitHandler) record(c *gin.Context) {
	input, ok := h.bindInput(c)
	if !ok {
		return
	}

	input.PatientID = c.Param("id")
	input.DoctorID = actorFromContext(c)

	visit, err := h.visits.Record(c.Request.Context(), input)
	if err != nil {
		RespondWithMappedError(c, err, visitErrorCases(), http.StatusInternalServerError, "recording visit failed")
		return
	}

	c.JSON(http.StatusCreated, newVisitPayload(*visit))
}

func (h *VisitHandler) listByPatient(c *gin.Context) {
	visits, err := h.visits.ListByPatient(c.Request.Context(), c.Param("id"), queryInt(c, "limit", 50), queryInt(c, "offset", 0))
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "listing visits failed"))
		return
	}

	payloads := make([]VisitPayload, 0, len(visits))
	for _, visit := range visits {
		payloads = append(payloads, newVisitPayload(visit))
	}

	c.JSON(http.StatusOK, gin.H{"visits": payloads})
}

func (h *VisitHandler) get(c *gin.Context) {
	visit, err := h.visits.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, visitErrorCases(), http.StatusInternalServerError, "lookup failed")
		return
	}

	c.JSON(http.StatusOK, newVisitPayload(*visit))
}

func (h *VisitHandler) update(c *gin.Context) {
	input, ok := h.bindInput(c)
	if !ok {
		return
	}

	visit, err := h.visits.Update(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		RespondWithMappedError(c, err, visitErrorCases(), http.StatusInternalServerError, "visit update failed")
		return
	}

	c.JSON(http.StatusOK, newVisitPayload(*visit))
}

// RecordVaccination godoc
// @Summary Record an administered vaccine dose
// @Tags Visits
// @Accept json
// @Produce json
// @Param id path string true "Patient ID"
// @Param request body VaccinationRequest true "Dose payload"
// @Success 201 {object} VaccinationPayload
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/patients/{id}/vaccinations [post]
func (h *VisitHandler) recordVaccination(c *gin.Context) {
	var req VaccinationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid vaccination payload"))
		return
	}

	input := usecase.VaccinationInput{
		PatientID:      c.Param("id"),
		VaccineName:    req.VaccineName,
		DoseLabel:      req.DoseLabel,
		AdministeredBy: actorFromContext(c),
		Notes:          req.Notes,
	}

	if req.AdministeredAt != "" {
		administeredAt, err := time.Parse(dateLayout, req.AdministeredAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "administered_at must be YYYY-MM-DD"))
			return
		}
		input.AdministeredAt = administeredAt
	}

	dose, err := h.visits.RecordVaccination(c.Request.Context(), input)
	if err != nil {
		RespondWithMappedError(c, err, visitErrorCases(), http.StatusInternalServerError, "recording vaccination failed")
		return
	}

	c.JSON(http.StatusCreated, newVaccinationPayload(*dose))
}

func (h *VisitHandler) vaccinationCard(c *gin.Context) {
	doses, err := h.visits.VaccinationCard(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "listing vaccinations failed"))
		return
	}

	payloads := make([]VaccinationPayload, 0, len(doses))
	for _, dose := range doses {
		payloads = append(payloads, newVaccinationPayload(dose))
	}

	c.JSON(http.StatusOK, gin.H{"vaccinations": payloads})
}
