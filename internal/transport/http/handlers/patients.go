package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Fragarianos1981/Dr.platiPel/internal/core/domain"
	"github.com/Fragarianos1981/Dr.platiPel/internal/core/port"
	"github.com/Fragarianos1981/Dr.platiPel/internal/usecase"
)

// PatientHandler exposes the patient registry.
type PatientHandler struct {
	patients *usecase.PatientService
}

// NewPatientHandler constructs PatientHandler.
func NewPatientHandler(patients *usecase.PatientService) *PatientHandler {
	return &PatientHandler{patients: patients}
}

// RegisterRoutes binds patient registry routes.
func (h *PatientHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("", h.create)
	r.GET("", h.list)
	r.GET("/:id", h.get)
	r.PUT("/:id", h.update)
	r.DELETE("/:id", h.archive)
	r.GET("/amka/:amka", h.getByAMKA)
}

func patientErrorCases() []ErrorCase {
	return []ErrorCase{
		{Err: usecase.ErrMissingField, Status: http.StatusBadRequest, Message: "patient name is required"},
		{Err: domain.ErrAMKAWrongLength, Status: http.StatusUnprocessableEntity, Message: "amka must contain exactly 11 digits"},
		{Err: domain.ErrAMKANonNumeric, Status: http.StatusUnprocessableEntity, Message: "amka contains non-numeric characters"},
		{Err: domain.ErrAMKACheckDigit, Status: http.StatusUnprocessableEntity, Message: "amka check digit mismatch"},
		{Err: usecase.ErrPatientExists, Status: http.StatusConflict, Message: "a patient with this amka already exists"},
		{Err: usecase.ErrPatientNotFound, Status: http.StatusNotFound, Message: "patient not found"},
	}
}

func (h *PatientHandler) bindInput(c *gin.Context) (usecase.PatientInput, bool) {
	var req PatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid patient payload"))
		return usecase.PatientInput{}, false
	}

	input := usecase.PatientInput{
		AMKA:           req.AMKA,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Sex:            req.Sex,
		Phone:          req.Phone,
		Email:          req.Email,
		Address:        req.Address,
		FatherName:     req.FatherName,
		MotherName:     req.MotherName,
		GuardianName:   req.GuardianName,
		BloodType:      req.BloodType,
		Allergies:      req.Allergies,
		MedicalHistory: req.MedicalHistory,
		BirthWeightKg:  req.BirthWeightKg,
		BirthLengthCm:  req.BirthLengthCm,
	}

	if req.BirthDate != "" {
		birthDate, err := time.Parse(dateLayout, req.BirthDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "birth_date must be YYYY-MM-DD"))
			return usecase.PatientInput{}, false
		}
		input.BirthDate = birthDate
	}

	return input, true
}

// Create godoc
// @Summary Register a patient
// @Tags Patients
// @Accept json
// @Produce json
// @Param request body PatientRequest true "Patient payload"
// @Success 201 {object} PatientPayload
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /api/v1/patients [post]
func (h *PatientHandler) create(c *gin.Context) {
	input, ok := h.bindInput(c)
	if !ok {
		return
	}

	patient, err := h.patients.Create(c.Request.Context(), input)
	if err != nil {
		RespondWithMappedError(c, err, patientErrorCases(), http.StatusInternalServerError, "patient creation failed")
		return
	}

	c.JSON(http.StatusCreated, newPatientPayload(*patient, time.Now().UTC()))
}

// List godoc
// @Summary Search patients
// @Description Lists patients with optional accent-insensitive name or AMKA search.
// @Tags Patients
// @Produce json
// @Param q query string false "Name or AMKA fragment"
// @Success 200 {object} PatientListResponse
// @Router /api/v1/patients [get]
func (h *PatientHandler) list(c *gin.Context) {
	filter := port.PatientFilter{
		Search: c.Query("q"),
		Limit:  queryInt(c, "limit", 50),
		Offset: queryInt(c, "offset", 0),
	}

	if active := c.Query("active"); active != "" {
		value := active == "true"
		filter.IsActive = &value
	}

	patients, total, err := h.patients.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "listing patients failed"))
		return
	}

	now := time.Now().UTC()
	payloads := make([]PatientPayload, 0, len(patients))
	for _, patient := range patients {
		payloads = append(payloads, newPatientPayload(patient, now))
	}

	c.JSON(http.StatusOK, PatientListResponse{Patients: payloads, Total: total})
}

func (h *PatientHandler) get(c *gin.Context) {
	patient, err := h.patients.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, patientErrorCases(), http.StatusInternalServerError, "lookup failed")
		return
	}

	c.JSON(http.StatusOK, newPatientPayload(*patient, time.Now().UTC()))
}

func (h *PatientHandler) getByAMKA(c *gin.Context) {
	patient, err := h.patients.GetByAMKA(c.Request.Context(), c.Param("amka"))
	if err != nil {
		RespondWithMappedError(c, err, patientErrorCases(), http.StatusInternalServerError, "lookup failed")
		return
	}

	c.JSON(http.StatusOK, newPatientPayload(*patient, time.Now().UTC()))
}

func (h *PatientHandler) update(c *gin.Context) {
	input, ok := h.bindInput(c)
	if !ok {
		return
	}

	patient, err := h.patients.Update(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		RespondWithMappedError(c, err, patientErrorCases(), http.StatusInternalServerError, "patient update failed")
		return
	}

	c.JSON(http.StatusOK, newPatientPayload(*patient, time.Now().UTC()))
}

func (h *PatientHandler) archive(c *gin.Context) {
	if err := h.patients.Archive(c.Request.Context(), c.Param("id")); err != nil {
		RespondWithMappedError(c, err, patientErrorCases(), http.StatusInternalServerError, "archive failed")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "patient archived"})
}
