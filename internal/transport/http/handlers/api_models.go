package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Fragarianos1981/Dr.platiPel/internal/core/domain"
)

const dateLayout = "2006-01-02"

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// LoginRequest defines the payload for the login endpoint. Both passwords are
// required; the endpoint does not distinguish which one was wrong.
type LoginRequest struct {
	Username  string `json:"username"`
	Password1 string `json:"password1"`
	Password2 string `json:"password2"`
}

// AccountSummary describes an account as returned by the API. Password
// material never leaves the server.
type AccountSummary struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email,omitempty"`
	FullName  string     `json:"full_name"`
	Role      string     `json:"role"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

func newAccountSummary(account domain.Account) AccountSummary {
	return AccountSummary{
		ID:        account.ID,
		Username:  account.Username,
		Email:     account.Email,
		FullName:  account.FullName(),
		Role:      string(account.Role),
		IsActive:  account.IsActive,
		CreatedAt: account.CreatedAt,
		LastLogin: account.LastLogin,
	}
}

// LoginResponse describes a successful login. The session travels only in the
// cookie; the body carries the account view and the expiry for the UI.
type LoginResponse struct {
	Account   AccountSummary `json:"account"`
	ExpiresAt time.Time      `json:"expires_at"`
}

// AccountCreateRequest defines the payload for provisioning an account.
type AccountCreateRequest struct {
	Username       string `json:"username" binding:"required"`
	Email          string `json:"email" binding:"omitempty,email"`
	FullName       string `json:"full_name"`
	Role           string `json:"role" binding:"required"`
	Password       string `json:"password" binding:"required"`
	SecondPassword string `json:"second_password" binding:"required"`
}

// AccountUpdateRequest defines the payload for updating an account. Absent
// fields stay unchanged.
type AccountUpdateRequest struct {
	Email          *string `json:"email,omitempty"`
	FullName       *string `json:"full_name,omitempty"`
	Role           *string `json:"role,omitempty"`
	SecondPassword *string `json:"second_password,omitempty"`
}

// AccountActiveRequest toggles the activation flag.
type AccountActiveRequest struct {
	Active bool `json:"active"`
}

// AccountListResponse wraps a page of accounts.
type AccountListResponse struct {
	Accounts []AccountSummary `json:"accounts"`
	Total    int              `json:"total"`
}

// PasswordForgotRequest starts the reset flow.
type PasswordForgotRequest struct {
	Email string `json:"email" binding:"required"`
}

// PasswordForgotResponse always answers the same way regardless of whether
// the address is known. DevToken appears only in development mode.
type PasswordForgotResponse struct {
	Message  string `json:"message"`
	DevToken string `json:"dev_token,omitempty"`
}

// PasswordResetConfirmRequest completes the reset flow.
type PasswordResetConfirmRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// PasswordChangeRequest changes the caller's own password.
type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// PasswordStrengthRequest asks for a rating of a candidate password.
type PasswordStrengthRequest struct {
	Password string `json:"password"`
}

// PasswordStrengthResponse carries the tier plus the advisory estimator score.
type PasswordStrengthResponse struct {
	Acceptable    bool   `json:"acceptable"`
	Tier          string `json:"tier"`
	AdvisoryScore int    `json:"advisory_score"`
}

// PatientRequest defines the payload for creating or updating a patient.
type PatientRequest struct {
	AMKA           string  `json:"amka" binding:"required"`
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	BirthDate      string  `json:"birth_date"`
	Sex            string  `json:"sex"`
	Phone          string  `json:"phone"`
	Email          string  `json:"email"`
	Address        string  `json:"address"`
	FatherName     string  `json:"father_name"`
	MotherName     string  `json:"mother_name"`
	GuardianName   string  `json:"guardian_name"`
	BloodType      string  `json:"blood_type"`
	Allergies      string  `json:"allergies"`
	MedicalHistory string  `json:"medical_history"`
	BirthWeightKg  float64 `json:"birth_weight_kg"`
	BirthLengthCm  float64 `json:"birth_length_cm"`
}

// AgePayload is the exact calendar age at the time of the request.
type AgePayload struct {
	Years  int `json:"years"`
	Months int `json:"months"`
	Days   int `json:"days"`
}

// PatientPayload describes a patient record in API responses.
type PatientPayload struct {
	ID             string     `json:"id"`
	AMKA           string     `json:"amka"`
	FullName       string     `json:"full_name"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	BirthDate      string     `json:"birth_date,omitempty"`
	Age            *AgePayload `json:"age,omitempty"`
	Sex            string     `json:"sex,omitempty"`
	Phone          string     `json:"phone,omitempty"`
	Email          string     `json:"email,omitempty"`
	Address        string     `json:"address,omitempty"`
	FatherName     string     `json:"father_name,omitempty"`
	MotherName     string     `json:"mother_name,omitempty"`
	GuardianName   string     `json:"guardian_name,omitempty"`
	BloodType      string     `json:"blood_type,omitempty"`
	Allergies      string     `json:"allergies,omitempty"`
	MedicalHistory string     `json:"medical_history,omitempty"`
	BirthWeightKg  float64    `json:"birth_weight_kg,omitempty"`
	BirthLengthCm  float64    `json:"birth_length_cm,omitempty"`
	IsActive       bool       `json:"is_active"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func newPatientPayload(patient domain.Patient, at time.Time) PatientPayload {
	payload := PatientPayload{
		ID:             patient.ID,
		AMKA:           patient.AMKA,
		FullName:       patient.FullName(),
		FirstName:      patient.FirstName,
		LastName:       patient.LastName,
		Sex:            patient.Sex,
		Phone:          patient.Phone,
		Email:          patient.Email,
		Address:        patient.Address,
		FatherName:     patient.FatherName,
		MotherName:     patient.MotherName,
		GuardianName:   patient.GuardianName,
		BloodType:      patient.BloodType,
		Allergies:      patient.Allergies,
		MedicalHistory: patient.MedicalHistory,
		BirthWeightKg:  patient.BirthWeightKg,
		BirthLengthCm:  patient.BirthLengthCm,
		IsActive:       patient.IsActive,
		CreatedAt:      patient.CreatedAt,
		UpdatedAt:      patient.UpdatedAt,
	}

	if !patient.BirthDate.IsZero() {
		payload.BirthDate = patient.BirthDate.Format(dateLayout)
		years, months, days := patient.AgeAt(at)
		payload.Age = &AgePayload{Years: years, Months: months, Days: days}
	}

	return payload
}

// PatientListResponse wraps a page of patients.
type PatientListResponse struct {
	Patients []PatientPayload `json:"patients"`
	Total    int              `json:"total"`
}

// VisitRequest defines the payload for recording or updating a visit.
type VisitRequest struct {
	VisitedAt    string  `json:"visited_at"`
	Reason       string  `json:"reason"`
	WeightKg     float64 `json:"weight_kg"`
	HeightCm     float64 `json:"height_cm"`
	TemperatureC float64 `json:"temperature_c"`
	HeadCircumCm float64 `json:"head_circum_cm"`
	ExamFindings string  `json:"exam_findings"`
	Diagnosis    string  `json:"diagnosis"`
	Plan         string  `json:"plan"`
}

// VisitPayload describes a consultation in API responses.
type VisitPayload struct {
	ID           string    `json:"id"`
	PatientID    string    `json:"patient_id"`
	DoctorID     string    `json:"doctor_id,omitempty"`
	VisitedAt    time.Time `json:"visited_at"`
	Reason       string    `json:"reason,omitempty"`
	WeightKg     float64   `json:"weight_kg,omitempty"`
	HeightCm     float64   `json:"height_cm,omitempty"`
	TemperatureC float64   `json:"temperature_c,omitempty"`
	HeadCircumCm float64   `json:"head_circum_cm,omitempty"`
	BMI          *float64  `json:"bmi,omitempty"`
	ExamFindings string    `json:"exam_findings,omitempty"`
	Diagnosis    string    `json:"diagnosis,omitempty"`
	Plan         string    `json:"plan,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func newVisitPayload(visit domain.Visit) VisitPayload {
	payload := VisitPayload{
		ID:           visit.ID,
		PatientID:    visit.PatientID,
		DoctorID:     visit.DoctorID,
		VisitedAt:    visit.VisitedAt,
		Reason:       visit.Reason,
		WeightKg:     visit.WeightKg,
		HeightCm:     visit.HeightCm,
		TemperatureC: visit.TemperatureC,
		HeadCircumCm: visit.HeadCircumCm,
		ExamFindings: visit.ExamFindings,
		Diagnosis:    visit.Diagnosis,
		Plan:         visit.Plan,
		CreatedAt:    visit.CreatedAt,
		UpdatedAt:    visit.UpdatedAt,
	}

	if bmi, ok := visit.BMI(); ok {
		payload.BMI = &bmi
	}

	return payload
}

// VaccinationRequest defines the payload for recording a dose.
type VaccinationRequest struct {
	VaccineName    string `json:"vaccine_name" binding:"required"`
	DoseLabel      string `json:"dose_label"`
	AdministeredAt string `json:"administered_at"`
	Notes          string `json:"notes"`
}

// VaccinationPayload describes an administered dose in API responses.
type VaccinationPayload struct {
	ID             string    `json:"id"`
	PatientID      string    `json:"patient_id"`
	VaccineName    string    `json:"vaccine_name"`
	DoseLabel      string    `json:"dose_label,omitempty"`
	AdministeredAt time.Time `json:"administered_at"`
	AdministeredBy string    `json:"administered_by,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func newVaccinationPayload(v domain.Vaccination) VaccinationPayload {
	return VaccinationPayload{
		ID:             v.ID,
		PatientID:      v.PatientID,
		VaccineName:    v.VaccineName,
		DoseLabel:      v.DoseLabel,
		AdministeredAt: v.AdministeredAt,
		AdministeredBy: v.AdministeredBy,
		Notes:          v.Notes,
		CreatedAt:      v.CreatedAt,
	}
}

// ServiceRequest defines the payload for a price list entry.
type ServiceRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Active      *bool   `json:"active,omitempty"`
}

// ServicePayload describes a price list entry in API responses.
type ServicePayload struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

func newServicePayload(item domain.ServiceItem) ServicePayload {
	return ServicePayload{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Price:       item.Price,
		IsActive:    item.IsActive,
		CreatedAt:   item.CreatedAt,
	}
}

// InvoiceLineRequest references a price list entry with a quantity.
type InvoiceLineRequest struct {
	ServiceID string `json:"service_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
}

// InvoiceCreateRequest defines the payload for issuing an invoice.
type InvoiceCreateRequest struct {
	PatientID string               `json:"patient_id" binding:"required"`
	Lines     []InvoiceLineRequest `json:"lines" binding:"required"`
	Notes     string               `json:"notes"`
}

// PaymentRequest applies a payment to an invoice.
type PaymentRequest struct {
	Amount float64 `json:"amount" binding:"required"`
	Method string  `json:"method" binding:"required"`
}

// InvoiceLinePayload describes one billed line.
type InvoiceLinePayload struct {
	ServiceID   string  `json:"service_id"`
	ServiceName string  `json:"service_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Total       float64 `json:"total"`
}

// InvoicePayload describes an invoice in API responses.
type InvoicePayload struct {
	ID         string               `json:"id"`
	Number     string               `json:"number"`
	PatientID  string               `json:"patient_id"`
	IssuedBy   string               `json:"issued_by"`
	IssuedAt   time.Time            `json:"issued_at"`
	Lines      []InvoiceLinePayload `json:"lines,omitempty"`
	VATRate    float64              `json:"vat_rate"`
	Subtotal   float64              `json:"subtotal"`
	VATAmount  float64              `json:"vat_amount"`
	Total      float64              `json:"total"`
	Method     string               `json:"method,omitempty"`
	Status     string               `json:"status"`
	AmountPaid float64              `json:"amount_paid"`
	BalanceDue float64              `json:"balance_due"`
	Notes      string               `json:"notes,omitempty"`
}

func newInvoicePayload(invoice domain.Invoice) InvoicePayload {
	lines := make([]InvoiceLinePayload, 0, len(invoice.Lines))
	for _, line := range invoice.Lines {
		lines = append(lines, InvoiceLinePayload{
			ServiceID:   line.ServiceID,
			ServiceName: line.ServiceName,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Total:       line.Total(),
		})
	}

	return InvoicePayload{
		ID:         invoice.ID,
		Number:     invoice.Number,
		PatientID:  invoice.PatientID,
		IssuedBy:   invoice.IssuedBy,
		IssuedAt:   invoice.IssuedAt,
		Lines:      lines,
		VATRate:    invoice.VATRate,
		Subtotal:   invoice.Subtotal(),
		VATAmount:  invoice.VATAmount(),
		Total:      invoice.Total(),
		Method:     string(invoice.Method),
		Status:     string(invoice.Status),
		AmountPaid: invoice.AmountPaid,
		BalanceDue: invoice.BalanceDue(),
		Notes:      invoice.Notes,
	}
}

// CertificateIssueRequest defines the payload for issuing a certificate.
type CertificateIssueRequest struct {
	PatientID string `json:"patient_id" binding:"required"`
	Kind      string `json:"kind" binding:"required"`
	Purpose   string `json:"purpose"`
}

// CertificatePayload describes an issued certificate.
type CertificatePayload struct {
	ID        string    `json:"id"`
	Number    string    `json:"number"`
	PatientID string    `json:"patient_id"`
	Kind      string    `json:"kind"`
	Purpose   string    `json:"purpose,omitempty"`
	IssuedBy  string    `json:"issued_by"`
	IssuedAt  time.Time `json:"issued_at"`
}

func newCertificatePayload(cert domain.CertificateLog) CertificatePayload {
	return CertificatePayload{
		ID:        cert.ID,
		Number:    cert.Number,
		PatientID: cert.PatientID,
		Kind:      string(cert.Kind),
		Purpose:   cert.Purpose,
		IssuedBy:  cert.IssuedBy,
		IssuedAt:  cert.IssuedAt,
	}
}

// ChatPostRequest defines the payload for a board message.
type ChatPostRequest struct {
	Body string `json:"body" binding:"required"`
	Kind string `json:"kind"`
}

// ChatPinRequest pins or unpins a message.
type ChatPinRequest struct {
	Pinned bool `json:"pinned"`
}

// ChatMessagePayload describes a board message.
type ChatMessagePayload struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Body       string    `json:"body"`
	Kind       string    `json:"kind"`
	Pinned     bool      `json:"pinned"`
	CreatedAt  time.Time `json:"created_at"`
}

func newChatMessagePayload(message domain.ChatMessage) ChatMessagePayload {
	return ChatMessagePayload{
		ID:         message.ID,
		AuthorID:   message.AuthorID,
		AuthorName: message.AuthorName,
		Body:       message.Body,
		Kind:       string(message.Kind),
		Pinned:     message.Pinned,
		CreatedAt:  message.CreatedAt,
	}
}

// StealthEntryRequest defines the payload for a hidden ledger entry.
type StealthEntryRequest struct {
	Title     string  `json:"title" binding:"required"`
	Note      string  `json:"note"`
	Amount    float64 `json:"amount"`
	EntryDate string  `json:"entry_date"`
}

// StealthEntryPayload describes a decrypted ledger entry.
type StealthEntryPayload struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Note      string    `json:"note,omitempty"`
	Amount    float64   `json:"amount"`
	EntryDate string    `json:"entry_date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newStealthEntryPayload(entry domain.StealthEntry) StealthEntryPayload {
	return StealthEntryPayload{
		ID:        entry.ID,
		Title:     entry.Title,
		Note:      entry.Note,
		Amount:    entry.Amount,
		EntryDate: entry.EntryDate.Format(dateLayout),
		CreatedAt: entry.CreatedAt,
		UpdatedAt: entry.UpdatedAt,
	}
}

// HealthResponse describes the service health payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
	Timestamp time.Time `json:"timestamp"`
}

// ReadyResponse describes readiness probe results with dependency checks.
type ReadyResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}
