package domain

import "time"

// Visit captures one consultation for a patient.
type Visit struct {
	ID        string
	PatientID string
	DoctorID  string
	VisitedAt time.Time
	Reason    string

	// Vitals. Zero values mean "not measured".
	WeightKg     float64
	HeightCm     float64
	TemperatureC float64
	HeadCircumCm float64

	ExamFindings string
	Diagnosis    string
	Plan         string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// BMI returns the body-mass index derived from the recorded vitals and
// whether both measurements were present.
func (v Visit) BMI() (float64, bool) {
	if v.WeightKg <= 0 || v.HeightCm <= 0 {
		return 0, false
	}
	meters := v.HeightCm / 100
	return v.WeightKg / (meters * meters), true
}

// Vaccination records one administered vaccine dose.
type Vaccination struct {
	ID             string
	PatientID      string
	VaccineName    string
	DoseLabel      string
	AdministeredAt time.Time
	AdministeredBy string
	Notes          string
	CreatedAt      time.Time
}
