package domain

import (
	"strings"
	"time"
)

// Patient represents one patient record in the practice.
type Patient struct {
	ID        string
	AMKA      string
	FirstName string
	LastName  string
	BirthDate time.Time
	Sex       string
	Phone     string
	Email     string
	Address   string

	// Pediatric practices record the accompanying adults alongside the child.
	FatherName   string
	MotherName   string
	GuardianName string

	BloodType      string
	Allergies      string
	MedicalHistory string
	BirthWeightKg  float64
	BirthLengthCm  float64

	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FullName joins the first and last name with a single space.
func (p Patient) FullName() string {
	return joinName(p.FirstName, p.LastName)
}

// SetFullName splits the value on the first space and assigns both parts.
func (p *Patient) SetFullName(value string) {
	p.FirstName, p.LastName = splitName(value)
}

// AgeAt returns the patient's age in whole years, months within the year, and
// days within the month at the supplied moment, using exact calendar
// arithmetic. The month anchor clamps to the real month length, so a birthday
// on the 31st lands on the 28th or 29th in February rather than spilling over.
func (p Patient) AgeAt(at time.Time) (years, months, days int) {
	if p.BirthDate.IsZero() || at.Before(p.BirthDate) {
		return 0, 0, 0
	}

	by, bm, _ := p.BirthDate.Date()
	ny, nm, _ := at.Date()

	totalMonths := (ny-by)*12 + int(nm) - int(bm)
	anchor := addMonthsClamped(p.BirthDate, totalMonths)
	if anchor.After(at) {
		totalMonths--
		anchor = addMonthsClamped(p.BirthDate, totalMonths)
	}

	years = totalMonths / 12
	months = totalMonths % 12
	days = int(at.Sub(anchor).Hours() / 24)

	return years, months, days
}

// addMonthsClamped adds whole months, clamping the day of month to the target
// month's length. time.AddDate would normalize Jan 31 + 1 month to March.
func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	if dim := daysInMonth(first.Year(), first.Month()); d > dim {
		d = dim
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, t.Location())
}

func daysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this month.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// NormalizeSearchTerm lowercases a name fragment and strips the Greek accent
// marks so that searches match regardless of tonos placement.
func NormalizeSearchTerm(term string) string {
	term = strings.ToLower(strings.TrimSpace(term))

	replacer := strings.NewReplacer(
		"ά", "α",
		"έ", "ε",
		"ή", "η",
		"ί", "ι",
		"ϊ", "ι",
		"ΐ", "ι",
		"ό", "ο",
		"ύ", "υ",
		"ϋ", "υ",
		"ΰ", "υ",
		"ώ", "ω",
		"ς", "σ",
	)
	return replacer.Replace(term)
}
