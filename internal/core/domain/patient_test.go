package domain_test

import (
	"testing"
	"time"

	"github.com/Fragarianos1981/Dr.platiPel/internal/core/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPatientAgeAt(t *testing.T) {
	cases := []struct {
		name   string
		birth  time.Time
		at     time.Time
		years  int
		months int
		days   int
	}{
		{"exact years", date(2015, time.June, 15), date(2023, time.June, 15), 8, 0, 0},
		{"plain", date(2015, time.June, 15), date(2023, time.September, 20), 8, 3, 5},
		{"borrow days", date(2015, time.October, 10), date(2023, time.April, 5), 7, 5, 26},
		{"leap birthday", date(2020, time.February, 29), date(2021, time.March, 1), 1, 0, 1},
		{"month end clamp", date(2024, time.January, 31), date(2024, time.March, 1), 0, 1, 1},
		{"before birth", date(2024, time.June, 1), date(2024, time.May, 1), 0, 0, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := domain.Patient{BirthDate: tc.birth}
			years, months, days := p.AgeAt(tc.at)
			if years != tc.years || months != tc.months || days != tc.days {
				t.Fatalf("got %dy %dm %dd, want %dy %dm %dd",
					years, months, days, tc.years, tc.months, tc.days)
			}
		})
	}
}

func TestNormalizeSearchTerm(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"Παπαδόπουλος", "παπαδοπουλοσ"},
		{"ΜΑΡΊΑ", "μαρια"},
		{"  Nikos  ", "nikos"},
		{"Αϊβαλιώτης", "αιβαλιωτησ"},
	}

	for _, tc := range cases {
		if got := domain.NormalizeSearchTerm(tc.input); got != tc.want {
			t.Fatalf("NormalizeSearchTerm(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}
