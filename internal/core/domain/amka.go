package domain

import (
	"errors"
	"unicode"
)

// AMKA validation errors.
var (
	ErrAMKAWrongLength = errors.New("amka: must contain exactly 11 digits")
	ErrAMKANonNumeric  = errors.New("amka: contains non-numeric characters")
	ErrAMKACheckDigit  = errors.New("amka: check digit mismatch")
)

// ValidateAMKA validates a Greek AMKA social-security number.
//
// The input is normalized by stripping every non-digit rune, so separators,
// labels and other decoration are all tolerated. Exactly 11 ASCII digits must
// remain. Digit runes from other scripts are rejected rather than stripped,
// since dropping them would silently corrupt the number. The last digit is a
// weighted checksum over the first ten: sum(digit[i] * (11 - i)) mod 11,
// where a result of 10 maps to an expected check digit of 0.
func ValidateAMKA(id string) error {
	digits := make([]byte, 0, 11)
	for _, r := range id {
		switch {
		case r >= '0' && r <= '9':
			digits = append(digits, byte(r-'0'))
		case unicode.IsDigit(r):
			return ErrAMKANonNumeric
		default:
			continue
		}
	}

	if len(digits) != 11 {
		return ErrAMKAWrongLength
	}

	sum := 0
	for i := 0; i < 10; i++ {
		sum += int(digits[i]) * (11 - i)
	}

	expected := sum % 11
	if expected >= 10 {
		expected = 0
	}

	if int(digits[10]) != expected {
		return ErrAMKACheckDigit
	}

	return nil
}

// AMKACheckDigit computes the expected check digit for the first ten digits
// of an AMKA. It is exposed for test-data construction and form hints.
func AMKACheckDigit(first10 string) (int, error) {
	if len(first10) != 10 {
		return 0, ErrAMKAWrongLength
	}

	sum := 0
	for i := 0; i < 10; i++ {
		c := first10[i]
		if c < '0' || c > '9' {
			return 0, ErrAMKANonNumeric
		}
		sum += int(c-'0') * (11 - i)
	}

	digit := sum % 11
	if digit >= 10 {
		digit = 0
	}
	return digit, nil
}
