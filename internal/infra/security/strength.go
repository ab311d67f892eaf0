package security

import (
	"unicode"

	zxcvbn "github.com/nbutton23/zxcvbn-go"
)

// StrengthTier classifies a candidate password. Tiers above Unacceptable are
// ordered from weakest to strongest.
type StrengthTier string

const (
	StrengthUnacceptable StrengthTier = "unacceptable"
	StrengthGood         StrengthTier = "good"
	StrengthModerate     StrengthTier = "moderate"
	StrengthStrong       StrengthTier = "strong"
	StrengthVeryStrong   StrengthTier = "very_strong"
)

// AssessPassword scores a candidate primary password. It never fails; inputs
// shorter than 6 characters are reported as unacceptable.
//
// Lengths 6 and 7 rate Good on length alone. From 8 characters on, the rating
// depends on which character classes appear: all of upper, lower, and digit
// rate Very Strong; upper+lower or lower+digit rate Strong; anything else
// rates Moderate. Upper+digit without a lowercase letter deliberately does
// not reach Strong, matching the behavior staff are used to from the previous
// system.
func AssessPassword(password string) (bool, StrengthTier) {
	runes := []rune(password)
	if len(runes) < 6 {
		return false, StrengthUnacceptable
	}

	if len(runes) < 8 {
		return true, StrengthGood
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range runes {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	switch {
	case hasUpper && hasLower && hasDigit:
		return true, StrengthVeryStrong
	case (hasUpper && hasLower) || (hasLower && hasDigit):
		return true, StrengthStrong
	default:
		return true, StrengthModerate
	}
}

// AdvisoryScore returns the zxcvbn estimator's 0-4 score for the password.
// It is surfaced to the UI beside the tier and has no effect on acceptance.
func AdvisoryScore(password string) int {
	return zxcvbn.PasswordStrength(password, nil).Score
}
