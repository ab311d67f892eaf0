package domain

import (
	"strings"
	"time"
)

// Role identifies the access level of a staff account.
type Role string

const (
	RoleSecretary Role = "secretary"
	RoleDoctor    Role = "doctor"
	RoleTopUser   Role = "topuser"
)

// roleLevels orders roles so that higher levels inherit every capability of
// the levels below them.
var roleLevels = map[Role]int{
	RoleSecretary: 1,
	RoleDoctor:    2,
	RoleTopUser:   3,
}

// ParseRole resolves the stored role string into a known Role value.
func ParseRole(value string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(value)))
	_, ok := roleLevels[role]
	return role, ok
}

// Level returns the numeric rank of the role within the hierarchy. Unknown
// roles rank below every valid role.
func (r Role) Level() int {
	return roleLevels[r]
}

// Valid reports whether the role is one of the three enumerated values.
func (r Role) Valid() bool {
	_, ok := roleLevels[r]
	return ok
}

// AtLeast reports whether the role ranks at or above the required role.
func (r Role) AtLeast(required Role) bool {
	return r.Level() >= required.Level() && required.Level() > 0
}

// Capability predicates. All are pure functions of the role.

// CanManagePatients reports whether the role may view and edit patient records.
func (r Role) CanManagePatients() bool {
	return r.AtLeast(RoleSecretary)
}

// CanAccessBilling reports whether the role may work with invoices and payments.
func (r Role) CanAccessBilling() bool {
	return r.AtLeast(RoleSecretary)
}

// CanIssueCertificates reports whether the role may issue medical certificates.
func (r Role) CanIssueCertificates() bool {
	return r.AtLeast(RoleDoctor)
}

// CanModifyAccounts reports whether the role may create or alter other accounts.
func (r Role) CanModifyAccounts() bool {
	return r.AtLeast(RoleTopUser)
}

// CanViewStealth reports whether the role may open the hidden revenue ledger.
func (r Role) CanViewStealth() bool {
	return r.AtLeast(RoleTopUser)
}

// Account represents one staff login identity.
type Account struct {
	ID        string
	Username  string
	Email     string
	FirstName string
	LastName  string
	Role      Role

	// PasswordHash holds the salted Argon2id encoding of the primary
	// password. SecondPassword is stored and compared in plaintext, a
	// deliberate weakness carried over from the legacy system; see the
	// authentication service for the comparison semantics.
	PasswordHash   string
	SecondPassword string

	IsActive  bool
	CreatedAt time.Time
	LastLogin *time.Time

	ResetTokenHash      *string
	ResetTokenExpiresAt *time.Time
	ResetTokenUsedAt    *time.Time
}

// FullName joins the first and last name with a single space.
func (a Account) FullName() string {
	return joinName(a.FirstName, a.LastName)
}

// SetFullName splits the value on the first space and assigns both parts.
// A value without a space becomes the first name with an empty last name.
func (a *Account) SetFullName(value string) {
	a.FirstName, a.LastName = splitName(value)
}

func joinName(first, last string) string {
	if first == "" {
		return last
	}
	if last == "" {
		return first
	}
	return first + " " + last
}

func splitName(value string) (first, last string) {
	value = strings.TrimSpace(value)
	if idx := strings.Index(value, " "); idx >= 0 {
		return value[:idx], strings.TrimSpace(value[idx+1:])
	}
	return value, ""
}
