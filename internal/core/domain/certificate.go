package domain

import "time"

// CertificateKind enumerates the certificate templates the practice issues.
type CertificateKind string

const (
	CertificateHealth      CertificateKind = "health"
	CertificateVaccination CertificateKind = "vaccination"
	CertificateSchool      CertificateKind = "school"
	CertificateSports      CertificateKind = "sports"
	CertificateOther       CertificateKind = "other"
)

// Valid reports whether the kind is a known value.
func (k CertificateKind) Valid() bool {
	switch k {
	case CertificateHealth, CertificateVaccination, CertificateSchool, CertificateSports, CertificateOther:
		return true
	}
	return false
}

// CertificateLog records one issued medical certificate.
type CertificateLog struct {
	ID        string
	Number    string
	PatientID string
	Kind      CertificateKind
	Purpose   string
	IssuedBy  string
	IssuedAt  time.Time
}
