package domain

import "time"

// LoginEvent represents the payload for plati.auth.login messages.
type LoginEvent struct {
	EventID   string
	AccountID string
	Username  string
	Role      string
	SessionID string
	IP        string
	At        time.Time
}

// LogoutEvent represents the payload for plati.auth.logout messages.
type LogoutEvent struct {
	EventID   string
	AccountID string
	SessionID string
	At        time.Time
}

// PasswordChangedEvent represents the payload for plati.auth.password_changed messages.
type PasswordChangedEvent struct {
	EventID   string
	AccountID string
	ChangedBy string
	Via       string
	At        time.Time
}

// AccountChangedEvent represents the payload for plati.account.* lifecycle messages.
type AccountChangedEvent struct {
	EventID   string
	AccountID string
	Username  string
	Role      string
	Action    string
	ActorID   string
	At        time.Time
}

// CertificateIssuedEvent represents the payload for plati.certificate.issued messages.
type CertificateIssuedEvent struct {
	EventID   string
	Number    string
	PatientID string
	Kind      string
	IssuedBy  string
	At        time.Time
}

// StealthAccessEvent represents the payload for plati.stealth.accessed messages.
// Every read or write of the hidden ledger is recorded.
type StealthAccessEvent struct {
	EventID   string
	AccountID string
	Action    string
	At        time.Time
}
