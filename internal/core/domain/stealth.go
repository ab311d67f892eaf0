package domain

import "time"

// StealthEntry is one record of the hidden revenue ledger. Title, note, and
// amount are sealed with authenticated encryption before they reach storage;
// the repository layer only ever sees the ciphertext form.
type StealthEntry struct {
	ID        string
	OwnerID   string
	Title     string
	Note      string
	Amount    float64
	EntryDate time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SealedStealthEntry is the at-rest form of a StealthEntry.
type SealedStealthEntry struct {
	ID        string
	OwnerID   string
	TitleEnc  []byte
	NoteEnc   []byte
	AmountEnc []byte
	EntryDate time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
