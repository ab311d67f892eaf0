package domain

import "time"

// ChatKind classifies internal chat messages.
type ChatKind string

const (
	ChatNote     ChatKind = "note"
	ChatReminder ChatKind = "reminder"
	ChatUrgent   ChatKind = "urgent"
	ChatInfo     ChatKind = "info"
)

// Valid reports whether the kind is a known value.
func (k ChatKind) Valid() bool {
	switch k {
	case ChatNote, ChatReminder, ChatUrgent, ChatInfo:
		return true
	}
	return false
}

// ChatMessage is one entry on the internal staff message board.
type ChatMessage struct {
	ID         string
	AuthorID   string
	AuthorName string
	Body       string
	Kind       ChatKind
	Pinned     bool
	CreatedAt  time.Time
}
