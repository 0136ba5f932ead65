package widget

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleError     Role = "error"
)

// Entry is one rendered message. Entries are append-only and never change after
// they are created.
type Entry struct {
	ID   uuid.UUID
	Role Role
	Text string
	Time time.Time
}

func newEntry(role Role, text string, now time.Time) Entry {
	return Entry{
		ID:   uuid.New(),
		Role: role,
		Text: text,
		Time: now,
	}
}
