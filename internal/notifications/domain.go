// Package notifications stores in-app notification log entries.
package notifications

import (
	"time"

	"github.com/google/uuid"
)

// Type classifies a notification entry.
type Type string

const (
	TypeAlert Type = "Alert"
)

// Log is a notification addressed to a single user.
type Log struct {
	ID           uuid.UUID
	Subject      string
	EmailContent string
	ForUser      string
	Type         Type
	DocumentType string
	DocumentName string
	Read         bool
	CreatedAt    time.Time
}

// CopyFor returns a fresh entry with the same content addressed to user.
func (l Log) CopyFor(user string) Log {
	out := l
	out.ID = uuid.New()
	out.ForUser = user
	out.Read = false
	out.CreatedAt = time.Time{}
	return out
}
