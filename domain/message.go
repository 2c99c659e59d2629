// Package domain contains core concepts of the group system.
// This file defines Message events and related rules.
// Messages are immutable once appended to a group log.
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const TimestampLayout = "2006-01-02 15:04:05"

// Message represents an immutable group message.
type Message struct {
	ID         uuid.UUID // unique identifier
	SenderID   uuid.UUID
	SenderName string // username at send time
	Text       string
	SentAt     time.Time
}

func (m Message) String() string {
	return fmt.Sprintf("%s (%s): %s", m.SenderName, m.SentAt.Format(TimestampLayout), m.Text)
}
