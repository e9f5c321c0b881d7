// Package domain contains core concepts of the room engine.
// This file defines Message events and related rules.
// Messages are immutable and validated by the domain.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message represents an immutable chat event. Text and ImageURL are both
// optional but never both empty for user-authored messages.
type Message struct {
	ID       uuid.UUID `json:"id"`
	Text     string    `json:"text,omitempty"`
	ImageURL string    `json:"image_url,omitempty"`
	SenderID string    `json:"sender_id"`
	SentAt   time.Time `json:"sent_at"`
}

// SystemSenderID is the identity attached to engine-authored messages
// (room creation, join and leave announcements).
const SystemSenderID = "system"

func NewSystemMessage(text string, at time.Time) Message {
	return Message{
		ID:       uuid.New(),
		Text:     text,
		SenderID: SystemSenderID,
		SentAt:   at,
	}
}
