package domain

import (
	"time"

	"github.com/google/uuid"
)

// Platform identifies the source channel of a normalized message
type Platform string

const (
	PlatformMail     Platform = "mail"
	PlatformChat     Platform = "chat"
	PlatformCalendar Platform = "calendar"
)

// Valid reports whether p is a known platform
func (p Platform) Valid() bool {
	switch p {
	case PlatformMail, PlatformChat, PlatformCalendar:
		return true
	}
	return false
}

// Message is a platform-neutral representation of an inbound message.
// Subject is empty for platforms without one; ThreadID is empty when the
// message does not belong to a conversation. Metadata carries raw
// platform headers such as List-Unsubscribe.
type Message struct {
	ID                uuid.UUID         `json:"id"`
	UserID            uuid.UUID         `json:"user_id"`
	Platform          Platform          `json:"platform"`
	PlatformMessageID string            `json:"platform_message_id"`
	Sender            string            `json:"sender"`
	Subject           string            `json:"subject,omitempty"`
	Content           string            `json:"content"`
	Timestamp         time.Time         `json:"timestamp"`
	ThreadID          string            `json:"thread_id,omitempty"`
	Metadata          map[string]string `json:"metadata,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
}
