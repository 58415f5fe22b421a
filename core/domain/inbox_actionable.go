package domain

import (
	"time"

	"github.com/google/uuid"
)

// Actionable is a persisted task or deadline derived from an analysis.
// Deadline is set only when the extracted date text parsed cleanly.
type Actionable struct {
	ID          uuid.UUID    `json:"id"`
	MessageID   uuid.UUID    `json:"message_id"`
	UserID      uuid.UUID    `json:"user_id"`
	Type        TaskCategory `json:"type"`
	Description string       `json:"description"`
	Deadline    *time.Time   `json:"deadline,omitempty"`
	Completed   bool         `json:"completed"`
	CreatedAt   time.Time    `json:"created_at"`
}
