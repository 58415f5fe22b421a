package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReplyStatus is the lifecycle state of a smart reply draft
type ReplyStatus string

const (
	// ReplyStatusSuggestion is a lightweight draft produced automatically
	// during analysis, not yet owned by the user.
	ReplyStatusSuggestion ReplyStatus = "suggestion"
	// ReplyStatusPending awaits user review. Edits keep the draft pending.
	ReplyStatusPending ReplyStatus = "pending"
	// ReplyStatusApproved means the user approved but delivery failed;
	// the draft is preserved for a send retry.
	ReplyStatusApproved ReplyStatus = "approved"
	ReplyStatusRejected ReplyStatus = "rejected"
	ReplyStatusSent     ReplyStatus = "sent"
)

// CanTransition reports whether moving from s to the target state is a
// legal lifecycle step. Pending to pending covers draft edits; approved
// to sent covers delivery retries.
func (s ReplyStatus) CanTransition(to ReplyStatus) bool {
	switch s {
	case ReplyStatusSuggestion:
		return to == ReplyStatusPending
	case ReplyStatusPending:
		return to == ReplyStatusPending || to == ReplyStatusApproved ||
			to == ReplyStatusRejected || to == ReplyStatusSent
	case ReplyStatusApproved:
		return to == ReplyStatusSent
	}
	return false
}

// Terminal reports whether the state admits no further transitions
func (s ReplyStatus) Terminal() bool {
	return s == ReplyStatusRejected || s == ReplyStatusSent
}

// SmartReply is a draft reply tied to an inbound message
type SmartReply struct {
	ID           uuid.UUID   `json:"id"`
	MessageID    uuid.UUID   `json:"message_id"`
	UserID       uuid.UUID   `json:"user_id"`
	DraftContent string      `json:"draft_content"`
	Status       ReplyStatus `json:"status"`
	CreatedAt    time.Time   `json:"created_at"`
	ReviewedAt   *time.Time  `json:"reviewed_at,omitempty"`
	SentAt       *time.Time  `json:"sent_at,omitempty"`
}

// ReplySuggestion is a short automatic reply option with a confidence
// estimate, produced during analysis before any user involvement
type ReplySuggestion struct {
	Text       string  `json:"text"`
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
}
