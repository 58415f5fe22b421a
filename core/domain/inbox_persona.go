package domain

import (
	"time"

	"github.com/google/uuid"
)

// ObservationType labels a persona observation
type ObservationType string

const (
	ObservationStylePattern ObservationType = "style_pattern"
	ObservationContact      ObservationType = "contact"
	ObservationPreference   ObservationType = "preference"
	ObservationReplySent    ObservationType = "reply_sent"
)

// PersonaObservation is one durable fact learned about a user's
// communication behavior. Key encodes the observation type plus a
// timestamp so writes never collide.
type PersonaObservation struct {
	ID        uuid.UUID      `json:"id"`
	UserID    uuid.UUID      `json:"user_id"`
	Key       string         `json:"key"`
	Value     map[string]any `json:"value"`
	CreatedAt time.Time      `json:"created_at"`
}

// Contact is an aggregated view of a correspondent
type Contact struct {
	Email            string `json:"email"`
	Name             string `json:"name,omitempty"`
	Relationship     string `json:"relationship,omitempty"`
	InteractionCount int    `json:"interaction_count"`
}

// PersonaSnapshot is the aggregated persona handed to reply generation:
// the most recent style patterns, contacts with interaction counts, and
// merged preferences (newer values win per key).
type PersonaSnapshot struct {
	StylePatterns []map[string]any `json:"style_patterns,omitempty"`
	Contacts      []Contact        `json:"contacts,omitempty"`
	Preferences   map[string]any   `json:"preferences,omitempty"`
}

// Empty reports whether the snapshot carries no learned signal
func (p *PersonaSnapshot) Empty() bool {
	return p == nil || (len(p.StylePatterns) == 0 && len(p.Contacts) == 0 && len(p.Preferences) == 0)
}
