package out

import (
	"context"

	"github.com/google/uuid"
)

// AnalyzeJob asks a worker to run analysis for a stored message
type AnalyzeJob struct {
	MessageID uuid.UUID `json:"message_id"`
	UserID    uuid.UUID `json:"user_id"`
	Reanalyze bool      `json:"reanalyze,omitempty"`
}

// MessageProducer publishes background jobs to the stream
type MessageProducer interface {
	PublishAnalyze(ctx context.Context, job *AnalyzeJob) error
}
