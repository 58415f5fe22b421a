package out

import (
	"context"

	"github.com/Akashdb5/champa-cognitive-ai-inbox/core/domain"

	"github.com/google/uuid"
)

// SendRequest carries an outbound reply to a platform connector
type SendRequest struct {
	Recipient string `json:"recipient"`
	Content   string `json:"content"`
	Subject   string `json:"subject,omitempty"`
	ThreadID  string `json:"thread_id,omitempty"`
	ReplyToID string `json:"reply_to_id,omitempty"`
}

// SendResult is the connector's delivery outcome
type SendResult struct {
	Success           bool   `json:"success"`
	PlatformMessageID string `json:"platform_message_id,omitempty"`
	Error             string `json:"error,omitempty"`
}

// PlatformGateway delivers outbound messages through the per-platform
// connectors. A non-nil error or Success=false both mean the reply
// did not reach the platform.
type PlatformGateway interface {
	Send(ctx context.Context, userID uuid.UUID, platform domain.Platform, req *SendRequest) (*SendResult, error)
}
