package out

import (
	"context"

	"github.com/Akashdb5/champa-cognitive-ai-inbox/core/domain"

	"github.com/google/uuid"
)

// MessageRepository defines the interface for normalized message persistence
type MessageRepository interface {
	// GetMessage returns nil, nil when the message does not exist
	GetMessage(ctx context.Context, id uuid.UUID) (*domain.Message, error)
	CreateMessage(ctx context.Context, msg *domain.Message) error
	// GetThread returns all messages of a conversation for the user,
	// ordered oldest first
	GetThread(ctx context.Context, userID uuid.UUID, threadID string) ([]*domain.Message, error)
}
