package out

import (
	"context"

	"github.com/Akashdb5/champa-cognitive-ai-inbox/core/domain"

	"github.com/google/uuid"
)

// ReplyRepository persists smart reply drafts
type ReplyRepository interface {
	CreateReply(ctx context.Context, reply *domain.SmartReply) error
	CreateReplies(ctx context.Context, replies []*domain.SmartReply) error
	// GetReply is scoped to the owning user; returns nil, nil when the
	// reply does not exist or belongs to someone else
	GetReply(ctx context.Context, id, userID uuid.UUID) (*domain.SmartReply, error)
	ListReplies(ctx context.Context, userID uuid.UUID, status domain.ReplyStatus, limit int) ([]*domain.SmartReply, error)
	GetRepliesByMessage(ctx context.Context, messageID uuid.UUID) ([]*domain.SmartReply, error)
	UpdateReply(ctx context.Context, reply *domain.SmartReply) error
	DeleteRepliesByUser(ctx context.Context, userID uuid.UUID) error
}
