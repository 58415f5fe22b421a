package out

import (
	"context"
	"time"

	"github.com/Akashdb5/champa-cognitive-ai-inbox/core/domain"

	"github.com/google/uuid"
)

// EmbeddingRecord is a message embedding plus the payload needed to
// render a search hit without a second lookup
type EmbeddingRecord struct {
	MessageID      uuid.UUID
	UserID         uuid.UUID
	Platform       domain.Platform
	Timestamp      time.Time
	Subject        string
	ContentPreview string
	Embedding      []float32
}

// VectorSearchResult is one semantic search hit
type VectorSearchResult struct {
	MessageID      uuid.UUID       `json:"message_id"`
	Score          float64         `json:"score"`
	Platform       domain.Platform `json:"platform"`
	Timestamp      time.Time       `json:"timestamp"`
	Subject        string          `json:"subject,omitempty"`
	ContentPreview string          `json:"content_preview"`
}

// VectorStore stores message embeddings for semantic retrieval.
// Upsert is idempotent per message.
type VectorStore interface {
	Upsert(ctx context.Context, rec *EmbeddingRecord) error
	Delete(ctx context.Context, messageID uuid.UUID) error
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
	Search(ctx context.Context, userID uuid.UUID, embedding []float32, limit int, minScore float64) ([]*VectorSearchResult, error)
}
