package out

import (
	"context"

	"github.com/Akashdb5/champa-cognitive-ai-inbox/core/domain"

	"github.com/google/uuid"
)

// AnalysisRepository persists message analyses and their derived
// actionable items. One analysis per message: ReplaceAnalysis removes
// any previous analysis and items in the same transaction, so a rerun
// never leaves duplicates behind.
type AnalysisRepository interface {
	GetAnalysis(ctx context.Context, messageID uuid.UUID) (*domain.Analysis, error)
	ReplaceAnalysis(ctx context.Context, analysis *domain.Analysis, items []*domain.Actionable) error
	DeleteAnalysis(ctx context.Context, messageID uuid.UUID) error
	DeleteAnalysesByUser(ctx context.Context, userID uuid.UUID) error

	// Actionables
	GetActionablesByMessage(ctx context.Context, messageID uuid.UUID) ([]*domain.Actionable, error)
	ListActionables(ctx context.Context, userID uuid.UUID, completed *bool, limit int) ([]*domain.Actionable, error)
	CompleteActionable(ctx context.Context, id, userID uuid.UUID) (bool, error)
}
