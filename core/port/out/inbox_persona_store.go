package out

import (
	"context"

	"github.com/Akashdb5/champa-cognitive-ai-inbox/core/domain"

	"github.com/google/uuid"
)

// PersonaStore records observations about a user's communication
// behavior and serves the aggregated snapshot used for reply drafting
type PersonaStore interface {
	StoreObservation(ctx context.Context, userID uuid.UUID, obsType domain.ObservationType, value map[string]any) error
	Snapshot(ctx context.Context, userID uuid.UUID) (*domain.PersonaSnapshot, error)
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}
