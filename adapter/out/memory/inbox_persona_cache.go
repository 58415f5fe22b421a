package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/Akashdb5/champa-cognitive-ai-inbox/core/domain"
	"github.com/Akashdb5/champa-cognitive-ai-inbox/core/port/out"
	"github.com/Akashdb5/champa-cognitive-ai-inbox/pkg/cache"

	"github.com/google/uuid"
)

// CachedPersonaStore wraps a PersonaStore with Redis snapshot caching.
// Observations invalidate the cached snapshot so drafting sees fresh
// persona data on the next read.
type CachedPersonaStore struct {
	delegate out.PersonaStore
	cache    *cache.RedisCache
	ttl      time.Duration
}

func NewCachedPersonaStore(delegate out.PersonaStore, redisCache *cache.RedisCache, ttl time.Duration) *CachedPersonaStore {
	if ttl == 0 {
		ttl = 30 * time.Minute
	}
	return &CachedPersonaStore{
		delegate: delegate,
		cache:    redisCache,
		ttl:      ttl,
	}
}

func personaCacheKey(userID uuid.UUID) string {
	return fmt.Sprintf("persona:snapshot:%s", userID.String())
}

func (s *CachedPersonaStore) StoreObservation(ctx context.Context, userID uuid.UUID, obsType domain.ObservationType, value map[string]any) error {
	if err := s.delegate.StoreObservation(ctx, userID, obsType, value); err != nil {
		return err
	}
	// best-effort invalidation, the TTL bounds staleness anyway
	_ = s.cache.Delete(ctx, personaCacheKey(userID))
	return nil
}

func (s *CachedPersonaStore) Snapshot(ctx context.Context, userID uuid.UUID) (*domain.PersonaSnapshot, error) {
	key := personaCacheKey(userID)

	var cached domain.PersonaSnapshot
	found, err := s.cache.GetJSON(ctx, key, &cached)
	if err == nil && found {
		return &cached, nil
	}

	snapshot, err := s.delegate.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	if snapshot != nil {
		_ = s.cache.SetJSON(ctx, key, snapshot, s.ttl)
	}
	return snapshot, nil
}

func (s *CachedPersonaStore) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	if err := s.delegate.DeleteByUser(ctx, userID); err != nil {
		return err
	}
	_ = s.cache.Delete(ctx, personaCacheKey(userID))
	return nil
}

var _ out.PersonaStore = (*CachedPersonaStore)(nil)
