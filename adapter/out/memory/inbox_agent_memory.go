// Package memory provides Redis-backed short-term storage for agent
// runs and cached persona snapshots.
package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/Akashdb5/champa-cognitive-ai-inbox/core/port/out"

	"github.com/redis/go-redis/v9"
)

const (
	memoryKeyPrefix = "agent:memory:"
	maxEntries      = 50
	defaultTTL      = 24 * time.Hour
)

// RedisAgentMemory implements out.AgentMemory on a capped Redis list
// per namespace. Entries expire with the namespace.
type RedisAgentMemory struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisAgentMemory(client *redis.Client, ttl time.Duration) *RedisAgentMemory {
	if ttl == 0 {
		ttl = defaultTTL
	}
	return &RedisAgentMemory{client: client, ttl: ttl}
}

func (m *RedisAgentMemory) Append(ctx context.Context, namespace, entry string) error {
	key := memoryKeyPrefix + namespace

	pipe := m.client.Pipeline()
	pipe.LPush(ctx, key, entry)
	pipe.LTrim(ctx, key, 0, maxEntries-1)
	pipe.Expire(ctx, key, m.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append agent memory: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first
func (m *RedisAgentMemory) Recent(ctx context.Context, namespace string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = maxEntries
	}

	entries, err := m.client.LRange(ctx, memoryKeyPrefix+namespace, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("read agent memory: %w", err)
	}
	return entries, nil
}

func (m *RedisAgentMemory) Clear(ctx context.Context, namespace string) error {
	if err := m.client.Del(ctx, memoryKeyPrefix+namespace).Err(); err != nil {
		return fmt.Errorf("clear agent memory: %w", err)
	}
	return nil
}

var _ out.AgentMemory = (*RedisAgentMemory)(nil)
