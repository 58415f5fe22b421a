// Package messaging provides Redis Streams adapters for background
// analysis jobs.
package messaging

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/Akashdb5/champa-cognitive-ai-inbox/core/port/out"

	"github.com/redis/go-redis/v9"
)

// Stream names
const (
	StreamAnalyze = "inbox:analyze"
)

// RedisProducer implements out.MessageProducer using Redis Streams.
type RedisProducer struct {
	client *redis.Client
	stream string
}

// NewRedisProducer creates a new RedisProducer.
func NewRedisProducer(client *redis.Client, stream string) *RedisProducer {
	if stream == "" {
		stream = StreamAnalyze
	}
	return &RedisProducer{client: client, stream: stream}
}

// PublishAnalyze publishes a message analysis job.
func (p *RedisProducer) PublishAnalyze(ctx context.Context, job *out.AnalyzeJob) error {
	return p.publish(ctx, p.stream, job)
}

func (p *RedisProducer) publish(ctx context.Context, stream string, job interface{}) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		ID:     "*",
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", stream, err)
	}

	return nil
}

// Ensure RedisProducer implements out.MessageProducer
var _ out.MessageProducer = (*RedisProducer)(nil)
