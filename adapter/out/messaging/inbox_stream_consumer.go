package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/Akashdb5/champa-cognitive-ai-inbox/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// JobHandler processes jobs from streams.
type JobHandler interface {
	Handle(ctx context.Context, stream string, data []byte) error
}

// Consumer consumes messages from Redis Streams.
type Consumer struct {
	client   *redis.Client
	group    string
	consumer string
	streams  []string
	handler  JobHandler
	log      *logger.Logger

	batchSize int
	blockTime time.Duration

	pendingCheckInterval time.Duration
	pendingIdleTime      time.Duration
	maxRetries           int
}

// ConsumerConfig holds consumer configuration.
type ConsumerConfig struct {
	Group    string
	Consumer string
	Streams  []string
	Handler  JobHandler

	BatchSize int
	BlockTime time.Duration

	PendingCheckInterval time.Duration
	PendingIdleTime      time.Duration
	MaxRetries           int
}

// NewConsumer creates a new Consumer.
func NewConsumer(client *redis.Client, cfg *ConsumerConfig) *Consumer {
	batchSize := cfg.BatchSize
	if batchSize == 0 {
		batchSize = 10
	}
	blockTime := cfg.BlockTime
	if blockTime == 0 {
		blockTime = 5 * time.Second
	}
	pendingCheckInterval := cfg.PendingCheckInterval
	if pendingCheckInterval == 0 {
		pendingCheckInterval = 30 * time.Second
	}
	pendingIdleTime := cfg.PendingIdleTime
	if pendingIdleTime == 0 {
		pendingIdleTime = 2 * time.Minute
	}
	maxRetries := cfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = 3
	}

	return &Consumer{
		client:               client,
		group:                cfg.Group,
		consumer:             cfg.Consumer,
		streams:              cfg.Streams,
		handler:              cfg.Handler,
		log:                  logger.Default().WithField("component", "stream_consumer"),
		batchSize:            batchSize,
		blockTime:            blockTime,
		pendingCheckInterval: pendingCheckInterval,
		pendingIdleTime:      pendingIdleTime,
		maxRetries:           maxRetries,
	}
}

// Run starts consuming messages until the context is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	c.log.WithFields(map[string]any{
		"group":    c.group,
		"consumer": c.consumer,
		"streams":  c.streams,
	}).Info("starting consumer")

	for _, stream := range c.streams {
		c.createConsumerGroup(ctx, stream)
	}

	go c.processPendingMessages(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		result, err := c.readMessages(ctx)
		if err != nil {
			if err == redis.Nil {
				continue
			}
			c.log.WithError(err).Error("error reading from streams")
			time.Sleep(time.Second)
			continue
		}

		for _, stream := range result {
			for _, msg := range stream.Messages {
				if err := c.processMessage(ctx, stream.Stream, msg); err != nil {
					c.log.WithError(err).WithFields(map[string]any{
						"stream": stream.Stream,
						"id":     msg.ID,
					}).Error("error processing message")
					continue
				}

				if err := c.client.XAck(ctx, stream.Stream, c.group, msg.ID).Err(); err != nil {
					c.log.WithError(err).WithFields(map[string]any{
						"stream": stream.Stream,
						"id":     msg.ID,
					}).Error("error acknowledging message")
				}
			}
		}
	}
}

// processPendingMessages periodically reclaims stuck pending messages.
func (c *Consumer) processPendingMessages(ctx context.Context) {
	ticker := time.NewTicker(c.pendingCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.claimAndProcessPending(ctx)
		}
	}
}

func (c *Consumer) claimAndProcessPending(ctx context.Context) {
	for _, stream := range c.streams {
		pending, err := c.client.XPendingExt(ctx, &redis.XPendingExtArgs{
			Stream: stream,
			Group:  c.group,
			Start:  "-",
			End:    "+",
			Count:  100,
		}).Result()
		if err != nil {
			if err != redis.Nil {
				c.log.WithError(err).WithField("stream", stream).Error("error getting pending messages")
			}
			continue
		}

		for _, p := range pending {
			if p.Idle < c.pendingIdleTime {
				continue
			}

			if int(p.RetryCount) >= c.maxRetries {
				c.log.WithFields(map[string]any{
					"stream":  stream,
					"id":      p.ID,
					"retries": p.RetryCount,
				}).Warn("message exceeded max retries, moving to DLQ")

				if err := c.moveToDeadLetterQueue(ctx, stream, p.ID); err != nil {
					c.log.WithError(err).WithField("id", p.ID).Error("error moving message to DLQ")
				}
				c.client.XAck(ctx, stream, c.group, p.ID)
				continue
			}

			claimed, err := c.client.XClaim(ctx, &redis.XClaimArgs{
				Stream:   stream,
				Group:    c.group,
				Consumer: c.consumer,
				MinIdle:  c.pendingIdleTime,
				Messages: []string{p.ID},
			}).Result()
			if err != nil {
				c.log.WithError(err).WithField("id", p.ID).Error("error claiming message")
				continue
			}

			for _, msg := range claimed {
				if err := c.processMessage(ctx, stream, msg); err != nil {
					c.log.WithError(err).WithFields(map[string]any{
						"stream": stream,
						"id":     msg.ID,
					}).Error("error reprocessing pending message")
					continue
				}
				if err := c.client.XAck(ctx, stream, c.group, msg.ID).Err(); err != nil {
					c.log.WithError(err).WithField("id", msg.ID).Error("error acknowledging reprocessed message")
				}
			}
		}
	}
}

// createConsumerGroup creates a consumer group if it doesn't exist.
func (c *Consumer) createConsumerGroup(ctx context.Context, stream string) {
	err := c.client.XGroupCreateMkStream(ctx, stream, c.group, "0").Err()
	if err != nil && err.Error() != "BUSYGROUP Consumer Group name already exists" {
		c.log.WithError(err).WithField("stream", stream).Warn("error creating consumer group")
	}
}

// readMessages reads messages from all streams using XREADGROUP.
func (c *Consumer) readMessages(ctx context.Context) ([]redis.XStream, error) {
	if len(c.streams) == 0 {
		return nil, nil
	}

	args := make([]string, len(c.streams)*2)
	for i, stream := range c.streams {
		args[i] = stream
		args[len(c.streams)+i] = ">"
	}

	return c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.group,
		Consumer: c.consumer,
		Streams:  args,
		Count:    int64(c.batchSize),
		Block:    c.blockTime,
	}).Result()
}

// processMessage processes a single message.
func (c *Consumer) processMessage(ctx context.Context, stream string, msg redis.XMessage) error {
	data, ok := msg.Values["data"]
	if !ok {
		return fmt.Errorf("invalid message format: missing data field")
	}

	dataStr, ok := data.(string)
	if !ok {
		return fmt.Errorf("invalid message format: data is not a string")
	}

	return c.handler.Handle(ctx, stream, []byte(dataStr))
}

// moveToDeadLetterQueue moves a failed message to dlq:{stream}.
func (c *Consumer) moveToDeadLetterQueue(ctx context.Context, stream string, msgID string) error {
	messages, err := c.client.XRange(ctx, stream, msgID, msgID).Result()
	if err != nil {
		return fmt.Errorf("failed to read message for DLQ: %w", err)
	}
	if len(messages) == 0 {
		return fmt.Errorf("message %s not found in stream %s", msgID, stream)
	}

	msg := messages[0]
	dlqData := map[string]interface{}{
		"original_stream": stream,
		"original_id":     msgID,
		"failed_at":       time.Now().UTC().Format(time.RFC3339),
		"consumer":        c.consumer,
		"group":           c.group,
	}
	for k, v := range msg.Values {
		dlqData["original_"+k] = v
	}

	_, err = c.client.XAdd(ctx, &redis.XAddArgs{
		Stream: "dlq:" + stream,
		Values: dlqData,
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to add message to DLQ: %w", err)
	}
	return nil
}
