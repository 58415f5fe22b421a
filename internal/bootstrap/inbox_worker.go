package bootstrap

import (
	"context"
	"time"

	"github.com/Akashdb5/champa-cognitive-ai-inbox/adapter/in/worker"
	"github.com/Akashdb5/champa-cognitive-ai-inbox/adapter/out/messaging"
	"github.com/Akashdb5/champa-cognitive-ai-inbox/config"
	"github.com/Akashdb5/champa-cognitive-ai-inbox/pkg/logger"
)

// Worker runs the analysis consumer against the Redis stream.
type Worker struct {
	consumer *messaging.Consumer
	cleanup  func()
	log      *logger.Logger
}

// NewWorker builds the stream consumer and its dependency graph.
func NewWorker(cfg *config.Config) (*Worker, error) {
	initLogger(cfg)

	deps, cleanup, err := NewDependencies(cfg)
	if err != nil {
		logger.Default().WithError(err).Error("Failed to initialize dependencies")
		return nil, err
	}

	handler := worker.NewAnalyzeHandler(deps.AIService)

	consumer := messaging.NewConsumer(deps.Redis, &messaging.ConsumerConfig{
		Group:      cfg.ConsumerGroup,
		Consumer:   cfg.ConsumerID,
		Streams:    []string{cfg.AnalyzeStream},
		Handler:    handler,
		BatchSize:  cfg.ConsumerBatchSize,
		BlockTime:  time.Duration(cfg.ConsumerBlockMS) * time.Millisecond,
		MaxRetries: cfg.ConsumerMaxRetries,
	})

	return &Worker{
		consumer: consumer,
		cleanup:  cleanup,
		log:      logger.Default().WithField("component", "worker"),
	}, nil
}

// Run consumes until the context is canceled.
func (w *Worker) Run(ctx context.Context) error {
	w.log.Info("Starting analysis worker")
	return w.consumer.Run(ctx)
}

// Close releases worker resources.
func (w *Worker) Close() {
	w.cleanup()
}
