// Package worker consumes background jobs from Redis Streams and runs
// them through the core services.
package worker

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/Akashdb5/champa-cognitive-ai-inbox/core/port/out"
	"github.com/Akashdb5/champa-cognitive-ai-inbox/core/service/ai"
	"github.com/Akashdb5/champa-cognitive-ai-inbox/pkg/logger"
)

// AnalyzeHandler runs message analysis jobs.
type AnalyzeHandler struct {
	ai  *ai.Service
	log *logger.Logger
}

func NewAnalyzeHandler(aiService *ai.Service) *AnalyzeHandler {
	return &AnalyzeHandler{
		ai:  aiService,
		log: logger.Default().WithField("component", "analyze_handler"),
	}
}

// Handle decodes an analysis job and runs it. Errors are returned so
// the consumer leaves the message pending for a retry.
func (h *AnalyzeHandler) Handle(ctx context.Context, stream string, data []byte) error {
	var job out.AnalyzeJob
	if err := json.Unmarshal(data, &job); err != nil {
		return fmt.Errorf("decode analyze job: %w", err)
	}

	log := h.log.WithFields(map[string]any{
		"stream":     stream,
		"message_id": job.MessageID.String(),
		"reanalyze":  job.Reanalyze,
	})

	var err error
	if job.Reanalyze {
		_, err = h.ai.ReanalyzeMessage(ctx, job.MessageID, job.UserID)
	} else {
		_, err = h.ai.AnalyzeMessageByID(ctx, job.MessageID, job.UserID)
	}
	if err != nil {
		log.WithError(err).Error("analysis job failed")
		return err
	}

	log.Info("analysis job completed")
	return nil
}
