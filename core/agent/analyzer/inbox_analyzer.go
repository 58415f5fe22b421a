// Package analyzer orchestrates the per-message analysis tasks.
//
// All six tasks run concurrently against the language model. A failed
// task degrades to a neutral default instead of failing the message;
// only when every task reports the client itself unusable does Analyze
// return ErrPipelineUnavailable so the caller can switch to the
// rule-based fallback.
package analyzer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Akashdb5/champa-cognitive-ai-inbox/core/agent/llm"
	"github.com/Akashdb5/champa-cognitive-ai-inbox/core/domain"
	"github.com/Akashdb5/champa-cognitive-ai-inbox/core/port/out"
	"github.com/Akashdb5/champa-cognitive-ai-inbox/pkg/logger"
)

// ErrPipelineUnavailable means no analysis task could reach the model
var ErrPipelineUnavailable = errors.New("analysis pipeline unavailable")

// TaskRunner is the set of model-backed analysis tasks
type TaskRunner interface {
	Summarize(ctx context.Context, in llm.MessageInput) (string, error)
	ClassifyIntent(ctx context.Context, in llm.MessageInput) (domain.Intent, error)
	ScorePriority(ctx context.Context, in llm.MessageInput) (float64, error)
	ExtractTasks(ctx context.Context, in llm.MessageInput) ([]domain.Task, error)
	DetectDeadlines(ctx context.Context, in llm.MessageInput) ([]domain.Deadline, error)
	DetectSpam(ctx context.Context, in llm.MessageInput) (*llm.SpamVerdict, error)
}

// Orchestrator fans a message out to all analysis tasks
type Orchestrator struct {
	runner TaskRunner
	log    *logger.Logger
}

func NewOrchestrator(runner TaskRunner) *Orchestrator {
	return &Orchestrator{
		runner: runner,
		log:    logger.Default().WithField("component", "analyzer"),
	}
}

// taskResults collects per-task outcomes; each slot is written by
// exactly one goroutine
type taskResults struct {
	summary   string
	intent    domain.Intent
	priority  float64
	tasks     []domain.Task
	deadlines []domain.Deadline
	spam      *llm.SpamVerdict
	errs      [6]error
}

// Analyze runs every analysis task concurrently and merges the
// outcomes. Individual failures are logged and replaced with defaults.
func (o *Orchestrator) Analyze(ctx context.Context, msg *domain.Message) (*domain.Analysis, error) {
	in := llm.InputFromMessage(msg)

	var res taskResults
	var wg sync.WaitGroup
	wg.Add(6)

	go func() {
		defer wg.Done()
		res.summary, res.errs[0] = o.runner.Summarize(ctx, in)
	}()
	go func() {
		defer wg.Done()
		res.intent, res.errs[1] = o.runner.ClassifyIntent(ctx, in)
	}()
	go func() {
		defer wg.Done()
		res.priority, res.errs[2] = o.runner.ScorePriority(ctx, in)
	}()
	go func() {
		defer wg.Done()
		res.tasks, res.errs[3] = o.runner.ExtractTasks(ctx, in)
	}()
	go func() {
		defer wg.Done()
		res.deadlines, res.errs[4] = o.runner.DetectDeadlines(ctx, in)
	}()
	go func() {
		defer wg.Done()
		res.spam, res.errs[5] = o.runner.DetectSpam(ctx, in)
	}()

	wg.Wait()

	unavailable := 0
	for i, err := range res.errs {
		if err == nil {
			continue
		}
		if errors.Is(err, out.ErrLLMUnavailable) {
			unavailable++
		}
		o.log.WithError(err).WithField("message_id", msg.ID).Warn("analysis task %d failed", i)
	}
	if unavailable == len(res.errs) {
		return nil, ErrPipelineUnavailable
	}

	return o.merge(&res, msg), nil
}

// merge substitutes neutral defaults for failed tasks
func (o *Orchestrator) merge(res *taskResults, msg *domain.Message) *domain.Analysis {
	analysis := &domain.Analysis{
		MessageID:  msg.ID,
		Source:     domain.SourceModel,
		AnalyzedAt: time.Now().UTC(),
	}

	if res.errs[0] != nil {
		analysis.Summary = "Error generating summary"
	} else {
		analysis.Summary = res.summary
	}

	if res.errs[1] != nil {
		analysis.Intent = domain.IntentOther
	} else {
		analysis.Intent = res.intent
	}

	if res.errs[2] != nil {
		analysis.PriorityScore = 0.5
	} else {
		analysis.PriorityScore = domain.Clamp01(res.priority)
	}

	if res.errs[3] == nil {
		analysis.Tasks = res.tasks
	}
	if res.errs[4] == nil {
		analysis.Deadlines = res.deadlines
	}

	if res.errs[5] != nil || res.spam == nil {
		analysis.IsSpam = false
		analysis.SpamScore = 0.0
		analysis.SpamType = domain.SpamTypeNone
	} else {
		analysis.IsSpam = res.spam.IsSpam
		analysis.SpamScore = domain.Clamp01(res.spam.Score)
		analysis.SpamType = res.spam.Type
		analysis.UnsubscribeLink = res.spam.UnsubscribeLink
	}

	return analysis
}
