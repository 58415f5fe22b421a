package llm

import (
	"context"
	"strconv"
	"strings"

	"github.com/Akashdb5/champa-cognitive-ai-inbox/core/domain"
)

const classifyIntentSystem = `You are an expert at classifying message intent.
Classify the message into one of these categories:
- request: Asking for something or requesting action
- information: Sharing information or updates
- question: Asking a question
- meeting: Meeting invitation or scheduling
- notification: System notification or alert
- social: Social/casual communication
- other: Doesn't fit other categories

Respond with only the category name.`

// ClassifyIntent classifies the purpose of a message. Out-of-vocabulary
// model output collapses to IntentOther.
func (r *Runner) ClassifyIntent(ctx context.Context, in MessageInput) (domain.Intent, error) {
	user := in.header(in.Content) + "\n\nWhat is the intent of this message?"

	result, err := r.llm.CompleteWithSystem(ctx, classifyIntentSystem, user)
	if err != nil {
		return "", err
	}
	return domain.ParseIntent(result), nil
}

const scorePrioritySystem = `You are an expert at assessing message priority.
Analyze the message and assign a priority score from 0.0 to 1.0 where:
- 0.0-0.3: Low priority (informational, social, can wait)
- 0.4-0.6: Medium priority (needs attention soon)
- 0.7-1.0: High priority (urgent, time-sensitive, important)

Consider factors like:
- Urgency and time sensitivity
- Sender importance
- Presence of deadlines or action items
- Keywords indicating urgency (urgent, ASAP, deadline, etc.)

Respond with only a number between 0.0 and 1.0.`

// ScorePriority assigns a priority score in [0.0, 1.0]. Non-numeric
// model output yields the neutral 0.5; out-of-range values clamp.
func (r *Runner) ScorePriority(ctx context.Context, in MessageInput) (float64, error) {
	user := in.header(in.Content) + "\n\nWhat is the priority score for this message?"

	result, err := r.llm.CompleteWithSystem(ctx, scorePrioritySystem, user)
	if err != nil {
		return 0, err
	}
	return parsePriorityScore(result), nil
}

func parsePriorityScore(raw string) float64 {
	score, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0.5
	}
	return domain.Clamp01(score)
}
