package llm

import (
	"context"
	"strings"

	"github.com/Akashdb5/champa-cognitive-ai-inbox/core/domain"
)

// replyContentLimit caps content sent for suggestion generation
const replyContentLimit = 1500

const suggestRepliesSystem = `You are an expert at generating professional, contextual reply suggestions.

Analyze the message and generate 3 appropriate reply options that are:
- Professional and courteous
- Contextually relevant to the message content
- Varied in tone (acknowledgment, detailed response, brief response)
- Appropriate for the platform and sender relationship

Consider:
- The sender's tone and formality level
- Whether this requires immediate action or is informational
- The platform context (email vs chat vs calendar)
- Professional vs personal relationship indicators

Output format (exactly 3 lines):
REPLY_1: [TYPE] First reply suggestion
REPLY_2: [TYPE] Second reply suggestion
REPLY_3: [TYPE] Third reply suggestion

Types: acknowledgment, thanks, question, detailed, brief, defer, meeting, action

Examples:
REPLY_1: [acknowledgment] Thank you for the update. I'll review this and get back to you.
REPLY_2: [question] Thanks for sharing this. Could you clarify the timeline for implementation?
REPLY_3: [brief] Got it, thanks!`

// SuggestReplies generates up to three short reply options for a
// message. When the model output parses to nothing, a generic trio is
// returned at low confidence so the caller always has options.
func (r *Runner) SuggestReplies(ctx context.Context, in MessageInput) ([]domain.ReplySuggestion, error) {
	user := in.header(truncate(in.Content, replyContentLimit))

	result, err := r.llm.CompleteWithSystem(ctx, suggestRepliesSystem, user)
	if err != nil {
		return nil, err
	}
	return parseReplySuggestions(result), nil
}

// parseReplySuggestions reads "REPLY_N: [TYPE] text" lines. Confidence
// is a heuristic: short acknowledgments score high, very short replies
// score lower, everything else sits in between.
func parseReplySuggestions(raw string) []domain.ReplySuggestion {
	var suggestions []domain.ReplySuggestion

	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "REPLY_") {
			continue
		}
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}
		text := strings.TrimSpace(parts[1])

		replyType := "general"
		if strings.HasPrefix(text, "[") {
			if end := strings.Index(text, "]"); end > 0 {
				replyType = strings.ToLower(text[1:end])
				text = strings.TrimSpace(text[end+1:])
			}
		}
		if text == "" {
			continue
		}

		confidence := 0.8
		switch {
		case replyType == "acknowledgment" || replyType == "thanks":
			confidence = 0.9
		case len(text) < 20:
			confidence = 0.7
		}

		suggestions = append(suggestions, domain.ReplySuggestion{
			Text:       text,
			Type:       replyType,
			Confidence: confidence,
		})
	}

	if len(suggestions) == 0 {
		suggestions = []domain.ReplySuggestion{
			{Text: "Thank you for your message.", Type: "acknowledgment", Confidence: 0.6},
			{Text: "I'll get back to you soon.", Type: "defer", Confidence: 0.6},
			{Text: "Thanks for reaching out!", Type: "thanks", Confidence: 0.6},
		}
	}
	if len(suggestions) > 3 {
		suggestions = suggestions[:3]
	}
	return suggestions
}
