package llm

import (
	"github.com/Akashdb5/champa-cognitive-ai-inbox/core/port/out"
)

// Runner executes the individual analysis tasks against a completion
// client. Each task owns its prompt and its output grammar; parsing is
// lenient and skips malformed lines rather than failing the task.
type Runner struct {
	llm out.CompletionClient
}

func NewRunner(client out.CompletionClient) *Runner {
	return &Runner{llm: client}
}
