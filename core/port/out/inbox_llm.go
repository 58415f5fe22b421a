package out

import (
	"context"
	"errors"
)

// ErrLLMUnavailable marks failures where the language model client
// cannot serve requests at all (missing credentials, open circuit),
// as opposed to a single request failing. Callers use errors.Is.
var ErrLLMUnavailable = errors.New("llm client unavailable")

// CompletionClient is the low-level language model interface
type CompletionClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
	CompleteWithSystem(ctx context.Context, system, user string) (string, error)
	Embedding(ctx context.Context, text string) ([]float32, error)
}
