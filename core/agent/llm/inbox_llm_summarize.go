package llm

import (
	"context"
	"strings"
)

const summarizeSystem = `You are an expert at summarizing messages concisely.
Your task is to create a brief, clear summary of the message that captures the key points.
Keep the summary to 1-2 sentences maximum.`

// Summarize produces a one to two sentence summary of the message
func (r *Runner) Summarize(ctx context.Context, in MessageInput) (string, error) {
	user := in.header(in.Content) + "\n\nGenerate a concise summary of this message:"

	result, err := r.llm.CompleteWithSystem(ctx, summarizeSystem, user)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(result), nil
}
