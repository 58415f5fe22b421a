package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Akashdb5/champa-cognitive-ai-inbox/core/domain"
)

const extractTasksSystem = `You are an expert at identifying actionable tasks in messages.
Extract any tasks, action items, or to-dos mentioned in the message.
For each task, provide:
1. A clear description of the task
2. The type (task, deadline, or meeting)

If there are no tasks, respond with "NO_TASKS".
Format each task as: TYPE: description`

// ExtractTasks pulls actionable work items out of the message
func (r *Runner) ExtractTasks(ctx context.Context, in MessageInput) ([]domain.Task, error) {
	user := in.header(in.Content) + "\n\nExtract all actionable tasks from this message:"

	result, err := r.llm.CompleteWithSystem(ctx, extractTasksSystem, user)
	if err != nil {
		return nil, err
	}
	return parseTasks(result), nil
}

// parseTasks reads "TYPE: description" lines. The NO_TASKS sentinel and
// any line that does not match the grammar yield no task.
func parseTasks(raw string) []domain.Task {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || strings.Contains(trimmed, "NO_TASKS") {
		return nil
	}

	var tasks []domain.Task
	for _, line := range strings.Split(trimmed, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}
		category, ok := domain.ParseTaskCategory(parts[0])
		if !ok {
			continue
		}
		description := strings.TrimSpace(parts[1])
		if description == "" {
			continue
		}
		tasks = append(tasks, domain.Task{Category: category, Description: description})
	}
	return tasks
}

const detectDeadlinesSystem = `You are an expert at identifying deadlines and time-sensitive information.
Extract any deadlines, due dates, or time-sensitive items mentioned in the message.
For each deadline, provide:
1. A description of what is due
2. The deadline date/time if mentioned

If there are no deadlines, respond with "NO_DEADLINES".
Format each deadline as: DEADLINE: description | DATE: date_if_mentioned`

// DetectDeadlines pulls time commitments out of the message. The
// current date is supplied so relative phrases like "by Friday" can be
// resolved by the model.
func (r *Runner) DetectDeadlines(ctx context.Context, in MessageInput) ([]domain.Deadline, error) {
	user := in.header(in.Content) +
		fmt.Sprintf("\nCurrent date: %s", time.Now().Format("2006-01-02")) +
		"\n\nExtract all deadlines from this message:"

	result, err := r.llm.CompleteWithSystem(ctx, detectDeadlinesSystem, user)
	if err != nil {
		return nil, err
	}
	return parseDeadlines(result), nil
}

// parseDeadlines reads "DEADLINE: description | DATE: date" lines.
// A date of "none" or "not mentioned" counts as no date.
func parseDeadlines(raw string) []domain.Deadline {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || strings.Contains(trimmed, "NO_DEADLINES") {
		return nil
	}

	var deadlines []domain.Deadline
	for _, line := range strings.Split(trimmed, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "DEADLINE:") {
			continue
		}
		body := strings.TrimSpace(strings.TrimPrefix(line, "DEADLINE:"))

		description := body
		date := ""
		if idx := strings.Index(body, "|"); idx >= 0 {
			description = strings.TrimSpace(body[:idx])
			tail := strings.TrimSpace(body[idx+1:])
			if strings.HasPrefix(tail, "DATE:") {
				date = strings.TrimSpace(strings.TrimPrefix(tail, "DATE:"))
			}
		}
		switch strings.ToLower(date) {
		case "none", "not mentioned":
			date = ""
		}
		if description == "" {
			continue
		}
		deadlines = append(deadlines, domain.Deadline{Description: description, Date: date})
	}
	return deadlines
}
