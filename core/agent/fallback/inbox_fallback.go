// Package fallback is the rule-based analysis path used when the
// language model pipeline is unavailable. It never fails: every
// message gets a usable, if shallow, analysis.
package fallback

import (
	"regexp"
	"strings"
	"time"

	"github.com/Akashdb5/champa-cognitive-ai-inbox/core/domain"
)

var (
	taskKeywords = []string{
		"todo", "task", "action item", "need to", "should", "must",
		"please", "can you", "could you", "would you",
	}

	deadlineKeywords = []string{
		"deadline", "due", "by", "before", "until", "eod", "eow",
		"today", "tomorrow", "next week", "this week",
	}

	highPriorityKeywords = []string{
		"urgent", "asap", "critical", "important", "emergency",
		"immediately", "high priority",
	}

	mediumPriorityKeywords = []string{
		"soon", "when possible", "at your convenience",
	}

	infoKeywords = []string{"fyi", "info", "update", "announcement"}
)

var sentenceSplitRe = regexp.MustCompile(`[.!?\n]`)

// Processor is the keyword-driven analysis engine
type Processor struct{}

func NewProcessor() *Processor {
	return &Processor{}
}

// Analyze produces a rule-based analysis. Spam detection has no rule
// equivalent, so fallback results always carry a ham verdict.
func (p *Processor) Analyze(msg *domain.Message) *domain.Analysis {
	return &domain.Analysis{
		MessageID:     msg.ID,
		Summary:       p.summarize(msg),
		Intent:        p.classifyIntent(msg),
		PriorityScore: p.scorePriority(msg),
		Tasks:         p.extractTasks(msg),
		Deadlines:     p.detectDeadlines(msg),
		IsSpam:        false,
		SpamScore:     0.0,
		SpamType:      domain.SpamTypeNone,
		Source:        domain.SourceFallback,
		AnalyzedAt:    time.Now().UTC(),
	}
}

// summarize uses the subject when present, otherwise truncates content
func (p *Processor) summarize(msg *domain.Message) string {
	if msg.Subject != "" {
		if len(msg.Subject) > 150 {
			return msg.Subject[:150]
		}
		return msg.Subject
	}

	content := strings.TrimSpace(msg.Content)
	if len(content) <= 150 {
		return content
	}
	return content[:147] + "..."
}

// classifyIntent applies rules in fixed precedence: question mark,
// task keywords, calendar platform, information keywords, general
func (p *Processor) classifyIntent(msg *domain.Message) domain.Intent {
	contentLower := strings.ToLower(msg.Content)

	if strings.Contains(msg.Content, "?") {
		return domain.IntentQuestion
	}
	if containsAny(contentLower, taskKeywords) {
		return domain.IntentTaskRequest
	}
	if msg.Platform == domain.PlatformCalendar {
		return domain.IntentMeeting
	}
	if containsAny(contentLower, infoKeywords) {
		return domain.IntentInformation
	}
	return domain.IntentGeneral
}

func (p *Processor) scorePriority(msg *domain.Message) float64 {
	contentLower := strings.ToLower(msg.Content)

	switch {
	case containsAny(contentLower, highPriorityKeywords):
		return 0.9
	case containsAny(contentLower, mediumPriorityKeywords):
		return 0.6
	case strings.Contains(msg.Content, "?"):
		return 0.5
	case containsAny(contentLower, taskKeywords):
		return 0.5
	}
	return 0.3
}

// extractTasks pulls at most one sentence per matched keyword, capped
// at three tasks
func (p *Processor) extractTasks(msg *domain.Message) []domain.Task {
	var tasks []domain.Task

	contentLower := strings.ToLower(msg.Content)
	for _, keyword := range taskKeywords {
		if !strings.Contains(contentLower, keyword) {
			continue
		}
		if sentence := firstSentenceWith(msg.Content, keyword); sentence != "" {
			tasks = append(tasks, domain.Task{
				Category:    domain.TaskCategoryTask,
				Description: clip(sentence, 200),
			})
		}
		if len(tasks) == 3 {
			break
		}
	}
	return tasks
}

// detectDeadlines works like extractTasks, capped at two. Dates are
// left empty: rules cannot resolve phrases like "by Friday".
func (p *Processor) detectDeadlines(msg *domain.Message) []domain.Deadline {
	var deadlines []domain.Deadline

	contentLower := strings.ToLower(msg.Content)
	for _, keyword := range deadlineKeywords {
		if !strings.Contains(contentLower, keyword) {
			continue
		}
		if sentence := firstSentenceWith(msg.Content, keyword); sentence != "" {
			deadlines = append(deadlines, domain.Deadline{
				Description: clip(sentence, 200),
			})
		}
		if len(deadlines) == 2 {
			break
		}
	}
	return deadlines
}

func containsAny(haystack string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(haystack, k) {
			return true
		}
	}
	return false
}

// firstSentenceWith returns the first sentence longer than 10 chars
// that mentions the keyword
func firstSentenceWith(content, keyword string) string {
	for _, sentence := range sentenceSplitRe.Split(content, -1) {
		trimmed := strings.TrimSpace(sentence)
		if len(trimmed) > 10 && strings.Contains(strings.ToLower(trimmed), keyword) {
			return trimmed
		}
	}
	return ""
}

func clip(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
