package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Intent is the classified purpose of a message
type Intent string

const (
	IntentRequest      Intent = "request"
	IntentInformation  Intent = "information"
	IntentQuestion     Intent = "question"
	IntentMeeting      Intent = "meeting"
	IntentNotification Intent = "notification"
	IntentSocial       Intent = "social"
	IntentOther        Intent = "other"

	// Produced only by the rule-based fallback path
	IntentTaskRequest Intent = "task_request"
	IntentGeneral     Intent = "general"
)

// ParseIntent normalizes a model-produced intent label. Anything outside
// the classifier vocabulary collapses to IntentOther.
func ParseIntent(s string) Intent {
	switch Intent(strings.ToLower(strings.TrimSpace(s))) {
	case IntentRequest:
		return IntentRequest
	case IntentInformation:
		return IntentInformation
	case IntentQuestion:
		return IntentQuestion
	case IntentMeeting:
		return IntentMeeting
	case IntentNotification:
		return IntentNotification
	case IntentSocial:
		return IntentSocial
	}
	return IntentOther
}

// SpamType categorizes detected spam
type SpamType string

const (
	SpamTypeNone        SpamType = "none"
	SpamTypePromotional SpamType = "promotional"
	SpamTypeNewsletter  SpamType = "newsletter"
	SpamTypeMarketing   SpamType = "marketing"
	SpamTypePhishing    SpamType = "phishing"
)

// ParseSpamType normalizes a model-produced spam category
func ParseSpamType(s string) SpamType {
	switch SpamType(strings.ToLower(strings.TrimSpace(s))) {
	case SpamTypePromotional:
		return SpamTypePromotional
	case SpamTypeNewsletter:
		return SpamTypeNewsletter
	case SpamTypeMarketing:
		return SpamTypeMarketing
	case SpamTypePhishing:
		return SpamTypePhishing
	}
	return SpamTypeNone
}

// Unsubscribable reports whether the category is bulk mail that
// typically carries an unsubscribe mechanism
func (t SpamType) Unsubscribable() bool {
	return t == SpamTypePromotional || t == SpamTypeNewsletter || t == SpamTypeMarketing
}

// TaskCategory labels an extracted work item
type TaskCategory string

const (
	TaskCategoryTask     TaskCategory = "task"
	TaskCategoryDeadline TaskCategory = "deadline"
	TaskCategoryMeeting  TaskCategory = "meeting"
)

// ParseTaskCategory validates a model-produced task category; ok is
// false for anything outside the vocabulary.
func ParseTaskCategory(s string) (TaskCategory, bool) {
	switch TaskCategory(strings.ToLower(strings.TrimSpace(s))) {
	case TaskCategoryTask:
		return TaskCategoryTask, true
	case TaskCategoryDeadline:
		return TaskCategoryDeadline, true
	case TaskCategoryMeeting:
		return TaskCategoryMeeting, true
	}
	return "", false
}

// Task is a work item extracted from message content
type Task struct {
	Category    TaskCategory `json:"category"`
	Description string       `json:"description"`
}

// Deadline is a time commitment extracted from message content.
// Date is free text as the sender wrote it; empty means no usable date.
type Deadline struct {
	Description string `json:"description"`
	Date        string `json:"date,omitempty"`
}

// AnalysisSource distinguishes full model analysis from rule-based fallback
type AnalysisSource string

const (
	SourceModel    AnalysisSource = "model"
	SourceFallback AnalysisSource = "fallback"
)

// Analysis is the consolidated result of analyzing one message
type Analysis struct {
	MessageID       uuid.UUID      `json:"message_id"`
	Summary         string         `json:"summary"`
	Intent          Intent         `json:"intent"`
	PriorityScore   float64        `json:"priority_score"`
	Tasks           []Task         `json:"tasks,omitempty"`
	Deadlines       []Deadline     `json:"deadlines,omitempty"`
	IsSpam          bool           `json:"is_spam"`
	SpamScore       float64        `json:"spam_score"`
	SpamType        SpamType       `json:"spam_type"`
	UnsubscribeLink string         `json:"unsubscribe_link,omitempty"`
	Source          AnalysisSource `json:"source"`
	AnalyzedAt      time.Time      `json:"analyzed_at"`
}

// Clamp01 bounds a score to [0.0, 1.0]
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
