package fallback

import (
	"strings"
	"testing"

	"github.com/Akashdb5/champa-cognitive-ai-inbox/core/domain"

	"github.com/google/uuid"
)

func msg(platform domain.Platform, subject, content string) *domain.Message {
	return &domain.Message{
		ID:       uuid.New(),
		UserID:   uuid.New(),
		Platform: platform,
		Sender:   "someone@example.com",
		Subject:  subject,
		Content:  content,
	}
}

func TestAnalyzeAlwaysProducesResult(t *testing.T) {
	p := NewProcessor()

	a := p.Analyze(msg(domain.PlatformMail, "", ""))
	if a == nil {
		t.Fatal("fallback must always return an analysis")
	}
	if a.Source != domain.SourceFallback {
		t.Errorf("expected fallback source, got %q", a.Source)
	}
	if a.IsSpam || a.SpamScore != 0 || a.SpamType != domain.SpamTypeNone {
		t.Errorf("fallback must report ham, got %+v", a)
	}
}

func TestSummarize(t *testing.T) {
	p := NewProcessor()

	t.Run("subject preferred", func(t *testing.T) {
		a := p.Analyze(msg(domain.PlatformMail, "Quarterly planning", "Lots of content here."))
		if a.Summary != "Quarterly planning" {
			t.Errorf("expected subject summary, got %q", a.Summary)
		}
	})

	t.Run("long content truncated with ellipsis", func(t *testing.T) {
		content := strings.Repeat("a", 200)
		a := p.Analyze(msg(domain.PlatformChat, "", content))
		if len(a.Summary) != 150 || !strings.HasSuffix(a.Summary, "...") {
			t.Errorf("expected 147 chars + ellipsis, got %d chars", len(a.Summary))
		}
	})

	t.Run("short content kept", func(t *testing.T) {
		a := p.Analyze(msg(domain.PlatformChat, "", "quick note"))
		if a.Summary != "quick note" {
			t.Errorf("expected content as summary, got %q", a.Summary)
		}
	})
}

func TestClassifyIntentPrecedence(t *testing.T) {
	p := NewProcessor()

	tests := []struct {
		name     string
		platform domain.Platform
		content  string
		expected domain.Intent
	}{
		{
			name:     "question mark wins",
			platform: domain.PlatformMail,
			content:  "Could you confirm the numbers?",
			expected: domain.IntentQuestion,
		},
		{
			name:     "task keywords",
			platform: domain.PlatformMail,
			content:  "Please send the contract today.",
			expected: domain.IntentTaskRequest,
		},
		{
			name:     "calendar platform means meeting",
			platform: domain.PlatformCalendar,
			content:  "Weekly standup at 10am.",
			expected: domain.IntentMeeting,
		},
		{
			name:     "information keywords",
			platform: domain.PlatformMail,
			content:  "FYI the deploy finished.",
			expected: domain.IntentInformation,
		},
		{
			name:     "nothing matches",
			platform: domain.PlatformChat,
			content:  "lol that was great",
			expected: domain.IntentGeneral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := p.Analyze(msg(tt.platform, "", tt.content))
			if a.Intent != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, a.Intent)
			}
		})
	}
}

func TestScorePriority(t *testing.T) {
	p := NewProcessor()

	tests := []struct {
		name     string
		content  string
		expected float64
	}{
		{name: "urgent keyword", content: "This is URGENT, server is down", expected: 0.9},
		{name: "medium keyword", content: "Take a look when possible", expected: 0.6},
		{name: "question", content: "What time works for everyone?", expected: 0.5},
		{name: "task keyword", content: "Please file the report", expected: 0.5},
		{name: "plain message", content: "Nice weather lately", expected: 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := p.Analyze(msg(domain.PlatformMail, "", tt.content))
			if a.PriorityScore != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, a.PriorityScore)
			}
		})
	}
}

func TestExtractTasksCapped(t *testing.T) {
	p := NewProcessor()

	content := "You need to review the doc. You should also ping ops. " +
		"Please update the ticket. Can you also check staging? Would you mind deploying after?"

	a := p.Analyze(msg(domain.PlatformMail, "", content))
	if len(a.Tasks) != 3 {
		t.Fatalf("expected 3 tasks max, got %d", len(a.Tasks))
	}
	for _, task := range a.Tasks {
		if task.Category != domain.TaskCategoryTask {
			t.Errorf("fallback tasks are always type task, got %q", task.Category)
		}
		if len(task.Description) > 200 {
			t.Errorf("description exceeds cap: %d", len(task.Description))
		}
	}
}

func TestDetectDeadlinesCapped(t *testing.T) {
	p := NewProcessor()

	content := "The report is due on Friday. The deadline for review is next sprint. " +
		"Everything must land before the release. Remember EOD submissions too."

	a := p.Analyze(msg(domain.PlatformMail, "", content))
	if len(a.Deadlines) != 2 {
		t.Fatalf("expected 2 deadlines max, got %d", len(a.Deadlines))
	}
	for _, d := range a.Deadlines {
		if d.Date != "" {
			t.Errorf("fallback cannot resolve dates, got %q", d.Date)
		}
	}
}

func TestShortSentencesIgnored(t *testing.T) {
	p := NewProcessor()

	// sentence containing the keyword is under the 10 char minimum
	a := p.Analyze(msg(domain.PlatformMail, "", "todo. x"))
	if len(a.Tasks) != 0 {
		t.Errorf("expected no tasks from short sentences, got %v", a.Tasks)
	}
}
