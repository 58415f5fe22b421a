package llm

import (
	"context"
	"testing"

	"github.com/Akashdb5/champa-cognitive-ai-inbox/core/domain"

	openai "github.com/sashabaranov/go-openai"
)

type stubClient struct {
	response string
	err      error
}

func (s *stubClient) Complete(ctx context.Context, prompt string) (string, error) {
	return s.response, s.err
}

func (s *stubClient) CompleteWithSystem(ctx context.Context, system, user string) (string, error) {
	return s.response, s.err
}

func (s *stubClient) Embedding(ctx context.Context, text string) ([]float32, error) {
	return nil, s.err
}

func TestParsePriorityScore(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected float64
	}{
		{name: "plain score", raw: "0.7", expected: 0.7},
		{name: "whitespace", raw: "  0.45\n", expected: 0.45},
		{name: "above range clamps", raw: "1.8", expected: 1.0},
		{name: "below range clamps", raw: "-0.2", expected: 0.0},
		{name: "non-numeric defaults", raw: "high priority", expected: 0.5},
		{name: "empty defaults", raw: "", expected: 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parsePriorityScore(tt.raw); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestClassifyIntentNormalizes(t *testing.T) {
	tests := []struct {
		name     string
		response string
		expected domain.Intent
	}{
		{name: "known intent", response: "meeting", expected: domain.IntentMeeting},
		{name: "uppercase", response: "QUESTION", expected: domain.IntentQuestion},
		{name: "padded", response: "  request \n", expected: domain.IntentRequest},
		{name: "out of vocabulary", response: "urgent-business", expected: domain.IntentOther},
		{name: "empty", response: "", expected: domain.IntentOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRunner(&stubClient{response: tt.response})
			intent, err := r.ClassifyIntent(context.Background(), MessageInput{Platform: domain.PlatformMail})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if intent != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, intent)
			}
		})
	}
}

func TestParseTasks(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected []domain.Task
	}{
		{
			name:     "no tasks sentinel",
			raw:      "NO_TASKS",
			expected: nil,
		},
		{
			name: "multiple tasks",
			raw:  "task: Review the proposal\nmeeting: Sync with design team",
			expected: []domain.Task{
				{Category: domain.TaskCategoryTask, Description: "Review the proposal"},
				{Category: domain.TaskCategoryMeeting, Description: "Sync with design team"},
			},
		},
		{
			name: "malformed lines skipped",
			raw:  "task: Ship the release\nsomething without separator\nchore: unknown type\ndeadline: File taxes",
			expected: []domain.Task{
				{Category: domain.TaskCategoryTask, Description: "Ship the release"},
				{Category: domain.TaskCategoryDeadline, Description: "File taxes"},
			},
		},
		{
			name:     "uppercase type",
			raw:      "TASK: Send the invoice",
			expected: []domain.Task{{Category: domain.TaskCategoryTask, Description: "Send the invoice"}},
		},
		{
			name:     "empty description skipped",
			raw:      "task:   ",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseTasks(tt.raw)
			if len(got) != len(tt.expected) {
				t.Fatalf("expected %d tasks, got %d (%v)", len(tt.expected), len(got), got)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("task %d: expected %+v, got %+v", i, tt.expected[i], got[i])
				}
			}
		})
	}
}

func TestParseDeadlines(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected []domain.Deadline
	}{
		{
			name:     "no deadlines sentinel",
			raw:      "NO_DEADLINES",
			expected: nil,
		},
		{
			name: "with date",
			raw:  "DEADLINE: Submit quarterly report | DATE: 2026-09-15",
			expected: []domain.Deadline{
				{Description: "Submit quarterly report", Date: "2026-09-15"},
			},
		},
		{
			name:     "date none means no date",
			raw:      "DEADLINE: Follow up with vendor | DATE: none",
			expected: []domain.Deadline{{Description: "Follow up with vendor"}},
		},
		{
			name:     "date not mentioned means no date",
			raw:      "DEADLINE: Reply to legal | DATE: Not mentioned",
			expected: []domain.Deadline{{Description: "Reply to legal"}},
		},
		{
			name:     "missing date segment",
			raw:      "DEADLINE: Renew the certificate",
			expected: []domain.Deadline{{Description: "Renew the certificate"}},
		},
		{
			name:     "unrelated lines skipped",
			raw:      "Here are the deadlines:\nDEADLINE: Pay invoice | DATE: Friday",
			expected: []domain.Deadline{{Description: "Pay invoice", Date: "Friday"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseDeadlines(tt.raw)
			if len(got) != len(tt.expected) {
				t.Fatalf("expected %d deadlines, got %d (%v)", len(tt.expected), len(got), got)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("deadline %d: expected %+v, got %+v", i, tt.expected[i], got[i])
				}
			}
		})
	}
}

func TestParseSpamVerdict(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected SpamVerdict
	}{
		{
			name: "spam verdict",
			raw:  "IS_SPAM: true\nSPAM_SCORE: 0.9\nSPAM_TYPE: promotional\nREASON: Discount marketing blast",
			expected: SpamVerdict{
				IsSpam: true, Score: 0.9, Type: domain.SpamTypePromotional,
				Reason: "Discount marketing blast",
			},
		},
		{
			name:     "not spam defaults",
			raw:      "IS_SPAM: false\nSPAM_SCORE: 0.1\nSPAM_TYPE: none\nREASON: Direct colleague request",
			expected: SpamVerdict{Score: 0.1, Type: domain.SpamTypeNone, Reason: "Direct colleague request"},
		},
		{
			name:     "non-numeric score when spam",
			raw:      "IS_SPAM: true\nSPAM_SCORE: very high\nSPAM_TYPE: newsletter\nREASON: Weekly digest",
			expected: SpamVerdict{IsSpam: true, Score: 0.5, Type: domain.SpamTypeNewsletter, Reason: "Weekly digest"},
		},
		{
			name:     "non-numeric score when not spam",
			raw:      "IS_SPAM: false\nSPAM_SCORE: low\nSPAM_TYPE: none\nREASON: Personal note",
			expected: SpamVerdict{Score: 0.0, Type: domain.SpamTypeNone, Reason: "Personal note"},
		},
		{
			name:     "score clamps",
			raw:      "IS_SPAM: true\nSPAM_SCORE: 1.7\nSPAM_TYPE: marketing\nREASON: Product push",
			expected: SpamVerdict{IsSpam: true, Score: 1.0, Type: domain.SpamTypeMarketing, Reason: "Product push"},
		},
		{
			name:     "unknown type collapses to none",
			raw:      "IS_SPAM: true\nSPAM_SCORE: 0.8\nSPAM_TYPE: junk\nREASON: Bulk mail",
			expected: SpamVerdict{IsSpam: true, Score: 0.8, Type: domain.SpamTypeNone, Reason: "Bulk mail"},
		},
		{
			name:     "empty output keeps defaults",
			raw:      "",
			expected: SpamVerdict{Type: domain.SpamTypeNone, Reason: "Not spam"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseSpamVerdict(tt.raw)
			if *got != tt.expected {
				t.Errorf("expected %+v, got %+v", tt.expected, *got)
			}
		})
	}
}

func TestExtractUnsubscribeLink(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		metadata map[string]string
		expected string
	}{
		{
			name:     "header wins over body",
			content:  `<a href="https://body.example.com/unsubscribe">unsubscribe</a>`,
			metadata: map[string]string{"list_unsubscribe": "<https://header.example.com/u/123>"},
			expected: "https://header.example.com/u/123",
		},
		{
			name:     "mailto-only header falls through to body",
			content:  `Click https://shop.example.com/unsubscribe?c=42 to stop`,
			metadata: map[string]string{"list_unsubscribe": "<mailto:leave@example.com>"},
			expected: "https://shop.example.com/unsubscribe?c=42",
		},
		{
			name:     "anchor href",
			content:  `<p>Deals!</p><a href="https://x.example.com/opt-out/9">opt out</a>`,
			expected: "https://x.example.com/opt-out/9",
		},
		{
			name:     "bare url",
			content:  "To stop receiving, visit https://news.example.com/unsubscribe/a1b2",
			expected: "https://news.example.com/unsubscribe/a1b2",
		},
		{
			name:     "nothing found",
			content:  "Plain conversation with no links",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractUnsubscribeLink(tt.content, tt.metadata); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestDetectSpamLinkGating(t *testing.T) {
	content := `<a href="https://mail.example.com/unsubscribe/77">unsubscribe</a>`

	t.Run("promotional spam gets link", func(t *testing.T) {
		r := NewRunner(&stubClient{response: "IS_SPAM: true\nSPAM_SCORE: 0.9\nSPAM_TYPE: promotional\nREASON: Sale blast"})
		verdict, err := r.DetectSpam(context.Background(), MessageInput{Content: content})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if verdict.UnsubscribeLink != "https://mail.example.com/unsubscribe/77" {
			t.Errorf("expected unsubscribe link, got %q", verdict.UnsubscribeLink)
		}
	})

	t.Run("phishing gets no link", func(t *testing.T) {
		r := NewRunner(&stubClient{response: "IS_SPAM: true\nSPAM_SCORE: 0.95\nSPAM_TYPE: phishing\nREASON: Credential bait"})
		verdict, err := r.DetectSpam(context.Background(), MessageInput{Content: content})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if verdict.UnsubscribeLink != "" {
			t.Errorf("expected no link for phishing, got %q", verdict.UnsubscribeLink)
		}
	})

	t.Run("not spam gets no link", func(t *testing.T) {
		r := NewRunner(&stubClient{response: "IS_SPAM: false\nSPAM_SCORE: 0.1\nSPAM_TYPE: none\nREASON: Legitimate"})
		verdict, err := r.DetectSpam(context.Background(), MessageInput{Content: content})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if verdict.UnsubscribeLink != "" {
			t.Errorf("expected no link for ham, got %q", verdict.UnsubscribeLink)
		}
	})
}

func TestParseReplySuggestions(t *testing.T) {
	t.Run("three typed replies", func(t *testing.T) {
		raw := "REPLY_1: [acknowledgment] Thank you for the update. I'll review this and get back to you.\n" +
			"REPLY_2: [question] Could you clarify the timeline for implementation?\n" +
			"REPLY_3: [brief] Got it, thanks!"

		got := parseReplySuggestions(raw)
		if len(got) != 3 {
			t.Fatalf("expected 3 suggestions, got %d", len(got))
		}
		if got[0].Type != "acknowledgment" || got[0].Confidence != 0.9 {
			t.Errorf("acknowledgment should score 0.9, got %+v", got[0])
		}
		if got[1].Type != "question" || got[1].Confidence != 0.8 {
			t.Errorf("question should score 0.8, got %+v", got[1])
		}
		if got[2].Type != "brief" || got[2].Confidence != 0.7 {
			t.Errorf("short reply should score 0.7, got %+v", got[2])
		}
	})

	t.Run("untyped reply defaults to general", func(t *testing.T) {
		got := parseReplySuggestions("REPLY_1: Sounds good, let me check the numbers and follow up.")
		if len(got) != 1 {
			t.Fatalf("expected 1 suggestion, got %d", len(got))
		}
		if got[0].Type != "general" {
			t.Errorf("expected type general, got %q", got[0].Type)
		}
	})

	t.Run("garbage output yields fallback trio", func(t *testing.T) {
		got := parseReplySuggestions("I cannot generate replies for this message.")
		if len(got) != 3 {
			t.Fatalf("expected fallback trio, got %d", len(got))
		}
		for _, s := range got {
			if s.Confidence != 0.6 {
				t.Errorf("fallback confidence should be 0.6, got %v", s.Confidence)
			}
		}
	})

	t.Run("never more than three", func(t *testing.T) {
		raw := "REPLY_1: [brief] One\nREPLY_2: [brief] Two\nREPLY_3: [brief] Three\nREPLY_4: [brief] Four"
		if got := parseReplySuggestions(raw); len(got) != 3 {
			t.Errorf("expected 3 suggestions, got %d", len(got))
		}
	})
}

func TestTruncate(t *testing.T) {
	if got := truncate("hello", 10); got != "hello" {
		t.Errorf("short input should pass through, got %q", got)
	}
	if got := truncate("hello world", 5); got != "hello" {
		t.Errorf("expected %q, got %q", "hello", got)
	}
}

func TestEmbeddingModelFromName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want openai.EmbeddingModel
	}{
		{"default when empty", "", openai.AdaEmbeddingV2},
		{"known model resolves", "text-embedding-ada-002", openai.AdaEmbeddingV2},
		{"unknown model falls back", "some-future-model", openai.AdaEmbeddingV2},
		{"other known model resolves", "text-similarity-ada-001", openai.AdaSimilarity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := embeddingModelFromName(tt.in); got != tt.want {
				t.Errorf("embeddingModelFromName(%q) = %v, want %v", tt.in, got, tt.want)
			}
			if got := embeddingModelFromName(tt.in); got == openai.Unknown {
				t.Errorf("embeddingModelFromName(%q) must never return Unknown", tt.in)
			}
		})
	}
}
