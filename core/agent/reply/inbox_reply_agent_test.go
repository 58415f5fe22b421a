package reply

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Akashdb5/champa-cognitive-ai-inbox/core/domain"

	"github.com/google/uuid"
)

type stubLLM struct {
	responses map[string]string
	planErr   error
	draftErr  error
	prompts   []string
}

func (s *stubLLM) Complete(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.responses[prompt], nil
}

func (s *stubLLM) CompleteWithSystem(_ context.Context, system, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if system == planSystem {
		if s.planErr != nil {
			return "", s.planErr
		}
		return "1. Acknowledge\n2. Confirm timeline", nil
	}
	if s.draftErr != nil {
		return "", s.draftErr
	}
	return "  Hi Alice, thanks for the update.  ", nil
}

func (s *stubLLM) Embedding(context.Context, string) ([]float32, error) { return nil, nil }

type stubMemory struct {
	appended map[string][]string
	recent   []string
	err      error
}

func (s *stubMemory) Append(_ context.Context, ns, note string) error {
	if s.appended == nil {
		s.appended = map[string][]string{}
	}
	s.appended[ns] = append(s.appended[ns], note)
	return s.err
}

func (s *stubMemory) Recent(_ context.Context, _ string, _ int) ([]string, error) {
	return s.recent, s.err
}

func (s *stubMemory) Clear(context.Context, string) error { return nil }

func testRequest() *Request {
	return &Request{
		MessageID:     uuid.New(),
		UserID:        uuid.New(),
		ThreadID:      "thread-1",
		Platform:      domain.PlatformMail,
		ThreadContext: "Platform: mail\nThread ID: thread-1",
		Persona:       nil,
	}
}

func TestGenerateReplyTrimsDraft(t *testing.T) {
	llm := &stubLLM{}
	a := NewAgent(llm, &stubMemory{})

	draft, err := a.GenerateReply(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("GenerateReply: %v", err)
	}
	if draft != "Hi Alice, thanks for the update." {
		t.Errorf("draft = %q", draft)
	}
}

func TestGenerateReplyIncludesPlanAndNotes(t *testing.T) {
	llm := &stubLLM{}
	mem := &stubMemory{recent: []string{"prefers short replies"}}
	a := NewAgent(llm, mem)

	if _, err := a.GenerateReply(context.Background(), testRequest()); err != nil {
		t.Fatalf("GenerateReply: %v", err)
	}

	draftPrompt := llm.prompts[len(llm.prompts)-1]
	if !strings.Contains(draftPrompt, "1. Acknowledge") {
		t.Errorf("draft prompt missing plan:\n%s", draftPrompt)
	}
	if !strings.Contains(draftPrompt, "prefers short replies") {
		t.Errorf("draft prompt missing memory notes:\n%s", draftPrompt)
	}
}

func TestGenerateReplyRecordsPlanInMemory(t *testing.T) {
	mem := &stubMemory{}
	a := NewAgent(&stubLLM{}, mem)
	req := testRequest()

	if _, err := a.GenerateReply(context.Background(), req); err != nil {
		t.Fatalf("GenerateReply: %v", err)
	}

	ns := "reply:" + req.UserID.String() + ":thread-1"
	notes := mem.appended[ns]
	if len(notes) != 1 || !strings.HasPrefix(notes[0], "plan: ") {
		t.Errorf("memory notes for %q = %v", ns, notes)
	}
}

func TestGenerateReplySurvivesPlanFailure(t *testing.T) {
	llm := &stubLLM{planErr: errors.New("timeout")}
	a := NewAgent(llm, &stubMemory{})

	draft, err := a.GenerateReply(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("GenerateReply: %v", err)
	}
	if draft == "" {
		t.Error("draft should still be produced without a plan")
	}
}

func TestGenerateReplyDraftFailurePropagates(t *testing.T) {
	llm := &stubLLM{draftErr: errors.New("model unavailable")}
	a := NewAgent(llm, &stubMemory{})

	if _, err := a.GenerateReply(context.Background(), testRequest()); err == nil {
		t.Error("expected error when drafting fails")
	}
}

func TestNamespaceWithoutThread(t *testing.T) {
	a := NewAgent(&stubLLM{}, &stubMemory{})
	req := testRequest()
	req.ThreadID = ""

	ns := a.namespace(req)
	want := "reply:" + req.UserID.String() + ":msg:" + req.MessageID.String()
	if ns != want {
		t.Errorf("namespace = %q, want %q", ns, want)
	}
}

func TestFormatPersona(t *testing.T) {
	if got := formatPersona(nil); got != "No persona data available" {
		t.Errorf("nil persona = %q", got)
	}
	if got := formatPersona(&domain.PersonaSnapshot{}); got != "No persona data available" {
		t.Errorf("empty persona = %q", got)
	}

	persona := &domain.PersonaSnapshot{
		StylePatterns: []map[string]any{{"tone": "casual"}},
		Contacts: []domain.Contact{
			{Email: "a@example.com", InteractionCount: 9},
			{Email: "b@example.com", InteractionCount: 8},
			{Email: "c@example.com", InteractionCount: 7},
			{Email: "d@example.com", InteractionCount: 6},
			{Email: "e@example.com", InteractionCount: 5},
			{Email: "f@example.com", InteractionCount: 4},
		},
		Preferences: map[string]any{"signoff": "Best"},
	}
	got := formatPersona(persona)
	for _, want := range []string{
		"Communication Style:",
		"tone: casual",
		"Key Contacts:",
		"a@example.com (9 interactions)",
		"Preferences:",
		"signoff: Best",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("persona text missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "f@example.com") {
		t.Error("contacts should be capped at five")
	}
}
