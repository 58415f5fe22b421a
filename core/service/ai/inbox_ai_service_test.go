package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/Akashdb5/champa-cognitive-ai-inbox/core/agent/fallback"
	"github.com/Akashdb5/champa-cognitive-ai-inbox/core/agent/llm"
	"github.com/Akashdb5/champa-cognitive-ai-inbox/core/domain"
	"github.com/Akashdb5/champa-cognitive-ai-inbox/core/port/out"
	"github.com/Akashdb5/champa-cognitive-ai-inbox/pkg/apperr"

	"github.com/google/uuid"
)

// ---- fakes ----

type fakeAnalyzer struct {
	analysis *domain.Analysis
	err      error
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, msg *domain.Message) (*domain.Analysis, error) {
	if f.err != nil {
		return nil, f.err
	}
	a := *f.analysis
	a.MessageID = msg.ID
	return &a, nil
}

type fakeSuggester struct {
	suggestions []domain.ReplySuggestion
	err         error
	calls       int
}

func (f *fakeSuggester) SuggestReplies(ctx context.Context, in llm.MessageInput) ([]domain.ReplySuggestion, error) {
	f.calls++
	return f.suggestions, f.err
}

type fakeMessageRepo struct {
	byID map[uuid.UUID]*domain.Message
}

func (f *fakeMessageRepo) GetMessage(ctx context.Context, id uuid.UUID) (*domain.Message, error) {
	return f.byID[id], nil
}
func (f *fakeMessageRepo) CreateMessage(ctx context.Context, msg *domain.Message) error { return nil }
func (f *fakeMessageRepo) GetThread(ctx context.Context, userID uuid.UUID, threadID string) ([]*domain.Message, error) {
	return nil, nil
}
type fakeAnalysisRepo struct {
	saved       *domain.Analysis
	savedItems  []*domain.Actionable
	saveErr     error
	deleteCalls int
	deleteErr   error
	replaceN    int
}

func (f *fakeAnalysisRepo) GetAnalysis(ctx context.Context, messageID uuid.UUID) (*domain.Analysis, error) {
	return f.saved, nil
}

func (f *fakeAnalysisRepo) ReplaceAnalysis(ctx context.Context, analysis *domain.Analysis, items []*domain.Actionable) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.replaceN++
	f.saved = analysis
	f.savedItems = items
	return nil
}

func (f *fakeAnalysisRepo) DeleteAnalysis(ctx context.Context, messageID uuid.UUID) error {
	f.deleteCalls++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.saved = nil
	f.savedItems = nil
	return nil
}

func (f *fakeAnalysisRepo) DeleteAnalysesByUser(ctx context.Context, userID uuid.UUID) error {
	return f.deleteErr
}

func (f *fakeAnalysisRepo) GetActionablesByMessage(ctx context.Context, messageID uuid.UUID) ([]*domain.Actionable, error) {
	return f.savedItems, nil
}

func (f *fakeAnalysisRepo) ListActionables(ctx context.Context, userID uuid.UUID, completed *bool, limit int) ([]*domain.Actionable, error) {
	return f.savedItems, nil
}

func (f *fakeAnalysisRepo) CompleteActionable(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	for _, item := range f.savedItems {
		if item.ID == id && item.UserID == userID {
			item.Completed = true
			return true, nil
		}
	}
	return false, nil
}

type fakeReplyRepo struct {
	created []*domain.SmartReply
}

func (f *fakeReplyRepo) CreateReply(ctx context.Context, reply *domain.SmartReply) error {
	f.created = append(f.created, reply)
	return nil
}

func (f *fakeReplyRepo) CreateReplies(ctx context.Context, replies []*domain.SmartReply) error {
	f.created = append(f.created, replies...)
	return nil
}

func (f *fakeReplyRepo) GetReply(ctx context.Context, id, userID uuid.UUID) (*domain.SmartReply, error) {
	return nil, nil
}

func (f *fakeReplyRepo) ListReplies(ctx context.Context, userID uuid.UUID, status domain.ReplyStatus, limit int) ([]*domain.SmartReply, error) {
	return nil, nil
}

func (f *fakeReplyRepo) GetRepliesByMessage(ctx context.Context, messageID uuid.UUID) ([]*domain.SmartReply, error) {
	return nil, nil
}

func (f *fakeReplyRepo) UpdateReply(ctx context.Context, reply *domain.SmartReply) error { return nil }
func (f *fakeReplyRepo) DeleteRepliesByUser(ctx context.Context, userID uuid.UUID) error { return nil }

type fakeVectorStore struct {
	upserts     int
	deleteErr   error
	deleteCalls int
}

func (f *fakeVectorStore) Upsert(ctx context.Context, rec *out.EmbeddingRecord) error {
	f.upserts++
	return nil
}

func (f *fakeVectorStore) Delete(ctx context.Context, messageID uuid.UUID) error {
	f.deleteCalls++
	return f.deleteErr
}

func (f *fakeVectorStore) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	f.deleteCalls++
	return f.deleteErr
}

func (f *fakeVectorStore) Search(ctx context.Context, userID uuid.UUID, embedding []float32, limit int, minScore float64) ([]*out.VectorSearchResult, error) {
	return nil, nil
}

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) Complete(ctx context.Context, prompt string) (string, error) { return "", nil }
func (f *fakeEmbedder) CompleteWithSystem(ctx context.Context, system, user string) (string, error) {
	return "", nil
}
func (f *fakeEmbedder) Embedding(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

// ---- helpers ----

type fakePersonaStore struct {
	deleteCalls int
	deleteErr   error
}

func (f *fakePersonaStore) StoreObservation(ctx context.Context, userID uuid.UUID, obsType domain.ObservationType, value map[string]any) error {
	return nil
}

func (f *fakePersonaStore) Snapshot(ctx context.Context, userID uuid.UUID) (*domain.PersonaSnapshot, error) {
	return nil, nil
}

func (f *fakePersonaStore) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	f.deleteCalls++
	return f.deleteErr
}

type fixture struct {
	svc      *Service
	messages *fakeMessageRepo
	analyses *fakeAnalysisRepo
	replies  *fakeReplyRepo
	vectors  *fakeVectorStore
	persona  *fakePersonaStore
	analyzer *fakeAnalyzer
	suggest  *fakeSuggester
}

func modelAnalysis() *domain.Analysis {
	return &domain.Analysis{
		Summary:       "Colleague asking for the report",
		Intent:        domain.IntentRequest,
		PriorityScore: 0.8,
		Tasks: []domain.Task{
			{Category: domain.TaskCategoryTask, Description: "Send the report"},
		},
		Deadlines: []domain.Deadline{
			{Description: "Report due", Date: "2026-09-05"},
		},
		SpamType: domain.SpamTypeNone,
		Source:   domain.SourceModel,
	}
}

func newFixture() *fixture {
	f := &fixture{
		messages: &fakeMessageRepo{byID: make(map[uuid.UUID]*domain.Message)},
		analyses: &fakeAnalysisRepo{},
		replies:  &fakeReplyRepo{},
		vectors:  &fakeVectorStore{},
		persona:  &fakePersonaStore{},
		analyzer: &fakeAnalyzer{analysis: modelAnalysis()},
		suggest: &fakeSuggester{suggestions: []domain.ReplySuggestion{
			{Text: "On it, will send shortly.", Type: "acknowledgment", Confidence: 0.9},
		}},
	}
	f.svc = NewService(
		f.messages, f.analyses, f.replies, f.vectors, f.persona,
		&fakeEmbedder{}, f.analyzer, fallback.NewProcessor(), f.suggest,
		Config{
			NoReplyPatterns: []string{
				"no-reply", "noreply", "no_reply", "donotreply", "do-not-reply",
				"do_not_reply", "notifications", "automated", "mailer-daemon", "postmaster",
			},
		},
	)
	return f
}

func newMessage(sender string) *domain.Message {
	return &domain.Message{
		ID:       uuid.New(),
		UserID:   uuid.New(),
		Platform: domain.PlatformMail,
		Sender:   sender,
		Subject:  "Report",
		Content:  "Please send the report by Friday.",
	}
}

// ---- tests ----

func TestAnalyzeMessagePersistsAnalysisAndActionables(t *testing.T) {
	f := newFixture()
	msg := newMessage("colleague@example.com")

	analysis, err := f.svc.AnalyzeMessage(context.Background(), msg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if analysis.Source != domain.SourceModel {
		t.Errorf("expected model source, got %q", analysis.Source)
	}
	if f.analyses.saved == nil {
		t.Fatal("analysis not persisted")
	}
	if len(f.analyses.savedItems) != 2 {
		t.Fatalf("expected 2 actionables (1 task + 1 deadline), got %d", len(f.analyses.savedItems))
	}

	deadline := f.analyses.savedItems[1]
	if deadline.Type != domain.TaskCategoryDeadline {
		t.Errorf("expected deadline actionable, got %q", deadline.Type)
	}
	if deadline.Deadline == nil {
		t.Error("ISO date should have parsed into a deadline timestamp")
	}
	if f.vectors.upserts != 1 {
		t.Errorf("expected 1 embedding upsert, got %d", f.vectors.upserts)
	}
}

func TestAnalyzeMessageFallsBackWhenPipelineFails(t *testing.T) {
	f := newFixture()
	f.analyzer.err = errors.New("pipeline unavailable")
	msg := newMessage("colleague@example.com")
	msg.Content = "Urgent: please review the incident report today"

	analysis, err := f.svc.AnalyzeMessage(context.Background(), msg)
	if err != nil {
		t.Fatalf("analysis must not fail when fallback is available: %v", err)
	}
	if analysis.Source != domain.SourceFallback {
		t.Errorf("expected fallback source, got %q", analysis.Source)
	}
	if analysis.IsSpam {
		t.Error("fallback analysis must be ham")
	}
	if f.analyses.saved == nil {
		t.Error("fallback result must still be persisted")
	}
}

func TestAnalyzeMessageSaveFailurePropagates(t *testing.T) {
	f := newFixture()
	f.analyses.saveErr = errors.New("connection reset")

	_, err := f.svc.AnalyzeMessage(context.Background(), newMessage("a@example.com"))
	if err == nil {
		t.Fatal("expected error when persistence fails")
	}
	if !apperr.HasCode(err, apperr.CodeDatabaseError) {
		t.Errorf("expected database error code, got %v", err)
	}
	if f.suggest.calls != 0 {
		t.Error("side effects must not run when the save failed")
	}
	if f.vectors.upserts != 0 {
		t.Error("embedding must not be stored when the save failed")
	}
}

func TestSuggestionGating(t *testing.T) {
	tests := []struct {
		name     string
		sender   string
		mutate   func(a *domain.Analysis)
		expected bool
	}{
		{
			name:     "high priority replyable sender",
			sender:   "boss@example.com",
			expected: true,
		},
		{
			name:   "spam never gets suggestions",
			sender: "boss@example.com",
			mutate: func(a *domain.Analysis) {
				a.IsSpam = true
				a.SpamScore = 0.9
				a.SpamType = domain.SpamTypePromotional
			},
			expected: false,
		},
		{
			name:     "priority at threshold excluded",
			sender:   "boss@example.com",
			mutate:   func(a *domain.Analysis) { a.PriorityScore = 0.3 },
			expected: false,
		},
		{
			name:     "priority just above threshold included",
			sender:   "boss@example.com",
			mutate:   func(a *domain.Analysis) { a.PriorityScore = 0.31 },
			expected: true,
		},
		{
			name:     "no-reply sender excluded",
			sender:   "noreply@service.com",
			expected: false,
		},
		{
			name:     "notifications sender excluded",
			sender:   "notifications@github.com",
			expected: false,
		},
		{
			name:     "empty sender excluded",
			sender:   "",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			if tt.mutate != nil {
				tt.mutate(f.analyzer.analysis)
			}

			_, err := f.svc.AnalyzeMessage(context.Background(), newMessage(tt.sender))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			got := f.suggest.calls > 0
			if got != tt.expected {
				t.Errorf("suggestion generation = %v, expected %v", got, tt.expected)
			}
			if tt.expected && len(f.replies.created) == 0 {
				t.Error("expected suggestion drafts to be stored")
			}
			for _, draft := range f.replies.created {
				if draft.Status != domain.ReplyStatusSuggestion {
					t.Errorf("auto drafts must start as suggestion, got %q", draft.Status)
				}
			}
		})
	}
}

func TestSuggestionFailureDoesNotFailAnalysis(t *testing.T) {
	f := newFixture()
	f.suggest.err = errors.New("model error")

	_, err := f.svc.AnalyzeMessage(context.Background(), newMessage("boss@example.com"))
	if err != nil {
		t.Fatalf("suggestion failure must be swallowed: %v", err)
	}
}

func TestEmbeddingFailureDoesNotFailAnalysis(t *testing.T) {
	f := newFixture()
	f.svc.embedder = &fakeEmbedder{err: errors.New("quota exceeded")}

	analysis, err := f.svc.AnalyzeMessage(context.Background(), newMessage("boss@example.com"))
	if err != nil {
		t.Fatalf("embedding failure must be swallowed: %v", err)
	}
	if analysis == nil {
		t.Fatal("expected analysis despite embedding failure")
	}
}

func TestReanalyzeDeletesThenReruns(t *testing.T) {
	f := newFixture()
	msg := newMessage("boss@example.com")
	f.messages.byID[msg.ID] = msg

	if _, err := f.svc.AnalyzeMessage(context.Background(), msg); err != nil {
		t.Fatalf("initial analysis: %v", err)
	}

	analysis, err := f.svc.ReanalyzeMessage(context.Background(), msg.ID, msg.UserID)
	if err != nil {
		t.Fatalf("reanalyze: %v", err)
	}
	if f.analyses.deleteCalls != 1 {
		t.Errorf("expected stored analysis deleted before rerun, delete calls = %d", f.analyses.deleteCalls)
	}
	if f.analyses.replaceN != 2 {
		t.Errorf("expected second replace after reanalysis, got %d", f.analyses.replaceN)
	}
	if analysis == nil || analysis.MessageID != msg.ID {
		t.Error("reanalysis must return a fresh analysis for the message")
	}
}

func TestReanalyzeUnknownOrForeignMessage(t *testing.T) {
	f := newFixture()
	msg := newMessage("boss@example.com")
	f.messages.byID[msg.ID] = msg

	t.Run("unknown message", func(t *testing.T) {
		_, err := f.svc.ReanalyzeMessage(context.Background(), uuid.New(), msg.UserID)
		if !apperr.HasCode(err, apperr.CodeNotFound) {
			t.Errorf("expected not found, got %v", err)
		}
	})

	t.Run("foreign message looks identical", func(t *testing.T) {
		_, err := f.svc.ReanalyzeMessage(context.Background(), msg.ID, uuid.New())
		if !apperr.HasCode(err, apperr.CodeNotFound) {
			t.Errorf("expected not found for foreign user, got %v", err)
		}
	})
}

func TestDeleteMessageDataVectorFailureSurfaces(t *testing.T) {
	f := newFixture()
	f.vectors.deleteErr = errors.New("vector store down")

	err := f.svc.DeleteMessageData(context.Background(), uuid.New())
	if err == nil {
		t.Fatal("vector delete failure must surface")
	}
	if !apperr.HasCode(err, apperr.CodeDeletionIncomplete) {
		t.Errorf("expected deletion incomplete code, got %v", err)
	}
}

func TestDeleteUserDataVectorFailureSurfaces(t *testing.T) {
	f := newFixture()
	f.vectors.deleteErr = errors.New("vector store down")

	err := f.svc.DeleteUserData(context.Background(), uuid.New(), false)
	if !apperr.HasCode(err, apperr.CodeDeletionIncomplete) {
		t.Errorf("expected deletion incomplete code, got %v", err)
	}
}

func TestDeleteUserDataPersonaOptIn(t *testing.T) {
	f := newFixture()
	if err := f.svc.DeleteUserData(context.Background(), uuid.New(), false); err != nil {
		t.Fatalf("DeleteUserData: %v", err)
	}
	if f.persona.deleteCalls != 0 {
		t.Errorf("persona deleted without opt-in (%d calls)", f.persona.deleteCalls)
	}

	if err := f.svc.DeleteUserData(context.Background(), uuid.New(), true); err != nil {
		t.Fatalf("DeleteUserData with persona: %v", err)
	}
	if f.persona.deleteCalls != 1 {
		t.Errorf("persona delete calls = %d, want 1", f.persona.deleteCalls)
	}
}

func TestDeleteUserDataPersonaFailureSurfaces(t *testing.T) {
	f := newFixture()
	f.persona.deleteErr = errors.New("persona table locked")

	err := f.svc.DeleteUserData(context.Background(), uuid.New(), true)
	if !apperr.HasCode(err, apperr.CodeDatabaseError) {
		t.Errorf("expected database error code, got %v", err)
	}
}

func TestCompleteActionableScopedToOwner(t *testing.T) {
	f := newFixture()
	owner := uuid.New()
	item := &domain.Actionable{ID: uuid.New(), UserID: owner, Type: domain.TaskCategoryTask}
	f.analyses.savedItems = []*domain.Actionable{item}

	if err := f.svc.CompleteActionable(context.Background(), item.ID, uuid.New()); err == nil {
		t.Error("foreign user must not complete the actionable")
	}
	if err := f.svc.CompleteActionable(context.Background(), item.ID, owner); err != nil {
		t.Errorf("owner completion failed: %v", err)
	}
	if !item.Completed {
		t.Error("item should be completed")
	}
}

func TestSemanticSearchRequiresQuery(t *testing.T) {
	f := newFixture()
	_, err := f.svc.SemanticSearch(context.Background(), uuid.New(), "   ", 10)
	if !apperr.HasCode(err, apperr.CodeMissingField) {
		t.Errorf("expected missing field error, got %v", err)
	}
}
