// Package ai coordinates message analysis: it runs the model pipeline
// (or the rule fallback), persists the outcome, and fires the
// best-effort side effects (reply suggestions, embeddings).
package ai

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Akashdb5/champa-cognitive-ai-inbox/core/agent/llm"
	"github.com/Akashdb5/champa-cognitive-ai-inbox/core/domain"
	"github.com/Akashdb5/champa-cognitive-ai-inbox/core/port/out"
	"github.com/Akashdb5/champa-cognitive-ai-inbox/pkg/apperr"
	"github.com/Akashdb5/champa-cognitive-ai-inbox/pkg/logger"

	"github.com/google/uuid"
)

// Analyzer is the model-backed analysis pipeline
type Analyzer interface {
	Analyze(ctx context.Context, msg *domain.Message) (*domain.Analysis, error)
}

// FallbackAnalyzer is the rule-based path; it cannot fail
type FallbackAnalyzer interface {
	Analyze(msg *domain.Message) *domain.Analysis
}

// ReplySuggester generates quick reply options during analysis
type ReplySuggester interface {
	SuggestReplies(ctx context.Context, in llm.MessageInput) ([]domain.ReplySuggestion, error)
}

// Config carries the tunable analysis policy
type Config struct {
	// ReplyPriorityThreshold gates suggestion generation; strictly
	// greater-than comparison
	ReplyPriorityThreshold float64
	NoReplyPatterns        []string
	SearchMinScore         float64
	SearchDefaultLimit     int
}

// Service implements the analysis coordination workflow
type Service struct {
	messages  out.MessageRepository
	analyses  out.AnalysisRepository
	replies   out.ReplyRepository
	vectors   out.VectorStore
	persona   out.PersonaStore
	embedder  out.CompletionClient
	analyzer  Analyzer
	fallback  FallbackAnalyzer
	suggester ReplySuggester
	cfg       Config
	log       *logger.Logger

	// per-message serialization so concurrent reanalysis requests for
	// the same message cannot interleave delete and insert
	mu    sync.Mutex
	locks map[uuid.UUID]*msgLock
}

type msgLock struct {
	mu   sync.Mutex
	refs int
}

func NewService(
	messages out.MessageRepository,
	analyses out.AnalysisRepository,
	replies out.ReplyRepository,
	vectors out.VectorStore,
	persona out.PersonaStore,
	embedder out.CompletionClient,
	analyzer Analyzer,
	fallback FallbackAnalyzer,
	suggester ReplySuggester,
	cfg Config,
) *Service {
	if cfg.ReplyPriorityThreshold == 0 {
		cfg.ReplyPriorityThreshold = 0.3
	}
	if cfg.SearchMinScore == 0 {
		cfg.SearchMinScore = 0.7
	}
	if cfg.SearchDefaultLimit == 0 {
		cfg.SearchDefaultLimit = 10
	}
	return &Service{
		messages:  messages,
		analyses:  analyses,
		replies:   replies,
		vectors:   vectors,
		persona:   persona,
		embedder:  embedder,
		analyzer:  analyzer,
		fallback:  fallback,
		suggester: suggester,
		cfg:       cfg,
		log:       logger.Default().WithField("component", "ai_service"),
		locks:     make(map[uuid.UUID]*msgLock),
	}
}

func (s *Service) lockMessage(id uuid.UUID) func() {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &msgLock{}
		s.locks[id] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, id)
		}
		s.mu.Unlock()
	}
}

// AnalyzeMessage runs the full analysis workflow for a message:
// model pipeline (rules when the pipeline is down), durable save of
// the analysis plus derived actionables, then the best-effort side
// effects. Side effect failures are logged, never propagated; only a
// failed save fails the call.
func (s *Service) AnalyzeMessage(ctx context.Context, msg *domain.Message) (*domain.Analysis, error) {
	unlock := s.lockMessage(msg.ID)
	defer unlock()

	return s.analyzeLocked(ctx, msg)
}

func (s *Service) analyzeLocked(ctx context.Context, msg *domain.Message) (*domain.Analysis, error) {
	analysis, err := s.analyzer.Analyze(ctx, msg)
	if err != nil {
		s.log.WithError(err).WithField("message_id", msg.ID).Warn("model pipeline failed, using fallback")
		analysis = s.fallback.Analyze(msg)
	}

	items := deriveActionables(msg, analysis)
	if err := s.analyses.ReplaceAnalysis(ctx, analysis, items); err != nil {
		return nil, apperr.DatabaseError("save analysis", err)
	}

	if s.shouldSuggestReplies(analysis, msg.Sender) {
		if err := s.generateSuggestions(ctx, msg); err != nil {
			s.log.WithError(err).WithField("message_id", msg.ID).Warn("reply suggestion generation failed")
		}
	}

	if err := s.storeEmbedding(ctx, msg); err != nil {
		s.log.WithError(err).WithField("message_id", msg.ID).Warn("embedding store failed")
	}

	return analysis, nil
}

// AnalyzeMessageByID loads the message, checks ownership, and analyzes
// it. A missing message and a foreign message are indistinguishable to
// the caller.
func (s *Service) AnalyzeMessageByID(ctx context.Context, messageID, userID uuid.UUID) (*domain.Analysis, error) {
	msg, err := s.ownedMessage(ctx, messageID, userID)
	if err != nil {
		return nil, err
	}
	return s.AnalyzeMessage(ctx, msg)
}

// ReanalyzeMessage discards any stored analysis for the message and
// runs a fresh one
func (s *Service) ReanalyzeMessage(ctx context.Context, messageID, userID uuid.UUID) (*domain.Analysis, error) {
	msg, err := s.ownedMessage(ctx, messageID, userID)
	if err != nil {
		return nil, err
	}

	unlock := s.lockMessage(msg.ID)
	defer unlock()

	if err := s.analyses.DeleteAnalysis(ctx, msg.ID); err != nil {
		return nil, apperr.DatabaseError("delete analysis", err)
	}
	return s.analyzeLocked(ctx, msg)
}

func (s *Service) ownedMessage(ctx context.Context, messageID, userID uuid.UUID) (*domain.Message, error) {
	msg, err := s.messages.GetMessage(ctx, messageID)
	if err != nil {
		return nil, apperr.DatabaseError("get message", err)
	}
	if msg == nil || msg.UserID != userID {
		return nil, apperr.NotFound("message")
	}
	return msg, nil
}

// GetMessageAnalysis returns the stored analysis with tasks and
// deadlines reconstructed from the persisted actionables. nil, nil
// when no analysis exists.
func (s *Service) GetMessageAnalysis(ctx context.Context, messageID uuid.UUID) (*domain.Analysis, error) {
	analysis, err := s.analyses.GetAnalysis(ctx, messageID)
	if err != nil {
		return nil, apperr.DatabaseError("get analysis", err)
	}
	if analysis == nil {
		return nil, nil
	}

	items, err := s.analyses.GetActionablesByMessage(ctx, messageID)
	if err != nil {
		return nil, apperr.DatabaseError("get actionables", err)
	}

	analysis.Tasks = analysis.Tasks[:0]
	analysis.Deadlines = analysis.Deadlines[:0]
	for _, item := range items {
		switch item.Type {
		case domain.TaskCategoryTask, domain.TaskCategoryMeeting:
			analysis.Tasks = append(analysis.Tasks, domain.Task{
				Category:    item.Type,
				Description: item.Description,
			})
		case domain.TaskCategoryDeadline:
			date := ""
			if item.Deadline != nil {
				date = item.Deadline.Format(time.RFC3339)
			}
			analysis.Deadlines = append(analysis.Deadlines, domain.Deadline{
				Description: item.Description,
				Date:        date,
			})
		}
	}
	return analysis, nil
}

// SemanticSearch embeds the query and searches the vector store,
// scoped to the user
func (s *Service) SemanticSearch(ctx context.Context, userID uuid.UUID, query string, limit int) ([]*out.VectorSearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, apperr.MissingField("query")
	}
	if limit <= 0 {
		limit = s.cfg.SearchDefaultLimit
	}

	embedding, err := s.embedder.Embedding(ctx, query)
	if err != nil {
		return nil, apperr.GenerationFailed("query embedding", err)
	}

	results, err := s.vectors.Search(ctx, userID, embedding, limit, s.cfg.SearchMinScore)
	if err != nil {
		return nil, apperr.DatabaseError("vector search", err)
	}
	return results, nil
}

// DeleteMessageData removes the analysis, actionables, and embedding
// for a message. A failed embedding delete is reported as an error:
// relational rows are already gone at that point and the caller must
// know the stores are inconsistent.
func (s *Service) DeleteMessageData(ctx context.Context, messageID uuid.UUID) error {
	if err := s.analyses.DeleteAnalysis(ctx, messageID); err != nil {
		return apperr.DatabaseError("delete analysis", err)
	}
	if err := s.vectors.Delete(ctx, messageID); err != nil {
		return apperr.DeletionIncomplete("message embedding", err)
	}
	return nil
}

// DeleteUserData removes every derived artifact for a user: analyses,
// actionables, reply drafts, and embeddings. The learned persona is
// kept unless the caller asks for it to go too.
func (s *Service) DeleteUserData(ctx context.Context, userID uuid.UUID, includePersona bool) error {
	if err := s.analyses.DeleteAnalysesByUser(ctx, userID); err != nil {
		return apperr.DatabaseError("delete analyses", err)
	}
	if err := s.replies.DeleteRepliesByUser(ctx, userID); err != nil {
		return apperr.DatabaseError("delete replies", err)
	}
	if includePersona {
		if err := s.persona.DeleteByUser(ctx, userID); err != nil {
			return apperr.DatabaseError("delete persona", err)
		}
	}
	if err := s.vectors.DeleteByUser(ctx, userID); err != nil {
		return apperr.DeletionIncomplete("user embeddings", err)
	}
	return nil
}

// UserActionables lists a user's actionables, optionally filtered by
// completion, soonest deadline first
func (s *Service) UserActionables(ctx context.Context, userID uuid.UUID, completed *bool, limit int) ([]*domain.Actionable, error) {
	if limit <= 0 {
		limit = 100
	}
	items, err := s.analyses.ListActionables(ctx, userID, completed, limit)
	if err != nil {
		return nil, apperr.DatabaseError("list actionables", err)
	}
	return items, nil
}

// CompleteActionable marks an actionable done, scoped to its owner
func (s *Service) CompleteActionable(ctx context.Context, id, userID uuid.UUID) error {
	ok, err := s.analyses.CompleteActionable(ctx, id, userID)
	if err != nil {
		return apperr.DatabaseError("complete actionable", err)
	}
	if !ok {
		return apperr.NotFound("actionable")
	}
	return nil
}

// shouldSuggestReplies gates automatic suggestion generation: spam
// never gets suggestions, low priority never does, and no-reply
// senders cannot receive one anyway
func (s *Service) shouldSuggestReplies(analysis *domain.Analysis, sender string) bool {
	return !analysis.IsSpam &&
		analysis.PriorityScore > s.cfg.ReplyPriorityThreshold &&
		s.replyableSender(sender)
}

func (s *Service) replyableSender(sender string) bool {
	if sender == "" {
		return false
	}
	senderLower := strings.ToLower(sender)
	for _, pattern := range s.cfg.NoReplyPatterns {
		if strings.Contains(senderLower, pattern) {
			s.log.WithField("sender", sender).Debug("skipping suggestions for no-reply sender")
			return false
		}
	}
	return true
}

func (s *Service) generateSuggestions(ctx context.Context, msg *domain.Message) error {
	suggestions, err := s.suggester.SuggestReplies(ctx, llm.InputFromMessage(msg))
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	drafts := make([]*domain.SmartReply, 0, len(suggestions))
	for _, suggestion := range suggestions {
		drafts = append(drafts, &domain.SmartReply{
			ID:           uuid.New(),
			MessageID:    msg.ID,
			UserID:       msg.UserID,
			DraftContent: suggestion.Text,
			Status:       domain.ReplyStatusSuggestion,
			CreatedAt:    now,
		})
	}
	return s.replies.CreateReplies(ctx, drafts)
}

// previewLimit caps the content stored alongside the embedding
const previewLimit = 200

func (s *Service) storeEmbedding(ctx context.Context, msg *domain.Message) error {
	embedding, err := s.embedder.Embedding(ctx, msg.Content)
	if err != nil {
		return err
	}

	preview := msg.Content
	if len(preview) > previewLimit {
		preview = preview[:previewLimit] + "..."
	}

	return s.vectors.Upsert(ctx, &out.EmbeddingRecord{
		MessageID:      msg.ID,
		UserID:         msg.UserID,
		Platform:       msg.Platform,
		Timestamp:      msg.Timestamp,
		Subject:        msg.Subject,
		ContentPreview: preview,
		Embedding:      embedding,
	})
}

// deriveActionables flattens analysis tasks and deadlines into
// persistable items. Deadline dates are parsed when they look like
// ISO dates; everything else stays free text on the analysis only.
func deriveActionables(msg *domain.Message, analysis *domain.Analysis) []*domain.Actionable {
	now := time.Now().UTC()
	items := make([]*domain.Actionable, 0, len(analysis.Tasks)+len(analysis.Deadlines))

	for _, task := range analysis.Tasks {
		items = append(items, &domain.Actionable{
			ID:          uuid.New(),
			MessageID:   msg.ID,
			UserID:      msg.UserID,
			Type:        task.Category,
			Description: task.Description,
			CreatedAt:   now,
		})
	}

	for _, deadline := range analysis.Deadlines {
		items = append(items, &domain.Actionable{
			ID:          uuid.New(),
			MessageID:   msg.ID,
			UserID:      msg.UserID,
			Type:        domain.TaskCategoryDeadline,
			Description: deadline.Description,
			Deadline:    parseDeadlineDate(deadline.Date),
			CreatedAt:   now,
		})
	}
	return items
}

func parseDeadlineDate(date string) *time.Time {
	if date == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, date); err == nil {
			return &t
		}
	}
	return nil
}
