// Package message handles ingestion of normalized messages and hands
// them to the asynchronous analysis pipeline.
package message

import (
	"context"
	"strings"
	"time"

	"github.com/Akashdb5/champa-cognitive-ai-inbox/core/domain"
	"github.com/Akashdb5/champa-cognitive-ai-inbox/core/port/out"
	"github.com/Akashdb5/champa-cognitive-ai-inbox/pkg/apperr"
	"github.com/Akashdb5/champa-cognitive-ai-inbox/pkg/logger"

	"github.com/google/uuid"
)

// Service stores incoming messages and queues their analysis
type Service struct {
	messages out.MessageRepository
	producer out.MessageProducer
	log      *logger.Logger
}

func NewService(messages out.MessageRepository, producer out.MessageProducer) *Service {
	return &Service{
		messages: messages,
		producer: producer,
		log:      logger.Default().WithField("component", "message_service"),
	}
}

// IngestRequest is a platform-neutral inbound message
type IngestRequest struct {
	Platform          domain.Platform   `json:"platform"`
	PlatformMessageID string            `json:"platform_message_id"`
	Sender            string            `json:"sender"`
	Subject           string            `json:"subject,omitempty"`
	Content           string            `json:"content"`
	Timestamp         time.Time         `json:"timestamp"`
	ThreadID          string            `json:"thread_id,omitempty"`
	Metadata          map[string]string `json:"metadata,omitempty"`
}

func (r *IngestRequest) validate() error {
	if !r.Platform.Valid() {
		return apperr.InvalidInput("platform", "must be one of mail, chat, calendar")
	}
	if strings.TrimSpace(r.PlatformMessageID) == "" {
		return apperr.MissingField("platform_message_id")
	}
	if strings.TrimSpace(r.Sender) == "" {
		return apperr.MissingField("sender")
	}
	if strings.TrimSpace(r.Content) == "" && strings.TrimSpace(r.Subject) == "" {
		return apperr.MissingField("content")
	}
	return nil
}

// Ingest stores the message and queues an analysis job. Queue failure
// is reported so the caller can retry; the stored message survives.
func (s *Service) Ingest(ctx context.Context, userID uuid.UUID, req *IngestRequest) (*domain.Message, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	timestamp := req.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}

	msg := &domain.Message{
		ID:                uuid.New(),
		UserID:            userID,
		Platform:          req.Platform,
		PlatformMessageID: req.PlatformMessageID,
		Sender:            req.Sender,
		Subject:           req.Subject,
		Content:           req.Content,
		Timestamp:         timestamp,
		ThreadID:          req.ThreadID,
		Metadata:          req.Metadata,
		CreatedAt:         time.Now().UTC(),
	}

	if err := s.messages.CreateMessage(ctx, msg); err != nil {
		return nil, apperr.DatabaseError("store message", err)
	}

	job := &out.AnalyzeJob{MessageID: msg.ID, UserID: userID}
	if err := s.producer.PublishAnalyze(ctx, job); err != nil {
		return nil, apperr.ExternalError("analysis queue", err)
	}

	s.log.WithFields(map[string]any{
		"message_id": msg.ID.String(),
		"platform":   string(msg.Platform),
	}).Info("message ingested")
	return msg, nil
}

// QueueReanalysis publishes a reanalysis job for an existing message
func (s *Service) QueueReanalysis(ctx context.Context, messageID, userID uuid.UUID) error {
	msg, err := s.messages.GetMessage(ctx, messageID)
	if err != nil {
		return apperr.DatabaseError("get message", err)
	}
	if msg == nil || msg.UserID != userID {
		return apperr.NotFound("message")
	}

	job := &out.AnalyzeJob{MessageID: messageID, UserID: userID, Reanalyze: true}
	if err := s.producer.PublishAnalyze(ctx, job); err != nil {
		return apperr.ExternalError("analysis queue", err)
	}
	return nil
}

// GetMessage returns a message owned by the user
func (s *Service) GetMessage(ctx context.Context, messageID, userID uuid.UUID) (*domain.Message, error) {
	msg, err := s.messages.GetMessage(ctx, messageID)
	if err != nil {
		return nil, apperr.DatabaseError("get message", err)
	}
	if msg == nil || msg.UserID != userID {
		return nil, apperr.NotFound("message")
	}
	return msg, nil
}

// GetThread returns a conversation for the user, oldest first
func (s *Service) GetThread(ctx context.Context, userID uuid.UUID, threadID string) ([]*domain.Message, error) {
	if strings.TrimSpace(threadID) == "" {
		return nil, apperr.MissingField("thread_id")
	}
	messages, err := s.messages.GetThread(ctx, userID, threadID)
	if err != nil {
		return nil, apperr.DatabaseError("get thread", err)
	}
	return messages, nil
}
