// Package reply implements the smart reply lifecycle: draft generation
// from thread context and persona, user review, and delivery through
// the platform gateway.
package reply

import (
	"context"
	"fmt"
	"strings"
	"time"

	agent "github.com/Akashdb5/champa-cognitive-ai-inbox/core/agent/reply"
	"github.com/Akashdb5/champa-cognitive-ai-inbox/core/domain"
	"github.com/Akashdb5/champa-cognitive-ai-inbox/core/port/out"
	"github.com/Akashdb5/champa-cognitive-ai-inbox/pkg/apperr"
	"github.com/Akashdb5/champa-cognitive-ai-inbox/pkg/logger"

	"github.com/google/uuid"
)

// Drafter generates a reply draft for a message thread
type Drafter interface {
	GenerateReply(ctx context.Context, req *agent.Request) (string, error)
}

const defaultPendingLimit = 50

// Service owns smart reply drafts and their lifecycle
type Service struct {
	messages out.MessageRepository
	replies  out.ReplyRepository
	persona  out.PersonaStore
	drafter  Drafter
	gateway  out.PlatformGateway
	log      *logger.Logger
}

func NewService(
	messages out.MessageRepository,
	replies out.ReplyRepository,
	persona out.PersonaStore,
	drafter Drafter,
	gateway out.PlatformGateway,
) *Service {
	return &Service{
		messages: messages,
		replies:  replies,
		persona:  persona,
		drafter:  drafter,
		gateway:  gateway,
		log:      logger.Default().WithField("component", "reply_service"),
	}
}

// GenerateSmartReply drafts a full reply for the message and stores it
// as a pending draft awaiting review.
func (s *Service) GenerateSmartReply(ctx context.Context, messageID, userID uuid.UUID) (*domain.SmartReply, error) {
	msg, err := s.ownedMessage(ctx, messageID, userID)
	if err != nil {
		return nil, err
	}

	threadContext, err := s.buildThreadContext(ctx, msg)
	if err != nil {
		return nil, err
	}

	persona, err := s.persona.Snapshot(ctx, userID)
	if err != nil {
		s.log.WithError(err).WithField("user_id", userID.String()).Warn("failed to load persona, drafting without it")
		persona = nil
	}

	draft, err := s.drafter.GenerateReply(ctx, &agent.Request{
		MessageID:     msg.ID,
		UserID:        userID,
		ThreadID:      msg.ThreadID,
		Platform:      msg.Platform,
		ThreadContext: threadContext,
		Persona:       persona,
	})
	if err != nil {
		return nil, apperr.GenerationFailed("reply draft", err)
	}

	reply := &domain.SmartReply{
		ID:           uuid.New(),
		MessageID:    msg.ID,
		UserID:       userID,
		DraftContent: formatDraft(msg.Platform, draft),
		Status:       domain.ReplyStatusPending,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.replies.CreateReply(ctx, reply); err != nil {
		return nil, apperr.DatabaseError("store reply draft", err)
	}

	s.log.WithFields(map[string]any{
		"reply_id":   reply.ID.String(),
		"message_id": msg.ID.String(),
	}).Info("smart reply drafted")
	return reply, nil
}

// PromoteSuggestion turns an automatic suggestion into a pending draft
// the user can review, approve and send.
func (s *Service) PromoteSuggestion(ctx context.Context, replyID, userID uuid.UUID) (*domain.SmartReply, error) {
	reply, err := s.ownedReply(ctx, replyID, userID)
	if err != nil {
		return nil, err
	}
	if !reply.Status.CanTransition(domain.ReplyStatusPending) {
		return nil, apperr.Conflict(fmt.Sprintf("reply in status %q cannot be promoted", reply.Status))
	}

	reply.Status = domain.ReplyStatusPending
	if err := s.replies.UpdateReply(ctx, reply); err != nil {
		return nil, apperr.DatabaseError("update reply", err)
	}
	return reply, nil
}

// ApproveReply approves a pending draft and attempts delivery. On
// success the draft becomes sent; on delivery failure it is kept as
// approved so the send can be retried, and the error is returned.
func (s *Service) ApproveReply(ctx context.Context, replyID, userID uuid.UUID) (*domain.SmartReply, error) {
	reply, err := s.ownedReply(ctx, replyID, userID)
	if err != nil {
		return nil, err
	}
	if !reply.Status.CanTransition(domain.ReplyStatusSent) {
		// a draft past its reviewable state is indistinguishable from
		// a missing one to the caller
		return nil, apperr.NotFound("pending reply")
	}

	msg, err := s.ownedMessage(ctx, reply.MessageID, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	reply.ReviewedAt = &now

	if sendErr := s.send(ctx, reply, msg); sendErr != nil {
		reply.Status = domain.ReplyStatusApproved
		if err := s.replies.UpdateReply(ctx, reply); err != nil {
			s.log.WithError(err).WithField("reply_id", reply.ID.String()).Error("failed to persist approved status after send failure")
		}
		return nil, sendErr
	}

	sentAt := time.Now().UTC()
	reply.Status = domain.ReplyStatusSent
	reply.SentAt = &sentAt
	if err := s.replies.UpdateReply(ctx, reply); err != nil {
		return nil, apperr.DatabaseError("persist sent reply", err)
	}

	s.recordReplySent(ctx, reply, msg)
	return reply, nil
}

// EditReply replaces the draft content of a pending reply. The draft
// stays pending so the user can keep editing before approval.
func (s *Service) EditReply(ctx context.Context, replyID, userID uuid.UUID, content string) (*domain.SmartReply, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperr.MissingField("content")
	}

	reply, err := s.ownedReply(ctx, replyID, userID)
	if err != nil {
		return nil, err
	}
	if reply.Status != domain.ReplyStatusPending {
		return nil, apperr.NotFound("pending reply")
	}

	now := time.Now().UTC()
	reply.DraftContent = content
	reply.ReviewedAt = &now
	if err := s.replies.UpdateReply(ctx, reply); err != nil {
		return nil, apperr.DatabaseError("update reply", err)
	}
	return reply, nil
}

// RejectReply discards a pending draft
func (s *Service) RejectReply(ctx context.Context, replyID, userID uuid.UUID) (*domain.SmartReply, error) {
	reply, err := s.ownedReply(ctx, replyID, userID)
	if err != nil {
		return nil, err
	}
	if !reply.Status.CanTransition(domain.ReplyStatusRejected) {
		return nil, apperr.NotFound("pending reply")
	}

	now := time.Now().UTC()
	reply.Status = domain.ReplyStatusRejected
	reply.ReviewedAt = &now
	if err := s.replies.UpdateReply(ctx, reply); err != nil {
		return nil, apperr.DatabaseError("update reply", err)
	}
	return reply, nil
}

// PendingReplies lists drafts awaiting review, newest first
func (s *Service) PendingReplies(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.SmartReply, error) {
	if limit <= 0 {
		limit = defaultPendingLimit
	}
	replies, err := s.replies.ListReplies(ctx, userID, domain.ReplyStatusPending, limit)
	if err != nil {
		return nil, apperr.DatabaseError("list pending replies", err)
	}
	return replies, nil
}

// GetReply returns a single reply owned by the user
func (s *Service) GetReply(ctx context.Context, replyID, userID uuid.UUID) (*domain.SmartReply, error) {
	return s.ownedReply(ctx, replyID, userID)
}

// send delivers the draft to the original sender through the platform
// gateway
func (s *Service) send(ctx context.Context, reply *domain.SmartReply, msg *domain.Message) error {
	subject := msg.Subject
	if subject != "" && !strings.HasPrefix(subject, "Re:") {
		subject = "Re: " + subject
	}

	result, err := s.gateway.Send(ctx, reply.UserID, msg.Platform, &out.SendRequest{
		Recipient: msg.Sender,
		Content:   reply.DraftContent,
		Subject:   subject,
		ThreadID:  msg.ThreadID,
		ReplyToID: msg.PlatformMessageID,
	})
	if err != nil {
		return apperr.SendFailed(string(msg.Platform), err)
	}
	if !result.Success {
		return apperr.SendFailed(string(msg.Platform), fmt.Errorf("platform rejected reply: %s", result.Error))
	}
	return nil
}

// recordReplySent stores a persona observation about the sent reply so
// drafting learns from what the user actually approves. Best effort.
func (s *Service) recordReplySent(ctx context.Context, reply *domain.SmartReply, msg *domain.Message) {
	err := s.persona.StoreObservation(ctx, reply.UserID, domain.ObservationReplySent, map[string]any{
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
		"platform":       string(msg.Platform),
		"recipient":      msg.Sender,
		"content_length": len(reply.DraftContent),
	})
	if err != nil {
		s.log.WithError(err).WithField("reply_id", reply.ID.String()).Warn("failed to record reply observation")
	}
}

// buildThreadContext assembles the conversation text handed to the
// drafting agent. Single messages get a one-entry thread.
func (s *Service) buildThreadContext(ctx context.Context, msg *domain.Message) (string, error) {
	thread := []*domain.Message{msg}
	if msg.ThreadID != "" {
		messages, err := s.messages.GetThread(ctx, msg.UserID, msg.ThreadID)
		if err != nil {
			return "", apperr.DatabaseError("load thread", err)
		}
		if len(messages) > 0 {
			thread = messages
		}
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("Platform: %s", msg.Platform))
	if msg.ThreadID != "" {
		lines = append(lines, fmt.Sprintf("Thread ID: %s", msg.ThreadID))
	} else {
		lines = append(lines, "Thread ID: N/A")
	}
	lines = append(lines, "", "=== Thread Messages ===", "")

	for _, m := range thread {
		lines = append(lines, fmt.Sprintf("From: %s", m.Sender))
		lines = append(lines, fmt.Sprintf("Date: %s", m.Timestamp.Format(time.RFC3339)))
		if m.Subject != "" {
			lines = append(lines, fmt.Sprintf("Subject: %s", m.Subject))
		}
		lines = append(lines, fmt.Sprintf("Content: %s", m.Content))
		lines = append(lines, "", "---", "")
	}

	return strings.Join(lines, "\n"), nil
}

func (s *Service) ownedMessage(ctx context.Context, messageID, userID uuid.UUID) (*domain.Message, error) {
	msg, err := s.messages.GetMessage(ctx, messageID)
	if err != nil {
		return nil, apperr.DatabaseError("load message", err)
	}
	if msg == nil || msg.UserID != userID {
		return nil, apperr.NotFound("message")
	}
	return msg, nil
}

func (s *Service) ownedReply(ctx context.Context, replyID, userID uuid.UUID) (*domain.SmartReply, error) {
	reply, err := s.replies.GetReply(ctx, replyID, userID)
	if err != nil {
		return nil, apperr.DatabaseError("load reply", err)
	}
	if reply == nil {
		return nil, apperr.NotFound("reply")
	}
	return reply, nil
}

// formatDraft applies platform-specific adjustments to the draft body.
// The agent already writes for the target platform, so today this only
// normalizes whitespace.
func formatDraft(platform domain.Platform, draft string) string {
	switch platform {
	case domain.PlatformMail, domain.PlatformChat, domain.PlatformCalendar:
		return strings.TrimSpace(draft)
	}
	return strings.TrimSpace(draft)
}
