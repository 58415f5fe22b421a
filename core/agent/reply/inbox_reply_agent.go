// Package reply contains the drafting agent behind smart reply
// generation. It works in two steps: a planning pass whose outcome is
// kept in short-lived agent memory, then the drafting pass that folds
// in the plan, the thread context, and the user's persona.
package reply

import (
	"context"
	"fmt"
	"strings"

	"github.com/Akashdb5/champa-cognitive-ai-inbox/core/domain"
	"github.com/Akashdb5/champa-cognitive-ai-inbox/core/port/out"
	"github.com/Akashdb5/champa-cognitive-ai-inbox/pkg/logger"

	"github.com/google/uuid"
)

// Request carries everything the agent needs to draft one reply
type Request struct {
	MessageID     uuid.UUID
	UserID        uuid.UUID
	ThreadID      string
	Platform      domain.Platform
	ThreadContext string
	Persona       *domain.PersonaSnapshot
}

// Agent drafts replies with planning and per-thread scratch memory
type Agent struct {
	llm    out.CompletionClient
	memory out.AgentMemory
	log    *logger.Logger
}

func NewAgent(llm out.CompletionClient, memory out.AgentMemory) *Agent {
	return &Agent{
		llm:    llm,
		memory: memory,
		log:    logger.Default().WithField("component", "reply_agent"),
	}
}

const planSystem = `You are an expert email assistant planning a draft reply.
Given a message thread and what is known about the user, produce a short
numbered plan (3-5 steps) for the reply: which points to address, what
tone to use, and how to open and close. Return only the plan.`

const draftSystem = `You are an expert email assistant that generates context-aware draft replies.

Guidelines:
- Match the user's communication style (formal vs casual, length, tone)
- Address all points raised in the original message
- Be concise but complete
- Use appropriate greetings and sign-offs based on the relationship
- Maintain professional boundaries while being personable

Return only the draft reply text, without any explanations or metadata.`

// GenerateReply runs the plan and draft passes. A failed plan pass is
// logged and drafting proceeds without one; a failed draft pass is the
// caller's problem.
func (a *Agent) GenerateReply(ctx context.Context, req *Request) (string, error) {
	ns := a.namespace(req)

	plan := a.plan(ctx, req, ns)
	notes := a.recentNotes(ctx, ns)

	draft, err := a.llm.CompleteWithSystem(ctx, draftSystem, a.draftPrompt(req, plan, notes))
	if err != nil {
		return "", fmt.Errorf("draft reply: %w", err)
	}
	return strings.TrimSpace(draft), nil
}

// namespace scopes agent memory per user and conversation; threadless
// messages get a namespace of their own
func (a *Agent) namespace(req *Request) string {
	if req.ThreadID != "" {
		return fmt.Sprintf("reply:%s:%s", req.UserID, req.ThreadID)
	}
	return fmt.Sprintf("reply:%s:msg:%s", req.UserID, req.MessageID)
}

func (a *Agent) plan(ctx context.Context, req *Request, ns string) string {
	prompt := fmt.Sprintf("Platform: %s\n\nThread Context:\n%s\n\nUser Persona Information:\n%s\n\nPlan the reply:",
		req.Platform, req.ThreadContext, formatPersona(req.Persona))

	plan, err := a.llm.CompleteWithSystem(ctx, planSystem, prompt)
	if err != nil {
		a.log.WithError(err).WithField("namespace", ns).Warn("plan pass failed, drafting without plan")
		return ""
	}

	plan = strings.TrimSpace(plan)
	if plan != "" {
		if err := a.memory.Append(ctx, ns, "plan: "+plan); err != nil {
			a.log.WithError(err).WithField("namespace", ns).Warn("failed to record plan")
		}
	}
	return plan
}

func (a *Agent) recentNotes(ctx context.Context, ns string) []string {
	notes, err := a.memory.Recent(ctx, ns, 5)
	if err != nil {
		a.log.WithError(err).WithField("namespace", ns).Warn("failed to load agent memory")
		return nil
	}
	return notes
}

func (a *Agent) draftPrompt(req *Request, plan string, notes []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Generate a draft reply for the following message thread.\n\n")
	fmt.Fprintf(&b, "Platform: %s\n\n", req.Platform)
	fmt.Fprintf(&b, "Thread Context:\n%s\n\n", req.ThreadContext)
	fmt.Fprintf(&b, "User Persona Information:\n%s\n", formatPersona(req.Persona))

	if plan != "" {
		fmt.Fprintf(&b, "\nYour plan for this reply:\n%s\n", plan)
	}
	if len(notes) > 0 {
		fmt.Fprintf(&b, "\nEarlier notes for this conversation:\n")
		for _, note := range notes {
			fmt.Fprintf(&b, "- %s\n", note)
		}
	}

	fmt.Fprintf(&b, "\nPlease generate an appropriate draft reply that:\n")
	fmt.Fprintf(&b, "1. Addresses all points in the thread\n")
	fmt.Fprintf(&b, "2. Matches the user's communication style\n")
	fmt.Fprintf(&b, "3. Is formatted appropriately for %s\n", req.Platform)
	fmt.Fprintf(&b, "4. Maintains the right tone for the relationship\n")

	return b.String()
}

// formatPersona renders the snapshot for the prompt
func formatPersona(persona *domain.PersonaSnapshot) string {
	if persona.Empty() {
		return "No persona data available"
	}

	var lines []string

	if len(persona.StylePatterns) > 0 {
		lines = append(lines, "Communication Style:")
		for _, pattern := range persona.StylePatterns {
			for key, value := range pattern {
				lines = append(lines, fmt.Sprintf("  - %s: %v", key, value))
			}
		}
	}

	if len(persona.Contacts) > 0 {
		lines = append(lines, "Key Contacts:")
		contacts := persona.Contacts
		if len(contacts) > 5 {
			contacts = contacts[:5]
		}
		for _, contact := range contacts {
			lines = append(lines, fmt.Sprintf("  - %s (%d interactions)", contact.Email, contact.InteractionCount))
		}
	}

	if len(persona.Preferences) > 0 {
		lines = append(lines, "Preferences:")
		for key, value := range persona.Preferences {
			lines = append(lines, fmt.Sprintf("  - %s: %v", key, value))
		}
	}

	return strings.Join(lines, "\n")
}
