package llm

import (
	"fmt"

	"github.com/Akashdb5/champa-cognitive-ai-inbox/core/domain"
)

// MessageInput is the slice of a message the analysis prompts need
type MessageInput struct {
	Platform domain.Platform
	Sender   string
	Subject  string
	Content  string
	Metadata map[string]string
}

// InputFromMessage builds prompt input from a normalized message
func InputFromMessage(msg *domain.Message) MessageInput {
	return MessageInput{
		Platform: msg.Platform,
		Sender:   msg.Sender,
		Subject:  msg.Subject,
		Content:  msg.Content,
		Metadata: msg.Metadata,
	}
}

// promptSubject substitutes a placeholder for subjectless platforms
func (in MessageInput) promptSubject() string {
	if in.Subject == "" {
		return "No subject"
	}
	return in.Subject
}

// header renders the shared prompt preamble
func (in MessageInput) header(content string) string {
	return fmt.Sprintf("Platform: %s\nSender: %s\nSubject: %s\nContent: %s",
		in.Platform, in.Sender, in.promptSubject(), content)
}

// truncate limits content length so prompts stay inside the context
// window for long marketing emails
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
