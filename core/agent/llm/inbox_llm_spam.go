package llm

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/Akashdb5/champa-cognitive-ai-inbox/core/domain"
)

// spamContentLimit caps content sent for spam analysis; marketing
// emails routinely exceed the context worth spending on them
const spamContentLimit = 2000

const detectSpamSystem = `You are an expert at detecting spam, promotional emails, and unwanted messages.

Analyze the message and determine if it's spam or promotional content.

Consider these factors:
- Marketing language and sales pitches
- Promotional offers and discounts
- Newsletter patterns
- Automated/bulk email indicators
- Suspicious links or phishing attempts
- Sender reputation patterns

Output format (exactly 4 lines):
IS_SPAM: true/false
SPAM_SCORE: 0.0-1.0 (confidence level)
SPAM_TYPE: promotional/newsletter/marketing/phishing/none
REASON: brief explanation

Examples:
- Promotional: "50% off sale", "limited time offer", marketing emails
- Newsletter: regular updates, subscriptions, digest emails
- Marketing: product announcements, company updates
- Phishing: suspicious links, urgent requests, impersonation
- None: legitimate personal or business communication`

// SpamVerdict is the outcome of spam detection for one message
type SpamVerdict struct {
	IsSpam          bool
	Score           float64
	Type            domain.SpamType
	UnsubscribeLink string
	Reason          string
}

// DetectSpam classifies the message as spam or legitimate and, for bulk
// mail categories, tries to recover an unsubscribe link from the
// List-Unsubscribe header or the message body.
func (r *Runner) DetectSpam(ctx context.Context, in MessageInput) (*SpamVerdict, error) {
	user := in.header(truncate(in.Content, spamContentLimit))

	result, err := r.llm.CompleteWithSystem(ctx, detectSpamSystem, user)
	if err != nil {
		return nil, err
	}

	verdict := parseSpamVerdict(result)
	if verdict.IsSpam && verdict.Type.Unsubscribable() {
		verdict.UnsubscribeLink = extractUnsubscribeLink(in.Content, in.Metadata)
	}
	return verdict, nil
}

// parseSpamVerdict reads the 4-line verdict. Missing or malformed
// lines keep their defaults; a non-numeric score falls back to 0.5
// when the message was flagged and 0.0 otherwise.
func parseSpamVerdict(raw string) *SpamVerdict {
	verdict := &SpamVerdict{
		Type:   domain.SpamTypeNone,
		Reason: "Not spam",
	}

	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "IS_SPAM:"):
			value := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(line, "IS_SPAM:")))
			verdict.IsSpam = value == "true"
		case strings.HasPrefix(line, "SPAM_SCORE:"):
			value := strings.TrimSpace(strings.TrimPrefix(line, "SPAM_SCORE:"))
			score, err := strconv.ParseFloat(value, 64)
			if err != nil {
				if verdict.IsSpam {
					verdict.Score = 0.5
				} else {
					verdict.Score = 0.0
				}
				continue
			}
			verdict.Score = domain.Clamp01(score)
		case strings.HasPrefix(line, "SPAM_TYPE:"):
			verdict.Type = domain.ParseSpamType(strings.TrimPrefix(line, "SPAM_TYPE:"))
		case strings.HasPrefix(line, "REASON:"):
			verdict.Reason = strings.TrimSpace(strings.TrimPrefix(line, "REASON:"))
		}
	}
	return verdict
}

// List-Unsubscribe header value per RFC 2369: <https://...>, <mailto:...>
var listUnsubscribeRe = regexp.MustCompile(`<(https?://[^>]+)>`)

// Body patterns, checked in order: anchor hrefs first, then bare URLs
var unsubscribePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<a[^>]+href=["']([^"']*unsubscribe[^"']*)["']`),
	regexp.MustCompile(`(?i)<a[^>]+href=["']([^"']*opt-out[^"']*)["']`),
	regexp.MustCompile(`(?i)<a[^>]+href=["']([^"']*remove[^"']*)["']`),
	regexp.MustCompile(`(?i)(https?://[^\s<>"]+unsubscribe[^\s<>"]*)`),
	regexp.MustCompile(`(?i)(https?://[^\s<>"]+opt-out[^\s<>"]*)`),
}

// extractUnsubscribeLink prefers the List-Unsubscribe header over
// anything scraped from the body
func extractUnsubscribeLink(content string, metadata map[string]string) string {
	if header, ok := metadata["list_unsubscribe"]; ok {
		if m := listUnsubscribeRe.FindStringSubmatch(header); m != nil {
			return m[1]
		}
	}

	for _, pattern := range unsubscribePatterns {
		if m := pattern.FindStringSubmatch(content); m != nil {
			return m[1]
		}
	}
	return ""
}
