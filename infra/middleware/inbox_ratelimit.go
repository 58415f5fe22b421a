package middleware

import (
	"fmt"
	"time"

	"github.com/Akashdb5/champa-cognitive-ai-inbox/pkg/ratelimit"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// RateLimit throttles requests per caller using the shared Redis window.
// The key is the authenticated user when present, the client IP otherwise.
func RateLimit(limiter *ratelimit.SlidingWindowLimiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.IP()
		if uid, ok := c.Locals("user_id").(uuid.UUID); ok {
			key = uid.String()
		}

		allowed, wait := limiter.Allow(c.Context(), key)
		if !allowed {
			retryAfter := int(wait / time.Second)
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Set("Retry-After", fmt.Sprintf("%d", retryAfter))
			return c.Status(fiber.StatusTooManyRequests).JSON(errorEnvelope{
				Success:   false,
				Timestamp: time.Now().UTC().Format(time.RFC3339),
				Error: errorDetail{
					Code:    "RATE_LIMITED",
					Message: "Too many requests, slow down",
				},
			})
		}
		return c.Next()
	}
}
