// Package middleware provides fiber middleware for the API server.
package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// UserIdentity resolves the caller from the X-User-ID header set by the
// authenticating edge proxy and stores it in fiber locals. Requests
// without a valid identity are rejected.
func UserIdentity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Get("X-User-ID")
		if raw == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   fiber.Map{"code": "UNAUTHORIZED", "message": "missing X-User-ID header"},
			})
		}

		userID, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   fiber.Map{"code": "UNAUTHORIZED", "message": "invalid X-User-ID header"},
			})
		}

		c.Locals("user_id", userID)
		return c.Next()
	}
}
