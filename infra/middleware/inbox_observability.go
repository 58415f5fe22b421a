package middleware

import (
	"fmt"
	"runtime/debug"
	"time"

	"github.com/Akashdb5/champa-cognitive-ai-inbox/pkg/apperr"
	"github.com/Akashdb5/champa-cognitive-ai-inbox/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// errorEnvelope mirrors the API error response shape
type errorEnvelope struct {
	Success   bool        `json:"success"`
	Error     errorDetail `json:"error"`
	RequestID string      `json:"request_id,omitempty"`
	Timestamp string      `json:"timestamp"`
}

type errorDetail struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorHandler is the centralized fiber error handler. Handlers that
// return errors instead of writing responses end up here.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		requestID, _ := c.Locals("requestid").(string)

		response := errorEnvelope{
			Success:   false,
			RequestID: requestID,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}

		var status int
		switch e := err.(type) {
		case *apperr.AppError:
			status = e.Status
			response.Error = errorDetail{
				Code:    e.Code,
				Message: e.Message,
				Details: e.Details,
			}

			log := logger.Default().
				WithField("request_id", requestID).
				WithField("error_code", e.Code).
				WithError(e.Err)
			if status >= 500 {
				log.Error("Internal error: %s", e.Message)
			} else {
				log.Warn("Client error: %s", e.Message)
			}

		case *fiber.Error:
			status = e.Code
			response.Error = errorDetail{
				Code:    httpStatusCode(e.Code),
				Message: e.Message,
			}

		default:
			status = fiber.StatusInternalServerError
			response.Error = errorDetail{
				Code:    apperr.CodeInternalError,
				Message: "An unexpected error occurred",
			}

			logger.Default().
				WithField("request_id", requestID).
				WithError(err).
				WithField("stack", string(debug.Stack())).
				Error("Unexpected error: %s", err.Error())
		}

		return c.Status(status).JSON(response)
	}
}

// RequestID attaches a unique request ID to each request, honoring an
// incoming X-Request-ID from the edge when present.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Locals("requestid", requestID)
		c.Set("X-Request-ID", requestID)
		return c.Next()
	}
}

// RequestLogger logs each request with timing and outcome
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		requestID, _ := c.Locals("requestid").(string)

		err := c.Next()

		duration := time.Since(start)

		userID := ""
		if uid, ok := c.Locals("user_id").(uuid.UUID); ok {
			userID = uid.String()
		}

		log := logger.Default().WithFields(map[string]any{
			"request_id":  requestID,
			"method":      c.Method(),
			"path":        c.Path(),
			"status":      c.Response().StatusCode(),
			"duration_ms": float64(duration.Microseconds()) / 1000.0,
			"ip":          c.IP(),
		})
		if userID != "" {
			log = log.WithField("user_id", userID)
		}

		status := c.Response().StatusCode()
		switch {
		case status >= 500:
			log.Error("Request failed: %s %s -> %d", c.Method(), c.Path(), status)
		case status >= 400:
			log.Warn("Request error: %s %s -> %d", c.Method(), c.Path(), status)
		default:
			log.Info("Request completed: %s %s -> %d", c.Method(), c.Path(), status)
		}

		return err
	}
}

// Recover converts panics into 500 responses instead of dropped connections
func Recover() fiber.Handler {
	return func(c *fiber.Ctx) error {
		defer func() {
			if r := recover(); r != nil {
				requestID, _ := c.Locals("requestid").(string)

				logger.Default().WithFields(map[string]any{
					"request_id": requestID,
					"panic":      fmt.Sprintf("%v", r),
					"path":       c.Path(),
					"method":     c.Method(),
					"stack":      string(debug.Stack()),
				}).Error("Panic recovered")

				c.Status(fiber.StatusInternalServerError).JSON(errorEnvelope{
					Success:   false,
					RequestID: requestID,
					Timestamp: time.Now().UTC().Format(time.RFC3339),
					Error: errorDetail{
						Code:    apperr.CodeInternalError,
						Message: "An unexpected error occurred",
					},
				})
			}
		}()
		return c.Next()
	}
}

func httpStatusCode(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return apperr.CodeBadRequest
	case fiber.StatusUnauthorized:
		return "UNAUTHORIZED"
	case fiber.StatusNotFound:
		return apperr.CodeNotFound
	case fiber.StatusConflict:
		return apperr.CodeConflict
	case fiber.StatusTooManyRequests:
		return "RATE_LIMITED"
	case fiber.StatusBadGateway, fiber.StatusServiceUnavailable, fiber.StatusGatewayTimeout:
		return "SERVICE_UNAVAILABLE"
	default:
		return apperr.CodeInternalError
	}
}
