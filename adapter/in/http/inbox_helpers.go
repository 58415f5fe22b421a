// Package http provides the fiber API surface over the core services.
package http

import (
	"errors"
	"time"

	"github.com/Akashdb5/champa-cognitive-ai-inbox/pkg/apperr"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var ErrUnauthorized = errors.New("unauthorized")

// GetUserID extracts the authenticated user id from fiber locals
func GetUserID(c *fiber.Ctx) (uuid.UUID, error) {
	userIDVal := c.Locals("user_id")
	if userIDVal == nil {
		return uuid.Nil, ErrUnauthorized
	}
	userID, ok := userIDVal.(uuid.UUID)
	if !ok {
		return uuid.Nil, ErrUnauthorized
	}
	return userID, nil
}

// APIResponse is the standard response envelope
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// APIError is the standard error shape
type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// SuccessResponse sends a standardized JSON success response
func SuccessResponse(c *fiber.Ctx, data any) error {
	requestID, _ := c.Locals("requestid").(string)
	return c.JSON(APIResponse{
		Success:   true,
		Data:      data,
		RequestID: requestID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// CreatedResponse sends a 201 success response
func CreatedResponse(c *fiber.Ctx, data any) error {
	c.Status(fiber.StatusCreated)
	return SuccessResponse(c, data)
}

// AppErrorResponse maps an error to the standard envelope. Unknown
// errors become opaque 500s.
func AppErrorResponse(c *fiber.Ctx, err error) error {
	appErr := apperr.AsAppError(err)
	requestID, _ := c.Locals("requestid").(string)
	return c.Status(appErr.Status).JSON(APIResponse{
		Success:   false,
		Error:     &APIError{Code: appErr.Code, Message: appErr.Message, Details: appErr.Details},
		RequestID: requestID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// UnauthorizedResponse sends a 401 in the standard envelope
func UnauthorizedResponse(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(APIResponse{
		Success:   false,
		Error:     &APIError{Code: "UNAUTHORIZED", Message: "missing or invalid user identity"},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// parseIDParam parses a uuid path parameter
func parseIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperr.InvalidInput(name, "must be a UUID")
	}
	return id, nil
}
