package http

import (
	"github.com/Akashdb5/champa-cognitive-ai-inbox/core/service/message"
	"github.com/Akashdb5/champa-cognitive-ai-inbox/pkg/apperr"

	"github.com/gofiber/fiber/v2"
)

// MessageHandler handles message ingestion and retrieval
type MessageHandler struct {
	messages *message.Service
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(messages *message.Service) *MessageHandler {
	return &MessageHandler{messages: messages}
}

// Register registers message routes
func (h *MessageHandler) Register(router fiber.Router) {
	messages := router.Group("/messages")
	messages.Post("/", h.Ingest)
	messages.Get("/:id", h.Get)
	messages.Post("/:id/reanalyze", h.Reanalyze)

	router.Get("/threads/:thread_id", h.GetThread)
}

// Ingest stores a normalized message and queues its analysis
func (h *MessageHandler) Ingest(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c)
	}

	var req message.IngestRequest
	if err := c.BodyParser(&req); err != nil {
		return AppErrorResponse(c, apperr.BadRequest("invalid request body"))
	}

	msg, err := h.messages.Ingest(c.Context(), userID, &req)
	if err != nil {
		return AppErrorResponse(c, err)
	}
	return CreatedResponse(c, msg)
}

// Get returns a single message
func (h *MessageHandler) Get(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c)
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return AppErrorResponse(c, err)
	}

	msg, err := h.messages.GetMessage(c.Context(), id, userID)
	if err != nil {
		return AppErrorResponse(c, err)
	}
	return SuccessResponse(c, msg)
}

// Reanalyze queues a fresh analysis for a message
func (h *MessageHandler) Reanalyze(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c)
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return AppErrorResponse(c, err)
	}

	if err := h.messages.QueueReanalysis(c.Context(), id, userID); err != nil {
		return AppErrorResponse(c, err)
	}
	return SuccessResponse(c, fiber.Map{"queued": true})
}

// GetThread returns a conversation, oldest first
func (h *MessageHandler) GetThread(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c)
	}

	messages, err := h.messages.GetThread(c.Context(), userID, c.Params("thread_id"))
	if err != nil {
		return AppErrorResponse(c, err)
	}
	return SuccessResponse(c, fiber.Map{"messages": messages, "count": len(messages)})
}
