package http

import (
	"github.com/Akashdb5/champa-cognitive-ai-inbox/core/service/reply"
	"github.com/Akashdb5/champa-cognitive-ai-inbox/pkg/apperr"

	"github.com/gofiber/fiber/v2"
)

// ReplyHandler drives the smart reply lifecycle
type ReplyHandler struct {
	replies *reply.Service
}

// NewReplyHandler creates a new ReplyHandler
func NewReplyHandler(replies *reply.Service) *ReplyHandler {
	return &ReplyHandler{replies: replies}
}

// Register registers reply routes
func (h *ReplyHandler) Register(router fiber.Router) {
	router.Post("/messages/:id/replies", h.Generate)

	replies := router.Group("/replies")
	replies.Get("/pending", h.Pending)
	replies.Get("/:id", h.Get)
	replies.Put("/:id", h.Edit)
	replies.Post("/:id/approve", h.Approve)
	replies.Post("/:id/reject", h.Reject)
	replies.Post("/:id/promote", h.Promote)
}

// Generate drafts a smart reply for a message
func (h *ReplyHandler) Generate(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c)
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return AppErrorResponse(c, err)
	}

	draft, err := h.replies.GenerateSmartReply(c.Context(), id, userID)
	if err != nil {
		return AppErrorResponse(c, err)
	}
	return CreatedResponse(c, draft)
}

// Pending lists drafts awaiting review
func (h *ReplyHandler) Pending(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c)
	}

	replies, err := h.replies.PendingReplies(c.Context(), userID, c.QueryInt("limit", 0))
	if err != nil {
		return AppErrorResponse(c, err)
	}
	return SuccessResponse(c, fiber.Map{"replies": replies, "count": len(replies)})
}

// Get returns a single reply
func (h *ReplyHandler) Get(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c)
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return AppErrorResponse(c, err)
	}

	r, err := h.replies.GetReply(c.Context(), id, userID)
	if err != nil {
		return AppErrorResponse(c, err)
	}
	return SuccessResponse(c, r)
}

type editReplyRequest struct {
	Content string `json:"content"`
}

// Edit replaces the draft content of a pending reply
func (h *ReplyHandler) Edit(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c)
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return AppErrorResponse(c, err)
	}

	var req editReplyRequest
	if err := c.BodyParser(&req); err != nil {
		return AppErrorResponse(c, apperr.BadRequest("invalid request body"))
	}

	r, err := h.replies.EditReply(c.Context(), id, userID, req.Content)
	if err != nil {
		return AppErrorResponse(c, err)
	}
	return SuccessResponse(c, r)
}

// Approve approves a draft and sends it
func (h *ReplyHandler) Approve(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c)
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return AppErrorResponse(c, err)
	}

	r, err := h.replies.ApproveReply(c.Context(), id, userID)
	if err != nil {
		return AppErrorResponse(c, err)
	}
	return SuccessResponse(c, r)
}

// Reject discards a pending draft
func (h *ReplyHandler) Reject(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c)
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return AppErrorResponse(c, err)
	}

	r, err := h.replies.RejectReply(c.Context(), id, userID)
	if err != nil {
		return AppErrorResponse(c, err)
	}
	return SuccessResponse(c, r)
}

// Promote turns an automatic suggestion into a pending draft
func (h *ReplyHandler) Promote(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c)
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return AppErrorResponse(c, err)
	}

	r, err := h.replies.PromoteSuggestion(c.Context(), id, userID)
	if err != nil {
		return AppErrorResponse(c, err)
	}
	return SuccessResponse(c, r)
}
