package http

import (
	"github.com/Akashdb5/champa-cognitive-ai-inbox/core/service/ai"
	"github.com/Akashdb5/champa-cognitive-ai-inbox/core/service/message"

	"github.com/gofiber/fiber/v2"
)

// AIHandler exposes analysis results, actionables and semantic search
type AIHandler struct {
	ai       *ai.Service
	messages *message.Service
}

// NewAIHandler creates a new AIHandler
func NewAIHandler(aiService *ai.Service, messages *message.Service) *AIHandler {
	return &AIHandler{ai: aiService, messages: messages}
}

// Register registers AI routes
func (h *AIHandler) Register(router fiber.Router) {
	messages := router.Group("/messages")
	messages.Post("/:id/analyze", h.Analyze)
	messages.Get("/:id/analysis", h.GetAnalysis)
	messages.Delete("/:id", h.DeleteMessageData)

	router.Get("/actionables", h.ListActionables)
	router.Post("/actionables/:id/complete", h.CompleteActionable)

	router.Get("/search", h.Search)

	router.Delete("/users/me/data", h.DeleteUserData)
}

// Analyze runs analysis synchronously and returns the result
func (h *AIHandler) Analyze(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c)
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return AppErrorResponse(c, err)
	}

	analysis, err := h.ai.AnalyzeMessageByID(c.Context(), id, userID)
	if err != nil {
		return AppErrorResponse(c, err)
	}
	return SuccessResponse(c, analysis)
}

// GetAnalysis returns the stored analysis for a message
func (h *AIHandler) GetAnalysis(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c)
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return AppErrorResponse(c, err)
	}

	// ownership gate before touching analysis data
	if _, err := h.messages.GetMessage(c.Context(), id, userID); err != nil {
		return AppErrorResponse(c, err)
	}

	analysis, err := h.ai.GetMessageAnalysis(c.Context(), id)
	if err != nil {
		return AppErrorResponse(c, err)
	}
	return SuccessResponse(c, analysis)
}

// DeleteMessageData removes a message's analysis and embedding
func (h *AIHandler) DeleteMessageData(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c)
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return AppErrorResponse(c, err)
	}

	if _, err := h.messages.GetMessage(c.Context(), id, userID); err != nil {
		return AppErrorResponse(c, err)
	}
	if err := h.ai.DeleteMessageData(c.Context(), id); err != nil {
		return AppErrorResponse(c, err)
	}
	return SuccessResponse(c, fiber.Map{"deleted": true})
}

// ListActionables lists the user's actionable items
func (h *AIHandler) ListActionables(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c)
	}

	var completed *bool
	if v := c.Query("completed"); v != "" {
		b := v == "true" || v == "1"
		completed = &b
	}
	limit := c.QueryInt("limit", 50)

	items, err := h.ai.UserActionables(c.Context(), userID, completed, limit)
	if err != nil {
		return AppErrorResponse(c, err)
	}
	return SuccessResponse(c, fiber.Map{"actionables": items, "count": len(items)})
}

// CompleteActionable marks an actionable item done
func (h *AIHandler) CompleteActionable(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c)
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return AppErrorResponse(c, err)
	}

	if err := h.ai.CompleteActionable(c.Context(), id, userID); err != nil {
		return AppErrorResponse(c, err)
	}
	return SuccessResponse(c, fiber.Map{"completed": true})
}

// Search runs semantic search over the user's messages
func (h *AIHandler) Search(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c)
	}

	results, err := h.ai.SemanticSearch(c.Context(), userID, c.Query("q"), c.QueryInt("limit", 0))
	if err != nil {
		return AppErrorResponse(c, err)
	}
	return SuccessResponse(c, fiber.Map{"results": results, "count": len(results)})
}

// DeleteUserData removes all derived data for the caller. The learned
// persona is only removed when include_persona=true is passed.
func (h *AIHandler) DeleteUserData(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c)
	}
	includePersona := c.QueryBool("include_persona")

	if err := h.ai.DeleteUserData(c.Context(), userID, includePersona); err != nil {
		return AppErrorResponse(c, err)
	}
	return SuccessResponse(c, fiber.Map{"deleted": true, "persona_deleted": includePersona})
}
