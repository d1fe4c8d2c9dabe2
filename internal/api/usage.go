package api

import (
	"github.com/sparknote/ai-gateway/internal/services/usage"

	"github.com/gofiber/fiber/v2"
)

// UsageHandler serves the /admin/usage-logs analytics surface.
type UsageHandler struct {
	usageService *usage.Service
}

func NewUsageHandler(usageService *usage.Service) *UsageHandler {
	return &UsageHandler{
		usageService: usageService,
	}
}

// List returns usage logs newest first, optionally filtered by provider.
func (h *UsageHandler) List(c *fiber.Ctx) error {
	filter := usage.ListFilter{
		Provider: c.Query("provider"),
		Limit:    queryInt(c, "limit", 0),
		Offset:   queryInt(c, "offset", 0),
	}

	logs, total, err := h.usageService.List(c.Context(), filter)
	if err != nil {
		return writeAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"logs":  logs,
		"total": total,
	})
}

// Stats returns aggregate request and token counts.
func (h *UsageHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.usageService.Stats(c.Context(), c.Query("provider"))
	if err != nil {
		return writeAppError(c, err)
	}
	return c.JSON(stats)
}
