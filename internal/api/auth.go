package api

import (
	"github.com/sparknote/ai-gateway/internal/services/auth"
	"github.com/sparknote/ai-gateway/internal/services/middleware"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler serves the session-lifecycle admin endpoints.
type AuthHandler struct {
	adminCache *auth.StatusCache
}

func NewAuthHandler(adminCache *auth.StatusCache) *AuthHandler {
	return &AuthHandler{adminCache: adminCache}
}

// SignOut drops the caller's cached admin verdict so a role change takes
// effect on the next request instead of after the cache TTL.
func (h *AuthHandler) SignOut(c *fiber.Ctx) error {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	if h.adminCache != nil {
		h.adminCache.Invalidate(c.Context(), identity.UserID)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
