// Package middleware holds the fiber handlers that wrap the route tree.
package middleware

import (
	"strings"

	"github.com/sparknote/ai-gateway/internal/services/auth"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
)

const identityLocalsKey = "auth_identity"

// AuthMiddleware authenticates bearer tokens against the configured provider.
type AuthMiddleware struct {
	provider auth.Provider
	enabled  bool
}

// NewAuthMiddleware builds the middleware. A nil provider disables
// authentication entirely, which is only appropriate for local development.
func NewAuthMiddleware(provider auth.Provider) *AuthMiddleware {
	if provider == nil {
		fiberlog.Warn("No auth provider configured, admin routes are unprotected")
	}
	return &AuthMiddleware{
		provider: provider,
		enabled:  provider != nil,
	}
}

// RequireAdmin rejects requests without a valid token belonging to an admin.
func (m *AuthMiddleware) RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !m.enabled {
			return c.Next()
		}

		token := extractBearerToken(c)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}

		identity, err := m.provider.VerifyToken(c.Context(), token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		if !identity.Admin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "This operation requires the admin role",
			})
		}

		c.Locals(identityLocalsKey, identity)
		return c.Next()
	}
}

// GetIdentity returns the authenticated identity stored by RequireAdmin.
func GetIdentity(c *fiber.Ctx) (*auth.Identity, bool) {
	identity, ok := c.Locals(identityLocalsKey).(*auth.Identity)
	return identity, ok
}

func extractBearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
