package api

import (
	"strconv"

	"github.com/sparknote/ai-gateway/internal/models"
	"github.com/sparknote/ai-gateway/internal/services/credential"

	"github.com/gofiber/fiber/v2"
)

// ProviderKeyHandler serves the /admin/provider-keys management surface.
type ProviderKeyHandler struct {
	credentials *credential.Service
}

func NewProviderKeyHandler(credentials *credential.Service) *ProviderKeyHandler {
	return &ProviderKeyHandler{
		credentials: credentials,
	}
}

// Create registers a new key. Keys start inactive; the response echoes the
// secret exactly once so the caller can copy it, and never again from List
// or Get.
func (h *ProviderKeyHandler) Create(c *fiber.Ctx) error {
	var req models.ProviderKeyCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	key, err := h.credentials.Create(c.Context(), &req)
	if err != nil {
		return writeAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"key":    key,
		"secret": req.Secret,
	})
}

// List returns all keys without secrets.
func (h *ProviderKeyHandler) List(c *fiber.Ctx) error {
	limit := queryInt(c, "limit", 50)
	offset := queryInt(c, "offset", 0)

	keys, total, err := h.credentials.List(c.Context(), limit, offset)
	if err != nil {
		return writeAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"keys":  keys,
		"total": total,
	})
}

// Get returns one key without its secret.
func (h *ProviderKeyHandler) Get(c *fiber.Ctx) error {
	key, err := h.credentials.Get(c.Context(), c.Params("id"))
	if err != nil {
		return writeAppError(c, err)
	}
	return c.JSON(key)
}

// RevealSecret returns the stored secret on explicit demand, for copying
// into a clipboard. This is the only read path that exposes it.
func (h *ProviderKeyHandler) RevealSecret(c *fiber.Ctx) error {
	secret, err := h.credentials.RevealSecret(c.Context(), c.Params("id"))
	if err != nil {
		return writeAppError(c, err)
	}
	return c.JSON(secret)
}

// Activate makes a key the single active credential for its service.
// Concurrent activations of sibling keys resolve to one winner; the loser
// receives a conflict.
func (h *ProviderKeyHandler) Activate(c *fiber.Ctx) error {
	if err := h.credentials.Activate(c.Context(), c.Params("id")); err != nil {
		return writeAppError(c, err)
	}

	key, err := h.credentials.Get(c.Context(), c.Params("id"))
	if err != nil {
		return writeAppError(c, err)
	}
	return c.JSON(key)
}

// Delete removes a key. Deleting the active key leaves its service with no
// credential rather than silently promoting another.
func (h *ProviderKeyHandler) Delete(c *fiber.Ctx) error {
	if err := h.credentials.Delete(c.Context(), c.Params("id")); err != nil {
		return writeAppError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func queryInt(c *fiber.Ctx, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val < 0 {
		return fallback
	}
	return val
}
