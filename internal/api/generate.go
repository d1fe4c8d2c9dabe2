package api

import (
	"context"

	"github.com/sparknote/ai-gateway/internal/models"
	"github.com/sparknote/ai-gateway/internal/services/usage"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
)

// Dispatcher is the slice of the dispatch service the handler needs.
type Dispatcher interface {
	Generate(ctx context.Context, req *models.GenerationRequest) (*models.GenerationResult, models.DispatchOutcome, error)
}

// UsageRecorder receives the outcome of every dispatch attempt.
type UsageRecorder interface {
	Record(ctx context.Context, outcome models.DispatchOutcome)
}

var _ UsageRecorder = (*usage.Service)(nil)

// GenerateHandler serves POST /v1/generate.
type GenerateHandler struct {
	dispatcher Dispatcher
	recorder   UsageRecorder
}

func NewGenerateHandler(dispatcher Dispatcher, recorder UsageRecorder) *GenerateHandler {
	return &GenerateHandler{
		dispatcher: dispatcher,
		recorder:   recorder,
	}
}

// Generate parses a generation request, dispatches it, and records the
// outcome whether the dispatch succeeded or not.
func (h *GenerateHandler) Generate(c *fiber.Ctx) error {
	var req models.GenerationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Prompt == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "prompt is required",
		})
	}
	if _, err := models.ParseProviderService(string(req.Service)); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unknown service: " + string(req.Service),
		})
	}

	result, outcome, err := h.dispatcher.Generate(c.Context(), &req)
	h.recorder.Record(c.Context(), outcome)

	if err != nil {
		fiberlog.Warnf("Dispatch to %s failed: %v", req.Service, err)
		return writeAppError(c, err)
	}

	return c.JSON(result)
}

// writeAppError maps an AppError to its HTTP status, falling back to 500 for
// anything unclassified. The response body never includes the internal cause.
func writeAppError(c *fiber.Ctx, err error) error {
	sanitized := models.SanitizeError(err)
	return c.Status(sanitized.GetStatusCode()).JSON(fiber.Map{
		"error": sanitized,
	})
}
