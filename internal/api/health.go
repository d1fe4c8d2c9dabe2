package api

import (
	"context"
	"time"

	"github.com/sparknote/ai-gateway/internal/services/database"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	db          *database.DB
	redisClient *redis.Client
}

// NewHealthHandler creates a new health check handler. redisClient may be nil
// when no cache is configured.
func NewHealthHandler(db *database.DB, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{
		db:          db,
		redisClient: redisClient,
	}
}

// HealthCheck returns the health status of the service and its dependencies.
// A down database degrades the service; a down Redis does not, since the
// gateway runs without it.
func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	dbStatus := h.checkDatabase()
	redisStatus := h.checkRedis()

	overallStatus := "healthy"
	statusCode := fiber.StatusOK
	if dbStatus != "healthy" {
		overallStatus = "degraded"
		statusCode = fiber.StatusServiceUnavailable
	}

	return c.Status(statusCode).JSON(fiber.Map{
		"status":    overallStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
	})
}

func (h *HealthHandler) checkDatabase() string {
	if err := h.db.Ping(); err != nil {
		return "unhealthy"
	}
	return "healthy"
}

func (h *HealthHandler) checkRedis() string {
	if h.redisClient == nil {
		return "disabled"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := h.redisClient.Ping(ctx).Err(); err != nil {
		return "unhealthy"
	}
	return "healthy"
}
