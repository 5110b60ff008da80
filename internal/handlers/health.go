package handlers

import (
	"context"
	"time"

	"fanzvault/internal/repositories"
	"fanzvault/internal/repositories/cache"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const healthTimeout = 2 * time.Second

type HealthHandler struct {
	store repositories.Store
	redis *redis.Client
}

// NewHealthHandler builds the liveness handler. redis may be nil when the
// balance cache is disabled.
func NewHealthHandler(store repositories.Store, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{store: store, redis: redisClient}
}

// HealthCheck pings the database and redis.
func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
	defer cancel()

	status := fiber.StatusOK
	services := fiber.Map{"database": "connected", "redis": "disabled"}

	if err := h.store.Ping(ctx); err != nil {
		services["database"] = "unavailable"
		status = fiber.StatusServiceUnavailable
	}
	if h.redis != nil {
		if err := cache.HealthCheck(ctx, h.redis); err != nil {
			services["redis"] = "unavailable"
			status = fiber.StatusServiceUnavailable
		} else {
			services["redis"] = "connected"
		}
	}

	overall := "ok"
	if status != fiber.StatusOK {
		overall = "degraded"
	}
	return c.Status(status).JSON(fiber.Map{
		"status":   overall,
		"services": services,
	})
}
