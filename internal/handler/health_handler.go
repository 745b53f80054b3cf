package handler

import (
	"context"
	"time"

	"quizbot/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// HealthCheck is a named dependency probe.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type HealthHandler struct {
	checks []HealthCheck
}

func NewHealthHandler(checks ...HealthCheck) *HealthHandler {
	return &HealthHandler{checks: checks}
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status := fiber.StatusOK
	result := fiber.Map{}
	for _, hc := range h.checks {
		if err := hc.Check(ctx); err != nil {
			logger.Get().Warn("Health check failed", zap.String("check", hc.Name), zap.Error(err))
			result[hc.Name] = err.Error()
			status = fiber.StatusServiceUnavailable
			continue
		}
		result[hc.Name] = "ok"
	}
	return c.Status(status).JSON(fiber.Map{"status": status == fiber.StatusOK, "checks": result})
}
