package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/omnisearch/backend/internal/health"
)

type HealthHandler struct {
	checker *health.Checker
}

func NewHealthHandler(checker *health.Checker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

// HandleHealth reports pass/warn/fail per check. A degraded service
// still answers 200; only unhealthy maps to 503.
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	report := h.checker.Run(c.Context())

	status := fiber.StatusOK
	if report.Status == health.StatusUnhealthy {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(report)
}
