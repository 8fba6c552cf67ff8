package handlers

import (
	"github.com/gofiber/fiber/v3"
)

// ============================================================
// Health Check Handlers
// ============================================================

func LivenessProbe(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "alive",
	})
}

// ReadinessProbe reports ready once check passes; a nil check always passes.
func ReadinessProbe(check func() error) fiber.Handler {
	return func(c fiber.Ctx) error {
		if check != nil {
			if err := check(); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"status": "unavailable",
					"error":  err.Error(),
				})
			}
		}
		return c.JSON(fiber.Map{
			"status": "ready",
		})
	}
}

func RegisterHealth(r fiber.Router, ready func() error) {
	r.Get("/health/live", LivenessProbe)
	r.Get("/health/ready", ReadinessProbe(ready))
}
