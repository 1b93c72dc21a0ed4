// handlers/time_control.go
package handlers

import (
	"time"

	"loyalty-points-system/middleware"
	"loyalty-points-system/services"

	"github.com/gofiber/fiber/v2"
)

// SetupTimeControlRoutes exposes the virtual-clock controls. The service
// rejects every mutation unless TIME_CONTROL_ENABLED is set, so these
// routes are inert in production.
func SetupTimeControlRoutes(app *fiber.App, timeService *services.TimeService) {
	admin := app.Group("/admin", middleware.UserContextMiddleware())

	admin.Get("/time", func(c *fiber.Ctx) error {
		return c.JSON(timeService.Status())
	})

	admin.Post("/time/set", func(c *fiber.Ctx) error {
		var req struct {
			Time string `json:"time"`
		}
		if err := c.BodyParser(&req); err != nil {
			return respondError(c, services.ValidationError("InvalidPayload", "invalid time payload"))
		}
		target, err := time.Parse(time.RFC3339, req.Time)
		if err != nil {
			return respondError(c, services.ValidationError("InvalidTime", "time must be RFC3339"))
		}
		if err := timeService.SetTime(target); err != nil {
			return respondError(c, err)
		}
		return c.JSON(timeService.Status())
	})

	admin.Post("/time/forward", func(c *fiber.Ctx) error {
		var req struct {
			Duration string `json:"duration"`
		}
		if err := c.BodyParser(&req); err != nil {
			return respondError(c, services.ValidationError("InvalidPayload", "invalid duration payload"))
		}
		d, err := time.ParseDuration(req.Duration)
		if err != nil || d <= 0 {
			return respondError(c, services.ValidationError("InvalidDuration", "duration must be a positive Go duration"))
		}
		if err := timeService.FastForward(d); err != nil {
			return respondError(c, err)
		}
		return c.JSON(timeService.Status())
	})

	admin.Post("/time/reset", func(c *fiber.Ctx) error {
		if err := timeService.Reset(); err != nil {
			return respondError(c, err)
		}
		return c.JSON(timeService.Status())
	})
}
