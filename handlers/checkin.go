// handlers/checkin.go
package handlers

import (
	"loyalty-points-system/middleware"
	"loyalty-points-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupCheckinRoutes(app *fiber.App, checkinService *services.CheckinService) {
	// 🔐 Secured routes — require user context (userID), enforced via middleware
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Get("/checkin/info", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		info, err := checkinService.GetCheckinInfo(userID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(info)
	})

	secured.Post("/checkin", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		result, err := checkinService.Checkin(userID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(result)
	})

	// 🔒 Admin-only routes
	admin := secured.Group("/admin")
	admin.Post("/checkin/cycles/generate", func(c *fiber.Ctx) error {
		if err := checkinService.GenerateWeeklyCycles(); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"message": "weekly cycles generated"})
	})
}
