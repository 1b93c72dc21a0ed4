// handlers/user.go
package handlers

import (
	"loyalty-points-system/middleware"
	"loyalty-points-system/models"
	"loyalty-points-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(app *fiber.App, userService *services.UserService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	// First-contact endpoint: creates the local user row if needed and
	// refreshes last login.
	secured.Get("/users/me", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		user, err := userService.EnsureUser(userID, c.Get("X-User-Name"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(user)
	})

	// 🔒 Admin-only routes
	admin := secured.Group("/admin")
	admin.Patch("/users/:id/status", func(c *fiber.Ctx) error {
		var req struct {
			Status models.UserStatus `json:"status"`
		}
		if err := c.BodyParser(&req); err != nil {
			return respondError(c, services.ValidationError("InvalidPayload", "invalid status payload"))
		}
		if req.Status != models.UserStatusActive && req.Status != models.UserStatusDeactivated {
			return respondError(c, services.ValidationError("InvalidStatus", "status must be active or deactivated"))
		}
		user, err := userService.SetStatus(c.Params("id"), req.Status)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(user)
	})
}
