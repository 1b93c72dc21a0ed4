// handlers/team.go
package handlers

import (
	"strconv"

	"loyalty-points-system/middleware"
	"loyalty-points-system/models"
	"loyalty-points-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupTeamRoutes(app *fiber.App, teamService *services.TeamService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Post("/teams", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		result, err := teamService.CreateTeam(userID)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(result)
	})

	secured.Post("/teams/:code/join", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		result, err := teamService.JoinTeam(userID, c.Params("code"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(result)
	})

	secured.Get("/teams/records", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		page, _ := strconv.Atoi(c.Query("page", "1"))
		limit, _ := strconv.Atoi(c.Query("limit", "20"))
		records, err := teamService.GetUserTeamRecords(userID, services.TeamRecordQuery{
			Page:   page,
			Limit:  limit,
			Status: models.TeamStatus(c.Query("status")),
			Role:   models.TeamRole(c.Query("role")),
		})
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(records)
	})

	secured.Get("/teams/:code", func(c *fiber.Ctx) error {
		details, err := teamService.GetTeamDetails(c.Params("code"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(details)
	})
}
