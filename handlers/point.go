// handlers/point.go
package handlers

import (
	"strconv"
	"time"

	"loyalty-points-system/middleware"
	"loyalty-points-system/models"
	"loyalty-points-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupPointRoutes(app *fiber.App, ledgerService *services.LedgerService, expireService *services.PointExpireService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Get("/points/balance", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		balance, err := ledgerService.GetBalance(userID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{
			"user_id": userID,
			"balance": balance,
		})
	})

	secured.Get("/points/records", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		page, _ := strconv.Atoi(c.Query("page", "1"))
		limit, _ := strconv.Atoi(c.Query("limit", "20"))
		query := services.RecordQuery{
			Page:     page,
			Limit:    limit,
			Category: models.PointCategory(c.Query("category")),
		}
		if raw := c.Query("start_date"); raw != "" {
			start, err := time.Parse("2006-01-02", raw)
			if err != nil {
				return respondError(c, services.ValidationError("InvalidDate", "start_date must be YYYY-MM-DD"))
			}
			query.StartDate = &start
		}
		if raw := c.Query("end_date"); raw != "" {
			end, err := time.Parse("2006-01-02", raw)
			if err != nil {
				return respondError(c, services.ValidationError("InvalidDate", "end_date must be YYYY-MM-DD"))
			}
			// Inclusive through the end of the requested day.
			end = end.AddDate(0, 0, 1).Add(-time.Nanosecond)
			query.EndDate = &end
		}
		records, err := ledgerService.GetUserRecords(userID, query)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(records)
	})

	secured.Get("/points/expire-dates", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"is_expire_date": expireService.IsExpireDate(),
			"upcoming":       expireService.NextExpireDates(),
		})
	})

	// 🔒 Admin-only routes
	admin := secured.Group("/admin")
	admin.Post("/points/expire", func(c *fiber.Ctx) error {
		result, err := expireService.Sweep()
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(result)
	})
}
