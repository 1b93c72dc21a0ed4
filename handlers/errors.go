// handlers/errors.go
package handlers

import (
	"errors"

	"loyalty-points-system/services"

	"github.com/gofiber/fiber/v2"
)

// respondError maps a service error to its HTTP status. Unclassified
// errors surface as 500 with the cause attached, matching how the rest
// of the platform's services report failures.
func respondError(c *fiber.Ctx, err error) error {
	var svcErr *services.Error
	if errors.As(err, &svcErr) {
		status := fiber.StatusInternalServerError
		switch svcErr.Kind {
		case services.KindValidation:
			status = fiber.StatusBadRequest
		case services.KindNotFound:
			status = fiber.StatusNotFound
		case services.KindConflict:
			status = fiber.StatusConflict
		case services.KindInsufficientBalance:
			status = fiber.StatusUnprocessableEntity
		case services.KindResourceExhausted:
			status = fiber.StatusServiceUnavailable
		}
		return c.Status(status).JSON(fiber.Map{
			"error": svcErr.Message,
			"code":  svcErr.Code,
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "internal error",
		"cause": err.Error(),
	})
}
