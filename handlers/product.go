// handlers/product.go
package handlers

import (
	"fmt"
	"path/filepath"
	"strconv"

	"loyalty-points-system/middleware"
	"loyalty-points-system/models"
	"loyalty-points-system/services"
	"loyalty-points-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func SetupProductRoutes(app *fiber.App, productService *services.ProductService) {
	// 🔓 Public catalog
	app.Get("/products", func(c *fiber.Ctx) error {
		products, err := productService.ListExchangeable()
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(products)
	})

	// 🔐 Secured routes
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Post("/products/:id/exchange", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		result, err := productService.Exchange(userID, c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(result)
	})

	secured.Get("/products/exchanges", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		page, _ := strconv.Atoi(c.Query("page", "1"))
		limit, _ := strconv.Atoi(c.Query("limit", "20"))
		history, err := productService.GetUserExchanges(userID, page, limit)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(history)
	})

	secured.Patch("/exchanges/:id/used", func(c *fiber.Ctx) error {
		exchange, err := productService.MarkUsed(c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(exchange)
	})

	// 🔒 Admin-only catalog management
	admin := secured.Group("/admin")

	admin.Get("/products", func(c *fiber.Ctx) error {
		products, err := productService.ListProducts(models.ProductStatus(c.Query("status")))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(products)
	})

	admin.Post("/products", func(c *fiber.Ctx) error {
		input, err := parseProductInput(c)
		if err != nil {
			return respondError(c, err)
		}
		product, err := productService.CreateProduct(*input)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(product)
	})

	admin.Put("/products/:id", func(c *fiber.Ctx) error {
		input, err := parseProductInput(c)
		if err != nil {
			return respondError(c, err)
		}
		product, err := productService.UpdateProduct(c.Params("id"), *input)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(product)
	})

	admin.Delete("/products/:id", func(c *fiber.Ctx) error {
		if err := productService.DeleteProduct(c.Params("id")); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"message": "product deleted"})
	})
}

// parseProductInput reads the product fields from either JSON or a
// multipart form. A multipart "image" file is uploaded to R2 and its
// public URL stored on the product.
func parseProductInput(c *fiber.Ctx) (*services.ProductInput, error) {
	var input services.ProductInput

	if form, err := c.MultipartForm(); err == nil && form != nil {
		input.Name = c.FormValue("name")
		input.Description = c.FormValue("description")
		input.Points, _ = strconv.Atoi(c.FormValue("points"))
		input.Status = models.ProductStatus(c.FormValue("status"))

		if files := form.File["image"]; len(files) > 0 {
			key := fmt.Sprintf("products/%s%s", uuid.NewString(), filepath.Ext(files[0].Filename))
			url, err := utils.UploadProductImage(files[0], key)
			if err != nil {
				return nil, fmt.Errorf("image upload failed: %w", err)
			}
			input.ImageURL = url
		}
		return &input, nil
	}

	if err := c.BodyParser(&input); err != nil {
		return nil, services.ValidationError("InvalidPayload", "invalid product payload")
	}
	return &input, nil
}
