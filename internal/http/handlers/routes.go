package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/pkg/errors"

	applog "brewpos/internal/log"
)

// Mount registers the JSON API under r.
func Mount(r fiber.Router, d *Deps) {
	api := r.Group("/api")

	api.Get("/products", d.ProductHandler.List)
	api.Get("/products/:id", d.ProductHandler.Detail)

	availLimiter := limiter.New(limiter.Config{
		Max:        30,
		Expiration: 30 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|avail"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.availability.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	})
	api.Get("/ingredients", d.InventoryHandler.List)
	api.Get("/ingredients/low-stock", d.InventoryHandler.LowStock)
	api.Get("/ingredients/:id/availability", availLimiter, d.InventoryHandler.Check)

	orders := api.Group("/orders", RequireCashier(d.Users))
	orders.Post("/", d.OrderHandler.Place)
	orders.Get("/", d.OrderHandler.List)
	orders.Get("/:id", d.OrderHandler.View)
}

// ErrorHandler logs unexpected errors and answers with a generic JSON body.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	c.Status(code)
	if code >= fiber.StatusInternalServerError {
		applog.Error(c, "server.error", err, nil)
		return c.JSON(fiber.Map{"message": "Something went wrong. Please try again."})
	}
	return c.JSON(fiber.Map{"message": fe.Message})
}
