package handlers

import (
	"brewpos/internal/log"
	"brewpos/internal/repos"
	"brewpos/internal/services"
	"brewpos/internal/validate"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

// List returns active products; ?status=all includes inactive ones.
func (h *ProductHandler) List(c *fiber.Ctx) error {
	products, err := h.Catalog.ListProducts(c.UserContext(), c.Query("status") != "all")
	if err != nil {
		return err
	}
	out := make([]productView, 0, len(products))
	for _, p := range products {
		out = append(out, toProductView(p, false))
	}
	return c.JSON(fiber.Map{"data": out})
}

func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "product"})
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Product not found."})
	}
	p, err := h.Catalog.GetProduct(c.UserContext(), id)
	if errors.Is(err, repos.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Product not found."})
	}
	if err != nil {
		return err
	}
	return c.JSON(toProductView(p, true))
}
