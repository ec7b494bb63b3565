package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"brewpos/internal/domain"
	"brewpos/internal/log"
	"brewpos/internal/repos"
	"brewpos/internal/services"
	"brewpos/internal/validate"
)

type InventoryHandler struct {
	Inv *services.InventoryService
}

func ingredientViews(rows []domain.Ingredient) []ingredientView {
	out := make([]ingredientView, 0, len(rows))
	for _, i := range rows {
		out = append(out, toIngredientView(i))
	}
	return out
}

func (h *InventoryHandler) List(c *fiber.Ctx) error {
	rows, err := h.Inv.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ingredientViews(rows)})
}

func (h *InventoryHandler) LowStock(c *fiber.Ctx) error {
	rows, err := h.Inv.LowStock(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ingredientViews(rows)})
}

func (h *InventoryHandler) Check(c *fiber.Ctx) error {
	// Validate ingredient id
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "ingredient"})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "enter a valid ingredient id",
		})
	}

	avail, err := h.Inv.CheckAvailability(c.UserContext(), id)
	if errors.Is(err, repos.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "ingredient not found",
		})
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"status": avail.Status,
		"stock":  avail.Stock.String(),
		"unit":   avail.Unit,
	})
}
