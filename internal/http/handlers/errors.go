package handlers

import (
	"brewpos/internal/domain"
	applog "brewpos/internal/log"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
)

// writeOrderError maps a checkout failure to its HTTP response.
func writeOrderError(c *fiber.Ctx, err error) error {
	var oe *domain.OrderError
	if !errors.As(err, &oe) {
		oe = domain.TransactionFailure(err)
	}

	fields := map[string]any{"kind": string(oe.Kind)}
	if oe.Line != domain.NoLine {
		fields["line"] = oe.Line + 1
	}
	if oe.ProductID != 0 {
		fields["product_id"] = oe.ProductID
	}

	switch {
	case oe.Kind == domain.KindTransactionFailure:
		c.Status(fiber.StatusInternalServerError)
		applog.Error(c, "order.place.fail", oe.Err, fields)
		return c.JSON(fiber.Map{"message": oe.Message, "kind": oe.Kind})
	case oe.Kind == domain.KindDuplicateRequest:
		c.Status(fiber.StatusConflict)
		applog.Security(c, "order.place.fail", fields)
		return c.JSON(fiber.Map{"message": oe.Message, "kind": oe.Kind})
	default:
		c.Status(fiber.StatusUnprocessableEntity)
		fields["message"] = oe.Message
		applog.Security(c, "order.place.fail", fields)
		body := fiber.Map{
			"message": "Order failed.",
			"kind":    oe.Kind,
			"errors":  fiber.Map{"items": []string{oe.Message}},
		}
		if oe.Line != domain.NoLine {
			body["line"] = oe.Line + 1
		}
		return c.JSON(body)
	}
}

// fieldError answers a request that failed input validation before
// reaching checkout.
func fieldError(c *fiber.Ctx, field, msg string) error {
	applog.Security(c, "validation.fail", map[string]any{"field": field})
	return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
		"message": "Order failed.",
		"errors":  fiber.Map{field: []string{msg}},
	})
}
