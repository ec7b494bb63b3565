package handlers

import (
	"brewpos/internal/domain"
	applog "brewpos/internal/log"
	"brewpos/internal/repos"
	"brewpos/internal/validate"

	"github.com/gofiber/fiber/v2"
)

// CashierHeader carries the id of the cashier ringing up the sale. Session
// handling lives in front of this service.
const CashierHeader = "X-Cashier-ID"

// RequireCashier resolves the acting user from CashierHeader. Cashiers and
// admins may both place orders.
func RequireCashier(users *repos.UserRepo) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Get(CashierHeader)
		id, ok := validate.ID(raw)
		if !ok {
			applog.Security(c, "access.denied.cashier", map[string]any{"cashier": raw})
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthenticated."})
		}
		u, err := users.ByID(c.UserContext(), id)
		if err != nil || !u.Active() || (u.Role != domain.RoleCashier && u.Role != domain.RoleAdmin) {
			applog.Security(c, "access.denied.cashier", map[string]any{"cashier": id})
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthenticated."})
		}
		c.Locals("cashier", u)
		c.Locals("cashier_id", u.ID)
		return c.Next()
	}
}

func currentCashier(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals("cashier").(*domain.User)
	return u
}
