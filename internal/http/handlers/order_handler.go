package handlers

import (
	"math"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"brewpos/internal/domain"
	applog "brewpos/internal/log"
	"brewpos/internal/repos"
	"brewpos/internal/services"
	"brewpos/internal/validate"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// IdempotencyHeader holds an optional client-generated UUID.
const IdempotencyHeader = "Idempotency-Key"

type OrderHandler struct {
	Order *services.OrderService
}

type addonReq struct {
	Name  string              `json:"name"`
	Price decimal.NullDecimal `json:"price"`
}

type lineReq struct {
	ProductID int64           `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	Size      string          `json:"size"`
	Addons    []addonReq      `json:"addons"`
}

type placeReq struct {
	PaymentMethod string    `json:"payment_method"`
	Items         []lineReq `json:"items"`
}

// quantity keeps positive whole numbers; anything else becomes 0 so checkout
// rejects the line as an invalid quantity.
func quantity(d decimal.Decimal) int {
	if !d.IsInteger() || d.GreaterThan(decimal.NewFromInt(math.MaxInt32)) || d.LessThan(decimal.Zero) {
		return 0
	}
	return int(d.IntPart())
}

func (h *OrderHandler) Place(c *fiber.Ctx) error {
	var req placeReq
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		applog.Security(c, "validation.fail", map[string]any{"field": "body"})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Malformed request body."})
	}

	pm, ok := validate.PaymentMethod(req.PaymentMethod)
	if !ok {
		return fieldError(c, "payment_method", "The payment method must be 1-50 letters, digits, spaces, dots, dashes or underscores.")
	}
	key, ok := validate.IdempotencyKey(c.Get(IdempotencyHeader))
	if !ok {
		return fieldError(c, "idempotency_key", "The Idempotency-Key header must be a UUID.")
	}

	lines := make([]domain.CartLine, 0, len(req.Items))
	for _, it := range req.Items {
		size, ok := validate.Size(it.Size)
		if !ok {
			return fieldError(c, "size", "The size label is invalid.")
		}
		line := domain.CartLine{ProductID: it.ProductID, Quantity: quantity(it.Quantity), Size: size}
		for _, a := range it.Addons {
			// a missing or null price is a free add-on
			price := decimal.Zero
			if a.Price.Valid {
				price = a.Price.Decimal
			}
			line.Addons = append(line.Addons, domain.AddonSelection{Name: a.Name, Price: price})
		}
		lines = append(lines, line)
	}

	order, replayed, err := h.Order.CreateOrder(c.UserContext(), services.OrderRequest{
		Cashier:        currentCashier(c),
		Lines:          lines,
		PaymentMethod:  pm,
		IdempotencyKey: key,
	})
	if err != nil {
		return writeOrderError(c, err)
	}

	if replayed {
		applog.Info(c, "order.replay", map[string]any{"order_id": order.ID})
		return c.Status(fiber.StatusOK).JSON(toOrderView(order))
	}
	c.Status(fiber.StatusCreated)
	applog.Audit(c, "order.place", map[string]any{
		"order_id":       order.ID,
		"total":          money(order.TotalAmount),
		"lines":          len(order.Items),
		"payment_method": order.PaymentMethod,
	})
	return c.JSON(toOrderView(order))
}

func (h *OrderHandler) View(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Order not found."})
	}
	o, err := h.Order.Get(c.UserContext(), id)
	if errors.Is(err, repos.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Order not found."})
	}
	if err != nil {
		return err
	}
	return c.JSON(toOrderView(o))
}

func (h *OrderHandler) List(c *fiber.Ctx) error {
	orders, err := h.Order.List(c.UserContext(), validate.Limit(c.Query("limit"), 50, 200))
	if err != nil {
		return err
	}
	out := make([]orderView, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderView(o))
	}
	return c.JSON(fiber.Map{"data": out})
}
