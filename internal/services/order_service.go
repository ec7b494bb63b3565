package services

import (
	"context"
	"strconv"
	"strings"
	"time"

	"brewpos/internal/domain"
	"brewpos/internal/events"
	applog "brewpos/internal/log"
	"brewpos/internal/repos"
	"brewpos/internal/validate"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// CatalogReader loads a product with its recipe and add-ons through q.
type CatalogReader interface {
	ProductWithRecipe(ctx context.Context, q repos.Queryer, id int64) (domain.Product, error)
}

// InventoryStore locks ingredient rows and decrements their stock.
type InventoryStore interface {
	LockForUpdate(ctx context.Context, tx repos.Queryer, ids []int64) (map[int64]domain.Ingredient, error)
	Decrement(ctx context.Context, tx repos.Queryer, id int64, by decimal.Decimal) error
}

type OrderStore interface {
	Create(ctx context.Context, tx repos.Queryer, o *domain.Order) error
	InsertItem(ctx context.Context, tx repos.Queryer, it *domain.OrderItem) error
	InsertAddon(ctx context.Context, tx repos.Queryer, a *domain.OrderItemAddon) error
	SetTotal(ctx context.Context, tx repos.Queryer, orderID int64, total decimal.Decimal) error
	Get(ctx context.Context, orderID int64) (domain.Order, error)
	ListLatest(ctx context.Context, limit int) ([]domain.Order, error)
}

// IdempotencyStore maps a client-supplied key to the order it created.
type IdempotencyStore interface {
	Claim(ctx context.Context, key string) (orderID int64, claimed bool, err error)
	Complete(ctx context.Context, key string, orderID int64) error
	Release(ctx context.Context, key string) error
}

type OrderService struct {
	DB      *sqlx.DB
	Catalog CatalogReader
	Inv     InventoryStore
	Orders  OrderStore
	Idem    IdempotencyStore // optional
	Events  events.Publisher // optional

	Timeout      time.Duration
	StrictAddons bool
}

func NewOrderService(db *sqlx.DB, catalog CatalogReader, inv InventoryStore, orders OrderStore) *OrderService {
	return &OrderService{DB: db, Catalog: catalog, Inv: inv, Orders: orders, Events: events.Nop{}}
}

type OrderRequest struct {
	Cashier        *domain.User
	Lines          []domain.CartLine
	PaymentMethod  string
	IdempotencyKey string
}

// CreateOrder validates the cart, then in one transaction locks the needed
// ingredients, prices every line, writes the order graph and decrements
// stock. Any failure leaves no order and no stock change behind.
//
// replayed is true when the idempotency key already produced an order; that
// order is returned unchanged.
func (s *OrderService) CreateOrder(ctx context.Context, req OrderRequest) (order domain.Order, replayed bool, err error) {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	if req.Cashier == nil {
		return domain.Order{}, false, domain.TransactionFailure(errors.New("no cashier on request"))
	}
	if len(req.Lines) == 0 {
		return domain.Order{}, false, domain.NewOrderError(domain.KindEmptyCart, domain.NoLine, 0, "Cart is empty.")
	}

	if req.IdempotencyKey != "" && s.Idem != nil {
		prev, claimed, cerr := s.Idem.Claim(ctx, req.IdempotencyKey)
		if cerr != nil {
			return domain.Order{}, false, domain.TransactionFailure(cerr)
		}
		if !claimed {
			if prev == 0 {
				return domain.Order{}, false, domain.NewOrderError(domain.KindDuplicateRequest, domain.NoLine, 0,
					"A request with this idempotency key is still being processed.")
			}
			o, gerr := s.Orders.Get(ctx, prev)
			if gerr != nil {
				return domain.Order{}, false, domain.TransactionFailure(gerr)
			}
			return o, true, nil
		}
		defer func() {
			if err == nil {
				return
			}
			// the request context may already be done
			rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if rerr := s.Idem.Release(rctx, req.IdempotencyKey); rerr != nil {
				applog.Error(nil, "order.idempotency.release", rerr, map[string]any{"key": req.IdempotencyKey})
			}
		}()
	}

	if err = s.preflight(ctx, req.Lines); err != nil {
		return domain.Order{}, false, err
	}

	order, err = s.place(ctx, req)
	if err != nil {
		return domain.Order{}, false, err
	}

	if req.IdempotencyKey != "" && s.Idem != nil {
		if cerr := s.Idem.Complete(ctx, req.IdempotencyKey, order.ID); cerr != nil {
			applog.Error(nil, "order.idempotency.complete", cerr, map[string]any{"order_id": order.ID})
		}
	}
	if s.Events != nil {
		if perr := s.Events.Publish(ctx, events.OrderCreated, strconv.FormatInt(order.ID, 10), order); perr != nil {
			applog.Error(nil, "order.event.fail", perr, map[string]any{"order_id": order.ID})
		}
	}
	return order, false, nil
}

// preflight checks every line before anything is written.
func (s *OrderService) preflight(ctx context.Context, lines []domain.CartLine) error {
	for i, line := range lines {
		if line.Quantity < 1 {
			return domain.NewOrderError(domain.KindInvalidQuantity, i, line.ProductID, "Invalid quantity for product.")
		}
		for _, a := range line.Addons {
			if a.Price.IsNegative() {
				return domain.NewOrderError(domain.KindInvalidAddon, i, line.ProductID, "Add-on %q has an invalid price.", a.Name)
			}
			if _, ok := validate.AddonName(a.Name); !ok {
				return domain.NewOrderError(domain.KindInvalidAddon, i, line.ProductID, "Add-on name is too long.")
			}
		}

		p, err := s.Catalog.ProductWithRecipe(ctx, s.DB, line.ProductID)
		if errors.Is(err, repos.ErrNotFound) {
			return domain.NewOrderError(domain.KindNotFound, i, line.ProductID, "Product not found.")
		}
		if err != nil {
			return domain.TransactionFailure(err)
		}
		if len(p.Recipe) == 0 {
			return domain.NewOrderError(domain.KindNotOrderable, i, p.ID,
				"Product \"%s\" has no recipe. Add ingredients before selling.", p.Name)
		}
		if s.StrictAddons {
			if err := checkAddons(i, p, line.Addons); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkAddons requires each selection to match an add-on the product offers,
// by case-insensitive name and exact price.
func checkAddons(line int, p domain.Product, selected []domain.AddonSelection) error {
	for _, a := range selected {
		ok := false
		for _, offered := range p.Addons {
			if strings.EqualFold(strings.TrimSpace(a.Name), offered.Name) && a.Price.Equal(offered.Price) {
				ok = true
				break
			}
		}
		if !ok {
			return domain.NewOrderError(domain.KindInvalidAddon, line, p.ID,
				"Add-on %q is not offered for %s at %s.", a.Name, p.Name, a.Price.StringFixed(2))
		}
	}
	return nil
}

func (s *OrderService) place(ctx context.Context, req OrderRequest) (domain.Order, error) {
	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return domain.Order{}, domain.TransactionFailure(err)
	}
	defer func() { _ = tx.Rollback() }()

	order := domain.Order{
		CashierID:      req.Cashier.ID,
		TotalAmount:    decimal.Zero,
		PaymentMethod:  req.PaymentMethod,
		IdempotencyKey: req.IdempotencyKey,
	}
	if err := s.Orders.Create(ctx, tx, &order); err != nil {
		return domain.Order{}, domain.TransactionFailure(err)
	}

	// fresh reads inside the transaction, then one lock over every
	// ingredient the cart touches so concurrent carts lock in id order
	prods := make([]domain.Product, len(req.Lines))
	var ids []int64
	seen := map[int64]bool{}
	for i, line := range req.Lines {
		p, err := s.Catalog.ProductWithRecipe(ctx, tx, line.ProductID)
		if errors.Is(err, repos.ErrNotFound) {
			return domain.Order{}, domain.NewOrderError(domain.KindNotFound, i, line.ProductID, "Product not found.")
		}
		if err != nil {
			return domain.Order{}, domain.TransactionFailure(err)
		}
		if len(p.Recipe) == 0 {
			return domain.Order{}, domain.NewOrderError(domain.KindNotOrderable, i, p.ID,
				"Product \"%s\" has no recipe. Add ingredients before selling.", p.Name)
		}
		for _, r := range p.Recipe {
			if !seen[r.IngredientID] {
				seen[r.IngredientID] = true
				ids = append(ids, r.IngredientID)
			}
		}
		prods[i] = p
	}
	locked, err := s.Inv.LockForUpdate(ctx, tx, ids)
	if err != nil {
		return domain.Order{}, domain.TransactionFailure(err)
	}

	total := decimal.Zero
	for i, line := range req.Lines {
		p := prods[i]
		qty := decimal.NewFromInt(int64(line.Quantity))
		needed := make([]decimal.Decimal, len(p.Recipe))
		for j, r := range p.Recipe {
			needed[j] = r.Quantity.Mul(qty)
			ing, ok := locked[r.IngredientID]
			if !ok {
				return domain.Order{}, insufficient(i, p.ID, "Unknown", needed[j], decimal.Zero)
			}
			if ing.Stock.LessThan(needed[j]) {
				return domain.Order{}, insufficient(i, p.ID, ing.Name, needed[j], ing.Stock)
			}
		}

		unit := UnitPrice(p, line.Size)
		itemTotal, addonTotal := LineTotal(unit, line.Quantity, line.Addons)
		total = total.Add(itemTotal).Add(addonTotal)

		item := domain.OrderItem{
			OrderID:     order.ID,
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    line.Quantity,
			Price:       unit,
			Addons:      []domain.OrderItemAddon{},
		}
		if err := s.Orders.InsertItem(ctx, tx, &item); err != nil {
			return domain.Order{}, domain.TransactionFailure(err)
		}
		for _, a := range line.Addons {
			name, _ := validate.AddonName(a.Name)
			snap := domain.OrderItemAddon{OrderItemID: item.ID, AddonName: name, Price: a.Price}
			if err := s.Orders.InsertAddon(ctx, tx, &snap); err != nil {
				return domain.Order{}, domain.TransactionFailure(err)
			}
			item.Addons = append(item.Addons, snap)
		}

		for j, r := range p.Recipe {
			err := s.Inv.Decrement(ctx, tx, r.IngredientID, needed[j])
			if errors.Is(err, repos.ErrStockConflict) {
				ing := locked[r.IngredientID]
				return domain.Order{}, insufficient(i, p.ID, ing.Name, needed[j], ing.Stock)
			}
			if err != nil {
				return domain.Order{}, domain.TransactionFailure(err)
			}
			// later lines see what this one took
			ing := locked[r.IngredientID]
			ing.Stock = ing.Stock.Sub(needed[j])
			locked[r.IngredientID] = ing
		}
		order.Items = append(order.Items, item)
	}

	if err := s.Orders.SetTotal(ctx, tx, order.ID, total); err != nil {
		return domain.Order{}, domain.TransactionFailure(err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Order{}, domain.TransactionFailure(err)
	}
	order.TotalAmount = total
	return order, nil
}

func insufficient(line int, productID int64, name string, needed, available decimal.Decimal) *domain.OrderError {
	return domain.NewOrderError(domain.KindInsufficientStock, line, productID,
		"Insufficient stock for ingredient: %s. Required: %s, available: %s.", name, needed.String(), available.String())
}

// Get returns a stored order with its items and add-ons.
func (s *OrderService) Get(ctx context.Context, id int64) (domain.Order, error) {
	return s.Orders.Get(ctx, id)
}

func (s *OrderService) List(ctx context.Context, limit int) ([]domain.Order, error) {
	return s.Orders.ListLatest(ctx, limit)
}
