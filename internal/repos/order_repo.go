package repos

import (
	"context"
	"database/sql"

	"brewpos/internal/domain"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

// ---------- Writes (always inside the checkout transaction) ----------

// Create inserts the order header and fills in its id and created_at.
func (r *OrderRepo) Create(ctx context.Context, tx Queryer, o *domain.Order) error {
	key := sql.NullString{String: o.IdempotencyKey, Valid: o.IdempotencyKey != ""}
	err := tx.QueryRowxContext(ctx, tx.Rebind(`
		INSERT INTO orders(cashier_id, total_amount, payment_method, idempotency_key)
		VALUES(?, ?, ?, ?)
		RETURNING id, created_at
	`), o.CashierID, o.TotalAmount, o.PaymentMethod, key).Scan(&o.ID, &o.CreatedAt)
	return errors.Wrap(err, "insert order")
}

// InsertItem inserts a single line item snapshot.
func (r *OrderRepo) InsertItem(ctx context.Context, tx Queryer, it *domain.OrderItem) error {
	id, err := insertID(ctx, tx, `INSERT INTO order_items(order_id, product_id, quantity, price) VALUES(?, ?, ?, ?)`,
		it.OrderID, it.ProductID, it.Quantity, it.Price)
	if err != nil {
		return errors.Wrap(err, "insert order item")
	}
	it.ID = id
	return nil
}

// InsertAddon stores an add-on name/price snapshot for an order item.
func (r *OrderRepo) InsertAddon(ctx context.Context, tx Queryer, a *domain.OrderItemAddon) error {
	id, err := insertID(ctx, tx, `INSERT INTO order_item_addons(order_item_id, addon_name, price) VALUES(?, ?, ?)`,
		a.OrderItemID, a.AddonName, a.Price)
	if err != nil {
		return errors.Wrap(err, "insert order item addon")
	}
	a.ID = id
	return nil
}

// SetTotal writes the final total once all lines are priced.
func (r *OrderRepo) SetTotal(ctx context.Context, tx Queryer, orderID int64, total decimal.Decimal) error {
	_, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE orders SET total_amount = ? WHERE id = ?`), total, orderID)
	return errors.Wrap(err, "set order total")
}

// ---------- Reads ----------

const orderColumns = `id, cashier_id, total_amount, payment_method, COALESCE(idempotency_key,'') AS idempotency_key, created_at`

// Get returns the order with its items and their add-ons.
func (r *OrderRepo) Get(ctx context.Context, orderID int64) (domain.Order, error) {
	var o domain.Order
	err := r.db.GetContext(ctx, &o, r.db.Rebind(`SELECT `+orderColumns+` FROM orders WHERE id = ?`), orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, ErrNotFound
	}
	if err != nil {
		return domain.Order{}, errors.Wrapf(err, "get order %d", orderID)
	}

	if err := r.db.SelectContext(ctx, &o.Items, r.db.Rebind(`
		SELECT oi.id, oi.order_id, oi.product_id, COALESCE(p.name,'') AS product_name, oi.quantity, oi.price
		FROM order_items oi
		LEFT JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ?
		ORDER BY oi.id
	`), orderID); err != nil {
		return domain.Order{}, errors.Wrapf(err, "items for order %d", orderID)
	}

	var addons []domain.OrderItemAddon
	if err := r.db.SelectContext(ctx, &addons, r.db.Rebind(`
		SELECT a.id, a.order_item_id, a.addon_name, a.price
		FROM order_item_addons a
		JOIN order_items oi ON oi.id = a.order_item_id
		WHERE oi.order_id = ?
		ORDER BY a.id
	`), orderID); err != nil {
		return domain.Order{}, errors.Wrapf(err, "addons for order %d", orderID)
	}
	byItem := map[int64][]domain.OrderItemAddon{}
	for _, a := range addons {
		byItem[a.OrderItemID] = append(byItem[a.OrderItemID], a)
	}
	for i := range o.Items {
		o.Items[i].Addons = byItem[o.Items[i].ID]
		if o.Items[i].Addons == nil {
			o.Items[i].Addons = []domain.OrderItemAddon{}
		}
	}
	return o, nil
}

// ListLatest returns order headers, newest first.
func (r *OrderRepo) ListLatest(ctx context.Context, limit int) ([]domain.Order, error) {
	if limit <= 0 {
		limit = 100
	}
	var out []domain.Order
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
		SELECT `+orderColumns+`
		FROM orders
		ORDER BY id DESC
		LIMIT ?
	`), limit)
	return out, errors.Wrap(err, "list orders")
}
