package repos

import (
	"context"
	"database/sql"

	"brewpos/internal/domain"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// ErrStockConflict means a guarded decrement matched no row: the
// ingredient is gone or holds less than requested.
var ErrStockConflict = errors.New("insufficient stock")

type InventoryRepo struct{ db *sqlx.DB }

func NewInventoryRepo(db *sqlx.DB) *InventoryRepo { return &InventoryRepo{db: db} }

const ingredientColumns = `id, name, category, unit, stock, par_level, status`

// ListAll returns every ingredient ordered by name.
func (r *InventoryRepo) ListAll(ctx context.Context) ([]domain.Ingredient, error) {
	var rows []domain.Ingredient
	err := r.db.SelectContext(ctx, &rows, `SELECT `+ingredientColumns+` FROM ingredients ORDER BY name`)
	return rows, errors.Wrap(err, "list ingredients")
}

// LowStock returns ingredients whose stock is below their par level. The
// comparison runs in decimal since sqlite holds both columns as text.
func (r *InventoryRepo) LowStock(ctx context.Context) ([]domain.Ingredient, error) {
	all, err := r.ListAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "low stock")
	}
	low := make([]domain.Ingredient, 0, len(all))
	for _, i := range all {
		if i.Stock.LessThan(i.ParLevel) {
			low = append(low, i)
		}
	}
	return low, nil
}

func (r *InventoryRepo) Get(ctx context.Context, id int64) (domain.Ingredient, error) {
	var i domain.Ingredient
	err := r.db.GetContext(ctx, &i, r.db.Rebind(`SELECT `+ingredientColumns+` FROM ingredients WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Ingredient{}, ErrNotFound
	}
	return i, errors.Wrapf(err, "get ingredient %d", id)
}

// LockForUpdate reads the given ingredient rows with an exclusive lock held
// until tx ends. On postgres this is SELECT ... FOR UPDATE in id order; on
// sqlite the transaction already owns the write lock (BEGIN IMMEDIATE or a
// single pinned connection), so the plain read is exclusive.
func (r *InventoryRepo) LockForUpdate(ctx context.Context, tx Queryer, ids []int64) (map[int64]domain.Ingredient, error) {
	out := make(map[int64]domain.Ingredient, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query, args, err := sqlx.In(lockQuery(tx.DriverName()), ids)
	if err != nil {
		return nil, err
	}
	var rows []domain.Ingredient
	if err := sqlx.SelectContext(ctx, tx, &rows, tx.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "lock ingredients")
	}
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}

func lockQuery(driver string) string {
	query := `SELECT ` + ingredientColumns + ` FROM ingredients WHERE id IN (?) ORDER BY id`
	if isPostgres(driver) {
		query += ` FOR UPDATE`
	}
	return query
}

// Decrement subtracts by from the ingredient's stock, refusing to go below
// zero. Postgres runs a guarded relative update on its NUMERIC column. On
// sqlite the new value is computed in decimal and written only if the stored
// text is still the value that was read.
func (r *InventoryRepo) Decrement(ctx context.Context, tx Queryer, id int64, by decimal.Decimal) error {
	if !isPostgres(tx.DriverName()) {
		return decrementText(ctx, tx, id, by)
	}
	res, err := tx.ExecContext(ctx, tx.Rebind(`
		UPDATE ingredients
		SET stock = stock - ?
		WHERE id = ? AND stock >= ?
	`), by, id, by)
	if err != nil {
		return errors.Wrapf(err, "decrement ingredient %d", id)
	}
	return affectedOne(res)
}

func decrementText(ctx context.Context, tx Queryer, id int64, by decimal.Decimal) error {
	var raw string
	err := sqlx.GetContext(ctx, tx, &raw, tx.Rebind(`SELECT stock FROM ingredients WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrStockConflict
	}
	if err != nil {
		return errors.Wrapf(err, "read stock of ingredient %d", id)
	}
	cur, err := decimal.NewFromString(raw)
	if err != nil {
		return errors.Wrapf(err, "stock of ingredient %d", id)
	}
	if cur.LessThan(by) {
		return ErrStockConflict
	}
	res, err := tx.ExecContext(ctx, tx.Rebind(`
		UPDATE ingredients
		SET stock = ?
		WHERE id = ? AND stock = ?
	`), cur.Sub(by).String(), id, raw)
	if err != nil {
		return errors.Wrapf(err, "decrement ingredient %d", id)
	}
	return affectedOne(res)
}

func affectedOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if n == 0 {
		return ErrStockConflict
	}
	return nil
}
