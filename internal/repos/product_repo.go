package repos

import (
	"context"
	"database/sql"

	"brewpos/internal/domain"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

const productColumns = `
    id, name, category, COALESCE(flavor,'') AS flavor, size, price,
    COALESCE(size_prices,'') AS size_prices, status, COALESCE(image,'') AS image`

// List returns products with their add-ons, optionally only active ones.
func (r *ProductRepo) List(ctx context.Context, activeOnly bool) ([]domain.Product, error) {
	where := ``
	if activeOnly {
		where = ` WHERE status = 'active'`
	}
	var out []domain.Product
	if err := r.db.SelectContext(ctx, &out, `SELECT`+productColumns+` FROM products`+where+` ORDER BY category, name`); err != nil {
		return nil, errors.Wrap(err, "list products")
	}

	var addons []domain.ProductAddon
	if err := r.db.SelectContext(ctx, &addons, `
		SELECT id, product_id, name, price, COALESCE(image,'') AS image
		FROM product_addons
		ORDER BY product_id, id
	`); err != nil {
		return nil, errors.Wrap(err, "list addons")
	}
	byProduct := map[int64][]domain.ProductAddon{}
	for _, a := range addons {
		byProduct[a.ProductID] = append(byProduct[a.ProductID], a)
	}

	var recipe []domain.RecipeLine
	if err := r.db.SelectContext(ctx, &recipe, `
		SELECT pi.product_id, pi.ingredient_id, COALESCE(i.name,'') AS ingredient_name, pi.quantity
		FROM product_ingredients pi
		LEFT JOIN ingredients i ON i.id = pi.ingredient_id
		ORDER BY pi.product_id, pi.id
	`); err != nil {
		return nil, errors.Wrap(err, "list recipes")
	}
	recipeByProduct := map[int64][]domain.RecipeLine{}
	for _, l := range recipe {
		recipeByProduct[l.ProductID] = append(recipeByProduct[l.ProductID], l)
	}

	for i := range out {
		out[i].Addons = byProduct[out[i].ID]
		out[i].Recipe = recipeByProduct[out[i].ID]
	}
	return out, nil
}

// Get loads a product with recipe and add-ons outside any transaction.
func (r *ProductRepo) Get(ctx context.Context, id int64) (domain.Product, error) {
	return r.ProductWithRecipe(ctx, r.db, id)
}

// ProductWithRecipe loads a product, its recipe lines and its add-ons
// through q, which may be a transaction. A missing product is ErrNotFound.
func (r *ProductRepo) ProductWithRecipe(ctx context.Context, q Queryer, id int64) (domain.Product, error) {
	var p domain.Product
	err := sqlx.GetContext(ctx, q, &p, q.Rebind(`SELECT`+productColumns+` FROM products WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, ErrNotFound
	}
	if err != nil {
		return domain.Product{}, errors.Wrapf(err, "get product %d", id)
	}

	if err := sqlx.SelectContext(ctx, q, &p.Recipe, q.Rebind(`
		SELECT pi.product_id, pi.ingredient_id, COALESCE(i.name,'') AS ingredient_name, pi.quantity
		FROM product_ingredients pi
		LEFT JOIN ingredients i ON i.id = pi.ingredient_id
		WHERE pi.product_id = ?
		ORDER BY pi.id
	`), id); err != nil {
		return domain.Product{}, errors.Wrapf(err, "recipe for product %d", id)
	}

	if err := sqlx.SelectContext(ctx, q, &p.Addons, q.Rebind(`
		SELECT id, product_id, name, price, COALESCE(image,'') AS image
		FROM product_addons
		WHERE product_id = ?
		ORDER BY id
	`), id); err != nil {
		return domain.Product{}, errors.Wrapf(err, "addons for product %d", id)
	}
	return p, nil
}
