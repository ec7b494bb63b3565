package repos

import (
	"context"
	"log"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned by lookups that match no row.
var ErrNotFound = errors.New("not found")

// Queryer is satisfied by both *sqlx.DB and *sqlx.Tx so reads can run
// inside or outside a transaction.
type Queryer interface {
	sqlx.QueryerContext
	sqlx.ExecerContext
	Rebind(query string) string
	DriverName() string
}

func isPostgres(driver string) bool {
	return driver == "postgres" || driver == "pgx"
}

func isMemory(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

// OpenDB connects, applies the schema and optionally seeds demo data.
func OpenDB(driver, dsn string, seed bool) (*sqlx.DB, error) {
	if driver == "" {
		driver = "sqlite"
	}
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", driver)
	}
	if driver == "sqlite" && isMemory(dsn) {
		// every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}
	if err = db.Ping(); err != nil {
		return nil, errors.Wrap(err, "ping")
	}

	if err := ensureSchema(db); err != nil {
		return nil, errors.Wrap(err, "schema")
	}
	if seed {
		if err := seedIfEmpty(context.Background(), db); err != nil {
			return nil, errors.Wrap(err, "seed")
		}
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := sqliteSchema
	if isPostgres(db.DriverName()) {
		schema = postgresSchema
	}
	_, err := db.Exec(schema)
	return err
}

// Decimal columns are TEXT on sqlite: NUMERIC affinity would store them as
// REAL. Values are written and compared as exact decimal strings.
const sqliteSchema = `
PRAGMA foreign_keys = ON;

CREATE TABLE IF NOT EXISTS users(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  role TEXT NOT NULL CHECK (role IN ('cashier','admin')),
  status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active','inactive')),
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS products(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  category TEXT NOT NULL CHECK (category IN ('coffee','non-coffee','frappe','slush')),
  flavor TEXT,
  size TEXT NOT NULL DEFAULT 'Baby',
  price TEXT NOT NULL DEFAULT '0' CHECK (CAST(price AS REAL) >= 0),
  size_prices TEXT,
  status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active','inactive')),
  image TEXT,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_products_category ON products(category);

CREATE TABLE IF NOT EXISTS product_addons(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  product_id INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE,
  name TEXT NOT NULL,
  price TEXT NOT NULL CHECK (CAST(price AS REAL) >= 0),
  image TEXT
);
CREATE INDEX IF NOT EXISTS idx_product_addons_product ON product_addons(product_id);

CREATE TABLE IF NOT EXISTS ingredients(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  category TEXT NOT NULL,
  unit TEXT NOT NULL,
  stock TEXT NOT NULL DEFAULT '0' CHECK (CAST(stock AS REAL) >= 0),
  par_level TEXT NOT NULL DEFAULT '0' CHECK (CAST(par_level AS REAL) >= 0),
  status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active','inactive')),
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);

CREATE TABLE IF NOT EXISTS product_ingredients(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  product_id INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE,
  ingredient_id INTEGER NOT NULL REFERENCES ingredients(id) ON DELETE CASCADE,
  quantity TEXT NOT NULL CHECK (CAST(quantity AS REAL) > 0),
  UNIQUE (product_id, ingredient_id)
);

CREATE TABLE IF NOT EXISTS orders(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  cashier_id INTEGER NOT NULL REFERENCES users(id),
  total_amount TEXT NOT NULL,
  payment_method TEXT NOT NULL,
  idempotency_key TEXT UNIQUE,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at);

CREATE TABLE IF NOT EXISTS order_items(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  order_id INTEGER NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
  product_id INTEGER NOT NULL REFERENCES products(id),
  quantity INTEGER NOT NULL CHECK (quantity >= 1),
  price TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id);

CREATE TABLE IF NOT EXISTS order_item_addons(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  order_item_id INTEGER NOT NULL REFERENCES order_items(id) ON DELETE CASCADE,
  addon_name TEXT NOT NULL,
  price TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS idempotency_keys(
  idem_key TEXT PRIMARY KEY,
  order_id INTEGER REFERENCES orders(id),
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS users(
  id BIGSERIAL PRIMARY KEY,
  name TEXT NOT NULL,
  role TEXT NOT NULL CHECK (role IN ('cashier','admin')),
  status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active','inactive')),
  created_at TIMESTAMPTZ DEFAULT now()
);

CREATE TABLE IF NOT EXISTS products(
  id BIGSERIAL PRIMARY KEY,
  name TEXT NOT NULL,
  category TEXT NOT NULL CHECK (category IN ('coffee','non-coffee','frappe','slush')),
  flavor TEXT,
  size VARCHAR(20) NOT NULL DEFAULT 'Baby',
  price NUMERIC(10,2) NOT NULL DEFAULT 0 CHECK (price >= 0),
  size_prices TEXT,
  status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active','inactive')),
  image TEXT,
  created_at TIMESTAMPTZ DEFAULT now(),
  updated_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_products_category ON products(category);

CREATE TABLE IF NOT EXISTS product_addons(
  id BIGSERIAL PRIMARY KEY,
  product_id BIGINT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
  name TEXT NOT NULL,
  price NUMERIC(10,2) NOT NULL CHECK (price >= 0),
  image TEXT
);
CREATE INDEX IF NOT EXISTS idx_product_addons_product ON product_addons(product_id);

CREATE TABLE IF NOT EXISTS ingredients(
  id BIGSERIAL PRIMARY KEY,
  name TEXT NOT NULL,
  category TEXT NOT NULL,
  unit TEXT NOT NULL,
  stock NUMERIC(14,4) NOT NULL DEFAULT 0 CHECK (stock >= 0),
  par_level NUMERIC(14,4) NOT NULL DEFAULT 0 CHECK (par_level >= 0),
  status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active','inactive')),
  created_at TIMESTAMPTZ DEFAULT now(),
  updated_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS product_ingredients(
  id BIGSERIAL PRIMARY KEY,
  product_id BIGINT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
  ingredient_id BIGINT NOT NULL REFERENCES ingredients(id) ON DELETE CASCADE,
  quantity NUMERIC(14,4) NOT NULL CHECK (quantity > 0),
  UNIQUE (product_id, ingredient_id)
);

CREATE TABLE IF NOT EXISTS orders(
  id BIGSERIAL PRIMARY KEY,
  cashier_id BIGINT NOT NULL REFERENCES users(id),
  total_amount NUMERIC(12,2) NOT NULL,
  payment_method VARCHAR(50) NOT NULL,
  idempotency_key TEXT UNIQUE,
  created_at TIMESTAMPTZ DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at);

CREATE TABLE IF NOT EXISTS order_items(
  id BIGSERIAL PRIMARY KEY,
  order_id BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
  product_id BIGINT NOT NULL REFERENCES products(id),
  quantity INTEGER NOT NULL CHECK (quantity >= 1),
  price NUMERIC(10,2) NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id);

CREATE TABLE IF NOT EXISTS order_item_addons(
  id BIGSERIAL PRIMARY KEY,
  order_item_id BIGINT NOT NULL REFERENCES order_items(id) ON DELETE CASCADE,
  addon_name TEXT NOT NULL,
  price NUMERIC(10,2) NOT NULL
);

CREATE TABLE IF NOT EXISTS idempotency_keys(
  idem_key TEXT PRIMARY KEY,
  order_id BIGINT REFERENCES orders(id),
  created_at TIMESTAMPTZ DEFAULT now()
);
`

// insertID runs an INSERT ... RETURNING id and scans the new id.
func insertID(ctx context.Context, q Queryer, query string, args ...any) (int64, error) {
	var id int64
	err := q.QueryRowxContext(ctx, q.Rebind(query+` RETURNING id`), args...).Scan(&id)
	return id, err
}

func seedIfEmpty(ctx context.Context, db *sqlx.DB) error {
	var n int
	if err := db.GetContext(ctx, &n, `SELECT COUNT(*) FROM products`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo users/ingredients/products")

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, u := range [][2]string{{"Cashier One", "cashier"}, {"Store Admin", "admin"}} {
		if _, err := insertID(ctx, tx, `INSERT INTO users(name, role) VALUES(?, ?)`, u[0], u[1]); err != nil {
			return err
		}
	}

	type ing struct{ name, category, unit, stock, par string }
	ingredients := []ing{
		{"Espresso Beans", "beans", "grams", "5000", "1000"},
		{"Fresh Milk", "milk", "ml", "20000", "5000"},
		{"Caramel Syrup", "syrup", "ml", "3000", "500"},
		{"Condensed Milk", "milk", "ml", "3000", "500"},
		{"Matcha Powder", "powder", "grams", "1000", "200"},
		{"Ice", "consumable", "grams", "50000", "10000"},
		{"16oz Cup", "consumable", "pcs", "500", "100"},
	}
	ingID := map[string]int64{}
	for _, i := range ingredients {
		id, err := insertID(ctx, tx, `INSERT INTO ingredients(name, category, unit, stock, par_level) VALUES(?, ?, ?, ?, ?)`,
			i.name, i.category, i.unit, i.stock, i.par)
		if err != nil {
			return err
		}
		ingID[i.name] = id
	}

	type prod struct {
		name, category, flavor, price, sizePrices string
		addons                                    [][2]string
		recipe                                    [][2]string
	}
	products := []prod{
		{"Caramel Macchiato", "coffee", "caramel", "95", `{"Baby":95,"Giant":120}`,
			[][2]string{{"Extra Shot", "25"}, {"Whipped Cream", "15"}},
			[][2]string{{"Espresso Beans", "18"}, {"Fresh Milk", "150"}, {"Caramel Syrup", "20"}, {"16oz Cup", "1"}}},
		{"Spanish Latte", "coffee", "sweet", "80", `{"Baby":80,"Giant":110}`,
			[][2]string{{"Extra Shot", "25"}},
			[][2]string{{"Espresso Beans", "18"}, {"Fresh Milk", "180"}, {"Condensed Milk", "25"}, {"16oz Cup", "1"}}},
		{"Matcha Frappe", "frappe", "matcha", "120", ``,
			[][2]string{{"Pearls", "20"}},
			[][2]string{{"Matcha Powder", "15"}, {"Fresh Milk", "200"}, {"Ice", "150"}, {"16oz Cup", "1"}}},
		// listed but not sellable until a recipe is added
		{"Blue Lemonade Slush", "slush", "lemon", "75", ``, nil, nil},
	}
	for _, p := range products {
		var sizePrices any
		if p.sizePrices != "" {
			sizePrices = p.sizePrices
		}
		pid, err := insertID(ctx, tx, `INSERT INTO products(name, category, flavor, price, size_prices) VALUES(?, ?, ?, ?, ?)`,
			p.name, p.category, p.flavor, p.price, sizePrices)
		if err != nil {
			return err
		}
		for _, a := range p.addons {
			if _, err := tx.ExecContext(ctx, tx.Rebind(`INSERT INTO product_addons(product_id, name, price) VALUES(?, ?, ?)`), pid, a[0], a[1]); err != nil {
				return err
			}
		}
		for _, r := range p.recipe {
			if _, err := tx.ExecContext(ctx, tx.Rebind(`INSERT INTO product_ingredients(product_id, ingredient_id, quantity) VALUES(?, ?, ?)`), pid, ingID[r[0]], r[1]); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}
