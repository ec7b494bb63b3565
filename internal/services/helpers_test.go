package services_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"brewpos/internal/domain"
	"brewpos/internal/repos"
	"brewpos/internal/services"
)

// Seeded ids (see repos.seedIfEmpty).
const (
	caramelMacchiato = int64(1)
	spanishLatte     = int64(2)
	matchaFrappe     = int64(3)
	blueSlush        = int64(4) // no recipe

	espressoBeans = int64(1)
	freshMilk     = int64(2)
	matchaPowder  = int64(5)
	cup           = int64(7)
)

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB("sqlite", ":memory:", true)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// filedb opens a seeded database file that supports several connections.
func filedb(t *testing.T) *sqlx.DB {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "pos.db") +
		"?_pragma=busy_timeout(10000)&_pragma=foreign_keys(1)&_pragma=journal_mode(wal)&_txlock=immediate"
	db, err := repos.OpenDB("sqlite", dsn, true)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newOrderService(db *sqlx.DB) *services.OrderService {
	svc := services.NewOrderService(db, repos.NewProductRepo(db), repos.NewInventoryRepo(db), repos.NewOrderRepo(db))
	svc.Idem = repos.NewIdempotencyRepo(db)
	return svc
}

var cashier = &domain.User{ID: 1, Name: "Cashier One", Role: domain.RoleCashier, Status: domain.StatusActive}

func request(lines ...domain.CartLine) services.OrderRequest {
	return services.OrderRequest{Cashier: cashier, Lines: lines, PaymentMethod: "cash"}
}

func stock(t *testing.T, db *sqlx.DB, ingredientID int64) decimal.Decimal {
	t.Helper()
	ing, err := repos.NewInventoryRepo(db).Get(context.Background(), ingredientID)
	if err != nil {
		t.Fatal(err)
	}
	return ing.Stock
}

func count(t *testing.T, db *sqlx.DB, table string) int {
	t.Helper()
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM `+table); err != nil {
		t.Fatal(err)
	}
	return n
}

func dec(n int64) decimal.Decimal { return decimal.NewFromInt(n) }
