package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"brewpos/internal/config"
	"brewpos/internal/events"
	"brewpos/internal/http/handlers"
)

func TestPlaceOrder_Created(t *testing.T) {
	app, _, rec := newTestApp(t, config.Config{})

	body := `{"payment_method":"gcash","items":[
		{"product_id":2,"quantity":2,"size":"Giant"},
		{"product_id":2,"quantity":3,"size":"Baby","addons":[{"name":"Extra Shot","price":25}]}
	]}`
	resp, out := doJSON(t, app, "POST", "/api/orders", body, asCashier)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("want 201, got %d %v", resp.StatusCode, out)
	}
	// 110*2 + 80*3 + 25*3
	if out["total_amount"] != "535.00" {
		t.Fatalf("want total 535.00, got %v", out["total_amount"])
	}
	if out["payment_method"] != "gcash" || out["cashier_id"] != float64(1) {
		t.Fatalf("bad header fields: %v", out)
	}
	items, _ := out["items"].([]any)
	if len(items) != 2 {
		t.Fatalf("want 2 items, got %v", out["items"])
	}
	first := items[0].(map[string]any)
	if first["price"] != "110.00" {
		t.Fatalf("want unit price 110.00, got %v", first["price"])
	}
	second := items[1].(map[string]any)
	addons := second["addons"].([]any)
	if len(addons) != 1 || addons[0].(map[string]any)["addon_name"] != "Extra Shot" {
		t.Fatalf("bad addons: %v", second["addons"])
	}
	if types := rec.Types(); len(types) != 1 || types[0] != events.OrderCreated {
		t.Fatalf("want order.created event, got %v", types)
	}

	// stored order reads back the same
	id := int64(out["id"].(float64))
	resp, got := doJSON(t, app, "GET", fmt.Sprintf("/api/orders/%d", id), "", asCashier)
	if resp.StatusCode != http.StatusOK || got["total_amount"] != "535.00" {
		t.Fatalf("view: %d %v", resp.StatusCode, got)
	}

	resp, list := doJSON(t, app, "GET", "/api/orders?limit=5", "", asCashier)
	if resp.StatusCode != http.StatusOK || len(list["data"].([]any)) != 1 {
		t.Fatalf("list: %d %v", resp.StatusCode, list)
	}
}

func TestPlaceOrder_Failures(t *testing.T) {
	app, db, _ := newTestApp(t, config.Config{})

	cases := []struct {
		name   string
		body   string
		status int
		kind   string
	}{
		{"not orderable", `{"payment_method":"cash","items":[{"product_id":2,"quantity":1},{"product_id":4,"quantity":1}]}`, 422, "not_orderable"},
		{"fractional quantity", `{"payment_method":"cash","items":[{"product_id":2,"quantity":1.5}]}`, 422, "invalid_quantity"},
		{"zero quantity", `{"payment_method":"cash","items":[{"product_id":2,"quantity":0}]}`, 422, "invalid_quantity"},
		{"missing product", `{"payment_method":"cash","items":[{"product_id":77,"quantity":1}]}`, 422, "not_found"},
		{"insufficient stock", `{"payment_method":"cash","items":[{"product_id":3,"quantity":100}]}`, 422, "insufficient_stock"},
		{"negative addon", `{"payment_method":"cash","items":[{"product_id":2,"quantity":1,"addons":[{"name":"x","price":-1}]}]}`, 422, "invalid_addon"},
		{"empty cart", `{"payment_method":"cash","items":[]}`, 422, "empty_cart"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, out := doJSON(t, app, "POST", "/api/orders", tc.body, asCashier)
			if resp.StatusCode != tc.status {
				t.Fatalf("want %d, got %d %v", tc.status, resp.StatusCode, out)
			}
			if out["kind"] != tc.kind || out["message"] != "Order failed." {
				t.Fatalf("want kind %s, got %v", tc.kind, out)
			}
			errs, _ := out["errors"].(map[string]any)
			if items, _ := errs["items"].([]any); len(items) != 1 {
				t.Fatalf("want one item error, got %v", out["errors"])
			}
		})
	}

	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM orders`); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("failed orders left %d rows", n)
	}
}

func TestPlaceOrder_LineNumberReported(t *testing.T) {
	app, _, _ := newTestApp(t, config.Config{})
	body := `{"payment_method":"cash","items":[{"product_id":2,"quantity":1},{"product_id":4,"quantity":1}]}`
	_, out := doJSON(t, app, "POST", "/api/orders", body, asCashier)
	if out["line"] != float64(2) {
		t.Fatalf("want line 2, got %v", out["line"])
	}
	msg := out["errors"].(map[string]any)["items"].([]any)[0]
	if msg != `Product "Blue Lemonade Slush" has no recipe. Add ingredients before selling.` {
		t.Fatalf("bad message: %v", msg)
	}
}

func TestPlaceOrder_RequestValidation(t *testing.T) {
	app, _, _ := newTestApp(t, config.Config{})

	resp, _ := doJSON(t, app, "POST", "/api/orders", `{"items":`, asCashier)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("malformed body: want 400, got %d", resp.StatusCode)
	}

	resp, out := doJSON(t, app, "POST", "/api/orders", `{"payment_method":"","items":[{"product_id":2,"quantity":1}]}`, asCashier)
	if resp.StatusCode != http.StatusUnprocessableEntity || out["errors"].(map[string]any)["payment_method"] == nil {
		t.Fatalf("missing payment: %d %v", resp.StatusCode, out)
	}

	resp, _ = doJSON(t, app, "POST", "/api/orders", `{"payment_method":"cash","items":[{"product_id":2,"quantity":1,"size":"<b>"}]}`, asCashier)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("bad size: want 422, got %d", resp.StatusCode)
	}

	headers := map[string]string{handlers.CashierHeader: "1", handlers.IdempotencyHeader: "retry-1"}
	resp, _ = doJSON(t, app, "POST", "/api/orders", `{"payment_method":"cash","items":[{"product_id":2,"quantity":1}]}`, headers)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("bad idempotency key: want 422, got %d", resp.StatusCode)
	}
}

func TestPlaceOrder_IdempotencyReplay(t *testing.T) {
	app, db, _ := newTestApp(t, config.Config{})
	headers := map[string]string{
		handlers.CashierHeader:     "1",
		handlers.IdempotencyHeader: "0b6c6f0e-58a4-4c36-9d8e-0f2a1b3c4d5e",
	}
	body := `{"payment_method":"cash","items":[{"product_id":1,"quantity":1}]}`

	resp, first := doJSON(t, app, "POST", "/api/orders", body, headers)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("first: %d %v", resp.StatusCode, first)
	}
	resp, second := doJSON(t, app, "POST", "/api/orders", body, headers)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("replay: want 200, got %d %v", resp.StatusCode, second)
	}
	if first["id"] != second["id"] {
		t.Fatalf("replay returned a different order: %v vs %v", first["id"], second["id"])
	}

	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM orders`); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("want 1 order, got %d", n)
	}
}

func TestPlaceOrder_StrictAddons(t *testing.T) {
	app, _, _ := newTestApp(t, config.Config{StrictAddons: true})
	body := `{"payment_method":"cash","items":[{"product_id":2,"quantity":1,"addons":[{"name":"Extra Shot","price":0.01}]}]}`
	resp, out := doJSON(t, app, "POST", "/api/orders", body, asCashier)
	if resp.StatusCode != http.StatusUnprocessableEntity || out["kind"] != "invalid_addon" {
		t.Fatalf("want invalid_addon, got %d %v", resp.StatusCode, out)
	}
}

func TestOrders_RequireCashier(t *testing.T) {
	app, db, _ := newTestApp(t, config.Config{})
	if _, err := db.Exec(`INSERT INTO users(name, role, status) VALUES('Gone', 'cashier', 'inactive')`); err != nil {
		t.Fatal(err)
	}

	for _, id := range []string{"", "abc", "99", "3"} {
		resp, out := doJSON(t, app, "POST", "/api/orders", `{"payment_method":"cash","items":[{"product_id":2,"quantity":1}]}`,
			map[string]string{handlers.CashierHeader: id})
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("cashier %q: want 401, got %d %v", id, resp.StatusCode, out)
		}
	}
	resp, _ := doJSON(t, app, "GET", "/api/orders/1", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("view without cashier: want 401, got %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, app, "GET", "/api/orders/12345", "", asCashier)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing order: want 404, got %d", resp.StatusCode)
	}
}

func TestPlaceOrder_AddonWithoutPriceIsFree(t *testing.T) {
	app, _, _ := newTestApp(t, config.Config{})

	body := `{"payment_method":"cash","items":[
		{"product_id":3,"quantity":2,"addons":[{"name":"Pearls"},{"name":"Syrup","price":null}]}
	]}`
	resp, out := doJSON(t, app, "POST", "/api/orders", body, asCashier)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("want 201, got %d %v", resp.StatusCode, out)
	}
	if out["total_amount"] != "240.00" {
		t.Fatalf("want total 240.00, got %v", out["total_amount"])
	}
	addons := out["items"].([]any)[0].(map[string]any)["addons"].([]any)
	if len(addons) != 2 || addons[0].(map[string]any)["price"] != "0.00" {
		t.Fatalf("bad addon snapshots: %v", addons)
	}
}
