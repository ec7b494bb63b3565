package handlers_test

import (
	"testing"

	"brewpos/internal/config"
	"brewpos/internal/http/handlers"
)

// denied cashier lookups are logged as security events
func TestAccessDeniedLogs(t *testing.T) {
	app, _, _ := newTestApp(t, config.Config{})

	entries := captureLogs(t, func() {
		_, _ = doJSON(t, app, "GET", "/api/orders", "", map[string]string{handlers.CashierHeader: "42"})
	})
	e := findLog(entries, "access.denied.cashier")
	if e == nil {
		t.Fatalf("expected access.denied.cashier log, got %+v", entries)
	}
	if e.Category != "security" || e.Level != "warn" {
		t.Fatalf("bad level/category: %+v", e)
	}
}

func TestOrderAuditLogs(t *testing.T) {
	app, _, _ := newTestApp(t, config.Config{})

	entries := captureLogs(t, func() {
		_, _ = doJSON(t, app, "POST", "/api/orders", `{"payment_method":"cash","items":[{"product_id":1,"quantity":1}]}`, asCashier)
	})
	e := findLog(entries, "order.place")
	if e == nil {
		t.Fatalf("expected order.place audit log, got %+v", entries)
	}
	if e.Category != "audit" || e.UserID != 1 || e.Fields["total"] != "95.00" {
		t.Fatalf("bad audit entry: %+v", e)
	}

	entries = captureLogs(t, func() {
		_, _ = doJSON(t, app, "POST", "/api/orders", `{"payment_method":"cash","items":[{"product_id":4,"quantity":1}]}`, asCashier)
	})
	e = findLog(entries, "order.place.fail")
	if e == nil {
		t.Fatalf("expected order.place.fail log, got %+v", entries)
	}
	if e.Fields["kind"] != "not_orderable" || e.Fields["line"] != float64(1) {
		t.Fatalf("bad failure entry: %+v", e)
	}
}
