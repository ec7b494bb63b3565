package services_test

import (
	"context"
	"errors"
	"testing"

	"brewpos/internal/repos"
	"brewpos/internal/services"
)

func TestInventoryService_CheckAvailability(t *testing.T) {
	db := memdb(t)
	invRepo := repos.NewInventoryRepo(db)
	svc := services.NewInventoryService(invRepo)
	ctx := context.Background()

	// in stock
	a, err := svc.CheckAvailability(ctx, espressoBeans)
	if err != nil {
		t.Fatal(err)
	}
	if a.Status != services.InStock || !a.Stock.Equal(dec(5000)) || a.Unit != "grams" {
		t.Fatalf("want IN_STOCK(5000 grams), got %+v", a)
	}

	// below par
	if _, err := db.Exec(`UPDATE ingredients SET stock = 150 WHERE id = ?`, matchaPowder); err != nil {
		t.Fatal(err)
	}
	a, err = svc.CheckAvailability(ctx, matchaPowder)
	if err != nil {
		t.Fatal(err)
	}
	if a.Status != services.LowStock {
		t.Fatalf("want LOW_STOCK, got %+v", a)
	}

	// empty
	if _, err := db.Exec(`UPDATE ingredients SET stock = 0 WHERE id = ?`, cup); err != nil {
		t.Fatal(err)
	}
	a, err = svc.CheckAvailability(ctx, cup)
	if err != nil {
		t.Fatal(err)
	}
	if a.Status != services.OutOfStock {
		t.Fatalf("want OUT_OF_STOCK, got %+v", a)
	}

	// no row
	if _, err := svc.CheckAvailability(ctx, 999); !errors.Is(err, repos.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}

	low, err := svc.LowStock(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(low) != 2 {
		t.Fatalf("want 2 low ingredients, got %+v", low)
	}
}
