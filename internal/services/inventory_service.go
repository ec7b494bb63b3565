package services

import (
	"context"

	"brewpos/internal/domain"
	"brewpos/internal/repos"
)

const (
	InStock    = "IN_STOCK"
	LowStock   = "LOW_STOCK"
	OutOfStock = "OUT_OF_STOCK"
)

type InventoryService struct {
	Inv *repos.InventoryRepo
}

func NewInventoryService(inv *repos.InventoryRepo) *InventoryService {
	return &InventoryService{Inv: inv}
}

func (s *InventoryService) List(ctx context.Context) ([]domain.Ingredient, error) {
	return s.Inv.ListAll(ctx)
}

// LowStock lists ingredients below par. Par level only drives alerts; it
// never blocks an order.
func (s *InventoryService) LowStock(ctx context.Context) ([]domain.Ingredient, error) {
	return s.Inv.LowStock(ctx)
}

// CheckAvailability converts stock into IN_STOCK / LOW_STOCK / OUT_OF_STOCK.
func (s *InventoryService) CheckAvailability(ctx context.Context, ingredientID int64) (domain.Availability, error) {
	ing, err := s.Inv.Get(ctx, ingredientID)
	if err != nil {
		return domain.Availability{}, err
	}
	return Availability(ing), nil
}

func Availability(ing domain.Ingredient) domain.Availability {
	status := InStock
	switch {
	case !ing.Stock.IsPositive():
		status = OutOfStock
	case ing.BelowPar():
		status = LowStock
	}
	return domain.Availability{Status: status, Stock: ing.Stock, Unit: ing.Unit}
}
