package services

import (
	"context"

	"brewpos/internal/domain"
	"brewpos/internal/repos"
)

type CatalogService struct {
	Prods *repos.ProductRepo
}

func NewCatalogService(prods *repos.ProductRepo) *CatalogService {
	return &CatalogService{Prods: prods}
}

func (s *CatalogService) ListProducts(ctx context.Context, activeOnly bool) ([]domain.Product, error) {
	return s.Prods.List(ctx, activeOnly)
}

func (s *CatalogService) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	return s.Prods.Get(ctx, id)
}

// Orderable reports whether the product can be sold: it needs at least one
// recipe line.
func Orderable(p domain.Product) bool { return len(p.Recipe) > 0 }
