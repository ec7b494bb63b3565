package handlers

import (
	"brewpos/internal/config"
	"brewpos/internal/events"
	"brewpos/internal/repos"
	"brewpos/internal/services"

	"github.com/jmoiron/sqlx"
)

type Deps struct {
	ProductHandler   *ProductHandler
	InventoryHandler *InventoryHandler
	OrderHandler     *OrderHandler
	Users            *repos.UserRepo
	Inventory        *services.InventoryService
}

// NewDeps wires repos and services. pub and idem may be nil; events are then
// dropped and idempotency keys live in the database.
func NewDeps(db *sqlx.DB, cfg config.Config, pub events.Publisher, idem services.IdempotencyStore) *Deps {
	prodRepo := repos.NewProductRepo(db)
	invRepo := repos.NewInventoryRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	userRepo := repos.NewUserRepo(db)

	if pub == nil {
		pub = events.Nop{}
	}
	if idem == nil {
		idem = repos.NewIdempotencyRepo(db)
	}

	catalogSvc := services.NewCatalogService(prodRepo)
	invSvc := services.NewInventoryService(invRepo)
	orderSvc := services.NewOrderService(db, prodRepo, invRepo, orderRepo)
	orderSvc.Idem = idem
	orderSvc.Events = pub
	orderSvc.Timeout = cfg.OrderTimeout
	orderSvc.StrictAddons = cfg.StrictAddons

	return &Deps{
		ProductHandler:   &ProductHandler{Catalog: catalogSvc},
		InventoryHandler: &InventoryHandler{Inv: invSvc},
		OrderHandler:     &OrderHandler{Order: orderSvc},
		Users:            userRepo,
		Inventory:        invSvc,
	}
}
