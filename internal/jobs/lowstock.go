// Package jobs holds scheduled background tasks.
package jobs

import (
	"context"
	"strconv"
	"time"

	"brewpos/internal/domain"
	"brewpos/internal/events"
	applog "brewpos/internal/log"

	"github.com/robfig/cron/v3"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// LowStockLister is satisfied by *services.InventoryService.
type LowStockLister interface {
	LowStock(ctx context.Context) ([]domain.Ingredient, error)
}

// LowStockJob reports every ingredient below its par level.
type LowStockJob struct {
	Inv     LowStockLister
	Events  events.Publisher
	Timeout time.Duration
}

// Run is the cron entry point.
func (j *LowStockJob) Run() {
	defer func() {
		if r := recover(); r != nil {
			applog.Error(nil, "inventory.low_stock.panic", nil, map[string]any{"panic": r})
		}
	}()
	timeout := j.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if _, err := j.Sweep(ctx); err != nil {
		applog.Error(nil, "inventory.low_stock", err, nil)
	}
}

// Sweep logs and publishes one event per low ingredient and returns them.
func (j *LowStockJob) Sweep(ctx context.Context) ([]domain.Ingredient, error) {
	low, err := j.Inv.LowStock(ctx)
	if err != nil {
		return nil, err
	}
	for _, ing := range low {
		fields := map[string]any{
			"ingredient_id": ing.ID,
			"name":          ing.Name,
			"stock":         ing.Stock.String(),
			"par_level":     ing.ParLevel.String(),
			"unit":          ing.Unit,
		}
		applog.Info(nil, "inventory.low_stock", fields)
		if j.Events == nil {
			continue
		}
		if err := j.Events.Publish(ctx, events.IngredientLowStock, strconv.FormatInt(ing.ID, 10), fields); err != nil {
			applog.Error(nil, "inventory.low_stock.event.fail", err, map[string]any{"ingredient_id": ing.ID})
		}
	}
	return low, nil
}

// NewScheduler returns a cron scheduler that accepts optional seconds and
// descriptors such as "@every 15m".
func NewScheduler() *cron.Cron {
	return cron.New(cron.WithParser(cronParser))
}

// Schedule registers job under spec. An empty spec disables it.
func Schedule(c *cron.Cron, spec string, job cron.Job) (cron.EntryID, error) {
	if spec == "" {
		return 0, nil
	}
	return c.AddJob(spec, job)
}
