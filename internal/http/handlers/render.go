package handlers

import (
	"brewpos/internal/domain"
	"brewpos/internal/services"

	"github.com/shopspring/decimal"
)

// Views serialize money with two decimals; arithmetic stays exact.

func money(d decimal.Decimal) string { return d.StringFixed(2) }

type addonView struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Price string `json:"price"`
}

type recipeView struct {
	IngredientID   int64  `json:"ingredient_id"`
	IngredientName string `json:"ingredient_name"`
	Quantity       string `json:"quantity"`
}

type productView struct {
	ID         int64             `json:"id"`
	Name       string            `json:"name"`
	Category   string            `json:"category"`
	Flavor     string            `json:"flavor,omitempty"`
	Size       string            `json:"size"`
	Price      string            `json:"price"`
	SizePrices map[string]string `json:"size_prices"`
	Status     string            `json:"status"`
	Image      string            `json:"image,omitempty"`
	Orderable  bool              `json:"orderable"`
	Addons     []addonView       `json:"addons"`
	Recipe     []recipeView      `json:"recipe,omitempty"`
}

func toProductView(p domain.Product, withRecipe bool) productView {
	v := productView{
		ID:         p.ID,
		Name:       p.Name,
		Category:   string(p.Category),
		Flavor:     p.Flavor,
		Size:       p.Size,
		Price:      money(p.Price),
		SizePrices: map[string]string{},
		Status:     p.Status,
		Image:      p.Image,
		Orderable:  services.Orderable(p),
		Addons:     []addonView{},
	}
	for size, price := range services.SizePrices(p.SizePricesJSON) {
		v.SizePrices[size] = money(price)
	}
	for _, a := range p.Addons {
		v.Addons = append(v.Addons, addonView{ID: a.ID, Name: a.Name, Price: money(a.Price)})
	}
	if withRecipe {
		for _, r := range p.Recipe {
			v.Recipe = append(v.Recipe, recipeView{IngredientID: r.IngredientID, IngredientName: r.IngredientName, Quantity: r.Quantity.String()})
		}
	}
	return v
}

type ingredientView struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Category     string `json:"category"`
	Unit         string `json:"unit"`
	Stock        string `json:"stock"`
	ParLevel     string `json:"par_level"`
	Status       string `json:"status"`
	Availability string `json:"availability"`
}

func toIngredientView(i domain.Ingredient) ingredientView {
	return ingredientView{
		ID:           i.ID,
		Name:         i.Name,
		Category:     i.Category,
		Unit:         i.Unit,
		Stock:        i.Stock.String(),
		ParLevel:     i.ParLevel.String(),
		Status:       i.Status,
		Availability: services.Availability(i).Status,
	}
}

type orderItemAddonView struct {
	ID        int64  `json:"id"`
	AddonName string `json:"addon_name"`
	Price     string `json:"price"`
}

type orderItemView struct {
	ID          int64                `json:"id"`
	ProductID   int64                `json:"product_id"`
	ProductName string               `json:"product_name,omitempty"`
	Quantity    int                  `json:"quantity"`
	Price       string               `json:"price"`
	Addons      []orderItemAddonView `json:"addons"`
}

type orderView struct {
	ID            int64           `json:"id"`
	CashierID     int64           `json:"cashier_id"`
	TotalAmount   string          `json:"total_amount"`
	PaymentMethod string          `json:"payment_method"`
	CreatedAt     string          `json:"created_at"`
	Items         []orderItemView `json:"items,omitempty"`
}

func toOrderView(o domain.Order) orderView {
	v := orderView{
		ID:            o.ID,
		CashierID:     o.CashierID,
		TotalAmount:   money(o.TotalAmount),
		PaymentMethod: o.PaymentMethod,
		CreatedAt:     o.CreatedAt,
	}
	for _, it := range o.Items {
		iv := orderItemView{
			ID:          it.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			Price:       money(it.Price),
			Addons:      []orderItemAddonView{},
		}
		for _, a := range it.Addons {
			iv.Addons = append(iv.Addons, orderItemAddonView{ID: a.ID, AddonName: a.AddonName, Price: money(a.Price)})
		}
		v.Items = append(v.Items, iv)
	}
	return v
}
