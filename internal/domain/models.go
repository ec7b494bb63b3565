package domain

import "github.com/shopspring/decimal"

type ProductCategory string

const (
	CategoryCoffee    ProductCategory = "coffee"
	CategoryNonCoffee ProductCategory = "non-coffee"
	CategoryFrappe    ProductCategory = "frappe"
	CategorySlush     ProductCategory = "slush"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

type Product struct {
	ID             int64           `db:"id" json:"id"`
	Name           string          `db:"name" json:"name"`
	Category       ProductCategory `db:"category" json:"category"`
	Flavor         string          `db:"flavor" json:"flavor,omitempty"`
	Size           string          `db:"size" json:"size"` // default size label
	Price          decimal.Decimal `db:"price" json:"price"`
	SizePricesJSON string          `db:"size_prices" json:"-"`
	Status         string          `db:"status" json:"status"`
	Image          string          `db:"image" json:"image,omitempty"`

	Addons []ProductAddon `db:"-" json:"addons,omitempty"`
	Recipe []RecipeLine   `db:"-" json:"recipe,omitempty"`
}

type ProductAddon struct {
	ID        int64           `db:"id" json:"id"`
	ProductID int64           `db:"product_id" json:"product_id"`
	Name      string          `db:"name" json:"name"`
	Price     decimal.Decimal `db:"price" json:"price"`
	Image     string          `db:"image" json:"image,omitempty"`
}

// RecipeLine is the quantity of one ingredient consumed per unit of product.
type RecipeLine struct {
	ProductID      int64           `db:"product_id" json:"product_id"`
	IngredientID   int64           `db:"ingredient_id" json:"ingredient_id"`
	IngredientName string          `db:"ingredient_name" json:"ingredient_name"`
	Quantity       decimal.Decimal `db:"quantity" json:"quantity"`
}

type Ingredient struct {
	ID       int64           `db:"id" json:"id"`
	Name     string          `db:"name" json:"name"`
	Category string          `db:"category" json:"category"`
	Unit     string          `db:"unit" json:"unit"`
	Stock    decimal.Decimal `db:"stock" json:"stock"`
	ParLevel decimal.Decimal `db:"par_level" json:"par_level"`
	Status   string          `db:"status" json:"status"`
}

// BelowPar reports whether stock has fallen under the reorder threshold.
func (i Ingredient) BelowPar() bool { return i.Stock.LessThan(i.ParLevel) }

type Order struct {
	ID             int64           `db:"id" json:"id"`
	CashierID      int64           `db:"cashier_id" json:"cashier_id"`
	TotalAmount    decimal.Decimal `db:"total_amount" json:"total_amount"`
	PaymentMethod  string          `db:"payment_method" json:"payment_method"`
	IdempotencyKey string          `db:"idempotency_key" json:"-"`
	CreatedAt      string          `db:"created_at" json:"created_at"`

	Items []OrderItem `db:"-" json:"items"`
}

type OrderItem struct {
	ID          int64           `db:"id" json:"id"`
	OrderID     int64           `db:"order_id" json:"order_id"`
	ProductID   int64           `db:"product_id" json:"product_id"`
	ProductName string          `db:"product_name" json:"product_name,omitempty"`
	Quantity    int             `db:"quantity" json:"quantity"`
	Price       decimal.Decimal `db:"price" json:"price"` // unit price charged

	Addons []OrderItemAddon `db:"-" json:"addons"`
}

// OrderItemAddon is a name/price snapshot, not a reference to ProductAddon.
type OrderItemAddon struct {
	ID          int64           `db:"id" json:"id"`
	OrderItemID int64           `db:"order_item_id" json:"order_item_id"`
	AddonName   string          `db:"addon_name" json:"addon_name"`
	Price       decimal.Decimal `db:"price" json:"price"`
}

// CartLine is one entry of a checkout request.
type CartLine struct {
	ProductID int64            `json:"product_id"`
	Quantity  int              `json:"quantity"`
	Size      string           `json:"size,omitempty"`
	Addons    []AddonSelection `json:"addons,omitempty"`
}

type AddonSelection struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type Availability struct {
	Status string          `json:"status"` // IN_STOCK | LOW_STOCK | OUT_OF_STOCK
	Stock  decimal.Decimal `json:"stock"`
	Unit   string          `json:"unit,omitempty"`
}
