package services

import (
	"strings"

	"brewpos/internal/domain"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// SizePrices decodes a product's size_prices column. Malformed JSON yields
// an empty map, and entries that are not non-negative numbers are skipped.
func SizePrices(raw string) map[string]decimal.Decimal {
	out := map[string]decimal.Decimal{}
	if strings.TrimSpace(raw) == "" {
		return out
	}
	var m map[string]jsoniter.RawMessage
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return out
	}
	for size, v := range m {
		s := strings.Trim(strings.TrimSpace(string(v)), `"`)
		d, err := decimal.NewFromString(s)
		if err != nil || d.IsNegative() {
			continue
		}
		out[size] = d
	}
	return out
}

// UnitPrice is the size override when the product defines one for size,
// otherwise the base price.
func UnitPrice(p domain.Product, size string) decimal.Decimal {
	if size != "" {
		if d, ok := SizePrices(p.SizePricesJSON)[size]; ok {
			return d
		}
	}
	return p.Price
}

// LineTotal returns the item subtotal and the add-on subtotal for qty units.
func LineTotal(unit decimal.Decimal, qty int, addons []domain.AddonSelection) (item, addonTotal decimal.Decimal) {
	q := decimal.NewFromInt(int64(qty))
	item = unit.Mul(q)
	addonTotal = decimal.Zero
	for _, a := range addons {
		addonTotal = addonTotal.Add(a.Price.Mul(q))
	}
	return item, addonTotal
}
