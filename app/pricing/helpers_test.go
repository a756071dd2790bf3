package pricing

import (
	"testing"

	"github.com/Rakhulsr/storefront/app/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

const testToday = "2025-06-15"

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Equal(t, want, got.StringFixed(2))
}

func product(id, categoryID uint, price string) *models.Product {
	return &models.Product{
		ID:         id,
		CategoryID: categoryID,
		Name:       "Product",
		Sku:        "SKU",
		Price:      dec(price),
		Stock:      10,
		IsActive:   true,
	}
}

func emptyRules() *Rules {
	return &Rules{
		ShippingPrice:     decimal.Zero,
		ExemptCategories:  map[uint]struct{}{},
		CategoryDiscounts: map[uint]Discount{},
		ProductDiscounts:  map[uint]Discount{},
		MaxItemsPerOrder:  models.DefaultMaxItemsPerOrder,
	}
}

func ids(v ...uint) map[uint]struct{} {
	set := make(map[uint]struct{}, len(v))
	for _, id := range v {
		set[id] = struct{}{}
	}
	return set
}
