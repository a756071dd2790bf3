package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem is frozen at order creation. Later catalog or discount changes
// never touch it.
type OrderItem struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	OrderID         uint            `gorm:"index;not null" json:"order_id"`
	ProductID       uint            `gorm:"index;not null" json:"product_id"`
	ProductName     string          `gorm:"size:255;not null" json:"product_name"`
	ProductSku      string          `gorm:"size:100" json:"product_sku"`
	Quantity        int             `gorm:"not null" json:"quantity"`
	UnitBasePrice   decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"unit_base_price"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"unit_price"`
	DiscountSource  string          `gorm:"size:30" json:"discount_source,omitempty"`
	DiscountName    string          `gorm:"size:255" json:"discount_name,omitempty"`
	DiscountPercent decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"discount_percent"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"subtotal"`
	CreatedAt       time.Time       `json:"created_at"`
}
