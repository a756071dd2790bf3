package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PricingSettingsID          uint = 1
	DefaultMaintenanceMessage       = "The store is under maintenance. Please try again later."
	DefaultMaxItemsPerOrder         = 50
	DefaultGlobalDiscountName       = "Global Discount"
)

// DiscountEntry is the stored shape of a category or product discount.
type DiscountEntry struct {
	Percentage decimal.Decimal `json:"percentage"`
	Name       string          `json:"name"`
}

// SeasonalOfferEntry keeps nil and empty id lists apart: a nil CategoryIDs
// means the offer applies to every category.
type SeasonalOfferEntry struct {
	Name               string          `json:"name"`
	StartDate          string          `json:"start_date"`
	EndDate            string          `json:"end_date"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	CategoryIDs        []uint          `json:"category_ids"`
	ProductIDs         []uint          `json:"product_ids"`
}

// PricingSettings is the single admin configuration row. Discount maps are
// keyed by the id rendered as a string.
type PricingSettings struct {
	ID                    uint                     `gorm:"primaryKey;autoIncrement:false" json:"id"`
	MaintenanceMode       bool                     `gorm:"not null;default:false" json:"maintenance_mode"`
	MaintenanceMessage    string                   `gorm:"size:500" json:"maintenance_message"`
	ShippingPrice         decimal.Decimal          `gorm:"type:decimal(16,2);not null;default:0" json:"shipping_price"`
	FreeShippingThreshold decimal.NullDecimal      `gorm:"type:decimal(16,2)" json:"free_shipping_threshold"`
	ExemptCategoryIDs     []uint                   `gorm:"type:json;serializer:json" json:"categories_no_shipping"`
	GlobalDiscountEnabled bool                     `gorm:"not null;default:false" json:"global_discount_enabled"`
	GlobalDiscountPercent decimal.Decimal          `gorm:"type:decimal(5,2);not null;default:0" json:"global_discount_percentage"`
	GlobalDiscountName    string                   `gorm:"size:100" json:"global_discount_name"`
	CategoryDiscounts     map[string]DiscountEntry `gorm:"type:json;serializer:json" json:"category_discounts"`
	ProductDiscounts      map[string]DiscountEntry `gorm:"type:json;serializer:json" json:"product_discounts"`
	SeasonalOffers        []SeasonalOfferEntry     `gorm:"type:json;serializer:json" json:"seasonal_offers"`
	AllowUserRegistration bool                     `gorm:"not null" json:"allow_user_registration"`
	MaxItemsPerOrder      int                      `gorm:"not null" json:"max_items_per_order"`
	CreatedAt             time.Time                `json:"created_at"`
	UpdatedAt             time.Time                `json:"updated_at"`
}

func DefaultPricingSettings() *PricingSettings {
	return &PricingSettings{
		ID:                    PricingSettingsID,
		MaintenanceMessage:    DefaultMaintenanceMessage,
		ShippingPrice:         decimal.Zero,
		ExemptCategoryIDs:     []uint{},
		GlobalDiscountPercent: decimal.Zero,
		GlobalDiscountName:    DefaultGlobalDiscountName,
		CategoryDiscounts:     map[string]DiscountEntry{},
		ProductDiscounts:      map[string]DiscountEntry{},
		SeasonalOffers:        []SeasonalOfferEntry{},
		AllowUserRegistration: true,
		MaxItemsPerOrder:      DefaultMaxItemsPerOrder,
	}
}
