// Package pricing resolves discounts, shipping and cart totals from a loaded
// set of admin rules. Nothing in here touches storage or the clock.
package pricing

import (
	"log"
	"strconv"

	"github.com/Rakhulsr/storefront/app/models"
	"github.com/shopspring/decimal"
)

const DateLayout = "2006-01-02"

type Discount struct {
	Percentage decimal.Decimal
	Name       string
}

type GlobalDiscount struct {
	Enabled    bool
	Percentage decimal.Decimal
	Name       string
}

// SeasonalOffer with nil CategoryIDs applies to every category. A nil
// ProductIDs never matches on product.
type SeasonalOffer struct {
	Name        string
	StartDate   string
	EndDate     string
	Percentage  decimal.Decimal
	CategoryIDs map[uint]struct{}
	ProductIDs  map[uint]struct{}
}

// ActiveOn compares ISO dates lexically. Offers without both dates are never
// active.
func (o SeasonalOffer) ActiveOn(today string) bool {
	if o.StartDate == "" || o.EndDate == "" {
		return false
	}
	return o.StartDate <= today && today <= o.EndDate
}

func (o SeasonalOffer) coversProduct(id uint) bool {
	if o.ProductIDs == nil {
		return false
	}
	_, ok := o.ProductIDs[id]
	return ok
}

func (o SeasonalOffer) coversCategory(id uint) bool {
	if o.CategoryIDs == nil {
		return true
	}
	_, ok := o.CategoryIDs[id]
	return ok
}

type Rules struct {
	MaintenanceMode       bool
	MaintenanceMessage    string
	ShippingPrice         decimal.Decimal
	FreeShippingThreshold decimal.NullDecimal
	ExemptCategories      map[uint]struct{}
	GlobalDiscount        GlobalDiscount
	CategoryDiscounts     map[uint]Discount
	ProductDiscounts      map[uint]Discount
	SeasonalOffers        []SeasonalOffer
	AllowUserRegistration bool
	MaxItemsPerOrder      int
}

// HasThreshold reports whether a positive free shipping threshold is set.
func (r *Rules) HasThreshold() bool {
	return r.FreeShippingThreshold.Valid && r.FreeShippingThreshold.Decimal.GreaterThan(decimal.Zero)
}

func (r *Rules) ActiveSeasonalOffers(today string) []SeasonalOffer {
	var active []SeasonalOffer
	for _, offer := range r.SeasonalOffers {
		if offer.ActiveOn(today) {
			active = append(active, offer)
		}
	}
	return active
}

// FromSettings converts the stored row into typed rules. Map entries whose
// key is not a numeric id are logged and skipped.
func FromSettings(s *models.PricingSettings) *Rules {
	if s == nil {
		return nil
	}

	rules := &Rules{
		MaintenanceMode:       s.MaintenanceMode,
		MaintenanceMessage:    s.MaintenanceMessage,
		ShippingPrice:         s.ShippingPrice,
		FreeShippingThreshold: s.FreeShippingThreshold,
		ExemptCategories:      idSet(s.ExemptCategoryIDs),
		GlobalDiscount: GlobalDiscount{
			Enabled:    s.GlobalDiscountEnabled,
			Percentage: s.GlobalDiscountPercent,
			Name:       s.GlobalDiscountName,
		},
		CategoryDiscounts:     convertDiscounts("category", s.CategoryDiscounts),
		ProductDiscounts:      convertDiscounts("product", s.ProductDiscounts),
		AllowUserRegistration: s.AllowUserRegistration,
		MaxItemsPerOrder:      s.MaxItemsPerOrder,
	}
	if rules.ExemptCategories == nil {
		rules.ExemptCategories = map[uint]struct{}{}
	}

	for _, o := range s.SeasonalOffers {
		rules.SeasonalOffers = append(rules.SeasonalOffers, SeasonalOffer{
			Name:        o.Name,
			StartDate:   o.StartDate,
			EndDate:     o.EndDate,
			Percentage:  o.DiscountPercentage,
			CategoryIDs: idSet(o.CategoryIDs),
			ProductIDs:  idSet(o.ProductIDs),
		})
	}

	return rules
}

func convertDiscounts(kind string, in map[string]models.DiscountEntry) map[uint]Discount {
	out := make(map[uint]Discount, len(in))
	for key, entry := range in {
		id, err := strconv.ParseUint(key, 10, 64)
		if err != nil {
			log.Printf("WARNING: pricing.FromSettings: skipping %s discount with non-numeric key %q", kind, key)
			continue
		}
		out[uint(id)] = Discount{Percentage: entry.Percentage, Name: entry.Name}
	}
	return out
}

// idSet keeps nil as nil so "all categories" survives the conversion.
func idSet(ids []uint) map[uint]struct{} {
	if ids == nil {
		return nil
	}
	set := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
