package pricing

import (
	"github.com/shopspring/decimal"
)

type ShippingInfo struct {
	ShippingPrice      decimal.Decimal     `json:"shipping_price"`
	IsFree             bool                `json:"is_free"`
	Threshold          decimal.NullDecimal `json:"threshold"`
	ThresholdRemaining decimal.NullDecimal `json:"remaining_for_free"`
}

func freeShipping(rules *Rules) ShippingInfo {
	info := ShippingInfo{ShippingPrice: decimal.Zero, IsFree: true}
	if rules != nil && rules.HasThreshold() {
		info.Threshold = rules.FreeShippingThreshold
	}
	return info
}

// CalculateShipping applies the flat rate unless the subtotal reaches the free
// shipping threshold or every category in the cart is exempt. Missing rules
// ship for free. With no category ids the exemption check is skipped.
func CalculateShipping(subtotal decimal.Decimal, categoryIDs []uint, rules *Rules) ShippingInfo {
	if rules == nil {
		return freeShipping(rules)
	}

	if rules.HasThreshold() && subtotal.GreaterThanOrEqual(rules.FreeShippingThreshold.Decimal) {
		return freeShipping(rules)
	}

	if allExempt(categoryIDs, rules.ExemptCategories) {
		return freeShipping(rules)
	}

	info := ShippingInfo{ShippingPrice: rules.ShippingPrice.Round(2)}
	if rules.HasThreshold() {
		info.Threshold = rules.FreeShippingThreshold
		remaining := rules.FreeShippingThreshold.Decimal.Sub(subtotal)
		if remaining.IsNegative() {
			remaining = decimal.Zero
		}
		info.ThresholdRemaining = decimal.NewNullDecimal(remaining.Round(2))
	}
	return info
}

func allExempt(categoryIDs []uint, exempt map[uint]struct{}) bool {
	if len(categoryIDs) == 0 || len(exempt) == 0 {
		return false
	}
	for _, id := range categoryIDs {
		if _, ok := exempt[id]; !ok {
			return false
		}
	}
	return true
}
