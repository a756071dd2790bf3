package pricing

import (
	"github.com/Rakhulsr/storefront/app/models"
	"github.com/Rakhulsr/storefront/app/utils/calc"
	"github.com/shopspring/decimal"
)

type DiscountSource string

const (
	SourceNone             DiscountSource = "none"
	SourceProduct          DiscountSource = "product"
	SourceSeasonalProduct  DiscountSource = "seasonal_product"
	SourceSeasonalCategory DiscountSource = "seasonal_category"
	SourceCategory         DiscountSource = "category"
	SourceGlobal           DiscountSource = "global"
)

const (
	defaultProductDiscountName  = "Special Offer"
	defaultSeasonalOfferName    = "Seasonal Offer"
	defaultCategoryDiscountName = "Category Offer"
)

type DiscountInfo struct {
	OriginalPrice   decimal.Decimal `json:"original_price"`
	DiscountedPrice decimal.Decimal `json:"discounted_price"`
	Percentage      decimal.Decimal `json:"discount_percentage"`
	Name            string          `json:"discount_name"`
	Source          DiscountSource  `json:"discount_source"`
	Savings         decimal.Decimal `json:"savings"`
}

type candidate struct {
	percentage decimal.Decimal
	name       string
	source     DiscountSource
}

func (c candidate) found() bool {
	return c.percentage.GreaterThan(decimal.Zero)
}

// Resolve picks the single discount that applies to product on the given day
// (YYYY-MM-DD) and returns the final unit price. Tiers are tried in order and
// the first one with a positive percentage wins:
//
//	product, seasonal by product, seasonal by category, category, global
//
// Inside a seasonal tier the highest percentage wins; ties keep the earlier
// offer. A nil rules value means no discounts.
func Resolve(product *models.Product, rules *Rules, today string) (decimal.Decimal, *DiscountInfo) {
	base := calc.RoundMoney(product.Price)
	if rules == nil {
		return base, nil
	}

	best := pick(product, rules, today)
	if !best.found() {
		return base, nil
	}

	final, savings := calc.ApplyDiscount(base, best.percentage)
	return final, &DiscountInfo{
		OriginalPrice:   base,
		DiscountedPrice: final,
		Percentage:      best.percentage,
		Name:            best.name,
		Source:          best.source,
		Savings:         savings,
	}
}

func pick(product *models.Product, rules *Rules, today string) candidate {
	if d, ok := rules.ProductDiscounts[product.ID]; ok {
		c := candidate{d.Percentage, nameOr(d.Name, defaultProductDiscountName), SourceProduct}
		if c.found() {
			return c
		}
	}

	active := rules.ActiveSeasonalOffers(today)

	if c := bestSeasonal(active, SourceSeasonalProduct, func(o SeasonalOffer) bool {
		return o.coversProduct(product.ID)
	}); c.found() {
		return c
	}

	if c := bestSeasonal(active, SourceSeasonalCategory, func(o SeasonalOffer) bool {
		return o.coversCategory(product.CategoryID)
	}); c.found() {
		return c
	}

	if d, ok := rules.CategoryDiscounts[product.CategoryID]; ok {
		c := candidate{d.Percentage, nameOr(d.Name, defaultCategoryDiscountName), SourceCategory}
		if c.found() {
			return c
		}
	}

	if rules.GlobalDiscount.Enabled {
		return candidate{rules.GlobalDiscount.Percentage, nameOr(rules.GlobalDiscount.Name, models.DefaultGlobalDiscountName), SourceGlobal}
	}

	return candidate{}
}

func bestSeasonal(offers []SeasonalOffer, source DiscountSource, matches func(SeasonalOffer) bool) candidate {
	best := candidate{percentage: decimal.Zero}
	for _, offer := range offers {
		if !matches(offer) {
			continue
		}
		if offer.Percentage.GreaterThan(best.percentage) {
			best = candidate{offer.Percentage, nameOr(offer.Name, defaultSeasonalOfferName), source}
		}
	}
	return best
}

func nameOr(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}
