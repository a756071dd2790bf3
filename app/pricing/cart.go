package pricing

import (
	"sort"

	"github.com/Rakhulsr/storefront/app/models"
	"github.com/Rakhulsr/storefront/app/utils/calc"
	"github.com/shopspring/decimal"
)

type CartItem struct {
	ProductID uint `json:"product_id" validate:"required"`
	Quantity  int  `json:"quantity" validate:"required,min=1"`
}

// Catalog looks up products by id. Implementations report ok=false for ids
// they do not know.
type Catalog interface {
	Product(id uint) (*models.Product, bool)
}

// ProductSet is an in-memory Catalog.
type ProductSet map[uint]*models.Product

func NewProductSet(products []models.Product) ProductSet {
	set := make(ProductSet, len(products))
	for i := range products {
		set[products[i].ID] = &products[i]
	}
	return set
}

func (s ProductSet) Product(id uint) (*models.Product, bool) {
	p, ok := s[id]
	return p, ok
}

type PricedLineItem struct {
	ProductID                   uint            `json:"product_id"`
	ProductName                 string          `json:"product_name"`
	ProductSku                  string          `json:"product_sku"`
	CategoryID                  uint            `json:"category_id"`
	Quantity                    int             `json:"quantity"`
	Stock                       int             `json:"stock"`
	UnitBasePrice               decimal.Decimal `json:"unit_base_price"`
	UnitFinalPrice              decimal.Decimal `json:"unit_final_price"`
	UnitSavings                 decimal.Decimal `json:"unit_savings"`
	DiscountSource              DiscountSource  `json:"discount_source"`
	DiscountName                string          `json:"discount_name,omitempty"`
	DiscountPercentage          decimal.Decimal `json:"discount_percentage"`
	LineSubtotal                decimal.Decimal `json:"line_subtotal"`
	LineSubtotalWithoutDiscount decimal.Decimal `json:"line_subtotal_without_discount"`
	LineSavings                 decimal.Decimal `json:"line_savings"`
}

func (l PricedLineItem) HasDiscount() bool {
	return l.DiscountSource != SourceNone
}

type CartPricing struct {
	Items                []PricedLineItem `json:"items"`
	Skipped              []uint           `json:"-"`
	TotalItems           int              `json:"total_items"`
	TotalAmount          decimal.Decimal  `json:"total_amount"`
	TotalDiscount        decimal.Decimal  `json:"total_discount"`
	TotalWithoutDiscount decimal.Decimal  `json:"total_without_discount"`
	Shipping             ShippingInfo     `json:"shipping"`
	ShippingCost         decimal.Decimal  `json:"shipping_cost"`
	GrandTotal           decimal.Decimal  `json:"grand_total"`
}

// CategoryIDs returns the distinct categories of the priced lines, sorted.
func (c *CartPricing) CategoryIDs() []uint {
	seen := map[uint]struct{}{}
	var ids []uint
	for _, item := range c.Items {
		if _, ok := seen[item.CategoryID]; ok {
			continue
		}
		seen[item.CategoryID] = struct{}{}
		ids = append(ids, item.CategoryID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// PriceLine prices a single quantity of product under rules.
func PriceLine(product *models.Product, quantity int, rules *Rules, today string) PricedLineItem {
	final, info := Resolve(product, rules, today)
	base := calc.RoundMoney(product.Price)

	line := PricedLineItem{
		ProductID:                   product.ID,
		ProductName:                 product.Name,
		ProductSku:                  product.Sku,
		CategoryID:                  product.CategoryID,
		Quantity:                    quantity,
		Stock:                       product.Stock,
		UnitBasePrice:               base,
		UnitFinalPrice:              final,
		UnitSavings:                 base.Sub(final),
		DiscountSource:              SourceNone,
		DiscountPercentage:          decimal.Zero,
		LineSubtotal:                calc.LineTotal(final, quantity),
		LineSubtotalWithoutDiscount: calc.LineTotal(base, quantity),
	}
	if info != nil {
		line.DiscountSource = info.Source
		line.DiscountName = info.Name
		line.DiscountPercentage = info.Percentage
	}
	line.LineSavings = line.LineSubtotalWithoutDiscount.Sub(line.LineSubtotal)
	return line
}

// PriceCart prices every purchasable item. Unknown or inactive products and
// non-positive quantities are dropped and listed in Skipped; pricing never
// fails.
func PriceCart(items []CartItem, catalog Catalog, rules *Rules, today string) CartPricing {
	result := CartPricing{
		Items:                []PricedLineItem{},
		TotalAmount:          decimal.Zero,
		TotalDiscount:        decimal.Zero,
		TotalWithoutDiscount: decimal.Zero,
	}

	for _, item := range items {
		product, ok := catalog.Product(item.ProductID)
		if !ok || product == nil || !product.IsActive || item.Quantity <= 0 {
			result.Skipped = append(result.Skipped, item.ProductID)
			continue
		}

		line := PriceLine(product, item.Quantity, rules, today)
		result.Items = append(result.Items, line)
		result.TotalItems += line.Quantity
		result.TotalAmount = result.TotalAmount.Add(line.LineSubtotal)
		result.TotalDiscount = result.TotalDiscount.Add(line.LineSavings)
		result.TotalWithoutDiscount = result.TotalWithoutDiscount.Add(line.LineSubtotalWithoutDiscount)
	}

	if len(result.Items) == 0 {
		result.Shipping = freeShipping(rules)
	} else {
		result.Shipping = CalculateShipping(result.TotalAmount, result.CategoryIDs(), rules)
	}
	result.ShippingCost = result.Shipping.ShippingPrice
	result.GrandTotal = calc.CalculateGrandTotal(result.TotalAmount, decimal.Zero, result.ShippingCost)
	return result
}

// MergeItems folds repeated product ids into one line, keeping first-seen
// order.
func MergeItems(items []CartItem) []CartItem {
	index := map[uint]int{}
	var merged []CartItem
	for _, item := range items {
		if i, ok := index[item.ProductID]; ok {
			merged[i].Quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(merged)
		merged = append(merged, item)
	}
	return merged
}
