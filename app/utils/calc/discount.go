package calc

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// RoundMoney rounds half away from zero to two places.
func RoundMoney(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}

// ApplyDiscount returns the discounted unit price and the savings it implies.
// The final price is rounded once and savings are the exact difference, so
// final + savings always equals the rounded base.
func ApplyDiscount(basePrice, percent decimal.Decimal) (final, savings decimal.Decimal) {
	base := RoundMoney(basePrice)
	if percent.LessThanOrEqual(decimal.Zero) {
		return base, decimal.Zero
	}
	if percent.GreaterThan(hundred) {
		percent = hundred
	}
	final = RoundMoney(base.Mul(hundred.Sub(percent)).Div(hundred))
	return final, base.Sub(final)
}

func CalculateDiscount(baseTotal, discountPercent decimal.Decimal) decimal.Decimal {
	_, savings := ApplyDiscount(baseTotal, discountPercent)
	return savings
}

func LineTotal(unitPrice decimal.Decimal, qty int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(qty)))
}

func CalculateGrandTotal(subtotal, tax, shipping decimal.Decimal) decimal.Decimal {
	return RoundMoney(subtotal.Add(tax).Add(shipping))
}
