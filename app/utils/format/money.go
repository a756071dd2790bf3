package format

import (
	"github.com/leekchan/accounting"
	"github.com/shopspring/decimal"
)

var currencySymbol = "$"

// SetCurrencySymbol changes the symbol used by Money. It is meant to be
// called once at startup.
func SetCurrencySymbol(symbol string) {
	if symbol != "" {
		currencySymbol = symbol
	}
}

func Money(amount decimal.Decimal) string {
	ac := accounting.Accounting{Symbol: currencySymbol, Precision: 2, Thousand: ",", Decimal: "."}
	return ac.FormatMoney(amount.Round(2).InexactFloat64())
}
