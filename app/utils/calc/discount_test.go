package calc

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestApplyDiscount(t *testing.T) {
	tests := []struct {
		name        string
		base        string
		percent     string
		wantFinal   string
		wantSavings string
	}{
		{"ten percent", "100.00", "10", "90.00", "10.00"},
		{"no discount", "49.99", "0", "49.99", "0.00"},
		{"rounds half up", "10.05", "50", "5.03", "5.02"},
		{"full discount", "12.34", "100", "0.00", "12.34"},
		{"clamped above hundred", "12.34", "150", "0.00", "12.34"},
		{"negative ignored", "12.34", "-5", "12.34", "0.00"},
		{"fractional percent", "19.99", "12.5", "17.49", "2.50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			final, savings := ApplyDiscount(d(tt.base), d(tt.percent))
			assert.Equal(t, tt.wantFinal, final.StringFixed(2))
			assert.Equal(t, tt.wantSavings, savings.StringFixed(2))
			assert.True(t, final.Add(savings).Equal(d(tt.base).Round(2)))
		})
	}
}

func TestCalculateGrandTotal(t *testing.T) {
	got := CalculateGrandTotal(d("90.00"), decimal.Zero, d("15.50"))
	assert.Equal(t, "105.50", got.StringFixed(2))
}

func TestLineTotal(t *testing.T) {
	assert.Equal(t, "269.97", LineTotal(d("89.99"), 3).StringFixed(2))
}
