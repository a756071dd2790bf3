package pricing

import (
	"testing"

	"github.com/Rakhulsr/storefront/app/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromSettings_ConvertsStringKeys(t *testing.T) {
	s := models.DefaultPricingSettings()
	s.ProductDiscounts = map[string]models.DiscountEntry{
		"42":  {Percentage: dec("20"), Name: "Launch"},
		"abc": {Percentage: dec("99")},
	}
	s.CategoryDiscounts = map[string]models.DiscountEntry{"7": {Percentage: dec("5")}}
	s.ExemptCategoryIDs = []uint{3}
	s.FreeShippingThreshold = decimal.NewNullDecimal(dec("250"))

	rules := FromSettings(s)

	require.NotNil(t, rules)
	assert.Len(t, rules.ProductDiscounts, 1)
	assert.Equal(t, "Launch", rules.ProductDiscounts[42].Name)
	assert.Contains(t, rules.CategoryDiscounts, uint(7))
	assert.Contains(t, rules.ExemptCategories, uint(3))
	assert.True(t, rules.HasThreshold())
	assert.Equal(t, models.DefaultMaxItemsPerOrder, rules.MaxItemsPerOrder)
	assert.True(t, rules.AllowUserRegistration)
}

func TestFromSettings_KeepsNilCategoryList(t *testing.T) {
	s := models.DefaultPricingSettings()
	s.SeasonalOffers = []models.SeasonalOfferEntry{
		{Name: "All", StartDate: "2025-06-01", EndDate: "2025-06-30", DiscountPercentage: dec("10")},
		{Name: "None", StartDate: "2025-06-01", EndDate: "2025-06-30", DiscountPercentage: dec("10"), CategoryIDs: []uint{}},
	}

	rules := FromSettings(s)

	require.Len(t, rules.SeasonalOffers, 2)
	assert.Nil(t, rules.SeasonalOffers[0].CategoryIDs)
	assert.True(t, rules.SeasonalOffers[0].coversCategory(123))
	assert.NotNil(t, rules.SeasonalOffers[1].CategoryIDs)
	assert.False(t, rules.SeasonalOffers[1].coversCategory(123))
}

func TestFromSettings_Nil(t *testing.T) {
	assert.Nil(t, FromSettings(nil))
}

func TestActiveSeasonalOffers(t *testing.T) {
	rules := emptyRules()
	rules.SeasonalOffers = []SeasonalOffer{
		{Name: "past", StartDate: "2025-01-01", EndDate: "2025-01-02"},
		{Name: "now", StartDate: "2025-06-01", EndDate: "2025-06-30"},
		{Name: "future", StartDate: "2025-07-01", EndDate: "2025-07-30"},
	}

	active := rules.ActiveSeasonalOffers(testToday)

	require.Len(t, active, 1)
	assert.Equal(t, "now", active[0].Name)
}
