package fakers

import (
	"math"
	"math/rand"
	"strings"

	"github.com/Rakhulsr/storefront/app/models"
	"github.com/go-faker/faker/v4"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
)

func CategoryFaker(name string) *models.Category {
	return &models.Category{
		Name:     name,
		Slug:     slug.Make(name),
		IsActive: true,
	}
}

func ProductFaker(category *models.Category) *models.Product {
	name := capitalize(faker.Word()) + " " + capitalize(faker.Word())
	suffix := uuid.NewString()[:6]
	prefix := slug.Make(category.Name)
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}

	return &models.Product{
		CategoryID:  category.ID,
		Name:        name,
		Slug:        slug.Make(name + "-" + suffix),
		Sku:         strings.ToUpper(prefix + "-" + suffix),
		Description: faker.Paragraph(),
		Price:       decimal.NewFromFloat(fakePrice()).Round(2),
		Stock:       rand.Intn(20) + 1,
		IsActive:    true,
	}
}

// fakePrice returns a price between 1 and 1,000,000 with up to two decimals.
func fakePrice() float64 {
	return math.Max(1, precision(rand.Float64()*math.Pow10(rand.Intn(6)+1), rand.Intn(2)+1))
}

func precision(val float64, pre int) float64 {
	a := math.Pow10(pre)
	return float64(int(val*a)) / a
}

func capitalize(word string) string {
	if word == "" {
		return word
	}
	return strings.ToUpper(word[:1]) + word[1:]
}
