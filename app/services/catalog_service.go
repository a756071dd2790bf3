package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Rakhulsr/storefront/app/helpers"
	"github.com/Rakhulsr/storefront/app/models"
	"github.com/Rakhulsr/storefront/app/pricing"
	"github.com/Rakhulsr/storefront/app/repositories"
	"github.com/shopspring/decimal"
)

type ProductView struct {
	ID            uint                  `json:"id"`
	CategoryID    uint                  `json:"category_id"`
	Name          string                `json:"name"`
	Slug          string                `json:"slug"`
	Sku           string                `json:"sku"`
	Description   string                `json:"description"`
	Stock         int                   `json:"stock"`
	OriginalPrice decimal.Decimal       `json:"original_price"`
	FinalPrice    decimal.Decimal       `json:"final_price"`
	Discount      *pricing.DiscountInfo `json:"discount,omitempty"`
}

type ProductPage struct {
	Products []ProductView `json:"products"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	Limit    int           `json:"limit"`
}

type CatalogService struct {
	productRepo repositories.ProductRepository
	settings    *SettingsService
	now         func() time.Time
}

func NewCatalogService(productRepo repositories.ProductRepository, settings *SettingsService) *CatalogService {
	return &CatalogService{productRepo: productRepo, settings: settings, now: time.Now}
}

func (s *CatalogService) SetClock(now func() time.Time) {
	s.now = now
}

func toProductView(product *models.Product, rules *pricing.Rules, today string) ProductView {
	final, info := pricing.Resolve(product, rules, today)
	return ProductView{
		ID:            product.ID,
		CategoryID:    product.CategoryID,
		Name:          product.Name,
		Slug:          product.Slug,
		Sku:           product.Sku,
		Description:   product.Description,
		Stock:         product.Stock,
		OriginalPrice: product.Price.Round(2),
		FinalPrice:    final,
		Discount:      info,
	}
}

func (s *CatalogService) ListProducts(ctx context.Context, categoryID uint, keyword string, page, limit int) (*ProductPage, error) {
	products, total, err := s.productRepo.GetActivePaginated(ctx, repositories.ProductFilter{
		CategoryID: categoryID,
		Keyword:    keyword,
		Limit:      limit,
		Offset:     (page - 1) * limit,
	})
	if err != nil {
		log.Printf("ERROR: CatalogService.ListProducts: %v", err)
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	rules, err := s.settings.Rules(ctx)
	if err != nil {
		return nil, err
	}
	today := helpers.Today(s.now())

	views := make([]ProductView, 0, len(products))
	for i := range products {
		views = append(views, toProductView(&products[i], rules, today))
	}
	return &ProductPage{Products: views, Total: total, Page: page, Limit: limit}, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*ProductView, error) {
	product, err := s.productRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product %d: %w", id, err)
	}
	if product == nil || !product.IsActive {
		return nil, ErrProductNotFound
	}

	rules, err := s.settings.Rules(ctx)
	if err != nil {
		return nil, err
	}
	view := toProductView(product, rules, helpers.Today(s.now()))
	return &view, nil
}
