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
	"github.com/go-playground/validator/v10"
)

type CartService struct {
	cartRepo    repositories.CartRepository
	productRepo repositories.ProductRepository
	settings    *SettingsService
	validate    *validator.Validate
	now         func() time.Time
}

func NewCartService(cartRepo repositories.CartRepository, productRepo repositories.ProductRepository, settings *SettingsService) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		settings:    settings,
		validate:    validator.New(),
		now:         time.Now,
	}
}

func (s *CartService) SetClock(now func() time.Time) {
	s.now = now
}

// GetCart prices the stored cart with the current rules. Lines whose product
// disappeared are left out of the totals.
func (s *CartService) GetCart(ctx context.Context, userID string) (*pricing.CartPricing, error) {
	items, err := s.cartRepo.GetItems(ctx, userID)
	if err != nil {
		log.Printf("ERROR: CartService.GetCart: failed to load cart for user %s: %v", userID, err)
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	ids := make([]uint, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.productRepo.FindByIDs(ctx, nil, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart products: %w", err)
	}

	rules, err := s.settings.Rules(ctx)
	if err != nil {
		return nil, err
	}

	priced := pricing.PriceCart(items, pricing.NewProductSet(products), rules, helpers.Today(s.now()))
	if len(priced.Skipped) > 0 {
		log.Printf("WARNING: CartService.GetCart: skipped unavailable products %v for user %s", priced.Skipped, userID)
	}
	return &priced, nil
}

func (s *CartService) purchasable(ctx context.Context, productID uint, qty int) (*models.Product, error) {
	product, err := s.productRepo.GetByID(ctx, nil, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product %d: %w", productID, err)
	}
	if product == nil || !product.IsActive {
		return nil, ErrProductNotFound
	}
	if product.Stock < qty {
		return nil, &InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Available:   product.Stock,
			Requested:   qty,
		}
	}
	return product, nil
}

func (s *CartService) AddItem(ctx context.Context, userID string, item pricing.CartItem) (*pricing.CartPricing, error) {
	if err := validateStruct(s.validate, item); err != nil {
		return nil, err
	}

	current, err := s.cartRepo.GetItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	inCart := 0
	for _, existing := range current {
		if existing.ProductID == item.ProductID {
			inCart = existing.Quantity
		}
	}

	if _, err := s.purchasable(ctx, item.ProductID, inCart+item.Quantity); err != nil {
		return nil, err
	}
	if _, err := s.cartRepo.AddItem(ctx, userID, item.ProductID, item.Quantity); err != nil {
		log.Printf("ERROR: CartService.AddItem: %v", err)
		return nil, fmt.Errorf("failed to add item to cart: %w", err)
	}
	return s.GetCart(ctx, userID)
}

// UpdateItem sets the quantity of a line. Zero or less removes it.
func (s *CartService) UpdateItem(ctx context.Context, userID string, productID uint, qty int) (*pricing.CartPricing, error) {
	if qty <= 0 {
		return s.RemoveItem(ctx, userID, productID)
	}
	if _, err := s.purchasable(ctx, productID, qty); err != nil {
		return nil, err
	}
	if err := s.cartRepo.SetItem(ctx, userID, productID, qty); err != nil {
		log.Printf("ERROR: CartService.UpdateItem: %v", err)
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}
	return s.GetCart(ctx, userID)
}

func (s *CartService) RemoveItem(ctx context.Context, userID string, productID uint) (*pricing.CartPricing, error) {
	if err := s.cartRepo.RemoveItem(ctx, userID, productID); err != nil {
		return nil, fmt.Errorf("failed to remove cart item: %w", err)
	}
	return s.GetCart(ctx, userID)
}

func (s *CartService) Clear(ctx context.Context, userID string) error {
	if err := s.cartRepo.Clear(ctx, userID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
