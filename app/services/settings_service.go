package services

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/Rakhulsr/storefront/app/helpers"
	"github.com/Rakhulsr/storefront/app/models"
	"github.com/Rakhulsr/storefront/app/pricing"
	"github.com/Rakhulsr/storefront/app/repositories"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type MaintenanceInput struct {
	Enabled bool    `json:"maintenance_mode"`
	Message *string `json:"maintenance_message" validate:"omitempty,max=500"`
}

type ShippingInput struct {
	ShippingPrice         decimal.Decimal     `json:"shipping_price"`
	FreeShippingThreshold decimal.NullDecimal `json:"free_shipping_threshold"`
}

type GlobalDiscountInput struct {
	Enabled    bool            `json:"enabled"`
	Percentage decimal.Decimal `json:"percentage"`
	Name       string          `json:"name" validate:"max=100"`
}

type DiscountInput struct {
	TargetID   uint            `json:"id" validate:"required"`
	Percentage decimal.Decimal `json:"percentage"`
	Name       string          `json:"name" validate:"max=100"`
}

type SeasonalOfferInput struct {
	Name        string          `json:"name" validate:"required,max=100"`
	StartDate   string          `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate     string          `json:"end_date" validate:"required,datetime=2006-01-02"`
	Percentage  decimal.Decimal `json:"discount_percentage"`
	CategoryIDs []uint          `json:"category_ids"`
	ProductIDs  []uint          `json:"product_ids"`
}

type MaxItemsInput struct {
	MaxItemsPerOrder int `json:"max_items_per_order" validate:"min=1,max=1000"`
}

// DiscountPreview shows what a product would cost right now.
type DiscountPreview struct {
	ProductID     uint                  `json:"product_id"`
	ProductName   string                `json:"product_name"`
	OriginalPrice decimal.Decimal       `json:"original_price"`
	FinalPrice    decimal.Decimal       `json:"final_price"`
	HasDiscount   bool                  `json:"has_discount"`
	Discount      *pricing.DiscountInfo `json:"discount,omitempty"`
	Date          string                `json:"date"`
}

type PublicOffer struct {
	Name        string          `json:"name"`
	StartDate   string          `json:"start_date"`
	EndDate     string          `json:"end_date"`
	Percentage  decimal.Decimal `json:"discount_percentage"`
	CategoryIDs []uint          `json:"category_ids"`
	ProductIDs  []uint          `json:"product_ids"`
}

type PublicSettings struct {
	MaintenanceMode       bool                `json:"maintenance_mode"`
	MaintenanceMessage    string              `json:"maintenance_message,omitempty"`
	AllowUserRegistration bool                `json:"allow_user_registration"`
	ShippingPrice         decimal.Decimal     `json:"shipping_price"`
	FreeShippingThreshold decimal.NullDecimal `json:"free_shipping_threshold"`
	GlobalDiscount        *PublicOffer        `json:"global_discount,omitempty"`
	ActiveOffers          []PublicOffer       `json:"active_offers"`
	MaxItemsPerOrder      int                 `json:"max_items_per_order"`
}

type SettingsService struct {
	repo         repositories.SettingsRepository
	categoryRepo repositories.CategoryRepository
	productRepo  repositories.ProductRepository
	validate     *validator.Validate
	now          func() time.Time
}

func NewSettingsService(
	repo repositories.SettingsRepository,
	categoryRepo repositories.CategoryRepository,
	productRepo repositories.ProductRepository,
) *SettingsService {
	return &SettingsService{
		repo:         repo,
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		validate:     validator.New(),
		now:          time.Now,
	}
}

func (s *SettingsService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *SettingsService) Today() string {
	return helpers.Today(s.now())
}

func (s *SettingsService) Get(ctx context.Context) (*models.PricingSettings, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		log.Printf("ERROR: SettingsService.Get: %v", err)
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return settings, nil
}

// Rules loads the current settings as a typed rule set for pricing calls.
func (s *SettingsService) Rules(ctx context.Context) (*pricing.Rules, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	return pricing.FromSettings(settings), nil
}

func (s *SettingsService) mutate(ctx context.Context, op string, apply func(*models.PricingSettings) error) (*models.PricingSettings, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	if err := apply(settings); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, settings); err != nil {
		log.Printf("ERROR: SettingsService.%s: failed to save settings: %v", op, err)
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}
	log.Printf("INFO: SettingsService.%s: settings updated", op)
	return settings, nil
}

func validatePercentage(field string, pct decimal.Decimal) error {
	if pct.IsNegative() || pct.GreaterThan(hundred) {
		return NewValidationError(field, "must be between 0 and 100")
	}
	return nil
}

func idKey(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func (s *SettingsService) UpdateMaintenance(ctx context.Context, in MaintenanceInput) (*models.PricingSettings, error) {
	if err := validateStruct(s.validate, in); err != nil {
		return nil, err
	}
	return s.mutate(ctx, "UpdateMaintenance", func(settings *models.PricingSettings) error {
		settings.MaintenanceMode = in.Enabled
		if in.Message != nil {
			settings.MaintenanceMessage = *in.Message
		}
		return nil
	})
}

func (s *SettingsService) UpdateShipping(ctx context.Context, in ShippingInput) (*models.PricingSettings, error) {
	if in.ShippingPrice.IsNegative() {
		return nil, NewValidationError("shipping_price", "must not be negative")
	}
	if in.FreeShippingThreshold.Valid && in.FreeShippingThreshold.Decimal.IsNegative() {
		return nil, NewValidationError("free_shipping_threshold", "must not be negative")
	}
	return s.mutate(ctx, "UpdateShipping", func(settings *models.PricingSettings) error {
		settings.ShippingPrice = in.ShippingPrice.Round(2)
		settings.FreeShippingThreshold = in.FreeShippingThreshold
		if in.FreeShippingThreshold.Valid {
			settings.FreeShippingThreshold = decimal.NewNullDecimal(in.FreeShippingThreshold.Decimal.Round(2))
		}
		return nil
	})
}

func (s *SettingsService) UpdateExemptCategories(ctx context.Context, categoryIDs []uint) (*models.PricingSettings, error) {
	if err := s.requireCategories(ctx, categoryIDs); err != nil {
		return nil, err
	}
	ids := dedupe(categoryIDs)
	return s.mutate(ctx, "UpdateExemptCategories", func(settings *models.PricingSettings) error {
		settings.ExemptCategoryIDs = ids
		return nil
	})
}

func (s *SettingsService) UpdateGlobalDiscount(ctx context.Context, in GlobalDiscountInput) (*models.PricingSettings, error) {
	if err := validateStruct(s.validate, in); err != nil {
		return nil, err
	}
	if err := validatePercentage("percentage", in.Percentage); err != nil {
		return nil, err
	}
	return s.mutate(ctx, "UpdateGlobalDiscount", func(settings *models.PricingSettings) error {
		settings.GlobalDiscountEnabled = in.Enabled
		settings.GlobalDiscountPercent = in.Percentage
		if in.Name != "" {
			settings.GlobalDiscountName = in.Name
		} else if settings.GlobalDiscountName == "" {
			settings.GlobalDiscountName = models.DefaultGlobalDiscountName
		}
		return nil
	})
}

func (s *SettingsService) validateDiscount(in DiscountInput) error {
	if err := validateStruct(s.validate, in); err != nil {
		return err
	}
	if err := validatePercentage("percentage", in.Percentage); err != nil {
		return err
	}
	if in.Percentage.IsZero() {
		return NewValidationError("percentage", "must be greater than 0")
	}
	return nil
}

func refuseWhileGlobal(settings *models.PricingSettings, kind string) error {
	if settings.GlobalDiscountEnabled {
		return fmt.Errorf("%w: disable the global discount before adding a %s discount", ErrConfigurationConflict, kind)
	}
	return nil
}

func (s *SettingsService) AddCategoryDiscount(ctx context.Context, in DiscountInput) (*models.PricingSettings, error) {
	if err := s.validateDiscount(in); err != nil {
		return nil, err
	}
	if err := s.requireCategories(ctx, []uint{in.TargetID}); err != nil {
		return nil, err
	}
	return s.mutate(ctx, "AddCategoryDiscount", func(settings *models.PricingSettings) error {
		if err := refuseWhileGlobal(settings, "category"); err != nil {
			return err
		}
		if settings.CategoryDiscounts == nil {
			settings.CategoryDiscounts = map[string]models.DiscountEntry{}
		}
		settings.CategoryDiscounts[idKey(in.TargetID)] = models.DiscountEntry{Percentage: in.Percentage, Name: in.Name}
		return nil
	})
}

func (s *SettingsService) RemoveCategoryDiscount(ctx context.Context, categoryID uint) (*models.PricingSettings, error) {
	return s.mutate(ctx, "RemoveCategoryDiscount", func(settings *models.PricingSettings) error {
		key := idKey(categoryID)
		if _, ok := settings.CategoryDiscounts[key]; !ok {
			return fmt.Errorf("category discount for %d: %w", categoryID, ErrNotFound)
		}
		delete(settings.CategoryDiscounts, key)
		return nil
	})
}

func (s *SettingsService) AddProductDiscount(ctx context.Context, in DiscountInput) (*models.PricingSettings, error) {
	if err := s.validateDiscount(in); err != nil {
		return nil, err
	}
	product, err := s.productRepo.GetByID(ctx, nil, in.TargetID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product %d: %w", in.TargetID, err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return s.mutate(ctx, "AddProductDiscount", func(settings *models.PricingSettings) error {
		if err := refuseWhileGlobal(settings, "product"); err != nil {
			return err
		}
		if settings.ProductDiscounts == nil {
			settings.ProductDiscounts = map[string]models.DiscountEntry{}
		}
		settings.ProductDiscounts[idKey(in.TargetID)] = models.DiscountEntry{Percentage: in.Percentage, Name: in.Name}
		return nil
	})
}

func (s *SettingsService) RemoveProductDiscount(ctx context.Context, productID uint) (*models.PricingSettings, error) {
	return s.mutate(ctx, "RemoveProductDiscount", func(settings *models.PricingSettings) error {
		key := idKey(productID)
		if _, ok := settings.ProductDiscounts[key]; !ok {
			return fmt.Errorf("product discount for %d: %w", productID, ErrNotFound)
		}
		delete(settings.ProductDiscounts, key)
		return nil
	})
}

// AddSeasonalOffer appends an offer. Names identify offers for removal, so a
// second offer with the same name is refused.
func (s *SettingsService) AddSeasonalOffer(ctx context.Context, in SeasonalOfferInput) (*models.PricingSettings, error) {
	if err := validateStruct(s.validate, in); err != nil {
		return nil, err
	}
	if err := validatePercentage("discount_percentage", in.Percentage); err != nil {
		return nil, err
	}
	if in.StartDate > in.EndDate {
		return nil, NewValidationError("end_date", "must not be before start_date")
	}
	if err := s.requireCategories(ctx, in.CategoryIDs); err != nil {
		return nil, err
	}

	entry := models.SeasonalOfferEntry{
		Name:               in.Name,
		StartDate:          in.StartDate,
		EndDate:            in.EndDate,
		DiscountPercentage: in.Percentage,
	}
	if in.CategoryIDs != nil {
		entry.CategoryIDs = dedupe(in.CategoryIDs)
	}
	if in.ProductIDs != nil {
		entry.ProductIDs = dedupe(in.ProductIDs)
	}

	return s.mutate(ctx, "AddSeasonalOffer", func(settings *models.PricingSettings) error {
		for _, existing := range settings.SeasonalOffers {
			if existing.Name == in.Name {
				return fmt.Errorf("%w: seasonal offer %q already exists", ErrConfigurationConflict, in.Name)
			}
		}
		settings.SeasonalOffers = append(settings.SeasonalOffers, entry)
		return nil
	})
}

func (s *SettingsService) RemoveSeasonalOffer(ctx context.Context, name string) (*models.PricingSettings, error) {
	return s.mutate(ctx, "RemoveSeasonalOffer", func(settings *models.PricingSettings) error {
		kept := make([]models.SeasonalOfferEntry, 0, len(settings.SeasonalOffers))
		for _, offer := range settings.SeasonalOffers {
			if offer.Name != name {
				kept = append(kept, offer)
			}
		}
		if len(kept) == len(settings.SeasonalOffers) {
			return fmt.Errorf("seasonal offer %q: %w", name, ErrNotFound)
		}
		settings.SeasonalOffers = kept
		return nil
	})
}

func (s *SettingsService) UpdateUserRegistration(ctx context.Context, allow bool) (*models.PricingSettings, error) {
	return s.mutate(ctx, "UpdateUserRegistration", func(settings *models.PricingSettings) error {
		settings.AllowUserRegistration = allow
		return nil
	})
}

func (s *SettingsService) UpdateMaxItems(ctx context.Context, in MaxItemsInput) (*models.PricingSettings, error) {
	if err := validateStruct(s.validate, in); err != nil {
		return nil, err
	}
	return s.mutate(ctx, "UpdateMaxItems", func(settings *models.PricingSettings) error {
		settings.MaxItemsPerOrder = in.MaxItemsPerOrder
		return nil
	})
}

func (s *SettingsService) PreviewProductDiscount(ctx context.Context, productID uint) (*DiscountPreview, error) {
	product, err := s.productRepo.GetByID(ctx, nil, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product %d: %w", productID, err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	rules, err := s.Rules(ctx)
	if err != nil {
		return nil, err
	}

	today := s.Today()
	final, info := pricing.Resolve(product, rules, today)
	return &DiscountPreview{
		ProductID:     product.ID,
		ProductName:   product.Name,
		OriginalPrice: product.Price.Round(2),
		FinalPrice:    final,
		HasDiscount:   info != nil,
		Discount:      info,
		Date:          today,
	}, nil
}

func (s *SettingsService) PublicSettings(ctx context.Context) (*PublicSettings, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	public := &PublicSettings{
		MaintenanceMode:       settings.MaintenanceMode,
		AllowUserRegistration: settings.AllowUserRegistration,
		ShippingPrice:         settings.ShippingPrice,
		FreeShippingThreshold: settings.FreeShippingThreshold,
		ActiveOffers:          []PublicOffer{},
		MaxItemsPerOrder:      settings.MaxItemsPerOrder,
	}
	if settings.MaintenanceMode {
		public.MaintenanceMessage = settings.MaintenanceMessage
	}
	if settings.GlobalDiscountEnabled && settings.GlobalDiscountPercent.GreaterThan(decimal.Zero) {
		public.GlobalDiscount = &PublicOffer{Name: settings.GlobalDiscountName, Percentage: settings.GlobalDiscountPercent}
	}

	today := s.Today()
	for _, offer := range settings.SeasonalOffers {
		if offer.StartDate == "" || offer.EndDate == "" || today < offer.StartDate || today > offer.EndDate {
			continue
		}
		public.ActiveOffers = append(public.ActiveOffers, PublicOffer{
			Name:        offer.Name,
			StartDate:   offer.StartDate,
			EndDate:     offer.EndDate,
			Percentage:  offer.DiscountPercentage,
			CategoryIDs: offer.CategoryIDs,
			ProductIDs:  offer.ProductIDs,
		})
	}
	return public, nil
}

// ShippingQuote prices shipping for an arbitrary subtotal and category mix.
func (s *SettingsService) ShippingQuote(ctx context.Context, subtotal decimal.Decimal, categoryIDs []uint) (pricing.ShippingInfo, error) {
	if subtotal.IsNegative() {
		return pricing.ShippingInfo{}, NewValidationError("total", "must not be negative")
	}
	rules, err := s.Rules(ctx)
	if err != nil {
		return pricing.ShippingInfo{}, err
	}
	return pricing.CalculateShipping(subtotal, categoryIDs, rules), nil
}

func (s *SettingsService) requireCategories(ctx context.Context, ids []uint) error {
	missing, err := s.categoryRepo.MissingIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to check categories: %w", err)
	}
	if len(missing) > 0 {
		return fmt.Errorf("categories %v: %w", missing, ErrNotFound)
	}
	return nil
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
