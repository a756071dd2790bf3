package repositories

import (
	"context"
	"errors"
	"strings"

	"github.com/Rakhulsr/storefront/app/models"
	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Product, error)
	FindByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]models.Product, error)
	GetActivePaginated(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error)
	DecrementStock(ctx context.Context, tx *gorm.DB, productID uint, qty int) (bool, error)
	IncrementStock(ctx context.Context, tx *gorm.DB, productID uint, qty int) error
}

type ProductFilter struct {
	CategoryID uint
	Keyword    string
	Limit      int
	Offset     int
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db}
}

func (p *productRepository) Create(ctx context.Context, product *models.Product) error {
	return p.db.WithContext(ctx).Create(product).Error
}

func (p *productRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Product, error) {
	var product models.Product
	err := pick(p.db, tx).WithContext(ctx).First(&product, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// FindByIDs returns the products that exist, in no particular order. Missing
// ids are simply absent from the result.
func (p *productRepository) FindByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]models.Product, error) {
	var products []models.Product
	if len(ids) == 0 {
		return products, nil
	}
	err := pick(p.db, tx).WithContext(ctx).Where("id IN ?", ids).Find(&products).Error
	return products, err
}

func (p *productRepository) GetActivePaginated(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error) {
	var products []models.Product
	var total int64

	query := p.db.WithContext(ctx).Model(&models.Product{}).Where("is_active = ?", true)
	if filter.CategoryID != 0 {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.Keyword != "" {
		keyword := "%" + strings.ToLower(filter.Keyword) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", keyword, keyword)
	}

	query = query.Session(&gorm.Session{})

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&products).Error

	return products, total, err
}

// DecrementStock removes qty units only if that many are available. It
// reports false when the guard fails so the caller can roll back.
func (p *productRepository) DecrementStock(ctx context.Context, tx *gorm.DB, productID uint, qty int) (bool, error) {
	result := pick(p.db, tx).WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// IncrementStock also restores soft-deleted products.
func (p *productRepository) IncrementStock(ctx context.Context, tx *gorm.DB, productID uint, qty int) error {
	return pick(p.db, tx).WithContext(ctx).
		Unscoped().
		Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty)).Error
}
