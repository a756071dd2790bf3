package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Rakhulsr/storefront/app/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, order *models.Order) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Order, error)
	GetByIDForUser(ctx context.Context, id uint, userID string) (*models.Order, error)
	FindByPaymentRef(ctx context.Context, tx *gorm.DB, ref string) (*models.Order, error)
	FindRecentPaid(ctx context.Context, limit int) ([]models.Order, error)
	FindByUserID(ctx context.Context, userID string, limit, offset int) ([]models.Order, int64, error)
	GetAllOrders(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error)
	TransitionStatus(ctx context.Context, tx *gorm.DB, id uint, from models.OrderStatus, updates map[string]interface{}) (bool, error)
	MarkStockReleased(ctx context.Context, tx *gorm.DB, id uint) (bool, error)
	AttachPaymentRef(ctx context.Context, tx *gorm.DB, id uint, ref string) (bool, error)
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	CountByStatus(ctx context.Context) (map[models.OrderStatus]int64, error)
	RevenueSince(ctx context.Context, since time.Time) (decimal.Decimal, error)
}

type OrderFilter struct {
	Status   models.OrderStatus
	UserID   string
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
	Offset   int
}

// revenueStatuses are the states that count as money received.
var revenueStatuses = []models.OrderStatus{
	models.OrderStatusPaid,
	models.OrderStatusProcessing,
	models.OrderStatusShipped,
	models.OrderStatusDelivered,
}

type gormOrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &gormOrderRepository{db: db}
}

func (r *gormOrderRepository) Create(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	return pick(r.db, tx).WithContext(ctx).Create(order).Error
}

func (r *gormOrderRepository) first(ctx context.Context, db *gorm.DB, query string, args ...interface{}) (*models.Order, error) {
	var order models.Order
	err := db.WithContext(ctx).
		Preload("OrderItems").
		Preload("Address").
		Where(query, args...).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *gormOrderRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Order, error) {
	return r.first(ctx, pick(r.db, tx), "id = ?", id)
}

func (r *gormOrderRepository) GetByIDForUser(ctx context.Context, id uint, userID string) (*models.Order, error) {
	return r.first(ctx, r.db, "id = ? AND user_id = ?", id, userID)
}

func (r *gormOrderRepository) FindByPaymentRef(ctx context.Context, tx *gorm.DB, ref string) (*models.Order, error) {
	return r.first(ctx, pick(r.db, tx), "payment_provider_id = ? OR payment_transaction_id = ?", ref, ref)
}

func (r *gormOrderRepository) FindRecentPaid(ctx context.Context, limit int) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("status IN ?", []models.OrderStatus{models.OrderStatusPaid, models.OrderStatusProcessing, models.OrderStatusShipped}).
		Where("payment_provider_id IS NOT NULL").
		Order("created_at DESC").
		Limit(limit).
		Find(&orders).Error
	return orders, err
}

func (r *gormOrderRepository) FindByUserID(ctx context.Context, userID string, limit, offset int) ([]models.Order, int64, error) {
	return r.GetAllOrders(ctx, OrderFilter{UserID: userID, Limit: limit, Offset: offset})
}

func (r *gormOrderRepository) GetAllOrders(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error) {
	var orders []models.Order
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Order{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.DateFrom != nil {
		query = query.Where("created_at >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("created_at <= ?", *filter.DateTo)
	}

	query = query.Session(&gorm.Session{})

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	err := query.
		Preload("OrderItems").
		Order("created_at DESC").
		Order("id DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// TransitionStatus applies updates only while the order is still in from.
// A false result means another writer moved the order first.
func (r *gormOrderRepository) TransitionStatus(ctx context.Context, tx *gorm.DB, id uint, from models.OrderStatus, updates map[string]interface{}) (bool, error) {
	updates["updated_at"] = time.Now()
	result := pick(r.db, tx).WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// MarkStockReleased flips the release flag once. Only the caller that gets
// true may put the items back into stock.
func (r *gormOrderRepository) MarkStockReleased(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	result := pick(r.db, tx).WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND stock_released = ?", id, false).
		Update("stock_released", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *gormOrderRepository) AttachPaymentRef(ctx context.Context, tx *gorm.DB, id uint, ref string) (bool, error) {
	return r.TransitionStatus(ctx, tx, id, models.OrderStatusPending, map[string]interface{}{
		"payment_provider_id": ref,
		"payment_status":      models.PaymentStatusPending,
		"status":              models.OrderStatusPaymentPending,
	})
}

func (r *gormOrderRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := pick(r.db, tx).WithContext(ctx)
	if err := db.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
		return fmt.Errorf("failed to delete order items: %w", err)
	}
	return db.Delete(&models.Order{}, id).Error
}

func (r *gormOrderRepository) CountByStatus(ctx context.Context) (map[models.OrderStatus]int64, error) {
	var rows []struct {
		Status models.OrderStatus
		Total  int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[models.OrderStatus]int64, len(models.AllOrderStatuses))
	for _, status := range models.AllOrderStatuses {
		counts[status] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

func (r *gormOrderRepository) RevenueSince(ctx context.Context, since time.Time) (decimal.Decimal, error) {
	var totals []decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("status IN ?", revenueStatuses).
		Where("created_at >= ?", since).
		Pluck("total", &totals).Error
	if err != nil {
		return decimal.Zero, err
	}

	sum := decimal.Zero
	for _, t := range totals {
		sum = sum.Add(t)
	}
	return sum, nil
}
