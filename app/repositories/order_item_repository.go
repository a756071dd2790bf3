package repositories

import (
	"context"

	"github.com/Rakhulsr/storefront/app/models"
	"gorm.io/gorm"
)

type TopProduct struct {
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	TotalSold   int64  `json:"total_sold"`
}

type OrderItemRepository interface {
	TopProducts(ctx context.Context, limit int) ([]TopProduct, error)
}

type OrderItemRepositoryImpl struct {
	DB *gorm.DB
}

func NewOrderItemRepository(db *gorm.DB) OrderItemRepository {
	return &OrderItemRepositoryImpl{DB: db}
}

// TopProducts ranks products by units sold, ignoring cancelled and refunded
// orders.
func (r *OrderItemRepositoryImpl) TopProducts(ctx context.Context, limit int) ([]TopProduct, error) {
	var top []TopProduct
	err := r.DB.WithContext(ctx).
		Model(&models.OrderItem{}).
		Select("order_items.product_id, MAX(order_items.product_name) AS product_name, SUM(order_items.quantity) AS total_sold").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.status NOT IN ?", []models.OrderStatus{models.OrderStatusCancelled, models.OrderStatusRefunded}).
		Group("order_items.product_id").
		Order("total_sold DESC").
		Limit(limit).
		Scan(&top).Error
	return top, err
}
