package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusPaymentPending OrderStatus = "payment_pending"
	OrderStatusPaid           OrderStatus = "paid"
	OrderStatusProcessing     OrderStatus = "processing"
	OrderStatusShipped        OrderStatus = "shipped"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
	OrderStatusRefunded       OrderStatus = "refunded"
)

const (
	PaymentMethodMidtrans = "midtrans"
	PaymentMethodCash     = "cash"
	PaymentMethodTransfer = "transfer"
)

const (
	PaymentStatusAwaitingCheckout = "awaiting_checkout"
	PaymentStatusPending          = "pending"
	PaymentStatusPaid             = "paid"
	PaymentStatusFailed           = "failed"
	PaymentStatusRefunded         = "refunded"
)

var validTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:        {OrderStatusPaymentPending, OrderStatusPaid, OrderStatusCancelled},
	OrderStatusPaymentPending: {OrderStatusPaid, OrderStatusCancelled},
	OrderStatusPaid:           {OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled, OrderStatusRefunded},
	OrderStatusProcessing:     {OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled, OrderStatusRefunded},
	OrderStatusShipped:        {OrderStatusDelivered, OrderStatusRefunded},
}

var AllOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusPaymentPending,
	OrderStatusPaid,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
	OrderStatusRefunded,
}

func (s OrderStatus) IsValid() bool {
	for _, v := range AllOrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled || s == OrderStatusRefunded
}

// IsCancellable reports whether the customer may still cancel.
func (s OrderStatus) IsCancellable() bool {
	return s == OrderStatusPending || s == OrderStatusPaymentPending
}

// IsPaidFamily covers the states a provider refund can move to refunded.
func (s OrderStatus) IsPaidFamily() bool {
	return s == OrderStatusPaid || s == OrderStatusProcessing || s == OrderStatusShipped
}

func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

type Order struct {
	ID                   uint            `gorm:"primaryKey" json:"id"`
	UserID               string          `gorm:"size:36;index;not null" json:"user_id"`
	User                 User            `gorm:"foreignKey:UserID" json:"-"`
	AddressID            uint            `gorm:"index;not null" json:"address_id"`
	Address              Address         `gorm:"foreignKey:AddressID" json:"address,omitempty"`
	PaymentMethod        string          `gorm:"size:30;not null" json:"payment_method"`
	PaymentProviderID    *string         `gorm:"size:255;uniqueIndex" json:"payment_provider_id,omitempty"`
	PaymentTransactionID string          `gorm:"size:255;index" json:"payment_transaction_id,omitempty"`
	PaymentStatus        string          `gorm:"size:50" json:"payment_status"`
	Status               OrderStatus     `gorm:"size:30;index;not null" json:"status"`
	Subtotal             decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"subtotal"`
	DiscountTotal        decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"discount_total"`
	ShippingCost         decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"shipping_cost"`
	Tax                  decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"tax"`
	Total                decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"total"`
	RefundedAmount       decimal.Decimal `gorm:"type:decimal(16,2);not null;default:0" json:"refunded_amount"`
	TrackingNumber       string          `gorm:"size:255" json:"tracking_number,omitempty"`
	AdminNotes           string          `gorm:"type:text" json:"admin_notes,omitempty"`
	CustomerNotes        string          `gorm:"type:text" json:"customer_notes,omitempty"`
	StockReleased        bool            `gorm:"not null;default:false" json:"-"`
	OrderItems           []OrderItem     `gorm:"constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt            time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
	PaidAt               *time.Time      `json:"paid_at,omitempty"`
	ShippedAt            *time.Time      `json:"shipped_at,omitempty"`
	DeliveredAt          *time.Time      `json:"delivered_at,omitempty"`
}

func (o *Order) ItemCount() int {
	total := 0
	for _, item := range o.OrderItems {
		total += item.Quantity
	}
	return total
}
