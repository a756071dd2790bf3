package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Rakhulsr/storefront/app/helpers"
	"github.com/Rakhulsr/storefront/app/models"
	"github.com/Rakhulsr/storefront/app/pricing"
	"github.com/Rakhulsr/storefront/app/repositories"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// refundScanLimit bounds how many recent paid orders are checked against the
// gateway when a refund arrives with an unknown reference.
const refundScanLimit = 50

type CreateOrderInput struct {
	UserID        string             `json:"-" validate:"required"`
	AddressID     uint               `json:"address_id" validate:"required"`
	Items         []pricing.CartItem `json:"items" validate:"dive"`
	PaymentMethod string             `json:"payment_method" validate:"required,oneof=midtrans cash transfer"`
	Notes         string             `json:"notes" validate:"max=1000"`
}

// CheckoutMetadata travels with a checkout session so the order can be built
// when the provider confirms payment.
type CheckoutMetadata struct {
	UserID        string
	AddressID     uint
	PaymentMethod string
	Notes         string
}

type PaymentConfirmation struct {
	Reference     string
	TransactionID string
	PaymentStatus string
	Metadata      *CheckoutMetadata
}

type UpdateStatusInput struct {
	OrderID        uint               `json:"-"`
	Status         models.OrderStatus `json:"status" validate:"required"`
	AdminNotes     *string            `json:"admin_notes" validate:"omitempty,max=2000"`
	TrackingNumber *string            `json:"tracking_number" validate:"omitempty,max=255"`
}

type AdminOrderQuery struct {
	Status   models.OrderStatus
	UserID   string
	DateFrom *time.Time
	DateTo   *time.Time
	Page     int
	Limit    int
}

type OrderPage struct {
	Orders []models.Order `json:"orders"`
	Total  int64          `json:"total"`
	Page   int            `json:"page"`
	Limit  int            `json:"limit"`
}

type RevenueSummary struct {
	Today decimal.Decimal `json:"today"`
	Week  decimal.Decimal `json:"week"`
	Month decimal.Decimal `json:"month"`
	Year  decimal.Decimal `json:"year"`
	Total decimal.Decimal `json:"total"`
}

type OrderStats struct {
	Counts      map[models.OrderStatus]int64 `json:"counts"`
	TotalOrders int64                        `json:"total_orders"`
	Revenue     RevenueSummary               `json:"revenue"`
	TopProducts []repositories.TopProduct    `json:"top_products"`
}

// TransactionLookup asks the payment provider about a transaction.
type TransactionLookup interface {
	TransactionStatus(ctx context.Context, reference string) (*TransactionStatus, error)
}

type OrderService struct {
	db            *gorm.DB
	orderRepo     repositories.OrderRepository
	orderItemRepo repositories.OrderItemRepository
	productRepo   repositories.ProductRepository
	addressRepo   repositories.AddressRepository
	cartRepo      repositories.CartRepository
	settings      *SettingsService
	notifier      Notifier
	lookup        TransactionLookup
	validate      *validator.Validate
	now           func() time.Time
}

func NewOrderService(
	db *gorm.DB,
	orderRepo repositories.OrderRepository,
	orderItemRepo repositories.OrderItemRepository,
	productRepo repositories.ProductRepository,
	addressRepo repositories.AddressRepository,
	cartRepo repositories.CartRepository,
	settings *SettingsService,
	notifier Notifier,
) *OrderService {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &OrderService{
		db:            db,
		orderRepo:     orderRepo,
		orderItemRepo: orderItemRepo,
		productRepo:   productRepo,
		addressRepo:   addressRepo,
		cartRepo:      cartRepo,
		settings:      settings,
		notifier:      notifier,
		validate:      validator.New(),
		now:           time.Now,
	}
}

func (s *OrderService) SetClock(now func() time.Time) {
	s.now = now
}

// SetTransactionLookup enables the gateway fallback used by refunds.
func (s *OrderService) SetTransactionLookup(lookup TransactionLookup) {
	s.lookup = lookup
}

type orderDraft struct {
	userID        string
	addressID     uint
	items         []pricing.CartItem
	paymentMethod string
	notes         string
	status        models.OrderStatus
	paymentStatus string
	reference     string
	transactionID string
}

func (s *OrderService) notify(ctx context.Context, event OrderEvent, order *models.Order) {
	s.notifier.Notify(context.WithoutCancel(ctx), event, order)
}

func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	if len(in.Items) == 0 {
		return nil, ErrEmptyCart
	}
	if err := validateStruct(s.validate, in); err != nil {
		return nil, err
	}

	rules, err := s.settings.Rules(ctx)
	if err != nil {
		return nil, err
	}

	paymentStatus := models.PaymentStatusPending
	if in.PaymentMethod == models.PaymentMethodMidtrans {
		paymentStatus = models.PaymentStatusAwaitingCheckout
	}

	var order *models.Order
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = s.placeOrder(ctx, tx, orderDraft{
			userID:        in.UserID,
			addressID:     in.AddressID,
			items:         in.Items,
			paymentMethod: in.PaymentMethod,
			notes:         in.Notes,
			status:        models.OrderStatusPending,
			paymentStatus: paymentStatus,
		}, rules)
		return err
	})
	if err != nil {
		log.Printf("ERROR: OrderService.CreateOrder: user %s: %v", in.UserID, err)
		return nil, err
	}

	log.Printf("INFO: OrderService.CreateOrder: order %d created for user %s, total %s", order.ID, order.UserID, order.Total)
	s.notify(ctx, EventOrderCreated, order)
	return order, nil
}

// placeOrder validates, prices and persists an order and takes its stock.
// Everything runs on tx so a failure anywhere leaves no trace.
func (s *OrderService) placeOrder(ctx context.Context, tx *gorm.DB, draft orderDraft, rules *pricing.Rules) (*models.Order, error) {
	items := pricing.MergeItems(draft.items)
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	totalQty := 0
	ids := make([]uint, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, NewValidationError("quantity", "must be at least 1")
		}
		totalQty += item.Quantity
		ids = append(ids, item.ProductID)
	}
	if rules.MaxItemsPerOrder > 0 && totalQty > rules.MaxItemsPerOrder {
		return nil, NewValidationError("items", fmt.Sprintf("an order may contain at most %d items", rules.MaxItemsPerOrder))
	}

	address, err := s.addressRepo.FindAddressForUser(ctx, tx, draft.addressID, draft.userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get address: %w", err)
	}
	if address == nil {
		return nil, ErrAddressNotFound
	}

	products, err := s.productRepo.FindByIDs(ctx, tx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	catalog := pricing.NewProductSet(products)
	for _, item := range items {
		product, ok := catalog.Product(item.ProductID)
		if !ok || !product.IsActive {
			return nil, &ProductUnavailableError{ProductID: item.ProductID}
		}
		if product.Stock < item.Quantity {
			return nil, &InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Available:   product.Stock,
				Requested:   item.Quantity,
			}
		}
	}

	now := s.now()
	priced := pricing.PriceCart(items, catalog, rules, helpers.Today(now))

	order := &models.Order{
		UserID:        draft.userID,
		AddressID:     address.ID,
		PaymentMethod: draft.paymentMethod,
		PaymentStatus: draft.paymentStatus,
		Status:        draft.status,
		Subtotal:      priced.TotalAmount,
		DiscountTotal: priced.TotalDiscount,
		ShippingCost:  priced.ShippingCost,
		Tax:           decimal.Zero,
		Total:         priced.GrandTotal,
		CustomerNotes: draft.notes,
	}
	if draft.reference != "" {
		ref := draft.reference
		order.PaymentProviderID = &ref
	}
	order.PaymentTransactionID = draft.transactionID
	if draft.status == models.OrderStatusPaid {
		order.PaidAt = &now
	}

	for _, line := range priced.Items {
		order.OrderItems = append(order.OrderItems, models.OrderItem{
			ProductID:       line.ProductID,
			ProductName:     line.ProductName,
			ProductSku:      line.ProductSku,
			Quantity:        line.Quantity,
			UnitBasePrice:   line.UnitBasePrice,
			UnitPrice:       line.UnitFinalPrice,
			DiscountSource:  string(line.DiscountSource),
			DiscountName:    line.DiscountName,
			DiscountPercent: line.DiscountPercentage,
			Subtotal:        line.LineSubtotal,
		})
	}

	if err := s.orderRepo.Create(ctx, tx, order); err != nil {
		if isDuplicateKey(err) {
			return nil, ErrDuplicatePaymentReference
		}
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	for _, line := range priced.Items {
		ok, err := s.productRepo.DecrementStock(ctx, tx, line.ProductID, line.Quantity)
		if err != nil {
			return nil, fmt.Errorf("failed to decrement stock for product %d: %w", line.ProductID, err)
		}
		if !ok {
			return nil, &InsufficientStockError{
				ProductID:   line.ProductID,
				ProductName: line.ProductName,
				Available:   line.Stock,
				Requested:   line.Quantity,
			}
		}
	}

	order.Address = *address
	return order, nil
}

// releaseStock puts the order's items back once. A second call is a no-op.
func (s *OrderService) releaseStock(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	ok, err := s.orderRepo.MarkStockReleased(ctx, tx, order.ID)
	if err != nil {
		return fmt.Errorf("failed to mark stock released: %w", err)
	}
	if !ok {
		log.Printf("INFO: OrderService.releaseStock: stock for order %d already released", order.ID)
		return nil
	}
	for _, item := range order.OrderItems {
		if err := s.productRepo.IncrementStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
			return fmt.Errorf("failed to restore stock for product %d: %w", item.ProductID, err)
		}
	}
	return nil
}

// transition moves order from its observed status and reports a conflict when
// a concurrent writer got there first.
func (s *OrderService) transition(ctx context.Context, tx *gorm.DB, order *models.Order, to models.OrderStatus, updates map[string]interface{}) error {
	updates["status"] = to
	ok, err := s.orderRepo.TransitionStatus(ctx, tx, order.ID, order.Status, updates)
	if err != nil {
		return fmt.Errorf("failed to update order %d: %w", order.ID, err)
	}
	if !ok {
		return &TransitionError{OrderID: order.ID, From: order.Status, To: to}
	}
	return nil
}

func (s *OrderService) reload(ctx context.Context, id uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload order %d: %w", id, err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ConfirmPayment marks the order behind ref as paid. When no order exists yet
// it is built from the customer's stored cart and the checkout metadata.
func (s *OrderService) ConfirmPayment(ctx context.Context, conf PaymentConfirmation) (*models.Order, error) {
	if conf.Reference == "" {
		return nil, NewValidationError("reference", "is required")
	}
	if conf.PaymentStatus == "" {
		conf.PaymentStatus = models.PaymentStatusPaid
	}

	existing, err := s.orderRepo.FindByPaymentRef(ctx, nil, conf.Reference)
	if err != nil {
		return nil, fmt.Errorf("failed to find order by payment reference: %w", err)
	}
	if existing != nil {
		return s.promoteToPaid(ctx, existing, conf)
	}
	if conf.Metadata == nil {
		return nil, fmt.Errorf("payment reference %s: %w", conf.Reference, ErrOrderNotFound)
	}
	return s.createPaidOrder(ctx, conf)
}

func (s *OrderService) promoteToPaid(ctx context.Context, order *models.Order, conf PaymentConfirmation) (*models.Order, error) {
	if order.Status != models.OrderStatusPending && order.Status != models.OrderStatusPaymentPending {
		log.Printf("INFO: OrderService.ConfirmPayment: order %d already %s, ignoring reference %s", order.ID, order.Status, conf.Reference)
		return order, ErrDuplicatePaymentReference
	}

	updates := map[string]interface{}{
		"payment_status": conf.PaymentStatus,
	}
	if conf.TransactionID != "" {
		updates["payment_transaction_id"] = conf.TransactionID
	}
	if order.PaidAt == nil {
		updates["paid_at"] = s.now()
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.transition(ctx, tx, order, models.OrderStatusPaid, updates)
	})
	if err != nil {
		var terr *TransitionError
		if errors.As(err, &terr) {
			return order, ErrDuplicatePaymentReference
		}
		return nil, err
	}

	if err := s.cartRepo.Clear(ctx, order.UserID); err != nil {
		log.Printf("WARNING: OrderService.ConfirmPayment: failed to clear cart for user %s: %v", order.UserID, err)
	}

	paid, err := s.reload(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	log.Printf("INFO: OrderService.ConfirmPayment: order %d paid via %s", paid.ID, conf.Reference)
	s.notify(ctx, EventOrderPaid, paid)
	return paid, nil
}

func (s *OrderService) createPaidOrder(ctx context.Context, conf PaymentConfirmation) (*models.Order, error) {
	meta := conf.Metadata
	items, err := s.cartRepo.GetItems(ctx, meta.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart for user %s: %w", meta.UserID, err)
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	rules, err := s.settings.Rules(ctx)
	if err != nil {
		return nil, err
	}

	method := meta.PaymentMethod
	if method == "" {
		method = models.PaymentMethodMidtrans
	}

	var order *models.Order
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = s.placeOrder(ctx, tx, orderDraft{
			userID:        meta.UserID,
			addressID:     meta.AddressID,
			items:         items,
			paymentMethod: method,
			notes:         meta.Notes,
			status:        models.OrderStatusPaid,
			paymentStatus: conf.PaymentStatus,
			reference:     conf.Reference,
			transactionID: conf.TransactionID,
		}, rules)
		return err
	})
	if err != nil {
		log.Printf("ERROR: OrderService.ConfirmPayment: failed to create order for reference %s: %v", conf.Reference, err)
		return nil, err
	}

	if err := s.cartRepo.Clear(ctx, meta.UserID); err != nil {
		log.Printf("WARNING: OrderService.ConfirmPayment: failed to clear cart for user %s: %v", meta.UserID, err)
	}

	log.Printf("INFO: OrderService.ConfirmPayment: order %d created as paid from reference %s", order.ID, conf.Reference)
	s.notify(ctx, EventOrderPaid, order)
	return order, nil
}

// FailPayment cancels the unpaid order behind ref and returns its stock.
// Orders that are already closed are left alone.
func (s *OrderService) FailPayment(ctx context.Context, ref string) (*models.Order, error) {
	if ref == "" {
		return nil, NewValidationError("reference", "is required")
	}
	order, err := s.orderRepo.FindByPaymentRef(ctx, nil, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to find order by payment reference: %w", err)
	}
	if order == nil {
		return nil, fmt.Errorf("payment reference %s: %w", ref, ErrOrderNotFound)
	}
	if order.Status == models.OrderStatusCancelled || order.Status == models.OrderStatusRefunded {
		return order, nil
	}
	// paid orders are only unwound through a refund
	if order.Status != models.OrderStatusPending && order.Status != models.OrderStatusPaymentPending {
		return nil, &TransitionError{OrderID: order.ID, From: order.Status, To: models.OrderStatusCancelled}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.transition(ctx, tx, order, models.OrderStatusCancelled, map[string]interface{}{
			"payment_status": models.PaymentStatusFailed,
		}); err != nil {
			return err
		}
		return s.releaseStock(ctx, tx, order)
	})
	if err != nil {
		return nil, err
	}

	cancelled, err := s.reload(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	log.Printf("INFO: OrderService.FailPayment: order %d cancelled after failed payment %s", order.ID, ref)
	s.notify(ctx, EventOrderCancelled, cancelled)
	return cancelled, nil
}

func (s *OrderService) CancelOrder(ctx context.Context, orderID uint, userID string) (*models.Order, error) {
	order, err := s.orderRepo.GetByIDForUser(ctx, orderID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if !order.Status.IsCancellable() {
		return nil, ErrCannotCancelOrder
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.transition(ctx, tx, order, models.OrderStatusCancelled, map[string]interface{}{}); err != nil {
			return ErrCannotCancelOrder
		}
		return s.releaseStock(ctx, tx, order)
	})
	if err != nil {
		return nil, err
	}

	cancelled, err := s.reload(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	log.Printf("INFO: OrderService.CancelOrder: order %d cancelled by user %s", order.ID, userID)
	s.notify(ctx, EventOrderCancelled, cancelled)
	return cancelled, nil
}

// UpdateOrderStatus is the admin path. Setting the current status again only
// updates notes and tracking.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, in UpdateStatusInput) (*models.Order, error) {
	if err := validateStruct(s.validate, in); err != nil {
		return nil, err
	}
	if !in.Status.IsValid() {
		return nil, NewValidationError("status", fmt.Sprintf("unknown status %q", in.Status))
	}

	order, err := s.orderRepo.GetByID(ctx, nil, in.OrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	changing := in.Status != order.Status
	if changing && !order.Status.CanTransitionTo(in.Status) {
		return nil, &TransitionError{OrderID: order.ID, From: order.Status, To: in.Status}
	}

	now := s.now()
	updates := map[string]interface{}{}
	if in.AdminNotes != nil {
		updates["admin_notes"] = *in.AdminNotes
	}
	if in.TrackingNumber != nil {
		updates["tracking_number"] = *in.TrackingNumber
	}
	switch in.Status {
	case models.OrderStatusPaid:
		if order.PaidAt == nil {
			updates["paid_at"] = now
		}
		updates["payment_status"] = models.PaymentStatusPaid
	case models.OrderStatusShipped:
		if order.ShippedAt == nil {
			updates["shipped_at"] = now
		}
	case models.OrderStatusDelivered:
		if order.DeliveredAt == nil {
			updates["delivered_at"] = now
		}
	case models.OrderStatusRefunded:
		updates["payment_status"] = models.PaymentStatusRefunded
		if order.RefundedAmount.IsZero() {
			updates["refunded_amount"] = order.Total
		}
	}

	releases := changing && (in.Status == models.OrderStatusCancelled || in.Status == models.OrderStatusRefunded)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.transition(ctx, tx, order, in.Status, updates); err != nil {
			return err
		}
		if releases {
			return s.releaseStock(ctx, tx, order)
		}
		return nil
	})
	if err != nil {
		log.Printf("ERROR: OrderService.UpdateOrderStatus: order %d: %v", order.ID, err)
		return nil, err
	}

	updated, err := s.reload(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	log.Printf("INFO: OrderService.UpdateOrderStatus: order %d %s -> %s", order.ID, order.Status, in.Status)

	if changing {
		switch in.Status {
		case models.OrderStatusShipped:
			s.notify(ctx, EventOrderShipped, updated)
		case models.OrderStatusPaid:
			s.notify(ctx, EventOrderPaid, updated)
		case models.OrderStatusCancelled:
			s.notify(ctx, EventOrderCancelled, updated)
		case models.OrderStatusRefunded:
			s.notify(ctx, EventOrderRefunded, updated)
		}
	}
	return updated, nil
}

// RefundByPaymentRef refunds a paid order. ref may be our checkout reference
// or the provider's transaction id. A missing amount refunds the full total.
func (s *OrderService) RefundByPaymentRef(ctx context.Context, ref string, amount decimal.NullDecimal) (*models.Order, error) {
	if ref == "" {
		return nil, NewValidationError("reference", "is required")
	}

	order, err := s.findForRefund(ctx, ref)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("payment reference %s: %w", ref, ErrOrderNotFound)
	}
	if order.Status == models.OrderStatusRefunded {
		return order, nil
	}
	if !order.Status.IsPaidFamily() {
		return nil, &TransitionError{OrderID: order.ID, From: order.Status, To: models.OrderStatusRefunded}
	}

	refunded := order.Total
	if amount.Valid {
		if !amount.Decimal.IsPositive() || amount.Decimal.GreaterThan(order.Total) {
			return nil, NewValidationError("amount", "must be positive and not exceed the order total")
		}
		refunded = amount.Decimal.Round(2)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.transition(ctx, tx, order, models.OrderStatusRefunded, map[string]interface{}{
			"payment_status":  models.PaymentStatusRefunded,
			"refunded_amount": refunded,
		}); err != nil {
			return err
		}
		return s.releaseStock(ctx, tx, order)
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.reload(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	log.Printf("INFO: OrderService.RefundByPaymentRef: order %d refunded %s", order.ID, refunded)
	s.notify(ctx, EventOrderRefunded, updated)
	return updated, nil
}

func (s *OrderService) findForRefund(ctx context.Context, ref string) (*models.Order, error) {
	order, err := s.orderRepo.FindByPaymentRef(ctx, nil, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to find order by payment reference: %w", err)
	}
	if order != nil || s.lookup == nil {
		return order, nil
	}

	recent, err := s.orderRepo.FindRecentPaid(ctx, refundScanLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent paid orders: %w", err)
	}
	for _, candidate := range recent {
		if candidate.PaymentProviderID == nil {
			continue
		}
		status, err := s.lookup.TransactionStatus(ctx, *candidate.PaymentProviderID)
		if err != nil {
			log.Printf("WARNING: OrderService.RefundByPaymentRef: status lookup for %s failed: %v", *candidate.PaymentProviderID, err)
			continue
		}
		if status.TransactionID == ref {
			return s.orderRepo.GetByID(ctx, nil, candidate.ID)
		}
	}
	return nil, nil
}

// DeleteOrder removes an order for good, returning its stock first unless
// that already happened.
func (s *OrderService) DeleteOrder(ctx context.Context, orderID uint) error {
	order, err := s.orderRepo.GetByID(ctx, nil, orderID)
	if err != nil {
		return fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return ErrOrderNotFound
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.releaseStock(ctx, tx, order); err != nil {
			return err
		}
		return s.orderRepo.Delete(ctx, tx, order.ID)
	})
	if err != nil {
		log.Printf("ERROR: OrderService.DeleteOrder: order %d: %v", orderID, err)
		return fmt.Errorf("failed to delete order: %w", err)
	}
	log.Printf("INFO: OrderService.DeleteOrder: order %d deleted", orderID)
	return nil
}

// AttachPaymentReference records the checkout reference on a pending order.
// A payment_pending order may be given a fresh reference when the customer
// restarts checkout.
func (s *OrderService) AttachPaymentReference(ctx context.Context, orderID uint, userID, ref string) (*models.Order, error) {
	if ref == "" {
		return nil, NewValidationError("reference", "is required")
	}
	order, err := s.orderRepo.GetByIDForUser(ctx, orderID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	var ok bool
	switch order.Status {
	case models.OrderStatusPending:
		ok, err = s.orderRepo.AttachPaymentRef(ctx, nil, order.ID, ref)
	case models.OrderStatusPaymentPending:
		ok, err = s.orderRepo.TransitionStatus(ctx, nil, order.ID, order.Status, map[string]interface{}{
			"payment_provider_id": ref,
		})
	default:
		return nil, &TransitionError{OrderID: order.ID, From: order.Status, To: models.OrderStatusPaymentPending}
	}
	if err != nil {
		if isDuplicateKey(err) {
			return nil, ErrDuplicatePaymentReference
		}
		return nil, fmt.Errorf("failed to attach payment reference: %w", err)
	}
	if !ok {
		return nil, &TransitionError{OrderID: order.ID, From: order.Status, To: models.OrderStatusPaymentPending}
	}
	return s.reload(ctx, order.ID)
}

func (s *OrderService) GetOrder(ctx context.Context, orderID uint, userID string) (*models.Order, error) {
	order, err := s.orderRepo.GetByIDForUser(ctx, orderID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, userID string, page, limit int) (*OrderPage, error) {
	orders, total, err := s.orderRepo.FindByUserID(ctx, userID, limit, (page-1)*limit)
	if err != nil {
		log.Printf("ERROR: OrderService.ListOrders: user %s: %v", userID, err)
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return &OrderPage{Orders: orders, Total: total, Page: page, Limit: limit}, nil
}

func (s *OrderService) GetOrderAdmin(ctx context.Context, orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, nil, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *OrderService) ListOrdersAdmin(ctx context.Context, q AdminOrderQuery) (*OrderPage, error) {
	if q.Status != "" && !q.Status.IsValid() {
		return nil, NewValidationError("status", fmt.Sprintf("unknown status %q", q.Status))
	}
	orders, total, err := s.orderRepo.GetAllOrders(ctx, repositories.OrderFilter{
		Status:   q.Status,
		UserID:   q.UserID,
		DateFrom: q.DateFrom,
		DateTo:   q.DateTo,
		Limit:    q.Limit,
		Offset:   (q.Page - 1) * q.Limit,
	})
	if err != nil {
		log.Printf("ERROR: OrderService.ListOrdersAdmin: %v", err)
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return &OrderPage{Orders: orders, Total: total, Page: q.Page, Limit: q.Limit}, nil
}

func (s *OrderService) Stats(ctx context.Context) (*OrderStats, error) {
	counts, err := s.orderRepo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	stats := &OrderStats{Counts: counts}
	for _, n := range counts {
		stats.TotalOrders += n
	}

	now := s.now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekday := (int(startOfDay.Weekday()) + 6) % 7
	periods := []struct {
		since time.Time
		dst   *decimal.Decimal
	}{
		{startOfDay, &stats.Revenue.Today},
		{startOfDay.AddDate(0, 0, -weekday), &stats.Revenue.Week},
		{time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), &stats.Revenue.Month},
		{time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location()), &stats.Revenue.Year},
		{time.Time{}, &stats.Revenue.Total},
	}
	for _, p := range periods {
		sum, err := s.orderRepo.RevenueSince(ctx, p.since)
		if err != nil {
			return nil, fmt.Errorf("failed to sum revenue: %w", err)
		}
		*p.dst = sum
	}

	top, err := s.orderItemRepo.TopProducts(ctx, 5)
	if err != nil {
		return nil, fmt.Errorf("failed to load top products: %w", err)
	}
	stats.TopProducts = top
	return stats, nil
}
