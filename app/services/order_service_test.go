package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Rakhulsr/storefront/app/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrder_SnapshotsPricesAndTakesStock(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	p := h.newProduct(t, "kettle", "100.00", 10)
	_, err := h.settings.AddProductDiscount(ctx, DiscountInput{TargetID: p.ID, Percentage: dec("10"), Name: "Kettle Week"})
	require.NoError(t, err)
	_, err = h.settings.UpdateShipping(ctx, ShippingInput{ShippingPrice: dec("15"), FreeShippingThreshold: decimal.NewNullDecimal(dec("500"))})
	require.NoError(t, err)

	order := h.placeOrder(t, [2]uint{p.ID, 2})

	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
	assertMoney(t, "180.00", order.Subtotal)
	assertMoney(t, "20.00", order.DiscountTotal)
	assertMoney(t, "15.00", order.ShippingCost)
	assertMoney(t, "195.00", order.Total)
	require.Len(t, order.OrderItems, 1)

	item := order.OrderItems[0]
	assertMoney(t, "100.00", item.UnitBasePrice)
	assertMoney(t, "90.00", item.UnitPrice)
	assert.Equal(t, "product", item.DiscountSource)
	assert.Equal(t, "Kettle Week", item.DiscountName)
	assertMoney(t, "180.00", item.Subtotal)

	assert.Equal(t, 8, h.stockOf(t, p.ID))
	assert.Equal(t, []OrderEvent{EventOrderCreated}, h.notifier.Events())
}

func TestCreateOrder_SnapshotSurvivesRuleChanges(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	p := h.newProduct(t, "lamp", "50.00", 5)
	_, err := h.settings.AddProductDiscount(ctx, DiscountInput{TargetID: p.ID, Percentage: dec("20")})
	require.NoError(t, err)

	order := h.placeOrder(t, [2]uint{p.ID, 1})

	_, err = h.settings.RemoveProductDiscount(ctx, p.ID)
	require.NoError(t, err)
	require.NoError(t, h.db.Model(&models.Product{}).Where("id = ?", p.ID).Update("price", dec("80")).Error)

	stored, err := h.orders.GetOrder(ctx, order.ID, h.user.ID)
	require.NoError(t, err)
	assertMoney(t, "40.00", stored.OrderItems[0].UnitPrice)
	assertMoney(t, "50.00", stored.OrderItems[0].UnitBasePrice)
	assertMoney(t, "40.00", stored.Total)
}

func TestCreateOrder_MidtransAwaitsCheckout(t *testing.T) {
	h := newHarness(t)
	p := h.newProduct(t, "mug", "12.50", 3)

	in := h.orderInput([2]uint{p.ID, 1})
	in.PaymentMethod = models.PaymentMethodMidtrans
	order, err := h.orders.CreateOrder(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusAwaitingCheckout, order.PaymentStatus)
}

func TestCreateOrder_MergesRepeatedLines(t *testing.T) {
	h := newHarness(t)
	p := h.newProduct(t, "pen", "2.00", 10)

	order := h.placeOrder(t, [2]uint{p.ID, 1}, [2]uint{p.ID, 2})

	require.Len(t, order.OrderItems, 1)
	assert.Equal(t, 3, order.OrderItems[0].Quantity)
	assert.Equal(t, 7, h.stockOf(t, p.ID))
}

func TestCreateOrder_InsufficientStockIsAtomic(t *testing.T) {
	h := newHarness(t)
	a := h.newProduct(t, "a", "10.00", 5)
	b := h.newProduct(t, "b", "10.00", 1)

	_, err := h.orders.CreateOrder(context.Background(), h.orderInput([2]uint{a.ID, 2}, [2]uint{b.ID, 3}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientStock))

	var stockErr *InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, b.ID, stockErr.ProductID)
	assert.Equal(t, "b", stockErr.ProductName)
	assert.Equal(t, 1, stockErr.Available)
	assert.Equal(t, 3, stockErr.Requested)

	assert.Equal(t, 5, h.stockOf(t, a.ID))
	assert.Equal(t, 1, h.stockOf(t, b.ID))

	var count int64
	require.NoError(t, h.db.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Empty(t, h.notifier.Events())
}

func TestCreateOrder_RejectsUnavailableProducts(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	ok := h.newProduct(t, "ok", "10.00", 5)
	inactive := h.newProduct(t, "inactive", "10.00", 5)
	deleted := h.newProduct(t, "deleted", "10.00", 5)
	require.NoError(t, h.db.Model(&models.Product{}).Where("id = ?", inactive.ID).Update("is_active", false).Error)
	require.NoError(t, h.db.Delete(&models.Product{}, deleted.ID).Error)

	for _, gone := range []*models.Product{inactive, deleted} {
		_, err := h.orders.CreateOrder(ctx, h.orderInput([2]uint{ok.ID, 1}, [2]uint{gone.ID, 1}))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNotFound))

		var unavailable *ProductUnavailableError
		require.True(t, errors.As(err, &unavailable))
		assert.Equal(t, gone.ID, unavailable.ProductID)
	}

	assert.Equal(t, 5, h.stockOf(t, ok.ID))
	assert.Equal(t, 5, h.stockOf(t, inactive.ID))
}

func TestCreateOrder_InputErrors(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := h.newProduct(t, "cup", "5.00", 100)

	_, err := h.orders.CreateOrder(ctx, h.orderInput())
	assert.True(t, errors.Is(err, ErrEmptyCart))

	in := h.orderInput([2]uint{p.ID, 1})
	in.PaymentMethod = "barter"
	_, err = h.orders.CreateOrder(ctx, in)
	assert.True(t, errors.Is(err, ErrValidation))

	in = h.orderInput([2]uint{p.ID, 0})
	_, err = h.orders.CreateOrder(ctx, in)
	assert.True(t, errors.Is(err, ErrValidation))

	stranger := &models.Address{UserID: "someone-else", FullName: "X", Phone: "1", Street: "s", City: "c", PostalCode: "1"}
	require.NoError(t, h.db.Create(stranger).Error)
	in = h.orderInput([2]uint{p.ID, 1})
	in.AddressID = stranger.ID
	_, err = h.orders.CreateOrder(ctx, in)
	assert.True(t, errors.Is(err, ErrAddressNotFound))

	_, err = h.settings.UpdateMaxItems(ctx, MaxItemsInput{MaxItemsPerOrder: 3})
	require.NoError(t, err)
	_, err = h.orders.CreateOrder(ctx, h.orderInput([2]uint{p.ID, 4}))
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "items")

	assert.Equal(t, 100, h.stockOf(t, p.ID))
}

func TestCancelOrder_RestoresStockOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := h.newProduct(t, "chair", "30.00", 4)

	order := h.placeOrder(t, [2]uint{p.ID, 3})
	assert.Equal(t, 1, h.stockOf(t, p.ID))

	cancelled, err := h.orders.CancelOrder(ctx, order.ID, h.user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)
	assert.Equal(t, 4, h.stockOf(t, p.ID))

	_, err = h.orders.CancelOrder(ctx, order.ID, h.user.ID)
	assert.True(t, errors.Is(err, ErrCannotCancelOrder))
	assert.Equal(t, 4, h.stockOf(t, p.ID))

	_, err = h.orders.CancelOrder(ctx, order.ID, "another-user")
	assert.True(t, errors.Is(err, ErrOrderNotFound))
}

func TestCancelOrder_NotAfterShipping(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := h.newProduct(t, "desk", "200.00", 2)

	order := h.payOrder(t, h.placeOrder(t, [2]uint{p.ID, 1}), "ORD-SHIP")
	_, err := h.orders.UpdateOrderStatus(ctx, UpdateStatusInput{OrderID: order.ID, Status: models.OrderStatusShipped})
	require.NoError(t, err)

	_, err = h.orders.CancelOrder(ctx, order.ID, h.user.ID)
	assert.True(t, errors.Is(err, ErrCannotCancelOrder))
	assert.True(t, errors.Is(err, ErrInvalidStateTransition))
	assert.Equal(t, 1, h.stockOf(t, p.ID))
}

func TestConfirmPayment_IsIdempotent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := h.newProduct(t, "book", "20.00", 10)

	_, err := h.cartRepo.AddItem(ctx, h.user.ID, p.ID, 2)
	require.NoError(t, err)
	order := h.placeOrder(t, [2]uint{p.ID, 2})

	items, err := h.cartRepo.GetItems(ctx, h.user.ID)
	require.NoError(t, err)
	assert.Len(t, items, 1, "placing an order keeps the cart until payment")

	attached, err := h.orders.AttachPaymentReference(ctx, order.ID, h.user.ID, "ORD-1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaymentPending, attached.Status)
	assert.Equal(t, models.PaymentStatusPending, attached.PaymentStatus)

	paid, err := h.orders.ConfirmPayment(ctx, PaymentConfirmation{Reference: "ORD-1", TransactionID: "mt-1"})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, paid.Status)
	assert.Equal(t, models.PaymentStatusPaid, paid.PaymentStatus)
	assert.Equal(t, "mt-1", paid.PaymentTransactionID)
	require.NotNil(t, paid.PaidAt)

	items, err = h.cartRepo.GetItems(ctx, h.user.ID)
	require.NoError(t, err)
	assert.Empty(t, items)

	again, err := h.orders.ConfirmPayment(ctx, PaymentConfirmation{Reference: "ORD-1", TransactionID: "mt-1"})
	assert.True(t, errors.Is(err, ErrDuplicatePaymentReference))
	require.NotNil(t, again)
	assert.Equal(t, paid.ID, again.ID)

	assert.Equal(t, 8, h.stockOf(t, p.ID))
	assert.Equal(t, []OrderEvent{EventOrderCreated, EventOrderPaid}, h.notifier.Events())
}

func TestConfirmPayment_CreatesOrderFromCart(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	a := h.newProduct(t, "shirt", "25.00", 5)
	b := h.newProduct(t, "socks", "5.00", 5)

	_, err := h.cartRepo.AddItem(ctx, h.user.ID, a.ID, 2)
	require.NoError(t, err)
	_, err = h.cartRepo.AddItem(ctx, h.user.ID, b.ID, 1)
	require.NoError(t, err)

	conf := PaymentConfirmation{
		Reference:     "CART-ABC",
		TransactionID: "mt-9",
		Metadata:      &CheckoutMetadata{UserID: h.user.ID, AddressID: h.address.ID, Notes: "leave at door"},
	}
	order, err := h.orders.ConfirmPayment(ctx, conf)
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusPaid, order.Status)
	assert.Equal(t, models.PaymentMethodMidtrans, order.PaymentMethod)
	require.NotNil(t, order.PaymentProviderID)
	assert.Equal(t, "CART-ABC", *order.PaymentProviderID)
	assert.Equal(t, "leave at door", order.CustomerNotes)
	require.NotNil(t, order.PaidAt)
	assertMoney(t, "55.00", order.Total)
	assert.Equal(t, 3, h.stockOf(t, a.ID))
	assert.Equal(t, 4, h.stockOf(t, b.ID))

	items, err := h.cartRepo.GetItems(ctx, h.user.ID)
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = h.orders.ConfirmPayment(ctx, conf)
	assert.True(t, errors.Is(err, ErrDuplicatePaymentReference))
	assert.Equal(t, 3, h.stockOf(t, a.ID))
}

func TestConfirmPayment_UnknownReference(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.orders.ConfirmPayment(ctx, PaymentConfirmation{Reference: "nope"})
	assert.True(t, errors.Is(err, ErrOrderNotFound))

	_, err = h.orders.ConfirmPayment(ctx, PaymentConfirmation{
		Reference: "CART-EMPTY",
		Metadata:  &CheckoutMetadata{UserID: h.user.ID, AddressID: h.address.ID},
	})
	assert.True(t, errors.Is(err, ErrEmptyCart))

	_, err = h.orders.ConfirmPayment(ctx, PaymentConfirmation{})
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestFailPayment_CancelsOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := h.newProduct(t, "tent", "150.00", 3)

	order := h.placeOrder(t, [2]uint{p.ID, 2})
	_, err := h.orders.AttachPaymentReference(ctx, order.ID, h.user.ID, "ORD-FAIL")
	require.NoError(t, err)
	assert.Equal(t, 1, h.stockOf(t, p.ID))

	failed, err := h.orders.FailPayment(ctx, "ORD-FAIL")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, failed.Status)
	assert.Equal(t, models.PaymentStatusFailed, failed.PaymentStatus)
	assert.Equal(t, 3, h.stockOf(t, p.ID))

	again, err := h.orders.FailPayment(ctx, "ORD-FAIL")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, again.Status)
	assert.Equal(t, 3, h.stockOf(t, p.ID))

	_, err = h.orders.FailPayment(ctx, "missing")
	assert.True(t, errors.Is(err, ErrOrderNotFound))
}

func TestFailPayment_LeavesPaidOrdersToRefund(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := h.newProduct(t, "kayak", "400.00", 4)

	order := h.payOrder(t, h.placeOrder(t, [2]uint{p.ID, 1}), "ORD-PAID")
	require.Equal(t, models.OrderStatusPaid, order.Status)

	_, err := h.orders.FailPayment(ctx, "ORD-PAID")
	assert.True(t, errors.Is(err, ErrInvalidStateTransition))

	reloaded, err := h.orders.GetOrderAdmin(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, reloaded.Status)
	assert.Equal(t, models.PaymentStatusPaid, reloaded.PaymentStatus)
	assert.False(t, reloaded.StockReleased)
	assert.Equal(t, 3, h.stockOf(t, p.ID))
}

func TestFailPayment_AfterAdminCancelDoesNotRestoreTwice(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := h.newProduct(t, "stove", "80.00", 5)

	order := h.placeOrder(t, [2]uint{p.ID, 2})
	_, err := h.orders.AttachPaymentReference(ctx, order.ID, h.user.ID, "ORD-RACE")
	require.NoError(t, err)

	_, err = h.orders.UpdateOrderStatus(ctx, UpdateStatusInput{OrderID: order.ID, Status: models.OrderStatusCancelled})
	require.NoError(t, err)
	assert.Equal(t, 5, h.stockOf(t, p.ID))

	_, err = h.orders.FailPayment(ctx, "ORD-RACE")
	require.NoError(t, err)
	assert.Equal(t, 5, h.stockOf(t, p.ID))
}

func TestUpdateOrderStatus_StampsOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := h.newProduct(t, "bike", "300.00", 2)

	order := h.payOrder(t, h.placeOrder(t, [2]uint{p.ID, 1}), "ORD-STAMP")

	shipped, err := h.orders.UpdateOrderStatus(ctx, UpdateStatusInput{OrderID: order.ID, Status: models.OrderStatusShipped})
	require.NoError(t, err)
	require.NotNil(t, shipped.ShippedAt)
	firstShipped := *shipped.ShippedAt

	h.orders.SetClock(func() time.Time { return fixedNow.Add(48 * time.Hour) })
	tracking := "JNE-123"
	notes := "handed to courier"
	again, err := h.orders.UpdateOrderStatus(ctx, UpdateStatusInput{
		OrderID:        order.ID,
		Status:         models.OrderStatusShipped,
		TrackingNumber: &tracking,
		AdminNotes:     &notes,
	})
	require.NoError(t, err)
	assert.Equal(t, "JNE-123", again.TrackingNumber)
	assert.Equal(t, "handed to courier", again.AdminNotes)
	require.NotNil(t, again.ShippedAt)
	assert.True(t, firstShipped.Equal(*again.ShippedAt))

	delivered, err := h.orders.UpdateOrderStatus(ctx, UpdateStatusInput{OrderID: order.ID, Status: models.OrderStatusDelivered})
	require.NoError(t, err)
	require.NotNil(t, delivered.DeliveredAt)
	assert.True(t, fixedNow.Add(48*time.Hour).Equal(*delivered.DeliveredAt))

	shippedEvents := 0
	for _, e := range h.notifier.Events() {
		if e == EventOrderShipped {
			shippedEvents++
		}
	}
	assert.Equal(t, 1, shippedEvents)

	_, err = h.orders.UpdateOrderStatus(ctx, UpdateStatusInput{OrderID: order.ID, Status: models.OrderStatusPaid})
	var terr *TransitionError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, models.OrderStatusDelivered, terr.From)
	assert.Equal(t, models.OrderStatusPaid, terr.To)

	_, err = h.orders.UpdateOrderStatus(ctx, UpdateStatusInput{OrderID: order.ID, Status: "lost"})
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = h.orders.UpdateOrderStatus(ctx, UpdateStatusInput{OrderID: 9999, Status: models.OrderStatusPaid})
	assert.True(t, errors.Is(err, ErrOrderNotFound))
}

func TestUpdateOrderStatus_AdminRefundRestoresStock(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := h.newProduct(t, "drone", "400.00", 3)

	order := h.payOrder(t, h.placeOrder(t, [2]uint{p.ID, 2}), "ORD-ADMREF")
	refunded, err := h.orders.UpdateOrderStatus(ctx, UpdateStatusInput{OrderID: order.ID, Status: models.OrderStatusRefunded})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusRefunded, refunded.PaymentStatus)
	assertMoney(t, "800.00", refunded.RefundedAmount)
	assert.Equal(t, 3, h.stockOf(t, p.ID))
}

func TestRefundByPaymentRef(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := h.newProduct(t, "watch", "120.00", 4)

	order := h.payOrder(t, h.placeOrder(t, [2]uint{p.ID, 1}), "ORD-REF")
	_, err := h.orders.UpdateOrderStatus(ctx, UpdateStatusInput{OrderID: order.ID, Status: models.OrderStatusProcessing})
	require.NoError(t, err)

	refunded, err := h.orders.RefundByPaymentRef(ctx, "tx-ORD-REF", decimal.NullDecimal{})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusRefunded, refunded.Status)
	assert.Equal(t, models.PaymentStatusRefunded, refunded.PaymentStatus)
	assertMoney(t, "120.00", refunded.RefundedAmount)
	assert.Equal(t, 4, h.stockOf(t, p.ID))

	again, err := h.orders.RefundByPaymentRef(ctx, "ORD-REF", decimal.NullDecimal{})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusRefunded, again.Status)
	assert.Equal(t, 4, h.stockOf(t, p.ID))
}

func TestRefundByPaymentRef_PartialAmountAndLimits(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := h.newProduct(t, "radio", "60.00", 4)

	h.payOrder(t, h.placeOrder(t, [2]uint{p.ID, 1}), "ORD-PART")

	_, err := h.orders.RefundByPaymentRef(ctx, "ORD-PART", decimal.NewNullDecimal(dec("61")))
	assert.True(t, errors.Is(err, ErrValidation))

	refunded, err := h.orders.RefundByPaymentRef(ctx, "ORD-PART", decimal.NewNullDecimal(dec("25.50")))
	require.NoError(t, err)
	assertMoney(t, "25.50", refunded.RefundedAmount)

	delivered := h.payOrder(t, h.placeOrder(t, [2]uint{p.ID, 1}), "ORD-DELIV")
	_, err = h.orders.UpdateOrderStatus(ctx, UpdateStatusInput{OrderID: delivered.ID, Status: models.OrderStatusDelivered})
	require.NoError(t, err)
	_, err = h.orders.RefundByPaymentRef(ctx, "ORD-DELIV", decimal.NullDecimal{})
	assert.True(t, errors.Is(err, ErrInvalidStateTransition))

	_, err = h.orders.RefundByPaymentRef(ctx, "unknown", decimal.NullDecimal{})
	assert.True(t, errors.Is(err, ErrOrderNotFound))
}

func TestRefundByPaymentRef_FallsBackToGatewayLookup(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := h.newProduct(t, "camera", "250.00", 2)

	order := h.placeOrder(t, [2]uint{p.ID, 1})
	_, err := h.orders.AttachPaymentReference(ctx, order.ID, h.user.ID, "ORD-SCAN")
	require.NoError(t, err)
	_, err = h.orders.ConfirmPayment(ctx, PaymentConfirmation{Reference: "ORD-SCAN"})
	require.NoError(t, err)

	h.gateway.setStatus("ORD-SCAN", "gw-777", "settlement", "accept")

	refunded, err := h.orders.RefundByPaymentRef(ctx, "gw-777", decimal.NullDecimal{})
	require.NoError(t, err)
	assert.Equal(t, order.ID, refunded.ID)
	assert.Equal(t, models.OrderStatusRefunded, refunded.Status)
	assert.Contains(t, h.gateway.lookups, "ORD-SCAN")
	assert.Equal(t, 2, h.stockOf(t, p.ID))
}

func TestDeleteOrder(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := h.newProduct(t, "sofa", "900.00", 3)

	pending := h.placeOrder(t, [2]uint{p.ID, 2})
	require.NoError(t, h.orders.DeleteOrder(ctx, pending.ID))
	assert.Equal(t, 3, h.stockOf(t, p.ID))

	_, err := h.orders.GetOrderAdmin(ctx, pending.ID)
	assert.True(t, errors.Is(err, ErrOrderNotFound))

	var items int64
	require.NoError(t, h.db.Model(&models.OrderItem{}).Where("order_id = ?", pending.ID).Count(&items).Error)
	assert.Zero(t, items)

	cancelled := h.placeOrder(t, [2]uint{p.ID, 1})
	_, err = h.orders.CancelOrder(ctx, cancelled.ID, h.user.ID)
	require.NoError(t, err)
	require.NoError(t, h.orders.DeleteOrder(ctx, cancelled.ID))
	assert.Equal(t, 3, h.stockOf(t, p.ID))

	assert.True(t, errors.Is(h.orders.DeleteOrder(ctx, 4242), ErrOrderNotFound))
}

func TestAttachPaymentReference(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := h.newProduct(t, "fan", "40.00", 10)

	first := h.placeOrder(t, [2]uint{p.ID, 1})
	second := h.placeOrder(t, [2]uint{p.ID, 1})

	_, err := h.orders.AttachPaymentReference(ctx, first.ID, h.user.ID, "ORD-A")
	require.NoError(t, err)

	renewed, err := h.orders.AttachPaymentReference(ctx, first.ID, h.user.ID, "ORD-A2")
	require.NoError(t, err)
	require.NotNil(t, renewed.PaymentProviderID)
	assert.Equal(t, "ORD-A2", *renewed.PaymentProviderID)

	_, err = h.orders.AttachPaymentReference(ctx, second.ID, h.user.ID, "ORD-A2")
	assert.True(t, errors.Is(err, ErrDuplicatePaymentReference))

	_, err = h.orders.ConfirmPayment(ctx, PaymentConfirmation{Reference: "ORD-A2"})
	require.NoError(t, err)
	_, err = h.orders.AttachPaymentReference(ctx, first.ID, h.user.ID, "ORD-A3")
	assert.True(t, errors.Is(err, ErrInvalidStateTransition))
}

func TestListOrdersAndStats(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	a := h.newProduct(t, "alpha", "10.00", 50)
	b := h.newProduct(t, "beta", "20.00", 50)

	h.payOrder(t, h.placeOrder(t, [2]uint{a.ID, 3}), "ORD-S1")
	h.payOrder(t, h.placeOrder(t, [2]uint{b.ID, 1}), "ORD-S2")
	h.placeOrder(t, [2]uint{a.ID, 1})
	cancelled := h.placeOrder(t, [2]uint{b.ID, 9})
	_, err := h.orders.CancelOrder(ctx, cancelled.ID, h.user.ID)
	require.NoError(t, err)

	page, err := h.orders.ListOrders(ctx, h.user.ID, 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 4, page.Total)
	assert.Len(t, page.Orders, 2)

	paid, err := h.orders.ListOrdersAdmin(ctx, AdminOrderQuery{Status: models.OrderStatusPaid, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, paid.Total)

	_, err = h.orders.ListOrdersAdmin(ctx, AdminOrderQuery{Status: "bogus", Page: 1, Limit: 10})
	assert.True(t, errors.Is(err, ErrValidation))

	stats, err := h.orders.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 4, stats.TotalOrders)
	assert.EqualValues(t, 2, stats.Counts[models.OrderStatusPaid])
	assert.EqualValues(t, 1, stats.Counts[models.OrderStatusPending])
	assert.EqualValues(t, 1, stats.Counts[models.OrderStatusCancelled])
	assert.EqualValues(t, 0, stats.Counts[models.OrderStatusRefunded])
	assertMoney(t, "50.00", stats.Revenue.Total)

	require.NotEmpty(t, stats.TopProducts)
	assert.Equal(t, a.ID, stats.TopProducts[0].ProductID)
	assert.EqualValues(t, 4, stats.TopProducts[0].TotalSold)
}
