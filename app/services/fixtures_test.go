package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Rakhulsr/storefront/app/db/testdb"
	"github.com/Rakhulsr/storefront/app/models"
	"github.com/Rakhulsr/storefront/app/pricing"
	"github.com/Rakhulsr/storefront/app/repositories"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Equal(t, want, got.StringFixed(2))
}

type recordedEvent struct {
	Event   OrderEvent
	OrderID uint
	Status  models.OrderStatus
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (f *fakeNotifier) Notify(_ context.Context, event OrderEvent, order *models.Order) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, recordedEvent{Event: event, OrderID: order.ID, Status: order.Status})
}

func (f *fakeNotifier) Events() []OrderEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]OrderEvent, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.Event)
	}
	return out
}

type fakeGateway struct {
	mu        sync.Mutex
	statuses  map[string]*TransactionStatus
	requests  []CheckoutRequest
	lookups   []string
	createErr error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{statuses: map[string]*TransactionStatus{}}
}

func (g *fakeGateway) CreateCheckout(_ context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.requests = append(g.requests, req)
	return &CheckoutSession{Reference: req.Reference, Token: "token-" + req.Reference, RedirectURL: "https://pay.example/" + req.Reference}, nil
}

func (g *fakeGateway) TransactionStatus(_ context.Context, ref string) (*TransactionStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lookups = append(g.lookups, ref)
	status, ok := g.statuses[ref]
	if !ok {
		return nil, fmt.Errorf("transaction %s: %w", ref, ErrNotFound)
	}
	return status, nil
}

func (g *fakeGateway) setStatus(ref, txID, status, fraud string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.statuses[ref] = &TransactionStatus{Reference: ref, TransactionID: txID, Status: status, FraudStatus: fraud}
}

type harness struct {
	db          *gorm.DB
	productRepo repositories.ProductRepository
	orderRepo   repositories.OrderRepository
	cartRepo    repositories.CartRepository
	userRepo    repositories.UserRepository
	settings    *SettingsService
	carts       *CartService
	orders      *OrderService
	notifier    *fakeNotifier
	gateway     *fakeGateway
	user        *models.User
	address     *models.Address
	category    *models.Category
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testdb.Open(t)
	ctx := context.Background()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	h := &harness{
		db:          db,
		productRepo: repositories.NewProductRepository(db),
		orderRepo:   repositories.NewOrderRepository(db),
		cartRepo:    repositories.NewRedisCartRepository(client, time.Hour),
		userRepo:    repositories.NewUserRepository(db),
		notifier:    &fakeNotifier{},
		gateway:     newFakeGateway(),
	}
	categoryRepo := repositories.NewCategoryRepository(db)
	addressRepo := repositories.NewGormAddressRepository(db)

	h.settings = NewSettingsService(repositories.NewSettingsRepository(db), categoryRepo, h.productRepo)
	h.settings.SetClock(fixedClock)
	h.carts = NewCartService(h.cartRepo, h.productRepo, h.settings)
	h.carts.SetClock(fixedClock)
	h.orders = NewOrderService(db, h.orderRepo, repositories.NewOrderItemRepository(db), h.productRepo, addressRepo, h.cartRepo, h.settings, h.notifier)
	h.orders.SetClock(fixedClock)
	h.orders.SetTransactionLookup(h.gateway)

	h.user = &models.User{FullName: "Jane Buyer", Email: "jane@example.com", Password: "x"}
	require.NoError(t, h.userRepo.Create(ctx, h.user))

	h.address = &models.Address{UserID: h.user.ID, FullName: "Jane Buyer", Phone: "0800", Street: "1 Main St", City: "Jakarta", PostalCode: "10110", Country: "ID"}
	require.NoError(t, addressRepo.CreateAddress(ctx, h.address))

	h.category = h.newCategory(t, "General")
	return h
}

func (h *harness) newCategory(t *testing.T, name string) *models.Category {
	t.Helper()
	c := &models.Category{Name: name, Slug: name, IsActive: true}
	require.NoError(t, h.db.Create(c).Error)
	return c
}

func (h *harness) newProduct(t *testing.T, name, price string, stock int) *models.Product {
	t.Helper()
	return h.newProductIn(t, h.category.ID, name, price, stock)
}

func (h *harness) newProductIn(t *testing.T, categoryID uint, name, price string, stock int) *models.Product {
	t.Helper()
	p := &models.Product{
		CategoryID: categoryID,
		Name:       name,
		Slug:       name,
		Sku:        "SKU-" + name,
		Price:      dec(price),
		Stock:      stock,
		IsActive:   true,
	}
	require.NoError(t, h.productRepo.Create(context.Background(), p))
	return p
}

func (h *harness) stockOf(t *testing.T, id uint) int {
	t.Helper()
	var p models.Product
	require.NoError(t, h.db.Unscoped().First(&p, id).Error)
	return p.Stock
}

func (h *harness) orderInput(items ...[2]uint) CreateOrderInput {
	in := CreateOrderInput{
		UserID:        h.user.ID,
		AddressID:     h.address.ID,
		PaymentMethod: models.PaymentMethodCash,
	}
	for _, it := range items {
		in.Items = append(in.Items, cartItem(it[0], int(it[1])))
	}
	return in
}

func (h *harness) placeOrder(t *testing.T, items ...[2]uint) *models.Order {
	t.Helper()
	order, err := h.orders.CreateOrder(context.Background(), h.orderInput(items...))
	require.NoError(t, err)
	return order
}

func (h *harness) payOrder(t *testing.T, order *models.Order, ref string) *models.Order {
	t.Helper()
	ctx := context.Background()
	_, err := h.orders.AttachPaymentReference(ctx, order.ID, h.user.ID, ref)
	require.NoError(t, err)
	paid, err := h.orders.ConfirmPayment(ctx, PaymentConfirmation{Reference: ref, TransactionID: "tx-" + ref})
	require.NoError(t, err)
	return paid
}

func cartItem(productID uint, qty int) pricing.CartItem {
	return pricing.CartItem{ProductID: productID, Quantity: qty}
}
