package services

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/Rakhulsr/storefront/app/models"
	"github.com/Rakhulsr/storefront/app/pricing"
	"github.com/Rakhulsr/storefront/app/repositories"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	orderRefPrefix = "ORD-"
	cartRefPrefix  = "CART-"
	shippingLineID = "SHIPPING_FEE"
)

type CartCheckoutInput struct {
	AddressID uint   `json:"address_id" validate:"required"`
	Notes     string `json:"notes" validate:"max=255"`
}

// CheckoutService opens provider checkout sessions, either for an order that
// already exists or for the current cart. In the cart flow the order is only
// created once the provider confirms payment.
type CheckoutService struct {
	gateway     PaymentGateway
	orders      *OrderService
	carts       *CartService
	userRepo    repositories.UserRepository
	addressRepo repositories.AddressRepository
	validate    *validator.Validate
	finishURL   string
}

func NewCheckoutService(
	gateway PaymentGateway,
	orders *OrderService,
	carts *CartService,
	userRepo repositories.UserRepository,
	addressRepo repositories.AddressRepository,
	finishURL string,
) *CheckoutService {
	return &CheckoutService{
		gateway:     gateway,
		orders:      orders,
		carts:       carts,
		userRepo:    userRepo,
		addressRepo: addressRepo,
		validate:    validator.New(),
		finishURL:   finishURL,
	}
}

func newReference(prefix string) string {
	return prefix + strings.ToUpper(uuid.New().String())
}

func splitName(full string) (string, string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

func (s *CheckoutService) customer(ctx context.Context, userID string) (CheckoutCustomer, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return CheckoutCustomer{}, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return CheckoutCustomer{}, fmt.Errorf("user %w", ErrNotFound)
	}
	first, last := splitName(user.FullName)
	return CheckoutCustomer{FirstName: first, LastName: last, Email: user.Email, Phone: user.Phone}, nil
}

// CheckoutOrder starts payment for a pending order the user owns.
func (s *CheckoutService) CheckoutOrder(ctx context.Context, orderID uint, userID string) (*CheckoutSession, error) {
	order, err := s.orders.GetOrder(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.OrderStatusPending && order.Status != models.OrderStatusPaymentPending {
		return nil, &TransitionError{OrderID: order.ID, From: order.Status, To: models.OrderStatusPaymentPending}
	}
	if order.PaymentMethod != models.PaymentMethodMidtrans {
		return nil, NewValidationError("payment_method", "order is not paid through the online gateway")
	}

	cust, err := s.customer(ctx, userID)
	if err != nil {
		return nil, err
	}

	lines := make([]CheckoutLine, 0, len(order.OrderItems)+1)
	for _, item := range order.OrderItems {
		lines = append(lines, CheckoutLine{
			ID:       strconv.FormatUint(uint64(item.ProductID), 10),
			Name:     item.ProductName,
			Price:    item.UnitPrice,
			Quantity: item.Quantity,
		})
	}
	if order.ShippingCost.IsPositive() {
		lines = append(lines, CheckoutLine{ID: shippingLineID, Name: "Shipping", Price: order.ShippingCost, Quantity: 1})
	}

	ref := newReference(orderRefPrefix)
	session, err := s.gateway.CreateCheckout(ctx, CheckoutRequest{
		Reference: ref,
		Amount:    order.Total,
		Lines:     lines,
		Customer:  cust,
		FinishURL: s.finishURL,
	})
	if err != nil {
		log.Printf("ERROR: CheckoutService.CheckoutOrder: order %d: %v", order.ID, err)
		return nil, err
	}

	if _, err := s.orders.AttachPaymentReference(ctx, order.ID, userID, ref); err != nil {
		log.Printf("ERROR: CheckoutService.CheckoutOrder: failed to attach reference %s to order %d: %v", ref, order.ID, err)
		return nil, err
	}
	return session, nil
}

// CheckoutCart opens a session for the priced cart. The user, address and
// notes ride along in the session so the confirmation can build the order.
func (s *CheckoutService) CheckoutCart(ctx context.Context, userID string, in CartCheckoutInput) (*CheckoutSession, error) {
	if err := validateStruct(s.validate, in); err != nil {
		return nil, err
	}

	cart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}
	if err := checkCartStock(cart); err != nil {
		return nil, err
	}

	address, err := s.addressRepo.FindAddressForUser(ctx, nil, in.AddressID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get address: %w", err)
	}
	if address == nil {
		return nil, ErrAddressNotFound
	}

	cust, err := s.customer(ctx, userID)
	if err != nil {
		return nil, err
	}

	lines := make([]CheckoutLine, 0, len(cart.Items)+1)
	for _, item := range cart.Items {
		lines = append(lines, CheckoutLine{
			ID:       strconv.FormatUint(uint64(item.ProductID), 10),
			Name:     item.ProductName,
			Price:    item.UnitFinalPrice,
			Quantity: item.Quantity,
		})
	}
	if cart.ShippingCost.IsPositive() {
		lines = append(lines, CheckoutLine{ID: shippingLineID, Name: "Shipping", Price: cart.ShippingCost, Quantity: 1})
	}

	ref := newReference(cartRefPrefix)
	session, err := s.gateway.CreateCheckout(ctx, CheckoutRequest{
		Reference: ref,
		Amount:    cart.GrandTotal,
		Lines:     lines,
		Customer:  cust,
		Metadata: &CheckoutMetadata{
			UserID:        userID,
			AddressID:     address.ID,
			PaymentMethod: models.PaymentMethodMidtrans,
			Notes:         in.Notes,
		},
		FinishURL: s.finishURL,
	})
	if err != nil {
		log.Printf("ERROR: CheckoutService.CheckoutCart: user %s: %v", userID, err)
		return nil, err
	}

	log.Printf("INFO: CheckoutService.CheckoutCart: session %s opened for user %s, amount %s", ref, userID, cart.GrandTotal)
	return session, nil
}

func checkCartStock(cart *pricing.CartPricing) error {
	for _, item := range cart.Items {
		if item.Stock < item.Quantity {
			return &InsufficientStockError{
				ProductID:   item.ProductID,
				ProductName: item.ProductName,
				Available:   item.Stock,
				Requested:   item.Quantity,
			}
		}
	}
	return nil
}
