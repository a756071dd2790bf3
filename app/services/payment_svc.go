package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/Rakhulsr/storefront/app/models"
	"github.com/shopspring/decimal"
)

type MidtransNotificationPayload struct {
	TransactionStatus string `json:"transaction_status"`
	TransactionID     string `json:"transaction_id"`
	OrderID           string `json:"order_id"`
	PaymentType       string `json:"payment_type"`
	FraudStatus       string `json:"fraud_status"`
	GrossAmount       string `json:"gross_amount"`
	RefundAmount      string `json:"refund_amount"`
	SignatureKey      string `json:"signature_key"`
	StatusCode        string `json:"status_code"`
	Currency          string `json:"currency"`
	CustomField1      string `json:"custom_field1"`
	CustomField2      string `json:"custom_field2"`
	CustomField3      string `json:"custom_field3"`
}

type NotificationAction string

const (
	ActionPaid      NotificationAction = "paid"
	ActionFailed    NotificationAction = "failed"
	ActionRefunded  NotificationAction = "refunded"
	ActionDuplicate NotificationAction = "duplicate"
	ActionIgnored   NotificationAction = "ignored"
)

type NotificationResult struct {
	Reference string
	Action    NotificationAction
	Order     *models.Order
}

// PaymentService turns provider notifications into order lifecycle calls.
// The notification body is only a hint: the status is always re-read from
// the provider before anything changes.
type PaymentService struct {
	gateway PaymentGateway
	orders  *OrderService
}

func NewPaymentService(gateway PaymentGateway, orders *OrderService) *PaymentService {
	return &PaymentService{gateway: gateway, orders: orders}
}

func metadataFromPayload(payload MidtransNotificationPayload) *CheckoutMetadata {
	if payload.CustomField1 == "" {
		return nil
	}
	addressID, err := strconv.ParseUint(payload.CustomField2, 10, 64)
	if err != nil {
		log.Printf("WARNING: PaymentService: invalid address id %q in notification for %s", payload.CustomField2, payload.OrderID)
		return nil
	}
	return &CheckoutMetadata{
		UserID:        payload.CustomField1,
		AddressID:     uint(addressID),
		PaymentMethod: models.PaymentMethodMidtrans,
		Notes:         payload.CustomField3,
	}
}

func (s *PaymentService) HandleMidtransNotification(ctx context.Context, payload MidtransNotificationPayload) (*NotificationResult, error) {
	if payload.OrderID == "" {
		return nil, NewValidationError("order_id", "is required")
	}
	log.Printf("INFO: PaymentService: notification for %s, status %s, fraud %s", payload.OrderID, payload.TransactionStatus, payload.FraudStatus)

	status, err := s.gateway.TransactionStatus(ctx, payload.OrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify transaction %s: %w", payload.OrderID, err)
	}
	if status.Status != payload.TransactionStatus || status.FraudStatus != payload.FraudStatus {
		log.Printf("WARNING: PaymentService: status mismatch for %s. API: %s/%s, notification: %s/%s. Using API status.",
			payload.OrderID, status.Status, status.FraudStatus, payload.TransactionStatus, payload.FraudStatus)
	}

	result := &NotificationResult{Reference: payload.OrderID}

	switch status.Status {
	case "capture", "settlement":
		if status.Status == "capture" && status.FraudStatus == "challenge" {
			log.Printf("INFO: PaymentService: %s held for fraud review", payload.OrderID)
			result.Action = ActionIgnored
			return result, nil
		}
		if status.Status == "capture" && status.FraudStatus != "" && status.FraudStatus != "accept" {
			return s.fail(ctx, result)
		}
		return s.confirm(ctx, result, status, payload)
	case "pending":
		result.Action = ActionIgnored
		return result, nil
	case "deny", "expire", "cancel", "failure":
		return s.fail(ctx, result)
	case "refund", "partial_refund":
		amount := decimal.NullDecimal{}
		if status.Status == "partial_refund" && payload.RefundAmount != "" {
			if d, err := decimal.NewFromString(payload.RefundAmount); err == nil {
				amount = decimal.NewNullDecimal(d)
			}
		}
		order, err := s.orders.RefundByPaymentRef(ctx, payload.OrderID, amount)
		if err != nil {
			return nil, err
		}
		result.Action = ActionRefunded
		result.Order = order
		return result, nil
	default:
		log.Printf("WARNING: PaymentService: unhandled transaction status %q for %s", status.Status, payload.OrderID)
		return nil, fmt.Errorf("unhandled transaction status %q", status.Status)
	}
}

func (s *PaymentService) confirm(ctx context.Context, result *NotificationResult, status *TransactionStatus, payload MidtransNotificationPayload) (*NotificationResult, error) {
	order, err := s.orders.ConfirmPayment(ctx, PaymentConfirmation{
		Reference:     payload.OrderID,
		TransactionID: status.TransactionID,
		PaymentStatus: models.PaymentStatusPaid,
		Metadata:      metadataFromPayload(payload),
	})
	if errors.Is(err, ErrDuplicatePaymentReference) {
		log.Printf("INFO: PaymentService: %s already processed", payload.OrderID)
		result.Action = ActionDuplicate
		result.Order = order
		return result, nil
	}
	if err != nil {
		return nil, err
	}
	result.Action = ActionPaid
	result.Order = order
	return result, nil
}

func (s *PaymentService) fail(ctx context.Context, result *NotificationResult) (*NotificationResult, error) {
	order, err := s.orders.FailPayment(ctx, result.Reference)
	if errors.Is(err, ErrOrderNotFound) {
		// a cart checkout that never got paid has no order to cancel
		result.Action = ActionIgnored
		return result, nil
	}
	if errors.Is(err, ErrInvalidStateTransition) {
		log.Printf("WARNING: PaymentService: ignoring failed status for %s: %v", result.Reference, err)
		result.Action = ActionIgnored
		return result, nil
	}
	if err != nil {
		return nil, err
	}
	result.Action = ActionFailed
	result.Order = order
	return result, nil
}
