package handlers

import (
	"log"
	"net/http"

	"github.com/Rakhulsr/storefront/app/handlers/response"
	"github.com/Rakhulsr/storefront/app/helpers"
	"github.com/Rakhulsr/storefront/app/services"
	"github.com/unrolled/render"
)

type PaymentHandler struct {
	render   *render.Render
	checkout *services.CheckoutService
	payments *services.PaymentService
}

func NewPaymentHandler(render *render.Render, checkout *services.CheckoutService, payments *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{render: render, checkout: checkout, payments: payments}
}

// CheckoutCart opens a payment session for the whole cart. The order itself
// is created when the provider reports the payment.
func (h *PaymentHandler) CheckoutCart(w http.ResponseWriter, r *http.Request) {
	var in services.CartCheckoutInput
	if err := helpers.DecodeJSONBody(w, r, &in); err != nil {
		response.Fail(h.render, w, http.StatusBadRequest, "Invalid request payload.")
		return
	}

	session, err := h.checkout.CheckoutCart(r.Context(), helpers.GetUserIDFromContext(r.Context()), in)
	if err != nil {
		response.Error(h.render, w, r, err)
		return
	}
	response.Success(h.render, w, http.StatusOK, "Checkout session created.", session)
}

// MidtransNotification acknowledges every decodable notification with 200 so
// the provider stops retrying. Processing failures are only logged.
func (h *PaymentHandler) MidtransNotification(w http.ResponseWriter, r *http.Request) {
	var payload services.MidtransNotificationPayload
	if err := helpers.DecodeJSONBody(w, r, &payload); err != nil {
		log.Printf("WARNING: PaymentHandler.MidtransNotification: undecodable body: %v", err)
		response.Fail(h.render, w, http.StatusBadRequest, "Invalid notification payload.")
		return
	}

	result, err := h.payments.HandleMidtransNotification(r.Context(), payload)
	if err != nil {
		log.Printf("ERROR: PaymentHandler.MidtransNotification: %s (%s): %v", payload.OrderID, payload.TransactionStatus, err)
		response.Success(h.render, w, http.StatusOK, "Notification received (error logged).", nil)
		return
	}

	log.Printf("INFO: PaymentHandler.MidtransNotification: %s -> %s", result.Reference, result.Action)
	response.Success(h.render, w, http.StatusOK, "Notification received.", map[string]interface{}{
		"reference": result.Reference,
		"action":    result.Action,
	})
}
