package handlers

import (
	"net/http"

	"github.com/Rakhulsr/storefront/app/handlers/response"
	"github.com/Rakhulsr/storefront/app/helpers"
	"github.com/Rakhulsr/storefront/app/services"
	"github.com/gorilla/mux"
	"github.com/unrolled/render"
)

type OrderHandler struct {
	render   *render.Render
	orders   *services.OrderService
	checkout *services.CheckoutService
}

func NewOrderHandler(render *render.Render, orders *services.OrderService, checkout *services.CheckoutService) *OrderHandler {
	return &OrderHandler{render: render, orders: orders, checkout: checkout}
}

func (h *OrderHandler) orderID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := helpers.ParseUintParam(mux.Vars(r)["id"])
	if err != nil {
		response.Fail(h.render, w, http.StatusBadRequest, "Invalid order id.")
		return 0, false
	}
	return id, true
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.CreateOrderInput
	if err := helpers.DecodeJSONBody(w, r, &in); err != nil {
		response.Fail(h.render, w, http.StatusBadRequest, "Invalid request payload.")
		return
	}
	in.UserID = helpers.GetUserIDFromContext(r.Context())

	order, err := h.orders.CreateOrder(r.Context(), in)
	if err != nil {
		response.Error(h.render, w, r, err)
		return
	}
	response.Success(h.render, w, http.StatusCreated, "Order created.", order)
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := helpers.Pagination(r)
	result, err := h.orders.ListOrders(r.Context(), helpers.GetUserIDFromContext(r.Context()), page, limit)
	if err != nil {
		response.Error(h.render, w, r, err)
		return
	}
	response.Success(h.render, w, http.StatusOK, "", result)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}
	order, err := h.orders.GetOrder(r.Context(), id, helpers.GetUserIDFromContext(r.Context()))
	if err != nil {
		response.Error(h.render, w, r, err)
		return
	}
	response.Success(h.render, w, http.StatusOK, "", order)
}

func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}
	order, err := h.orders.CancelOrder(r.Context(), id, helpers.GetUserIDFromContext(r.Context()))
	if err != nil {
		response.Error(h.render, w, r, err)
		return
	}
	response.Success(h.render, w, http.StatusOK, "Order cancelled.", order)
}

// Checkout opens a payment session for an existing pending order.
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}
	session, err := h.checkout.CheckoutOrder(r.Context(), id, helpers.GetUserIDFromContext(r.Context()))
	if err != nil {
		response.Error(h.render, w, r, err)
		return
	}
	response.Success(h.render, w, http.StatusOK, "Checkout session created.", session)
}
