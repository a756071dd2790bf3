package admin

import (
	"log"
	"net/http"
	"time"

	"github.com/Rakhulsr/storefront/app/handlers/response"
	"github.com/Rakhulsr/storefront/app/helpers"
	"github.com/Rakhulsr/storefront/app/models"
	"github.com/Rakhulsr/storefront/app/services"
	"github.com/gorilla/mux"
	"github.com/unrolled/render"
)

type OrderAdminHandler struct {
	render *render.Render
	orders *services.OrderService
}

func NewOrderAdminHandler(render *render.Render, orders *services.OrderService) *OrderAdminHandler {
	return &OrderAdminHandler{render: render, orders: orders}
}

func parseDate(raw string, endOfDay bool) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	day, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		day = day.Add(24*time.Hour - time.Nanosecond)
	}
	return &day, nil
}

// List handles GET /admin/orders?status=&user_id=&date_from=&date_to=&page=&limit=
func (h *OrderAdminHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err := parseDate(q.Get("date_from"), false)
	if err != nil {
		response.Fail(h.render, w, http.StatusBadRequest, "date_from must be YYYY-MM-DD.")
		return
	}
	to, err := parseDate(q.Get("date_to"), true)
	if err != nil {
		response.Fail(h.render, w, http.StatusBadRequest, "date_to must be YYYY-MM-DD.")
		return
	}
	page, limit := helpers.Pagination(r)

	result, err := h.orders.ListOrdersAdmin(r.Context(), services.AdminOrderQuery{
		Status:   models.OrderStatus(q.Get("status")),
		UserID:   q.Get("user_id"),
		DateFrom: from,
		DateTo:   to,
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		response.Error(h.render, w, r, err)
		return
	}
	response.Success(h.render, w, http.StatusOK, "", result)
}

func (h *OrderAdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.orders.Stats(r.Context())
	if err != nil {
		response.Error(h.render, w, r, err)
		return
	}
	response.Success(h.render, w, http.StatusOK, "", stats)
}

func (h *OrderAdminHandler) orderID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := helpers.ParseUintParam(mux.Vars(r)["id"])
	if err != nil {
		response.Fail(h.render, w, http.StatusBadRequest, "Invalid order id.")
		return 0, false
	}
	return id, true
}

func (h *OrderAdminHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}
	order, err := h.orders.GetOrderAdmin(r.Context(), id)
	if err != nil {
		response.Error(h.render, w, r, err)
		return
	}
	response.Success(h.render, w, http.StatusOK, "", order)
}

func (h *OrderAdminHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}
	var in services.UpdateStatusInput
	if err := helpers.DecodeJSONBody(w, r, &in); err != nil {
		response.Fail(h.render, w, http.StatusBadRequest, "Invalid request payload.")
		return
	}
	in.OrderID = id

	order, err := h.orders.UpdateOrderStatus(r.Context(), in)
	if err != nil {
		response.Error(h.render, w, r, err)
		return
	}
	log.Printf("INFO: OrderAdminHandler.UpdateStatus: order %d is now %s", order.ID, order.Status)
	response.Success(h.render, w, http.StatusOK, "Order status updated.", order)
}

func (h *OrderAdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.orderID(w, r)
	if !ok {
		return
	}
	if err := h.orders.DeleteOrder(r.Context(), id); err != nil {
		response.Error(h.render, w, r, err)
		return
	}
	response.Success(h.render, w, http.StatusOK, "Order deleted.", nil)
}
