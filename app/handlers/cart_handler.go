package handlers

import (
	"net/http"

	"github.com/Rakhulsr/storefront/app/handlers/response"
	"github.com/Rakhulsr/storefront/app/helpers"
	"github.com/Rakhulsr/storefront/app/pricing"
	"github.com/Rakhulsr/storefront/app/services"
	"github.com/gorilla/mux"
	"github.com/unrolled/render"
)

type CartHandler struct {
	render *render.Render
	carts  *services.CartService
}

func NewCartHandler(render *render.Render, carts *services.CartService) *CartHandler {
	return &CartHandler{render: render, carts: carts}
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	cart, err := h.carts.GetCart(r.Context(), helpers.GetUserIDFromContext(r.Context()))
	if err != nil {
		response.Error(h.render, w, r, err)
		return
	}
	response.Success(h.render, w, http.StatusOK, "", cart)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var item pricing.CartItem
	if err := helpers.DecodeJSONBody(w, r, &item); err != nil {
		response.Fail(h.render, w, http.StatusBadRequest, "Invalid request payload.")
		return
	}

	cart, err := h.carts.AddItem(r.Context(), helpers.GetUserIDFromContext(r.Context()), item)
	if err != nil {
		response.Error(h.render, w, r, err)
		return
	}
	response.Success(h.render, w, http.StatusOK, "Item added to cart.", cart)
}

func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	productID, err := helpers.ParseUintParam(mux.Vars(r)["productId"])
	if err != nil {
		response.Fail(h.render, w, http.StatusBadRequest, "Invalid product id.")
		return
	}
	var body struct {
		Quantity int `json:"quantity"`
	}
	if err := helpers.DecodeJSONBody(w, r, &body); err != nil {
		response.Fail(h.render, w, http.StatusBadRequest, "Invalid request payload.")
		return
	}

	cart, err := h.carts.UpdateItem(r.Context(), helpers.GetUserIDFromContext(r.Context()), productID, body.Quantity)
	if err != nil {
		response.Error(h.render, w, r, err)
		return
	}
	response.Success(h.render, w, http.StatusOK, "Cart updated.", cart)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, err := helpers.ParseUintParam(mux.Vars(r)["productId"])
	if err != nil {
		response.Fail(h.render, w, http.StatusBadRequest, "Invalid product id.")
		return
	}

	cart, err := h.carts.RemoveItem(r.Context(), helpers.GetUserIDFromContext(r.Context()), productID)
	if err != nil {
		response.Error(h.render, w, r, err)
		return
	}
	response.Success(h.render, w, http.StatusOK, "Item removed.", cart)
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.carts.Clear(r.Context(), helpers.GetUserIDFromContext(r.Context())); err != nil {
		response.Error(h.render, w, r, err)
		return
	}
	response.Success(h.render, w, http.StatusOK, "Cart cleared.", nil)
}
