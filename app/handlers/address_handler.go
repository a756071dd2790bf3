package handlers

import (
	"net/http"

	"github.com/Rakhulsr/storefront/app/handlers/response"
	"github.com/Rakhulsr/storefront/app/helpers"
	"github.com/Rakhulsr/storefront/app/services"
	"github.com/unrolled/render"
)

type AddressHandler struct {
	render    *render.Render
	addresses *services.AddressService
}

func NewAddressHandler(render *render.Render, addresses *services.AddressService) *AddressHandler {
	return &AddressHandler{render: render, addresses: addresses}
}

func (h *AddressHandler) List(w http.ResponseWriter, r *http.Request) {
	addresses, err := h.addresses.List(r.Context(), helpers.GetUserIDFromContext(r.Context()))
	if err != nil {
		response.Error(h.render, w, r, err)
		return
	}
	response.Success(h.render, w, http.StatusOK, "", addresses)
}

func (h *AddressHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.AddressInput
	if err := helpers.DecodeJSONBody(w, r, &in); err != nil {
		response.Fail(h.render, w, http.StatusBadRequest, "Invalid request payload.")
		return
	}

	address, err := h.addresses.Create(r.Context(), helpers.GetUserIDFromContext(r.Context()), in)
	if err != nil {
		response.Error(h.render, w, r, err)
		return
	}
	response.Success(h.render, w, http.StatusCreated, "Address saved.", address)
}
