package handlers

import (
	"net/http"
	"strings"

	"github.com/Rakhulsr/storefront/app/handlers/response"
	"github.com/Rakhulsr/storefront/app/helpers"
	"github.com/Rakhulsr/storefront/app/services"
	"github.com/gorilla/mux"
	"github.com/unrolled/render"
)

type ProductHandler struct {
	render  *render.Render
	catalog *services.CatalogService
}

func NewProductHandler(render *render.Render, catalog *services.CatalogService) *ProductHandler {
	return &ProductHandler{render: render, catalog: catalog}
}

// List handles GET /products?category_id=&q=&page=&limit=
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	var categoryID uint
	if raw := r.URL.Query().Get("category_id"); raw != "" {
		id, err := helpers.ParseUintParam(raw)
		if err != nil {
			response.Fail(h.render, w, http.StatusBadRequest, "Invalid category_id.")
			return
		}
		categoryID = id
	}
	page, limit := helpers.Pagination(r)

	result, err := h.catalog.ListProducts(r.Context(), categoryID, strings.TrimSpace(r.URL.Query().Get("q")), page, limit)
	if err != nil {
		response.Error(h.render, w, r, err)
		return
	}
	response.Success(h.render, w, http.StatusOK, "", result)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.ParseUintParam(mux.Vars(r)["id"])
	if err != nil {
		response.Fail(h.render, w, http.StatusBadRequest, "Invalid product id.")
		return
	}

	product, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		response.Error(h.render, w, r, err)
		return
	}
	response.Success(h.render, w, http.StatusOK, "", product)
}
