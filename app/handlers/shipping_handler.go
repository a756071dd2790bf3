package handlers

import (
	"net/http"

	"github.com/Rakhulsr/storefront/app/handlers/response"
	"github.com/Rakhulsr/storefront/app/helpers"
	"github.com/Rakhulsr/storefront/app/services"
	"github.com/shopspring/decimal"
	"github.com/unrolled/render"
)

type SettingsHandler struct {
	render   *render.Render
	settings *services.SettingsService
}

func NewSettingsHandler(render *render.Render, settings *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{render: render, settings: settings}
}

func (h *SettingsHandler) Public(w http.ResponseWriter, r *http.Request) {
	public, err := h.settings.PublicSettings(r.Context())
	if err != nil {
		response.Error(h.render, w, r, err)
		return
	}
	response.Success(h.render, w, http.StatusOK, "", public)
}

// CalculateShipping handles GET /settings/shipping/calculate?total=&category_ids=1,2
// The older subtotal parameter is still read when total is absent.
func (h *SettingsHandler) CalculateShipping(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	raw := query.Get("total")
	if raw == "" {
		raw = query.Get("subtotal")
	}
	total, err := decimal.NewFromString(raw)
	if err != nil {
		response.Fail(h.render, w, http.StatusBadRequest, "total must be a decimal number.")
		return
	}
	categoryIDs, err := helpers.ParseIDList(query.Get("category_ids"))
	if err != nil {
		response.Fail(h.render, w, http.StatusBadRequest, "category_ids must be a comma separated list of ids.")
		return
	}

	quote, err := h.settings.ShippingQuote(r.Context(), total, categoryIDs)
	if err != nil {
		response.Error(h.render, w, r, err)
		return
	}
	response.Success(h.render, w, http.StatusOK, "", quote)
}
