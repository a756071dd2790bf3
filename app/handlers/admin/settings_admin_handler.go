package admin

import (
	"net/http"

	"github.com/Rakhulsr/storefront/app/handlers/response"
	"github.com/Rakhulsr/storefront/app/helpers"
	"github.com/Rakhulsr/storefront/app/services"
	"github.com/gorilla/mux"
	"github.com/unrolled/render"
)

type SettingsAdminHandler struct {
	render   *render.Render
	settings *services.SettingsService
}

func NewSettingsAdminHandler(render *render.Render, settings *services.SettingsService) *SettingsAdminHandler {
	return &SettingsAdminHandler{render: render, settings: settings}
}

// update decodes the body into in and hands it to apply.
func update[T any](h *SettingsAdminHandler, w http.ResponseWriter, r *http.Request, message string, apply func(T) (interface{}, error)) {
	var in T
	if err := helpers.DecodeJSONBody(w, r, &in); err != nil {
		response.Fail(h.render, w, http.StatusBadRequest, "Invalid request payload.")
		return
	}
	result, err := apply(in)
	if err != nil {
		response.Error(h.render, w, r, err)
		return
	}
	response.Success(h.render, w, http.StatusOK, message, result)
}

func (h *SettingsAdminHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.Get(r.Context())
	if err != nil {
		response.Error(h.render, w, r, err)
		return
	}
	response.Success(h.render, w, http.StatusOK, "", settings)
}

func (h *SettingsAdminHandler) UpdateMaintenance(w http.ResponseWriter, r *http.Request) {
	update(h, w, r, "Maintenance settings updated.", func(in services.MaintenanceInput) (interface{}, error) {
		return h.settings.UpdateMaintenance(r.Context(), in)
	})
}

func (h *SettingsAdminHandler) UpdateShipping(w http.ResponseWriter, r *http.Request) {
	update(h, w, r, "Shipping settings updated.", func(in services.ShippingInput) (interface{}, error) {
		return h.settings.UpdateShipping(r.Context(), in)
	})
}

type exemptCategoriesBody struct {
	CategoryIDs []uint `json:"category_ids"`
}

func (h *SettingsAdminHandler) UpdateExemptCategories(w http.ResponseWriter, r *http.Request) {
	update(h, w, r, "Shipping exempt categories updated.", func(in exemptCategoriesBody) (interface{}, error) {
		return h.settings.UpdateExemptCategories(r.Context(), in.CategoryIDs)
	})
}

func (h *SettingsAdminHandler) UpdateGlobalDiscount(w http.ResponseWriter, r *http.Request) {
	update(h, w, r, "Global discount updated.", func(in services.GlobalDiscountInput) (interface{}, error) {
		return h.settings.UpdateGlobalDiscount(r.Context(), in)
	})
}

func (h *SettingsAdminHandler) AddCategoryDiscount(w http.ResponseWriter, r *http.Request) {
	update(h, w, r, "Category discount saved.", func(in services.DiscountInput) (interface{}, error) {
		return h.settings.AddCategoryDiscount(r.Context(), in)
	})
}

func (h *SettingsAdminHandler) AddProductDiscount(w http.ResponseWriter, r *http.Request) {
	update(h, w, r, "Product discount saved.", func(in services.DiscountInput) (interface{}, error) {
		return h.settings.AddProductDiscount(r.Context(), in)
	})
}

func (h *SettingsAdminHandler) AddSeasonalOffer(w http.ResponseWriter, r *http.Request) {
	update(h, w, r, "Seasonal offer added.", func(in services.SeasonalOfferInput) (interface{}, error) {
		return h.settings.AddSeasonalOffer(r.Context(), in)
	})
}

type registrationBody struct {
	Allow bool `json:"allow_user_registration"`
}

func (h *SettingsAdminHandler) UpdateUserRegistration(w http.ResponseWriter, r *http.Request) {
	update(h, w, r, "User registration setting updated.", func(in registrationBody) (interface{}, error) {
		return h.settings.UpdateUserRegistration(r.Context(), in.Allow)
	})
}

func (h *SettingsAdminHandler) UpdateMaxItems(w http.ResponseWriter, r *http.Request) {
	update(h, w, r, "Max items per order updated.", func(in services.MaxItemsInput) (interface{}, error) {
		return h.settings.UpdateMaxItems(r.Context(), in)
	})
}

func (h *SettingsAdminHandler) idParam(w http.ResponseWriter, r *http.Request, name string) (uint, bool) {
	id, err := helpers.ParseUintParam(mux.Vars(r)[name])
	if err != nil {
		response.Fail(h.render, w, http.StatusBadRequest, "Invalid "+name+".")
		return 0, false
	}
	return id, true
}

func (h *SettingsAdminHandler) RemoveCategoryDiscount(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r, "id")
	if !ok {
		return
	}
	settings, err := h.settings.RemoveCategoryDiscount(r.Context(), id)
	if err != nil {
		response.Error(h.render, w, r, err)
		return
	}
	response.Success(h.render, w, http.StatusOK, "Category discount removed.", settings)
}

func (h *SettingsAdminHandler) RemoveProductDiscount(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r, "id")
	if !ok {
		return
	}
	settings, err := h.settings.RemoveProductDiscount(r.Context(), id)
	if err != nil {
		response.Error(h.render, w, r, err)
		return
	}
	response.Success(h.render, w, http.StatusOK, "Product discount removed.", settings)
}

func (h *SettingsAdminHandler) RemoveSeasonalOffer(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.RemoveSeasonalOffer(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		response.Error(h.render, w, r, err)
		return
	}
	response.Success(h.render, w, http.StatusOK, "Seasonal offer removed.", settings)
}

// TestDiscount previews the price a product would sell for today.
func (h *SettingsAdminHandler) TestDiscount(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r, "productId")
	if !ok {
		return
	}
	preview, err := h.settings.PreviewProductDiscount(r.Context(), id)
	if err != nil {
		response.Error(h.render, w, r, err)
		return
	}
	response.Success(h.render, w, http.StatusOK, "", preview)
}
