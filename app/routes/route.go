package routes

import (
	"net/http"

	"github.com/Rakhulsr/storefront/app/handlers"
	"github.com/Rakhulsr/storefront/app/handlers/admin"
	"github.com/Rakhulsr/storefront/app/handlers/response"
	"github.com/Rakhulsr/storefront/app/middlewares"
	"github.com/Rakhulsr/storefront/app/repositories"
	"github.com/Rakhulsr/storefront/app/services"
	"github.com/Rakhulsr/storefront/app/utils/sessions"
	"github.com/gorilla/mux"
	"github.com/unrolled/render"
)

type Dependencies struct {
	Render    *render.Render
	Sessions  sessions.SessionStore
	UserRepo  repositories.UserRepository
	Settings  *services.SettingsService
	Catalog   *services.CatalogService
	Carts     *services.CartService
	Orders    *services.OrderService
	Checkout  *services.CheckoutService
	Payments  *services.PaymentService
	Auth      *services.AuthService
	Addresses *services.AddressService

	// CSRFKey enables CSRF protection when set.
	CSRFKey      []byte
	SecureCookie bool
}

func NewRouter(d Dependencies) http.Handler {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response.Fail(d.Render, w, http.StatusNotFound, "Route not found.")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response.Fail(d.Render, w, http.StatusMethodNotAllowed, "Method not allowed.")
	})

	router.Use(middlewares.SessionMiddleware(d.Sessions, d.UserRepo))
	router.Use(middlewares.MaintenanceMiddleware(d.Settings, d.Render))

	productHandler := handlers.NewProductHandler(d.Render, d.Catalog)
	settingsHandler := handlers.NewSettingsHandler(d.Render, d.Settings)
	authHandler := handlers.NewAuthHandler(d.Render, d.Auth, d.Sessions)
	cartHandler := handlers.NewCartHandler(d.Render, d.Carts)
	orderHandler := handlers.NewOrderHandler(d.Render, d.Orders, d.Checkout)
	paymentHandler := handlers.NewPaymentHandler(d.Render, d.Checkout, d.Payments)
	addressHandler := handlers.NewAddressHandler(d.Render, d.Addresses)
	settingsAdmin := admin.NewSettingsAdminHandler(d.Render, d.Settings)
	orderAdmin := admin.NewOrderAdminHandler(d.Render, d.Orders)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		response.Success(d.Render, w, http.StatusOK, "ok", nil)
	}).Methods(http.MethodGet)

	// public
	router.HandleFunc("/products", productHandler.List).Methods(http.MethodGet)
	router.HandleFunc("/products/{id:[0-9]+}", productHandler.Get).Methods(http.MethodGet)
	router.HandleFunc("/settings/public", settingsHandler.Public).Methods(http.MethodGet)
	router.HandleFunc("/settings/shipping/calculate", settingsHandler.CalculateShipping).Methods(http.MethodGet)
	router.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)
	router.HandleFunc("/auth/logout", authHandler.Logout).Methods(http.MethodPost)
	router.HandleFunc("/auth/register", authHandler.Register).Methods(http.MethodPost)
	router.HandleFunc("/payments/notifications/midtrans", paymentHandler.MidtransNotification).Methods(http.MethodPost)

	// customer
	customer := router.NewRoute().Subrouter()
	customer.Use(middlewares.RequireUser(d.Render))
	customer.HandleFunc("/auth/me", authHandler.Me).Methods(http.MethodGet)
	customer.HandleFunc("/addresses", addressHandler.List).Methods(http.MethodGet)
	customer.HandleFunc("/addresses", addressHandler.Create).Methods(http.MethodPost)
	customer.HandleFunc("/cart", cartHandler.Get).Methods(http.MethodGet)
	customer.HandleFunc("/cart", cartHandler.Clear).Methods(http.MethodDelete)
	customer.HandleFunc("/cart/items", cartHandler.AddItem).Methods(http.MethodPost)
	customer.HandleFunc("/cart/items/{productId:[0-9]+}", cartHandler.UpdateItem).Methods(http.MethodPut)
	customer.HandleFunc("/cart/items/{productId:[0-9]+}", cartHandler.RemoveItem).Methods(http.MethodDelete)
	customer.HandleFunc("/orders", orderHandler.Create).Methods(http.MethodPost)
	customer.HandleFunc("/orders", orderHandler.List).Methods(http.MethodGet)
	customer.HandleFunc("/orders/{id:[0-9]+}", orderHandler.Get).Methods(http.MethodGet)
	customer.HandleFunc("/orders/{id:[0-9]+}/cancel", orderHandler.Cancel).Methods(http.MethodPost)
	customer.HandleFunc("/orders/{id:[0-9]+}/checkout", orderHandler.Checkout).Methods(http.MethodPost)
	customer.HandleFunc("/payments/checkout", paymentHandler.CheckoutCart).Methods(http.MethodPost)

	// admin
	adminRouter := router.PathPrefix("/admin").Subrouter()
	adminRouter.Use(middlewares.AdminMiddleware(d.Render))

	adminRouter.HandleFunc("/settings", settingsAdmin.Get).Methods(http.MethodGet)
	adminRouter.HandleFunc("/settings/maintenance", settingsAdmin.UpdateMaintenance).Methods(http.MethodPut)
	adminRouter.HandleFunc("/settings/shipping", settingsAdmin.UpdateShipping).Methods(http.MethodPut)
	adminRouter.HandleFunc("/settings/shipping/exempt-categories", settingsAdmin.UpdateExemptCategories).Methods(http.MethodPut)
	adminRouter.HandleFunc("/settings/discount/global", settingsAdmin.UpdateGlobalDiscount).Methods(http.MethodPut)
	adminRouter.HandleFunc("/settings/discount/category", settingsAdmin.AddCategoryDiscount).Methods(http.MethodPost)
	adminRouter.HandleFunc("/settings/discount/category/{id:[0-9]+}", settingsAdmin.RemoveCategoryDiscount).Methods(http.MethodDelete)
	adminRouter.HandleFunc("/settings/discount/product", settingsAdmin.AddProductDiscount).Methods(http.MethodPost)
	adminRouter.HandleFunc("/settings/discount/product/{id:[0-9]+}", settingsAdmin.RemoveProductDiscount).Methods(http.MethodDelete)
	adminRouter.HandleFunc("/settings/seasonal-offer", settingsAdmin.AddSeasonalOffer).Methods(http.MethodPost)
	adminRouter.HandleFunc("/settings/seasonal-offer/{name}", settingsAdmin.RemoveSeasonalOffer).Methods(http.MethodDelete)
	adminRouter.HandleFunc("/settings/user-registration", settingsAdmin.UpdateUserRegistration).Methods(http.MethodPut)
	adminRouter.HandleFunc("/settings/max-items", settingsAdmin.UpdateMaxItems).Methods(http.MethodPut)
	adminRouter.HandleFunc("/settings/test-discount/{productId:[0-9]+}", settingsAdmin.TestDiscount).Methods(http.MethodGet)

	adminRouter.HandleFunc("/orders", orderAdmin.List).Methods(http.MethodGet)
	adminRouter.HandleFunc("/orders/stats/summary", orderAdmin.Stats).Methods(http.MethodGet)
	adminRouter.HandleFunc("/orders/{id:[0-9]+}", orderAdmin.Get).Methods(http.MethodGet)
	adminRouter.HandleFunc("/orders/{id:[0-9]+}/status", orderAdmin.UpdateStatus).Methods(http.MethodPatch)
	adminRouter.HandleFunc("/orders/{id:[0-9]+}", orderAdmin.Delete).Methods(http.MethodDelete)

	if len(d.CSRFKey) == 0 {
		return router
	}
	router.Use(middlewares.CSRFTokenHeader)
	return middlewares.CSRFMiddleware(d.CSRFKey, d.SecureCookie, d.Render)(router)
}
