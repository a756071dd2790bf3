package middlewares

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/Rakhulsr/storefront/app/handlers/response"
	"github.com/Rakhulsr/storefront/app/helpers"
	"github.com/Rakhulsr/storefront/app/models"
	"github.com/Rakhulsr/storefront/app/repositories"
	"github.com/Rakhulsr/storefront/app/services"
	"github.com/Rakhulsr/storefront/app/utils/sessions"
	"github.com/gorilla/csrf"
	"github.com/unrolled/render"
)

const WebhookPathPrefix = "/payments/notifications/"

func UserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(helpers.ContextKeyUser).(*models.User)
	return user
}

// SessionMiddleware resolves the session user and stores it in the request
// context. Anonymous requests pass through untouched.
func SessionMiddleware(store sessions.SessionStore, userRepo repositories.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := store.GetUserID(r)
			if userID == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := userRepo.FindByID(r.Context(), userID)
			if err != nil {
				log.Printf("ERROR: SessionMiddleware: failed to load user %s: %v", userID, err)
				next.ServeHTTP(w, r)
				return
			}
			if user == nil {
				log.Printf("WARNING: SessionMiddleware: session points at missing user %s", userID)
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), helpers.ContextKeyUserID, user.ID)
			ctx = context.WithValue(ctx, helpers.ContextKeyUser, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RequireUser(rnd *render.Render) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if helpers.GetUserIDFromContext(r.Context()) == "" {
				response.Fail(rnd, w, http.StatusUnauthorized, "Authentication required.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// MaintenanceMiddleware answers 503 to everyone but admins while maintenance
// mode is on. Login, public settings and provider webhooks stay reachable.
func MaintenanceMiddleware(settings *services.SettingsService, rnd *render.Render) func(http.Handler) http.Handler {
	open := []string{"/auth/login", "/auth/logout", "/settings/public", WebhookPathPrefix}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, prefix := range open {
				if strings.HasPrefix(r.URL.Path, prefix) {
					next.ServeHTTP(w, r)
					return
				}
			}

			current, err := settings.Get(r.Context())
			if err != nil {
				log.Printf("ERROR: MaintenanceMiddleware: failed to read settings: %v", err)
				next.ServeHTTP(w, r)
				return
			}
			if !current.MaintenanceMode || UserFromContext(r.Context()).IsAdmin() {
				next.ServeHTTP(w, r)
				return
			}

			message := current.MaintenanceMessage
			if message == "" {
				message = models.DefaultMaintenanceMessage
			}
			w.Header().Set("Retry-After", "300")
			response.Fail(rnd, w, http.StatusServiceUnavailable, message)
		})
	}
}

// CSRFMiddleware protects cookie-authenticated routes. Provider webhooks carry
// no browser session and are skipped.
func CSRFMiddleware(authKey []byte, secure bool, rnd *render.Render) func(http.Handler) http.Handler {
	protect := csrf.Protect(
		authKey,
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.RequestHeader("X-CSRF-Token"),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log.Printf("WARNING: CSRFMiddleware: %s %s rejected: %v", r.Method, r.URL.Path, csrf.FailureReason(r))
			response.Fail(rnd, w, http.StatusForbidden, "Invalid CSRF token.")
		})),
	)

	return func(next http.Handler) http.Handler {
		protected := protect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, WebhookPathPrefix) {
				r = csrf.UnsafeSkipCheck(r)
			}
			protected.ServeHTTP(w, r)
		})
	}
}

// CSRFTokenHeader exposes the current token so API clients can echo it back.
func CSRFTokenHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-CSRF-Token", csrf.Token(r))
		next.ServeHTTP(w, r)
	})
}
