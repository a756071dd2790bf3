package middlewares

import (
	"log"
	"net/http"

	"github.com/Rakhulsr/storefront/app/handlers/response"
	"github.com/unrolled/render"
)

func AdminMiddleware(rnd *render.Render) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := UserFromContext(r.Context())
			if user == nil {
				response.Fail(rnd, w, http.StatusUnauthorized, "Authentication required.")
				return
			}
			if !user.IsAdmin() {
				log.Printf("WARNING: AdminMiddleware: user %s (%s) attempted to access %s without admin role.", user.ID, user.Email, r.URL.Path)
				response.Fail(rnd, w, http.StatusForbidden, "Admin access required.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
