package handlers

import (
	"log"
	"net/http"

	"github.com/Rakhulsr/storefront/app/handlers/response"
	"github.com/Rakhulsr/storefront/app/helpers"
	"github.com/Rakhulsr/storefront/app/services"
	"github.com/Rakhulsr/storefront/app/utils/sessions"
	"github.com/unrolled/render"
)

type AuthHandler struct {
	render   *render.Render
	auth     *services.AuthService
	sessions sessions.SessionStore
}

func NewAuthHandler(render *render.Render, auth *services.AuthService, sessions sessions.SessionStore) *AuthHandler {
	return &AuthHandler{render: render, auth: auth, sessions: sessions}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in services.LoginInput
	if err := helpers.DecodeJSONBody(w, r, &in); err != nil {
		response.Fail(h.render, w, http.StatusBadRequest, "Invalid request payload.")
		return
	}

	user, err := h.auth.Login(r.Context(), in)
	if err != nil {
		response.Error(h.render, w, r, err)
		return
	}
	if err := h.sessions.SetUserID(w, r, user.ID); err != nil {
		log.Printf("ERROR: AuthHandler.Login: failed to save session for user %s: %v", user.ID, err)
		response.Fail(h.render, w, http.StatusInternalServerError, "Failed to start session.")
		return
	}

	log.Printf("INFO: AuthHandler.Login: user %s logged in", user.ID)
	response.Success(h.render, w, http.StatusOK, "Logged in.", user)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.ClearSession(w, r); err != nil {
		log.Printf("WARNING: AuthHandler.Logout: %v", err)
	}
	response.Success(h.render, w, http.StatusOK, "Logged out.", nil)
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	if err := helpers.DecodeJSONBody(w, r, &in); err != nil {
		response.Fail(h.render, w, http.StatusBadRequest, "Invalid request payload.")
		return
	}

	user, err := h.auth.Register(r.Context(), in)
	if err != nil {
		response.Error(h.render, w, r, err)
		return
	}
	response.Success(h.render, w, http.StatusCreated, "Account created.", user)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.auth.CurrentUser(r.Context(), helpers.GetUserIDFromContext(r.Context()))
	if err != nil {
		response.Error(h.render, w, r, err)
		return
	}
	response.Success(h.render, w, http.StatusOK, "", user)
}
