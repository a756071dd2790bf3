package response

import (
	"errors"
	"log"
	"net/http"

	"github.com/Rakhulsr/storefront/app/services"
	"github.com/unrolled/render"
)

type Body struct {
	Status  string            `json:"status"`
	Message string            `json:"message,omitempty"`
	Data    interface{}       `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func Success(rnd *render.Render, w http.ResponseWriter, code int, message string, data interface{}) {
	_ = rnd.JSON(w, code, Body{Status: "success", Message: message, Data: data})
}

func Fail(rnd *render.Render, w http.ResponseWriter, code int, message string) {
	_ = rnd.JSON(w, code, Body{Status: "error", Message: message})
}

// StatusFor maps service errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrRegistrationClosed):
		return http.StatusForbidden
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrInsufficientStock):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidStateTransition),
		errors.Is(err, services.ErrDuplicatePaymentReference),
		errors.Is(err, services.ErrConfigurationConflict):
		return http.StatusConflict
	case errors.Is(err, services.ErrGateway):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err as a JSON error body. Internal errors are logged and
// replaced with a generic message.
func Error(rnd *render.Render, w http.ResponseWriter, r *http.Request, err error) {
	code := StatusFor(err)
	body := Body{Status: "error", Message: err.Error()}

	var verr *services.ValidationError
	if errors.As(err, &verr) {
		body.Message = "Validation failed."
		body.Errors = verr.Fields
	}
	if code >= http.StatusInternalServerError {
		log.Printf("ERROR: %s %s: %v", r.Method, r.URL.Path, err)
		if code == http.StatusInternalServerError {
			body.Message = "Internal server error."
		}
	}
	_ = rnd.JSON(w, code, body)
}
