package httpext

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"chatrelay/internal/domain"
)

// ErrorResponse represents a standardised JSON error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// JsonError writes a JSON error response with the specified status code
func JsonError(w http.ResponseWriter, message string, code int) {
	response := ErrorResponse{
		Error: message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Error().Err(err).Msg("Failed to encode error response")
		// Fallback to writing JSON body as plain text if JSON encoding fails
		http.Error(w, "{\"error\":\"Internal server error.\"}", http.StatusInternalServerError)
		return
	}
}

// JsonDomainError maps a service-layer error to its HTTP status and fixed
// message. Anything that is not a *domain.Error is treated as internal.
func JsonDomainError(w http.ResponseWriter, err error) {
	var derr *domain.Error
	if !errors.As(err, &derr) {
		JsonError(w, "Internal server error.", http.StatusInternalServerError)
		return
	}

	switch derr.Kind {
	case domain.KindValidation:
		JsonError(w, derr.Message, http.StatusBadRequest)
	case domain.KindNotFound:
		JsonError(w, derr.Message, http.StatusNotFound)
	default:
		JsonError(w, derr.Message, http.StatusInternalServerError)
	}
}

// JsonResponse writes a JSON success body with status 200
func JsonResponse(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("Failed to encode response body")
	}
}
