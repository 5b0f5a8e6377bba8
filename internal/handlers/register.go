package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"chatrelay/internal/services/registry"
	"chatrelay/pkg/httpext"
)

type RegisterUserRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required"`
}

// use a single instance of Validate, it caches struct info
var validate = validator.New(validator.WithRequiredStructEnabled())

// HandleRegisterUser registers a user with the directory service and the
// local store, returning the derived identity.
func HandleRegisterUser(registryService *registry.Service, w http.ResponseWriter, r *http.Request) {
	var req RegisterUserRequest
	if err := decodeBody(r, &req); err != nil {
		log.Warn().Err(err).Msg("Client sent malformed register-user request")
		httpext.JsonError(w, "Name and email are required fields.", http.StatusBadRequest)
		return
	}

	if err := validate.Struct(req); err != nil {
		log.Warn().Err(err).Msg("register-user request validation failed")
		httpext.JsonError(w, "Name and email are required fields.", http.StatusBadRequest)
		return
	}

	log.Info().
		Str("client_ip", r.RemoteAddr).
		Msg("Received register-user request")

	user, err := registryService.Register(r.Context(), req.Name, req.Email)
	if err != nil {
		log.Error().Err(err).Msg("Failed to register user")
		httpext.JsonDomainError(w, err)
		return
	}

	httpext.JsonResponse(w, user)
}
