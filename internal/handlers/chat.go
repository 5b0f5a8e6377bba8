package handlers

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"chatrelay/internal/services/relay"
	"chatrelay/pkg/httpext"
)

type ChatRequest struct {
	Message string `json:"message" validate:"required"`
	UserID  string `json:"userId" validate:"required"`
}

type ChatResponse struct {
	Reply string `json:"reply"`
}

// HandleChat relays one user message through the AI generator, the durable
// log, and the user's channel.
func HandleChat(relayService *relay.Service, w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := decodeBody(r, &req); err != nil {
		log.Warn().Err(err).Msg("Client sent malformed chat request")
		httpext.JsonError(w, "Message and userId are required fields.", http.StatusBadRequest)
		return
	}

	if err := validate.Struct(req); err != nil {
		log.Warn().Err(err).Msg("Chat request validation failed")
		httpext.JsonError(w, "Message and userId are required fields.", http.StatusBadRequest)
		return
	}

	log.Info().
		Str("user_id", req.UserID).
		Str("client_ip", r.RemoteAddr).
		Msg("Received chat request")

	reply, err := relayService.Relay(r.Context(), req.UserID, req.Message)
	if err != nil {
		log.Error().Err(err).Str("user_id", req.UserID).Msg("Failed to relay message")
		httpext.JsonDomainError(w, err)
		return
	}

	httpext.JsonResponse(w, ChatResponse{Reply: reply})
}
