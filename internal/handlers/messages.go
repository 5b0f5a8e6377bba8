package handlers

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"chatrelay/internal/domain"
	"chatrelay/internal/services/history"
	"chatrelay/pkg/httpext"
)

type GetMessagesRequest struct {
	UserID string `json:"userId" validate:"required"`
}

type GetMessagesResponse struct {
	Messages []domain.ChatRecord `json:"messages"`
}

// HandleGetMessages returns the persisted conversation history for a user.
// No history is an empty list, not an error.
func HandleGetMessages(historyService *history.Service, w http.ResponseWriter, r *http.Request) {
	var req GetMessagesRequest
	if err := decodeBody(r, &req); err != nil {
		log.Warn().Err(err).Msg("Client sent malformed get-messages request")
		httpext.JsonError(w, "User ID is required.", http.StatusBadRequest)
		return
	}

	if err := validate.Struct(req); err != nil {
		log.Warn().Err(err).Msg("get-messages request validation failed")
		httpext.JsonError(w, "User ID is required.", http.StatusBadRequest)
		return
	}

	records, err := historyService.Messages(r.Context(), req.UserID)
	if err != nil {
		log.Error().Err(err).Str("user_id", req.UserID).Msg("Failed to fetch messages")
		httpext.JsonDomainError(w, err)
		return
	}

	httpext.JsonResponse(w, GetMessagesResponse{Messages: records})
}
