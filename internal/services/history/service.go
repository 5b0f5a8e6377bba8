// Package history reads the persisted conversation log.
package history

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"chatrelay/internal/domain"
)

// ChatStore is the durable log the reader pulls from.
type ChatStore interface {
	ListChats(ctx context.Context, userID string) ([]domain.ChatRecord, error)
}

type Service struct {
	store   ChatStore
	timeout time.Duration
}

func NewService(store ChatStore, timeout time.Duration) *Service {
	return &Service{
		store:   store,
		timeout: timeout,
	}
}

// Messages returns every chat record for the user in store-native order. An
// empty history is an empty slice, not an error.
func (s *Service) Messages(ctx context.Context, userID string) ([]domain.ChatRecord, error) {
	if userID == "" {
		return nil, domain.ValidationError("User ID is required.")
	}

	qctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	records, err := s.store.ListChats(qctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list chat records")
		return nil, domain.InternalError(err)
	}
	if records == nil {
		records = []domain.ChatRecord{}
	}
	return records, nil
}
