// Package relay turns one user message into a stored, published AI reply.
package relay

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"chatrelay/internal/domain"
	"chatrelay/internal/infrastructure/stream"
)

const (
	// channelIDPrefix plus the user ID names the per-user channel.
	channelIDPrefix = "chat-"

	// botID is the synthetic sender every AI reply is attributed to.
	botID = "ai_bot"

	// fallbackReply is substituted when the model produces no usable text.
	fallbackReply = "I'm sorry, I couldn't generate a response."
)

// Directory is the external presence service the user must be known to.
type Directory interface {
	QueryUsers(ctx context.Context, userID string) ([]stream.DirectoryUser, error)
}

// Channels publishes replies into the user's conversation channel.
type Channels interface {
	EnsureChannel(ctx context.Context, channelID, createdByID string) error
	Publish(ctx context.Context, channelID, text, senderID string) error
}

// Generator produces the AI reply text.
type Generator interface {
	Generate(ctx context.Context, message string) (string, error)
}

// ChatStore is the local system of record consulted and appended to.
type ChatStore interface {
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	InsertChat(ctx context.Context, userID, message, reply string) error
}

type Service struct {
	directory Directory
	channels  Channels
	generator Generator
	store     ChatStore
	timeout   time.Duration
}

func NewService(directory Directory, channels Channels, generator Generator, store ChatStore, timeout time.Duration) *Service {
	return &Service{
		directory: directory,
		channels:  channels,
		generator: generator,
		store:     store,
		timeout:   timeout,
	}
}

// Relay runs the full exchange for one message. The step order is part of
// the contract: both presence guards run before generation, and the record is
// persisted before the reply is published, so the durable log is never
// behind what the user sees live.
func (s *Service) Relay(ctx context.Context, userID, message string) (string, error) {
	if err := s.verifyDirectory(ctx, userID); err != nil {
		return "", err
	}

	if err := s.verifyStore(ctx, userID); err != nil {
		return "", err
	}

	reply, err := s.generate(ctx, message)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("AI generation failed")
		return "", domain.InternalError(err)
	}

	if err := s.persist(ctx, userID, message, reply); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to persist chat record")
		return "", domain.InternalError(err)
	}

	if err := s.publish(ctx, userID, reply); err != nil {
		// The exchange is already durable at this point; only the live
		// mirror is missing it. History still shows the reply.
		log.Error().
			Err(err).
			Str("user_id", userID).
			Bool("reply_persisted", true).
			Msg("Channel publication failed after persist")
		return "", domain.InternalError(err)
	}

	return reply, nil
}

// verifyDirectory confirms the user is known to the external directory.
func (s *Service) verifyDirectory(ctx context.Context, userID string) error {
	qctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	users, err := s.directory.QueryUsers(qctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Directory lookup failed")
		return domain.InternalError(err)
	}
	if len(users) == 0 {
		return domain.NotFoundError("User not found.")
	}
	return nil
}

// verifyStore confirms the user has a local row. Independent of the
// directory guard: registration writes to both stores, and a message that
// arrives before registration finished must be rejected.
func (s *Service) verifyStore(ctx context.Context, userID string) error {
	qctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	user, err := s.store.GetUser(qctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Local user lookup failed")
		return domain.InternalError(err)
	}
	if user == nil {
		return domain.NotFoundError("User not found in database, please register first.")
	}
	return nil
}

// generate asks the model for a reply. An empty completion degrades to the
// fixed fallback instead of failing the exchange; a generator error is fatal.
func (s *Service) generate(ctx context.Context, message string) (string, error) {
	gctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.generator.Generate(gctx, message)
	if err != nil {
		return "", err
	}
	if text == "" {
		log.Warn().Msg("Model returned no usable text, substituting fallback reply")
		return fallbackReply, nil
	}
	return text, nil
}

func (s *Service) persist(ctx context.Context, userID, message, reply string) error {
	pctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.store.InsertChat(pctx, userID, message, reply)
}

// publish mirrors the reply into the user's channel, creating the channel on
// first use. Creation of an existing channel is a no-op.
func (s *Service) publish(ctx context.Context, userID, reply string) error {
	channelID := channelIDPrefix + userID

	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.channels.EnsureChannel(cctx, channelID, botID); err != nil {
		return err
	}

	sctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.channels.Publish(sctx, channelID, reply, botID)
}
