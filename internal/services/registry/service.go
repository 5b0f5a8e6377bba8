// Package registry keeps a registering user consistent across the external
// directory and the local store.
package registry

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"chatrelay/internal/domain"
	"chatrelay/internal/identity"
	"chatrelay/internal/infrastructure/stream"
)

// directoryRole is the role every relayed participant gets in the directory.
const directoryRole = "user"

// Directory is the external presence service consumed during registration.
type Directory interface {
	QueryUsers(ctx context.Context, userID string) ([]stream.DirectoryUser, error)
	UpsertUser(ctx context.Context, user stream.DirectoryUser) error
}

// UserStore is the local system of record for users.
type UserStore interface {
	UpsertUser(ctx context.Context, user domain.User) error
}

type Service struct {
	directory Directory
	store     UserStore
	timeout   time.Duration
}

func NewService(directory Directory, store UserStore, timeout time.Duration) *Service {
	return &Service{
		directory: directory,
		store:     store,
		timeout:   timeout,
	}
}

// Register derives the user ID from the email and writes the user into both
// the directory and the local store. Both writes are idempotent upserts, so
// registering the same email twice yields the same identity and no duplicate
// rows. The two writes are not atomic: a directory entry without a local row
// can be left behind when the second write fails.
func (s *Service) Register(ctx context.Context, name, email string) (domain.User, error) {
	if name == "" || email == "" {
		return domain.User{}, domain.ValidationError("Name and email are required fields.")
	}

	user := domain.User{
		UserID: identity.Normalize(email),
		Name:   name,
		Email:  email,
	}

	if err := s.syncDirectory(ctx, user); err != nil {
		log.Error().Err(err).Str("user_id", user.UserID).Msg("Directory sync failed during registration")
		return domain.User{}, domain.InternalError(err)
	}

	if err := s.syncStore(ctx, user); err != nil {
		log.Error().Err(err).Str("user_id", user.UserID).Msg("Local user upsert failed during registration")
		return domain.User{}, domain.InternalError(err)
	}

	log.Info().Str("user_id", user.UserID).Msg("User registered")
	return user, nil
}

// syncDirectory checks the directory for the derived ID and upserts a new
// entry when absent. The check-then-create is racy across concurrent
// registrations, but the directory treats creation as an upsert so a double
// create is harmless.
func (s *Service) syncDirectory(ctx context.Context, user domain.User) error {
	qctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	existing, err := s.directory.QueryUsers(qctx, user.UserID)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	uctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.directory.UpsertUser(uctx, stream.DirectoryUser{
		ID:    user.UserID,
		Name:  user.Name,
		Email: user.Email,
		Role:  directoryRole,
	})
}

func (s *Service) syncStore(ctx context.Context, user domain.User) error {
	uctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.store.UpsertUser(uctx, user)
}
