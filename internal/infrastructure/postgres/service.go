package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"chatrelay/internal/config"
	"chatrelay/internal/domain"
)

// Service is the system of record for users and chat records. One pool is
// created at startup and shared by every request.
type Service struct {
	pool *pgxpool.Pool
}

func NewService(ctx context.Context) *Service {
	log.Info().Msg("Initialising Postgres service")

	pool, err := pgxpool.New(ctx, config.GetDatabaseURL())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Postgres connection pool")
	}

	if err := pool.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to reach Postgres")
	}

	return &Service{pool: pool}
}

// NewServiceWithPool wraps an existing pool, used by tests.
func NewServiceWithPool(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

// UpsertUser inserts the user row if absent. Re-registration with the same
// derived ID is a no-op, which keeps concurrent registrations benign.
func (s *Service) UpsertUser(ctx context.Context, user domain.User) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (user_id, name, email)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO NOTHING
	`, user.UserID, user.Name, user.Email)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

// GetUser returns the user row or (nil, nil) when no row exists.
func (s *Service) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT user_id, name, email
		FROM users
		WHERE user_id = $1
	`, userID)

	var u domain.User
	if err := row.Scan(&u.UserID, &u.Name, &u.Email); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// InsertChat appends one request/response pair to the durable log.
func (s *Service) InsertChat(ctx context.Context, userID, message, reply string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO chats (user_id, message, reply)
		VALUES ($1, $2, $3)
	`, userID, message, reply)
	if err != nil {
		return fmt.Errorf("insert chat: %w", err)
	}
	return nil
}

// ListChats returns every chat record for the user in store-native order.
// Callers must not assume chronological ordering.
func (s *Service) ListChats(ctx context.Context, userID string) ([]domain.ChatRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT user_id, message, reply, created_at
		FROM chats
		WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	defer rows.Close()

	records := make([]domain.ChatRecord, 0)
	for rows.Next() {
		var r domain.ChatRecord
		if err := rows.Scan(&r.UserID, &r.Message, &r.Reply, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chat record: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chat records: %w", err)
	}
	return records, nil
}

// Ping checks if Postgres is accessible
func (s *Service) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the connection pool
func (s *Service) Close() {
	s.pool.Close()
}
