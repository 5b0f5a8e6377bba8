package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"chatrelay/internal/config"
)

type Service struct {
	client *redis.Client
}

// NewService connects to Redis when REDIS_URL is configured. Returns nil when
// it is not; callers treat a nil service as "no Redis" and fall back.
func NewService() *Service {
	url := config.GetRedisURL()

	if url == "" {
		log.Warn().Msg("Redis URL not configured - rate limiting will use the in-memory store")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     url,
		Password: config.GetRedisPassword(),
		DB:       0,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Error().
			Err(err).
			Str("addr", url).
			Msg("Failed to establish Redis connection")
		return nil
	}

	return &Service{
		client: client,
	}
}

// IncrWindow increments a windowed counter, starting the window on the first
// hit. The count resets when the window expires.
func (s *Service) IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error) {
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Error().
			Err(err).
			Str("key", key).
			Msg("Redis rate-limit counter update failed")
		return 0, err
	}
	return incr.Val(), nil
}

// Ping checks if Redis is accessible
func (s *Service) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (s *Service) Close() error {
	return s.client.Close()
}
