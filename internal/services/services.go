package services

import (
	"context"

	"github.com/rs/zerolog/log"

	"chatrelay/internal/config"
	"chatrelay/internal/infrastructure/openai"
	"chatrelay/internal/infrastructure/postgres"
	"chatrelay/internal/infrastructure/redis"
	"chatrelay/internal/infrastructure/stream"
	"chatrelay/internal/services/history"
	"chatrelay/internal/services/registry"
	"chatrelay/internal/services/relay"
)

// Services holds every process-scoped collaborator. Each client is created
// once at startup and shared by all request tasks; all of them are safe for
// concurrent use with no request-level locking.
type Services struct {
	streamService   *stream.Service
	openAIService   *openai.Service
	postgresService *postgres.Service
	redisService    *redis.Service
	registryService *registry.Service
	relayService    *relay.Service
	historyService  *history.Service
}

// InitializeServices initializes all required services
func InitializeServices(ctx context.Context) *Services {
	log.Info().Msg("Initializing core services")

	// Optional Redis rate-limit backend; nil when unconfigured
	redisService := redis.NewService()

	// Required infrastructure: any of these fatals on missing config
	streamService := stream.NewService()
	openAIService := openai.NewService()
	postgresService := postgres.NewService(ctx)

	timeout := config.GetDependencyTimeout()

	registryService := registry.NewService(streamService, postgresService, timeout)
	relayService := relay.NewService(streamService, streamService, openAIService, postgresService, timeout)
	historyService := history.NewService(postgresService, timeout)

	log.Info().Msg("All services initialized successfully")

	return &Services{
		streamService:   streamService,
		openAIService:   openAIService,
		postgresService: postgresService,
		redisService:    redisService,
		registryService: registryService,
		relayService:    relayService,
		historyService:  historyService,
	}
}

// GetRegistryService returns the user directory sync service
func (s *Services) GetRegistryService() *registry.Service {
	return s.registryService
}

// GetRelayService returns the message relay service
func (s *Services) GetRelayService() *relay.Service {
	return s.relayService
}

// GetHistoryService returns the history reader service
func (s *Services) GetHistoryService() *history.Service {
	return s.historyService
}

// GetRedisService returns the optional Redis service, nil when unconfigured
func (s *Services) GetRedisService() *redis.Service {
	return s.redisService
}

// Shutdown releases every long-lived connection.
func (s *Services) Shutdown() {
	s.postgresService.Close()
	if s.redisService != nil {
		if err := s.redisService.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close Redis connection")
		}
	}
}
