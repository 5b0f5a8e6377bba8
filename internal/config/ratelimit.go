package config

import (
	"time"

	"github.com/rs/zerolog/log"
)

type RateLimitConfig struct {
	Enabled bool
	MaxHits int
	Window  time.Duration
}

func GetRateLimitConfig(key string) RateLimitConfig {
	enabled := GetEnvOrDefault("RATELIMIT_ENABLED", "false") == "true"

	configs := map[string]RateLimitConfig{
		"register_user": {
			Enabled: enabled,
			MaxHits: parseEnvInt("RATELIMIT_REGISTER_USER", 30), // 30 requests per minute
			Window:  time.Minute,
		},
		"chat": {
			Enabled: enabled,
			MaxHits: parseEnvInt("RATELIMIT_CHAT", 60), // 60 requests per minute
			Window:  time.Minute,
		},
		"get_messages": {
			Enabled: enabled,
			MaxHits: parseEnvInt("RATELIMIT_GET_MESSAGES", 120), // 120 requests per minute
			Window:  time.Minute,
		},
	}

	if config, exists := configs[key]; exists {
		return config
	}

	log.Warn().Str("key", key).Msg("No rate limit config found for key")
	return RateLimitConfig{Enabled: false}
}
