package middleware

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"chatrelay/internal/config"
	"chatrelay/internal/infrastructure/redis"
	"chatrelay/pkg/httpext"
	"chatrelay/pkg/ratelimit"
)

// RateLimit limits hits per client IP for the named endpoint. The store is
// Redis-backed when Redis is configured, in-memory otherwise.
func RateLimit(limitKey string, redisService *redis.Service) func(http.Handler) http.Handler {
	cfg := config.GetRateLimitConfig(limitKey)

	var store ratelimit.Store
	if redisService != nil {
		store = ratelimit.NewCounterStore(redisService, cfg.Window, cfg.MaxHits)
	} else {
		store = ratelimit.NewMemoryStore(cfg.Window, cfg.MaxHits)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			// Use X-Forwarded-For if behind proxy, otherwise remote address
			ip := r.Header.Get("X-Forwarded-For")
			if ip == "" {
				ip = r.RemoteAddr
			}

			allowed, err := store.Allow(r.Context(), "ratelimit:"+limitKey+":"+ip)
			if err != nil {
				// Fail open: a broken limiter store must not block traffic
				log.Warn().Err(err).Str("key", limitKey).Msg("Rate limit store error")
			}
			if !allowed {
				log.Warn().Str("ip", ip).Str("key", limitKey).Msg("Rate limit exceeded")
				httpext.JsonError(w, "Rate limit exceeded", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
