package config

// GetRedisURL returns the Redis address for the rate-limit store. Empty means
// Redis is not configured and the in-memory store is used instead.
func GetRedisURL() string {
	return GetEnvOrDefault("REDIS_URL", "")
}

// GetRedisPassword returns the Redis password, if any
func GetRedisPassword() string {
	return GetEnvOrDefault("REDIS_PASSWORD", "")
}
