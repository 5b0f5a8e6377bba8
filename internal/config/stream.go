package config

import "github.com/rs/zerolog/log"

const defaultStreamBaseURL = "https://chat.stream-io-api.com"

// GetStreamAPIKey returns the directory service API key
func GetStreamAPIKey() string {
	value := GetEnvOrDefault("STREAM_API_KEY", "")
	if value == "" {
		log.Fatal().Msg("STREAM_API_KEY environment variable not set")
	}
	return value
}

// GetStreamAPISecret returns the directory service API secret used to sign
// server tokens
func GetStreamAPISecret() string {
	value := GetEnvOrDefault("STREAM_API_SECRET", "")
	if value == "" {
		log.Fatal().Msg("STREAM_API_SECRET environment variable not set")
	}
	return value
}

// GetStreamBaseURL returns the directory service endpoint. Overridable so
// tests can point the client at a local double.
func GetStreamBaseURL() string {
	return GetEnvOrDefault("STREAM_BASE_URL", defaultStreamBaseURL)
}
