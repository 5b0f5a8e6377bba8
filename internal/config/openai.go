package config

import "github.com/rs/zerolog/log"

// GetOpenAIKey returns the current OpenAI key
func GetOpenAIKey() string {
	value := GetEnvOrDefault("OPENAI_KEY", "")
	if value == "" {
		log.Fatal().Msg("OPENAI_KEY environment variable not set")
	}
	return value
}

// GetOpenAIModel returns the model every relay request runs under.
func GetOpenAIModel() string {
	return GetEnvOrDefault("OPENAI_MODEL", "gpt-4o")
}
