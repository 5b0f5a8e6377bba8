package config

import (
	"strings"
	"time"
)

// GetServerPort returns the HTTP listen port.
func GetServerPort() string {
	return GetEnvOrDefault("PORT", "5000")
}

// GetAllowedOrigins returns the CORS allow-list. Defaults to every origin,
// matching the reference deployment which fronts a public widget.
func GetAllowedOrigins() []string {
	raw := GetEnvOrDefault("ALLOWED_ORIGINS", "*")
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// GetDependencyTimeout bounds every outbound call (directory, AI model,
// database, channel publish). A stalled dependency fails the request instead
// of pinning it forever.
func GetDependencyTimeout() time.Duration {
	return time.Duration(parseEnvInt("DEPENDENCY_TIMEOUT_SECONDS", 30)) * time.Second
}
