package config

import (
	"os"
	"strconv"
)

type Config struct {
	APIPort  string
	LogLevel string

	IntentAPIURL string
	IntentAPIKey string
	IntentModel  string

	GeosearchURL string

	NATSURL     string
	NATSSubject string

	DefaultRadiusMeters   int
	SearchLimit           int
	NearbyCacheTTLSeconds int
	SessionTTLMinutes     int

	BreakerEnabled bool

	WorkerMetricsPort string
}

func Load() Config {
	return Config{
		APIPort:  mustEnv("API_PORT", "8080"),
		LogLevel: mustEnv("LOG_LEVEL", "info"),

		IntentAPIURL: mustEnv("INTENT_API_URL", "https://openrouter.ai/api/v1"),
		IntentAPIKey: mustEnv("INTENT_API_KEY", ""),
		IntentModel:  mustEnv("INTENT_MODEL", "meta-llama/llama-3.1-8b-instruct"),

		GeosearchURL: mustEnv("GEOSEARCH_URL", "http://localhost:4000/api"),

		NATSURL:     mustEnv("NATS_URL", "nats://localhost:4222"),
		NATSSubject: mustEnv("NATS_SUBJECT", "assistant.turns"),

		DefaultRadiusMeters:   mustEnvInt("DEFAULT_RADIUS_METERS", 500),
		SearchLimit:           mustEnvInt("SEARCH_LIMIT", 5),
		NearbyCacheTTLSeconds: mustEnvInt("NEARBY_CACHE_TTL_SECONDS", 60),
		SessionTTLMinutes:     mustEnvInt("SESSION_TTL_MINUTES", 30),

		BreakerEnabled: mustEnvBool("BREAKER_ENABLED", true),

		WorkerMetricsPort: mustEnv("WORKER_METRICS_PORT", "9090"),
	}
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}
