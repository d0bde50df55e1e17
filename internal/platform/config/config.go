// Package config loads service configuration from the environment.
package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Addr is the HTTP listen address.
	Addr string

	// PostgresDSN selects the Postgres stores. Empty runs on in-memory
	// stores, which is only useful for local development.
	PostgresDSN string

	// RedisURL enables the resolution list cache. Empty disables caching.
	RedisURL string

	// JWTSigningKey verifies bearer tokens minted by the auth provider.
	JWTSigningKey string

	// Optional search modes.
	EnableDateRange    bool
	EnableCurrentMonth bool

	ResolutionCacheTTL time.Duration

	ShutdownTimeout time.Duration
	RequestTimeout  time.Duration
}

func FromEnv() Config {
	return Config{
		Addr:               getEnv("CUSTOMSPAY_ADDR", ":8080"),
		PostgresDSN:        getEnv("CUSTOMSPAY_POSTGRES_DSN", ""),
		RedisURL:           getEnv("CUSTOMSPAY_REDIS_URL", ""),
		JWTSigningKey:      getEnv("CUSTOMSPAY_JWT_SIGNING_KEY", ""),
		EnableDateRange:    getEnvBool("CUSTOMSPAY_ENABLE_DATE_RANGE", false),
		EnableCurrentMonth: getEnvBool("CUSTOMSPAY_ENABLE_CURRENT_MONTH", false),
		ResolutionCacheTTL: getEnvDuration("CUSTOMSPAY_RESOLUTION_CACHE_TTL", 5*time.Minute),
		ShutdownTimeout:    getEnvDuration("CUSTOMSPAY_SHUTDOWN_TIMEOUT", 10*time.Second),
		RequestTimeout:     getEnvDuration("CUSTOMSPAY_REQUEST_TIMEOUT", 30*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
