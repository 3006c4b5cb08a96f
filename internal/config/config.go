package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	Environment string

	DatabaseURL string
	AutoMigrate bool

	RedisURL string

	JWTSecret       string
	JWTAccessExpiry time.Duration

	CORSOrigins string

	FeedScope            string
	CountCacheTTL        time.Duration
	ListenerMinReconnect time.Duration
	ListenerMaxReconnect time.Duration
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		AutoMigrate: getBoolEnv("AUTO_MIGRATE", false),

		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379"),

		JWTSecret:       getEnv("JWT_SECRET", ""),
		JWTAccessExpiry: getDurationEnv("JWT_ACCESS_EXPIRY", time.Hour),

		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:5173"),

		FeedScope:            getEnv("NOTIFICATION_FEED_SCOPE", "account"),
		CountCacheTTL:        getDurationEnv("NOTIFICATION_COUNT_CACHE_TTL", 5*time.Minute),
		ListenerMinReconnect: getDurationEnv("LISTENER_MIN_RECONNECT", 10*time.Second),
		ListenerMaxReconnect: getDurationEnv("LISTENER_MAX_RECONNECT", time.Minute),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}
