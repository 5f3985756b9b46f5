// Package config provides configuration for the application
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Logging   LoggingConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	CORS      CORSConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	AI        *AIConfig

	// KeypointRefreshSchedule is a cron spec; empty disables scheduled extraction
	KeypointRefreshSchedule string
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port int
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string
}

// MongoConfig holds datastore connection settings
type MongoConfig struct {
	URI      string
	Database string
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string
}

// JWTConfig holds participant token settings
type JWTConfig struct {
	Secret string
}

// RateLimitConfig holds per-IP request limits
type RateLimitConfig struct {
	RequestsPerMinute int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	godotenv.Load()

	cfg := &Config{}

	port, err := getEnvInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	cfg.Server.Port = port

	cfg.Logging.Level = getEnvOrDefault("LOG_LEVEL", "info")

	cfg.Mongo.URI = getEnvOrDefault("MONGO_URI", "mongodb://localhost:27017")
	cfg.Mongo.Database = getEnvOrDefault("MONGO_DATABASE", "feedbackquest")

	redisAddr := getEnvOrDefault("REDIS_ADDR", "localhost:6379")
	// Remove redis:// prefix if present
	cfg.Redis.Addr = strings.TrimPrefix(redisAddr, "redis://")
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	cfg.Redis.DB = redisDB

	cfg.CORS.AllowedOrigins = parseOrigins(os.Getenv("CORS_ALLOWED_ORIGINS"))

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	cfg.JWT.Secret = jwtSecret

	rpm, err := getEnvInt("RATE_LIMIT_PER_MINUTE", 100)
	if err != nil {
		return nil, err
	}
	if rpm <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	cfg.RateLimit.RequestsPerMinute = rpm

	cfg.KeypointRefreshSchedule = os.Getenv("KEYPOINT_REFRESH_SCHEDULE")

	aiCfg, err := DefaultAIConfig()
	if err != nil {
		return nil, err
	}
	cfg.AI = aiCfg

	return cfg, nil
}

// parseOrigins splits a comma-separated origin list, defaulting to allow all
func parseOrigins(raw string) []string {
	origins := make([]string, 0)
	for _, origin := range strings.Split(raw, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}
