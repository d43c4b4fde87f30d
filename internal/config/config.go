package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	PostgreSQL PostgreSQLConfig
	Groq       GroqConfig
	Resolver   ResolverConfig
	Logging    LoggingConfig

	// Warnings collects values that could not be parsed and fell back to defaults
	Warnings []string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           int
	Host           string
	GinMode        string
	AllowedOrigins string
}

// PostgreSQLConfig holds the optional resolution-log database configuration
type PostgreSQLConfig struct {
	DSN                string // empty disables the resolution log
	MaxConnections     int
	MaxIdleConnections int
}

// GroqConfig holds the hosted chat-completions configuration
type GroqConfig struct {
	APIKey    string
	APIBase   string
	Model     string
	MaxTokens int
	Timeout   time.Duration
	Enabled   bool
}

// ResolverConfig holds the client-side resolver configuration
type ResolverConfig struct {
	Endpoint  string
	Timeout   time.Duration
	CacheSize int
	RedisAddr string        // empty keeps the cache in process
	CacheTTL  time.Duration // zero means entries never expire
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

const (
	DefaultGroqModel   = "llama-3.1-8b-instant"
	DefaultGroqAPIBase = "https://api.groq.com/openai/v1"
	DefaultEndpoint    = "http://localhost:8080/api/search-intent"
)

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	l := &loader{}
	cfg := &Config{
		Server: ServerConfig{
			Port:           l.getEnvAsInt("SERVER_PORT", 8080),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		PostgreSQL: PostgreSQLConfig{
			DSN:                getEnv("DATABASE_URL", getEnv("PG_DSN", "")),
			MaxConnections:     l.getEnvAsInt("PG_MAX_CONNECTIONS", 10),
			MaxIdleConnections: l.getEnvAsInt("PG_MAX_IDLE_CONNECTIONS", 2),
		},
		Groq: GroqConfig{
			APIKey:    getEnv("GROQ_API_KEY", ""),
			APIBase:   getEnv("GROQ_API_BASE", DefaultGroqAPIBase),
			Model:     getEnv("GROQ_MODEL", DefaultGroqModel),
			MaxTokens: l.getEnvAsInt("GROQ_MAX_TOKENS", 512),
			Timeout:   l.getEnvAsDuration("GROQ_TIMEOUT", 15*time.Second),
			Enabled:   getEnv("GROQ_API_KEY", "") != "",
		},
		Resolver: ResolverConfig{
			Endpoint:  getEnv("INTENT_ENDPOINT", DefaultEndpoint),
			Timeout:   l.getEnvAsDuration("INTENT_TIMEOUT", 20*time.Second),
			CacheSize: l.getEnvAsInt("INTENT_CACHE_SIZE", 1024),
			RedisAddr: getEnv("REDIS_ADDR", ""),
			CacheTTL:  l.getEnvAsDuration("INTENT_CACHE_TTL", 0),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}
	cfg.Warnings = l.warnings

	if cfg.Resolver.CacheSize <= 0 {
		return nil, fmt.Errorf("INTENT_CACHE_SIZE must be positive, got %d", cfg.Resolver.CacheSize)
	}

	return cfg, nil
}

// Addr returns the HTTP listen address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

type loader struct {
	warnings []string
}

func (l *loader) getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		l.warnings = append(l.warnings, fmt.Sprintf("invalid integer value for %s, using default %d", key, defaultValue))
		return defaultValue
	}
	return value
}

// getEnvAsDuration accepts Go durations ("20s") or bare seconds ("20")
func (l *loader) getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(valueStr); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(secs) * time.Second
	}
	l.warnings = append(l.warnings, fmt.Sprintf("invalid duration value for %s, using default %s", key, defaultValue))
	return defaultValue
}
