// Package config loads the comment service settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Config holds the service settings. It is read once at startup and
// treated as immutable.
type Config struct {
	// Environment
	Env       string
	LogLevel  string
	LogFormat string

	// Server
	ServerPort      string
	ShutdownTimeout time.Duration

	// Storage
	Store       string
	DatabaseURL string

	// Comments
	CommentMaxBytes  int
	SanitizeMaxDepth int

	// Rate Limit
	RateLimitPerMinute int
	RateLimitBurst     int

	// CORS
	CORSAllowedOrigins []string
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads a .env file when one exists and then the environment.
// A missing DATABASE_URL is an error only for the postgres store.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Env:                getEnvString("ENV", "development"),
		LogLevel:           getEnvString("LOG_LEVEL", "info"),
		LogFormat:          getEnvString("LOG_FORMAT", "json"),
		ServerPort:         getEnvString("SERVER_PORT", "8080"),
		ShutdownTimeout:    getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		Store:              strings.ToLower(getEnvString("COMMENT_STORE", StoreMemory)),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		CommentMaxBytes:    getEnvInt("COMMENT_MAX_BYTES", 4096),
		SanitizeMaxDepth:   getEnvInt("SANITIZE_MAX_DEPTH", 0),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		RateLimitBurst:     getEnvInt("RATE_LIMIT_BURST", 10),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
	}

	switch cfg.Store {
	case StoreMemory:
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when COMMENT_STORE=%s", StorePostgres)
		}
	default:
		return nil, fmt.Errorf("unknown COMMENT_STORE %q", cfg.Store)
	}
	if cfg.CommentMaxBytes <= 0 {
		return nil, fmt.Errorf("COMMENT_MAX_BYTES must be positive, got %d", cfg.CommentMaxBytes)
	}

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func getEnvList(key string, defaultVal []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
