// Package config handles application configuration from environment variables
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Port     string
	Env      string // "development", "staging", "production"
	LogLevel string
	LogFormat string // "text" or "json"

	// Database
	DatabaseURL string // PostgreSQL connection string (optional, uses in-memory if not set)

	// Dataset settings
	DatasetSize int   // customers generated at startup and on regenerate
	DatasetSeed int64 // seed for the synthetic generator

	// Classifier thresholds
	LowThreshold  int
	HighThreshold int

	// Security
	RateLimitRPS int

	// Observability
	OTLPEndpoint string // OTLP gRPC endpoint for traces (optional)
}

const (
	DefaultPort          = "8080"
	DefaultEnv           = "development"
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
	DefaultDatasetSize   = 1000
	DefaultDatasetSeed   = 42
	DefaultLowThreshold  = 33
	DefaultHighThreshold = 67
	DefaultRateLimit     = 100
)

// Load reads configuration from environment variables
// It loads .env file if present (for local development)
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not present)
	_ = godotenv.Load()

	cfg := &Config{
		Port:          getEnv("PORT", DefaultPort),
		Env:           getEnv("ENV", DefaultEnv),
		LogLevel:      getEnv("LOG_LEVEL", DefaultLogLevel),
		LogFormat:     getEnv("LOG_FORMAT", DefaultLogFormat),
		DatabaseURL:   os.Getenv("DATABASE_URL"), // Optional, uses in-memory if not set
		DatasetSize:   int(getEnvInt64("DATASET_SIZE", DefaultDatasetSize)),
		DatasetSeed:   getEnvInt64("DATASET_SEED", DefaultDatasetSeed),
		LowThreshold:  int(getEnvInt64("RISK_LOW_THRESHOLD", DefaultLowThreshold)),
		HighThreshold: int(getEnvInt64("RISK_HIGH_THRESHOLD", DefaultHighThreshold)),
		RateLimitRPS:  int(getEnvInt64("RATE_LIMIT_RPS", DefaultRateLimit)),
		OTLPEndpoint:  os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration is internally consistent
func (c *Config) Validate() error {
	if c.DatasetSize <= 0 {
		return fmt.Errorf("DATASET_SIZE must be positive, got %d", c.DatasetSize)
	}
	if c.DatasetSize > 1_000_000 {
		return fmt.Errorf("DATASET_SIZE too large (max 1000000), got %d", c.DatasetSize)
	}
	if c.LowThreshold < 0 || c.HighThreshold > 100 || c.LowThreshold >= c.HighThreshold {
		return fmt.Errorf("thresholds must satisfy 0 <= low < high <= 100, got low=%d high=%d",
			c.LowThreshold, c.HighThreshold)
	}
	if c.RateLimitRPS <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be positive, got %d", c.RateLimitRPS)
	}
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}
