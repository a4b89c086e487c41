package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config holds all configuration for the valuation server
// Only this package reads the environment
type Config struct {
	// Server
	Port     string
	Env      string // development, staging, production
	APIToken string

	// Storage
	Storage  string
	Database DatabaseConfig

	// Rounding
	RoundingMode  string
	RoundingScale int32

	// Reference-data services
	Reference ReferenceConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	ConnString string
	Host       string
	Port       string
	User       string
	Password   string
	Name       string
}

// ReferenceConfig holds the reference-data connector settings
type ReferenceConfig struct {
	DiamondAddr string  // gRPC target of the diamond pricing service
	GoldURL     string  // base URL of the gold pricing service
	Timeout     time.Duration
	RateLimit   float64 // requests per second, 0 disables limiting
}

// DSN returns the lib/pq connection string
func (d DatabaseConfig) DSN() string {
	if d.ConnString != "" {
		return d.ConnString
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Password, d.Name)
}

// Load reads configuration from environment variables and an optional .env file
func Load() (*Config, error) {
	_ = godotenv.Load()

	roundingScale, err := getEnvAsInt32("ROUNDING_SCALE", 2)
	if err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		APIToken: getEnv("API_TOKEN", "dev-token"),

		Storage: getEnv("STORAGE", StoragePostgres),
		Database: DatabaseConfig{
			ConnString: getEnv("DB_CONN_STR", ""),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnv("DB_PORT", "5432"),
			User:       getEnv("DB_USER", "postgres"),
			Password:   getEnv("DB_PASSWORD", "postgres"),
			Name:       getEnv("DB_NAME", "pawnvalue"),
		},

		RoundingMode:  getEnv("ROUNDING_MODE", "HALF_UP"),
		RoundingScale: roundingScale,

		Reference: ReferenceConfig{
			DiamondAddr: getEnv("DIAMOND_SERVICE_ADDR", "localhost:9090"),
			GoldURL:     getEnv("GOLD_SERVICE_URL", "http://localhost:9091"),
			Timeout:     getEnvAsDuration("REFERENCE_TIMEOUT", "10s"),
			RateLimit:   getEnvAsFloat("REFERENCE_RATE_LIMIT", 20),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Storage != StoragePostgres && c.Storage != StorageMemory {
		return fmt.Errorf("STORAGE must be one of: %s, %s", StoragePostgres, StorageMemory)
	}
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}
	if c.Env == "production" && c.APIToken == "dev-token" {
		return fmt.Errorf("API_TOKEN must be set in production")
	}
	if c.RoundingScale < 0 {
		return fmt.Errorf("ROUNDING_SCALE must not be negative")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt32 rejects values that are not integers or do not fit in 32 bits
func getEnvAsInt32(key string, defaultValue int32) (int32, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}

	value, err := strconv.ParseInt(valueStr, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%s must be a 32-bit integer: %w", key, err)
	}

	return int32(value), nil
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
