package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DatabaseURL    string
	TelegramToken  string
	PrimaryAdminID int64 // chat ID of the admin that can manage other admins
	PingInterval   int   // seconds between monitoring cycles
	RequestTimeout int   // seconds before a probe is considered timed out
	RetentionDays  int   // how long check history is kept
	JWTSecret      string
	Environment    string
	Port           string
	AllowedOrigins []string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	pingInterval, err := getEnvInt("PING_INTERVAL", 60)
	if err != nil {
		return nil, err
	}

	requestTimeout, err := getEnvInt("REQUEST_TIMEOUT", 30)
	if err != nil {
		return nil, err
	}

	retentionDays, err := getEnvInt("RETENTION_DAYS", 7)
	if err != nil {
		return nil, err
	}

	primaryAdmin, err := getEnvInt64("PRIMARY_ADMIN_CHAT_ID", 0)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		TelegramToken:  os.Getenv("TELEGRAM_BOT_TOKEN"),
		PrimaryAdminID: primaryAdmin,
		PingInterval:   pingInterval,
		RequestTimeout: requestTimeout,
		RetentionDays:  retentionDays,
		JWTSecret:      getEnv("JWT_SECRET", "your-secret-key-change-me"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: []string{getEnv("ALLOWED_ORIGIN", "http://localhost:8081")},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks configuration values that would otherwise break the
// monitoring loop at runtime.
func (c *Config) Validate() error {
	if c.PingInterval <= 0 {
		return fmt.Errorf("ping interval must be a positive number of seconds, got %d", c.PingInterval)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be a positive number of seconds, got %d", c.RequestTimeout)
	}
	if c.RetentionDays <= 0 {
		return fmt.Errorf("retention must be a positive number of days, got %d", c.RetentionDays)
	}
	if c.Environment == "production" {
		if c.TelegramToken == "" {
			return fmt.Errorf("production environment detected, but TELEGRAM_BOT_TOKEN not set")
		}
		if c.JWTSecret == "your-secret-key-change-me" {
			return fmt.Errorf("production environment detected, but JWT_SECRET not set")
		}
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getEnvInt64(key string, defaultValue int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}
