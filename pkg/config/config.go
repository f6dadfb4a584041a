package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Auth          AuthConfig
	Observability ObservabilityConfig
	Gemini        GeminiConfig
	Reminders     RemindersConfig
	Archive       ArchiveConfig
}

// GeminiConfig configures the optional LLM structuring pipeline. An
// empty APIKey disables it; the local parser handles everything.
type GeminiConfig struct {
	APIKey string
	Models []string
}

type ServerConfig struct {
	Host               string
	Port               int
	BaseURL            string
	RateLimitPerSecond int
	RateLimitBurst     int
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// AuthConfig holds basic auth credentials for the API. PasswordHash,
// when set, is a bcrypt hash and takes precedence over Password.
type AuthConfig struct {
	Username     string
	Password     string
	PasswordHash string
}

type ObservabilityConfig struct {
	MetricsEnabled bool
	MetricsPort    int
}

// RemindersConfig configures the return-deadline reminder job.
type RemindersConfig struct {
	Enabled   bool
	Schedule  string
	To        string
	From      string
	LeadDays  int
	ResendKey string
}

// ArchiveConfig configures raw OCR text archival. An empty Path
// disables it.
type ArchiveConfig struct {
	Path string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:               getEnv("SERVER_HOST", "localhost"),
			Port:               getEnvAsInt("SERVER_PORT", 8080),
			BaseURL:            getEnv("BASE_URL", "http://localhost:8080"),
			RateLimitPerSecond: getEnvAsInt("SERVER_RATE_LIMIT_PER_SECOND", 100),
			RateLimitBurst:     getEnvAsInt("SERVER_RATE_LIMIT_BURST", 200),
		},
		Database: DatabaseConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvAsInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", "postgres"),
			Database: getEnv("POSTGRES_DB", "receiptwise-dev"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
		Auth: AuthConfig{
			Username:     getEnv("AUTH_USERNAME", ""),
			Password:     getEnv("AUTH_PASSWORD", ""),
			PasswordHash: getEnv("AUTH_PASSWORD_HASH", ""),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
			MetricsPort:    getEnvAsInt("METRICS_PORT", 9090),
		},
		Gemini: GeminiConfig{
			APIKey: getEnv("GEMINI_API_KEY", ""),
			Models: getEnvAsSlice("GEMINI_MODELS", nil),
		},
		Reminders: RemindersConfig{
			Enabled:   getEnvAsBool("REMINDERS_ENABLED", false),
			Schedule:  getEnv("REMINDERS_SCHEDULE", "0 8 * * *"),
			To:        getEnv("REMINDERS_TO", ""),
			From:      getEnv("REMINDERS_FROM", "reminders@receiptwise.dev"),
			LeadDays:  getEnvAsInt("REMINDERS_LEAD_DAYS", 3),
			ResendKey: getEnv("RESEND_API_KEY", ""),
		},
		Archive: ArchiveConfig{
			Path: getEnv("ARCHIVE_PATH", ""),
		},
	}

	if cfg.Reminders.Enabled && cfg.Reminders.To == "" {
		return nil, fmt.Errorf("REMINDERS_TO is required when reminders are enabled")
	}

	return cfg, nil
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
