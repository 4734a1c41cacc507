// Package internal holds application-level wiring: configuration, logging,
// and database migrations.
package internal

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config carries every runtime setting. Values come from the environment,
// with a .env file honored in development.
type Config struct {
	Env      string
	Port     int    `validate:"min=1,max=65535"`
	LogLevel string

	DatabaseUrl string `validate:"required"`

	// SMTP Configuration. Leaving host/user/pass/sender unset selects
	// simulate mode for local testing; a partial set is rejected at startup.
	SMTPHost    string
	SMTPPort    int `validate:"min=1,max=65535"`
	SMTPUser    string
	SMTPPass    string
	SMTPUseTLS  bool
	SenderEmail string `validate:"omitempty,email"`
	SenderName  string

	// Application base URL (for verification links in emails)
	BaseURL string `validate:"url"`

	// Global fallback recipients for unmapped locations
	DefaultPVAEmail    string `validate:"email"`
	DefaultZoningEmail string `validate:"email"`

	// Optional CSV overlay extending the jurisdiction tables at startup
	MappingsCSV string

	// Template and asset directories
	EmailTemplatesDir string
	PageTemplatesDir  string
	StaticDir         string

	// Metrics endpoint authentication.
	// If both are empty, the /metrics endpoint will be unprotected.
	MetricsUsername string
	MetricsPassword string
}

// NewConfig loads configuration from the environment.
func NewConfig() (*Config, error) {
	// Load .env file if it exists (ignored in production)
	_ = godotenv.Load()

	cfg := &Config{
		Env:      getEnv("ENV", "development"),
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "debug"),

		DatabaseUrl: os.Getenv("DATABASE_URL"),

		SMTPHost:    getEnv("SMTP_HOST", ""),
		SMTPPort:    getEnvInt("SMTP_PORT", 465),
		SMTPUser:    getEnv("SMTP_USER", ""),
		SMTPPass:    getEnv("SMTP_PASS", ""),
		SMTPUseTLS:  getEnvBool("SMTP_USE_TLS", true),
		SenderEmail: getEnv("SENDER_EMAIL", ""),
		SenderName:  getEnv("SENDER_NAME", ""),

		BaseURL: getEnv("APP_BASE_URL", "http://localhost:8080"),

		DefaultPVAEmail:    getEnv("DEFAULT_PVA_EMAIL", "pva@example.com"),
		DefaultZoningEmail: getEnv("DEFAULT_ZONING_EMAIL", "zoning@example.com"),

		MappingsCSV: getEnv("MAPPINGS_CSV", "mappings.csv"),

		EmailTemplatesDir: getEnv("EMAIL_TEMPLATES_DIR", "web/templates/email"),
		PageTemplatesDir:  getEnv("PAGE_TEMPLATES_DIR", "web/templates/pages"),
		StaticDir:         getEnv("STATIC_DIR", "web/static"),

		MetricsUsername: getEnv("METRICS_USERNAME", ""),
		MetricsPassword: getEnv("METRICS_PASSWORD", ""),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}
