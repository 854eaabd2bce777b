package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds application configuration values loaded from environment variables.
type Config struct {
	DatabaseURL   string
	WebhookSecret string
	HTTPPort      string
	LogLevel      string
	OTLPEndpoint  string // Empty disables the OTLP metric exporter.
}

// LoadConfig loads configuration from environment variables.
// It looks for a .env file first, then checks actual environment variables.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file (useful for development)
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: Could not load .env file. Using environment variables only.", err)
		// Don't fail if .env is not present, might be in production
	}

	port := getEnv("HTTP_PORT", "8080")
	logLevel := getEnv("LOG_LEVEL", "INFO")
	otlpEndpoint := getEnv("OTLP_ENDPOINT", "")

	dbURL := getEnv("DATABASE_URL", "") // No default, should fail if not set
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set.")
	}

	// The webhook secret gates every ingestion request. Startup does not fail
	// when it is empty so the health endpoints stay reachable, but
	// /health/ready reports not_ready until it is configured.
	webhookSecret := getEnv("WEBHOOK_SECRET", "")
	if webhookSecret == "" {
		log.Println("WARN: WEBHOOK_SECRET is not set. All webhook requests will be rejected.")
	}

	cfg := &Config{
		DatabaseURL:   dbURL,
		WebhookSecret: webhookSecret,
		HTTPPort:      port,
		LogLevel:      logLevel,
		OTLPEndpoint:  otlpEndpoint,
	}

	log.Printf("Loaded config: Port=%s, DB_URL=***, WebhookSecret=***, LogLevel=%s", cfg.HTTPPort, cfg.LogLevel)

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
