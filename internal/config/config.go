package config

import (
	"fmt"
	"os"
)

const (
	defaultPort         = "8080"
	defaultIssuer       = "https://example.clerk.accounts.dev"
	defaultPushEndpoint = "https://exp.host/--/api/v2/push/send"
)

// Config holds the application configuration
type Config struct {
	DatabaseURL     string
	Port            string
	JWTSecret       string
	Issuer          string
	PushEndpoint    string
	PushAccessToken string
	DevMode         bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:         defaultPort,
		Issuer:       defaultIssuer,
		PushEndpoint: defaultPushEndpoint,
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.Port = port
	}
	if issuer := os.Getenv("IDENTITY_ISSUER"); issuer != "" {
		cfg.Issuer = issuer
	}
	if endpoint := os.Getenv("EXPO_PUSH_ENDPOINT"); endpoint != "" {
		cfg.PushEndpoint = endpoint
	}
	cfg.PushAccessToken = os.Getenv("EXPO_ACCESS_TOKEN")
	cfg.DevMode = os.Getenv("DEV_MODE") == "true"

	return cfg, nil
}
