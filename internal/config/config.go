package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the application.
type Config struct {
	Port            string
	DBPath          string
	LogLevel        string
	LogFormat       string
	SessionSecret   []byte
	SessionLifetime time.Duration
}

// Load reads configuration from the environment, after loading an optional
// .env file. All values have defaults except the session secret: if
// FORTTASK_SESSION_SECRET is unset, a random ephemeral secret is generated
// and a warning is logged — every session is invalidated on restart.
func Load() (*Config, error) {
	// A missing .env file is fine; explicit env vars still apply.
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnvOrDefault("FORTTASK_PORT", "8080"),
		DBPath:          getEnvOrDefault("FORTTASK_DB_PATH", "forttask.db"),
		LogLevel:        getEnvOrDefault("FORTTASK_LOG_LEVEL", "info"),
		LogFormat:       getEnvOrDefault("FORTTASK_LOG_FORMAT", "text"),
		SessionLifetime: 24 * time.Hour,
	}

	if raw := os.Getenv("FORTTASK_SESSION_LIFETIME"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("parse FORTTASK_SESSION_LIFETIME: %w", err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("FORTTASK_SESSION_LIFETIME must be positive, got %s", d)
		}
		cfg.SessionLifetime = d
	}

	if secret := os.Getenv("FORTTASK_SESSION_SECRET"); secret != "" {
		cfg.SessionSecret = []byte(secret)
	} else {
		sec, err := randomSecret()
		if err != nil {
			return nil, fmt.Errorf("generate session secret: %w", err)
		}
		cfg.SessionSecret = sec
		slog.Warn("FORTTASK_SESSION_SECRET not set; using an ephemeral secret, sessions will not survive a restart")
	}

	return cfg, nil
}

func randomSecret() ([]byte, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	return []byte(hex.EncodeToString(buf)), nil
}

// getEnvOrDefault returns the environment variable value or a default if unset.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
