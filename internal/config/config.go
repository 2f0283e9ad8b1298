package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// TwilioConfig holds the SMS delivery provider credentials. When any field is
// empty, OTP delivery falls back to the operational log.
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	FromPhone  string
}

// Config is the process configuration, read once at startup.
type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	// DataFile is the local snapshot document; always used, also as the
	// fallback when a remote backend is configured.
	DataFile string
	// DatabaseURL selects the SQL-compatible remote document store.
	DatabaseURL string
	// RedisURL selects the Redis remote document store when no DatabaseURL
	// is set.
	RedisURL string

	Twilio TwilioConfig
}

// LoadConfig reads configuration from the environment, loading a .env file
// first when present.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "3000"),
		Environment: getEnv("ENVIRONMENT", "development"),
		DataFile:    getEnv("DATA_FILE", "smartapp-data.json"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		Twilio: TwilioConfig{
			AccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
			AuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
			FromPhone:  os.Getenv("TWILIO_FROM_PHONE"),
		},
	}

	level, err := parseLogLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	return cfg, nil
}

// Configured reports whether all Twilio credentials are present.
func (t TwilioConfig) Configured() bool {
	return t.AccountSID != "" && t.AuthToken != "" && t.FromPhone != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("invalid LOG_LEVEL %q", s)
}
