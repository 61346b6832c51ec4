package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Database drivers understood by DB_DRIVER.
const (
	DriverSQLite  = "sqlite"
	DriverSurreal = "surreal"
)

// Config holds all configuration for the application.
type Config struct {
	HTTPAddr string

	DBDriver   string
	SQLitePath string
	DBUrl      string
	DBNs       string
	DBDb       string
	DBUser     string
	DBPass     string

	// Seed file with sample products; empty uses the built-in catalogue.
	SeedFile string
	// Reply table for the assistant, reloaded on change; empty uses the
	// built-in table.
	RepliesFile string

	ChangeDelay         time.Duration
	TriggerCooldown     time.Duration
	ChatThinkingDelay   time.Duration
	ChatTokenInterval   time.Duration
	CheckoutDelay       time.Duration
	CheckoutFailureRate float64
	ChatRateLimit       float64
	RandomSeed          uint64
}

// New loads configuration from a .env file (when present) and the environment.
func New() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, relying on environment variables")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (*Config, error) {
	var errs []error
	dur := func(key string, def time.Duration) time.Duration {
		raw := os.Getenv(key)
		if raw == "" {
			return def
		}
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || ms < 0 {
			errs = append(errs, fmt.Errorf("%s: expected a non-negative number of milliseconds, got %q", key, raw))
			return def
		}
		return time.Duration(ms) * time.Millisecond
	}
	float := func(key string, def float64) float64 {
		raw := os.Getenv(key)
		if raw == "" {
			return def
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: expected a number, got %q", key, raw))
			return def
		}
		return v
	}

	cfg := &Config{
		HTTPAddr:   getEnv("HTTP_ADDR", ":8080"),
		DBDriver:   getEnv("DB_DRIVER", DriverSQLite),
		SQLitePath: getEnv("SQLITE_PATH", "storefront.db"),
		DBUrl:      os.Getenv("SURREAL_URL"),
		DBUser:     os.Getenv("SURREAL_USER"),
		DBPass:     os.Getenv("SURREAL_PASS"),
		DBNs:       os.Getenv("SURREAL_NS"),
		DBDb:       os.Getenv("SURREAL_DB"),
		SeedFile:   os.Getenv("SEED_FILE"),

		RepliesFile: os.Getenv("REPLIES_FILE"),

		ChangeDelay:         dur("CHANGE_DELAY_MS", 2000*time.Millisecond),
		TriggerCooldown:     dur("TRIGGER_COOLDOWN_MS", 10*time.Second),
		ChatThinkingDelay:   dur("CHAT_THINKING_MS", 2500*time.Millisecond),
		ChatTokenInterval:   dur("CHAT_TOKEN_INTERVAL_MS", 100*time.Millisecond),
		CheckoutDelay:       dur("CHECKOUT_DELAY_MS", 1500*time.Millisecond),
		CheckoutFailureRate: float("CHECKOUT_FAILURE_RATE", 0.2),
		ChatRateLimit:       float("CHAT_RATE_LIMIT", 5),
	}
	if raw := os.Getenv("RANDOM_SEED"); raw != "" {
		seed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("RANDOM_SEED: expected an unsigned integer, got %q", raw))
		}
		cfg.RandomSeed = seed
	}

	if cfg.CheckoutFailureRate < 0 || cfg.CheckoutFailureRate > 1 {
		errs = append(errs, fmt.Errorf("CHECKOUT_FAILURE_RATE must be within [0, 1], got %v", cfg.CheckoutFailureRate))
	}

	switch cfg.DBDriver {
	case DriverSQLite:
	case DriverSurreal:
		if cfg.DBUrl == "" || cfg.DBNs == "" || cfg.DBDb == "" {
			errs = append(errs, fmt.Errorf("required environment variables SURREAL_URL, SURREAL_NS, or SURREAL_DB are not set"))
		}
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER: unknown driver %q", cfg.DBDriver))
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
