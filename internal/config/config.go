// Package config loads runtime configuration from the environment, with an
// optional .env file for local development, and the feature flag file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the full runtime configuration.
type Config struct {
	HTTPHost string
	HTTPPort int

	DBDriver    string // "memory" or "postgres"
	DatabaseURL string

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	LogLevel  string
	LogFormat string

	TrialDays     int
	SweepSchedule string

	RateLimitRPS   int
	RateLimitBurst int
	CORSOrigins    []string
}

// Load reads configuration from the environment. A .env file, when present,
// seeds missing variables.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		HTTPHost:        getenv("HTTP_HOST", "0.0.0.0"),
		HTTPPort:        getenvInt("HTTP_PORT", 8080),
		DBDriver:        strings.ToLower(getenv("DB_DRIVER", "memory")),
		DatabaseURL:     getenv("DATABASE_URL", ""),
		JWTSecret:       getenv("JWT_SECRET", ""),
		AccessTokenTTL:  getenvDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL: getenvDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		LogFormat:       getenv("LOG_FORMAT", "json"),
		TrialDays:       getenvInt("TRIAL_DAYS", 14),
		SweepSchedule:   getenv("TRIAL_SWEEP_SCHEDULE", "0 2 * * *"),
		RateLimitRPS:    getenvInt("RATE_LIMIT_RPS", 20),
		RateLimitBurst:  getenvInt("RATE_LIMIT_BURST", 40),
		CORSOrigins:     splitList(getenv("CORS_ORIGINS", "*")),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	switch cfg.DBDriver {
	case "memory":
	case "postgres":
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL is required for DB_DRIVER=postgres")
		}
	default:
		return Config{}, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	return cfg, nil
}

// Addr renders the HTTP listen address.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.HTTPHost, c.HTTPPort)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
