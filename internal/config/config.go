// Package config reads runtime settings from the environment. A .env file in
// the working directory is loaded first when present.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreSQLite = "sqlite"
	StoreScylla = "scylla"
)

type Config struct {
	HTTPPort   string
	AppEnv     string
	APIKey     string
	CORSOrigin string

	StoreDriver    string
	SQLitePath     string
	ScyllaHost     string
	ScyllaKeyspace string

	RedisAddr      string
	RedisPassword  string
	LookupCacheTTL time.Duration

	GeminiAPIKey string
	GeminiModel  string
	AITimeout    time.Duration
	AIMaxRetries int

	// ScoringPolicyPath is optional; the built-in policy is used when empty.
	ScoringPolicyPath string
}

// Load reads .env (if any) and the process environment. The returned bool
// reports whether a .env file was found.
func Load() (*Config, bool, error) {
	found := godotenv.Load() == nil
	cfg, err := FromEnv()
	return cfg, found, err
}

// FromEnv builds a Config from the process environment alone.
func FromEnv() (*Config, error) {
	cfg := &Config{
		HTTPPort:          getEnv("HTTP_PORT", ":8080"),
		AppEnv:            getEnv("APP_ENV", "development"),
		APIKey:            os.Getenv("API_MASTER_KEY"),
		CORSOrigin:        getEnv("CORS_ORIGIN", "*"),
		StoreDriver:       strings.ToLower(getEnv("STORE_DRIVER", StoreSQLite)),
		SQLitePath:        getEnv("SQLITE_PATH", "./data/fraud_reports.db"),
		ScyllaHost:        getEnv("SCYLLA_HOST", "localhost"),
		ScyllaKeyspace:    getEnv("SCYLLA_KEYSPACE", "scam_registry"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		ScoringPolicyPath: os.Getenv("SCORING_POLICY_PATH"),
	}

	if !strings.Contains(cfg.HTTPPort, ":") {
		cfg.HTTPPort = ":" + cfg.HTTPPort
	}

	var err error
	if cfg.LookupCacheTTL, err = getDuration("LOOKUP_CACHE_TTL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.AITimeout, err = getDuration("AI_TIMEOUT", 8*time.Second); err != nil {
		return nil, err
	}
	if cfg.AIMaxRetries, err = getInt("AI_MAX_RETRIES", 2); err != nil {
		return nil, err
	}

	switch cfg.StoreDriver {
	case StoreSQLite, StoreScylla:
	default:
		return nil, fmt.Errorf("config: STORE_DRIVER must be %q or %q, got %q", StoreSQLite, StoreScylla, cfg.StoreDriver)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("config: %s must be a positive duration, got %q", key, v)
	}
	return d, nil
}

func getInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("config: %s must be a non-negative integer, got %q", key, v)
	}
	return n, nil
}
