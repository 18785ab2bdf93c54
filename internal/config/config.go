package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Server
	Port string `yaml:"port"`

	// Backend API
	BackendBaseURL     string `yaml:"backend_base_url"`
	BackendTimeoutSecs int    `yaml:"backend_timeout_seconds"`

	// Audit store
	DBDriver string `yaml:"db_driver"` // "sqlite" | "postgres"
	DBPath   string `yaml:"db_path"`   // SQLite path
	DBUrl    string `yaml:"db_url"`    // Postgres DSN

	// User cache
	RedisAddr     string `yaml:"redis_addr"` // empty disables the cache
	CacheTTLSecs  int    `yaml:"cache_ttl_seconds"`
	RedisPassword string `yaml:"redis_password"`

	// Session registry
	SessionIdleMins int `yaml:"session_idle_minutes"`

	// Cookies
	CookieSecure bool `yaml:"cookie_secure"`

	// Security
	InternalSecret string   `yaml:"internal_secret"` // gates /internal endpoints
	AllowedOrigins []string `yaml:"allowed_origins"` // CORS allow list

	// Logging
	LogLevel string `yaml:"log_level"`
}

// Load builds the config from defaults, then an optional YAML file named by
// WEBGATE_CONFIG_FILE, then environment overrides. Env always wins so a
// deployment can pin single values without editing the file.
func Load() (*Config, error) {
	cfg := &Config{
		Port:               "8080",
		BackendBaseURL:     "http://localhost:8000",
		BackendTimeoutSecs: 10,
		DBDriver:           "sqlite",
		DBPath:             "./data/webgate.db",
		CacheTTLSecs:       30,
		SessionIdleMins:    30,
		CookieSecure:       true,
		LogLevel:           "info",
	}

	if path := os.Getenv("WEBGATE_CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.BackendBaseURL = getEnv("WEBGATE_BACKEND_URL", cfg.BackendBaseURL)
	cfg.BackendTimeoutSecs = getEnvInt("WEBGATE_BACKEND_TIMEOUT_SECONDS", cfg.BackendTimeoutSecs)
	cfg.DBDriver = getEnv("WEBGATE_DB_DRIVER", cfg.DBDriver)
	cfg.DBPath = getEnv("WEBGATE_DB_PATH", cfg.DBPath)
	cfg.DBUrl = getEnv("WEBGATE_DATABASE_URL", cfg.DBUrl)
	cfg.RedisAddr = getEnv("WEBGATE_REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = getEnv("WEBGATE_REDIS_PASSWORD", cfg.RedisPassword)
	cfg.CacheTTLSecs = getEnvInt("WEBGATE_CACHE_TTL_SECONDS", cfg.CacheTTLSecs)
	cfg.SessionIdleMins = getEnvInt("WEBGATE_SESSION_IDLE_MINUTES", cfg.SessionIdleMins)
	cfg.CookieSecure = getEnvBool("WEBGATE_COOKIE_SECURE", cfg.CookieSecure)
	cfg.InternalSecret = getEnv("WEBGATE_INTERNAL_SECRET", cfg.InternalSecret)
	if v := os.Getenv("WEBGATE_ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = splitCSV(v)
	}
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
