/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Database backend selection.
type DatabaseBackend string

const (
	DatabasePostgres DatabaseBackend = "postgres"
	DatabaseMySQL    DatabaseBackend = "mysql"
	DatabaseSQLite   DatabaseBackend = "sqlite"
)

// Config covers process level configuration read from environment variables.
type Config struct {
	Environment   string
	HTTPBind      string
	HTTPPort      int
	DBBackend     DatabaseBackend
	DBDSN         string
	JWTSigningKey string

	// Catalog cache (disabled when RedisAddr is empty)
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	// Tracing configuration
	TracingEnabled    bool
	OTLPEndpoint      string
	TracingSampleRate float64

	// Poll the release feed and report newer versions on /healthz
	UpdateCheck bool

	// Recent log lines kept in memory for /api/v1/system/logs
	LogBufferSize int

	LegacyEnvWarnings []string
}

// Load reads environment variables, applies defaults, and validates the result.
func Load() (*Config, error) {
	cfg := &Config{
		Environment:   getEnvAny([]string{"MEALCLOCK_ENV", "MC_ENV"}, "development"),
		HTTPBind:      getEnvAny([]string{"MEALCLOCK_HTTP_BIND", "MC_HTTP_BIND"}, "127.0.0.1"),
		HTTPPort:      getEnvIntAny([]string{"MEALCLOCK_HTTP_PORT", "MC_HTTP_PORT"}, 8080),
		DBBackend:     DatabaseBackend(getEnvAny([]string{"MEALCLOCK_DB_BACKEND", "MC_DB_BACKEND"}, string(DatabaseSQLite))),
		DBDSN:         getEnvAny([]string{"MEALCLOCK_DB_DSN", "MC_DB_DSN"}, "file:mealclock.db?cache=shared"),
		JWTSigningKey: getEnvAny([]string{"MEALCLOCK_JWT_SIGNING_KEY", "MC_JWT_SIGNING_KEY"}, ""),

		RedisAddr:     getEnvAny([]string{"MEALCLOCK_REDIS_ADDR", "MC_REDIS_ADDR"}, ""),
		RedisPassword: getEnvAny([]string{"MEALCLOCK_REDIS_PASSWORD", "MC_REDIS_PASSWORD"}, ""),
		RedisDB:       getEnvIntAny([]string{"MEALCLOCK_REDIS_DB", "MC_REDIS_DB"}, 0),
		CacheTTL:      time.Duration(getEnvIntAny([]string{"MEALCLOCK_CACHE_TTL_MINUTES", "MC_CACHE_TTL_MINUTES"}, 60)) * time.Minute,

		TracingEnabled:    getEnvBoolAny([]string{"MEALCLOCK_TRACING_ENABLED", "MC_TRACING_ENABLED"}, false),
		OTLPEndpoint:      getEnvAny([]string{"MEALCLOCK_OTLP_ENDPOINT", "MC_OTLP_ENDPOINT"}, "localhost:4317"),
		TracingSampleRate: getEnvFloatAny([]string{"MEALCLOCK_TRACING_SAMPLE_RATE", "MC_TRACING_SAMPLE_RATE"}, 1.0),

		UpdateCheck:   getEnvBoolAny([]string{"MEALCLOCK_UPDATE_CHECK", "MC_UPDATE_CHECK"}, false),
		LogBufferSize: getEnvIntAny([]string{"MEALCLOCK_LOG_BUFFER_SIZE", "MC_LOG_BUFFER_SIZE"}, 5000),
	}

	if cfg.DBBackend != DatabasePostgres && cfg.DBBackend != DatabaseMySQL && cfg.DBBackend != DatabaseSQLite {
		return nil, fmt.Errorf("unsupported database backend %q", cfg.DBBackend)
	}

	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("MEALCLOCK_DB_DSN or MC_DB_DSN must not be empty")
	}

	if cfg.HTTPPort <= 0 || cfg.HTTPPort > 65535 {
		return nil, fmt.Errorf("invalid http port %d", cfg.HTTPPort)
	}

	if cfg.TracingSampleRate < 0 || cfg.TracingSampleRate > 1 {
		return nil, fmt.Errorf("tracing sample rate must be between 0 and 1, got %v", cfg.TracingSampleRate)
	}

	if cfg.IsProduction() && cfg.JWTSigningKey == "" {
		return nil, fmt.Errorf("MEALCLOCK_JWT_SIGNING_KEY or MC_JWT_SIGNING_KEY must be provided in production")
	}
	cfg.LegacyEnvWarnings = detectLegacyEnvWarnings()

	return cfg, nil
}

// IsProduction reports whether the process runs with production settings.
func (c *Config) IsProduction() bool {
	return c != nil && strings.EqualFold(c.Environment, "production")
}

// CacheEnabled reports whether a Redis address was configured.
func (c *Config) CacheEnabled() bool {
	return c != nil && c.RedisAddr != ""
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.HTTPBind, c.HTTPPort)
}

func detectLegacyEnvWarnings() []string {
	legacy := map[string]string{
		"ENVIRONMENT":     "use MEALCLOCK_ENV (or MC_ENV)",
		"JWT_SIGNING_KEY": "use MEALCLOCK_JWT_SIGNING_KEY (or MC_JWT_SIGNING_KEY)",
		"DATABASE_URL":    "use MEALCLOCK_DB_DSN (or MC_DB_DSN)",
		"REDIS_ADDR":      "use MEALCLOCK_REDIS_ADDR (or MC_REDIS_ADDR)",
		"TRACING_ENABLED": "use MEALCLOCK_TRACING_ENABLED (or MC_TRACING_ENABLED)",
		"OTLP_ENDPOINT":   "use MEALCLOCK_OTLP_ENDPOINT (or MC_OTLP_ENDPOINT)",
	}

	warnings := make([]string, 0, len(legacy))
	for key, recommendation := range legacy {
		if os.Getenv(key) != "" {
			warnings = append(warnings, fmt.Sprintf("legacy env key %s is set; %s", key, recommendation))
		}
	}
	return warnings
}

// getEnvAny returns the first non-empty environment variable value from keys, or def if none set.
func getEnvAny(keys []string, def string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return def
}

// getEnvIntAny returns the first set integer environment variable value from keys, or def.
func getEnvIntAny(keys []string, def int) int {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			if parsed, err := strconv.Atoi(v); err == nil {
				return parsed
			}
		}
	}
	return def
}

// getEnvBoolAny returns the first set boolean environment variable value from keys, or def.
func getEnvBoolAny(keys []string, def bool) bool {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			v = strings.ToLower(strings.TrimSpace(v))
			if v == "true" || v == "1" || v == "yes" {
				return true
			}
			if v == "false" || v == "0" || v == "no" {
				return false
			}
		}
	}
	return def
}

// getEnvFloatAny returns the first set float environment variable value from keys, or def.
func getEnvFloatAny(keys []string, def float64) float64 {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			if parsed, err := strconv.ParseFloat(v, 64); err == nil {
				return parsed
			}
		}
	}
	return def
}
