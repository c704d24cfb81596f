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
	Environment string
	HTTPBind    string
	HTTPPort    int
	DBBackend   DatabaseBackend
	DBDSN       string

	JWTSigningKey string
	JWTTokenTTL   time.Duration

	// Scheduling loops
	EngineTickInterval   time.Duration // lifecycle status sweep cadence
	NotifierPollInterval time.Duration // live-update poll cadence
	StoreTimeout         time.Duration // per-call bound on store operations

	// Redis cache (optional)
	CacheEnabled  bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	CORSOrigins []string

	// News ticker feeds
	NewsFeeds []string

	DefaultChannelName string
	DefaultChannelSlug string
}

// Load reads environment variables, applies defaults, and validates the result.
func Load() (*Config, error) {
	cfg := &Config{
		Environment: getEnv("NZURITV_ENV", "development"),
		HTTPBind:    getEnv("NZURITV_HTTP_BIND", "0.0.0.0"),
		HTTPPort:    getEnvInt("NZURITV_HTTP_PORT", 8080),
		DBBackend:   DatabaseBackend(getEnv("NZURITV_DB_BACKEND", string(DatabaseMySQL))),
		DBDSN:       getEnv("NZURITV_DB_DSN", ""),

		JWTSigningKey: getEnv("NZURITV_JWT_SIGNING_KEY", ""),
		JWTTokenTTL:   time.Duration(getEnvInt("NZURITV_JWT_TTL_MINUTES", 1440)) * time.Minute,

		EngineTickInterval:   time.Duration(getEnvInt("NZURITV_ENGINE_TICK_SECONDS", 10)) * time.Second,
		NotifierPollInterval: time.Duration(getEnvInt("NZURITV_NOTIFIER_POLL_SECONDS", 5)) * time.Second,
		StoreTimeout:         time.Duration(getEnvInt("NZURITV_STORE_TIMEOUT_SECONDS", 5)) * time.Second,

		CacheEnabled:  getEnvBool("NZURITV_CACHE_ENABLED", false),
		RedisAddr:     getEnv("NZURITV_REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("NZURITV_REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("NZURITV_REDIS_DB", 0),

		CORSOrigins: getEnvList("NZURITV_CORS_ORIGINS", []string{"*"}),

		NewsFeeds: getEnvList("NZURITV_NEWS_FEEDS", []string{
			"https://www.mining.com/feed/",
			"https://www.miningweekly.com/rss-feeds/sections/africa",
		}),

		DefaultChannelName: getEnv("NZURITV_DEFAULT_CHANNEL_NAME", "Nzuri Digital TV"),
		DefaultChannelSlug: getEnv("NZURITV_DEFAULT_CHANNEL_SLUG", "nzuri-tv"),
	}

	if cfg.DBBackend != DatabasePostgres && cfg.DBBackend != DatabaseMySQL && cfg.DBBackend != DatabaseSQLite {
		return nil, fmt.Errorf("unsupported database backend %q", cfg.DBBackend)
	}

	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("NZURITV_DB_DSN must be provided")
	}

	if cfg.JWTSigningKey == "" {
		return nil, fmt.Errorf("NZURITV_JWT_SIGNING_KEY must be provided")
	}

	if strings.EqualFold(cfg.Environment, "production") && len(cfg.JWTSigningKey) < 32 {
		return nil, fmt.Errorf("NZURITV_JWT_SIGNING_KEY must be at least 32 bytes in production")
	}

	if cfg.EngineTickInterval <= 0 || cfg.NotifierPollInterval <= 0 {
		return nil, fmt.Errorf("tick and poll intervals must be positive")
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "true" || v == "1" || v == "yes" {
			return true
		}
		if v == "false" || v == "0" || v == "no" {
			return false
		}
	}
	return def
}

// getEnvList splits a comma separated environment value, trimming blanks.
func getEnvList(key string, def []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
