/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package cache provides a Redis-based caching layer for frequently accessed data.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Default TTL values for different cache types
const (
	DefaultNowPlayingTTL  = 5 * time.Second
	DefaultTickerListTTL  = 30 * time.Second
	DefaultChannelListTTL = 5 * time.Minute
)

// Key prefixes for Redis cache
const (
	KeyNowPlaying  = "nzuritv:cache:now_playing:" // + channel_id
	KeyTickerList  = "nzuritv:cache:tickers"
	KeyChannelList = "nzuritv:cache:channels"
)

// Config contains cache configuration.
type Config struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// TTL overrides
	NowPlayingTTL  time.Duration
	TickerListTTL  time.Duration
	ChannelListTTL time.Duration

	// Fallback behavior
	DisableOnError bool // If true, disable caching on Redis errors
}

// DefaultConfig returns default cache configuration.
func DefaultConfig() Config {
	return Config{
		RedisAddr:      "localhost:6379",
		NowPlayingTTL:  DefaultNowPlayingTTL,
		TickerListTTL:  DefaultTickerListTTL,
		ChannelListTTL: DefaultChannelListTTL,
		DisableOnError: true,
	}
}

// Cache provides Redis-backed caching with graceful fallback. A nil *Cache
// is valid and always misses.
type Cache struct {
	client *redis.Client
	logger zerolog.Logger
	config Config

	mu       sync.RWMutex
	disabled bool // Circuit breaker state
}

// New creates a new cache instance.
func New(cfg Config, logger zerolog.Logger) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn().Err(err).Msg("Redis cache unavailable, running without caching")
		return &Cache{
			logger:   logger.With().Str("component", "cache").Logger(),
			config:   cfg,
			disabled: true,
		}, nil
	}

	logger.Info().Str("addr", cfg.RedisAddr).Msg("Redis cache initialized")

	return &Cache{
		client: client,
		logger: logger.With().Str("component", "cache").Logger(),
		config: cfg,
	}, nil
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// IsAvailable returns true if the cache is operational.
func (c *Cache) IsAvailable() bool {
	if c == nil {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.disabled && c.client != nil
}

// handleError handles Redis errors with circuit breaker logic.
func (c *Cache) handleError(err error, operation string) {
	if err == nil || err == redis.Nil {
		return
	}

	c.logger.Debug().Err(err).Str("operation", operation).Msg("cache operation failed")

	if c.config.DisableOnError {
		c.mu.Lock()
		c.disabled = true
		c.mu.Unlock()
		c.logger.Warn().Msg("disabling cache due to Redis error")
	}
}

// get retrieves a value from cache and unmarshals it.
func (c *Cache) get(ctx context.Context, key string, dest any) (bool, error) {
	if !c.IsAvailable() {
		return false, nil
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		c.handleError(err, "get")
		return false, err
	}

	if err := json.Unmarshal(data, dest); err != nil {
		c.logger.Debug().Err(err).Str("key", key).Msg("failed to unmarshal cached value")
		return false, nil
	}

	return true, nil
}

// set stores a value in cache with TTL.
func (c *Cache) set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if !c.IsAvailable() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value: %w", err)
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.handleError(err, "set")
		return err
	}

	return nil
}

// delete removes a key from cache.
func (c *Cache) delete(ctx context.Context, key string) error {
	if !c.IsAvailable() {
		return nil
	}

	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.handleError(err, "delete")
		return err
	}

	return nil
}

// GetJSON retrieves an arbitrary cached value into dest.
func (c *Cache) GetJSON(ctx context.Context, key string, dest any) bool {
	found, err := c.get(ctx, key, dest)
	return err == nil && found
}

// SetJSON stores an arbitrary value under key with ttl.
func (c *Cache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) {
	_ = c.set(ctx, key, value, ttl)
}

// InvalidateNowPlaying drops the cached now-playing view for a channel.
func (c *Cache) InvalidateNowPlaying(ctx context.Context, channelID string) {
	_ = c.delete(ctx, KeyNowPlaying+channelID)
}

// InvalidateTickers drops the cached ticker list.
func (c *Cache) InvalidateTickers(ctx context.Context) {
	_ = c.delete(ctx, KeyTickerList)
}

// InvalidateChannels drops the cached channel list.
func (c *Cache) InvalidateChannels(ctx context.Context) {
	_ = c.delete(ctx, KeyChannelList)
}

// NowPlayingTTL returns the configured now-playing TTL.
func (c *Cache) NowPlayingTTL() time.Duration {
	if c == nil || c.config.NowPlayingTTL <= 0 {
		return DefaultNowPlayingTTL
	}
	return c.config.NowPlayingTTL
}
