/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package cache provides a Redis-based read-through cache for catalog records.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/friendsincode/mealclock/internal/models"
)

// Default TTL values for different cache types
const (
	DefaultFoodTTL     = 1 * time.Hour
	DefaultFoodListTTL = 5 * time.Minute
)

// Key prefixes for Redis cache
const (
	KeyPrefix    = "mealclock:cache:"
	KeyFood      = KeyPrefix + "food:"      // + food_id
	KeyShortCode = KeyPrefix + "shortcode:" // + short_code, holds the food ID
	KeyFoodList  = KeyPrefix + "foods"
)

// Config contains cache configuration.
type Config struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	FoodTTL     time.Duration
	FoodListTTL time.Duration

	// Fallback behavior
	DisableOnError bool // If true, disable caching on Redis errors
}

// DefaultConfig returns default cache configuration.
func DefaultConfig() Config {
	return Config{
		FoodTTL:        DefaultFoodTTL,
		FoodListTTL:    DefaultFoodListTTL,
		DisableOnError: true,
	}
}

// Cache provides Redis-backed caching with graceful fallback. The zero value
// and a nil *Cache are both valid, permanently disabled caches.
type Cache struct {
	client *redis.Client
	logger zerolog.Logger
	config Config

	mu       sync.RWMutex
	disabled bool // Circuit breaker state
}

// New creates a new cache instance. An empty address or a failed ping yields
// a disabled cache rather than an error so callers fall through to the
// database.
func New(cfg Config, logger zerolog.Logger) (*Cache, error) {
	logger = logger.With().Str("component", "cache").Logger()

	if cfg.RedisAddr == "" {
		logger.Debug().Msg("no redis address configured, running without caching")
		return &Cache{logger: logger, config: cfg, disabled: true}, nil
	}

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

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn().Err(err).Msg("Redis cache unavailable, running without caching")
		_ = client.Close()
		return &Cache{logger: logger, config: cfg, disabled: true}, nil
	}

	logger.Info().Str("addr", cfg.RedisAddr).Msg("Redis cache initialized")

	return &Cache{client: client, logger: logger, config: cfg}, nil
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	if c != nil && c.client != nil {
		return c.client.Close()
	}
	return nil
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
	if err == nil || errors.Is(err, redis.Nil) {
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
	if errors.Is(err, redis.Nil) {
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

// delete removes keys from cache.
func (c *Cache) delete(ctx context.Context, keys ...string) error {
	if !c.IsAvailable() {
		return nil
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.handleError(err, "delete")
		return err
	}

	return nil
}

// deletePattern deletes all keys matching a pattern.
func (c *Cache) deletePattern(ctx context.Context, pattern string) error {
	if !c.IsAvailable() {
		return nil
	}

	// SCAN rather than KEYS so large keyspaces do not block Redis.
	var cursor uint64
	for {
		keys, nextCursor, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			c.handleError(err, "scan")
			return err
		}

		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				c.handleError(err, "delete_batch")
				return err
			}
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	return nil
}

// GetFood retrieves a cached catalog record by ID.
func (c *Cache) GetFood(ctx context.Context, foodID string) (*models.FoodRecord, bool) {
	var rec models.FoodRecord
	found, err := c.get(ctx, KeyFood+foodID, &rec)
	if err != nil || !found {
		return nil, false
	}
	c.logger.Debug().Str("food_id", foodID).Msg("food cache hit")
	return &rec, true
}

// GetFoodIDByShortCode resolves a short code through the cache.
func (c *Cache) GetFoodIDByShortCode(ctx context.Context, shortCode string) (string, bool) {
	var id string
	found, err := c.get(ctx, KeyShortCode+shortCode, &id)
	if err != nil || !found || id == "" {
		return "", false
	}
	return id, true
}

// SetFood caches a record under its ID and its short code.
func (c *Cache) SetFood(ctx context.Context, rec *models.FoodRecord) error {
	if !c.IsAvailable() {
		return nil
	}
	c.logger.Debug().Str("food_id", rec.ID).Msg("caching food")
	if err := c.set(ctx, KeyFood+rec.ID, rec, c.config.FoodTTL); err != nil {
		return err
	}
	return c.set(ctx, KeyShortCode+rec.ShortCode, rec.ID, c.config.FoodTTL)
}

// GetFoodList retrieves the cached catalog listing.
func (c *Cache) GetFoodList(ctx context.Context) ([]models.FoodRecord, bool) {
	var recs []models.FoodRecord
	found, err := c.get(ctx, KeyFoodList, &recs)
	if err != nil || !found {
		return nil, false
	}
	c.logger.Debug().Int("count", len(recs)).Msg("food list cache hit")
	return recs, true
}

// SetFoodList caches the catalog listing.
func (c *Cache) SetFoodList(ctx context.Context, recs []models.FoodRecord) error {
	if !c.IsAvailable() {
		return nil
	}
	c.logger.Debug().Int("count", len(recs)).Msg("caching food list")
	return c.set(ctx, KeyFoodList, recs, c.config.FoodListTTL)
}

// InvalidateFood removes a record and the listing from cache.
func (c *Cache) InvalidateFood(ctx context.Context, foodID, shortCode string) error {
	if !c.IsAvailable() {
		return nil
	}
	c.logger.Debug().Str("food_id", foodID).Msg("invalidating food cache")
	keys := []string{KeyFoodList}
	if foodID != "" {
		keys = append(keys, KeyFood+foodID)
	}
	if shortCode != "" {
		keys = append(keys, KeyShortCode+shortCode)
	}
	return c.delete(ctx, keys...)
}

// InvalidateFoodList removes the catalog listing from cache.
func (c *Cache) InvalidateFoodList(ctx context.Context) error {
	return c.delete(ctx, KeyFoodList)
}

// FlushAll removes all cached data (use sparingly).
func (c *Cache) FlushAll(ctx context.Context) error {
	if !c.IsAvailable() {
		return nil
	}
	c.logger.Warn().Msg("flushing all cache data")
	return c.deletePattern(ctx, KeyPrefix+"*")
}
