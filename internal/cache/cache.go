// Package cache provides Redis-backed caching of analysis results with
// graceful degradation: when Redis is unreachable every operation reports a
// miss and callers recompute from the source series.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Creastein/idx-trading-assistant-sub000/internal/config"
)

// Key templates per cached result type.
const (
	keyScore      = "score:%s"
	keyConfluence = "confluence:%s:%s"
	keyBacktest   = "backtest:%s:%s"
)

// DefaultTTL ages out analysis results; candles arrive on bar close so
// anything older than a bar interval is stale anyway.
const DefaultTTL = 15 * time.Minute

// ErrMiss is returned on cache miss and on every degraded-mode lookup.
var ErrMiss = errors.New("cache miss")

// Cache wraps a Redis client. A nil Cache is valid and always misses, so
// callers never branch on whether caching is configured.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// New connects to Redis. A failed ping is not fatal: the service comes up in
// degraded mode and recovers when Redis does. Empty address disables caching.
func New(cfg config.RedisConfig, logger zerolog.Logger) *Cache {
	if cfg.Addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	c := &Cache{
		client: client,
		ttl:    DefaultTTL,
		logger: logger.With().Str("component", "cache").Logger(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("redis unreachable, starting degraded")
	}
	return c
}

// GetJSON loads and decodes one cached value into dst.
func (c *Cache) GetJSON(ctx context.Context, key string, dst interface{}) error {
	if c == nil || c.client == nil {
		return ErrMiss
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
		return ErrMiss
	}
	return json.Unmarshal(data, dst)
}

// SetJSON encodes and stores one value. Failures are logged, never returned:
// a cache write must not fail the request it was caching for.
func (c *Cache) SetJSON(ctx context.Context, key string, value interface{}) {
	if c == nil || c.client == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Error().Err(err).Str("key", key).Msg("cache encode failed")
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

// ScoreKey builds the composite-score cache key for a symbol.
func ScoreKey(symbol string) string {
	return fmt.Sprintf(keyScore, symbol)
}

// ConfluenceKey builds the confluence cache key for a symbol and mode.
func ConfluenceKey(symbol, mode string) string {
	return fmt.Sprintf(keyConfluence, symbol, mode)
}

// BacktestKey builds the backtest cache key for a symbol and strategy.
func BacktestKey(symbol, strategy string) string {
	return fmt.Sprintf(keyBacktest, symbol, strategy)
}

// Close releases the underlying connection pool.
func (c *Cache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
