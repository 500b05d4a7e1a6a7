// Package redis caches fetched chart batches so repeated backtest runs
// against the same market and interval don't refetch from the exchange.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"coinscalp/internal/model"

	goredis "github.com/go-redis/redis/v8"
)

const defaultChartTTL = 5 * time.Minute

// CacheConfig configures the chart cache.
type CacheConfig struct {
	Addr     string // Redis address, e.g. "localhost:6379"
	Password string
	DB       int
	TTL      time.Duration // default: 5m
}

// Cache stores candle batches keyed by market and interval.
type Cache struct {
	client *goredis.Client
	ttl    time.Duration
}

// Client returns the underlying Redis client for health checks.
func (c *Cache) Client() *goredis.Client { return c.client }

// New creates a chart cache and pings the server.
func New(cfg CacheConfig) (*Cache, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	log.Printf("[redis] connected to %s", cfg.Addr)
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = defaultChartTTL
	}
	return &Cache{client: client, ttl: ttl}, nil
}

func chartKey(market, interval string) string {
	return "chart:" + market + ":" + interval
}

// SetChart stores a candle batch under market:interval with the cache TTL.
func (c *Cache) SetChart(ctx context.Context, market, interval string, candles []model.Candle) error {
	data, err := json.Marshal(candles)
	if err != nil {
		return fmt.Errorf("marshal chart: %w", err)
	}
	if err := c.client.Set(ctx, chartKey(market, interval), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set chart: %w", err)
	}
	return nil
}

// GetChart loads a cached candle batch. Returns nil (no error) on a miss.
func (c *Cache) GetChart(ctx context.Context, market, interval string) ([]model.Candle, error) {
	data, err := c.client.Get(ctx, chartKey(market, interval)).Bytes()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get chart: %w", err)
	}

	var candles []model.Candle
	if err := json.Unmarshal(data, &candles); err != nil {
		return nil, fmt.Errorf("unmarshal chart: %w", err)
	}
	return candles, nil
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	return c.client.Close()
}
