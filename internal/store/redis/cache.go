// Package redis caches candle history so repeated cycles over the same
// interval do not hammer the broker's market-data endpoint.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"signalbot/internal/model"
)

// Config configures the cache connection.
type Config struct {
	Addr     string // e.g. "localhost:6379"
	Password string
	DB       int
}

// Cache stores candle windows keyed by instrument and interval. Entries
// expire after one interval, so a hit is always from the current bar.
type Cache struct {
	client *goredis.Client
}

// New connects and pings the server.
func New(cfg Config) (*Cache, error) {
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
	return &Cache{client: client}, nil
}

func key(figi string, interval model.Interval) string {
	return "candles:" + figi + ":" + string(interval)
}

// Get returns the cached window for the instrument, or ok=false on a miss
// or a stale/undecodable entry.
func (c *Cache) Get(ctx context.Context, figi string, interval model.Interval) ([]model.Candle, bool) {
	raw, err := c.client.Get(ctx, key(figi, interval)).Bytes()
	if err == goredis.Nil {
		return nil, false
	}
	if err != nil {
		log.Printf("[redis] get %s: %v", key(figi, interval), err)
		return nil, false
	}

	var candles []model.Candle
	if err := json.Unmarshal(raw, &candles); err != nil {
		log.Printf("[redis] corrupt cache entry %s: %v", key(figi, interval), err)
		c.client.Del(ctx, key(figi, interval))
		return nil, false
	}
	return candles, true
}

// Put stores the window with a TTL of one interval. Write failures are
// logged, not returned: the cache is best effort.
func (c *Cache) Put(ctx context.Context, figi string, interval model.Interval, candles []model.Candle) {
	raw, err := json.Marshal(candles)
	if err != nil {
		log.Printf("[redis] marshal %s: %v", key(figi, interval), err)
		return
	}
	if err := c.client.Set(ctx, key(figi, interval), raw, interval.Duration()).Err(); err != nil {
		log.Printf("[redis] set %s: %v", key(figi, interval), err)
	}
}

// Ping verifies the connection, for health checks.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the client.
func (c *Cache) Close() error {
	return c.client.Close()
}
