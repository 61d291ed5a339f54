package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/annel0/dungeon-gen/internal/logging"
	"github.com/go-redis/redis/v8"
)

// RedisCache Cache поверх Redis
type RedisCache struct {
	client *redis.Client
	config Config
	stats  counters
}

// NewRedisCache подключается к Redis и проверяет соединение
func NewRedisCache(cfg Config) (*RedisCache, error) {
	c := cfg.withDefaults()

	rdb := redis.NewClient(&redis.Options{
		Addr:         c.RedisURL,
		Password:     c.RedisPassword,
		DB:           c.RedisDB,
		PoolSize:     c.PoolSize,
		PoolTimeout:  c.PoolTimeout,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logging.Info("Redis cache initialized: %s (ttl: %v)", c.RedisURL, c.DefaultTTL)
	return &RedisCache{client: rdb, config: c}, nil
}

func (r *RedisCache) key(k string) string { return r.config.KeyPrefix + k }

func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	defer r.stats.latency(start)

	val, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		r.stats.miss()
		return nil, ErrCacheMiss
	}
	if err != nil {
		r.stats.miss()
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	r.stats.hit()
	return val, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	start := time.Now()
	defer r.stats.latency(start)

	if ttl == 0 {
		ttl = r.config.DefaultTTL
	}
	if ttl > r.config.MaxTTL {
		ttl = r.config.MaxTTL
	}

	if err := r.client.Set(ctx, r.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *RedisCache) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

func (r *RedisCache) Close() error {
	logging.Info("Redis cache closed")
	return r.client.Close()
}

func (r *RedisCache) Metrics() Metrics { return r.stats.snapshot() }

// counters атомарные счётчики, общие для реализаций
type counters struct {
	requests   int64
	hits       int64
	misses     int64
	latencySum int64 // нс
	latencyN   int64
	maxLatency int64
}

func (c *counters) hit() {
	atomic.AddInt64(&c.requests, 1)
	atomic.AddInt64(&c.hits, 1)
}

func (c *counters) miss() {
	atomic.AddInt64(&c.requests, 1)
	atomic.AddInt64(&c.misses, 1)
}

func (c *counters) latency(start time.Time) {
	d := time.Since(start).Nanoseconds()
	atomic.AddInt64(&c.latencySum, d)
	atomic.AddInt64(&c.latencyN, 1)
	for {
		cur := atomic.LoadInt64(&c.maxLatency)
		if d <= cur || atomic.CompareAndSwapInt64(&c.maxLatency, cur, d) {
			return
		}
	}
}

func (c *counters) snapshot() Metrics {
	m := Metrics{
		TotalRequests: atomic.LoadInt64(&c.requests),
		CacheHits:     atomic.LoadInt64(&c.hits),
		CacheMisses:   atomic.LoadInt64(&c.misses),
		MaxLatencyMs:  float64(atomic.LoadInt64(&c.maxLatency)) / 1e6,
	}
	if m.TotalRequests > 0 {
		m.HitRatio = float64(m.CacheHits) / float64(m.TotalRequests)
	}
	if n := atomic.LoadInt64(&c.latencyN); n > 0 {
		m.AvgLatencyMs = float64(atomic.LoadInt64(&c.latencySum)) / float64(n) / 1e6
	}
	return m
}
