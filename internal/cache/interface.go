package cache

import (
	"context"
	"errors"
	"time"
)

// Cache горячий кеш сериализованных подземелий.
//
// Использование:
//
//	c := NewMemoryCache(128)
//	err = c.Set(ctx, "key", data, 30*time.Second)
//	data, err := c.Get(ctx, "key")
type Cache interface {
	// Get возвращает значение или ErrCacheMiss
	Get(ctx context.Context, key string) ([]byte, error)

	// Set сохраняет значение. TTL = 0 означает TTL из конфигурации.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	Delete(ctx context.Context, key string) error

	Close() error

	// Metrics снимок счётчиков кеша
	Metrics() Metrics
}

// Metrics счётчики кеша
type Metrics struct {
	TotalRequests int64   `json:"total_requests"`
	CacheHits     int64   `json:"cache_hits"`
	CacheMisses   int64   `json:"cache_misses"`
	HitRatio      float64 `json:"hit_ratio"`
	AvgLatencyMs  float64 `json:"avg_latency_ms"`
	MaxLatencyMs  float64 `json:"max_latency_ms"`
}

// Config настройки кеша
type Config struct {
	RedisURL      string        `yaml:"redis_url"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	KeyPrefix     string        `yaml:"key_prefix"`
	DefaultTTL    time.Duration `yaml:"default_ttl"`
	MaxTTL        time.Duration `yaml:"max_ttl"`
	PoolSize      int           `yaml:"pool_size"`
	PoolTimeout   time.Duration `yaml:"pool_timeout"`
	// MemoryEntries ёмкость LRU, если Redis не настроен
	MemoryEntries int `yaml:"memory_entries"`
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.DefaultTTL == 0 {
		out.DefaultTTL = 10 * time.Minute
	}
	if out.MaxTTL == 0 {
		out.MaxTTL = time.Hour
	}
	if out.PoolSize == 0 {
		out.PoolSize = 10
	}
	if out.PoolTimeout == 0 {
		out.PoolTimeout = 30 * time.Second
	}
	if out.KeyPrefix == "" {
		out.KeyPrefix = "dungeon-gen:"
	}
	if out.MemoryEntries == 0 {
		out.MemoryEntries = 128
	}
	return out
}

// ErrCacheMiss ключ не найден или истёк
var ErrCacheMiss = errors.New("cache miss")

// IsCacheMiss сообщает, является ли ошибка промахом кеша
func IsCacheMiss(err error) bool {
	return errors.Is(err, ErrCacheMiss)
}
