package cache

import (
	"context"
	"sync"
	"time"

	lru "github.com/zyedidia/generic/cache"
)

type entry struct {
	value   []byte
	expires time.Time
}

// MemoryCache LRU-кеш в процессе. Используется, когда Redis не настроен.
type MemoryCache struct {
	mu    sync.Mutex
	lru   *lru.Cache[string, entry]
	ttl   time.Duration
	now   func() time.Time
	stats counters
}

// NewMemoryCache создаёт кеш на capacity записей
func NewMemoryCache(capacity int) *MemoryCache {
	cfg := (&Config{MemoryEntries: capacity}).withDefaults()
	return &MemoryCache{
		lru: lru.New[string, entry](cfg.MemoryEntries),
		ttl: cfg.DefaultTTL,
		now: time.Now,
	}
}

func (m *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	defer m.stats.latency(start)

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.lru.Get(key)
	if !ok {
		m.stats.miss()
		return nil, ErrCacheMiss
	}
	if !e.expires.IsZero() && m.now().After(e.expires) {
		m.lru.Remove(key)
		m.stats.miss()
		return nil, ErrCacheMiss
	}
	m.stats.hit()
	return e.value, nil
}

func (m *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = m.ttl
	}
	m.mu.Lock()
	m.lru.Put(key, entry{value: append([]byte(nil), value...), expires: m.now().Add(ttl)})
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	m.lru.Remove(key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache) Close() error { return nil }

func (m *MemoryCache) Metrics() Metrics { return m.stats.snapshot() }

// Len число записей, включая истёкшие
func (m *MemoryCache) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lru.Size()
}
