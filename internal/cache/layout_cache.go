package cache

import (
	"context"
	"time"

	"github.com/annel0/dungeon-gen/internal/dungeon"
	"github.com/annel0/dungeon-gen/internal/logging"
	"github.com/annel0/dungeon-gen/internal/storage"
	"github.com/google/uuid"
)

// CachedStore read-through кеш перед хранилищем подземелий.
// Запись идёт сначала в хранилище, затем в кеш; ошибки кеша только логируются.
type CachedStore struct {
	store storage.LayoutStore
	cache Cache
	ttl   time.Duration
}

// NewCachedStore оборачивает store кешем c
func NewCachedStore(store storage.LayoutStore, c Cache, ttl time.Duration) *CachedStore {
	return &CachedStore{store: store, cache: c, ttl: ttl}
}

func layoutKey(id uuid.UUID) string { return "layout:" + id.String() }

func (s *CachedStore) Save(ctx context.Context, res *dungeon.Result) error {
	if err := s.store.Save(ctx, res); err != nil {
		return err
	}
	s.fill(ctx, res)
	return nil
}

func (s *CachedStore) fill(ctx context.Context, res *dungeon.Result) {
	data, err := storage.Encode(res)
	if err != nil {
		logging.Warn("Кеш: не удалось закодировать %s: %v", res.ID, err)
		return
	}
	if err := s.cache.Set(ctx, layoutKey(res.ID), data, s.ttl); err != nil {
		logging.Warn("Кеш: не удалось записать %s: %v", res.ID, err)
	}
}

func (s *CachedStore) Load(ctx context.Context, id uuid.UUID) (*dungeon.Result, error) {
	data, err := s.cache.Get(ctx, layoutKey(id))
	if err == nil {
		res, derr := storage.Decode(data)
		if derr == nil {
			return res, nil
		}
		logging.Warn("Кеш: повреждённая запись %s: %v", id, derr)
		_ = s.cache.Delete(ctx, layoutKey(id))
	} else if !IsCacheMiss(err) {
		logging.Warn("Кеш недоступен: %v", err)
	}

	res, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	s.fill(ctx, res)
	return res, nil
}

func (s *CachedStore) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.cache.Delete(ctx, layoutKey(id)); err != nil {
		logging.Warn("Кеш: не удалось удалить %s: %v", id, err)
	}
	return s.store.Delete(ctx, id)
}

func (s *CachedStore) List(ctx context.Context) ([]uuid.UUID, error) {
	return s.store.List(ctx)
}

func (s *CachedStore) Close() error {
	cerr := s.cache.Close()
	if err := s.store.Close(); err != nil {
		return err
	}
	return cerr
}

var _ storage.LayoutStore = (*CachedStore)(nil)
