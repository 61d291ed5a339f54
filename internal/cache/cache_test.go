package cache

import (
	"context"
	"testing"
	"time"

	"github.com/annel0/dungeon-gen/internal/dungeon"
	"github.com/annel0/dungeon-gen/internal/storage"
	"github.com/annel0/dungeon-gen/internal/vec"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_GetSetExpire(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(2)
	now := time.Unix(1000, 0)
	c.now = func() time.Time { return now }

	_, err := c.Get(ctx, "a")
	assert.True(t, IsCacheMiss(err))

	require.NoError(t, c.Set(ctx, "a", []byte("1"), time.Minute))
	got, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), got)

	now = now.Add(2 * time.Minute)
	_, err = c.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrCacheMiss)

	m := c.Metrics()
	assert.Equal(t, int64(3), m.TotalRequests)
	assert.Equal(t, int64(1), m.CacheHits)
	assert.InDelta(t, 1.0/3, m.HitRatio, 1e-9)
}

func TestMemoryCache_EvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(2)

	require.NoError(t, c.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), 0))
	_, err := c.Get(ctx, "a")
	require.NoError(t, err)
	require.NoError(t, c.Set(ctx, "c", []byte("3"), 0))

	_, err = c.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Equal(t, 2, c.Len())
}

type countingStore struct {
	storage.LayoutStore
	loads int
}

func (s *countingStore) Load(ctx context.Context, id uuid.UUID) (*dungeon.Result, error) {
	s.loads++
	return s.LayoutStore.Load(ctx, id)
}

func TestCachedStore_ReadThrough(t *testing.T) {
	ctx := context.Background()
	cfg := dungeon.DefaultConfig()
	cfg.Seed = 5
	g, err := dungeon.NewGenerator(cfg, dungeon.DefaultCatalog())
	require.NoError(t, err)
	res, err := g.GenerateDungeon(ctx, vec.Vec3Float{X: 10, Y: 10, Z: 10}, 6)
	require.NoError(t, err)

	backing := &countingStore{LayoutStore: storage.NewMemoryStore()}
	require.NoError(t, backing.LayoutStore.Save(ctx, res))

	mem := NewMemoryCache(8)
	s := NewCachedStore(backing, mem, time.Minute)

	first, err := s.Load(ctx, res.ID)
	require.NoError(t, err)
	second, err := s.Load(ctx, res.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, backing.loads)
	assert.Equal(t, first.RoomLocations, second.RoomLocations)
	assert.Equal(t, res.Grid.Bytes(), second.Grid.Bytes())

	require.NoError(t, s.Delete(ctx, res.ID))
	_, err = s.Load(ctx, res.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
