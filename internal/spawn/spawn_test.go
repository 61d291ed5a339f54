package spawn

import (
	"testing"

	"github.com/annel0/dungeon-gen/internal/physics"
	"github.com/annel0/dungeon-gen/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService() *Service {
	return NewService(physics.NewWorld(),
		Template{ID: "room", Kind: KindRoom, Extent: vec.Vec3Float{X: 2.5, Y: 2.5, Z: 2.5}},
		Template{ID: "wall", Kind: KindWall, Extent: vec.Vec3Float{X: 0.1, Y: 2.5, Z: 2.5}},
	)
}

func TestTransform_Yaw(t *testing.T) {
	for _, yaw := range []float64{0, 90, -90, 45, 180} {
		tr := NewTransform(vec.Vec3Float{X: 1, Y: 2, Z: 3}, yaw)
		assert.InDelta(t, yaw, tr.Yaw(), 1e-9, "yaw=%v", yaw)
		assert.Equal(t, vec.Vec3Float{X: 1, Y: 2, Z: 3}, tr.Position())
	}
	assert.InDelta(t, -90, NewTransform(vec.Vec3Float{}, 270).Yaw(), 1e-9)
}

func TestTrySpawn_UnknownTemplate(t *testing.T) {
	s := newService()
	h, err := s.TrySpawn(NewTransform(vec.Vec3Float{}, 0), "missing", false)
	assert.ErrorIs(t, err, ErrUnknownTemplate)
	assert.Nil(t, h)

	_, err = s.TrySpawn(NewTransform(vec.Vec3Float{}, 0), "", false)
	assert.ErrorIs(t, err, ErrUnknownTemplate)
}

func TestTrySpawn_Collision(t *testing.T) {
	s := newService()
	at := NewTransform(vec.Vec3Float{X: 10, Y: 10, Z: 10}, 0)

	first, err := s.TrySpawn(at, "room", true)
	require.NoError(t, err)
	assert.Equal(t, KindRoom, first.Kind)

	_, err = s.TrySpawn(at, "room", true)
	assert.ErrorIs(t, err, ErrOccupied)

	// без проверки коллизий размещение проходит
	second, err := s.TrySpawn(at, "room", false)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	_, err = s.TrySpawn(NewTransform(vec.Vec3Float{X: 30, Y: 10, Z: 10}, 0), "room", true)
	assert.NoError(t, err)
}

func TestDestroyAndRecords(t *testing.T) {
	s := newService()
	a, err := s.TrySpawn(NewTransform(vec.Vec3Float{X: 10}, 0), "room", false)
	require.NoError(t, err)
	b, err := s.TrySpawn(NewTransform(vec.Vec3Float{X: 20}, 90), "wall", false)
	require.NoError(t, err)

	assert.Equal(t, 1, s.Count(KindRoom))
	assert.Equal(t, 2, s.World().Len())

	assert.True(t, s.Destroy(a))
	assert.False(t, s.Destroy(a))
	assert.False(t, s.Destroy(nil))

	recs := s.Records()
	require.Len(t, recs, 1)
	assert.Equal(t, b.ID.String(), recs[0].ID)
	assert.Equal(t, KindWall, recs[0].Kind)
	assert.InDelta(t, 90, recs[0].Yaw, 1e-9)
	assert.Equal(t, 1, s.World().Len())

	s.Reset()
	assert.Empty(t, s.Records())
	assert.Zero(t, s.World().Len())
}
