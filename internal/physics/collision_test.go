package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func TestAABB_Intersects(t *testing.T) {
	a := NewAABB(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1})

	assert.True(t, a.Intersects(NewAABB(mgl64.Vec3{1.5, 0, 0}, mgl64.Vec3{1, 1, 1})))
	// касание гранями
	assert.False(t, a.Intersects(NewAABB(mgl64.Vec3{2, 0, 0}, mgl64.Vec3{1, 1, 1})))
	assert.False(t, a.Intersects(NewAABB(mgl64.Vec3{0, 0, 5}, mgl64.Vec3{1, 1, 1})))

	assert.True(t, a.Contains(mgl64.Vec3{1, 1, 1}))
	assert.False(t, a.Contains(mgl64.Vec3{1.01, 0, 0}))
}

func TestOrientedAABB_Yaw90(t *testing.T) {
	rot := mgl64.QuatRotate(mgl64.DegToRad(90), mgl64.Vec3{0, 0, 1})
	box := OrientedAABB(mgl64.Vec3{10, 10, 0}, rot, mgl64.Vec3{4, 1, 2})

	assert.InDelta(t, 9, box.Min[0], 1e-9)
	assert.InDelta(t, 11, box.Max[0], 1e-9)
	assert.InDelta(t, 6, box.Min[1], 1e-9)
	assert.InDelta(t, 14, box.Max[1], 1e-9)
	assert.InDelta(t, -2, box.Min[2], 1e-9)
}

func TestWorld_IsOccupied(t *testing.T) {
	w := NewWorld()
	ident := mgl64.QuatIdent()
	probe := mgl64.Vec3{1, 1, 1}

	assert.False(t, w.IsOccupied(mgl64.Vec3{10, 10, 10}, ident, probe))

	w.Add(BoxCollider{ID: "room-1", Box: NewAABB(mgl64.Vec3{10, 10, 10}, mgl64.Vec3{2.5, 2.5, 2.5})})
	assert.Equal(t, 1, w.Len())
	assert.True(t, w.IsOccupied(mgl64.Vec3{10, 10, 10}, ident, probe))
	assert.False(t, w.IsOccupied(mgl64.Vec3{20, 10, 10}, ident, probe))

	assert.True(t, w.Remove("room-1"))
	assert.False(t, w.Remove("room-1"))
	assert.False(t, w.IsOccupied(mgl64.Vec3{10, 10, 10}, ident, probe))

	w.Add(BoxCollider{ID: "a", Box: NewAABB(mgl64.Vec3{}, probe)})
	w.Clear()
	assert.Zero(t, w.Len())
}
