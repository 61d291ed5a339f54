package grid

import (
	"testing"

	"github.com/annel0/dungeon-gen/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_InvalidSize(t *testing.T) {
	for _, size := range []vec.Vec3{
		{X: 0, Y: 10, Z: 10},
		{X: 10, Y: -1, Z: 10},
		{X: 10, Y: 10, Z: 0},
	} {
		g, err := New(size, 1, 1)
		assert.ErrorIs(t, err, ErrInvalidSize, "size=%v", size)
		assert.Nil(t, g)
	}

	d := Default()
	require.NotNil(t, d)
	assert.Equal(t, vec.Vec3{X: 2, Y: 2, Z: 2}, d.Dims())
}

func TestGrid_Dimensions(t *testing.T) {
	g, err := New(vec.Vec3{X: 30, Y: 30, Z: 10}, 5, 5)
	require.NoError(t, err)

	// ⌈(extent+1)/unit⌉ с целочисленным делением
	assert.Equal(t, vec.Vec3{X: 6, Y: 6, Z: 2}, g.Dims())
	assert.Equal(t, 72, g.Len())
}

func TestGrid_SetGetRoundTrip(t *testing.T) {
	g, err := New(vec.Vec3{X: 50, Y: 40, Z: 20}, 5, 5)
	require.NoError(t, err)

	states := []CellState{Empty, Blocked, Room, Corridor, Stairs}
	i := 0
	for x := 0; x < 50; x += 5 {
		for y := 0; y < 40; y += 5 {
			for z := 0; z < 20; z += 5 {
				pos := vec.Vec3{X: x, Y: y, Z: z}
				s := states[i%len(states)]
				require.True(t, g.Set(pos, s))
				assert.Equal(t, s, g.Get(pos), "pos=%v", pos)
				i++
			}
		}
	}
}

func TestGrid_OutOfRangeAccess(t *testing.T) {
	g, err := New(vec.Vec3{X: 10, Y: 10, Z: 10}, 1, 1)
	require.NoError(t, err)

	assert.False(t, g.Set(vec.Vec3{X: -1}, Room))
	assert.False(t, g.Set(vec.Vec3{X: 100}, Room))
	assert.Equal(t, Empty, g.Get(vec.Vec3{Z: 100}))
	assert.False(t, g.Contains(vec.Vec3{Y: -3}))
}

func TestLayout_InBounds(t *testing.T) {
	g, err := New(vec.Vec3{X: 10, Y: 12, Z: 8}, 2, 1)
	require.NoError(t, err)

	// строго внутри
	assert.True(t, g.InBounds(vec.Vec3{X: 2, Y: 2, Z: 2}))
	assert.True(t, g.InBounds(vec.Vec3{X: 7, Y: 9, Z: 5}))

	// на границе size-border и дальше: вне
	assert.False(t, g.InBounds(vec.Vec3{X: 8, Y: 5, Z: 3}))
	assert.False(t, g.InBounds(vec.Vec3{X: 5, Y: 10, Z: 3}))
	assert.False(t, g.InBounds(vec.Vec3{X: 5, Y: 5, Z: 6}))
	assert.False(t, g.InBounds(vec.Vec3{X: 1, Y: 5, Z: 3}))

	// без отступа
	assert.True(t, g.InBoundsIgnoreOffset(vec.Vec3{X: 0, Y: 0, Z: 0}))
	assert.True(t, g.InBoundsIgnoreOffset(vec.Vec3{X: 9, Y: 11, Z: 7}))
	assert.False(t, g.InBoundsIgnoreOffset(vec.Vec3{X: 10, Y: 0, Z: 0}))
	assert.False(t, g.InBoundsIgnoreOffset(vec.Vec3{X: 0, Y: -1, Z: 0}))
}

func TestLayout_IndexPositionRoundTrip(t *testing.T) {
	l, err := NewLayout(vec.Vec3{X: 20, Y: 15, Z: 10}, 5, 5)
	require.NoError(t, err)

	for i := 0; i < l.Len(); i++ {
		pos := l.Position(i)
		idx, ok := l.Index(pos)
		require.True(t, ok)
		assert.Equal(t, i, idx)
	}
}

func TestLayout_PointsInBox(t *testing.T) {
	l, err := NewLayout(vec.Vec3{X: 50, Y: 50, Z: 50}, 5, 5)
	require.NoError(t, err)

	pts := l.PointsInBox(vec.Vec3Float{X: 10, Y: 10, Z: 5}, vec.Vec3Float{X: 20, Y: 15, Z: 15})
	// X: 10,15,20; Y: 10,15; Z: 5,10 (верх не включается)
	assert.Len(t, pts, 3*2*2)
	assert.Contains(t, pts, vec.Vec3{X: 20, Y: 15, Z: 10})
	assert.NotContains(t, pts, vec.Vec3{X: 20, Y: 15, Z: 15})
}

func TestLayout_FloorOf(t *testing.T) {
	l, err := NewLayout(vec.Vec3{X: 50, Y: 50, Z: 50}, 5, 5)
	require.NoError(t, err)

	assert.Equal(t, 0, l.FloorOf(vec.Vec3Float{Z: 15}))
	assert.Equal(t, 1, l.FloorOf(vec.Vec3Float{Z: 19.2}))
	assert.Equal(t, -2, l.FloorOf(vec.Vec3Float{Z: 5}))
}

func TestCellState_String(t *testing.T) {
	for st := Empty; st <= Stairs; st++ {
		parsed, err := ParseCellState(st.String())
		require.NoError(t, err)
		assert.Equal(t, st, parsed)
	}
	_, err := ParseCellState("lava")
	assert.Error(t, err)
	assert.True(t, Corridor.Walkable())
	assert.False(t, Room.Walkable())
}
