package dungeon

import (
	"testing"

	"github.com/annel0/dungeon-gen/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floorConfig() Config {
	cfg := DefaultConfig()
	cfg.Unit = 5
	cfg.GroundFloorIndex = 2
	cfg.MinGroundFloorRoomCount = 3
	cfg.MinRoomCount = 4
	cfg.NormalFloorSize = vec.Vec3{X: 80, Y: 80, Z: 30}
	return cfg
}

func TestRoomCountCalculation_AdvancesAfterQuota(t *testing.T) {
	cfg := floorConfig()
	s := NewFloorState()
	basement := vec.Vec3{X: 20, Y: 20, Z: 5}

	for i := 0; i < 3; i++ {
		s = RoomCountCalculation(s, basement, &cfg)
		assert.Equal(t, 0, s.Current)
	}
	s = RoomCountCalculation(s, basement, &cfg)
	assert.Equal(t, 1, s.Current)
	assert.Equal(t, 4, s.Counts[0])
	assert.False(t, s.FreeGeneration)
}

func TestRoomCountCalculation_GroundFloorUsesOwnQuota(t *testing.T) {
	cfg := floorConfig()
	s := FloorState{Current: 2, Counts: []int{4, 4}}
	ground := vec.Vec3{X: 20, Y: 20, Z: 15}

	s = RoomCountCalculation(s, ground, &cfg)
	s = RoomCountCalculation(s, ground, &cfg)
	assert.Equal(t, 2, s.Current)
	assert.Equal(t, 2, s.GroundCount)

	s = RoomCountCalculation(s, ground, &cfg)
	assert.Equal(t, 3, s.Current)
	assert.Equal(t, 3, s.GroundCount)
	require.Len(t, s.Counts, 3)
	assert.Equal(t, 3, s.Counts[2])
}

func TestRoomCountCalculation_SwitchesToFreeMode(t *testing.T) {
	cfg := floorConfig()
	cfg.NormalFloorSize.Z = 10
	cfg.MinRoomCount = 1

	s := FloorState{Current: 1, Counts: []int{1, 0}}
	s = RoomCountCalculation(s, vec.Vec3{X: 20, Y: 20, Z: 10}, &cfg)
	assert.Equal(t, 1, s.Current)
	assert.True(t, s.FreeGeneration)
}

func TestRoomCountCalculation_DoesNotMutateInput(t *testing.T) {
	cfg := floorConfig()
	in := FloorState{Counts: []int{1}}
	out := RoomCountCalculation(in, vec.Vec3{X: 20, Y: 20, Z: 5}, &cfg)

	assert.Equal(t, []int{1}, in.Counts)
	assert.Equal(t, 2, out.Counts[0])
}
