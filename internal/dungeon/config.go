package dungeon

import (
	"errors"
	"fmt"

	"github.com/annel0/dungeon-gen/internal/graph"
	"github.com/annel0/dungeon-gen/internal/pathfinding"
	"github.com/annel0/dungeon-gen/internal/vec"
)

// ErrInvalidConfig некорректные параметры генерации
var ErrInvalidConfig = errors.New("dungeon: invalid config")

// Стратегии выбора шаблона комнаты
const (
	SelectRandom = "random"
	SelectNoise  = "noise"
)

// Config параметры генерации подземелья. Все размеры в мировых единицах,
// масштабы комнат: в клетках.
type Config struct {
	Unit            int      `yaml:"unit" json:"unit"`
	Size            vec.Vec3 `yaml:"size" json:"size"`
	NormalFloorSize vec.Vec3 `yaml:"normal_floor_size" json:"normal_floor_size"`

	ProceduralRooms bool     `yaml:"procedural_rooms" json:"procedural_rooms"`
	MinRoomScale    vec.Vec3 `yaml:"min_room_scale" json:"min_room_scale"`
	MaxRoomScale    vec.Vec3 `yaml:"max_room_scale" json:"max_room_scale"`
	// RoomGap зазор, добавляемый к коробке новой комнаты при проверке пересечений
	RoomGap         float64 `yaml:"room_gap" json:"room_gap"`
	LoopProbability float64 `yaml:"loop_probability" json:"loop_probability"`

	FloorBased              bool `yaml:"floor_based" json:"floor_based"`
	GroundFloorCourtyard    bool `yaml:"ground_floor_courtyard" json:"ground_floor_courtyard"`
	BuildingShell           bool `yaml:"building_shell" json:"building_shell"`
	GroundFloorIndex        int  `yaml:"ground_floor_index" json:"ground_floor_index"`
	MinGroundFloorRoomCount int  `yaml:"min_ground_floor_room_count" json:"min_ground_floor_room_count"`
	MinRoomCount            int  `yaml:"min_room_count" json:"min_room_count"`
	MaxDoorCount            int  `yaml:"max_door_count" json:"max_door_count"`
	MaxStaircaseCount       int  `yaml:"max_staircase_count" json:"max_staircase_count"`

	BaseCost             float64 `yaml:"base_cost" json:"base_cost"`
	RoomExtraCost        float64 `yaml:"room_extra_cost" json:"room_extra_cost"`
	EmptyExtraCost       float64 `yaml:"empty_extra_cost" json:"empty_extra_cost"`
	ChangeFloorExtraCost float64 `yaml:"change_floor_extra_cost" json:"change_floor_extra_cost"`
	StairRunUp           int     `yaml:"stair_run_up" json:"stair_run_up"`
	MSTTieBreak          string  `yaml:"mst_tie_break" json:"mst_tie_break"`

	TemplateSelection string  `yaml:"template_selection" json:"template_selection"`
	NoiseScale        float64 `yaml:"noise_scale" json:"noise_scale"`
	Seed              int64   `yaml:"seed" json:"seed"`

	DebugMode       bool `yaml:"debug_mode" json:"debug_mode"`
	DebugWithModels bool `yaml:"debug_with_models" json:"debug_with_models"`
}

// DefaultConfig значения по умолчанию
func DefaultConfig() Config {
	return Config{
		Unit:                    5,
		Size:                    vec.Vec3{X: 100, Y: 100, Z: 50},
		NormalFloorSize:         vec.Vec3{X: 80, Y: 80, Z: 30},
		ProceduralRooms:         true,
		MinRoomScale:            vec.Vec3{X: 1, Y: 1, Z: 1},
		MaxRoomScale:            vec.Vec3{X: 2, Y: 2, Z: 1},
		RoomGap:                 2.5,
		LoopProbability:         0.125,
		GroundFloorIndex:        2,
		MinGroundFloorRoomCount: 3,
		MinRoomCount:            4,
		MaxDoorCount:            2,
		MaxStaircaseCount:       1,
		BaseCost:                100,
		RoomExtraCost:           5,
		EmptyExtraCost:          1,
		ChangeFloorExtraCost:    200,
		StairRunUp:              pathfinding.DefaultStairRunUp,
		MSTTieBreak:             "first",
		TemplateSelection:       SelectRandom,
		NoiseScale:              0.05,
	}
}

// Validate проверяет параметры
func (c *Config) Validate() error {
	if c.Unit <= 0 {
		return fmt.Errorf("%w: unit must be positive, got %d", ErrInvalidConfig, c.Unit)
	}
	if c.Size.X <= 0 || c.Size.Y <= 0 || c.Size.Z <= 0 {
		return fmt.Errorf("%w: size must be positive, got %v", ErrInvalidConfig, c.Size)
	}
	if c.NormalFloorSize.X <= 0 || c.NormalFloorSize.Y <= 0 || c.NormalFloorSize.Z <= 0 {
		return fmt.Errorf("%w: normal floor size must be positive, got %v", ErrInvalidConfig, c.NormalFloorSize)
	}
	if c.MinRoomScale.X < 1 || c.MinRoomScale.Y < 1 || c.MinRoomScale.Z < 1 {
		return fmt.Errorf("%w: min room scale must be >= 1, got %v", ErrInvalidConfig, c.MinRoomScale)
	}
	if c.MaxRoomScale.X < c.MinRoomScale.X || c.MaxRoomScale.Y < c.MinRoomScale.Y || c.MaxRoomScale.Z < c.MinRoomScale.Z {
		return fmt.Errorf("%w: max room scale %v below min %v", ErrInvalidConfig, c.MaxRoomScale, c.MinRoomScale)
	}
	if c.LoopProbability < 0 || c.LoopProbability > 1 {
		return fmt.Errorf("%w: loop probability %v outside [0,1]", ErrInvalidConfig, c.LoopProbability)
	}
	if c.GroundFloorIndex < 0 {
		return fmt.Errorf("%w: ground floor index must be >= 0", ErrInvalidConfig)
	}
	if c.MaxDoorCount < 1 {
		return fmt.Errorf("%w: max door count must be >= 1", ErrInvalidConfig)
	}
	if c.StairRunUp < 2 {
		return fmt.Errorf("%w: stair run-up must be >= 2, got %d", ErrInvalidConfig, c.StairRunUp)
	}
	if _, err := graph.ParseTieBreak(c.MSTTieBreak); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	switch c.TemplateSelection {
	case "", SelectRandom, SelectNoise:
	default:
		return fmt.Errorf("%w: unknown template selection %q", ErrInvalidConfig, c.TemplateSelection)
	}
	return nil
}

func (c *Config) tieBreak() graph.TieBreak {
	tb, _ := graph.ParseTieBreak(c.MSTTieBreak)
	return tb
}

// groundFloorZ высота основания первого надземного этажа
func (c *Config) groundFloorZ() int {
	return c.Unit * (c.GroundFloorIndex + 1)
}
