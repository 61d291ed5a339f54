package dungeon

import "github.com/annel0/dungeon-gen/internal/vec"

// FloorState состояние прогрессии этажей при размещении комнат
type FloorState struct {
	Current        int   `json:"current"`
	FreeGeneration bool  `json:"free_generation"`
	Counts         []int `json:"counts"`
	GroundCount    int   `json:"ground_count"`
}

// NewFloorState начальное состояние: этаж 0, счётчики пусты
func NewFloorState() FloorState {
	return FloorState{Counts: []int{0}}
}

// RoomCountCalculation учитывает размещённую комнату с центром center и
// возвращает новое состояние. Исходное состояние не изменяется.
//
// Комната на первом надземном этаже увеличивает отдельный счётчик; остальные
// идут в счётчик текущего этажа. Когда счётчик достигает минимума, индекс
// этажа растёт. Если следующий этаж не помещается в NormalFloorSize.Z, индекс
// откатывается и включается свободная генерация.
func RoomCountCalculation(s FloorState, center vec.Vec3, cfg *Config) FloorState {
	next := FloorState{
		Current:        s.Current,
		FreeGeneration: s.FreeGeneration,
		GroundCount:    s.GroundCount,
		Counts:         make([]int, len(s.Counts)),
	}
	copy(next.Counts, s.Counts)

	need := next.Current
	if cfg.GroundFloorIndex > need {
		need = cfg.GroundFloorIndex
	}
	for len(next.Counts) <= need {
		next.Counts = append(next.Counts, 0)
	}

	advance := false
	if center.Z == cfg.groundFloorZ() {
		next.Counts[cfg.GroundFloorIndex]++
		next.GroundCount++
		advance = next.GroundCount >= cfg.MinGroundFloorRoomCount
	} else {
		next.Counts[next.Current]++
		advance = next.Counts[next.Current] >= cfg.MinRoomCount
	}

	if advance {
		next.Current++
		if cfg.Unit*(next.Current+1) > cfg.NormalFloorSize.Z {
			next.Current--
			next.FreeGeneration = true
		}
	}
	return next
}
