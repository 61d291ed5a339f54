package dungeon

import (
	"time"

	"github.com/annel0/dungeon-gen/internal/graph"
	"github.com/annel0/dungeon-gen/internal/grid"
	"github.com/annel0/dungeon-gen/internal/spawn"
	"github.com/annel0/dungeon-gen/internal/vec"
	"github.com/google/uuid"
)

// Result итог генерации
type Result struct {
	ID            uuid.UUID      `json:"id"`
	Seed          int64          `json:"seed"`
	Unit          int            `json:"unit"`
	Size          vec.Vec3       `json:"size"`
	Grid          *grid.Grid     `json:"-"`
	Rooms         []*Room        `json:"rooms"`
	Doors         []Door         `json:"doors"`
	Staircases    []Staircase    `json:"staircases"`
	Hallways      []vec.Vec3     `json:"hallways"`
	Edges         []graph.Edge   `json:"edges"`
	RoomLocations []vec.Vec3     `json:"room_locations"`
	Structures    []spawn.Record `json:"structures"`
	Floor         FloorState     `json:"floor"`
	Generated     bool           `json:"generated"`
	Duration      time.Duration  `json:"duration"`
}

// FloorNumber номер этажа для мировой позиции в этом подземелье
func (r *Result) FloorNumber(location vec.Vec3Float) int {
	if r.Grid != nil {
		return r.Grid.FloorOf(location)
	}
	layout, err := grid.NewLayout(r.Size, r.Unit, r.Unit)
	if err != nil {
		return 0
	}
	return layout.FloorOf(location)
}

func (g *Generator) result(id uuid.UUID, d time.Duration) *Result {
	var rooms []*Room
	for _, group := range g.groups {
		for _, r := range group.all() {
			cp := *r
			cp.DoorPoints = append([]vec.Vec3Float(nil), r.DoorPoints...)
			rooms = append(rooms, &cp)
		}
	}

	floor := g.floor
	floor.Counts = append([]int(nil), g.floor.Counts...)

	return &Result{
		ID:            id,
		Seed:          g.rng.Seed(),
		Unit:          g.cfg.Unit,
		Size:          g.cfg.Size,
		Grid:          g.grid,
		Rooms:         rooms,
		Doors:         append([]Door(nil), g.doors...),
		Staircases:    append([]Staircase(nil), g.stairs...),
		Hallways:      append([]vec.Vec3(nil), g.hallways...),
		Edges:         append([]graph.Edge(nil), g.selected...),
		RoomLocations: append([]vec.Vec3(nil), g.replicated...),
		Structures:    g.spawner.Records(),
		Floor:         floor,
		Generated:     g.generated,
		Duration:      d,
	}
}

// Snapshot сериализуемая форма результата вместе с ячейками сетки
type Snapshot struct {
	Result
	Cells []byte `json:"cells"`
}

// Snapshot готовит результат к сохранению
func (r *Result) Snapshot() Snapshot {
	s := Snapshot{Result: *r}
	if r.Grid != nil {
		s.Cells = r.Grid.Bytes()
	}
	return s
}

// Restore восстанавливает результат вместе с сеткой
func (s Snapshot) Restore() (*Result, error) {
	res := s.Result
	if len(s.Cells) > 0 {
		g, err := grid.FromBytes(res.Size, res.Unit, res.Unit, s.Cells)
		if err != nil {
			return nil, err
		}
		res.Grid = g
	}
	return &res, nil
}
