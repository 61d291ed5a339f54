package dungeon

import (
	"github.com/annel0/dungeon-gen/internal/spawn"
	"github.com/annel0/dungeon-gen/internal/vec"
)

// Bounds осевая коробка в мировых координатах
type Bounds struct {
	Min vec.Vec3Float `json:"min"`
	Max vec.Vec3Float `json:"max"`
}

// Intersects строгое пересечение: касание гранями не считается
func (b Bounds) Intersects(o Bounds) bool {
	return b.Min.X < o.Max.X && b.Max.X > o.Min.X &&
		b.Min.Y < o.Max.Y && b.Max.Y > o.Min.Y &&
		b.Min.Z < o.Max.Z && b.Max.Z > o.Min.Z
}

// Expand расширяет коробку на d по всем осям
func (b Bounds) Expand(d float64) Bounds {
	return Bounds{
		Min: vec.Vec3Float{X: b.Min.X - d, Y: b.Min.Y - d, Z: b.Min.Z - d},
		Max: vec.Vec3Float{X: b.Max.X + d, Y: b.Max.Y + d, Z: b.Max.Z + d},
	}
}

// cellBounds коробка вертикальной колонны из height ячеек, начиная с anchor
func cellBounds(anchor vec.Vec3, height, unit int) Bounds {
	h := float64(unit) / 2
	a := anchor.ToFloat()
	return Bounds{
		Min: vec.Vec3Float{X: a.X - h, Y: a.Y - h, Z: a.Z - h},
		Max: vec.Vec3Float{X: a.X + h, Y: a.Y + h, Z: a.Z + float64((height-1)*unit) + h},
	}
}

// Room размещённая комната или её ячейка
type Room struct {
	ID                  int             `json:"id"`
	Group               int             `json:"group"`
	Template            string          `json:"template"`
	Kind                spawn.Kind      `json:"kind"`
	Anchor              vec.Vec3        `json:"anchor"`
	Height              int             `json:"height"`
	Bounds              Bounds          `json:"bounds"`
	DoorPoints          []vec.Vec3Float `json:"door_points,omitempty"`
	ConnectedToCorridor bool            `json:"connected"`

	handle *spawn.Handle
}

// AddDoorPoint добавляет точку двери, если её ещё нет
func (r *Room) AddDoorPoint(p vec.Vec3Float) bool {
	if r.HasDoorPoint(p) {
		return false
	}
	r.DoorPoints = append(r.DoorPoints, p)
	return true
}

func (r *Room) HasDoorPoint(p vec.Vec3Float) bool {
	for _, d := range r.DoorPoints {
		if d == p {
			return true
		}
	}
	return false
}

// Group группа комнат, созданная одной попыткой размещения.
// Для заготовки Premade хранит основную комнату, а Rooms: её плитки пути.
type Group struct {
	ID      int
	Premade *Room
	Rooms   []*Room
}

// Connected true, если хотя бы одна комната группы соединена коридором
func (g *Group) Connected() bool {
	for _, r := range g.Rooms {
		if r.ConnectedToCorridor {
			return true
		}
	}
	return false
}

// Anchor точка группы для построения графа
func (g *Group) Anchor() (vec.Vec3, bool) {
	if len(g.Rooms) > 0 {
		return g.Rooms[0].Anchor, true
	}
	if g.Premade != nil {
		return g.Premade.Anchor, true
	}
	return vec.Vec3{}, false
}

func (g *Group) all() []*Room {
	if g.Premade == nil {
		return g.Rooms
	}
	return append([]*Room{g.Premade}, g.Rooms...)
}
