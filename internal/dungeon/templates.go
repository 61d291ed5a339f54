package dungeon

import (
	"errors"
	"fmt"
	"math"

	"github.com/annel0/dungeon-gen/internal/spawn"
	"github.com/annel0/dungeon-gen/internal/vec"
)

var (
	// ErrNoTemplates в каталоге нет шаблонов комнат для выбранного режима
	ErrNoTemplates = errors.New("dungeon: no room templates")
	// ErrUnknownTemplate ссылка на незарегистрированный шаблон
	ErrUnknownTemplate = spawn.ErrUnknownTemplate
)

// PremadeTemplate заранее подготовленная комната.
// Min/Max и InnerPaths заданы относительно точки привязки.
type PremadeTemplate struct {
	ID         string          `yaml:"id" json:"id"`
	Min        vec.Vec3Float   `yaml:"min" json:"min"`
	Max        vec.Vec3Float   `yaml:"max" json:"max"`
	InnerPaths []vec.Vec3Float `yaml:"inner_paths" json:"inner_paths"`
}

// Catalog набор шаблонов структур по идентификаторам
type Catalog struct {
	Entrance string            `yaml:"entrance" json:"entrance"`
	Rooms    []string          `yaml:"rooms" json:"rooms"`
	Premade  []PremadeTemplate `yaml:"premade" json:"premade"`
	PathTile string            `yaml:"path_tile" json:"path_tile"`
	Walls    []string          `yaml:"walls" json:"walls"`
	Doors    []string          `yaml:"doors" json:"doors"`
	Stairs   []string          `yaml:"stairs" json:"stairs"`
	Hallways []string          `yaml:"hallways" json:"hallways"`
	Ceilings []string          `yaml:"ceilings" json:"ceilings"`
}

// DefaultCatalog минимальный каталог для тестов и CLI
func DefaultCatalog() Catalog {
	return Catalog{
		Entrance: "entrance",
		Rooms:    []string{"room_stone", "room_wood"},
		Premade: []PremadeTemplate{
			{
				ID:  "premade_hall",
				Min: vec.Vec3Float{X: -5, Y: -5},
				Max: vec.Vec3Float{X: 5, Y: 5, Z: 10},
				InnerPaths: []vec.Vec3Float{
					{X: -5}, {}, {X: 5},
				},
			},
		},
		PathTile: "path_tile",
		Walls:    []string{"wall"},
		Doors:    []string{"door"},
		Stairs:   []string{"stairs"},
		Hallways: []string{"hallway"},
		Ceilings: []string{"ceiling"},
	}
}

// Validate проверяет наличие шаблонов комнат для выбранного режима
func (c *Catalog) Validate(procedural bool) error {
	if procedural && len(c.Rooms) == 0 {
		return fmt.Errorf("%w: procedural mode needs at least one room", ErrNoTemplates)
	}
	if !procedural && len(c.Premade) == 0 {
		return fmt.Errorf("%w: premade mode needs at least one premade room", ErrNoTemplates)
	}
	for _, p := range c.Premade {
		if p.ID == "" {
			return fmt.Errorf("%w: premade room without id", ErrUnknownTemplate)
		}
	}
	return nil
}

// SpawnTemplates переводит каталог в шаблоны сервиса размещения
func (c *Catalog) SpawnTemplates(unit int) []spawn.Template {
	u := float64(unit)
	cell := vec.Vec3Float{X: u / 2, Y: u / 2, Z: u / 2}
	thin := vec.Vec3Float{X: u / 2, Y: 0.5, Z: u / 2}

	var out []spawn.Template
	add := func(kind spawn.Kind, extent vec.Vec3Float, ids ...string) {
		for _, id := range ids {
			if id != "" {
				out = append(out, spawn.Template{ID: id, Kind: kind, Extent: extent})
			}
		}
	}

	add(spawn.KindEntrance, cell, c.Entrance)
	add(spawn.KindRoom, cell, c.Rooms...)
	add(spawn.KindPathTile, cell, c.PathTile)
	add(spawn.KindWall, thin, c.Walls...)
	add(spawn.KindDoor, thin, c.Doors...)
	add(spawn.KindStairs, vec.Vec3Float{X: u, Y: u / 2, Z: u / 2}, c.Stairs...)
	add(spawn.KindHallway, cell, c.Hallways...)
	add(spawn.KindCeiling, vec.Vec3Float{X: u / 2, Y: u / 2, Z: 0.5}, c.Ceilings...)

	for _, p := range c.Premade {
		add(spawn.KindPremade, vec.Vec3Float{
			X: math.Max(math.Abs(p.Min.X), math.Abs(p.Max.X)),
			Y: math.Max(math.Abs(p.Min.Y), math.Abs(p.Max.Y)),
			Z: math.Max(math.Abs(p.Min.Z), math.Abs(p.Max.Z)),
		}, p.ID)
	}
	return out
}

func first(ids []string) string {
	if len(ids) == 0 {
		return ""
	}
	return ids[0]
}
