package dungeon

import (
	"github.com/annel0/dungeon-gen/internal/grid"
	"github.com/annel0/dungeon-gen/internal/spawn"
	"github.com/annel0/dungeon-gen/internal/vec"
)

// generateCourtyard заполняет пустые ячейки первого надземного этажа
// комнатами двора. Только для поэтажных подземелий с включённым двором.
func (g *Generator) generateCourtyard() {
	if g.cfg.DebugMode || !g.cfg.FloorBased || !g.cfg.GroundFloorCourtyard {
		return
	}
	if len(g.catalog.Rooms) == 0 {
		g.log.Error("Нет шаблонов комнат для двора")
		return
	}

	u := g.cfg.Unit
	z := g.cfg.groundFloorZ()
	var group *Group

	for y := 2 * u; y < g.cfg.Size.Y-u; y += u {
		for x := 2 * u; x < g.cfg.Size.X-u; x += u {
			pos := vec.Vec3{X: x, Y: y, Z: z}
			if g.grid.Get(pos) != grid.Empty || !g.grid.Contains(pos) {
				continue
			}

			templateID := g.catalog.Rooms[g.pickIndex(len(g.catalog.Rooms), pos)]
			h := g.spawnStructure(pos.ToFloat(), 0, templateID, spawn.KindRoom, true)
			if h == nil {
				continue
			}
			if group == nil {
				group = g.newGroup()
			}
			room := g.newRoom(group, templateID, spawn.KindRoom, pos, 1, h)
			group.Rooms = append(group.Rooms, room)
			g.markRoom(room)
		}
	}
	if group != nil {
		g.log.Debug("Двор: %d комнат", len(group.Rooms))
	}
}

// generateCeilings заполняет пустые ячейки выше первого этажа потолками
func (g *Generator) generateCeilings() {
	if g.cfg.DebugMode || !g.cfg.FloorBased || !g.cfg.BuildingShell {
		return
	}
	templateID := first(g.catalog.Ceilings)
	if templateID == "" {
		g.log.Error("Нет шаблона потолка")
		return
	}

	u := g.cfg.Unit
	nfs := g.cfg.NormalFloorSize
	start := u * (g.cfg.GroundFloorIndex + 2)
	if start >= g.cfg.Size.Z {
		start = g.cfg.Size.Z - u
	}

	count := 0
	for z := start; z < nfs.Z; z += u {
		for y := 2 * u; y < nfs.Y; y += u {
			for x := 2 * u; x < nfs.X; x += u {
				pos := vec.Vec3{X: x, Y: y, Z: z}
				if !g.grid.InBoundsIgnoreOffset(pos) || g.grid.Get(pos) != grid.Empty {
					continue
				}
				if g.spawnStructure(pos.ToFloat(), 0, templateID, spawn.KindCeiling, false) != nil {
					count++
				}
			}
		}
	}
	g.log.Debug("Потолков: %d", count)
}

// generateWalls расставляет стены вокруг комнат и коридоров и двери в точках
// входа коридоров. Для каждой группы случайный лимит дверей из
// [1, MaxDoorCount]; дверь у лестницы ставится всегда.
func (g *Generator) generateWalls() {
	wallID := first(g.catalog.Walls)
	if wallID == "" {
		g.log.Error("Нет шаблонов стен")
		return
	}

	for _, group := range g.groups {
		counter := 0
		limit := g.rng.RandRange(1, g.cfg.MaxDoorCount)

		for _, room := range group.Rooms {
			g.roomWalls(room, wallID, &counter, limit)
		}
	}

	for _, pos := range g.hallways {
		for _, nb := range g.pf.GetNeighbors2D(pos) {
			st := g.grid.Get(nb)
			if st != grid.Empty && st != grid.Blocked {
				continue
			}
			wallPos := pos.ToFloat().Lerp(nb.ToFloat(), 0.5)
			g.spawnStructure(wallPos, yawOf(nb.Sub(pos)), wallID, spawn.KindWall, false)
		}
	}

	if g.cfg.FloorBased && g.cfg.BuildingShell {
		g.outerWalls(wallID)
	}
}

func (g *Generator) roomWalls(room *Room, wallID string, counter *int, limit int) {
	u := g.cfg.Unit
	pos := room.Anchor
	height := room.Height
	if height > 1 {
		height--
	}

	column := func(at vec.Vec3Float, yaw float64, from, to int) {
		for i := from; i < to; i++ {
			p := at.Add(vec.Vec3Float{Z: float64(i * u)})
			g.spawnStructure(p, yaw, wallID, spawn.KindWall, false)
		}
	}

	for _, nb := range g.pf.GetNeighbors2D(pos) {
		yaw := yawOf(nb.Sub(pos))
		wallPos := pos.ToFloat().Lerp(nb.ToFloat(), 0.5)
		nbState := g.grid.Get(nb)

		if !room.HasDoorPoint(wallPos) {
			if nbState != grid.Room && nbState != grid.Blocked {
				column(wallPos, yaw, 0, height)
			}
			continue
		}

		if *counter >= limit && !g.nearStairs(nb) {
			if nbState != grid.Room {
				column(wallPos, yaw, 0, height)
			}
		} else if g.placeDoor(wallPos, yaw) && height > 1 && nbState != grid.Room {
			column(wallPos, yaw, 1, height)
		}
		*counter++
	}
}

// nearStairs true, если ячейка или её планарный сосед: лестница
func (g *Generator) nearStairs(cell vec.Vec3) bool {
	if g.grid.Get(cell) == grid.Stairs {
		return true
	}
	for _, nb := range g.pf.GetNeighbors2D(cell) {
		if g.grid.Get(nb) == grid.Stairs {
			return true
		}
	}
	return false
}

// placeDoor ставит дверь, если в этой точке её ещё нет
func (g *Generator) placeDoor(at vec.Vec3Float, yaw float64) bool {
	doorID := first(g.catalog.Doors)
	if doorID == "" {
		return false
	}
	if _, ok := g.doorSet[at]; ok {
		return false
	}
	if g.spawnStructure(at, yaw, doorID, spawn.KindDoor, false) == nil {
		return false
	}
	g.doorSet[at] = struct{}{}
	g.doors = append(g.doors, Door{Location: at, Yaw: yaw})
	return true
}

// outerWalls стены по периметру первого этажа на всю высоту здания
func (g *Generator) outerWalls(wallID string) {
	u := g.cfg.Unit
	nfs := g.cfg.NormalFloorSize
	z := g.cfg.groundFloorZ()
	levels := (g.cfg.Size.Z - 2*u) / u

	for y := 0; y < g.cfg.Size.Y; y += u {
		for x := 0; x < g.cfg.Size.X; x += u {
			onEdge := (x == 2*u && y <= nfs.Y) || (y == 2*u && x <= nfs.X) ||
				(x == nfs.X && y <= nfs.Y) || (y == nfs.Y && x <= nfs.X)
			if !onEdge {
				continue
			}

			pos := vec.Vec3{X: x, Y: y, Z: z}
			for _, nb := range g.pf.GetNeighbors2D(pos) {
				yaw := yawOf(nb.Sub(pos))
				wallPos := pos.ToFloat().Lerp(nb.ToFloat(), 0.5)
				for i := 0; i < levels; i++ {
					c := nb.Add(vec.Vec3{Z: i * u})
					if !g.grid.Contains(c) || g.grid.Get(c) != grid.Empty {
						continue
					}
					g.spawnStructure(wallPos.Add(vec.Vec3Float{Z: float64(i * u)}), yaw, wallID, spawn.KindWall, false)
				}
			}
		}
	}
}
