package dungeon

import (
	"github.com/annel0/dungeon-gen/internal/grid"
	"github.com/annel0/dungeon-gen/internal/spawn"
	"github.com/annel0/dungeon-gen/internal/vec"
)

func (g *Generator) generateRooms(origin vec.Vec3Float, budget int) {
	if !g.placeEntrance(origin) {
		return
	}

	if (g.cfg.ProceduralRooms && len(g.catalog.Rooms) == 0) ||
		(!g.cfg.ProceduralRooms && len(g.catalog.Premade) == 0) {
		g.log.Error("Список шаблонов комнат пуст")
		return
	}

	placed := 0
	for i := 1; i < budget; i++ {
		var ok bool
		if g.cfg.ProceduralRooms {
			ok = g.placeProcedural()
		} else {
			ok = g.placePremade()
		}
		if ok {
			placed++
		}
	}
	g.log.Debug("Размещено групп комнат: %d из %d попыток, этаж=%d, свободный режим=%v",
		placed, budget-1, g.floor.Current, g.floor.FreeGeneration)
}

// placeEntrance размещает вход без проверки коллизий как группу 0
func (g *Generator) placeEntrance(origin vec.Vec3Float) bool {
	h := g.spawnStructure(origin, 0, g.catalog.Entrance, spawn.KindEntrance, false)
	if h == nil {
		g.log.Error("Шаблон входа %q недоступен, генерация комнат остановлена", g.catalog.Entrance)
		return false
	}

	anchor := g.grid.Snap(origin)
	group := g.newGroup()
	room := g.newRoom(group, g.catalog.Entrance, spawn.KindEntrance, anchor, 1, h)
	group.Rooms = append(group.Rooms, room)
	g.markRoom(room)
	return true
}

func (g *Generator) newGroup() *Group {
	group := &Group{ID: len(g.groups)}
	g.groups = append(g.groups, group)
	return group
}

func (g *Generator) newRoom(group *Group, templateID string, kind spawn.Kind, anchor vec.Vec3, height int, h *spawn.Handle) *Room {
	r := &Room{
		ID:       g.nextRoomID,
		Group:    group.ID,
		Template: templateID,
		Kind:     kind,
		Anchor:   anchor,
		Height:   height,
		Bounds:   cellBounds(anchor, height, g.cfg.Unit),
		handle:   h,
	}
	g.nextRoomID++
	return r
}

// markRoom отмечает колонну ячеек комнаты как Room
func (g *Generator) markRoom(r *Room) {
	for k := 0; k < r.Height; k++ {
		cell := r.Anchor.Add(vec.Vec3{Z: k * g.cfg.Unit})
		if g.grid.Set(cell, grid.Room) {
			g.roomAt[cell] = r
		}
	}
}

// randomCenter случайная точка привязки: в полосе текущего этажа или,
// в свободном режиме, в любом месте объёма этажей
func (g *Generator) randomCenter() vec.Vec3 {
	u := g.cfg.Unit
	nfs := g.cfg.NormalFloorSize
	c := vec.Vec3{
		X: g.rng.IntervalStep(0, nfs.X, u),
		Y: g.rng.IntervalStep(0, nfs.Y, u),
	}
	if g.floor.FreeGeneration {
		c.Z = g.rng.IntervalStep(0, nfs.Z, u)
	} else {
		c.Z = u * (g.floor.Current + 1)
	}
	return c
}

// pickIndex выбирает шаблон из n: случайно или по шуму в точке at
func (g *Generator) pickIndex(n int, at vec.Vec3) int {
	if n <= 1 {
		return 0
	}
	if g.noise != nil {
		return g.noise.Index(float64(at.X), float64(at.Y), float64(at.Z), n)
	}
	return g.rng.Intn(n)
}

// footprint точки комнаты масштаба sx*sy вокруг центра; центр первый
func footprint(center vec.Vec3, sx, sy, unit int) []vec.Vec3 {
	locs := []vec.Vec3{center}
	for i := 1; i < sx; i++ {
		locs = append(locs, center.Add(vec.Vec3{X: -unit * i}))
	}
	for i := 1; i < sx; i++ {
		locs = append(locs, center.Add(vec.Vec3{X: unit * i}))
	}
	for j := 1; j < sy; j++ {
		locs = append(locs, center.Add(vec.Vec3{Y: -unit * j}))
	}
	for j := 1; j < sy; j++ {
		locs = append(locs, center.Add(vec.Vec3{Y: unit * j}))
	}
	for _, s := range [][2]int{{-1, -1}, {1, -1}, {-1, 1}, {1, 1}} {
		for i := 1; i < sx; i++ {
			for j := 1; j < sy; j++ {
				locs = append(locs, center.Add(vec.Vec3{X: s[0] * unit * i, Y: s[1] * unit * j}))
			}
		}
	}
	return locs
}

// outOfVolume true, если угловые ячейки lo и hi выходят за сетку с отступом
// или lo лежит ближе minXY к началу координат по X или Y
func (g *Generator) outOfVolume(lo, hi vec.Vec3, minXY int) bool {
	return lo.X < minXY || lo.Y < minXY || !g.grid.InBounds(lo) || !g.grid.InBounds(hi)
}

func (g *Generator) placeProcedural() bool {
	lo, hi := g.cfg.MinRoomScale, g.cfg.MaxRoomScale
	sx := g.rng.RandRange(lo.X, hi.X)
	sy := g.rng.RandRange(lo.Y, hi.Y)
	sz := g.rng.RandRange(lo.Z, hi.Z)
	center := g.randomCenter()
	return g.tryPlaceProcedural(center, sx, sy, sz)
}

// tryPlaceProcedural пытается разместить процедурную комнату масштаба
// sx*sy*sz (в клетках от центра) с центром center
func (g *Generator) tryPlaceProcedural(center vec.Vec3, sx, sy, sz int) bool {
	u := g.cfg.Unit
	height := 2*sz - 1
	locs := footprint(center, sx, sy, u)
	templateID := g.catalog.Rooms[g.pickIndex(len(g.catalog.Rooms), center)]

	reach := vec.Vec3{X: (sx - 1) * u, Y: (sy - 1) * u}
	lo := center.Sub(reach)
	hi := center.Add(reach).Add(vec.Vec3{Z: (height - 1) * u})
	total := Bounds{Min: cellBounds(lo, 1, u).Min, Max: cellBounds(hi, 1, u).Max}.Expand(g.cfg.RoomGap)

	for _, group := range g.groups {
		for _, r := range group.all() {
			if r.Bounds.Intersects(total) {
				g.metrics.PlacementRejected("overlap")
				g.log.Debug("Комната в %v пересекает комнату %d", center, r.ID)
				return false
			}
		}
	}
	if g.outOfVolume(lo, hi, u) {
		g.metrics.PlacementRejected("bounds")
		g.log.Debug("Комната в %v выходит за границы %v", center, g.cfg.Size)
		return false
	}

	group := g.newGroup()
	g.floor = RoomCountCalculation(g.floor, center, &g.cfg)

	for _, loc := range locs {
		h := g.spawnStructure(loc.ToFloat(), 0, templateID, spawn.KindRoom, true)
		if h == nil {
			continue
		}
		room := g.newRoom(group, templateID, spawn.KindRoom, loc, height, h)
		group.Rooms = append(group.Rooms, room)
		g.replicated = append(g.replicated, loc)
		g.markRoom(room)
	}
	return true
}

func (g *Generator) placePremade() bool {
	center := g.randomCenter()
	tmpl := g.catalog.Premade[g.pickIndex(len(g.catalog.Premade), center)]
	return g.tryPlacePremade(center, tmpl)
}

// tryPlacePremade пытается разместить заготовку tmpl с привязкой center.
// Ячейки коробки помечаются Blocked, плитки пути: Room.
func (g *Generator) tryPlacePremade(center vec.Vec3, tmpl PremadeTemplate) bool {
	u := g.cfg.Unit
	c := center.ToFloat()
	inner := Bounds{Min: c.Add(tmpl.Min), Max: c.Add(tmpl.Max)}
	box := inner.Expand(g.cfg.RoomGap)

	for _, b := range g.premadeBounds {
		if b.Intersects(box) {
			g.metrics.PlacementRejected("overlap")
			g.log.Debug("Заготовка %q в %v пересекает другую заготовку", tmpl.ID, center)
			return false
		}
	}
	if g.outOfVolume(g.grid.Snap(inner.Min), g.grid.Snap(inner.Max), 2*u) {
		g.metrics.PlacementRejected("bounds")
		g.log.Debug("Заготовка %q в %v выходит за границы %v", tmpl.ID, center, g.cfg.Size)
		return false
	}

	g.premadeBounds = append(g.premadeBounds, box)
	for _, p := range g.grid.PointsInBox(inner.Min, inner.Max) {
		g.grid.Set(p, grid.Blocked)
	}

	group := g.newGroup()
	g.floor = RoomCountCalculation(g.floor, center, &g.cfg)

	h := g.spawnStructure(c, 0, tmpl.ID, spawn.KindPremade, true)
	if h == nil {
		return true
	}
	height := int((tmpl.Max.Z - tmpl.Min.Z) / float64(u))
	if height < 1 {
		height = 1
	}
	main := g.newRoom(group, tmpl.ID, spawn.KindPremade, center, height, h)
	main.Bounds = box
	group.Premade = main
	g.replicated = append(g.replicated, center)

	for _, off := range tmpl.InnerPaths {
		pos := g.grid.Snap(c.Add(off))
		ph := g.spawnStructure(pos.ToFloat(), 0, g.catalog.PathTile, spawn.KindPathTile, false)
		if ph == nil {
			continue
		}
		tile := g.newRoom(group, g.catalog.PathTile, spawn.KindPathTile, pos, 1, ph)
		group.Rooms = append(group.Rooms, tile)
		g.markRoom(tile)
	}
	return true
}
