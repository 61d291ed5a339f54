package dungeon

import (
	"errors"
	"math"
	"sort"

	"github.com/annel0/dungeon-gen/internal/graph"
	"github.com/annel0/dungeon-gen/internal/grid"
	"github.com/annel0/dungeon-gen/internal/pathfinding"
	"github.com/annel0/dungeon-gen/internal/spawn"
	"github.com/annel0/dungeon-gen/internal/vec"
)

// Door размещённая дверь
type Door struct {
	Location vec.Vec3Float `json:"location"`
	Yaw      float64       `json:"yaw"`
}

// Staircase лестница, вырезанная при смене этажа
type Staircase struct {
	Location  vec.Vec3Float `json:"location"`
	Yaw       float64       `json:"yaw"`
	Up        bool          `json:"up"`
	Footprint [4]vec.Vec3   `json:"footprint"`
}

func (g *Generator) triangulate() {
	g.vertices = nil
	g.floorVertices = make(map[int][]vec.Vec3)

	if !g.cfg.FloorBased {
		for _, group := range g.groups {
			if a, ok := group.Anchor(); ok {
				g.vertices = append(g.vertices, a)
			}
		}
		return
	}

	// вход не участвует в поэтажных графах
	for _, group := range g.groups[min(1, len(g.groups)):] {
		if a, ok := group.Anchor(); ok {
			g.floorVertices[a.Z] = append(g.floorVertices[a.Z], a)
		}
	}

	floors := g.floorKeys()
	stairVerts := make(map[int][]vec.Vec3, len(floors))
	for _, z := range floors {
		verts := g.floorVertices[z]
		for i := 0; i < g.cfg.MaxStaircaseCount; i++ {
			stairVerts[z] = append(stairVerts[z], verts[g.rng.Intn(len(verts))])
		}
	}

	u := g.cfg.Unit
	for i, z := range floors {
		if i+1 < len(floors) {
			g.floorVertices[z] = append(g.floorVertices[z], stairVerts[floors[i+1]]...)
		} else {
			// точка на другой высоте, чтобы этаж не был компланарным
			g.floorVertices[z] = append(g.floorVertices[z], vec.Vec3{X: u, Y: u, Z: u})
		}
	}
}

func (g *Generator) floorKeys() []int {
	floors := make([]int, 0, len(g.floorVertices))
	for z := range g.floorVertices {
		floors = append(floors, z)
	}
	sort.Ints(floors)
	return floors
}

func (g *Generator) graphOptions() graph.Options {
	return graph.Options{LoopProbability: g.cfg.LoopProbability, TieBreak: g.cfg.tieBreak()}
}

func (g *Generator) findPossibleHallways() {
	g.selected = nil
	g.floorEdges = make(map[int][]graph.Edge)

	if !g.cfg.FloorBased {
		edges, err := graph.Build(g.vertices, g.graphOptions(), g.rng)
		if err != nil {
			g.log.Warn("Граф коридоров не построен: %v", err)
			return
		}
		g.selected = edges
		return
	}

	for _, z := range g.floorKeys() {
		edges, err := graph.Build(g.floorVertices[z], g.graphOptions(), g.rng)
		if errors.Is(err, graph.ErrNoTetrahedra) {
			g.log.Warn("Этаж z=%d: граф не построен, вершин %d", z, len(g.floorVertices[z]))
			continue
		}
		g.floorEdges[z] = edges
		g.selected = append(g.selected, edges...)
	}
}

func (g *Generator) generateHallways() {
	if !g.cfg.FloorBased {
		for _, e := range g.selected {
			g.routeEdge(e, true)
		}
		return
	}

	for _, z := range g.floorKeys() {
		stairs := 0
		for _, e := range g.floorEdges[z] {
			if e.U.Z == e.V.Z {
				g.routeEdge(e, false)
			} else if stairs < g.cfg.MaxStaircaseCount {
				g.routeEdge(e, true)
				stairs++
			}
		}
	}
}

// routeEdge ищет путь для ребра и вырезает его в сетке
func (g *Generator) routeEdge(e graph.Edge, canChangeFloors bool) []vec.Vec3 {
	path := g.pf.FindPath(e.U, e.V, g.costFunc(e.V), canChangeFloors)
	g.metrics.PathResult(len(path) > 0)
	if len(path) == 0 {
		g.log.Debug("Коридор %v -> %v не проложен", e.U, e.V)
		return nil
	}
	g.carve(path)
	return path
}

// costFunc функция стоимости перехода к цели goal по текущей сетке
func (g *Generator) costFunc(goal vec.Vec3) pathfinding.CostFunc {
	u := g.cfg.Unit
	return func(a, b vec.Vec3) pathfinding.PathInfo {
		var info pathfinding.PathInfo
		delta := b.Sub(a)
		dist := b.DistanceTo(goal)

		if delta.Z == 0 {
			info.Traversable = true
			info.Cost = dist
			switch g.grid.Get(b) {
			case grid.Room:
				info.Cost += g.cfg.RoomExtraCost
			case grid.Empty:
				info.Cost += g.cfg.EmptyExtraCost
			}
			return info
		}

		if !g.grid.Get(a).Walkable() || !g.grid.Get(b).Walkable() {
			return info
		}
		for _, c := range pathfinding.StairFootprint(a, delta, u) {
			if !g.grid.InBounds(c) || !g.grid.Get(c).Walkable() {
				return info
			}
		}

		info.Traversable = true
		info.IsStairs = true
		info.Cost = g.cfg.BaseCost + dist + g.cfg.ChangeFloorExtraCost
		return info
	}
}

// connector ячейка коридора или лестницы, к которой примыкает дверь
func connector(s grid.CellState) bool {
	return s == grid.Corridor || s == grid.Stairs
}

func yawOf(delta vec.Vec3) float64 {
	return math.Atan2(float64(delta.Y), float64(delta.X)) * 180 / math.Pi
}

// carve вырезает путь: коридоры в пустых ячейках, двери на границах
// комната/коридор, лестницы на вертикальных переходах
func (g *Generator) carve(path []vec.Vec3) {
	for i, cur := range path {
		if g.grid.Get(cur) == grid.Empty {
			g.grid.Set(cur, grid.Corridor)
		}
		if i == 0 {
			continue
		}

		pre := path[i-1]
		delta := cur.Sub(pre)
		door := pre.ToFloat().Lerp(cur.ToFloat(), 0.5)

		cs, ps := g.grid.Get(cur), g.grid.Get(pre)
		if connector(cs) && ps == grid.Room {
			g.connectRoom(pre, door)
		} else if cs == grid.Room && connector(ps) {
			g.connectRoom(cur, door)
		}

		if delta.Z != 0 {
			g.carveStairs(pre, delta, yawOf(delta.Horizontal()))
		}
	}

	for _, cur := range path {
		if g.grid.Get(cur) != grid.Corridor {
			continue
		}
		if _, ok := g.hallwaySet[cur]; ok {
			continue
		}
		g.hallwaySet[cur] = struct{}{}
		g.hallways = append(g.hallways, cur)

		if g.renderModels() && len(g.catalog.Hallways) > 0 {
			g.spawnStructure(cur.ToFloat(), 0, g.catalog.Hallways[0], spawn.KindHallway, false)
		}
	}

	if g.cfg.DebugMode && g.debug != nil {
		g.debug.Path(path)
	}
}

// connectRoom отмечает дверь на комнате, занимающей ячейку cell
func (g *Generator) connectRoom(cell vec.Vec3, door vec.Vec3Float) {
	room, ok := g.roomAt[cell]
	if !ok {
		return
	}
	room.AddDoorPoint(door)
	room.ConnectedToCorridor = true
}

func (g *Generator) carveStairs(pre, delta vec.Vec3, yaw float64) {
	u := g.cfg.Unit
	fp := pathfinding.StairFootprint(pre, delta, u)
	for _, c := range fp {
		g.grid.Set(c, grid.Stairs)
	}

	h := fp[0].Sub(pre)
	st := Staircase{Footprint: fp, Up: delta.Z > 0}
	if st.Up {
		st.Location = pre.Add(h).ToFloat()
		st.Yaw = yaw + 90
	} else {
		st.Location = pre.Add(h.Scale(2)).Add(vec.Vec3{Z: delta.Z}).ToFloat()
		st.Yaw = yaw - 90
	}
	g.stairs = append(g.stairs, st)

	if len(g.catalog.Stairs) > 0 && g.renderModels() {
		g.spawnStructure(st.Location, st.Yaw, g.catalog.Stairs[0], spawn.KindStairs, false)
	}
}
