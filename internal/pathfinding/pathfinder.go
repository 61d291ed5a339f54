package pathfinding

import (
	"fmt"
	"math"

	"github.com/annel0/dungeon-gen/internal/grid"
	"github.com/annel0/dungeon-gen/internal/logging"
	"github.com/annel0/dungeon-gen/internal/vec"
	"github.com/zyedidia/generic/heap"
	"github.com/zyedidia/generic/mapset"
)

// DefaultStairRunUp горизонтальный разбег лестницы в клетках
const DefaultStairRunUp = 3

// PathInfo результат функции стоимости для перехода между соседними клетками
type PathInfo struct {
	Traversable bool
	Cost        float64
	IsStairs    bool
}

// CostFunc оценивает переход from -> to. Цель пути замыкается вызывающим кодом.
type CostFunc func(from, to vec.Vec3) PathInfo

type openNode struct {
	idx  int
	cost float64
}

// Pathfinder поиск пути по решётке с равномерной стоимостью (Дейкстра).
// Рабочее состояние хранится в параллельных массивах, индексированных
// линейным индексом клетки. Не потокобезопасен.
type Pathfinder struct {
	layout grid.Layout
	runUp  int

	cost   []float64
	parent []int
	closed []bool
	prev   []mapset.Set[vec.Vec3]
}

// New создаёт поисковик для объёма size с шагом unit. Отступ от края равен unit.
func New(size vec.Vec3, unit, runUp int) (*Pathfinder, error) {
	layout, err := grid.NewLayout(size, unit, unit)
	if err != nil {
		return nil, err
	}
	if runUp < 2 {
		return nil, fmt.Errorf("stair run-up must be at least 2 cells, got %d", runUp)
	}

	n := layout.Len()
	return &Pathfinder{
		layout: layout,
		runUp:  runUp,
		cost:   make([]float64, n),
		parent: make([]int, n),
		closed: make([]bool, n),
		prev:   make([]mapset.Set[vec.Vec3], n),
	}, nil
}

// Layout геометрия рабочей сетки
func (p *Pathfinder) Layout() grid.Layout { return p.layout }

// Directions возвращает набор смещений: 4 планарных и, если разрешена смена
// этажа, ещё 8 наклонных (runUp клеток по горизонтали и 1 по вертикали).
func Directions(unit, runUp int, canChangeFloors bool) []vec.Vec3 {
	dirs := []vec.Vec3{
		{X: unit}, {X: -unit}, {Y: unit}, {Y: -unit},
	}
	if !canChangeFloors {
		return dirs
	}

	r := runUp * unit
	for _, dz := range []int{unit, -unit} {
		dirs = append(dirs,
			vec.Vec3{X: r, Z: dz},
			vec.Vec3{X: -r, Z: dz},
			vec.Vec3{Y: r, Z: dz},
			vec.Vec3{Y: -r, Z: dz},
		)
	}
	return dirs
}

// StairFootprint возвращает 4 клетки лестницы для перехода from -> from+dir:
// две клетки разбега и две над (под) ними.
func StairFootprint(from, dir vec.Vec3, unit int) [4]vec.Vec3 {
	h := vec.Vec3{
		X: vec.Clamp(dir.X, -unit, unit),
		Y: vec.Clamp(dir.Y, -unit, unit),
	}
	v := vec.Vec3{Z: dir.Z}

	return [4]vec.Vec3{
		from.Add(h),
		from.Add(h.Scale(2)),
		from.Add(h).Add(v),
		from.Add(h.Scale(2)).Add(v),
	}
}

func (p *Pathfinder) reset() {
	for i := range p.cost {
		p.cost[i] = math.Inf(1)
		p.parent[i] = -1
		p.closed[i] = false
		p.prev[i] = mapset.Set[vec.Vec3]{}
	}
}

// FindPath ищет путь от start до end. Возвращает пустой путь, если start == end,
// если одна из точек вне сетки или если путь не найден.
func (p *Pathfinder) FindPath(start, end vec.Vec3, costFn CostFunc, canChangeFloors bool) []vec.Vec3 {
	if start == end {
		return nil
	}

	startIdx, ok := p.layout.Index(start)
	if !ok {
		return nil
	}
	if _, ok := p.layout.Index(end); !ok {
		return nil
	}

	p.reset()
	unit := p.layout.Unit()
	dirs := Directions(unit, p.runUp, canChangeFloors)

	open := heap.New(func(a, b openNode) bool { return a.cost < b.cost })
	p.cost[startIdx] = 0
	p.prev[startIdx] = mapset.New[vec.Vec3]()
	open.Push(openNode{idx: startIdx, cost: 0})

	for open.Size() > 0 {
		cur, _ := open.Pop()
		if p.closed[cur.idx] {
			continue
		}
		p.closed[cur.idx] = true

		pos := p.layout.Position(cur.idx)
		if pos == end {
			return p.reconstruct(cur.idx)
		}

		curPrev := p.prev[cur.idx]
		for _, dir := range dirs {
			nb := pos.Add(dir)
			if !p.layout.InBounds(nb) {
				continue
			}
			nbIdx, ok := p.layout.Index(nb)
			if !ok || p.closed[nbIdx] {
				continue
			}
			if curPrev.Has(nb) {
				continue
			}

			info := costFn(pos, nb)
			if !info.Traversable {
				continue
			}

			var footprint [4]vec.Vec3
			if info.IsStairs {
				footprint = StairFootprint(pos, dir, unit)
				if crossesItself(curPrev, footprint) {
					continue
				}
			}

			newCost := p.cost[cur.idx] + info.Cost
			if newCost >= p.cost[nbIdx] {
				continue
			}

			p.cost[nbIdx] = newCost
			p.parent[nbIdx] = cur.idx

			set := mapset.New[vec.Vec3]()
			curPrev.Each(func(c vec.Vec3) { set.Put(c) })
			set.Put(pos)
			if info.IsStairs {
				for _, c := range footprint {
					set.Put(c)
				}
			}
			p.prev[nbIdx] = set

			open.Push(openNode{idx: nbIdx, cost: newCost})
		}
	}

	logging.GetPathfindingLogger().Debug("Путь %v -> %v не найден", start, end)
	return nil
}

func crossesItself(prev mapset.Set[vec.Vec3], footprint [4]vec.Vec3) bool {
	for _, c := range footprint {
		if prev.Has(c) {
			return true
		}
	}
	return false
}

// reconstruct разворачивает цепочку родителей; останавливается на первом повторе
func (p *Pathfinder) reconstruct(idx int) []vec.Vec3 {
	seen := make(map[int]struct{})
	var stack []vec.Vec3
	for idx >= 0 {
		if _, ok := seen[idx]; ok {
			break
		}
		seen[idx] = struct{}{}
		stack = append(stack, p.layout.Position(idx))
		idx = p.parent[idx]
	}

	path := make([]vec.Vec3, 0, len(stack))
	for i := len(stack) - 1; i >= 0; i-- {
		path = append(path, stack[i])
	}
	return path
}

// Cost возвращает накопленную стоимость клетки после последнего поиска
func (p *Pathfinder) Cost(pos vec.Vec3) float64 {
	idx, ok := p.layout.Index(pos)
	if !ok {
		return math.Inf(1)
	}
	return p.cost[idx]
}

// GetNeighbors все соседи (включая наклонные) в пределах сетки с отступом
func (p *Pathfinder) GetNeighbors(pos vec.Vec3) []vec.Vec3 {
	var result []vec.Vec3
	for _, dir := range Directions(p.layout.Unit(), p.runUp, true) {
		nb := pos.Add(dir)
		if p.layout.InBounds(nb) {
			result = append(result, nb)
		}
	}
	return result
}

// GetNeighbors2D планарные соседи в пределах сетки без учёта отступа
func (p *Pathfinder) GetNeighbors2D(pos vec.Vec3) []vec.Vec3 {
	var result []vec.Vec3
	for _, dir := range Directions(p.layout.Unit(), p.runUp, false) {
		nb := pos.Add(dir)
		if p.layout.InBoundsIgnoreOffset(nb) {
			result = append(result, nb)
		}
	}
	return result
}
