package graph

import (
	"errors"
	"fmt"
	"math"

	"github.com/annel0/dungeon-gen/internal/logging"
	"github.com/annel0/dungeon-gen/internal/vec"
)

// ErrNoTetrahedra возвращается, когда триангуляция пуста (мало точек или они компланарны)
var ErrNoTetrahedra = errors.New("graph: triangulation produced no tetrahedra")

// TieBreak правило выбора среди рёбер одинакового веса
type TieBreak int

const (
	// TieBreakFirst выбирает первое ребро во входном порядке
	TieBreakFirst TieBreak = iota
	// TieBreakLast выбирает последнее
	TieBreakLast
)

func (t TieBreak) String() string {
	if t == TieBreakLast {
		return "last"
	}
	return "first"
}

// ParseTieBreak разбирает значение из конфигурации
func ParseTieBreak(s string) (TieBreak, error) {
	switch s {
	case "", "first":
		return TieBreakFirst, nil
	case "last":
		return TieBreakLast, nil
	default:
		return TieBreakFirst, fmt.Errorf("unknown mst tie-break %q", s)
	}
}

// Rand источник случайности, который нужен построителю графа.
// *rand.Rand удовлетворяет ему.
type Rand interface {
	Float64() float64
	Shuffle(n int, swap func(i, j int))
}

// MinimumSpanningTree строит остовное дерево алгоритмом Прима.
// Несвязные компоненты остаются несвязными.
func MinimumSpanningTree(edges []Edge, start vec.Vec3, tie TieBreak) []Edge {
	weights := make([]float64, len(edges))
	for i, e := range edges {
		weights[i] = e.Weight()
	}

	closed := map[vec.Vec3]bool{start: true}
	var result []Edge

	for {
		chosen := -1
		minWeight := math.Inf(1)

		for i, e := range edges {
			if closed[e.U] == closed[e.V] {
				continue
			}
			w := weights[i]
			if w < minWeight || (tie == TieBreakLast && w == minWeight) {
				chosen = i
				minWeight = w
			}
		}

		if chosen < 0 {
			break
		}

		e := edges[chosen]
		closed[e.U] = true
		closed[e.V] = true
		result = append(result, e)
	}

	return result
}

// AddRandomEdges добавляет к дереву часть оставшихся рёбер для образования петель.
// Оставшиеся рёбра перемешиваются и каждое добавляется с вероятностью p.
func AddRandomEdges(original, mst []Edge, p float64, rng Rand) []Edge {
	result := make([]Edge, len(mst), len(mst)+len(original)/4)
	copy(result, mst)

	used := make(map[[2]vec.Vec3]struct{}, len(mst)+len(original))
	for _, e := range mst {
		used[e.Key()] = struct{}{}
	}

	var remaining []Edge
	for _, e := range original {
		k := e.Key()
		if _, ok := used[k]; ok {
			continue
		}
		used[k] = struct{}{}
		remaining = append(remaining, e)
	}

	rng.Shuffle(len(remaining), func(i, j int) {
		remaining[i], remaining[j] = remaining[j], remaining[i]
	})

	for _, e := range remaining {
		if rng.Float64() < p {
			result = append(result, e)
		}
	}

	return result
}

// Options параметры построения графа
type Options struct {
	LoopProbability float64
	TieBreak        TieBreak
}

// Build выполняет полный шаг: триангуляция, остовное дерево, петли.
func Build(points []vec.Vec3, opts Options, rng Rand) ([]Edge, error) {
	tets := Tetrahedralize(points)
	if len(tets) == 0 {
		logging.GetGraphLogger().Warn("Триангуляция пуста (точек: %d)", len(points))
		return nil, ErrNoTetrahedra
	}

	edges := EdgesFromTetrahedra(tets)
	mst := MinimumSpanningTree(edges, startVertex(points, edges), opts.TieBreak)
	selected := AddRandomEdges(edges, mst, opts.LoopProbability, rng)

	logging.GetGraphLogger().Debug("Граф: %d вершин, %d тетраэдров, mst=%d, итого=%d",
		len(points), len(tets), len(mst), len(selected))
	return selected, nil
}

// startVertex первая входная точка; если она не попала в триангуляцию
// (дубликат), то первая вершина рёбер
func startVertex(points []vec.Vec3, edges []Edge) vec.Vec3 {
	for _, e := range edges {
		if e.U == points[0] || e.V == points[0] {
			return points[0]
		}
	}
	return edges[0].U
}
