package graph

import (
	"github.com/annel0/dungeon-gen/internal/vec"
)

// Edge неориентированное ребро между двумя точками пространства
type Edge struct {
	U vec.Vec3 `json:"u"`
	V vec.Vec3 `json:"v"`
}

// NewEdge создаёт ребро
func NewEdge(u, v vec.Vec3) Edge {
	return Edge{U: u, V: v}
}

// Weight вес ребра: евклидово расстояние между концами
func (e Edge) Weight() float64 {
	return e.U.DistanceTo(e.V)
}

// Equals сравнивает рёбра без учёта направления
func (e Edge) Equals(other Edge) bool {
	return (e.U == other.U && e.V == other.V) || (e.U == other.V && e.V == other.U)
}

// Key возвращает ключ ребра, одинаковый для (u,v) и (v,u)
func (e Edge) Key() [2]vec.Vec3 {
	if less(e.V, e.U) {
		return [2]vec.Vec3{e.V, e.U}
	}
	return [2]vec.Vec3{e.U, e.V}
}

// Has сообщает, является ли точка концом ребра
func (e Edge) Has(p vec.Vec3) bool {
	return e.U == p || e.V == p
}

func less(a, b vec.Vec3) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.Z < b.Z
}

// Vertices возвращает уникальные вершины набора рёбер в порядке появления
func Vertices(edges []Edge) []vec.Vec3 {
	seen := make(map[vec.Vec3]struct{}, len(edges))
	var out []vec.Vec3
	for _, e := range edges {
		for _, p := range [2]vec.Vec3{e.U, e.V} {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}
