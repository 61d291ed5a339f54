package graph

import (
	"math"

	"github.com/annel0/dungeon-gen/internal/vec"
	"gonum.org/v1/gonum/spatial/r3"
)

// Tetrahedron симплекс 3D триангуляции
type Tetrahedron struct {
	A, B, C, D vec.Vec3
}

// Edges возвращает 6 рёбер тетраэдра
func (t Tetrahedron) Edges() [6]Edge {
	return [6]Edge{
		{U: t.A, V: t.B},
		{U: t.B, V: t.C},
		{U: t.C, V: t.A},
		{U: t.D, V: t.A},
		{U: t.D, V: t.B},
		{U: t.D, V: t.C},
	}
}

type tetra struct {
	v      [4]int
	center r3.Vec
	r2     float64
	bad    bool
}

type face [3]int

func sortedFace(a, b, c int) face {
	if a > b {
		a, b = b, a
	}
	if b > c {
		b, c = c, b
	}
	if a > b {
		a, b = b, a
	}
	return face{a, b, c}
}

// Tetrahedralize строит триангуляцию Делоне алгоритмом Боуэра-Ватсона.
// Повторяющиеся точки учитываются один раз. Для менее чем 4 точек или
// компланарного набора возвращается nil.
func Tetrahedralize(points []vec.Vec3) []Tetrahedron {
	uniq := make([]vec.Vec3, 0, len(points))
	seen := make(map[vec.Vec3]struct{}, len(points))
	for _, p := range points {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		uniq = append(uniq, p)
	}
	if len(uniq) < 4 || !spansVolume(uniq) {
		return nil
	}

	minP, maxP := uniq[0].R3(), uniq[0].R3()
	for _, p := range uniq[1:] {
		q := p.R3()
		minP = r3.Vec{X: math.Min(minP.X, q.X), Y: math.Min(minP.Y, q.Y), Z: math.Min(minP.Z, q.Z)}
		maxP = r3.Vec{X: math.Max(maxP.X, q.X), Y: math.Max(maxP.Y, q.Y), Z: math.Max(maxP.Z, q.Z)}
	}
	size := r3.Sub(maxP, minP)
	d := math.Max(size.X, math.Max(size.Y, size.Z))
	if d <= 0 {
		d = 1
	}
	center := r3.Scale(0.5, r3.Add(minP, maxP))

	// Координаты с малым детерминированным шумом: сеточные точки почти всегда
	// компланарны и лежат на общих сферах.
	n := len(uniq)
	coords := make([]r3.Vec, n, n+4)
	jitter := d * 1e-6
	state := uint64(0x9E3779B97F4A7C15)
	for i, p := range uniq {
		coords[i] = r3.Add(p.R3(), r3.Vec{
			X: jitter * noiseUnit(&state),
			Y: jitter * noiseUnit(&state),
			Z: jitter * noiseUnit(&state),
		})
	}

	m := 100 * d
	for _, corner := range []r3.Vec{{X: 1, Y: 1, Z: 1}, {X: -1, Y: -1, Z: 1}, {X: -1, Y: 1, Z: -1}, {X: 1, Y: -1, Z: -1}} {
		coords = append(coords, r3.Add(center, r3.Scale(m, corner)))
	}

	tets := []*tetra{newTetra(coords, n, n+1, n+2, n+3)}

	for i := 0; i < n; i++ {
		p := coords[i]

		for _, t := range tets {
			t.bad = t.contains(p)
		}

		var faces []face
		count := make(map[face]int)
		for _, t := range tets {
			if !t.bad {
				continue
			}
			for _, f := range [4]face{
				sortedFace(t.v[0], t.v[1], t.v[2]),
				sortedFace(t.v[1], t.v[3], t.v[2]),
				sortedFace(t.v[0], t.v[3], t.v[1]),
				sortedFace(t.v[0], t.v[2], t.v[3]),
			} {
				if count[f] == 0 {
					faces = append(faces, f)
				}
				count[f]++
			}
		}

		kept := tets[:0]
		for _, t := range tets {
			if !t.bad {
				kept = append(kept, t)
			}
		}
		tets = kept

		for _, f := range faces {
			if count[f] != 1 {
				continue
			}
			tets = append(tets, newTetra(coords, f[0], f[1], f[2], i))
		}
	}

	var out []Tetrahedron
	for _, t := range tets {
		if t.v[0] >= n || t.v[1] >= n || t.v[2] >= n || t.v[3] >= n {
			continue
		}
		out = append(out, Tetrahedron{
			A: uniq[t.v[0]],
			B: uniq[t.v[1]],
			C: uniq[t.v[2]],
			D: uniq[t.v[3]],
		})
	}
	return out
}

// EdgesFromTetrahedra извлекает по 6 рёбер из каждого тетраэдра.
// Дубликаты между соседними тетраэдрами сохраняются.
func EdgesFromTetrahedra(tets []Tetrahedron) []Edge {
	edges := make([]Edge, 0, len(tets)*6)
	for _, t := range tets {
		e := t.Edges()
		edges = append(edges, e[:]...)
	}
	return edges
}

func newTetra(coords []r3.Vec, a, b, c, d int) *tetra {
	t := &tetra{v: [4]int{a, b, c, d}}
	pa := coords[a]
	u := r3.Sub(coords[b], pa)
	v := r3.Sub(coords[c], pa)
	w := r3.Sub(coords[d], pa)

	denom := 2 * r3.Dot(u, r3.Cross(v, w))
	if math.Abs(denom) < 1e-12 {
		// вырожденный тетраэдр удаляется при следующей вставке
		t.center = pa
		t.r2 = math.Inf(1)
		return t
	}

	num := r3.Add(
		r3.Add(
			r3.Scale(r3.Norm2(u), r3.Cross(v, w)),
			r3.Scale(r3.Norm2(v), r3.Cross(w, u)),
		),
		r3.Scale(r3.Norm2(w), r3.Cross(u, v)),
	)
	offset := r3.Scale(1/denom, num)
	t.center = r3.Add(pa, offset)
	t.r2 = r3.Norm2(offset)
	return t
}

func (t *tetra) contains(p r3.Vec) bool {
	if math.IsInf(t.r2, 1) {
		return true
	}
	return r3.Norm2(r3.Sub(p, t.center)) <= t.r2*(1+1e-12)
}

// spansVolume проверяет, что точки не лежат в одной плоскости
func spansVolume(points []vec.Vec3) bool {
	p0 := points[0].R3()
	i := 1
	for ; i < len(points); i++ {
		if points[i] != points[0] {
			break
		}
	}
	if i == len(points) {
		return false
	}
	u := r3.Sub(points[i].R3(), p0)

	var normal r3.Vec
	j := i + 1
	for ; j < len(points); j++ {
		normal = r3.Cross(u, r3.Sub(points[j].R3(), p0))
		if r3.Norm2(normal) > 0 {
			break
		}
	}
	if j >= len(points) {
		return false
	}

	for k := j + 1; k < len(points); k++ {
		if r3.Dot(normal, r3.Sub(points[k].R3(), p0)) != 0 {
			return true
		}
	}
	return false
}

// noiseUnit детерминированное значение в [-0.5, 0.5) (splitmix64)
func noiseUnit(state *uint64) float64 {
	*state += 0x9E3779B97F4A7C15
	z := *state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	z ^= z >> 31
	return float64(z>>11)/float64(1<<53) - 0.5
}
