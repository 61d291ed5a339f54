package graph

import (
	"math"
	"math/rand"
	"testing"

	"github.com/annel0/dungeon-gen/internal/vec"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func scenarioPoints() []vec.Vec3 {
	return []vec.Vec3{
		{X: 0, Y: 0, Z: 0},
		{X: 10, Y: 0, Z: 0},
		{X: 0, Y: 10, Z: 0},
		{X: 0, Y: 0, Z: 10},
		{X: 3, Y: 2, Z: 4},
		{X: 12, Y: 11, Z: 9},
	}
}

func randomPoints(rng *rand.Rand, n int) []vec.Vec3 {
	pts := make([]vec.Vec3, n)
	for i := range pts {
		pts[i] = vec.Vec3{X: rng.Intn(10000), Y: rng.Intn(10000), Z: rng.Intn(10000)}
	}
	return pts
}

// find для проверки ацикличности через union-find
func find(parent map[vec.Vec3]vec.Vec3, p vec.Vec3) vec.Vec3 {
	for parent[p] != p {
		parent[p] = parent[parent[p]]
		p = parent[p]
	}
	return p
}

func assertSpanningTree(t *testing.T, vertices []vec.Vec3, tree []Edge) {
	t.Helper()
	require.Len(t, tree, len(vertices)-1)

	parent := make(map[vec.Vec3]vec.Vec3, len(vertices))
	for _, v := range vertices {
		parent[v] = v
	}
	for _, e := range tree {
		ru, rv := find(parent, e.U), find(parent, e.V)
		require.NotEqual(t, ru, rv, "cycle through %v", e)
		parent[ru] = rv
	}

	root := find(parent, vertices[0])
	for _, v := range vertices {
		assert.Equal(t, root, find(parent, v), "vertex %v not connected", v)
	}
}

func TestTetrahedralize_TooFewOrCoplanar(t *testing.T) {
	assert.Nil(t, Tetrahedralize(nil))
	assert.Nil(t, Tetrahedralize([]vec.Vec3{{X: 1}, {Y: 1}, {Z: 1}}))

	// 4 точки, но одна повторяется
	assert.Nil(t, Tetrahedralize([]vec.Vec3{{X: 1}, {Y: 1}, {Z: 1}, {X: 1}}))

	// все точки на одном этаже
	var floor []vec.Vec3
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			floor = append(floor, vec.Vec3{X: x * 5, Y: y * 5, Z: 15})
		}
	}
	assert.Nil(t, Tetrahedralize(floor))
}

func TestTetrahedralize_SingleTetrahedron(t *testing.T) {
	pts := []vec.Vec3{{}, {X: 5}, {Y: 5}, {Z: 5}}
	tets := Tetrahedralize(pts)
	require.Len(t, tets, 1)

	edges := EdgesFromTetrahedra(tets)
	assert.Len(t, edges, 6)
	assert.ElementsMatch(t, pts, Vertices(edges))
}

func TestTetrahedralize_EmptyCircumsphere(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	pts := randomPoints(rng, 12)

	tets := Tetrahedralize(pts)
	require.NotEmpty(t, tets)

	for _, tet := range tets {
		a := tet.A.R3()
		u := r3.Sub(tet.B.R3(), a)
		v := r3.Sub(tet.C.R3(), a)
		w := r3.Sub(tet.D.R3(), a)
		denom := 2 * r3.Dot(u, r3.Cross(v, w))
		if math.Abs(denom) < 1e-3 {
			continue
		}
		off := r3.Scale(1/denom, r3.Add(r3.Add(
			r3.Scale(r3.Norm2(u), r3.Cross(v, w)),
			r3.Scale(r3.Norm2(v), r3.Cross(w, u))),
			r3.Scale(r3.Norm2(w), r3.Cross(u, v))))
		center := r3.Add(a, off)
		radius := r3.Norm(off)

		for _, p := range pts {
			if p == tet.A || p == tet.B || p == tet.C || p == tet.D {
				continue
			}
			dist := r3.Norm(r3.Sub(p.R3(), center))
			assert.GreaterOrEqual(t, dist, radius*(1-1e-3), "point %v inside circumsphere of %v", p, tet)
		}
	}
}

func TestTetrahedralize_IgnoresDuplicates(t *testing.T) {
	pts := scenarioPoints()
	withDup := append(append([]vec.Vec3{}, pts...), pts[2], pts[4])

	a := Tetrahedralize(pts)
	b := Tetrahedralize(withDup)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("duplicates changed triangulation (-want +got):\n%s", diff)
	}
}

func TestMinimumSpanningTree_SpansAllVertices(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	pts := randomPoints(rng, 20)

	edges := EdgesFromTetrahedra(Tetrahedralize(pts))
	require.NotEmpty(t, edges)

	tree := MinimumSpanningTree(edges, edges[0].U, TieBreakFirst)
	assertSpanningTree(t, Vertices(edges), tree)
}

func TestMinimumSpanningTree_TieBreak(t *testing.T) {
	a := vec.Vec3{}
	b := vec.Vec3{X: 5}
	c := vec.Vec3{Y: 5}
	edges := []Edge{{U: a, V: b}, {U: a, V: c}}

	first := MinimumSpanningTree(edges, a, TieBreakFirst)
	last := MinimumSpanningTree(edges, a, TieBreakLast)

	require.Len(t, first, 2)
	require.Len(t, last, 2)
	assert.Equal(t, edges[0], first[0])
	assert.Equal(t, edges[1], last[0])
}

func TestMinimumSpanningTree_Disconnected(t *testing.T) {
	a, b := vec.Vec3{}, vec.Vec3{X: 5}
	c, d := vec.Vec3{X: 100}, vec.Vec3{X: 105}
	edges := []Edge{{U: a, V: b}, {U: c, V: d}}

	tree := MinimumSpanningTree(edges, a, TieBreakFirst)
	assert.Equal(t, []Edge{{U: a, V: b}}, tree)
}

func TestAddRandomEdges_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	pts := randomPoints(rng, 15)
	edges := EdgesFromTetrahedra(Tetrahedralize(pts))
	mst := MinimumSpanningTree(edges, edges[0].U, TieBreakFirst)

	for _, p := range []float64{0, 0.125, 0.5, 1} {
		out := AddRandomEdges(edges, mst, p, rand.New(rand.NewSource(11)))

		// дерево сохраняется целиком и в начале списка
		require.GreaterOrEqual(t, len(out), len(mst))
		assert.Equal(t, mst, out[:len(mst)])

		seen := make(map[[2]vec.Vec3]bool)
		for _, e := range out {
			k := e.Key()
			assert.False(t, seen[k], "duplicate edge %v (p=%v)", e, p)
			seen[k] = true
		}

		for _, e := range out[len(mst):] {
			found := false
			for _, o := range edges {
				if o.Equals(e) {
					found = true
					break
				}
			}
			assert.True(t, found, "edge %v not in candidates", e)
		}
	}

	assert.Equal(t, mst, AddRandomEdges(edges, mst, 0, rand.New(rand.NewSource(1))))
}

func TestBuild_ScenarioNoLoops(t *testing.T) {
	edges, err := Build(scenarioPoints(), Options{LoopProbability: 0}, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Len(t, edges, 5)
	assertSpanningTree(t, scenarioPoints(), edges)
}

func TestBuild_TreeGrowsFromFirstPoint(t *testing.T) {
	pts := scenarioPoints()
	for i := range pts {
		rotated := append(append([]vec.Vec3(nil), pts[i:]...), pts[:i]...)
		edges, err := Build(rotated, Options{LoopProbability: 0}, rand.New(rand.NewSource(1)))
		require.NoError(t, err)
		require.NotEmpty(t, edges)
		// первое ребро дерева Прима инцидентно стартовой вершине
		assert.True(t, edges[0].U == rotated[0] || edges[0].V == rotated[0],
			"start %v, first edge %v", rotated[0], edges[0])
	}
}

func TestBuild_NoTetrahedra(t *testing.T) {
	edges, err := Build([]vec.Vec3{{}, {X: 5}, {Y: 5}}, Options{LoopProbability: 0.5}, rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, ErrNoTetrahedra)
	assert.Empty(t, edges)
}

func TestEdge_EqualsAndKey(t *testing.T) {
	a, b := vec.Vec3{X: 1, Y: 2, Z: 3}, vec.Vec3{X: -4, Y: 0, Z: 9}
	e1, e2 := NewEdge(a, b), NewEdge(b, a)
	assert.True(t, e1.Equals(e2))
	assert.Equal(t, e1.Key(), e2.Key())
	assert.InDelta(t, a.DistanceTo(b), e1.Weight(), 1e-12)
	assert.True(t, e1.Has(b))
	assert.False(t, e1.Has(vec.Zero))

	tb, err := ParseTieBreak("last")
	require.NoError(t, err)
	assert.Equal(t, TieBreakLast, tb)
	_, err = ParseTieBreak("random")
	assert.Error(t, err)
}
