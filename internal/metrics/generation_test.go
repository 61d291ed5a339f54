package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneration_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	g := NewGeneration(reg)

	g.ObserveRun(20*time.Millisecond, 7)
	g.ObservePhase("rooms", time.Millisecond)
	g.PathResult(true)
	g.PathResult(true)
	g.PathResult(false)
	g.RoomsRemoved(2)
	g.RoomsRemoved(0)
	g.PlacementRejected("overlap")
	g.SpawnFailed("door")
	g.SetCells(map[string]int{"room": 12, "corridor": 30})

	assert.Equal(t, 1.0, testutil.ToFloat64(g.runs))
	assert.Equal(t, 7.0, testutil.ToFloat64(g.rooms))
	assert.Equal(t, 2.0, testutil.ToFloat64(g.paths.WithLabelValues("found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(g.paths.WithLabelValues("not_found")))
	assert.Equal(t, 2.0, testutil.ToFloat64(g.removed))
	assert.Equal(t, 1.0, testutil.ToFloat64(g.rejected.WithLabelValues("overlap")))
	assert.Equal(t, 30.0, testutil.ToFloat64(g.cells.WithLabelValues("corridor")))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestGeneration_NilSafe(t *testing.T) {
	var g *Generation
	assert.NotPanics(t, func() {
		g.ObserveRun(time.Second, 1)
		g.ObservePhase("walls", time.Second)
		g.PathResult(false)
		g.RoomsRemoved(3)
		g.PlacementRejected("bounds")
		g.SpawnFailed("wall")
		g.SetCells(nil)
	})
}
