package debugviz

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/annel0/dungeon-gen/internal/dungeon"
	"github.com/annel0/dungeon-gen/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSink_CollectsDebugRun(t *testing.T) {
	cfg := dungeon.DefaultConfig()
	cfg.Seed = 3
	cfg.DebugMode = true

	sink := NewSink()
	g, err := dungeon.NewGenerator(cfg, dungeon.DefaultCatalog(), dungeon.WithDebugSink(sink))
	require.NoError(t, err)

	_, err = g.GenerateDungeon(context.Background(), vec.Vec3Float{X: 10, Y: 10, Z: 10}, 10)
	require.NoError(t, err)

	floors := sink.Floors()
	require.NotEmpty(t, floors)
	assert.Contains(t, floors, 10)

	var buf bytes.Buffer
	require.NoError(t, sink.Render(&buf))
	assert.Contains(t, buf.String(), "z=10")
	assert.Contains(t, buf.String(), "room")
}

func TestSink_WriteFile(t *testing.T) {
	sink := NewSink()
	sink.Path([]vec.Vec3{{X: 5, Y: 5, Z: 5}, {X: 10, Y: 5, Z: 5}})
	assert.Len(t, sink.Paths(), 1)

	path := filepath.Join(t.TempDir(), "debug.html")
	require.NoError(t, sink.WriteFile(path))
	assert.FileExists(t, path)
}
