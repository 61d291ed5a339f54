package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/annel0/dungeon-gen/internal/dungeon"
	"github.com/annel0/dungeon-gen/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Setenv("DUNGEON_CONFIG", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, dungeon.DefaultConfig(), cfg.Dungeon)
	assert.Equal(t, 30, cfg.Server.DefaultBudget)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
dungeon:
  seed: 99
  floor_based: true
  size: {x: 120, y: 120, z: 60}
server:
  rest_port: 9000
cache:
  redis_url: redis://localhost:6379
  default_ttl: 5m
templates:
  entrance: gate
  rooms: [hall]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, int64(99), cfg.Dungeon.Seed)
	assert.True(t, cfg.Dungeon.FloorBased)
	assert.Equal(t, 120, cfg.Dungeon.Size.X)
	// не указанные поля остаются по умолчанию
	assert.Equal(t, dungeon.DefaultConfig().Unit, cfg.Dungeon.Unit)
	assert.Equal(t, 9000, cfg.Server.GetRESTPort())
	assert.Equal(t, 5*time.Minute, cfg.Cache.DefaultTTL)
	assert.Equal(t, "gate", cfg.Templates.Entrance)
	assert.Equal(t, []string{"hall"}, cfg.Templates.Rooms)
}

func TestLoad_FromEnv(t *testing.T) {
	path := writeConfig(t, "dungeon:\n  seed: 5\n")
	t.Setenv("DUNGEON_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, int64(5), cfg.Dungeon.Seed)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad unit", "dungeon:\n  unit: 0\n"},
		{"budget", "server:\n  default_budget: 50\n  max_budget: 10\n"},
		{"log level", "logging:\n  level: loud\n"},
		{"log component", "logging:\n  components: {physics: info}\n"},
		{"component level", "logging:\n  components: {graph: loud}\n"},
		{"no rooms", "templates:\n  rooms: []\n"},
		{"yaml", "dungeon: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_LoggingComponents(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: warn
  components:
    pathfinding: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, logging.WARN, cfg.Logging.ConsoleLevel())
	assert.Equal(t, map[string]string{"pathfinding": "debug"}, cfg.Logging.Components)

	assert.Equal(t, logging.INFO, LoggingConfig{}.ConsoleLevel())
}

func TestGetRESTPort_EnvFallback(t *testing.T) {
	t.Setenv("DUNGEON_REST_PORT", "7001")
	var s ServerConfig
	assert.Equal(t, 7001, s.GetRESTPort())

	t.Setenv("DUNGEON_REST_PORT", "junk")
	assert.Equal(t, 8088, s.GetRESTPort())
}
