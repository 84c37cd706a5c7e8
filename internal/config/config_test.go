package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/dvarcraft/internal/agents"
	"github.com/talgya/dvarcraft/internal/world"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dvarcraft.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, world.DefaultGenConfig(), cfg.Gen())
	assert.Equal(t, agents.DefaultConfig(), cfg.Crew())
	assert.Equal(t, 0.2, cfg.Miners.WanderChance)
}

func TestLoad_overridesDefaults(t *testing.T) {
	path := writeConfig(t, `
seed: 42
world:
  heightmap: assets/heightmap.png
  layer_index: 2
  tree_chance: 0.5
miners:
  count: 3
  speed: 12
engine:
  interval: 50ms
  max_ticks: 1000
db_path: ""
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, "assets/heightmap.png", cfg.World.Heightmap)
	assert.Equal(t, 2, cfg.World.LayerIndex)
	assert.Equal(t, 0.5, cfg.World.TreeChance)
	assert.Equal(t, 3, cfg.Miners.Count)
	assert.Equal(t, 50*time.Millisecond, cfg.Engine.Interval)
	assert.Equal(t, uint64(1000), cfg.Engine.MaxTicks)
	assert.Empty(t, cfg.DBPath)

	// Untouched keys keep their defaults.
	def := Default()
	assert.Equal(t, def.World.SpriteSize, cfg.World.SpriteSize)
	assert.Equal(t, def.Miners.WanderChance, cfg.Miners.WanderChance)
	assert.Equal(t, def.Engine.ReportEvery, cfg.Engine.ReportEvery)

	gen := cfg.Gen()
	assert.Equal(t, int64(42), gen.Seed)
	assert.Equal(t, 2, gen.LayerIndex)
	assert.Equal(t, 12.0, cfg.Crew().Speed)
	assert.Equal(t, world.ResourceWood, cfg.Crew().Kind)
}

func TestLoad_errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeConfig(t, "world: [not, a, map]\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "miners:\n  wander_chance: 3\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wander chance")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"noise size", func(c *Config) { c.World.Width = 0 }, "noise map size"},
		{"layer index", func(c *Config) { c.World.LayerIndex = 0 }, "layer index"},
		{"negative count", func(c *Config) { c.Miners.Count = -1 }, "count"},
		{"miner speed", func(c *Config) { c.Miners.Speed = 0 }, "miner speed"},
		{"interval", func(c *Config) { c.Engine.Interval = 0 }, "interval"},
		{"engine speed", func(c *Config) { c.Engine.Speed = -1 }, "speed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	cfg := Default()
	cfg.World.Width = 0
	cfg.World.Heightmap = "map.png"
	assert.NoError(t, cfg.Validate())
}
