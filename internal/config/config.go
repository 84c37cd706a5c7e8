// Package config loads the simulation settings from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/talgya/dvarcraft/internal/agents"
	"github.com/talgya/dvarcraft/internal/world"
)

// Config is the full set of tunables for a run.
type Config struct {
	Seed int64 `yaml:"seed"` // 0 draws a seed at startup

	World  WorldConfig  `yaml:"world"`
	Miners MinerConfig  `yaml:"miners"`
	Engine EngineConfig `yaml:"engine"`

	DBPath string `yaml:"db_path"` // Empty disables the journal
}

// WorldConfig controls terrain generation.
type WorldConfig struct {
	Heightmap    string  `yaml:"heightmap"` // PNG path; empty uses generated noise
	Width        int     `yaml:"width"`     // Noise map size when no heightmap is set
	Height       int     `yaml:"height"`
	LayerIndex   int     `yaml:"layer_index"`
	SpriteSize   float64 `yaml:"sprite_size"`
	MinLeafWidth float64 `yaml:"min_leaf_width"`
	GrassWeight  int     `yaml:"grass_weight"`
	ClayWeight   int     `yaml:"clay_weight"`
	TreeChance   float64 `yaml:"tree_chance"`
	TreeWood     int     `yaml:"tree_wood"`
}

// MinerConfig controls the miner crew.
type MinerConfig struct {
	Count           int     `yaml:"count"`
	Speed           float64 `yaml:"speed"`
	WanderChance    float64 `yaml:"wander_chance"`
	ArrivalDistance float64 `yaml:"arrival_distance"`
}

// EngineConfig controls the tick loop.
type EngineConfig struct {
	Interval    time.Duration `yaml:"interval"`
	Speed       float64       `yaml:"speed"`
	MaxTicks    uint64        `yaml:"max_ticks"`
	ReportEvery uint64        `yaml:"report_every"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	gen := world.DefaultGenConfig()
	mc := agents.DefaultConfig()
	return Config{
		World: WorldConfig{
			Width:        48,
			Height:       48,
			LayerIndex:   gen.LayerIndex,
			SpriteSize:   gen.SpriteSize,
			MinLeafWidth: gen.MinLeafWidth,
			GrassWeight:  gen.GrassWeight,
			ClayWeight:   gen.ClayWeight,
			TreeChance:   gen.TreeChance,
			TreeWood:     gen.TreeWood,
		},
		Miners: MinerConfig{
			Count:           25,
			Speed:           mc.Speed,
			WanderChance:    mc.WanderChance,
			ArrivalDistance: mc.ArrivalDistance,
		},
		Engine: EngineConfig{
			Interval:    time.Second / 60,
			Speed:       1,
			ReportEvery: 600,
		},
		DBPath: "data/dvarcraft.db",
	}
}

// Load reads path over the defaults. Keys missing from the file keep their
// default values.
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every section.
func (c Config) Validate() error {
	var errs []error
	if c.World.Heightmap == "" && (c.World.Width <= 0 || c.World.Height <= 0) {
		errs = append(errs, fmt.Errorf("world: noise map size must be positive, got %dx%d", c.World.Width, c.World.Height))
	}
	if err := c.Gen().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("world: %w", err))
	}
	if c.Miners.Count < 0 {
		errs = append(errs, fmt.Errorf("miners: count must not be negative, got %d", c.Miners.Count))
	}
	if err := c.Crew().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("miners: %w", err))
	}
	if c.Engine.Interval <= 0 {
		errs = append(errs, fmt.Errorf("engine: interval must be positive, got %s", c.Engine.Interval))
	}
	if c.Engine.Speed < 0 {
		errs = append(errs, fmt.Errorf("engine: speed must not be negative, got %g", c.Engine.Speed))
	}
	return errors.Join(errs...)
}

// Gen returns the world generation parameters.
func (c Config) Gen() world.GenConfig {
	return world.GenConfig{
		Seed:         c.Seed,
		LayerIndex:   c.World.LayerIndex,
		SpriteSize:   c.World.SpriteSize,
		MinLeafWidth: c.World.MinLeafWidth,
		GrassWeight:  c.World.GrassWeight,
		ClayWeight:   c.World.ClayWeight,
		TreeChance:   c.World.TreeChance,
		TreeWood:     c.World.TreeWood,
	}
}

// Crew returns the miner tuning.
func (c Config) Crew() agents.Config {
	cfg := agents.DefaultConfig()
	cfg.Speed = c.Miners.Speed
	cfg.WanderChance = c.Miners.WanderChance
	cfg.ArrivalDistance = c.Miners.ArrivalDistance
	return cfg
}
