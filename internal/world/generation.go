// World generation from a heightmap.
// Each pixel becomes one ground tile laid out on an isometric grid; heightmap
// bands force water and stone, the rest is a weighted pick of ground kinds.
package world

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math/rand"

	"github.com/talgya/dvarcraft/internal/quadtree"
)

// MaxLayers is the number of bands the heightmap range is divided into.
const MaxLayers = 5

// GenConfig holds world generation parameters.
type GenConfig struct {
	Seed         int64   // Random seed for ground and tree draws
	LayerIndex   int     // Selects the water/stone banding thresholds (>= 1)
	SpriteSize   float64 // Sprite edge length in world units
	MinLeafWidth float64 // Spatial index leaves are never narrower than this

	GrassWeight int     // Relative weight of grass in the ground pick
	ClayWeight  int     // Relative weight of clay in the ground pick
	TreeChance  float64 // Probability a walkable tile also gets a tree
	TreeWood    int     // Wood carried by a fresh tree
}

// DefaultGenConfig returns a reasonable starting configuration.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Seed:         0,
		LayerIndex:   1,
		SpriteSize:   64,
		MinLeafWidth: 64,
		GrassWeight:  4,
		ClayWeight:   1,
		TreeChance:   0.1,
		TreeWood:     5,
	}
}

// Validate reports the first invalid field.
func (c GenConfig) Validate() error {
	switch {
	case c.LayerIndex < 1:
		return fmt.Errorf("layer index %d: must be at least 1", c.LayerIndex)
	case c.SpriteSize <= 0:
		return fmt.Errorf("sprite size %g: must be positive", c.SpriteSize)
	case c.MinLeafWidth <= 0:
		return fmt.Errorf("min leaf width %g: must be positive", c.MinLeafWidth)
	case c.GrassWeight < 0 || c.ClayWeight < 0 || c.GrassWeight+c.ClayWeight == 0:
		return errors.New("ground weights: need at least one positive weight")
	case c.TreeChance < 0 || c.TreeChance > 1:
		return fmt.Errorf("tree chance %g: must be within [0, 1]", c.TreeChance)
	case c.TreeWood < 0:
		return fmt.Errorf("tree wood %d: must not be negative", c.TreeWood)
	}
	return nil
}

// layout maps grid coordinates to world positions.
type layout struct {
	half, quarter  float64
	xStart, yStart float64
}

func newLayout(width, height int, sprite float64) layout {
	half, quarter := sprite/2, sprite/4
	// Offsets keep every projected tile at least one sprite away from the
	// origin so the whole grid lies inside the spatial index.
	return layout{
		half:    half,
		quarter: quarter,
		xStart:  half*float64(width-1) + sprite,
		yStart:  quarter*float64(width-1+height-1) + sprite,
	}
}

func (l layout) project(x, y int) Vec2 {
	fx, fy := float64(x), float64(y)
	return Vec2{
		X: l.xStart - l.half*fx + l.half*fy,
		Y: l.yStart - l.quarter*fx - l.quarter*fy,
	}
}

// bounds returns the rectangle covering every projected tile plus a sprite of
// margin on each side.
func (l layout) bounds(width, height int, sprite float64) quadtree.Rect {
	maxX := l.xStart + l.half*float64(height-1)
	return quadtree.Rect{
		X: 0,
		Y: 0,
		W: maxX + sprite,
		H: l.yStart + sprite,
	}
}

type weighted struct {
	visual Visual
	weight int
}

func weightedChoice(rng *rand.Rand, choices []weighted) Visual {
	total := 0
	for _, c := range choices {
		total += c.weight
	}
	n := rng.Intn(total)
	for _, c := range choices {
		if n < c.weight {
			return c.visual
		}
		n -= c.weight
	}
	return choices[len(choices)-1].visual
}

// Generate builds a world from a heightmap image.
func Generate(img image.Image, cfg GenConfig) (*World, error) {
	if img == nil {
		return nil, errors.New("generate world: nil heightmap")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("generate world: %w", err)
	}
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("generate world: %w", ErrEmptyHeightmap)
	}

	// First pass: sample range for banding.
	minS, maxS := sample(img, b.Min.X, b.Min.Y), sample(img, b.Min.X, b.Min.Y)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			s := sample(img, x, y)
			if s < minS {
				minS = s
			}
			if s > maxS {
				maxS = s
			}
		}
	}
	step := (maxS - minS) / MaxLayers
	low := float64(cfg.LayerIndex) * step
	high := 2 * float64(cfg.LayerIndex) * step

	rng := rand.New(rand.NewSource(cfg.Seed + 100))
	lay := newLayout(width, height, cfg.SpriteSize)
	w := newWorld(width, height, quadtree.New(lay.bounds(width, height, cfg.SpriteSize), cfg.MinLeafWidth), cfg)

	ground := []weighted{
		{VisualGrass, cfg.GrassWeight},
		{VisualClay, cfg.ClayWeight},
	}

	trees := 0
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			visual := weightedChoice(rng, ground)
			level := sample(img, b.Min.X+x, b.Min.Y+y) - minS
			if level < low {
				visual = VisualWater
			} else if level > high {
				visual = VisualStone
			}

			pos := lay.project(x, y)
			id, err := w.add(Tile{Position: pos, Visual: visual})
			if err != nil {
				return nil, fmt.Errorf("generate world: %w", err)
			}
			if !visual.Walkable() {
				continue
			}
			w.markWalkable(id)

			if cfg.TreeChance > 0 && rng.Float64() < cfg.TreeChance {
				if _, err := w.PlaceResource(pos, VisualTree, ResourceWood, cfg.TreeWood); err != nil {
					return nil, fmt.Errorf("generate world: %w", err)
				}
				trees++
			}
		}
	}

	slog.Debug("world generated",
		"width", width,
		"height", height,
		"tiles", w.Len(),
		"walkable", w.WalkableCount(),
		"trees", trees,
		"leaves", w.index.Leaves(),
	)
	return w, nil
}
