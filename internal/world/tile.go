// Package world provides the isometric tile world: tiles, heightmap-driven
// generation, the spatial index over tile positions, and the queries agents
// use to navigate and harvest.
package world

import (
	"fmt"
	"math"
)

// Vec2 is a position or direction in world space.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Scale returns v * s.
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Len returns the Euclidean length of v.
func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }

// Dist returns the Euclidean distance between v and o.
func (v Vec2) Dist(o Vec2) float64 { return v.Sub(o).Len() }

func (v Vec2) String() string {
	return fmt.Sprintf("(%.2f, %.2f)", v.X, v.Y)
}

// Visual names the sprite category a tile is drawn with. The numeric value is
// the texture layer handed to the renderer.
type Visual uint8

const (
	VisualWater Visual = iota // Low terrain, impassable
	VisualGrass
	VisualClay
	VisualStone // High terrain, impassable
	VisualTree  // Harvestable wood source
	VisualWood  // Felled tree, can be carried
	VisualMiner
)

// Walkable reports whether agents may stand on a tile with this visual.
func (v Visual) Walkable() bool {
	return v != VisualWater && v != VisualStone
}

func (v Visual) String() string {
	switch v {
	case VisualWater:
		return "Water"
	case VisualGrass:
		return "Grass"
	case VisualClay:
		return "Clay"
	case VisualStone:
		return "Stone"
	case VisualTree:
		return "Tree"
	case VisualWood:
		return "Wood"
	case VisualMiner:
		return "Miner"
	default:
		return "Unknown"
	}
}

// ResourceKind enumerates what can be harvested from a tile.
type ResourceKind uint8

const (
	ResourceNone ResourceKind = iota
	ResourceWood
)

func (r ResourceKind) String() string {
	switch r {
	case ResourceNone:
		return "none"
	case ResourceWood:
		return "wood"
	default:
		return "unknown"
	}
}

// TileID identifies a tile for the lifetime of a World. Removing a tile never
// renumbers the others.
type TileID int

// Tile is a single cell of the world, or any sprite that shares its shape.
type Tile struct {
	Position Vec2   `json:"position"`
	Visual   Visual `json:"visual"`
	Selected bool   `json:"selected"`

	// Resource state. Amount is zero whenever Resource is ResourceNone.
	Resource  ResourceKind `json:"resource"`
	Amount    int          `json:"amount"`
	Carryable bool         `json:"carryable"` // Depleted byproduct that can be picked up
}

// Sprite returns the read-only render view of the tile.
func (t Tile) Sprite() Sprite {
	s := Sprite{Position: t.Position, Visual: t.Visual}
	if t.Selected {
		s.Highlight = HighlightSelected
	}
	return s
}

// HighlightSelected is the shader highlight value of a selected sprite.
const HighlightSelected float32 = 0.5

// Sprite is what the presentation layer receives for each tile or agent.
type Sprite struct {
	Position  Vec2    `json:"position"`
	Visual    Visual  `json:"visual"`
	Highlight float32 `json:"highlight"`
}
