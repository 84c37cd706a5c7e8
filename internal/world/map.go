package world

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/talgya/dvarcraft/internal/quadtree"
)

// ErrNoWalkable is returned when a query needs walkable tiles and none exist.
var ErrNoWalkable = errors.New("world has no walkable tiles")

// World owns every tile and keeps the spatial index in step with them.
// Tiles live in an arena: a removed tile leaves a dead slot behind so that
// TileIDs held elsewhere stay valid.
type World struct {
	tiles []Tile
	live  []bool

	walkable    []TileID     // Ordered, for uniform sampling
	walkableSet quadtree.Set // For membership and index intersection

	width, height int
	index         *quadtree.Tree
	rng           *rand.Rand
	cfg           GenConfig
}

func newWorld(width, height int, index *quadtree.Tree, cfg GenConfig) *World {
	return &World{
		walkableSet: make(quadtree.Set),
		width:       width,
		height:      height,
		index:       index,
		rng:         rand.New(rand.NewSource(cfg.Seed + 200)),
		cfg:         cfg,
	}
}

// add appends t to the arena and indexes it.
func (w *World) add(t Tile) (TileID, error) {
	id := TileID(len(w.tiles))
	if !w.index.Insert(t.Position.X, t.Position.Y, int(id)) {
		return 0, fmt.Errorf("tile %d at %v is outside the spatial index", id, t.Position)
	}
	w.tiles = append(w.tiles, t)
	w.live = append(w.live, true)
	return id, nil
}

// PlaceResource adds a resource tile co-located with whatever already stands
// at pos. Resource tiles are never walkable.
func (w *World) PlaceResource(pos Vec2, visual Visual, kind ResourceKind, amount int) (TileID, error) {
	t := Tile{Position: pos, Visual: visual, Resource: kind, Amount: amount}
	if kind == ResourceNone {
		t.Amount = 0
	}
	return w.add(t)
}

func (w *World) markWalkable(id TileID) {
	w.walkable = append(w.walkable, id)
	w.walkableSet[int(id)] = struct{}{}
}

func (w *World) alive(id TileID) bool {
	return id >= 0 && int(id) < len(w.tiles) && w.live[id]
}

// Width returns the grid width in tiles.
func (w *World) Width() int { return w.width }

// Height returns the grid height in tiles.
func (w *World) Height() int { return w.height }

// Config returns the generation parameters the world was built with.
func (w *World) Config() GenConfig { return w.cfg }

// Index exposes the spatial index for inspection.
func (w *World) Index() *quadtree.Tree { return w.index }

// Len returns the number of live tiles.
func (w *World) Len() int {
	n := 0
	for _, ok := range w.live {
		if ok {
			n++
		}
	}
	return n
}

// WalkableCount returns the number of walkable tiles.
func (w *World) WalkableCount() int {
	return len(w.walkable)
}

// IsWalkable reports whether id is in the walkable set.
func (w *World) IsWalkable(id TileID) bool {
	return w.walkableSet.Has(int(id))
}

// Walkable returns a copy of the walkable tile ids in generation order.
func (w *World) Walkable() []TileID {
	out := make([]TileID, len(w.walkable))
	copy(out, w.walkable)
	return out
}

// Tile returns a copy of the tile with the given id.
func (w *World) Tile(id TileID) (Tile, bool) {
	if !w.alive(id) {
		return Tile{}, false
	}
	return w.tiles[id], true
}

// TileAt returns the first tile indexed in the leaf containing pos.
func (w *World) TileAt(pos Vec2) (TileID, bool) {
	id, ok := w.index.Find(pos.X, pos.Y)
	return TileID(id), ok
}

// RandomWalkable samples n walkable tiles uniformly, with replacement.
func (w *World) RandomWalkable(n int) ([]TileID, error) {
	if n < 0 {
		return nil, fmt.Errorf("random walkable: negative count %d", n)
	}
	if len(w.walkable) == 0 {
		return nil, ErrNoWalkable
	}
	out := make([]TileID, n)
	for i := range out {
		out[i] = w.walkable[w.rng.Intn(len(w.walkable))]
	}
	return out, nil
}

// ClosestWalkable returns a walkable tile from a quadrant next to pos. The
// result is nearby in the partition sense, not necessarily the nearest.
func (w *World) ClosestWalkable(pos Vec2) (TileID, bool) {
	id, ok := w.index.FindAroundIn(pos.X, pos.Y, w.walkableSet, w.rng)
	return TileID(id), ok
}

// ResourceAt returns the first tile indexed alongside pos that can still be
// harvested for kind. Carryable byproducts never qualify, whatever they hold.
func (w *World) ResourceAt(pos Vec2, kind ResourceKind) (TileID, bool) {
	ids, ok := w.index.FindAll(pos.X, pos.Y)
	if !ok {
		return 0, false
	}
	for _, raw := range ids {
		id := TileID(raw)
		if !w.alive(id) {
			continue
		}
		t := w.tiles[id]
		if t.Resource == kind && t.Amount > 0 && !t.Carryable {
			return id, true
		}
	}
	return 0, false
}

// IndexOf finds the resource-bearing tile positioned exactly at pos.
func (w *World) IndexOf(pos Vec2) (TileID, bool) {
	for i, t := range w.tiles {
		if w.live[i] && t.Resource != ResourceNone && t.Position == pos {
			return TileID(i), true
		}
	}
	return 0, false
}

// Replace changes a tile's visual and carry flag in place.
func (w *World) Replace(id TileID, visual Visual, carryable bool) bool {
	if !w.alive(id) {
		return false
	}
	w.tiles[id].Visual = visual
	w.tiles[id].Carryable = carryable
	return true
}

// Deplete removes up to n units of resource from a tile and returns what is
// left.
func (w *World) Deplete(id TileID, n int) int {
	if !w.alive(id) {
		return 0
	}
	t := &w.tiles[id]
	t.Amount -= n
	if t.Amount < 0 {
		t.Amount = 0
	}
	return t.Amount
}

// Remove deletes a tile from the world and the spatial index. Other ids are
// unaffected.
func (w *World) Remove(id TileID) bool {
	if !w.alive(id) {
		return false
	}
	w.live[id] = false
	w.index.Remove(int(id))
	if w.walkableSet.Has(int(id)) {
		delete(w.walkableSet, int(id))
		kept := w.walkable[:0]
		for _, wid := range w.walkable {
			if wid != id {
				kept = append(kept, wid)
			}
		}
		w.walkable = kept
	}
	return true
}

// Selector is a selection region driven by pointer input.
type Selector interface {
	IsPressed() bool
	Contains(p Vec2) bool
}

// UpdateSelected flags every tile inside the selection while it is pressed
// and clears the flag everywhere else.
func (w *World) UpdateSelected(sel Selector) {
	pressed := sel != nil && sel.IsPressed()
	for i := range w.tiles {
		if !w.live[i] {
			continue
		}
		w.tiles[i].Selected = pressed && sel.Contains(w.tiles[i].Position)
	}
}

// SelectedCount returns how many live tiles are flagged as selected.
func (w *World) SelectedCount() int {
	n := 0
	for i, t := range w.tiles {
		if w.live[i] && t.Selected {
			n++
		}
	}
	return n
}

// Snapshot returns the render view of every live tile.
func (w *World) Snapshot() []Sprite {
	out := make([]Sprite, 0, len(w.tiles))
	for i, t := range w.tiles {
		if w.live[i] {
			out = append(out, t.Sprite())
		}
	}
	return out
}

// Counts returns how many live tiles carry each visual.
func (w *World) Counts() map[Visual]int {
	counts := make(map[Visual]int)
	for i, t := range w.tiles {
		if w.live[i] {
			counts[t.Visual]++
		}
	}
	return counts
}

// String returns a summary of the world.
func (w *World) String() string {
	return fmt.Sprintf("World(%dx%d, tiles=%d, walkable=%d)", w.width, w.height, w.Len(), w.WalkableCount())
}
