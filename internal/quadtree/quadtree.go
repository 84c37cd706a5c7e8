// Package quadtree provides a fixed-shape spatial index over world space.
// The tree is split structurally at construction time; afterwards only leaf
// membership changes. Nodes store integer identifiers, never the data they
// name, so ownership stays with the caller.
package quadtree

import (
	"fmt"
	"math/rand"
	"strings"
)

// Rect is an axis-aligned rectangle anchored at its minimum corner.
type Rect struct {
	X, Y float64
	W, H float64
}

// Contains reports whether (x, y) lies inside r. All four edges are inclusive,
// so a point on a shared edge belongs to every rectangle touching it.
func (r Rect) Contains(x, y float64) bool {
	return r.X <= x && r.Y <= y && r.X+r.W >= x && r.Y+r.H >= y
}

// Set is a membership set of identifiers.
type Set map[int]struct{}

// Has reports whether id is in the set.
func (s Set) Has(id int) bool {
	_, ok := s[id]
	return ok
}

// Tree is a node of the quadtree. A node is either a leaf holding members or
// an internal node with exactly four branches.
type Tree struct {
	bounds   Rect
	minWidth float64
	branches []*Tree

	members []int // insertion order
	present Set
}

// New builds a tree over bounds, quartering every node whose half width is
// still at least minWidth.
func New(bounds Rect, minWidth float64) *Tree {
	t := &Tree{bounds: bounds, minWidth: minWidth}
	t.split()
	return t
}

func (t *Tree) split() {
	hw, hh := t.bounds.W/2, t.bounds.H/2
	if minWidthReached(hw, t.minWidth) {
		t.present = make(Set)
		return
	}
	x, y := t.bounds.X, t.bounds.Y
	// Branch order is fixed; boundary ties resolve to the earliest branch.
	quads := [4]Rect{
		{X: x, Y: y, W: hw, H: hh},
		{X: x, Y: y + hh, W: hw, H: hh},
		{X: x + hw, Y: y, W: hw, H: hh},
		{X: x + hw, Y: y + hh, W: hw, H: hh},
	}
	t.branches = make([]*Tree, 0, 4)
	for _, q := range quads {
		b := &Tree{bounds: q, minWidth: t.minWidth}
		b.split()
		t.branches = append(t.branches, b)
	}
}

func minWidthReached(halfWidth, minWidth float64) bool {
	return minWidth <= 0 || halfWidth < minWidth
}

// Bounds returns the rectangle covered by the node.
func (t *Tree) Bounds() Rect {
	return t.bounds
}

// IsLeaf reports whether the node has no branches.
func (t *Tree) IsLeaf() bool {
	return len(t.branches) == 0
}

// Insert records id in the leaf containing (x, y). It returns false when the
// point is outside the tree.
func (t *Tree) Insert(x, y float64, id int) bool {
	if !t.bounds.Contains(x, y) {
		return false
	}
	if t.IsLeaf() {
		t.members = append(t.members, id)
		t.present[id] = struct{}{}
		return true
	}
	for _, b := range t.branches {
		if b.Insert(x, y, id) {
			return true
		}
	}
	return false
}

// leaf returns the leaf containing (x, y), or nil when outside the tree.
func (t *Tree) leaf(x, y float64) *Tree {
	if !t.bounds.Contains(x, y) {
		return nil
	}
	node := t
	for !node.IsLeaf() {
		next := node.branchContaining(x, y)
		if next == nil {
			return nil
		}
		node = next
	}
	return node
}

func (t *Tree) branchContaining(x, y float64) *Tree {
	for _, b := range t.branches {
		if b.bounds.Contains(x, y) {
			return b
		}
	}
	return nil
}

// Find returns the first member inserted into the leaf containing (x, y).
func (t *Tree) Find(x, y float64) (int, bool) {
	l := t.leaf(x, y)
	if l == nil || len(l.members) == 0 {
		return 0, false
	}
	return l.members[0], true
}

// FindAll returns a copy of every member of the leaf containing (x, y), in
// insertion order.
func (t *Tree) FindAll(x, y float64) ([]int, bool) {
	l := t.leaf(x, y)
	if l == nil || len(l.members) == 0 {
		return nil, false
	}
	out := make([]int, len(l.members))
	copy(out, l.members)
	return out, true
}

// FindAroundIn picks a random member of subset from a branch next to the one
// containing (x, y). The deepest level with a qualifying sibling wins, so the
// result comes from the smallest neighbouring quadrant that has one. Among the
// qualifying siblings one is chosen uniformly, then one member of its
// intersection with subset is chosen uniformly.
//
// The search runs bottom-up on purpose: recurse into the containing branch
// first and only fall back to this level's siblings when it finds nothing.
// Checking siblings before recursing would hand back a far quadrant of the
// root whenever one holds a member.
func (t *Tree) FindAroundIn(x, y float64, subset Set, rng *rand.Rand) (int, bool) {
	if !t.bounds.Contains(x, y) || t.IsLeaf() {
		return 0, false
	}

	var inside *Tree
	var siblings []*Tree
	for _, b := range t.branches {
		if b.bounds.Contains(x, y) {
			if inside == nil {
				inside = b
			}
			continue
		}
		siblings = append(siblings, b)
	}

	if inside != nil {
		if id, ok := inside.FindAroundIn(x, y, subset, rng); ok {
			return id, true
		}
	}

	var candidates [][]int
	for _, s := range siblings {
		if ids := s.collect(subset, nil); len(ids) > 0 {
			candidates = append(candidates, ids)
		}
	}
	if len(candidates) == 0 {
		return 0, false
	}
	pick := candidates[rng.Intn(len(candidates))]
	return pick[rng.Intn(len(pick))], true
}

// collect appends every member of the subtree that is also in subset.
func (t *Tree) collect(subset Set, out []int) []int {
	if t.IsLeaf() {
		for _, id := range t.members {
			if subset.Has(id) {
				out = append(out, id)
			}
		}
		return out
	}
	for _, b := range t.branches {
		out = b.collect(subset, out)
	}
	return out
}

// Remove deletes id from every leaf holding it. Absent ids are ignored.
func (t *Tree) Remove(id int) {
	if t.IsLeaf() {
		if !t.present.Has(id) {
			return
		}
		delete(t.present, id)
		kept := t.members[:0]
		for _, m := range t.members {
			if m != id {
				kept = append(kept, m)
			}
		}
		t.members = kept
		return
	}
	for _, b := range t.branches {
		b.Remove(id)
	}
}

// Len returns the number of members stored under the node.
func (t *Tree) Len() int {
	if t.IsLeaf() {
		return len(t.members)
	}
	n := 0
	for _, b := range t.branches {
		n += b.Len()
	}
	return n
}

// Leaves returns the number of leaves under the node.
func (t *Tree) Leaves() int {
	if t.IsLeaf() {
		return 1
	}
	n := 0
	for _, b := range t.branches {
		n += b.Leaves()
	}
	return n
}

// String renders the node and its branches, one line per node.
func (t *Tree) String() string {
	var sb strings.Builder
	t.write(&sb, 0)
	return sb.String()
}

func (t *Tree) write(sb *strings.Builder, level int) {
	fmt.Fprintf(sb, "%sQT %g, %g -> %g, %g (%d/%d)\n",
		strings.Repeat("\t", level),
		t.bounds.X, t.bounds.Y, t.bounds.W, t.bounds.H,
		len(t.branches), len(t.members))
	for _, b := range t.branches {
		b.write(sb, level+1)
	}
}
