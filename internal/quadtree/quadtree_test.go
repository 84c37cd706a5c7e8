package quadtree

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTree() *Tree {
	return New(Rect{X: 0, Y: 0, W: 256, H: 256}, 64)
}

func TestNew_structuralSplit(t *testing.T) {
	tree := newTestTree()
	assert.Equal(t, 16, tree.Leaves())
	assert.Equal(t, 0, tree.Len())
	assert.False(t, tree.IsLeaf())

	single := New(Rect{W: 100, H: 100}, 64)
	assert.True(t, single.IsLeaf())
	assert.Equal(t, 1, single.Leaves())
}

func TestInsert_find(t *testing.T) {
	tree := newTestTree()
	points := [][2]float64{{10, 10}, {100, 30}, {200, 200}, {30, 220}, {150, 90}}
	for id, p := range points {
		require.True(t, tree.Insert(p[0], p[1], id))
	}
	for id, p := range points {
		got, ok := tree.Find(p[0], p[1])
		require.True(t, ok)
		assert.Equal(t, id, got)
	}
	assert.Equal(t, len(points), tree.Len())
}

func TestInsert_outside(t *testing.T) {
	tree := newTestTree()
	assert.False(t, tree.Insert(-1, 10, 7))
	assert.False(t, tree.Insert(10, 257, 7))
	assert.Equal(t, 0, tree.Len())

	_, ok := tree.Find(-1, 10)
	assert.False(t, ok)
	_, ok = tree.FindAll(300, 300)
	assert.False(t, ok)
}

func TestInsert_boundaryGoesToFirstBranch(t *testing.T) {
	tree := newTestTree()
	// (128, 128) touches all four top-level quadrants; branch 0 wins.
	require.True(t, tree.Insert(128, 128, 1))
	ids, ok := tree.FindAll(128, 128)
	require.True(t, ok)
	assert.Equal(t, []int{1}, ids)
	ids, ok = tree.FindAll(100, 100)
	require.True(t, ok)
	assert.Equal(t, []int{1}, ids)
}

func TestFind_firstInsertedWins(t *testing.T) {
	tree := newTestTree()
	tree.Insert(10, 10, 4)
	tree.Insert(10, 10, 9)
	tree.Insert(20, 20, 2)

	id, ok := tree.Find(10, 10)
	require.True(t, ok)
	assert.Equal(t, 4, id)

	ids, ok := tree.FindAll(10, 10)
	require.True(t, ok)
	assert.Equal(t, []int{4, 9, 2}, ids)

	ids[0] = 99
	again, _ := tree.FindAll(10, 10)
	assert.Equal(t, 4, again[0], "FindAll must return a copy")
}

func TestFind_emptyLeaf(t *testing.T) {
	tree := newTestTree()
	tree.Insert(10, 10, 1)
	_, ok := tree.Find(200, 200)
	assert.False(t, ok)
}

func TestRemove(t *testing.T) {
	tree := newTestTree()
	tree.Insert(10, 10, 1)
	tree.Insert(12, 12, 2)
	tree.Insert(200, 200, 3)

	tree.Remove(1)
	ids, ok := tree.FindAll(10, 10)
	require.True(t, ok)
	assert.NotContains(t, ids, 1)
	assert.Equal(t, []int{2}, ids)

	tree.Remove(42)
	tree.Remove(1)
	assert.Equal(t, 2, tree.Len())

	tree.Remove(2)
	_, ok = tree.FindAll(10, 10)
	assert.False(t, ok)
}

func TestFindAroundIn(t *testing.T) {
	tree := newTestTree()
	tree.Insert(10, 10, 1)  // leaf [0,64]x[0,64]
	tree.Insert(20, 20, 2)  // same leaf
	tree.Insert(10, 100, 3) // sibling leaf [0,64]x[64,128]
	tree.Insert(200, 200, 4)

	rng := rand.New(rand.NewSource(1))
	subset := Set{1: {}, 2: {}, 3: {}, 4: {}}
	for i := 0; i < 20; i++ {
		id, ok := tree.FindAroundIn(10, 10, subset, rng)
		require.True(t, ok)
		assert.Equal(t, 3, id, "nearest qualifying sibling is the adjacent leaf")
	}

	// Without 3 in the subset the search climbs to the top level.
	subset = Set{1: {}, 2: {}, 4: {}}
	id, ok := tree.FindAroundIn(10, 10, subset, rng)
	require.True(t, ok)
	assert.Equal(t, 4, id)

	// Members of the position's own leaf never qualify.
	_, ok = tree.FindAroundIn(10, 10, Set{1: {}, 2: {}}, rng)
	assert.False(t, ok)

	_, ok = tree.FindAroundIn(-5, 10, subset, rng)
	assert.False(t, ok)
}

func TestFindAroundIn_uniformOverQualifying(t *testing.T) {
	tree := newTestTree()
	tree.Insert(100, 10, 1)  // [64,128]x[0,64]
	tree.Insert(100, 100, 2) // [64,128]x[64,128]
	tree.Insert(10, 100, 3)  // [0,64]x[64,128]

	rng := rand.New(rand.NewSource(7))
	seen := map[int]int{}
	for i := 0; i < 300; i++ {
		id, ok := tree.FindAroundIn(10, 10, Set{1: {}, 2: {}, 3: {}}, rng)
		require.True(t, ok)
		seen[id]++
	}
	assert.Len(t, seen, 3)
	for id, n := range seen {
		assert.Greater(t, n, 50, "id %d sampled too rarely", id)
	}
}

func TestString(t *testing.T) {
	tree := New(Rect{W: 128, H: 128}, 64)
	tree.Insert(1, 1, 0)
	out := tree.String()
	assert.Equal(t, 5, strings.Count(out, "QT "))
	assert.True(t, strings.HasPrefix(out, "QT 0, 0 -> 128, 128 (4/0)"))
}
