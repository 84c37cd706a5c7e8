package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/dvarcraft/internal/world"
)

func TestUpdate_edges(t *testing.T) {
	s := New()
	assert.False(t, s.IsPressed())
	assert.True(t, s.Released)

	s.Update(world.Vec2{X: 10, Y: 20}, true)
	assert.True(t, s.IsPressed())
	assert.True(t, s.JustPressed)
	assert.False(t, s.Released)
	assert.Equal(t, StateSelecting, s.State)
	assert.Equal(t, world.Vec2{X: 10, Y: 20}, s.Coords[0])

	s.Update(world.Vec2{X: 110, Y: 20}, true)
	assert.False(t, s.JustPressed)
	assert.Equal(t, world.Vec2{X: 10, Y: 20}, s.Coords[0], "anchor stays put while dragging")
	assert.Equal(t, world.Vec2{X: 110, Y: 20}, s.Coords[2])

	s.Update(world.Vec2{X: 500, Y: 500}, false)
	assert.False(t, s.IsPressed())
	assert.True(t, s.Released)
	assert.Equal(t, StateConfirmed, s.State)
	assert.Equal(t, world.Vec2{X: 110, Y: 20}, s.Coords[2], "release keeps the last dragged corner")
}

func TestContains(t *testing.T) {
	s := New()
	s.Update(world.Vec2{X: 0, Y: 0}, true)
	s.Update(world.Vec2{X: 100, Y: 0}, true)

	assert.True(t, s.Contains(world.Vec2{X: 50, Y: 0}))
	assert.True(t, s.Contains(world.Vec2{X: 50, Y: 10}))
	assert.True(t, s.Contains(world.Vec2{X: 50, Y: -10}))
	assert.False(t, s.Contains(world.Vec2{X: 50, Y: 40}))
	assert.False(t, s.Contains(world.Vec2{X: -10, Y: 0}))
	assert.False(t, s.Contains(world.Vec2{X: 110, Y: 0}))
}

func TestContains_zeroArea(t *testing.T) {
	s := New()
	s.Update(world.Vec2{X: 5, Y: 5}, true)
	assert.False(t, s.Contains(world.Vec2{X: 300, Y: -40}))
	assert.False(t, s.Contains(world.Vec2{X: 5, Y: 5}))
}

func TestTop_sameCorner(t *testing.T) {
	p := world.Vec2{X: 3, Y: 7}
	got := top(p, p)
	assert.InDelta(t, p.X, got.X, 1e-9)
	assert.InDelta(t, p.Y, got.Y, 1e-9)
}

func TestSelectsWorldTiles(t *testing.T) {
	cfg := world.DefaultGenConfig()
	cfg.TreeChance = 0
	w, err := world.Generate(world.NoiseHeightmap(4, 4, 1), cfg)
	if !assert.NoError(t, err) {
		return
	}

	s := New()
	all := w.Snapshot()
	// A drag far away from the map selects nothing.
	s.Update(world.Vec2{X: -1000, Y: -1000}, true)
	s.Update(world.Vec2{X: -900, Y: -1000}, true)
	w.UpdateSelected(s)
	for _, sp := range w.Snapshot() {
		assert.Zero(t, sp.Highlight)
	}

	// A drag through the first tile selects it.
	first := all[0].Position
	s = New()
	s.Update(first.Add(world.Vec2{X: -20}), true)
	s.Update(first.Add(world.Vec2{X: 20}), true)
	w.UpdateSelected(s)
	assert.Equal(t, world.HighlightSelected, w.Snapshot()[0].Highlight)

	s.Update(first, false)
	w.UpdateSelected(s)
	assert.Zero(t, w.Snapshot()[0].Highlight)
}

func TestCancel(t *testing.T) {
	s := New()
	s.Cancel()
	assert.Equal(t, StateInactive, s.State, "nothing to cancel")

	s.Update(world.Vec2{X: 0, Y: 0}, true)
	s.Update(world.Vec2{X: 100, Y: 0}, true)
	require.True(t, s.Contains(world.Vec2{X: 50, Y: 0}))

	s.Cancel()
	assert.Equal(t, StateCancelled, s.State)
	assert.False(t, s.IsPressed())
	assert.True(t, s.Released)

	// Still held: the drag does not restart.
	s.Update(world.Vec2{X: 200, Y: 0}, true)
	assert.False(t, s.IsPressed())
	assert.False(t, s.JustPressed)
	assert.Equal(t, StateCancelled, s.State)

	// Released, then pressed again: a fresh drag.
	s.Update(world.Vec2{X: 200, Y: 0}, false)
	assert.Equal(t, StateCancelled, s.State)
	s.Update(world.Vec2{X: 300, Y: 0}, true)
	assert.True(t, s.IsPressed())
	assert.True(t, s.JustPressed)
	assert.Equal(t, StateSelecting, s.State)
	assert.Equal(t, world.Vec2{X: 300, Y: 0}, s.Coords[0])
}
