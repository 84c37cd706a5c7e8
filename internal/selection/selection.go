// Package selection tracks the drag-to-select region. The region is an
// isometric parallelogram spanned by the press point and the current pointer,
// tested as two triangles.
package selection

import (
	"log/slog"

	"github.com/talgya/dvarcraft/internal/world"
)

// Isometric slopes used to derive the two free corners of the region.
const (
	slopeA = 0.52056705
	slopeB = 1.93912501
)

// State is the lifecycle of a drag.
type State uint8

const (
	StateInactive State = iota
	StateSelecting
	StateConfirmed
	StateCancelled
)

// Selection is the current selection region plus button edge flags.
type Selection struct {
	Coords      [4]world.Vec2
	Pressed     bool
	JustPressed bool
	Released    bool
	State       State

	suppress bool // Button still down after Cancel; ignored until released
}

// New returns an inactive selection.
func New() *Selection {
	return &Selection{Released: true}
}

// IsPressed reports whether a drag is in progress.
func (s *Selection) IsPressed() bool {
	return s.Pressed
}

// Update advances the selection with the pointer position and whether the
// primary button is held this frame.
func (s *Selection) Update(pointer world.Vec2, held bool) {
	wasHeld := s.Pressed
	s.JustPressed = false

	if s.suppress {
		s.suppress = held
		return
	}

	if held {
		s.Coords[2] = pointer
		if !wasHeld {
			s.Coords[0] = pointer
			s.JustPressed = true
			s.State = StateSelecting
			slog.Debug("selection started", "at", pointer)
		}
		s.Pressed = true
		s.Released = false
	} else if wasHeld {
		s.Pressed = false
		s.Released = true
		s.State = StateConfirmed
		slog.Debug("selection released", "at", s.Coords[2])
	}

	s.Coords[1] = top(s.Coords[0], s.Coords[2])
	s.Coords[3] = top(s.Coords[2], s.Coords[0])
}

// Cancel abandons a drag in progress. The region stops selecting at once and
// the button must be released before a new drag can start.
func (s *Selection) Cancel() {
	if !s.Pressed {
		return
	}
	s.suppress = true
	s.Pressed = false
	s.Released = true
	s.State = StateCancelled
	slog.Debug("selection cancelled", "at", s.Coords[2])
}

// Contains reports whether p lies inside the selection region.
func (s *Selection) Contains(p world.Vec2) bool {
	c := s.Coords
	return insideTriangle(c[0], c[1], c[2], p) || insideTriangle(c[0], c[2], c[3], p)
}

// top returns the corner reached from a along one isometric axis and from b
// along the other.
func top(a, b world.Vec2) world.Vec2 {
	x := (b.X - b.Y*slopeB + a.Y*slopeB + a.X*slopeA*slopeB) / (1 + slopeA*slopeB)
	y := a.Y - x*slopeA + a.X*slopeA
	return world.Vec2{X: x, Y: y}
}

// lineSide returns the cross product of (b - a) and (p - a). Its sign tells
// which side of the line ab the point is on.
func lineSide(a, b, p world.Vec2) float64 {
	return (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
}

// insideTriangle reports whether p is on the same side of all three edges.
// Points on an edge count as inside; a triangle without area holds nothing.
func insideTriangle(a, b, c, p world.Vec2) bool {
	if lineSide(a, b, c) == 0 {
		return false
	}
	ab := lineSide(a, b, p) >= 0
	bc := lineSide(b, c, p) >= 0
	ca := lineSide(c, a, p) >= 0
	return ab == bc && bc == ca
}
