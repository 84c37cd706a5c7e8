// Package agents provides the miner data model and its per-tick state
// machines.
package agents

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/talgya/dvarcraft/internal/world"
)

// Movement is whether a miner is walking toward a waypoint.
type Movement uint8

const (
	MoveIdle Movement = iota
	MoveMoving
)

func (m Movement) String() string {
	if m == MoveMoving {
		return "moving"
	}
	return "idle"
}

// Behavior is what a miner is doing. The concrete types are Idle and
// Harvesting; each carries the data its state needs.
type Behavior interface {
	behavior()
	String() string
}

// Idle is a miner free to wander or start work.
type Idle struct{}

func (Idle) behavior() {}
func (Idle) String() string { return "idle" }

// Harvesting is a miner working a resource tile. Remaining counts the ticks
// left until the tile is turned into its byproduct.
type Harvesting struct {
	Kind      world.ResourceKind
	Target    world.TileID
	Remaining int
}

func (Harvesting) behavior() {}

func (h Harvesting) String() string {
	if h.Kind == world.ResourceWood {
		return fmt.Sprintf("cutting tree %d (%d left)", h.Target, h.Remaining)
	}
	return fmt.Sprintf("harvesting %s at %d (%d left)", h.Kind, h.Target, h.Remaining)
}

// Miner is an autonomous worker. Its Tile is the sprite record drawn for it.
type Miner struct {
	ID        uuid.UUID
	Tile      world.Tile
	Movement  Movement
	Behavior  Behavior
	Waypoints []world.Vec2 // Last element is the next destination
	Speed     float64      // World units per second
}

// Position returns where the miner stands.
func (m *Miner) Position() world.Vec2 {
	return m.Tile.Position
}

// Waypoint returns the next destination, if any.
func (m *Miner) Waypoint() (world.Vec2, bool) {
	if len(m.Waypoints) == 0 {
		return world.Vec2{}, false
	}
	return m.Waypoints[len(m.Waypoints)-1], true
}

func (m *Miner) pushWaypoint(p world.Vec2) {
	m.Waypoints = append(m.Waypoints, p)
}

func (m *Miner) popWaypoint() {
	if len(m.Waypoints) > 0 {
		m.Waypoints = m.Waypoints[:len(m.Waypoints)-1]
	}
}

// IsHarvesting reports whether the miner is working a tile.
func (m *Miner) IsHarvesting() bool {
	_, ok := m.Behavior.(Harvesting)
	return ok
}

// Config holds the tunables shared by every miner.
type Config struct {
	Speed           float64            // Units per second; also the harvest length in ticks
	WanderChance    float64            // Per-tick chance an idle miner picks a new destination
	ArrivalDistance float64            // A waypoint closer than this counts as reached
	Kind            world.ResourceKind // What miners harvest
}

// DefaultConfig returns the standard miner tuning.
func DefaultConfig() Config {
	return Config{
		Speed:           40,
		WanderChance:    0.2,
		ArrivalDistance: 8,
		Kind:            world.ResourceWood,
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	switch {
	case c.Speed <= 0:
		return fmt.Errorf("miner speed %g: must be positive", c.Speed)
	case c.WanderChance < 0 || c.WanderChance > 1:
		return fmt.Errorf("wander chance %g: must be within [0, 1]", c.WanderChance)
	case c.ArrivalDistance <= 0:
		return fmt.Errorf("arrival distance %g: must be positive", c.ArrivalDistance)
	case c.Kind == world.ResourceNone:
		return fmt.Errorf("miners need a resource kind to harvest")
	}
	return nil
}

// EventKind classifies what happened to a miner during a tick.
type EventKind uint8

const (
	EventHarvestStarted EventKind = iota
	EventHarvested
	EventHarvestLost // Target vanished before the work finished
	EventDeparted
	EventArrived
)

func (k EventKind) String() string {
	switch k {
	case EventHarvestStarted:
		return "harvest_started"
	case EventHarvested:
		return "harvested"
	case EventHarvestLost:
		return "harvest_lost"
	case EventDeparted:
		return "departed"
	case EventArrived:
		return "arrived"
	default:
		return "unknown"
	}
}

// Event is a notable change in a miner's state.
type Event struct {
	Kind     EventKind
	Miner    uuid.UUID
	Tile     world.TileID // Harvest events only
	Position world.Vec2
}
