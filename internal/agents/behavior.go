// Miner behavior: two orthogonal state machines advanced once per tick.
// Behavior (idle / harvesting) decides whether the miner works; movement
// (idle / moving) is only evaluated while the miner is not working.
package agents

import (
	"math"
	"math/rand"

	"github.com/talgya/dvarcraft/internal/world"
)

// Terrain is the part of the world miners read and mutate.
type Terrain interface {
	Tile(id world.TileID) (world.Tile, bool)
	ResourceAt(pos world.Vec2, kind world.ResourceKind) (world.TileID, bool)
	ClosestWalkable(pos world.Vec2) (world.TileID, bool)
	Replace(id world.TileID, visual world.Visual, carryable bool) bool
	Deplete(id world.TileID, n int) int
}

// Byproduct returns the visual a depleted resource tile turns into.
func Byproduct(kind world.ResourceKind) world.Visual {
	switch kind {
	case world.ResourceWood:
		return world.VisualWood
	default:
		return world.VisualGrass
	}
}

// harvestTicks is how long one harvest takes. The miner's speed doubles as
// its work duration.
func harvestTicks(m *Miner) int {
	n := int(math.Round(m.Speed))
	if n < 1 {
		n = 1
	}
	return n
}

// Step advances one miner by one tick of dt seconds and returns the events
// it produced.
func Step(m *Miner, t Terrain, dt float64, cfg Config, rng *rand.Rand) []Event {
	var events []Event

	move(m, dt)

	switch b := m.Behavior.(type) {
	case Harvesting:
		if ev, done := work(m, t, b); done {
			events = append(events, ev)
		}
	default:
		m.Behavior = Idle{}
		if ev, ok := startHarvest(m, t, cfg); ok {
			events = append(events, ev)
		}
	}

	if _, idle := m.Behavior.(Idle); idle {
		if ev, ok := steer(m, t, cfg, rng); ok {
			events = append(events, ev)
		}
	}

	return events
}

// move walks the miner toward its next waypoint. Harvesting miners hold
// still; a moving miner without a waypoint drops back to idle.
func move(m *Miner, dt float64) {
	target, ok := m.Waypoint()
	if !ok {
		m.Movement = MoveIdle
		return
	}
	if m.Movement != MoveMoving || m.IsHarvesting() || dt <= 0 {
		return
	}

	delta := target.Sub(m.Tile.Position)
	dist := delta.Len()
	stride := m.Speed * dt
	if stride >= dist {
		m.Tile.Position = target
		return
	}
	m.Tile.Position = m.Tile.Position.Add(delta.Scale(stride / dist))
}

// startHarvest begins work on a qualifying resource under the miner.
func startHarvest(m *Miner, t Terrain, cfg Config) (Event, bool) {
	id, ok := t.ResourceAt(m.Tile.Position, cfg.Kind)
	if !ok {
		return Event{}, false
	}
	tile, ok := t.Tile(id)
	if !ok {
		return Event{}, false
	}

	m.Behavior = Harvesting{Kind: tile.Resource, Target: id, Remaining: harvestTicks(m)}
	return Event{Kind: EventHarvestStarted, Miner: m.ID, Tile: id, Position: tile.Position}, true
}

// work counts a harvest down and converts the target when it reaches zero.
func work(m *Miner, t Terrain, h Harvesting) (Event, bool) {
	h.Remaining--
	if h.Remaining > 0 {
		m.Behavior = h
		return Event{}, false
	}

	m.Behavior = Idle{}
	tile, ok := t.Tile(h.Target)
	if !ok {
		return Event{Kind: EventHarvestLost, Miner: m.ID, Tile: h.Target, Position: m.Tile.Position}, true
	}
	t.Deplete(h.Target, 1)
	t.Replace(h.Target, Byproduct(h.Kind), true)
	return Event{Kind: EventHarvested, Miner: m.ID, Tile: h.Target, Position: tile.Position}, true
}

// steer updates the movement state of an idle miner: arrive at the current
// waypoint, or occasionally pick a new one nearby.
func steer(m *Miner, t Terrain, cfg Config, rng *rand.Rand) (Event, bool) {
	target, ok := m.Waypoint()
	if !ok {
		if rng.Float64() >= cfg.WanderChance {
			return Event{}, false
		}
		id, found := t.ClosestWalkable(m.Tile.Position)
		if !found {
			return Event{}, false
		}
		tile, found := t.Tile(id)
		if !found {
			return Event{}, false
		}
		m.pushWaypoint(tile.Position)
		m.Movement = MoveMoving
		return Event{Kind: EventDeparted, Miner: m.ID, Tile: id, Position: tile.Position}, true
	}

	if m.Tile.Position.Dist(target) < cfg.ArrivalDistance {
		m.popWaypoint()
		m.Movement = MoveIdle
		return Event{Kind: EventArrived, Miner: m.ID, Position: target}, true
	}
	return Event{}, false
}
