package agents

import (
	"math/rand"

	"github.com/talgya/dvarcraft/internal/world"
)

// Crew owns every miner in the simulation and the randomness that drives
// their wandering.
type Crew struct {
	Miners []*Miner

	cfg Config
	rng *rand.Rand
}

// NewCrew wraps a set of miners.
func NewCrew(miners []*Miner, cfg Config, seed int64) *Crew {
	return &Crew{
		Miners: miners,
		cfg:    cfg,
		rng:    rand.New(rand.NewSource(seed + 400)),
	}
}

// Config returns the tuning the crew runs with.
func (c *Crew) Config() Config {
	return c.cfg
}

// Update advances every miner by one tick, in order.
func (c *Crew) Update(t Terrain, dt float64) []Event {
	var events []Event
	for _, m := range c.Miners {
		events = append(events, Step(m, t, dt, c.cfg, c.rng)...)
	}
	return events
}

// Sprites returns the render view of every miner.
func (c *Crew) Sprites() []world.Sprite {
	out := make([]world.Sprite, len(c.Miners))
	for i, m := range c.Miners {
		out[i] = m.Tile.Sprite()
	}
	return out
}

// Census counts miners per state.
type Census struct {
	Idle       int `json:"idle"`
	Moving     int `json:"moving"`
	Harvesting int `json:"harvesting"`
}

// Census returns how many miners are idle, walking, or working.
func (c *Crew) Census() Census {
	var cs Census
	for _, m := range c.Miners {
		switch {
		case m.IsHarvesting():
			cs.Harvesting++
		case m.Movement == MoveMoving:
			cs.Moving++
		default:
			cs.Idle++
		}
	}
	return cs
}
