// Simulation ties together the world, the miners and the selection and runs
// them each tick.
package engine

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/talgya/dvarcraft/internal/agents"
	"github.com/talgya/dvarcraft/internal/selection"
	"github.com/talgya/dvarcraft/internal/world"
)

// maxRecentEvents bounds the in-memory event log.
const maxRecentEvents = 1000

// Input is what the presentation layer reports each frame.
type Input struct {
	Pointer world.Vec2 // Cursor position in world space
	Held    bool       // Primary button held
	Cancel  bool       // Abandon the current drag
}

// Simulation holds the complete simulation state. One Tick is one critical
// section: Frame may be called from another goroutine and always observes a
// completed tick.
type Simulation struct {
	mu sync.Mutex

	World     *world.World
	Crew      *agents.Crew
	Selection *selection.Selection

	Events   []Event // Recent events, oldest first
	pending  []Event // Not yet drained by the journal
	LastTick uint64  // Most recent tick processed

	// Input supplies pointer state when ticks are driven by the Engine.
	Input func(tick uint64) Input

	Stats SimStats
}

// Event is a notable occurrence in the simulation.
type Event struct {
	Tick        uint64 `json:"tick" db:"tick"`
	Description string `json:"description" db:"description"`
	Category    string `json:"category" db:"category"` // "harvest", "movement", ...
	Miner       string `json:"miner" db:"miner"`
	Tile        int    `json:"tile" db:"tile"`
}

// SimStats tracks aggregate world statistics.
type SimStats struct {
	Tiles    int           `json:"tiles"`
	Walkable int           `json:"walkable"`
	Trees    int           `json:"trees"`
	Wood     int           `json:"wood"`
	Selected int           `json:"selected"`
	Harvests int           `json:"harvests"`
	Miners   agents.Census `json:"miners"`
}

// Frame is a read-only snapshot for the renderer.
type Frame struct {
	Tick   uint64         `json:"tick"`
	Tiles  []world.Sprite `json:"tiles"`
	Miners []world.Sprite `json:"miners"`
}

// NewSimulation creates a Simulation from generated components.
func NewSimulation(w *world.World, crew *agents.Crew) *Simulation {
	s := &Simulation{
		World:     w,
		Crew:      crew,
		Selection: selection.New(),
	}
	s.updateStats()
	return s
}

// Tick advances the simulation by one frame: selection first, then the
// miners, then the tile selection flags.
func (s *Simulation) Tick(tick uint64, dt float64, in Input) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.LastTick = tick
	s.Selection.Update(in.Pointer, in.Held)
	if in.Cancel {
		s.Selection.Cancel()
	}

	for _, ev := range s.Crew.Update(s.World, dt) {
		s.record(tick, ev)
	}

	s.World.UpdateSelected(s.Selection)
	s.updateStats()
}

// TickFromEngine adapts Tick to Engine.OnTick, pulling pointer state from
// s.Input.
func (s *Simulation) TickFromEngine(tick uint64, dt float64) {
	var in Input
	if s.Input != nil {
		in = s.Input(tick)
	}
	s.Tick(tick, dt, in)
}

func (s *Simulation) record(tick uint64, ev agents.Event) {
	e := Event{
		Tick:  tick,
		Miner: ev.Miner.String(),
		Tile:  int(ev.Tile),
	}
	switch ev.Kind {
	case agents.EventHarvestStarted:
		e.Category = "harvest"
		e.Description = fmt.Sprintf("miner %s starts cutting tree %d at %v", short(ev.Miner.String()), ev.Tile, ev.Position)
	case agents.EventHarvested:
		e.Category = "harvest"
		e.Description = fmt.Sprintf("miner %s felled tree %d at %v", short(ev.Miner.String()), ev.Tile, ev.Position)
		s.Stats.Harvests++
	case agents.EventHarvestLost:
		e.Category = "harvest"
		e.Description = fmt.Sprintf("miner %s lost tree %d", short(ev.Miner.String()), ev.Tile)
	case agents.EventDeparted:
		e.Category = "movement"
		e.Description = fmt.Sprintf("miner %s heads for %v", short(ev.Miner.String()), ev.Position)
	case agents.EventArrived:
		e.Category = "movement"
		e.Tile = -1
		e.Description = fmt.Sprintf("miner %s arrived at %v", short(ev.Miner.String()), ev.Position)
	default:
		return
	}

	s.Events = append(s.Events, e)
	if len(s.Events) > maxRecentEvents {
		s.Events = s.Events[len(s.Events)-maxRecentEvents:]
	}
	s.pending = append(s.pending, e)
}

func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// DrainEvents returns every event recorded since the previous call.
func (s *Simulation) DrainEvents() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.pending
	s.pending = nil
	return out
}

// Frame returns a snapshot of every tile and miner sprite.
func (s *Simulation) Frame() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Frame{
		Tick:   s.LastTick,
		Tiles:  s.World.Snapshot(),
		Miners: s.Crew.Sprites(),
	}
}

// CurrentTick returns the most recent tick processed.
func (s *Simulation) CurrentTick() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.LastTick
}

// Snapshot returns the current statistics.
func (s *Simulation) Snapshot() SimStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Stats
}

// Report logs a summary of the simulation state.
func (s *Simulation) Report(tick uint64) {
	st := s.Snapshot()
	slog.Info("report",
		"tick", tick,
		"tiles", st.Tiles,
		"trees", st.Trees,
		"wood", st.Wood,
		"harvests", st.Harvests,
		"idle", st.Miners.Idle,
		"moving", st.Miners.Moving,
		"harvesting", st.Miners.Harvesting,
		"selected", st.Selected,
	)
}

func (s *Simulation) updateStats() {
	counts := s.World.Counts()
	s.Stats.Tiles = s.World.Len()
	s.Stats.Walkable = s.World.WalkableCount()
	s.Stats.Trees = counts[world.VisualTree]
	s.Stats.Wood = counts[world.VisualWood]
	s.Stats.Selected = s.World.SelectedCount()
	s.Stats.Miners = s.Crew.Census()
}
