package persistence

import (
	"database/sql"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/dvarcraft/internal/agents"
	"github.com/talgya/dvarcraft/internal/engine"
	"github.com/talgya/dvarcraft/internal/world"
)

func openJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestJournal_events(t *testing.T) {
	j := openJournal(t)
	run, err := j.StartRun(42, 8, 8, 3)
	require.NoError(t, err)
	assert.Equal(t, run, j.RunID())

	events := []engine.Event{
		{Tick: 1, Description: "starts cutting", Category: "harvest", Miner: "a", Tile: 4},
		{Tick: 2, Description: "heads out", Category: "movement", Miner: "b", Tile: 9},
		{Tick: 5, Description: "felled", Category: "harvest", Miner: "a", Tile: 4},
	}
	require.NoError(t, j.SaveEvents(events))
	require.NoError(t, j.SaveEvents(nil))

	recent, err := j.RecentEvents(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, events[2], recent[0])
	assert.Equal(t, events[1], recent[1])

	n, err := j.CountEvents("harvest")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	runs, err := j.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run.String(), runs[0].ID)
	assert.Equal(t, int64(42), runs[0].Seed)
	assert.Equal(t, 3, runs[0].Miners)
}

func TestJournal_runsAreSeparate(t *testing.T) {
	j := openJournal(t)
	_, err := j.StartRun(1, 4, 4, 1)
	require.NoError(t, err)
	require.NoError(t, j.SaveEvents([]engine.Event{{Tick: 1, Category: "harvest"}}))
	require.NoError(t, j.SaveMeta("last_tick", "1"))

	_, err = j.StartRun(2, 4, 4, 1)
	require.NoError(t, err)
	recent, err := j.RecentEvents(10)
	require.NoError(t, err)
	assert.Empty(t, recent)

	_, err = j.GetMeta("last_tick")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	runs, err := j.Runs()
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestJournal_meta(t *testing.T) {
	j := openJournal(t)
	_, err := j.StartRun(1, 4, 4, 1)
	require.NoError(t, err)

	require.NoError(t, j.SaveMeta("last_tick", "10"))
	require.NoError(t, j.SaveMeta("last_tick", "20"))
	v, err := j.GetMeta("last_tick")
	require.NoError(t, err)
	assert.Equal(t, "20", v)
}

func TestJournal_flush(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.SetGray(x, y, color.Gray{Y: 80})
		}
	}
	cfg := world.DefaultGenConfig()
	cfg.TreeChance = 0
	w, err := world.Generate(img, cfg)
	require.NoError(t, err)
	ground, _ := w.Tile(0)
	_, err = w.PlaceResource(ground.Position, world.VisualTree, world.ResourceWood, 2)
	require.NoError(t, err)

	mcfg := agents.DefaultConfig()
	mcfg.WanderChance = 0
	miner := &agents.Miner{
		ID:       uuid.New(),
		Tile:     world.Tile{Position: ground.Position, Visual: world.VisualMiner},
		Behavior: agents.Idle{},
		Speed:    1,
	}
	sim := engine.NewSimulation(w, agents.NewCrew([]*agents.Miner{miner}, mcfg, 1))
	sim.Tick(1, 0.016, engine.Input{})
	sim.Tick(2, 0.016, engine.Input{})

	j := openJournal(t)
	_, err = j.StartRun(cfg.Seed, 2, 2, 1)
	require.NoError(t, err)
	require.NoError(t, j.Flush(sim))

	n, err := j.CountEvents("harvest")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	tick, err := j.GetMeta("last_tick")
	require.NoError(t, err)
	assert.Equal(t, "2", tick)

	stats, err := j.GetMeta("stats")
	require.NoError(t, err)
	assert.Contains(t, stats, `"harvests":1`)

	// Drained events are not journaled twice.
	require.NoError(t, j.Flush(sim))
	n, err = j.CountEvents("harvest")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
