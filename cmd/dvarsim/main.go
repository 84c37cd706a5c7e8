// Command dvarsim runs the Dvarcraft simulation headless: it builds a world
// from a heightmap, drops a crew of miners on it and ticks until stopped.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/dustin/go-humanize"

	"github.com/talgya/dvarcraft/internal/agents"
	"github.com/talgya/dvarcraft/internal/config"
	"github.com/talgya/dvarcraft/internal/engine"
	"github.com/talgya/dvarcraft/internal/entropy"
	"github.com/talgya/dvarcraft/internal/persistence"
	"github.com/talgya/dvarcraft/internal/world"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (defaults are used when empty)")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Configuration ─────────────────────────────────────────────────
	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			slog.Error("failed to load config", "error", err)
			os.Exit(1)
		}
	}
	if cfg.Seed == 0 {
		cfg.Seed = entropy.NewClient(os.Getenv("RANDOM_ORG_API_KEY")).Seed(ctx)
		slog.Info("drew random seed", "seed", cfg.Seed)
	}

	// ── World ─────────────────────────────────────────────────────────
	var img image.Image
	if cfg.World.Heightmap != "" {
		var err error
		img, err = world.LoadHeightmap(cfg.World.Heightmap)
		if err != nil {
			slog.Error("failed to load heightmap", "error", err)
			os.Exit(1)
		}
	} else {
		img = world.NoiseHeightmap(cfg.World.Width, cfg.World.Height, cfg.Seed)
	}

	w, err := world.Generate(img, cfg.Gen())
	if err != nil {
		slog.Error("failed to generate world", "error", err)
		os.Exit(1)
	}
	for v, c := range w.Counts() {
		slog.Info("terrain", "type", v, "count", c)
	}

	// ── Miners ────────────────────────────────────────────────────────
	miners, err := agents.NewSpawner(cfg.Seed, cfg.Crew()).Spawn(w, cfg.Miners.Count)
	if err != nil {
		slog.Error("failed to spawn miners", "error", err)
		os.Exit(1)
	}
	sim := engine.NewSimulation(w, agents.NewCrew(miners, cfg.Crew(), cfg.Seed))

	slog.Info("world ready",
		"seed", cfg.Seed,
		"size", fmt.Sprintf("%dx%d", w.Width(), w.Height()),
		"tiles", w.Len(),
		"walkable", w.WalkableCount(),
		"miners", len(miners),
	)

	// ── Journal ───────────────────────────────────────────────────────
	var journal *persistence.Journal
	if cfg.DBPath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			slog.Error("failed to create data directory", "error", err)
			os.Exit(1)
		}
		journal, err = persistence.Open(cfg.DBPath)
		if err != nil {
			slog.Error("failed to open journal", "error", err)
			os.Exit(1)
		}
		defer journal.Close()

		run, err := journal.StartRun(cfg.Seed, w.Width(), w.Height(), len(miners))
		if err != nil {
			slog.Error("failed to start run", "error", err)
			os.Exit(1)
		}
		if err := journal.SaveMeta("seed", strconv.FormatInt(cfg.Seed, 10)); err != nil {
			slog.Warn("failed to save seed", "error", err)
		}
		slog.Info("journal opened", "path", cfg.DBPath, "run", run)
	}

	// ── Engine ────────────────────────────────────────────────────────
	eng := engine.NewEngine()
	eng.Interval = cfg.Engine.Interval
	eng.Speed = cfg.Engine.Speed
	eng.MaxTicks = cfg.Engine.MaxTicks
	eng.ReportEvery = cfg.Engine.ReportEvery
	eng.OnTick = sim.TickFromEngine
	eng.OnReport = func(tick uint64) {
		sim.Report(tick)
		if journal != nil {
			if err := journal.Flush(sim); err != nil {
				slog.Error("journal flush failed", "error", err)
			}
		}
	}

	fmt.Printf("\nDvarcraft: %s miners on %s walkable tiles (%s trees).\n",
		humanize.Comma(int64(len(miners))),
		humanize.Comma(int64(w.WalkableCount())),
		humanize.Comma(int64(w.Counts()[world.VisualTree])),
	)
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	eng.Run(ctx)

	if journal != nil {
		if err := journal.Flush(sim); err != nil {
			slog.Error("final flush failed", "error", err)
		}
	}

	st := sim.Snapshot()
	fmt.Printf("Simulation stopped after %s ticks (%s simulated): %s trees felled, %s wood on the ground.\n",
		humanize.Comma(int64(eng.Tick)),
		engine.SimTime(eng.Tick, eng.Interval),
		humanize.Comma(int64(st.Harvests)),
		humanize.Comma(int64(st.Wood)),
	)
}
