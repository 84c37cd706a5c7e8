// Package engine provides the tick-based simulation loop and the Simulation
// that composes the world, the miners and the selection each tick.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
)

// DefaultInterval is one rendered frame at 60 Hz.
const DefaultInterval = time.Second / 60

// Engine drives the simulation forward at a fixed interval.
type Engine struct {
	Tick     uint64        // Current tick counter (monotonic, never resets)
	Speed    float64       // Multiplier on simulated time: 1.0 = real-time, 0 = paused
	Interval time.Duration // Wall-clock time between ticks
	MaxTicks uint64        // Stop after this many ticks (0 = run until stopped)

	// Tick layers, populated during setup.
	OnTick      func(tick uint64, dt float64) // Every tick
	OnReport    func(tick uint64)             // Every ReportEvery ticks
	ReportEvery uint64

	running atomic.Bool
}

// NewEngine creates a simulation engine with default settings.
func NewEngine() *Engine {
	return &Engine{
		Speed:       1.0,
		Interval:    DefaultInterval,
		ReportEvery: 600,
	}
}

// Running reports whether Run is in progress.
func (e *Engine) Running() bool {
	return e.running.Load()
}

// Run starts the simulation loop. Blocks until the context is cancelled,
// Stop is called, or MaxTicks is reached.
func (e *Engine) Run(ctx context.Context) {
	e.running.Store(true)
	defer e.running.Store(false)
	slog.Info("simulation engine started", "tick", e.Tick, "speed", e.Speed, "interval", e.Interval)

	for e.running.Load() {
		if ctx.Err() != nil {
			break
		}
		if e.MaxTicks > 0 && e.Tick >= e.MaxTicks {
			break
		}
		if e.Speed <= 0 {
			// Paused: sleep briefly and check again.
			if !sleep(ctx, 100*time.Millisecond) {
				break
			}
			continue
		}

		start := time.Now()

		e.Step()

		elapsed := time.Since(start)
		if elapsed < e.Interval && !sleep(ctx, e.Interval-elapsed) {
			break
		}
	}

	slog.Info("simulation engine stopped", "tick", e.Tick)
}

// sleep waits for d or until ctx is done. It returns false when cancelled.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Stop halts the simulation loop after the current tick.
func (e *Engine) Stop() {
	e.running.Store(false)
}

// Delta returns the simulated seconds that pass in one tick.
func (e *Engine) Delta() float64 {
	return e.Interval.Seconds() * e.Speed
}

// Step advances the simulation by one tick.
func (e *Engine) Step() {
	e.Tick++

	if e.OnTick != nil {
		e.OnTick(e.Tick, e.Delta())
	}

	if e.ReportEvery > 0 && e.Tick%e.ReportEvery == 0 && e.OnReport != nil {
		e.OnReport(e.Tick)
	}
}

// SimTime returns a human-readable simulated time for a tick at the given
// interval.
func SimTime(tick uint64, interval time.Duration) string {
	total := time.Duration(tick) * interval
	return fmt.Sprintf("%02d:%02d:%02d",
		int(total.Hours()), int(total.Minutes())%60, int(total.Seconds())%60)
}
