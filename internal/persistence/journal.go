// Package persistence keeps an append-only SQLite journal of simulation runs:
// the events they produced and a little metadata. It is a record, not a save
// format; worlds are always regenerated from their seed.
package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/dvarcraft/internal/engine"
)

// Journal wraps a SQLite connection.
type Journal struct {
	conn  *sqlx.DB
	runID uuid.UUID
}

// Run is one row of the runs table.
type Run struct {
	ID        string `db:"id"`
	Seed      int64  `db:"seed"`
	Width     int    `db:"width"`
	Height    int    `db:"height"`
	Miners    int    `db:"miners"`
	StartedAt int64  `db:"started_at"`
}

// Open opens or creates a journal at the given path.
func Open(path string) (*Journal, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One writer; keeps in-memory databases on a single connection too.
	conn.SetMaxOpenConns(1)

	j := &Journal{conn: conn}
	if err := j.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return j, nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	return j.conn.Close()
}

func (j *Journal) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		miners INTEGER NOT NULL,
		started_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		tick INTEGER NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL,
		miner TEXT NOT NULL,
		tile INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		run_id TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (run_id, key)
	);

	CREATE INDEX IF NOT EXISTS idx_events_run_tick ON events(run_id, tick);
	CREATE INDEX IF NOT EXISTS idx_events_category ON events(category);
	`
	_, err := j.conn.Exec(schema)
	return err
}

// StartRun records a new run and makes it the target of later writes.
func (j *Journal) StartRun(seed int64, width, height, miners int) (uuid.UUID, error) {
	id := uuid.New()
	_, err := j.conn.Exec(
		"INSERT INTO runs (id, seed, width, height, miners, started_at) VALUES (?, ?, ?, ?, ?, ?)",
		id.String(), seed, width, height, miners, time.Now().Unix(),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert run: %w", err)
	}
	j.runID = id
	slog.Debug("journal run started", "run", id, "seed", seed)
	return id, nil
}

// RunID returns the current run, or uuid.Nil before StartRun.
func (j *Journal) RunID() uuid.UUID {
	return j.runID
}

// Runs returns every recorded run, newest first.
func (j *Journal) Runs() ([]Run, error) {
	var runs []Run
	err := j.conn.Select(&runs, "SELECT id, seed, width, height, miners, started_at FROM runs ORDER BY started_at DESC, rowid DESC")
	return runs, err
}

// SaveEvents appends events to the current run.
func (j *Journal) SaveEvents(events []engine.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := j.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex("INSERT INTO events (run_id, tick, description, category, miner, tile) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	run := j.runID.String()
	for _, e := range events {
		if _, err := stmt.Exec(run, e.Tick, e.Description, e.Category, e.Miner, e.Tile); err != nil {
			return fmt.Errorf("insert event at tick %d: %w", e.Tick, err)
		}
	}

	return tx.Commit()
}

// SaveMeta stores a key-value pair for the current run.
func (j *Journal) SaveMeta(key, value string) error {
	_, err := j.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (run_id, key, value) VALUES (?, ?, ?)",
		j.runID.String(), key, value,
	)
	return err
}

// GetMeta retrieves a metadata value of the current run.
func (j *Journal) GetMeta(key string) (string, error) {
	var value string
	err := j.conn.Get(&value, "SELECT value FROM world_meta WHERE run_id = ? AND key = ?", j.runID.String(), key)
	return value, err
}

// Flush journals the events the simulation produced since the last flush
// together with its tick and statistics.
func (j *Journal) Flush(sim *engine.Simulation) error {
	events := sim.DrainEvents()
	if err := j.SaveEvents(events); err != nil {
		return fmt.Errorf("save events: %w", err)
	}

	stats, err := json.Marshal(sim.Snapshot())
	if err != nil {
		return fmt.Errorf("encode stats: %w", err)
	}
	if err := j.SaveMeta("stats", string(stats)); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}
	if err := j.SaveMeta("last_tick", strconv.FormatUint(sim.CurrentTick(), 10)); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}

	slog.Debug("journal flushed", "events", len(events))
	return nil
}

// RecentEvents returns the most recent events of the current run, newest
// first.
func (j *Journal) RecentEvents(limit int) ([]engine.Event, error) {
	var events []engine.Event
	err := j.conn.Select(&events,
		"SELECT tick, description, category, miner, tile FROM events WHERE run_id = ? ORDER BY id DESC LIMIT ?",
		j.runID.String(), limit,
	)
	return events, err
}

// CountEvents returns how many events of the given category the current run
// has journaled.
func (j *Journal) CountEvents(category string) (int, error) {
	var n int
	err := j.conn.Get(&n, "SELECT COUNT(*) FROM events WHERE run_id = ? AND category = ?", j.runID.String(), category)
	return n, err
}
