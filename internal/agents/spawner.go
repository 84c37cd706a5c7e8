// Miner spawning: the starting crew is placed on random walkable tiles.
package agents

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"github.com/talgya/dvarcraft/internal/world"
)

// Placement is the part of the world the spawner needs.
type Placement interface {
	RandomWalkable(n int) ([]world.TileID, error)
	Tile(id world.TileID) (world.Tile, bool)
}

// Spawner creates miners for the simulation.
type Spawner struct {
	rng *rand.Rand
	cfg Config
}

// NewSpawner creates a miner spawner with the given seed.
func NewSpawner(seed int64, cfg Config) *Spawner {
	return &Spawner{
		rng: rand.New(rand.NewSource(seed + 300)),
		cfg: cfg,
	}
}

// Spawn creates count idle miners, each standing on a random walkable tile.
func (s *Spawner) Spawn(p Placement, count int) ([]*Miner, error) {
	if count <= 0 {
		return nil, nil
	}
	ids, err := p.RandomWalkable(count)
	if err != nil {
		return nil, fmt.Errorf("spawn miners: %w", err)
	}

	miners := make([]*Miner, 0, count)
	for _, id := range ids {
		tile, ok := p.Tile(id)
		if !ok {
			return nil, fmt.Errorf("spawn miners: walkable tile %d missing", id)
		}
		m, err := s.spawnOne(tile.Position)
		if err != nil {
			return nil, err
		}
		miners = append(miners, m)
	}
	return miners, nil
}

func (s *Spawner) spawnOne(pos world.Vec2) (*Miner, error) {
	id, err := uuid.NewRandomFromReader(s.rng)
	if err != nil {
		return nil, fmt.Errorf("spawn miner: %w", err)
	}
	return &Miner{
		ID:       id,
		Tile:     world.Tile{Position: pos, Visual: world.VisualMiner},
		Movement: MoveIdle,
		Behavior: Idle{},
		Speed:    s.cfg.Speed,
	}, nil
}
