package game

import (
	"sync/atomic"
	"time"

	"gas-arena/internal/config"
	"gas-arena/internal/geom"
)

const leaderboardSize = 10

// SnapshotLimits caps what a published snapshot may hold.
type SnapshotLimits struct {
	MaxPlayers int
}

// DefaultSnapshotLimits provides production-safe default limits
var DefaultSnapshotLimits = SnapshotLimits{
	MaxPlayers: 200,
}

// PlayerSnapshot is an immutable copy of player state
// Uses value types (not pointers) to ensure immutability
type PlayerSnapshot struct {
	ID       uint32    `json:"id"`
	Name     string    `json:"name"`
	Position geom.Vec2 `json:"position"`
	Health   float64   `json:"health"`
	Kills    int       `json:"kills"`
	Gun      string    `json:"gun"`
	Dead     bool      `json:"dead"`
	Joined   bool      `json:"joined"`
}

// GasSnapshot is the authoritative hazard geometry at publish time.
type GasSnapshot struct {
	Stage      int             `json:"stage"`
	State      config.GasState `json:"state"`
	Position   geom.Vec2       `json:"position"`
	Radius     float64         `json:"radius"`
	Percentage float64         `json:"percentage"`
	DPS        float64         `json:"dps"`
}

// MatchSnapshot is a complete immutable view of the match for readers
// outside the tick thread.
type MatchSnapshot struct {
	Sequence   uint64    `json:"sequence"`
	Timestamp  time.Time `json:"timestamp"`
	TickNumber uint64    `json:"tick"`
	MatchID    string    `json:"matchId"`

	Started   bool `json:"started"`
	Over      bool `json:"over"`
	AllowJoin bool `json:"allowJoin"`

	Players     []PlayerSnapshot   `json:"players"`
	Gas         GasSnapshot        `json:"gas"`
	AliveCount  int                `json:"aliveCount"`
	Connected   int                `json:"connected"`
	Bullets     int                `json:"bullets"`
	Obstacles   int                `json:"obstacles"`
	Loot        int                `json:"loot"`
	TotalKills  int                `json:"totalKills"`
	Leaders     []LeaderboardEntry `json:"leaders"`
	DroppedCmds uint64             `json:"droppedCommands"`
}

// SnapshotStore publishes snapshots from the tick thread. Each publish
// swaps in a freshly built value, so readers may keep a snapshot for as
// long as they like.
type SnapshotStore struct {
	current  atomic.Pointer[MatchSnapshot]
	sequence atomic.Uint64
	limits   SnapshotLimits
}

// NewSnapshotStore creates a store holding an empty snapshot.
func NewSnapshotStore(limits SnapshotLimits) *SnapshotStore {
	s := &SnapshotStore{limits: limits}
	s.current.Store(&MatchSnapshot{Players: []PlayerSnapshot{}})
	return s
}

// Publish stamps snap and makes it the current snapshot (tick thread only).
func (s *SnapshotStore) Publish(snap *MatchSnapshot) {
	if len(snap.Players) > s.limits.MaxPlayers {
		snap.Players = snap.Players[:s.limits.MaxPlayers]
	}
	snap.Sequence = s.sequence.Add(1)
	snap.Timestamp = time.Now()
	s.current.Store(snap)
}

// Load returns the latest published snapshot. Never nil.
func (s *SnapshotStore) Load() *MatchSnapshot {
	return s.current.Load()
}

// Limits returns the resource limits
func (s *SnapshotStore) Limits() SnapshotLimits {
	return s.limits
}
