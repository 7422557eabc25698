package game

import (
	"errors"

	"gas-arena/internal/config"
	"gas-arena/internal/geom"
)

//go:generate go tool mockgen -destination=./mocks/transport_mock.go -package=mocks . Transport

// Transport delivers packets to one client. SendPacket must not block the
// tick thread; an error is treated as a disconnect.
type Transport interface {
	SendPacket(p Packet) error
	Close() error
}

var (
	// ErrSlowClient is returned by transports whose outbound buffer is full.
	ErrSlowClient = errors.New("client outbound buffer full")
	// ErrTransportClosed is returned after Close.
	ErrTransportClosed = errors.New("transport closed")
)

// PacketType identifies outbound packets on the wire.
type PacketType uint8

const (
	PacketJoined PacketType = iota + 1
	PacketMap
	PacketUpdate
	PacketKillFeed
	PacketGameOver
)

func (t PacketType) String() string {
	switch t {
	case PacketJoined:
		return "joined"
	case PacketMap:
		return "map"
	case PacketUpdate:
		return "update"
	case PacketKillFeed:
		return "kill_feed"
	case PacketGameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// Packet is an outbound message. Encoding is the transport's concern.
type Packet interface {
	Type() PacketType
}

// PartialState carries the fields that change every tick.
type PartialState struct {
	ID       uint32    `msgpack:"id" json:"id"`
	Kind     Kind      `msgpack:"k" json:"kind"`
	Position geom.Vec2 `msgpack:"p" json:"position"`
	Rotation float64   `msgpack:"r" json:"rotation"`
	Health   float64   `msgpack:"h,omitempty" json:"health,omitempty"`
}

// FullState is the complete description sent on spawn or structural change.
type FullState struct {
	PartialState
	Name         string  `msgpack:"n,omitempty" json:"name,omitempty"`
	Type         string  `msgpack:"t,omitempty" json:"type,omitempty"` // obstacle type or loot gun
	Gun          string  `msgpack:"g,omitempty" json:"gun,omitempty"`
	Radius       float64 `msgpack:"rad,omitempty" json:"radius,omitempty"`
	HalfWidth    float64 `msgpack:"hw,omitempty" json:"halfWidth,omitempty"`
	HalfHeight   float64 `msgpack:"hh,omitempty" json:"halfHeight,omitempty"`
	Dead         bool    `msgpack:"d,omitempty" json:"dead,omitempty"`
}

// BulletState announces a new bullet; clients simulate it locally.
type BulletState struct {
	ID              uint8     `msgpack:"id" json:"id"`
	Shooter         uint32    `msgpack:"s" json:"shooter"`
	Gun             string    `msgpack:"g" json:"gun"`
	InitialPosition geom.Vec2 `msgpack:"ip" json:"initialPosition"`
	FinalPosition   geom.Vec2 `msgpack:"fp" json:"finalPosition"`
	Rotation        float64   `msgpack:"r" json:"rotation"`
	Variance        float64   `msgpack:"v" json:"variance"`
}

// ExplosionState describes a detonation for client effects.
type ExplosionState struct {
	Position geom.Vec2 `msgpack:"p" json:"position"`
	Type     string    `msgpack:"t" json:"type"`
	Radius   float64   `msgpack:"r" json:"radius"`
}

// GasInfo is the hazard geometry sent when the stage changes.
type GasInfo struct {
	Stage       int             `msgpack:"s" json:"stage"`
	State       config.GasState `msgpack:"st" json:"state"`
	Duration    float64         `msgpack:"d" json:"duration"`
	OldPosition geom.Vec2       `msgpack:"op" json:"oldPosition"`
	NewPosition geom.Vec2       `msgpack:"np" json:"newPosition"`
	OldRadius   float64         `msgpack:"or" json:"oldRadius"`
	NewRadius   float64         `msgpack:"nr" json:"newRadius"`
}

// SelfState is the receiving player's private HUD data.
type SelfState struct {
	Health     float64 `msgpack:"h" json:"health"`
	Adrenaline float64 `msgpack:"a" json:"adrenaline"`
	Kills      int     `msgpack:"k" json:"kills"`
	Gun        string  `msgpack:"g" json:"gun"`
	Dead       bool    `msgpack:"d" json:"dead"`
	HitEffect  bool    `msgpack:"hit,omitempty" json:"hitEffect,omitempty"`
}

// JoinedPacket confirms activation.
type JoinedPacket struct {
	PlayerID uint32 `msgpack:"id"`
	Name     string `msgpack:"n"`
	MatchID  string `msgpack:"m"`
}

func (JoinedPacket) Type() PacketType { return PacketJoined }

// MapPacket describes the static world once per join.
type MapPacket struct {
	Width      float64     `msgpack:"w"`
	Height     float64     `msgpack:"h"`
	Obstacles  []FullState `msgpack:"o"`
	Boundaries []FullState `msgpack:"b"`
}

func (MapPacket) Type() PacketType { return PacketMap }

// UpdatePacket is the per-tick diff for one client.
type UpdatePacket struct {
	Full           []FullState      `msgpack:"f,omitempty"`
	Partial        []PartialState   `msgpack:"p,omitempty"`
	Deleted        []uint32         `msgpack:"d,omitempty"`
	AliveCount     *int             `msgpack:"a,omitempty"`
	Gas            *GasInfo         `msgpack:"g,omitempty"`
	GasPercentage  *float64         `msgpack:"gp,omitempty"`
	NewBullets     []BulletState    `msgpack:"nb,omitempty"`
	DeletedBullets []uint8          `msgpack:"db,omitempty"`
	Explosions     []ExplosionState `msgpack:"e,omitempty"`
	Self           SelfState        `msgpack:"s"`
}

func (UpdatePacket) Type() PacketType { return PacketUpdate }

// KillFeedKind distinguishes kill feed messages.
type KillFeedKind uint8

const (
	KillFeedJoin KillFeedKind = iota
	KillFeedLeave
	KillFeedKill
	KillFeedGas
)

// KillFeedPacket is broadcast to every joined client in the tick it occurs.
type KillFeedPacket struct {
	Kind   KillFeedKind `msgpack:"k"`
	Name   string       `msgpack:"n"`           // joiner, leaver, or victim
	Killer string       `msgpack:"kr,omitempty"` // kill messages only
	Gun    string       `msgpack:"g,omitempty"`
}

func (KillFeedPacket) Type() PacketType { return PacketKillFeed }

// GameOverPacket ends a client's run.
type GameOverPacket struct {
	Won   bool `msgpack:"w"`
	Rank  int  `msgpack:"r"`
	Kills int  `msgpack:"k"`
}

func (GameOverPacket) Type() PacketType { return PacketGameOver }
