package game

import (
	"encoding/json"
	"time"

	"gas-arena/internal/config"
)

// EventType enum for audit event classification
type EventType uint8

const (
	EventTypeUnknown EventType = iota
	EventTypeMatchStart
	EventTypePlayerJoin
	EventTypePlayerLeave
	EventTypeDamage
	EventTypeKill
	EventTypeGasAdvance
	EventTypePickup
	EventTypeMatchEnd
)

// EventVersion for backwards compatibility of the audit log
const EventVersion uint8 = 1

// Event is the core event structure for the event log
type Event struct {
	Version   uint8     `json:"version"`
	Type      EventType `json:"type"`
	Timestamp int64     `json:"timestamp"` // Unix nano
	Sequence  uint64    `json:"sequence"`  // Monotonic sequence
	MatchID   string    `json:"matchId"`
	TickNum   uint64    `json:"tickNum"`
	PlayerID  string    `json:"playerId"` // Source session (for rate limiting)
	Payload   []byte    `json:"payload"`  // JSON-encoded payload
}

// String returns human-readable event type
func (t EventType) String() string {
	switch t {
	case EventTypeMatchStart:
		return "match_start"
	case EventTypePlayerJoin:
		return "player_join"
	case EventTypePlayerLeave:
		return "player_leave"
	case EventTypeDamage:
		return "damage"
	case EventTypeKill:
		return "kill"
	case EventTypeGasAdvance:
		return "gas_advance"
	case EventTypePickup:
		return "pickup"
	case EventTypeMatchEnd:
		return "match_end"
	default:
		return "unknown"
	}
}

// MarshalText makes event types readable in the JSON log.
func (t EventType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Typed payloads for different event types

// MatchPayload marks match start and end
type MatchPayload struct {
	Players int   `json:"players"`
	Seed    int64 `json:"seed"`
}

// DamagePayload contains damage event details
type DamagePayload struct {
	AttackerID string  `json:"attackerId,omitempty"`
	VictimID   string  `json:"victimId"`
	Damage     float64 `json:"damage"`
	VictimHP   float64 `json:"victimHp"`
	GunID      string  `json:"gunId,omitempty"`
}

// KillPayload contains kill event details
type KillPayload struct {
	KillerID string `json:"killerId,omitempty"` // empty for gas deaths
	VictimID string `json:"victimId"`
	GunID    string `json:"gunId,omitempty"`
}

// PlayerJoinPayload contains player join details
type PlayerJoinPayload struct {
	PlayerID   uint32  `json:"playerId"`
	PlayerName string  `json:"playerName"`
	SpawnX     float64 `json:"spawnX"`
	SpawnY     float64 `json:"spawnY"`
}

// GasPayload records a hazard stage transition
type GasPayload struct {
	Stage     int             `json:"stage"`
	State     config.GasState `json:"state"`
	Duration  float64         `json:"duration"`
	NewX      float64         `json:"newX"`
	NewY      float64         `json:"newY"`
	NewRadius float64         `json:"newRadius"`
}

// PickupPayload records a loot swap
type PickupPayload struct {
	PlayerID string `json:"playerId"`
	GunID    string `json:"gunId"`
	Dropped  string `json:"dropped,omitempty"`
}

// EncodePayload marshals a payload to JSON bytes
func EncodePayload(payload any) []byte {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	return data
}

// NewEvent creates a new event with the current timestamp
func NewEvent(eventType EventType, tickNum uint64, playerID string, payload any) Event {
	return Event{
		Version:   EventVersion,
		Type:      eventType,
		Timestamp: time.Now().UnixNano(),
		TickNum:   tickNum,
		PlayerID:  playerID,
		Payload:   EncodePayload(payload),
	}
}
