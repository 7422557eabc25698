// Package protocol is the binary wire format between the server and game
// clients. Every frame is one type byte followed by a msgpack body.
package protocol

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"gas-arena/internal/game"
)

var (
	// ErrUnknownPacket is returned for a frame whose type byte is not known.
	ErrUnknownPacket = errors.New("unknown packet type")
	// ErrEmptyFrame is returned for a zero-length frame.
	ErrEmptyFrame = errors.New("empty frame")
	// ErrInvalidMessage is returned for a well-formed frame with bad content.
	ErrInvalidMessage = errors.New("invalid message")
)

// maxToggles bounds the key events accepted in one input message.
const maxToggles = 16

// EncodePacket serializes an outbound packet.
func EncodePacket(p game.Packet) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(byte(p.Type()))

	enc := msgpack.NewEncoder(&buf)
	enc.UseCompactInts(true)
	if err := enc.Encode(p); err != nil {
		return nil, fmt.Errorf("encode %s: %w", p.Type(), err)
	}
	return buf.Bytes(), nil
}

// DecodePacket parses an outbound packet. The server never calls it; it
// exists for clients written in Go and for tests.
func DecodePacket(data []byte) (game.Packet, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFrame
	}
	body := data[1:]

	switch t := game.PacketType(data[0]); t {
	case game.PacketJoined:
		return decodeAs[game.JoinedPacket](t, body)
	case game.PacketMap:
		return decodeAs[game.MapPacket](t, body)
	case game.PacketUpdate:
		return decodeAs[game.UpdatePacket](t, body)
	case game.PacketKillFeed:
		return decodeAs[game.KillFeedPacket](t, body)
	case game.PacketGameOver:
		return decodeAs[game.GameOverPacket](t, body)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownPacket, data[0])
	}
}

func decodeAs[P game.Packet](t game.PacketType, body []byte) (game.Packet, error) {
	var p P
	if err := msgpack.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("decode %s: %w", t, err)
	}
	return p, nil
}

// MessageType identifies inbound client messages.
type MessageType uint8

const (
	MessageJoin MessageType = iota + 1
	MessageInput
	MessageLeave
)

func (t MessageType) String() string {
	switch t {
	case MessageJoin:
		return "join"
	case MessageInput:
		return "input"
	case MessageLeave:
		return "leave"
	default:
		return "unknown"
	}
}

// ToggleMessage is one key press or release.
type ToggleMessage struct {
	Key     string `msgpack:"k"`
	Pressed bool   `msgpack:"p"`
}

// InputMessage carries a client's input since its last message. Rotation
// is omitted when the client did not turn.
type InputMessage struct {
	Toggles      []ToggleMessage `msgpack:"t,omitempty"`
	Rotation     *float64        `msgpack:"r,omitempty"`
	Mobile       bool            `msgpack:"m,omitempty"`
	MobileMoving bool            `msgpack:"mm,omitempty"`
	MobileAngle  float64         `msgpack:"ma,omitempty"`
}

// ClientMessage is a decoded inbound frame. Join and leave have no body.
type ClientMessage struct {
	Type  MessageType
	Input InputMessage
}

// EncodeMessage serializes an inbound message, for Go clients and tests.
func EncodeMessage(m ClientMessage) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(byte(m.Type))
	if m.Type != MessageInput {
		return buf.Bytes(), nil
	}
	if err := msgpack.NewEncoder(&buf).Encode(&m.Input); err != nil {
		return nil, fmt.Errorf("encode %s: %w", m.Type, err)
	}
	return buf.Bytes(), nil
}

// DecodeMessage parses an inbound frame.
func DecodeMessage(data []byte) (ClientMessage, error) {
	if len(data) == 0 {
		return ClientMessage{}, ErrEmptyFrame
	}
	m := ClientMessage{Type: MessageType(data[0])}

	switch m.Type {
	case MessageJoin, MessageLeave:
		return m, nil
	case MessageInput:
		if err := msgpack.Unmarshal(data[1:], &m.Input); err != nil {
			return ClientMessage{}, fmt.Errorf("decode %s: %w", m.Type, err)
		}
		if len(m.Input.Toggles) > maxToggles {
			return ClientMessage{}, fmt.Errorf("%w: %d toggles", ErrInvalidMessage, len(m.Input.Toggles))
		}
		return m, nil
	default:
		return ClientMessage{}, fmt.Errorf("%w: %d", ErrUnknownPacket, data[0])
	}
}

// Command converts a decoded message into a simulation command for session.
func (m ClientMessage) Command(session string) game.Command {
	switch m.Type {
	case MessageJoin:
		return game.Command{Kind: game.CommandJoin, Session: session}
	case MessageLeave:
		return game.Command{Kind: game.CommandLeave, Session: session}
	}

	in := game.Input{
		Mobile:       m.Input.Mobile,
		MobileMoving: m.Input.MobileMoving,
		MobileAngle:  m.Input.MobileAngle,
	}
	if len(m.Input.Toggles) > 0 {
		in.Toggles = make([]game.Toggle, len(m.Input.Toggles))
		for i, t := range m.Input.Toggles {
			in.Toggles[i] = game.Toggle{Key: t.Key, Pressed: t.Pressed}
		}
	}
	if m.Input.Rotation != nil {
		in.HasRotation = true
		in.Rotation = *m.Input.Rotation
	}
	return game.Command{Kind: game.CommandInput, Session: session, Input: in}
}
