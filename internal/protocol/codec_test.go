package protocol

import (
	"errors"
	"testing"

	"gas-arena/internal/game"
	"gas-arena/internal/geom"
)

func TestEncodePacketPrefixesType(t *testing.T) {
	data, err := EncodePacket(game.GameOverPacket{Won: true, Rank: 1, Kills: 3})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if game.PacketType(data[0]) != game.PacketGameOver {
		t.Fatalf("expected type byte %d, got %d", game.PacketGameOver, data[0])
	}

	p, err := DecodePacket(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	over, ok := p.(game.GameOverPacket)
	if !ok || !over.Won || over.Rank != 1 || over.Kills != 3 {
		t.Errorf("expected the game over packet back, got %#v", p)
	}
}

func TestUpdatePacketOmitsCleanFields(t *testing.T) {
	alive := 3
	data, err := EncodePacket(game.UpdatePacket{
		Partial:    []game.PartialState{{ID: 7, Kind: game.KindPlayer, Position: geom.V(1, 2)}},
		AliveCount: &alive,
		Self:       game.SelfState{Health: 90},
	})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	p, err := DecodePacket(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	u := p.(game.UpdatePacket)
	if u.Gas != nil || u.GasPercentage != nil || len(u.Full) != 0 {
		t.Error("expected absent optional fields to stay absent")
	}
	if u.AliveCount == nil || *u.AliveCount != 3 {
		t.Error("expected alive count present")
	}
	if len(u.Partial) != 1 || u.Partial[0].Position != geom.V(1, 2) {
		t.Errorf("expected partial state preserved, got %+v", u.Partial)
	}
	if u.Self.Health != 90 {
		t.Errorf("expected self health 90, got %v", u.Self.Health)
	}
}

func TestDecodeMessage(t *testing.T) {
	rotation := 1.25
	input, err := EncodeMessage(ClientMessage{Type: MessageInput, Input: InputMessage{
		Toggles:  []ToggleMessage{{Key: "up", Pressed: true}, {Key: "attack", Pressed: true}},
		Rotation: &rotation,
	}})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	tests := []struct {
		name    string
		data    []byte
		want    MessageType
		wantErr error
		fails   bool
	}{
		{"join", []byte{byte(MessageJoin)}, MessageJoin, nil, false},
		{"leave", []byte{byte(MessageLeave)}, MessageLeave, nil, false},
		{"input", input, MessageInput, nil, false},
		{"empty", nil, 0, ErrEmptyFrame, true},
		{"unknown type", []byte{0x7f}, 0, ErrUnknownPacket, true},
		{"truncated input", input[:3], 0, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := DecodeMessage(tt.data)
			if tt.fails {
				if err == nil {
					t.Fatal("expected an error")
				}
				if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if m.Type != tt.want {
				t.Errorf("expected %s, got %s", tt.want, m.Type)
			}
		})
	}
}

func TestDecodeMessageRejectsToggleFlood(t *testing.T) {
	toggles := make([]ToggleMessage, maxToggles+1)
	for i := range toggles {
		toggles[i] = ToggleMessage{Key: "up", Pressed: i%2 == 0}
	}
	data, err := EncodeMessage(ClientMessage{Type: MessageInput, Input: InputMessage{Toggles: toggles}})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if _, err := DecodeMessage(data); !errors.Is(err, ErrInvalidMessage) {
		t.Errorf("expected ErrInvalidMessage, got %v", err)
	}
}

func TestMessageCommand(t *testing.T) {
	rotation := 0.5
	m := ClientMessage{Type: MessageInput, Input: InputMessage{
		Toggles:  []ToggleMessage{{Key: "interact", Pressed: true}},
		Rotation: &rotation,
	}}
	cmd := m.Command("s1")
	if cmd.Kind != game.CommandInput || cmd.Session != "s1" {
		t.Fatalf("expected input command for s1, got %s %q", cmd.Kind, cmd.Session)
	}
	if !cmd.Input.HasRotation || cmd.Input.Rotation != 0.5 {
		t.Error("expected rotation carried over")
	}
	if len(cmd.Input.Toggles) != 1 || cmd.Input.Toggles[0].Key != "interact" {
		t.Errorf("expected toggles carried over, got %+v", cmd.Input.Toggles)
	}

	noTurn := ClientMessage{Type: MessageInput}.Command("s1")
	if noTurn.Input.HasRotation {
		t.Error("expected no rotation when the client did not turn")
	}
	if join := (ClientMessage{Type: MessageJoin}).Command("s1"); join.Kind != game.CommandJoin {
		t.Errorf("expected join command, got %s", join.Kind)
	}
}
