package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"gas-arena/internal/config"
	"gas-arena/internal/game"
	"gas-arena/internal/protocol"
)

// recordingSink collects commands the hub enqueues.
type recordingSink struct {
	mu       sync.Mutex
	commands []game.Command
	refuse   bool
}

func (s *recordingSink) Enqueue(cmd game.Command) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.refuse {
		return false
	}
	s.commands = append(s.commands, cmd)
	return true
}

// waitFor polls until a command of kind arrives.
func (s *recordingSink) waitFor(t *testing.T, kind game.CommandKind) game.Command {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		s.mu.Lock()
		for _, cmd := range s.commands {
			if cmd.Kind == kind {
				s.mu.Unlock()
				return cmd
			}
		}
		s.mu.Unlock()
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("no %s command received", kind)
	return game.Command{}
}

func debugConfig(addr string, external bool) config.DebugConfig {
	return config.DebugConfig{Addr: addr, AllowExternal: external}
}

func newTestHub(t *testing.T, sink CommandSink, cfg HubConfig) (*Hub, string) {
	t.Helper()
	hub := NewHub(sink, cfg)
	ts := httptest.NewServer(hub)
	t.Cleanup(ts.Close)
	return hub, "ws" + strings.TrimPrefix(ts.URL, "http")
}

func TestWebSocketRoundTrip(t *testing.T) {
	sink := &recordingSink{}
	_, url := newTestHub(t, sink, HubConfig{MaxPlayers: 4})

	conn, _, err := websocket.DefaultDialer.Dial(url+"?name=alice", nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	connect := sink.waitFor(t, game.CommandConnect)
	if connect.Name != "alice" || connect.Session == "" || connect.Transport == nil {
		t.Fatalf("expected connect with name and transport, got %+v", connect)
	}

	join, err := protocol.EncodeMessage(protocol.ClientMessage{Type: protocol.MessageJoin})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, join); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if cmd := sink.waitFor(t, game.CommandJoin); cmd.Session != connect.Session {
		t.Errorf("expected join for session %s, got %s", connect.Session, cmd.Session)
	}

	if err := connect.Transport.SendPacket(game.JoinedPacket{PlayerID: 9, Name: "alice"}); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	p, err := protocol.DecodePacket(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if joined, ok := p.(game.JoinedPacket); !ok || joined.PlayerID != 9 {
		t.Errorf("expected the joined packet, got %#v", p)
	}

	conn.Close()
	if cmd := sink.waitFor(t, game.CommandLeave); cmd.Session != connect.Session {
		t.Errorf("expected leave for session %s, got %s", connect.Session, cmd.Session)
	}
}

func TestTransportCloseFlushesAndDisconnects(t *testing.T) {
	sink := &recordingSink{}
	_, url := newTestHub(t, sink, HubConfig{MaxPlayers: 4})

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()
	tr := sink.waitFor(t, game.CommandConnect).Transport

	if err := tr.SendPacket(game.GameOverPacket{Rank: 2}); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	tr.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("expected the queued packet before close, got %v", err)
	}
	if p, _ := protocol.DecodePacket(data); p == nil || p.Type() != game.PacketGameOver {
		t.Errorf("expected game over, got %#v", p)
	}
	if _, _, err := conn.ReadMessage(); !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Errorf("expected a normal close, got %v", err)
	}
	if err := tr.SendPacket(game.GameOverPacket{}); !errors.Is(err, game.ErrTransportClosed) {
		t.Errorf("expected ErrTransportClosed after close, got %v", err)
	}
}

func TestHubRejectsWhenFull(t *testing.T) {
	sink := &recordingSink{}
	_, url := newTestHub(t, sink, HubConfig{MaxPlayers: 1})

	first, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer first.Close()

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("expected the second connection refused")
	}
	if resp == nil || resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %v", resp)
	}
}

func TestSlowClientReportsError(t *testing.T) {
	h := NewHub(&recordingSink{}, HubConfig{SendBuffer: 1})
	s := &session{
		id:   "s",
		hub:  h,
		send: make(chan []byte, 1),
		done: make(chan struct{}),
	}

	if err := s.SendPacket(game.GameOverPacket{}); err != nil {
		t.Fatalf("expected the first packet buffered, got %v", err)
	}
	if err := s.SendPacket(game.GameOverPacket{}); !errors.Is(err, game.ErrSlowClient) {
		t.Errorf("expected ErrSlowClient on a full buffer, got %v", err)
	}
}

func TestHubShutdownRefusesNewConnections(t *testing.T) {
	sink := &recordingSink{}
	hub, url := newTestHub(t, sink, HubConfig{MaxPlayers: 4})

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()
	sink.waitFor(t, game.CommandConnect)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := hub.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}
	if hub.Count() != 0 {
		t.Errorf("expected no sessions after shutdown, got %d", hub.Count())
	}
	if _, _, err := websocket.DefaultDialer.Dial(url, nil); err == nil {
		t.Error("expected connections refused after shutdown")
	}
}
