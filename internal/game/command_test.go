package game

import (
	"sync"
	"testing"
)

func TestEnqueueDropsWhenFull(t *testing.T) {
	cfg, match := testSetup()
	cfg.InputQueueSize = 4
	g := New(cfg, match)

	for i := range 4 {
		if !g.Enqueue(Command{Kind: CommandInput, Session: "a"}) {
			t.Fatalf("push %d: expected room in the queue", i)
		}
	}
	if g.Enqueue(Command{Kind: CommandInput, Session: "a"}) {
		t.Fatal("expected a full queue to drop")
	}
	if g.DroppedCommands() != 1 {
		t.Errorf("expected 1 dropped command, got %d", g.DroppedCommands())
	}

	g.drainCommands()
	if !g.Enqueue(Command{Kind: CommandInput, Session: "a"}) {
		t.Error("expected room after draining")
	}
}

func TestConcurrentEnqueueDeliversEverything(t *testing.T) {
	g, clock := newTestGame(t)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			session := string(rune('a' + i))
			g.Enqueue(Command{Kind: CommandConnect, Session: session, Name: session, Transport: &fakeTransport{}})
		}()
	}
	wg.Wait()
	g.Tick(clock.next())

	if len(g.connectedPlayers) != 8 {
		t.Errorf("expected 8 connected players, got %d", len(g.connectedPlayers))
	}
}

func TestDuplicateConnectIgnored(t *testing.T) {
	g, clock := newTestGame(t)
	first := &fakeTransport{}
	g.Enqueue(Command{Kind: CommandConnect, Session: "a", Name: "a", Transport: first})
	g.Enqueue(Command{Kind: CommandConnect, Session: "a", Name: "b", Transport: &fakeTransport{}})
	g.Tick(clock.next())

	if len(g.connectedPlayers) != 1 || mustPlayer(t, g, "a").Name() != "a" {
		t.Error("expected the second connect for a session ignored")
	}
}

func TestLeaveRemovesPlayer(t *testing.T) {
	g, clock := newTestGame(t)
	tr := &fakeTransport{}
	joinPlayer(g, "a", tr)
	g.Tick(clock.next())

	g.Enqueue(Command{Kind: CommandLeave, Session: "a"})
	g.Tick(clock.next())
	if _, ok := g.Player("a"); ok || !tr.closed {
		t.Error("expected leave to remove and close the player")
	}
	if g.AliveCount() != 0 {
		t.Errorf("expected no living players, got %d", g.AliveCount())
	}
}
