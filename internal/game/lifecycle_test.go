package game

import (
	"testing"

	"gas-arena/internal/geom"
	"gas-arena/internal/physics"
)

func TestPreSolveCorrectionFollowsLastContact(t *testing.T) {
	g, clock := newTestGame(t)
	joinPlayer(g, "a", &fakeTransport{})
	g.Tick(clock.next())

	p := mustPlayer(t, g, "a")
	l := g.SpawnLoot(testGun.ID, geom.V(300, 300))
	o := g.SpawnLoot(testGun.ID, geom.V(320, 300))

	g.onPreSolve(&physics.Contact{A: p.body, B: l.body})
	if got := g.world.MaxLinearCorrection(); got != lootMaxCorrection {
		t.Errorf("expected %v with loot in contact, got %v", lootMaxCorrection, got)
	}
	g.onPreSolve(&physics.Contact{A: l.body, B: o.body})
	if got := g.world.MaxLinearCorrection(); got != lootMaxCorrection {
		t.Errorf("expected %v for loot pairs, got %v", lootMaxCorrection, got)
	}

	joinPlayer(g, "b", &fakeTransport{})
	g.Tick(clock.next())
	g.onPreSolve(&physics.Contact{A: p.body, B: mustPlayer(t, g, "b").body})
	if got := g.world.MaxLinearCorrection(); got != 0 {
		t.Errorf("expected the next non-loot contact to reset correction, got %v", got)
	}
}

func TestMatchEndsWhenTimeIsUp(t *testing.T) {
	g, clock := newTestGame(t)
	g.cfg.MatchDuration = 10 * g.cfg.TickPeriod
	g.cfg.EndGrace = 0

	ended := 0
	g.OnEnd(func() { ended++ })

	ta, tb := &fakeTransport{}, &fakeTransport{}
	joinPlayer(g, "a", ta)
	joinPlayer(g, "b", tb)
	g.Tick(clock.next())
	if !g.Started() {
		t.Fatal("expected the match to start")
	}

	for range 12 {
		g.Tick(clock.next())
	}
	if !g.Over() || ended != 1 {
		t.Fatalf("expected the match over with one end call, got over=%v ended=%d", g.Over(), ended)
	}
	for _, tr := range []*fakeTransport{ta, tb} {
		over, ok := tr.gameOver()
		if !ok || over.Rank != 1 || over.Won {
			t.Errorf("expected both survivors ranked first without a win, got %+v", over)
		}
	}
}

func TestUnarmedDeathLeavesOtherViews(t *testing.T) {
	g, clock := newTestGame(t)
	joinPlayer(g, "a", &fakeTransport{})
	joinPlayer(g, "b", &fakeTransport{})
	g.Tick(clock.next())

	a, b := mustPlayer(t, g, "a"), mustPlayer(t, g, "b")
	if !a.Visible().Has(b) {
		t.Fatal("expected b in a's view")
	}

	b.gun = nil
	b.Damage(1000, nil)
	a.updateVisibleObjects()

	if a.Visible().Has(b) {
		t.Error("expected the dead player dropped from a's view")
	}
	if a.diff.Full.Has(b) || !a.diff.Deleted.Has(b) {
		t.Error("expected the dead player only in a's deleted list")
	}
}
