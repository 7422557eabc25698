package game

import "testing"

func TestLeaderboardInSnapshot(t *testing.T) {
	g, clock := newTestGame(t)
	for _, s := range []string{"a", "b", "c"} {
		joinPlayer(g, s, &fakeTransport{})
	}
	g.Tick(clock.next())

	a, b, c := mustPlayer(t, g, "a"), mustPlayer(t, g, "b"), mustPlayer(t, g, "c")
	c.Damage(1000, b)
	g.Tick(clock.next())

	snap := g.Snapshot()
	if snap.TotalKills != 1 {
		t.Errorf("Expected 1 total kill, got %d", snap.TotalKills)
	}
	if len(snap.Leaders) != 3 {
		t.Fatalf("Expected every joined player ranked, got %d", len(snap.Leaders))
	}
	if top := snap.Leaders[0]; top.ID != b.ID() || top.Kills != 1 || top.Rank != 1 {
		t.Errorf("Expected b leading with 1 kill, got %+v", top)
	}
	if g.leaders.Rank(a.ID()) != 2 || g.leaders.Rank(c.ID()) != 3 {
		t.Errorf("Expected ties ranked by join order, got a=%d c=%d", g.leaders.Rank(a.ID()), g.leaders.Rank(c.ID()))
	}
}

func TestLeaderboardKeepsLeavers(t *testing.T) {
	g, clock := newTestGame(t)
	joinPlayer(g, "a", &fakeTransport{})
	joinPlayer(g, "b", &fakeTransport{})
	joinPlayer(g, "c", &fakeTransport{})
	g.Tick(clock.next())

	b := mustPlayer(t, g, "b")
	mustPlayer(t, g, "c").Damage(1000, b)
	g.Enqueue(Command{Kind: CommandLeave, Session: "b"})
	g.Tick(clock.next())

	if g.leaders.Len() != 3 || g.leaders.Top(1)[0].Name != "b" {
		t.Errorf("Expected the leaver still leading, got %+v", g.leaders.Top(3))
	}
}
