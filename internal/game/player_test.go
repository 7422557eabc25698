package game

import (
	"math"
	"testing"

	"gas-arena/internal/geom"
)

func TestApplyToggle(t *testing.T) {
	g, clock := newTestGame(t)
	joinPlayer(g, "a", &fakeTransport{})
	g.Tick(clock.next())
	p := mustPlayer(t, g, "a")

	if p.ApplyToggle("jump", true) {
		t.Error("expected unknown key ignored")
	}
	if p.movement != (MovementState{}) {
		t.Error("expected unknown key to leave movement untouched")
	}

	p.ApplyToggle("up", true)
	p.ApplyToggle("left", true)
	if !p.movement.Up || !p.movement.Left {
		t.Error("expected held keys recorded")
	}
	p.ApplyToggle("up", false)
	if p.movement.Up {
		t.Error("expected released key cleared")
	}
}

func TestAttackEdgeFlags(t *testing.T) {
	g, clock := newTestGame(t)
	joinPlayer(g, "a", &fakeTransport{})
	g.Tick(clock.next())
	p := mustPlayer(t, g, "a")

	p.ApplyToggle("attack", true)
	if !p.startedAttacking || !p.attacking {
		t.Fatal("expected attack start edge")
	}
	p.startedAttacking = false
	p.ApplyToggle("attack", true)
	if p.startedAttacking {
		t.Error("expected a repeated press not to start a new attack")
	}
	p.ApplyToggle("attack", false)
	if !p.stoppedAttacking || p.attacking {
		t.Error("expected attack stop edge")
	}
}

func TestInputRotation(t *testing.T) {
	tests := []struct {
		name     string
		rotation float64
		turning  bool
	}{
		{"finite", 1.5, true},
		{"unchanged", 0, false},
		{"nan", math.NaN(), false},
		{"inf", math.Inf(1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, clock := newTestGame(t)
			joinPlayer(g, "a", &fakeTransport{})
			g.Tick(clock.next())
			p := mustPlayer(t, g, "a")

			p.applyInput(Input{HasRotation: true, Rotation: tt.rotation})
			if p.turning != tt.turning {
				t.Errorf("expected turning=%v, got %v", tt.turning, p.turning)
			}
			if !tt.turning && p.Rotation() != 0 {
				t.Errorf("expected rotation kept, got %v", p.Rotation())
			}
		})
	}
}

func TestMovementSpeeds(t *testing.T) {
	g, clock := newTestGame(t)
	joinPlayer(g, "a", &fakeTransport{})
	g.Tick(clock.next())
	p := mustPlayer(t, g, "a")

	p.ApplyToggle("right", true)
	p.updateMovement()
	if v := p.body.LinearVelocity(); v != geom.V(g.cfg.MovementSpeed, 0) {
		t.Errorf("expected straight velocity, got %v", v)
	}

	p.ApplyToggle("up", true)
	p.updateMovement()
	want := g.cfg.DiagonalSpeed
	if v := p.body.LinearVelocity(); v != geom.V(want, want) {
		t.Errorf("expected diagonal velocity %v on both axes, got %v", want, v)
	}

	p.ApplyToggle("left", true)
	p.ApplyToggle("up", false)
	p.updateMovement()
	if p.moving {
		t.Error("expected opposite keys to cancel")
	}
}

func TestInputIgnoredBeforeJoinAndAfterDeath(t *testing.T) {
	g, clock := newTestGame(t)
	g.Enqueue(Command{Kind: CommandConnect, Session: "a", Name: "a", Transport: &fakeTransport{}})
	g.Enqueue(Command{Kind: CommandInput, Session: "a", Input: Input{
		Toggles: []Toggle{{Key: "up", Pressed: true}},
	}})
	g.Tick(clock.next())

	p := mustPlayer(t, g, "a")
	if p.movement.Up {
		t.Error("expected input before join ignored")
	}

	g.Enqueue(Command{Kind: CommandJoin, Session: "a"})
	g.Tick(clock.next())
	p.Damage(1000, nil)
	g.Enqueue(Command{Kind: CommandInput, Session: "a", Input: Input{
		Toggles: []Toggle{{Key: "up", Pressed: true}},
	}})
	g.Tick(clock.next())
	if p.movement.Up {
		t.Error("expected input after death ignored")
	}
}

func TestDeadPlayerKeepsReceivingUpdates(t *testing.T) {
	g, clock := newTestGame(t)
	ta := &fakeTransport{}
	joinPlayer(g, "a", ta)
	g.Tick(clock.next())

	p := mustPlayer(t, g, "a")
	p.Damage(1000, nil)
	g.Tick(clock.next())
	before := len(ta.updates())
	g.Tick(clock.next())

	if len(ta.updates()) != before+1 {
		t.Error("expected a dead but connected player to keep receiving updates")
	}
	if !ta.lastUpdate(t).Self.Dead {
		t.Error("expected self state to report death")
	}
	if len(g.loot) != 1 {
		t.Errorf("expected the held gun dropped as loot, got %d", len(g.loot))
	}
}

func TestPlayerNameTrimmed(t *testing.T) {
	g, clock := newTestGame(t)
	g.Enqueue(Command{Kind: CommandConnect, Session: "a", Name: "  a-very-long-player-name  ", Transport: &fakeTransport{}})
	g.Tick(clock.next())

	if name := mustPlayer(t, g, "a").Name(); len(name) > maxNameLength || name != "a-very-long-play" {
		t.Errorf("expected trimmed name, got %q", name)
	}
}
