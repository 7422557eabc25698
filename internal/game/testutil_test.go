package game

import (
	"testing"
	"time"

	"gas-arena/internal/config"
	"gas-arena/internal/geom"
)

// fakeTransport records packets and can be made to fail.
type fakeTransport struct {
	packets []Packet
	err     error
	closed  bool
}

func (f *fakeTransport) SendPacket(p Packet) error {
	if f.err != nil {
		return f.err
	}
	f.packets = append(f.packets, p)
	return nil
}

func (f *fakeTransport) Close() error {
	f.closed = true
	return nil
}

func (f *fakeTransport) updates() []UpdatePacket {
	var out []UpdatePacket
	for _, p := range f.packets {
		if u, ok := p.(UpdatePacket); ok {
			out = append(out, u)
		}
	}
	return out
}

func (f *fakeTransport) lastUpdate(t *testing.T) UpdatePacket {
	t.Helper()
	u := f.updates()
	if len(u) == 0 {
		t.Fatal("no update packets sent")
	}
	return u[len(u)-1]
}

func (f *fakeTransport) killFeed() []KillFeedPacket {
	var out []KillFeedPacket
	for _, p := range f.packets {
		if k, ok := p.(KillFeedPacket); ok {
			out = append(out, k)
		}
	}
	return out
}

func (f *fakeTransport) gameOver() (GameOverPacket, bool) {
	for _, p := range f.packets {
		if g, ok := p.(GameOverPacket); ok {
			return g, true
		}
	}
	return GameOverPacket{}, false
}

// stubEntity is a registry entity with no behavior.
type stubEntity struct {
	id  uint32
	pos geom.Vec2
}

func (s *stubEntity) ID() uint32          { return s.id }
func (s *stubEntity) Kind() Kind          { return KindLoot }
func (s *stubEntity) Position() geom.Vec2 { return s.pos }
func (s *stubEntity) Rotation() float64   { return 0 }
func (s *stubEntity) Partial() PartialState {
	return PartialState{ID: s.id, Kind: KindLoot, Position: s.pos}
}
func (s *stubEntity) Full() FullState {
	return FullState{PartialState: s.Partial()}
}

var testGun = config.GunDefinition{
	ID:                 "test",
	Damage:             10,
	ObstacleMultiplier: 1,
	Speed:              1 / 0.03, // one unit per 30ms step
	MaxDistance:        100,
	BulletCount:        1,
}

// testSetup returns a deterministic config: no obstacles, fixed spawn at
// (100, 100), a one-pellet gun with no spread or variance.
func testSetup() (config.GameConfig, config.Match) {
	cfg := config.DefaultGame()
	cfg.Seed = 42
	cfg.StartingGun = testGun.ID

	match := config.DefaultMatch(config.DefaultGas(), config.SpawnConfig{
		Mode:     config.SpawnFixed,
		Position: geom.V(100, 100),
	})
	match.Obstacles = nil
	match.Guns[testGun.ID] = testGun
	return cfg, match
}

// testClock hands out tick times one period apart.
type testClock struct {
	now    time.Time
	period time.Duration
}

func (c *testClock) next() time.Time {
	c.now = c.now.Add(c.period)
	return c.now
}

func newTestGame(t *testing.T) (*Game, *testClock) {
	t.Helper()
	cfg, match := testSetup()
	g := New(cfg, match)
	clock := &testClock{now: time.Unix(1_700_000_000, 0), period: cfg.TickPeriod}
	g.now = clock.now
	return g, clock
}

// joinPlayer connects and activates a player through the command queue
// on the next tick.
func joinPlayer(g *Game, session string, tr Transport) {
	g.Enqueue(Command{Kind: CommandConnect, Session: session, Name: session, Transport: tr})
	g.Enqueue(Command{Kind: CommandJoin, Session: session})
}

func mustPlayer(t *testing.T, g *Game, session string) *Player {
	t.Helper()
	p, ok := g.Player(session)
	if !ok {
		t.Fatalf("player %q not found", session)
	}
	return p
}
