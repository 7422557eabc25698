// Package game is the authoritative match simulation. A Game is owned by
// a single tick thread: client goroutines only hand it Commands through
// Enqueue, and every mutation of the world, the registry, the dirty sets
// and the hazard zone happens inside Tick.
package game

import (
	"log"
	"math"
	"math/rand"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/segmentio/ksuid"

	"gas-arena/internal/config"
	"gas-arena/internal/geom"
	"gas-arena/internal/physics"
	"gas-arena/internal/spatial"
)

const (
	bulletRadius       = 0.25
	lootDamping        = 4
	boundaryThickness  = 10
	spawnAttempts      = 100
	maxNameLength      = 16
	lootMaxCorrection  = 0.06
	adrenalineDrain    = 0.015
	regenPerAdrenaline = 0.00039
)

// Game is one match: the physics world, the entity registry, the tick's
// diff accumulator, per-client visibility and the hazard zone.
type Game struct {
	cfg     config.GameConfig
	match   config.Match
	guns    *GunRegistry
	world   physics.World
	rng     *rand.Rand
	seed    int64
	matchID string

	now      time.Time
	tickNum  uint64
	timers   timerQueue
	commands *spatial.LockFreeQueue[Command]

	droppedCommands atomic.Uint64

	sessions         map[string]*Player
	connectedPlayers []*Player
	livingPlayers    []*Player
	staticObjects    EntitySet
	dynamicObjects   EntitySet
	obstacles        []*Obstacle
	loot             []*Loot
	boundaries       []FullState

	bullets        []*Bullet
	newBullets     []*Bullet
	deletedBullets []*Bullet
	damageRecords  []DamageRecord
	explosions     []*Explosion
	killFeed       []KillFeedPacket

	diff       *DiffAccumulator
	visibility *VisibilityIndex
	gas        *Gas
	leaders    *Leaderboard
	totalKills int

	objectID uint32
	bulletID uint8

	started         bool
	over            bool
	allowJoin       bool
	updateObjects   bool
	aliveCountDirty bool
	pendingRemoval  []*Player

	events    *EventLog
	snapshots *SnapshotStore
	onEnd     func()
}

// New builds a match from validated configuration: boundaries, obstacles
// and the pre-match hazard stage. The match starts when a second player
// joins.
func New(cfg config.GameConfig, match config.Match) *Game {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	guns := make(map[string]config.GunDefinition, len(match.Guns))
	for id, def := range match.Guns {
		guns[id] = def
	}

	matchID := ksuid.New().String()
	center := geom.V(cfg.MapWidth/2, cfg.MapHeight/2)

	g := &Game{
		cfg:            cfg,
		match:          match,
		guns:           NewGunRegistry(guns, cfg.StartingGun),
		world:          physics.NewSpace(256),
		rng:            rand.New(rand.NewSource(seed)),
		seed:           seed,
		matchID:        matchID,
		now:            time.Now(),
		commands:       spatial.NewLockFreeQueue[Command](cfg.InputQueueSize),
		sessions:       make(map[string]*Player),
		staticObjects:  make(EntitySet),
		dynamicObjects: make(EntitySet),
		diff:           NewDiffAccumulator(),
		visibility:     NewVisibilityIndex(cfg.MapWidth, cfg.MapHeight, cfg.ViewHalfWidth, cfg.ViewHalfHeight),
		gas:            newGas(match.Gas, match.Stages, center),
		leaders:        NewLeaderboard(seed),
		allowJoin:      true,
		events:         NewEventLog(matchID),
		snapshots:      NewSnapshotStore(DefaultSnapshotLimits),
	}

	g.world.SetFilter(collisionFilter)
	g.world.OnBeginContact(g.onBeginContact)
	g.world.OnPreSolve(g.onPreSolve)

	g.addBoundaries()
	for _, placement := range match.Obstacles {
		g.SpawnObstacle(placement)
	}

	log.Printf("🎮 Match %s created (%d obstacles, gas %s, spawn %s, seed %d)",
		matchID, len(g.obstacles), match.Gas.Mode, match.Spawn.Mode, seed)
	return g
}

func (g *Game) MatchID() string    { return g.matchID }
func (g *Game) Seed() int64        { return g.seed }
func (g *Game) Events() *EventLog  { return g.events }
func (g *Game) Guns() *GunRegistry { return g.guns }
func (g *Game) Gas() *Gas          { return g.gas }
func (g *Game) Started() bool      { return g.started }
func (g *Game) Over() bool         { return g.over }
func (g *Game) AllowJoin() bool    { return g.allowJoin }
func (g *Game) AliveCount() int    { return len(g.livingPlayers) }

// OnEnd registers the hook run once the match has ended and the grace
// period elapsed. The process is expected to exit.
func (g *Game) OnEnd(fn func()) {
	g.onEnd = fn
}

// Snapshot returns the last published match snapshot. Safe for any
// goroutine.
func (g *Game) Snapshot() *MatchSnapshot {
	return g.snapshots.Load()
}

// Player returns the player bound to session (tick thread only).
func (g *Game) Player(session string) (*Player, bool) {
	p, ok := g.sessions[session]
	return p, ok
}

func (g *Game) nextObjectID() uint32 {
	id := g.objectID
	g.objectID++
	return id
}

// nextBulletID wraps modulo 256; more than 256 live bullets alias.
func (g *Game) nextBulletID() uint8 {
	id := g.bulletID
	g.bulletID++
	return id
}

// =============================================================================
// PHYSICS CALLBACKS
// =============================================================================

func (g *Game) onBeginContact(c *physics.Contact) {
	if b, ok := liveBullet(c.A); ok {
		g.recordHit(b, c.B)
		return
	}
	if b, ok := liveBullet(c.B); ok {
		g.recordHit(b, c.A)
	}
}

func (g *Game) recordHit(b *Bullet, other *physics.Body) {
	b.dead = true
	g.damageRecords = append(g.damageRecords, DamageRecord{
		Damaged: bodyEntity(other),
		Damager: b.shooter,
		Bullet:  b,
	})
}

// onPreSolve sets the world-wide correction for every touching pair, so
// the last pair solved decides the value for the whole step. Loot needs
// correction to spread out; players jitter with it.
func (g *Game) onPreSolve(c *physics.Contact) {
	if Kind(c.A.Tag()) == KindLoot || Kind(c.B.Tag()) == KindLoot {
		g.world.SetMaxLinearCorrection(lootMaxCorrection)
	} else {
		g.world.SetMaxLinearCorrection(0)
	}
}

// =============================================================================
// FACTORIES
// =============================================================================

func (g *Game) addBoundaries() {
	w, h := g.cfg.MapWidth, g.cfg.MapHeight
	t := boundaryThickness / 2.0
	walls := []struct {
		pos    geom.Vec2
		hw, hh float64
	}{
		{geom.V(w/2, -t), w/2 + boundaryThickness, t},
		{geom.V(w/2, h+t), w/2 + boundaryThickness, t},
		{geom.V(-t, h/2), t, h/2 + boundaryThickness},
		{geom.V(w+t, h/2), t, h/2 + boundaryThickness},
	}
	for _, wall := range walls {
		g.world.CreateBody(physics.BodyDef{
			Type:     physics.Static,
			Shape:    physics.Box(wall.hw, wall.hh),
			Position: wall.pos,
			Tag:      uint8(KindObstacle),
		})
		g.boundaries = append(g.boundaries, FullState{
			PartialState: PartialState{Kind: KindObstacle, Position: wall.pos},
			Type:         "boundary",
			HalfWidth:    wall.hw,
			HalfHeight:   wall.hh,
		})
	}
}

// SpawnObstacle places a static obstacle. Unknown types are skipped.
func (g *Game) SpawnObstacle(placement config.ObstaclePlacement) *Obstacle {
	def, ok := g.match.ObstacleTypes[placement.Type]
	if !ok {
		log.Printf("⚠️ Unknown obstacle type %q at (%.0f, %.0f)", placement.Type, placement.Position.X, placement.Position.Y)
		return nil
	}
	o := &Obstacle{
		id:       g.nextObjectID(),
		game:     g,
		def:      def,
		position: placement.Position,
		rotation: placement.Rotation,
		health:   def.Health,
	}
	o.body = g.world.CreateBody(physics.BodyDef{
		Type:     physics.Static,
		Shape:    obstacleShape(def),
		Position: placement.Position,
		Tag:      uint8(KindObstacle),
		UserData: o,
	})
	g.obstacles = append(g.obstacles, o)
	g.staticObjects.Add(o)
	g.diff.MarkFull(o)
	g.updateObjects = true
	g.visibility.Invalidate()
	return o
}

// SpawnLoot drops a gun at pos.
func (g *Game) SpawnLoot(gunID string, pos geom.Vec2) *Loot {
	l := &Loot{
		id:          g.nextObjectID(),
		game:        g,
		gunID:       gunID,
		rotation:    g.rng.Float64() * 2 * math.Pi,
		oldPosition: pos,
	}
	l.oldRotation = l.rotation
	l.body = g.world.CreateBody(physics.BodyDef{
		Type:          physics.Dynamic,
		Shape:         physics.Circle(g.cfg.LootRadius),
		Position:      pos,
		LinearDamping: lootDamping,
		Tag:           uint8(KindLoot),
		UserData:      l,
	})
	g.loot = append(g.loot, l)
	g.dynamicObjects.Add(l)
	g.diff.MarkFull(l)
	g.updateObjects = true
	g.visibility.Invalidate()
	return l
}

func (g *Game) removeLoot(l *Loot) {
	if l.body != nil {
		l.oldPosition = l.body.Position()
		g.world.DestroyBody(l.body)
		l.body = nil
	}
	g.loot = slices.DeleteFunc(g.loot, func(other *Loot) bool { return other == l })
	g.dynamicObjects.Remove(l)
	g.diff.MarkDeleted(l)
	g.visibility.Invalidate()
}

// SpawnBullet fires one bullet from pos along rotation. shooter may be nil
// for shrapnel from an explosion nobody caused.
func (g *Game) SpawnBullet(shooter *Player, def config.GunDefinition, pos geom.Vec2, rotation float64) *Bullet {
	variance := g.rng.Float64() * def.SpeedVariance
	dir := geom.FromAngle(rotation)
	maxDistance := def.MaxDistance * (1 + variance)

	b := &Bullet{
		id:              g.nextBulletID(),
		shooter:         shooter,
		def:             def,
		rotation:        rotation,
		initialPosition: pos,
		finalPosition:   pos.Add(dir.Scale(maxDistance)),
		lastPosition:    pos,
		speedVariance:   variance,
		maxDistance:     maxDistance,
	}
	b.body = g.world.CreateBody(physics.BodyDef{
		Type:     physics.Dynamic,
		Shape:    physics.Circle(bulletRadius),
		Position: pos,
		Bullet:   true,
		Tag:      uint8(KindProjectile),
		UserData: b,
	})
	b.body.SetLinearVelocity(dir.Scale(def.Speed * (1 + variance)))

	g.bullets = append(g.bullets, b)
	g.newBullets = append(g.newBullets, b)
	return b
}

func (g *Game) destroyBullet(b *Bullet) {
	if b.removed {
		return
	}
	b.removed = true
	if b.body != nil {
		b.lastPosition = b.body.Position()
		g.world.DestroyBody(b.body)
		b.body = nil
	}
}

// AddExplosion queues a detonation for this tick's explosion pass.
func (g *Game) AddExplosion(def config.ExplosionDefinition, pos geom.Vec2, source *Player) {
	g.explosions = append(g.explosions, &Explosion{
		game:     g,
		def:      def,
		position: pos,
		source:   source,
	})
}

// =============================================================================
// PLAYER LIFECYCLE
// =============================================================================

// AddPlayer creates an inactive player for a new connection. It has no
// body and is in no registry set until ActivatePlayer.
func (g *Game) AddPlayer(session, name string, transport Transport) *Player {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Player"
	}
	if len(name) > maxNameLength {
		name = name[:maxNameLength]
	}

	p := &Player{
		id:         g.nextObjectID(),
		name:       name,
		session:    session,
		game:       g,
		transport:  transport,
		health:     g.cfg.MaxHealth,
		spawn:      g.pickSpawn(),
		rotation:   0,
		visible:    make(EntitySet),
		diff:       NewClientDiff(),
		adrenaline: 0,
	}
	if def, ok := g.guns.Get(g.cfg.StartingGun); ok {
		p.gun = newGun(def)
	}
	g.sessions[session] = p
	g.connectedPlayers = append(g.connectedPlayers, p)
	log.Printf("👤 %s connected (%d connected)", name, len(g.connectedPlayers))
	return p
}

// ActivatePlayer puts a connected player into the world. The second
// living player starts the match. It returns false when the join was
// refused.
func (g *Game) ActivatePlayer(p *Player) bool {
	if p.joined || p.disconnected || p.dead {
		return false
	}
	if !g.allowJoin || g.over {
		log.Printf("⚠️ Join refused for %s: joining closed", p.name)
		return false
	}

	p.body = g.world.CreateBody(physics.BodyDef{
		Type:     physics.Dynamic,
		Shape:    physics.Circle(g.cfg.PlayerRadius),
		Position: p.spawn,
		Tag:      uint8(KindPlayer),
		UserData: p,
	})
	p.joined = true
	g.leaders.Record(p)

	g.livingPlayers = append(g.livingPlayers, p)
	g.dynamicObjects.Add(p)
	g.diff.MarkFull(p)
	g.updateObjects = true
	g.aliveCountDirty = true
	g.visibility.Invalidate()
	g.killFeed = append(g.killFeed, KillFeedPacket{Kind: KillFeedJoin, Name: p.name})

	p.updateVisibleObjects()
	p.sendPacket(JoinedPacket{PlayerID: p.id, Name: p.name, MatchID: g.matchID})
	p.sendPacket(g.mapPacket())

	g.events.EmitSimple(EventTypePlayerJoin, g.tickNum, p.session, PlayerJoinPayload{
		PlayerID:   p.id,
		PlayerName: p.name,
		SpawnX:     p.spawn.X,
		SpawnY:     p.spawn.Y,
	})
	log.Printf("👤 %s joined at (%.0f, %.0f) (%d alive)", p.name, p.spawn.X, p.spawn.Y, g.AliveCount())

	if !g.started && g.AliveCount() >= 2 {
		g.start()
	}
	return true
}

// RemovePlayer disconnects a player: it leaves every registry set at once
// and its transport is closed. Other clients learn of it through the
// normal deletion path.
func (g *Game) RemovePlayer(p *Player) {
	if p.disconnected {
		return
	}
	p.disconnected = true
	delete(g.sessions, p.session)
	g.connectedPlayers = slices.DeleteFunc(g.connectedPlayers, func(other *Player) bool { return other == p })

	if p.joined {
		if !p.dead {
			g.killFeed = append(g.killFeed, KillFeedPacket{Kind: KillFeedLeave, Name: p.name})
			g.removeLiving(p)
			g.aliveCountDirty = true
		}
		g.dynamicObjects.Remove(p)
		g.diff.MarkDeleted(p)
		g.visibility.Invalidate()
	}
	if p.body != nil {
		p.spawn = p.body.Position()
		g.world.DestroyBody(p.body)
		p.body = nil
	}
	if p.transport != nil {
		_ = p.transport.Close()
	}

	g.events.EmitSimple(EventTypePlayerLeave, g.tickNum, p.session, PlayerJoinPayload{
		PlayerID:   p.id,
		PlayerName: p.name,
	})
	log.Printf("👤 %s left (%d connected, %d alive)", p.name, len(g.connectedPlayers), g.AliveCount())

	if p.joined && !p.dead {
		g.announceWinner()
	}
}

func (g *Game) removeLiving(p *Player) {
	g.livingPlayers = slices.DeleteFunc(g.livingPlayers, func(other *Player) bool { return other == p })
}

// announceWinner tells the last survivor of a started match it won.
func (g *Game) announceWinner() {
	if !g.started || g.over || g.AliveCount() != 1 {
		return
	}
	winner := g.livingPlayers[0]
	winner.sendPacket(GameOverPacket{Won: true, Rank: 1, Kills: winner.kills})
}

// pickupLoot swaps the player's gun for the nearest loot in reach.
func (g *Game) pickupLoot(p *Player) {
	pos := p.Position()
	reach := g.cfg.PickupRadius * g.cfg.PickupRadius

	var nearest *Loot
	best := math.Inf(1)
	for _, l := range g.loot {
		if d := geom.DistanceSquared(l.Position(), pos); d <= reach && d < best {
			nearest, best = l, d
		}
	}
	if nearest == nil {
		return
	}
	def, ok := g.guns.Get(nearest.gunID)
	if !ok {
		return
	}

	dropped := ""
	if p.gun != nil {
		dropped = p.gun.def.ID
	}
	g.removeLoot(nearest)
	if dropped != "" {
		g.SpawnLoot(dropped, pos)
	}
	p.gun = newGun(def)
	g.diff.MarkFull(p)

	g.events.EmitSimple(EventTypePickup, g.tickNum, p.session, PickupPayload{
		PlayerID: p.session,
		GunID:    def.ID,
		Dropped:  dropped,
	})
}

// pickSpawn chooses a spawn point according to the spawn mode.
func (g *Game) pickSpawn() geom.Vec2 {
	spawn := g.match.Spawn
	switch spawn.Mode {
	case config.SpawnFixed:
		return spawn.Position
	case config.SpawnRadius:
		return geom.RandomPointInsideCircle(g.rng, spawn.Position, spawn.Radius)
	}

	margin := g.cfg.PlayerRadius + boundaryThickness/2.0
	var candidate geom.Vec2
	for range spawnAttempts {
		candidate = geom.V(
			margin+g.rng.Float64()*(g.cfg.MapWidth-2*margin),
			margin+g.rng.Float64()*(g.cfg.MapHeight-2*margin),
		)
		if !g.IsInGas(candidate) && !g.blocked(candidate) {
			return candidate
		}
	}
	return candidate
}

// blocked reports whether a player body at pos would overlap an intact
// obstacle.
func (g *Game) blocked(pos geom.Vec2) bool {
	r := g.cfg.PlayerRadius
	for _, o := range g.obstacles {
		if o.dead {
			continue
		}
		d := pos.Sub(o.position)
		if o.def.Shape == "box" {
			if math.Abs(d.X) < o.def.HalfWidth+r && math.Abs(d.Y) < o.def.HalfHeight+r {
				return true
			}
			continue
		}
		if d.LengthSquared() < (o.def.Radius+r)*(o.def.Radius+r) {
			return true
		}
	}
	return false
}

// =============================================================================
// MATCH LIFECYCLE
// =============================================================================

func (g *Game) start() {
	g.started = true
	g.AdvanceGas()
	g.after(g.cfg.JoinCutoff, func() {
		g.allowJoin = false
		log.Printf("🔒 Joining closed (%d alive)", g.AliveCount())
	})
	g.after(g.cfg.MatchDuration, g.timeUp)

	g.events.EmitSimple(EventTypeMatchStart, g.tickNum, "", MatchPayload{
		Players: g.AliveCount(),
		Seed:    g.seed,
	})
	log.Printf("🎮 Match %s started with %d players", g.matchID, g.AliveCount())
}

// timeUp ends a match that ran its full duration. Survivors share rank 1.
func (g *Game) timeUp() {
	if g.over {
		return
	}
	log.Printf("⏰ Match time is up (%d alive)", g.AliveCount())
	for _, p := range g.livingPlayers {
		p.sendPacket(GameOverPacket{Won: g.AliveCount() == 1, Rank: 1, Kills: p.kills})
	}
	g.finish()
}

// finish marks the match over and schedules the end hook.
func (g *Game) finish() {
	g.over = true
	g.after(g.cfg.EndGrace, g.end)
}

func (g *Game) end() {
	g.events.EmitSimple(EventTypeMatchEnd, g.tickNum, "", MatchPayload{
		Players: len(g.connectedPlayers),
		Seed:    g.seed,
	})
	log.Printf("🛑 Match %s ended after %d ticks", g.matchID, g.tickNum)
	if g.onEnd != nil {
		g.onEnd()
	}
}

func (g *Game) mapPacket() MapPacket {
	obstacles := make([]FullState, 0, len(g.obstacles))
	for _, o := range g.obstacles {
		obstacles = append(obstacles, o.Full())
	}
	return MapPacket{
		Width:      g.cfg.MapWidth,
		Height:     g.cfg.MapHeight,
		Obstacles:  obstacles,
		Boundaries: g.boundaries,
	}
}
