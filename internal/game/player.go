package game

import (
	"log"
	"math"

	"gas-arena/internal/geom"
	"gas-arena/internal/metrics"
	"gas-arena/internal/physics"
)

// MovementState holds the held movement keys and the mobile joystick.
type MovementState struct {
	Up, Down, Left, Right bool
	Moving                bool    // mobile joystick engaged
	Angle                 float64 // mobile joystick angle (radians)
}

// Player is a connected client's avatar. It is created inactive by
// AddPlayer and enters the registry on ActivatePlayer.
type Player struct {
	id        uint32
	name      string
	session   string
	game      *Game
	transport Transport
	body      *physics.Body
	spawn     geom.Vec2
	rotation  float64

	health     float64
	adrenaline float64
	kills      int
	gun        *Gun

	joined       bool
	dead         bool
	disconnected bool
	removing     bool // queued for removal after a failed send

	movement         MovementState
	isMobile         bool
	attacking        bool
	startedAttacking bool
	stoppedAttacking bool
	turning          bool
	interact         bool
	moving           bool
	hitEffect        bool

	movesSinceLastUpdate int
	visible              EntitySet
	diff                 ClientDiff
}

func (p *Player) ID() uint32      { return p.id }
func (p *Player) Kind() Kind      { return KindPlayer }
func (p *Player) Name() string    { return p.name }
func (p *Player) Session() string { return p.session }

// Position is the body position once active, else the chosen spawn.
func (p *Player) Position() geom.Vec2 {
	if p.body != nil {
		return p.body.Position()
	}
	return p.spawn
}

func (p *Player) Rotation() float64   { return p.rotation }
func (p *Player) Health() float64     { return p.health }
func (p *Player) Adrenaline() float64 { return p.adrenaline }
func (p *Player) Kills() int          { return p.kills }
func (p *Player) Dead() bool          { return p.dead }
func (p *Player) Joined() bool        { return p.joined }
func (p *Player) Disconnected() bool  { return p.disconnected }

// GunID returns the held gun's definition ID.
func (p *Player) GunID() string {
	if p.gun == nil {
		return ""
	}
	return p.gun.def.ID
}

// Visible returns the cached visibility set.
func (p *Player) Visible() EntitySet {
	return p.visible
}

func (p *Player) Partial() PartialState {
	return PartialState{
		ID:       p.id,
		Kind:     KindPlayer,
		Position: p.Position(),
		Rotation: p.rotation,
	}
}

func (p *Player) Full() FullState {
	return FullState{
		PartialState: p.Partial(),
		Name:         p.name,
		Gun:          p.GunID(),
		Dead:         p.dead,
	}
}

// ApplyToggle updates held input state from a key event. Unknown keys
// are ignored and report false.
func (p *Player) ApplyToggle(key string, pressed bool) bool {
	switch key {
	case "up":
		p.movement.Up = pressed
	case "down":
		p.movement.Down = pressed
	case "left":
		p.movement.Left = pressed
	case "right":
		p.movement.Right = pressed
	case "attack":
		if pressed && !p.attacking {
			p.startedAttacking = true
		}
		if !pressed && p.attacking {
			p.stoppedAttacking = true
		}
		p.attacking = pressed
	case "interact":
		if pressed {
			p.interact = true
		}
	default:
		return false
	}
	return true
}

// applyInput copies a drained input command onto the player.
func (p *Player) applyInput(in Input) {
	for _, t := range in.Toggles {
		p.ApplyToggle(t.Key, t.Pressed)
	}
	if in.HasRotation && !math.IsNaN(in.Rotation) && !math.IsInf(in.Rotation, 0) && in.Rotation != p.rotation {
		p.rotation = in.Rotation
		p.turning = true
	}
	if in.Mobile {
		p.isMobile = true
		p.movement.Moving = in.MobileMoving
		if !math.IsNaN(in.MobileAngle) {
			p.movement.Angle = in.MobileAngle
		}
	}
}

// updateMovement sets the body velocity from held keys.
func (p *Player) updateMovement() {
	cfg := p.game.cfg

	movement := geom.Vec2{}
	if p.movement.Up {
		movement.Y++
	}
	if p.movement.Down {
		movement.Y--
	}
	if p.movement.Left {
		movement.X--
	}
	if p.movement.Right {
		movement.X++
	}
	if p.isMobile && p.movement.Moving {
		movement.X = math.Cos(p.movement.Angle) * cfg.MobileSpeedFactor
		movement.Y = -math.Sin(p.movement.Angle) * cfg.MobileSpeedFactor
	}

	// Opposite keys cancel; the product is zero unless both axes move.
	speed := cfg.MovementSpeed
	if movement.X*movement.Y != 0 {
		speed = cfg.DiagonalSpeed
	}
	speed *= 1 + 0.1*(p.adrenaline/100)

	p.body.SetLinearVelocity(movement.Scale(speed))
	p.moving = movement != geom.Vec2{}
	if p.moving {
		p.movesSinceLastUpdate++
	}
}

// Damage applies damage from source (nil for the hazard zone).
func (p *Player) Damage(amount float64, source *Player) {
	if p.dead || amount <= 0 {
		return
	}
	g := p.game

	p.health -= amount
	p.hitEffect = true
	g.diff.MarkPartial(p)

	sourceID := ""
	if source != nil {
		sourceID = source.session
	}
	g.events.EmitSimple(EventTypeDamage, g.tickNum, p.session, DamagePayload{
		AttackerID: sourceID,
		VictimID:   p.session,
		Damage:     amount,
		VictimHP:   math.Max(p.health, 0),
		GunID:      gunOf(source),
	})

	if p.health <= 0 {
		p.die(source)
	}
}

// die removes the player from the living set and the world but keeps the
// client connected so it keeps receiving updates.
func (p *Player) die(killer *Player) {
	g := p.game
	p.health = 0
	p.dead = true
	position := p.Position()

	g.removeLiving(p)
	g.dynamicObjects.Remove(p)
	g.diff.MarkDeleted(p)
	g.visibility.Invalidate()
	g.aliveCountDirty = true
	if p.body != nil {
		g.world.DestroyBody(p.body)
		p.body = nil
		p.spawn = position
	}

	msg := KillFeedPacket{Kind: KillFeedGas, Name: p.name}
	if killer != nil && killer != p {
		killer.kills++
		g.totalKills++
		g.leaders.Record(killer)
		msg = KillFeedPacket{Kind: KillFeedKill, Name: p.name, Killer: killer.name, Gun: killer.GunID()}
	}
	g.killFeed = append(g.killFeed, msg)

	if p.gun != nil {
		g.SpawnLoot(p.gun.def.ID, position)
	}

	g.events.EmitSimple(EventTypeKill, g.tickNum, p.session, KillPayload{
		KillerID: sessionOf(killer),
		VictimID: p.session,
		GunID:    gunOf(killer),
	})
	log.Printf("💀 %s was killed (%d alive)", p.name, g.AliveCount())

	p.sendPacket(GameOverPacket{Won: false, Rank: g.AliveCount() + 1, Kills: p.kills})
	g.announceWinner()
}

// updateVisibleObjects replaces the cached view. Newly visible entities
// go to the client's full list; entities that left view go to its
// deleted list.
func (p *Player) updateVisibleObjects() {
	g := p.game
	g.visibility.Rebuild(g.staticObjects, g.dynamicObjects)

	next := g.visibility.Compute(p.Position())
	for id, e := range p.visible {
		if _, ok := next[id]; !ok && id != p.id {
			p.diff.Deleted.Add(e)
		}
	}
	for id, e := range next {
		if _, ok := p.visible[id]; !ok {
			p.diff.Full.Add(e)
		}
	}
	p.visible = next
	p.movesSinceLastUpdate = 0
}

// sendPacket is fire-and-forget: a failure queues the player for removal
// once the current dispatch pass completes.
func (p *Player) sendPacket(pk Packet) {
	if p.transport == nil || p.disconnected || p.removing {
		return
	}
	if err := p.transport.SendPacket(pk); err != nil {
		metrics.RecordSendFailure()
		log.Printf("⚠️ Send %s to %s failed: %v", pk.Type(), p.name, err)
		p.removing = true
		p.game.pendingRemoval = append(p.game.pendingRemoval, p)
	}
}

func (p *Player) selfState() SelfState {
	return SelfState{
		Health:     p.health,
		Adrenaline: p.adrenaline,
		Kills:      p.kills,
		Gun:        p.GunID(),
		Dead:       p.dead,
		HitEffect:  p.hitEffect,
	}
}

func sessionOf(p *Player) string {
	if p == nil {
		return ""
	}
	return p.session
}

func gunOf(p *Player) string {
	if p == nil {
		return ""
	}
	return p.GunID()
}
