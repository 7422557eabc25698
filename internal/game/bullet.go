package game

import (
	"gas-arena/internal/config"
	"gas-arena/internal/geom"
	"gas-arena/internal/physics"
)

// Bullet is a projectile in flight. Bullets are not registry entities:
// they carry a wrapping 8-bit ID and clients simulate them locally from
// the spawn announcement.
type Bullet struct {
	id              uint8
	shooter         *Player
	def             config.GunDefinition
	body            *physics.Body
	rotation        float64
	initialPosition geom.Vec2
	finalPosition   geom.Vec2
	lastPosition    geom.Vec2 // body position when it was destroyed
	speedVariance   float64
	maxDistance     float64
	dead            bool // hit something; destroyed at the next damage pass
	removed         bool // body destroyed and dropped from the live list
	deletionSent    bool // queued in deletedBullets
}

func (b *Bullet) ID() uint8                  { return b.id }
func (b *Bullet) Shooter() *Player           { return b.shooter }
func (b *Bullet) Dead() bool                 { return b.dead }
func (b *Bullet) InitialPosition() geom.Vec2 { return b.initialPosition }
func (b *Bullet) FinalPosition() geom.Vec2   { return b.finalPosition }
func (b *Bullet) MaxDistance() float64       { return b.maxDistance }

func (b *Bullet) Position() geom.Vec2 {
	if b.body == nil {
		return b.lastPosition
	}
	return b.body.Position()
}

// DistanceSquared is the squared distance travelled from the spawn point.
func (b *Bullet) DistanceSquared() float64 {
	return geom.DistanceSquared(b.Position(), b.initialPosition)
}

func (b *Bullet) MaxDistanceSquared() float64 {
	return b.maxDistance * b.maxDistance
}

func (b *Bullet) state() BulletState {
	var shooter uint32
	if b.shooter != nil {
		shooter = b.shooter.ID()
	}
	return BulletState{
		ID:              b.id,
		Shooter:         shooter,
		Gun:             b.def.ID,
		InitialPosition: b.initialPosition,
		FinalPosition:   b.finalPosition,
		Rotation:        b.rotation,
		Variance:        b.speedVariance,
	}
}

// DamageRecord links a bullet, its shooter and what it hit. Records live
// from contact detection until the next damage pass. Damaged is nil for
// world boundaries.
type DamageRecord struct {
	Damaged Entity
	Damager *Player
	Bullet  *Bullet
}

// liveBullet returns the bullet behind a body when it has not hit
// anything yet.
func liveBullet(body *physics.Body) (*Bullet, bool) {
	b, ok := body.UserData().(*Bullet)
	if !ok || b.dead {
		return nil, false
	}
	return b, true
}
