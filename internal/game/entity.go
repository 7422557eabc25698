package game

import (
	"cmp"
	"slices"

	"gas-arena/internal/geom"
	"gas-arena/internal/physics"
)

// Kind is the closed set of simulation entity variants. It doubles as the
// physics body tag consulted by the collision filter.
type Kind uint8

const (
	KindPlayer Kind = iota
	KindObstacle
	KindProjectile
	KindLoot
	KindExplosion
)

func (k Kind) String() string {
	switch k {
	case KindPlayer:
		return "player"
	case KindObstacle:
		return "obstacle"
	case KindProjectile:
		return "projectile"
	case KindLoot:
		return "loot"
	case KindExplosion:
		return "explosion"
	default:
		return "unknown"
	}
}

// ShouldCollide reports whether bodies of the two kinds interact.
// Players hit obstacles and projectiles; projectiles hit players and
// obstacles; loot rests against obstacles and other loot. Every other
// pair, including unknown kinds, does not collide.
func ShouldCollide(a, b Kind) bool {
	switch a {
	case KindPlayer:
		return b == KindObstacle || b == KindProjectile
	case KindObstacle:
		return b == KindPlayer || b == KindProjectile || b == KindLoot
	case KindProjectile:
		return b == KindPlayer || b == KindObstacle
	case KindLoot:
		return b == KindObstacle || b == KindLoot
	}
	return false
}

// collisionFilter is installed on the physics world.
func collisionFilter(a, b *physics.Body) bool {
	if a == nil || b == nil {
		return false
	}
	if !a.Position().IsFinite() || !b.Position().IsFinite() {
		return false
	}
	return ShouldCollide(Kind(a.Tag()), Kind(b.Tag()))
}

// Entity is a registry member: players, obstacles and loot.
type Entity interface {
	ID() uint32
	Kind() Kind
	Position() geom.Vec2
	Rotation() float64
	Partial() PartialState
	Full() FullState
}

// Damageable entities take damage from bullets and explosions.
type Damageable interface {
	Entity
	Damage(amount float64, source *Player)
}

// EntitySet is an ID-keyed set; re-insertion is idempotent.
type EntitySet map[uint32]Entity

func (s EntitySet) Add(e Entity) {
	s[e.ID()] = e
}

func (s EntitySet) Has(e Entity) bool {
	_, ok := s[e.ID()]
	return ok
}

func (s EntitySet) Remove(e Entity) {
	delete(s, e.ID())
}

func (s EntitySet) Len() int {
	return len(s)
}

func (s EntitySet) Clear() {
	clear(s)
}

// Sorted returns members ordered by ID.
func (s EntitySet) Sorted() []Entity {
	out := make([]Entity, 0, len(s))
	for _, e := range s {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b Entity) int {
		return cmp.Compare(a.ID(), b.ID())
	})
	return out
}

// bodyEntity returns the registry entity behind a body, or nil for world
// boundaries and bullets.
func bodyEntity(b *physics.Body) Entity {
	if b == nil {
		return nil
	}
	e, _ := b.UserData().(Entity)
	return e
}
