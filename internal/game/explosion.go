package game

import (
	"math"

	"gas-arena/internal/config"
	"gas-arena/internal/geom"
)

// Explosion is a one-tick area effect. It damages everything damageable
// within its radius and sprays shrapnel bullets.
type Explosion struct {
	game     *Game
	def      config.ExplosionDefinition
	position geom.Vec2
	source   *Player
	exploded bool
}

func (e *Explosion) Position() geom.Vec2 { return e.position }

func (e *Explosion) state() ExplosionState {
	return ExplosionState{
		Position: e.position,
		Type:     e.def.ID,
		Radius:   e.def.Radius,
	}
}

func (e *Explosion) explode() {
	if e.exploded {
		return
	}
	e.exploded = true
	g := e.game
	radiusSq := e.def.Radius * e.def.Radius

	for _, p := range append([]*Player(nil), g.livingPlayers...) {
		if geom.DistanceSquared(p.Position(), e.position) <= radiusSq {
			p.Damage(e.def.Damage, e.source)
		}
	}
	for _, o := range g.obstacles {
		if geom.DistanceSquared(o.position, e.position) <= radiusSq {
			o.Damage(e.def.Damage*e.def.ObstacleMultiplier, e.source)
		}
	}

	if e.def.ShrapnelCount <= 0 {
		return
	}
	shrapnel, ok := g.match.Guns[e.def.Shrapnel]
	if !ok {
		return
	}
	for i := 0; i < e.def.ShrapnelCount; i++ {
		g.SpawnBullet(e.source, shrapnel, e.position, g.rng.Float64()*2*math.Pi)
	}
}
