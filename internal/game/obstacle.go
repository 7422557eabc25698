package game

import (
	"gas-arena/internal/config"
	"gas-arena/internal/geom"
	"gas-arena/internal/physics"
)

// Obstacle is a static, destructible map object. Destroyed obstacles stay
// in the registry as rubble so late joiners still see them.
type Obstacle struct {
	id       uint32
	game     *Game
	def      config.ObstacleDefinition
	body     *physics.Body
	position geom.Vec2
	rotation float64
	health   float64
	dead     bool
}

func (o *Obstacle) ID() uint32          { return o.id }
func (o *Obstacle) Kind() Kind          { return KindObstacle }
func (o *Obstacle) Position() geom.Vec2 { return o.position }
func (o *Obstacle) Rotation() float64   { return o.rotation }
func (o *Obstacle) Health() float64     { return o.health }
func (o *Obstacle) Dead() bool          { return o.dead }

// Type returns the obstacle type ID.
func (o *Obstacle) Type() string { return o.def.ID }

func (o *Obstacle) Partial() PartialState {
	return PartialState{
		ID:       o.id,
		Kind:     KindObstacle,
		Position: o.position,
		Rotation: o.rotation,
		Health:   o.health,
	}
}

func (o *Obstacle) Full() FullState {
	return FullState{
		PartialState: o.Partial(),
		Type:         o.def.ID,
		Radius:       o.def.Radius,
		HalfWidth:    o.def.HalfWidth,
		HalfHeight:   o.def.HalfHeight,
		Dead:         o.dead,
	}
}

// Damage reduces health; at zero the obstacle breaks, dropping its loot
// and detonating its explosion if it has one.
func (o *Obstacle) Damage(amount float64, source *Player) {
	if o.dead || amount <= 0 {
		return
	}
	g := o.game

	o.health -= amount
	if o.health > 0 {
		g.diff.MarkPartial(o)
		return
	}

	o.health = 0
	o.dead = true
	g.diff.MarkFull(o)
	if o.body != nil {
		g.world.DestroyBody(o.body)
		o.body = nil
	}

	if o.def.Loot != "" {
		g.SpawnLoot(o.def.Loot, o.position)
	}
	if o.def.Explosion != "" {
		if def, ok := g.match.Explosions[o.def.Explosion]; ok {
			g.AddExplosion(def, o.position, source)
		}
	}
}

func obstacleShape(def config.ObstacleDefinition) physics.Shape {
	if def.Shape == "box" {
		return physics.Box(def.HalfWidth, def.HalfHeight)
	}
	return physics.Circle(def.Radius)
}
