// Package physics is the 2D rigid-body world the simulation steps once per
// tick. It exposes body creation/destruction, integration, and contact
// callbacks with an installable collision filter.
package physics

import (
	"math"

	"gas-arena/internal/geom"
	"gas-arena/internal/spatial"
)

// BodyType selects whether a body moves.
type BodyType uint8

const (
	Static BodyType = iota
	Dynamic
)

// ShapeKind is the collision shape of a body.
type ShapeKind uint8

const (
	ShapeCircle ShapeKind = iota
	ShapeBox
)

// Shape is a circle (Radius) or an axis-aligned box (HalfWidth, HalfHeight)
// centered on the body position.
type Shape struct {
	Kind       ShapeKind
	Radius     float64
	HalfWidth  float64
	HalfHeight float64
}

// Circle returns a circle shape. A zero radius is a point.
func Circle(radius float64) Shape {
	return Shape{Kind: ShapeCircle, Radius: radius}
}

// Box returns an axis-aligned box shape from half extents.
func Box(halfWidth, halfHeight float64) Shape {
	return Shape{Kind: ShapeBox, HalfWidth: halfWidth, HalfHeight: halfHeight}
}

// BodyDef describes a body to create.
type BodyDef struct {
	Type          BodyType
	Shape         Shape
	Position      geom.Vec2
	Bullet        bool // swept against other shapes; no collision response
	LinearDamping float64
	Tag           uint8 // caller-defined category consulted by the filter
	UserData      any
}

// Body is a simulated body owned by a Space.
type Body struct {
	id            uint32
	bodyType      BodyType
	shape         Shape
	position      geom.Vec2
	previous      geom.Vec2 // position before the last integration
	velocity      geom.Vec2
	bullet        bool
	linearDamping float64
	tag           uint8
	userData      any
	destroyed     bool
}

func (b *Body) Position() geom.Vec2 {
	return b.position
}

// SetPosition teleports the body. Contacts are re-evaluated on the next step.
func (b *Body) SetPosition(p geom.Vec2) {
	b.position = p
	b.previous = p
}

func (b *Body) LinearVelocity() geom.Vec2 {
	return b.velocity
}

// SetLinearVelocity sets the velocity in world units per second. Static
// bodies ignore it.
func (b *Body) SetLinearVelocity(v geom.Vec2) {
	if b.bodyType == Static {
		return
	}
	b.velocity = v
}

func (b *Body) Type() BodyType  { return b.bodyType }
func (b *Body) Shape() Shape    { return b.shape }
func (b *Body) IsBullet() bool  { return b.bullet }
func (b *Body) Tag() uint8      { return b.tag }
func (b *Body) UserData() any   { return b.userData }
func (b *Body) Destroyed() bool { return b.destroyed }

func (b *Body) inverseMass() float64 {
	if b.bodyType == Static {
		return 0
	}
	return 1
}

// AABB returns the body's bounding box at its current position.
func (b *Body) AABB() spatial.AABB {
	hw, hh := b.shape.HalfWidth, b.shape.HalfHeight
	if b.shape.Kind == ShapeCircle {
		hw, hh = b.shape.Radius, b.shape.Radius
	}
	return spatial.AABB{
		MinX: b.position.X - hw,
		MinY: b.position.Y - hh,
		MaxX: b.position.X + hw,
		MaxY: b.position.Y + hh,
	}
}

// sweptAABB covers everything a bullet touched during the last step.
func (b *Body) sweptAABB() spatial.AABB {
	box := b.AABB()
	if !b.bullet || b.previous == b.position {
		return box
	}
	d := b.previous.Sub(b.position)
	if d.X < 0 {
		box.MinX += d.X
	} else {
		box.MaxX += d.X
	}
	if d.Y < 0 {
		box.MinY += d.Y
	} else {
		box.MaxY += d.Y
	}
	return box
}

func (b *Body) valid() bool {
	return !b.destroyed && b.position.IsFinite()
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
