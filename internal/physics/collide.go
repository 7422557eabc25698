package physics

import (
	"math"

	"gas-arena/internal/geom"
)

// manifold is the result of a narrow-phase test. normal points from the
// first shape toward the second.
type manifold struct {
	normal geom.Vec2
	depth  float64
}

var defaultNormal = geom.V(0, 1)

func collide(a, b *Body) (manifold, bool) {
	switch {
	case a.shape.Kind == ShapeCircle && b.shape.Kind == ShapeCircle:
		return collideCircles(a.position, a.shape.Radius, b.position, b.shape.Radius)
	case a.shape.Kind == ShapeCircle && b.shape.Kind == ShapeBox:
		return collideCircleBox(a.position, a.shape.Radius, b.position, b.shape)
	case a.shape.Kind == ShapeBox && b.shape.Kind == ShapeCircle:
		m, ok := collideCircleBox(b.position, b.shape.Radius, a.position, a.shape)
		m.normal = m.normal.Scale(-1)
		return m, ok
	default:
		return collideBoxes(a.position, a.shape, b.position, b.shape)
	}
}

func collideCircles(pa geom.Vec2, ra float64, pb geom.Vec2, rb float64) (manifold, bool) {
	d := pb.Sub(pa)
	distSq := d.LengthSquared()
	r := ra + rb
	if distSq > r*r {
		return manifold{}, false
	}
	dist := math.Sqrt(distSq)
	if dist == 0 {
		return manifold{normal: defaultNormal, depth: r}, true
	}
	return manifold{normal: d.Scale(1 / dist), depth: r - dist}, true
}

func collideCircleBox(pc geom.Vec2, r float64, pb geom.Vec2, box Shape) (manifold, bool) {
	local := pc.Sub(pb)
	closest := geom.V(
		clamp(local.X, -box.HalfWidth, box.HalfWidth),
		clamp(local.Y, -box.HalfHeight, box.HalfHeight),
	)

	if closest != local {
		d := closest.Sub(local)
		distSq := d.LengthSquared()
		if distSq > r*r {
			return manifold{}, false
		}
		dist := math.Sqrt(distSq)
		if dist == 0 {
			return manifold{normal: defaultNormal, depth: r}, true
		}
		return manifold{normal: d.Scale(1 / dist), depth: r - dist}, true
	}

	// Center inside the box: push out along the shallowest axis.
	dx := box.HalfWidth - math.Abs(local.X)
	dy := box.HalfHeight - math.Abs(local.Y)
	if dx < dy {
		n := geom.V(1, 0)
		if local.X > 0 {
			n = geom.V(-1, 0)
		}
		return manifold{normal: n, depth: dx + r}, true
	}
	n := geom.V(0, 1)
	if local.Y > 0 {
		n = geom.V(0, -1)
	}
	return manifold{normal: n, depth: dy + r}, true
}

func collideBoxes(pa geom.Vec2, a Shape, pb geom.Vec2, b Shape) (manifold, bool) {
	d := pb.Sub(pa)
	ox := a.HalfWidth + b.HalfWidth - math.Abs(d.X)
	oy := a.HalfHeight + b.HalfHeight - math.Abs(d.Y)
	if ox < 0 || oy < 0 {
		return manifold{}, false
	}
	if ox < oy {
		n := geom.V(1, 0)
		if d.X < 0 {
			n = geom.V(-1, 0)
		}
		return manifold{normal: n, depth: ox}, true
	}
	n := geom.V(0, 1)
	if d.Y < 0 {
		n = geom.V(0, -1)
	}
	return manifold{normal: n, depth: oy}, true
}
