package physics

import (
	"math"

	"gas-arena/internal/geom"
)

type sweepHit struct {
	other *Body
	t     float64
}

// sweep returns the fraction of the bullet's last step at which it first
// touched other, which is held at its current position. A bullet that
// already overlapped other at the start of the step hits at 0.
func sweep(bullet, other *Body) (float64, bool) {
	start := bullet.previous
	delta := bullet.position.Sub(start)
	if delta == (geom.Vec2{}) {
		if _, ok := collide(bullet, other); ok {
			return 0, true
		}
		return 0, false
	}

	if bullet.shape.Kind == ShapeBox {
		hw, hh := extents(other.shape)
		return segmentBox(start, delta, other.position,
			hw+bullet.shape.HalfWidth, hh+bullet.shape.HalfHeight)
	}

	r := bullet.shape.Radius
	if other.shape.Kind == ShapeCircle {
		return segmentCircle(start, delta, other.position, other.shape.Radius+r)
	}
	return segmentRoundedBox(start, delta, other.position, other.shape, r)
}

func extents(s Shape) (float64, float64) {
	if s.Kind == ShapeCircle {
		return s.Radius, s.Radius
	}
	return s.HalfWidth, s.HalfHeight
}

// segmentCircle intersects start + t*delta, t in [0,1], with a circle.
func segmentCircle(start, delta, center geom.Vec2, r float64) (float64, bool) {
	f := start.Sub(center)
	c := f.LengthSquared() - r*r
	if c <= 0 {
		return 0, true
	}
	a := delta.LengthSquared()
	b := f.Dot(delta)
	disc := b*b - a*c
	if a == 0 || b >= 0 || disc < 0 {
		return 0, false
	}
	t := (-b - math.Sqrt(disc)) / a
	if t > 1 {
		return 0, false
	}
	return t, true
}

// segmentBox is a slab test of start + t*delta against an axis-aligned box.
func segmentBox(start, delta, center geom.Vec2, hw, hh float64) (float64, bool) {
	local := start.Sub(center)
	tMin, tMax := 0.0, 1.0
	for _, axis := range [2]struct{ p, d, h float64 }{
		{local.X, delta.X, hw},
		{local.Y, delta.Y, hh},
	} {
		if axis.d == 0 {
			if math.Abs(axis.p) > axis.h {
				return 0, false
			}
			continue
		}
		t1 := (-axis.h - axis.p) / axis.d
		t2 := (axis.h - axis.p) / axis.d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return 0, false
		}
	}
	return tMin, true
}

// segmentRoundedBox intersects the segment with a box grown by r: two
// extended slabs plus a circle at each corner.
func segmentRoundedBox(start, delta, center geom.Vec2, box Shape, r float64) (float64, bool) {
	best, hit := math.Inf(1), false
	consider := func(t float64, ok bool) {
		if ok && t < best {
			best, hit = t, true
		}
	}
	consider(segmentBox(start, delta, center, box.HalfWidth+r, box.HalfHeight))
	consider(segmentBox(start, delta, center, box.HalfWidth, box.HalfHeight+r))
	if r > 0 {
		for _, corner := range [4]geom.Vec2{
			geom.V(-box.HalfWidth, -box.HalfHeight),
			geom.V(box.HalfWidth, -box.HalfHeight),
			geom.V(-box.HalfWidth, box.HalfHeight),
			geom.V(box.HalfWidth, box.HalfHeight),
		} {
			consider(segmentCircle(start, delta, center.Add(corner), r))
		}
	}
	return best, hit
}
