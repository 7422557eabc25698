package game

import (
	"math"

	"gas-arena/internal/geom"
	"gas-arena/internal/spatial"
)

// VisibilityIndex answers "which registry entities lie inside this view"
// from a uniform grid rebuilt on demand. Results depend only on the
// entity positions at rebuild time and the fixed view rectangle.
type VisibilityIndex struct {
	halfWidth  float64
	halfHeight float64
	grid       *spatial.SpatialGrid
	entities   []Entity
	built      bool
}

// NewVisibilityIndex sizes the grid so a view spans a few cells.
func NewVisibilityIndex(mapWidth, mapHeight, halfWidth, halfHeight float64) *VisibilityIndex {
	cell := math.Max(halfWidth, halfHeight)
	if cell <= 0 {
		cell = 32
	}
	return &VisibilityIndex{
		halfWidth:  halfWidth,
		halfHeight: halfHeight,
		grid:       spatial.NewSpatialGrid(mapWidth, mapHeight, cell, 256),
		entities:   make([]Entity, 0, 256),
	}
}

// Rebuild indexes the given sets. It is a no-op until Invalidate is
// called again.
func (v *VisibilityIndex) Rebuild(sets ...EntitySet) {
	if v.built {
		return
	}
	v.grid.Clear()
	v.entities = v.entities[:0]
	for _, set := range sets {
		for _, e := range set {
			pos := e.Position()
			v.grid.Insert(uint32(len(v.entities)), pos.X, pos.Y)
			v.entities = append(v.entities, e)
		}
	}
	v.built = true
}

// Invalidate forces the next Rebuild to run. Call it whenever positions
// or registry membership may have changed.
func (v *VisibilityIndex) Invalidate() {
	v.built = false
}

// Compute returns every indexed entity inside the view centered on center.
func (v *VisibilityIndex) Compute(center geom.Vec2) EntitySet {
	out := make(EntitySet)
	candidates := v.grid.QueryRect(
		center.X-v.halfWidth, center.Y-v.halfHeight,
		center.X+v.halfWidth, center.Y+v.halfHeight,
	)
	for _, idx := range candidates {
		e := v.entities[idx]
		if v.InView(center, e.Position()) {
			out.Add(e)
		}
	}
	return out
}

// InView reports whether pos lies inside the view centered on center
// (edges inclusive).
func (v *VisibilityIndex) InView(center, pos geom.Vec2) bool {
	return math.Abs(pos.X-center.X) <= v.halfWidth && math.Abs(pos.Y-center.Y) <= v.halfHeight
}
