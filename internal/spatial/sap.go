package spatial

import (
	"sort"
)

// SweepAndPrune is a single-axis broad phase: each body's AABB is projected
// onto X, endpoints are sorted, and overlapping intervals are reported when
// their Y ranges also overlap.
//
// Endpoints are kept between calls so insertion sort stays close to O(n)
// while bodies move a little per step.
type SweepAndPrune struct {
	endpoints  []SAPEndpoint
	pairs      []CollisionPair
	active     []uint32
	useInsSort bool
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	MinX, MinY, MaxX, MaxY float64
}

// Overlaps reports whether two boxes touch (edges inclusive).
func (a AABB) Overlaps(b AABB) bool {
	return a.MinX <= b.MaxX && b.MinX <= a.MaxX && a.MinY <= b.MaxY && b.MinY <= a.MaxY
}

// SAPEndpoint represents one end of a bounding interval on the sweep axis.
type SAPEndpoint struct {
	Value float64
	Index uint32
	IsMin bool
}

// CollisionPair holds two indices whose boxes overlap. A is always < B.
type CollisionPair struct {
	A, B uint32
}

// NewSweepAndPrune creates a broad phase sized for maxBodies.
func NewSweepAndPrune(maxBodies int) *SweepAndPrune {
	return &SweepAndPrune{
		endpoints:  make([]SAPEndpoint, 0, maxBodies*2),
		pairs:      make([]CollisionPair, 0, maxBodies),
		active:     make([]uint32, 0, maxBodies/4+1),
		useInsSort: true,
	}
}

// Update rebuilds endpoints from boxes (indexed by position in the slice)
// and returns the overlapping pairs. The returned slice is reused on
// subsequent calls.
func (s *SweepAndPrune) Update(boxes []AABB) []CollisionPair {
	s.pairs = s.pairs[:0]

	if len(s.endpoints) == len(boxes)*2 {
		// Same body set as last call: refresh values, keep the sorted order.
		for i := range s.endpoints {
			ep := &s.endpoints[i]
			if ep.IsMin {
				ep.Value = boxes[ep.Index].MinX
			} else {
				ep.Value = boxes[ep.Index].MaxX
			}
		}
	} else {
		s.endpoints = s.endpoints[:0]
		for i, b := range boxes {
			s.endpoints = append(s.endpoints,
				SAPEndpoint{Value: b.MinX, Index: uint32(i), IsMin: true},
				SAPEndpoint{Value: b.MaxX, Index: uint32(i), IsMin: false},
			)
		}
	}

	if s.useInsSort && len(s.endpoints) > 1 {
		insertionSortEndpoints(s.endpoints)
	} else {
		sort.Slice(s.endpoints, func(i, j int) bool {
			return endpointLess(s.endpoints[i], s.endpoints[j])
		})
	}

	s.active = s.active[:0]
	for _, ep := range s.endpoints {
		if ep.IsMin {
			for _, other := range s.active {
				if !boxes[ep.Index].Overlaps(boxes[other]) {
					continue
				}
				a, b := ep.Index, other
				if a > b {
					a, b = b, a
				}
				s.pairs = append(s.pairs, CollisionPair{A: a, B: b})
			}
			s.active = append(s.active, ep.Index)
			continue
		}
		for i, id := range s.active {
			if id == ep.Index {
				s.active[i] = s.active[len(s.active)-1]
				s.active = s.active[:len(s.active)-1]
				break
			}
		}
	}

	return s.pairs
}

// SetInsertionSort switches between insertion sort (default) and sort.Slice.
func (s *SweepAndPrune) SetInsertionSort(enabled bool) {
	s.useInsSort = enabled
}

// Min endpoints sort before max endpoints at equal values so touching
// intervals are reported.
func endpointLess(a, b SAPEndpoint) bool {
	if a.Value != b.Value {
		return a.Value < b.Value
	}
	return a.IsMin && !b.IsMin
}

func insertionSortEndpoints(eps []SAPEndpoint) {
	for i := 1; i < len(eps); i++ {
		key := eps[i]
		j := i - 1
		for j >= 0 && endpointLess(key, eps[j]) {
			eps[j+1] = eps[j]
			j--
		}
		eps[j+1] = key
	}
}
