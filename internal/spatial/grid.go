// Package spatial provides cache-efficient spatial data structures for the
// physics broad phase, per-client visibility queries, and the client input
// queue.
//
// Structures use preallocated slices with integer indices (not pointers)
// to minimize GC pressure; callers map indices back to their own entities.
package spatial

import (
	"math"
)

// SpatialGrid buckets entity indices into fixed-size cells.
//
// The grid is rebuilt from scratch whenever the caller needs fresh
// positions (Clear + Insert); queries return candidates whose cell
// overlaps the query area and the caller performs the exact test.
//
// Memory layout: cells are stored in row-major order (cells[row*cols+col])
type SpatialGrid struct {
	cellSize    float64
	invCellSize float64
	cols, rows  int
	cells       [][]uint32
	scratch     []uint32 // reusable buffer for query results
	count       int
}

// NewSpatialGrid creates a grid for the given world bounds.
// maxEntities is used to preallocate cell capacity.
func NewSpatialGrid(worldWidth, worldHeight, cellSize float64, maxEntities int) *SpatialGrid {
	cols := int(math.Ceil(worldWidth / cellSize))
	rows := int(math.Ceil(worldHeight / cellSize))
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	cells := make([][]uint32, cols*rows)
	avgPerCell := maxEntities / len(cells)
	if avgPerCell < 4 {
		avgPerCell = 4
	}
	for i := range cells {
		cells[i] = make([]uint32, 0, avgPerCell)
	}

	return &SpatialGrid{
		cellSize:    cellSize,
		invCellSize: 1.0 / cellSize,
		cols:        cols,
		rows:        rows,
		cells:       cells,
		scratch:     make([]uint32, 0, 64),
	}
}

// Clear resets all cells without deallocating underlying memory.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
	g.count = 0
}

// Insert adds an entity index at position (x, y). Positions outside the
// world are clamped into the border cells.
func (g *SpatialGrid) Insert(index uint32, x, y float64) {
	idx := g.cellIndex(x, y)
	g.cells[idx] = append(g.cells[idx], index)
	g.count++
}

// Len returns the number of inserted entries.
func (g *SpatialGrid) Len() int {
	return g.count
}

func (g *SpatialGrid) clampCol(col int) int {
	if col < 0 {
		return 0
	}
	if col >= g.cols {
		return g.cols - 1
	}
	return col
}

func (g *SpatialGrid) clampRow(row int) int {
	if row < 0 {
		return 0
	}
	if row >= g.rows {
		return g.rows - 1
	}
	return row
}

func (g *SpatialGrid) cellIndex(x, y float64) int {
	col := g.clampCol(int(math.Floor(x * g.invCellSize)))
	row := g.clampRow(int(math.Floor(y * g.invCellSize)))
	return row*g.cols + col
}

// QueryRect returns every index whose cell overlaps the axis-aligned
// rectangle [minX,maxX]×[minY,maxY].
//
// IMPORTANT: The returned slice is reused on subsequent calls.
// Copy the results if you need to persist them.
func (g *SpatialGrid) QueryRect(minX, minY, maxX, maxY float64) []uint32 {
	g.scratch = g.scratch[:0]

	minCol := g.clampCol(int(math.Floor(minX * g.invCellSize)))
	maxCol := g.clampCol(int(math.Floor(maxX * g.invCellSize)))
	minRow := g.clampRow(int(math.Floor(minY * g.invCellSize)))
	maxRow := g.clampRow(int(math.Floor(maxY * g.invCellSize)))

	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			g.scratch = append(g.scratch, g.cells[row*g.cols+col]...)
		}
	}
	return g.scratch
}

// QueryRadius returns every index whose cell overlaps the circle's
// bounding square. Same reuse rules as QueryRect.
func (g *SpatialGrid) QueryRadius(cx, cy, radius float64) []uint32 {
	return g.QueryRect(cx-radius, cy-radius, cx+radius, cy+radius)
}

// Stats returns grid statistics for debugging/profiling.
func (g *SpatialGrid) Stats() GridStats {
	var maxInCell, nonEmpty int
	for _, cell := range g.cells {
		if len(cell) > maxInCell {
			maxInCell = len(cell)
		}
		if len(cell) > 0 {
			nonEmpty++
		}
	}

	avgPerCell := 0.0
	if nonEmpty > 0 {
		avgPerCell = float64(g.count) / float64(nonEmpty)
	}

	return GridStats{
		TotalCells:     len(g.cells),
		NonEmptyCells:  nonEmpty,
		TotalEntities:  g.count,
		MaxInCell:      maxInCell,
		AvgPerNonEmpty: avgPerCell,
	}
}

// GridStats contains grid statistics for debugging.
type GridStats struct {
	TotalCells     int
	NonEmptyCells  int
	TotalEntities  int
	MaxInCell      int
	AvgPerNonEmpty float64
}

// Dimensions returns the grid dimensions.
func (g *SpatialGrid) Dimensions() (cols, rows int, cellSize float64) {
	return g.cols, g.rows, g.cellSize
}
