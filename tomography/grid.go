package tomography

import "senseye/geo"

// Grid discretizes a floor plan's bounding rectangle into square cells for
// imaging.
type Grid struct {
	Bounds   geo.Rect
	CellSize float64
	NX, NY   int
}

// NewGrid builds a grid covering bounds with the given cell size, rounding
// up so the grid fully covers the bounds.
func NewGrid(bounds geo.Rect, cellSize float64) Grid {
	if cellSize <= 0 {
		cellSize = 0.5
	}
	w := bounds.XMax - bounds.XMin
	h := bounds.YMax - bounds.YMin
	nx := int(w/cellSize) + 1
	ny := int(h/cellSize) + 1
	if nx < 1 {
		nx = 1
	}
	if ny < 1 {
		ny = 1
	}
	return Grid{Bounds: bounds, CellSize: cellSize, NX: nx, NY: ny}
}

// NumCells returns the total cell count.
func (g Grid) NumCells() int {
	return g.NX * g.NY
}

// Index maps a (col, row) grid coordinate to a flat cell index.
func (g Grid) Index(i, j int) int {
	return j*g.NX + i
}

// CellCenter returns the center point of cell (i, j).
func (g Grid) CellCenter(i, j int) geo.Point {
	return geo.Point{
		X: g.Bounds.XMin + (float64(i)+0.5)*g.CellSize,
		Y: g.Bounds.YMin + (float64(j)+0.5)*g.CellSize,
	}
}

// Cells iterates every (i, j, index, center) in row-major order.
func (g Grid) Cells(fn func(i, j, idx int, center geo.Point)) {
	for j := 0; j < g.NY; j++ {
		for i := 0; i < g.NX; i++ {
			fn(i, j, g.Index(i, j), g.CellCenter(i, j))
		}
	}
}
