package tomography

import (
	"math"

	"senseye/geo"
)

// LinkReading is one attenuation observation between two known positions,
// the tomography package's input unit.
type LinkReading struct {
	A, B          geo.Point
	AttenuationDB float64
	Confidence    float64
}

// sensingRow builds one row-normalized Gaussian-kernel row of the sensing
// matrix for a single link: cells near the link's line of sight get more
// weight, falling off with an ellipse governed by KernelBandwidth. Cells
// farther than the link length from the segment (i.e. well outside the
// first Fresnel-like ellipse) get zero weight.
func sensingRow(g Grid, cfg Config, link LinkReading) []float64 {
	row := make([]float64, g.NumCells())
	length := math.Hypot(link.B.X-link.A.X, link.B.Y-link.A.Y)
	if length < 1e-6 {
		return row
	}
	sigma := cfg.KernelBandwidth
	sum := 0.0
	g.Cells(func(i, j, idx int, center geo.Point) {
		perp := geo.SegmentDistance(center, link.A, link.B)
		w := 0.0
		if perp <= length {
			w = math.Exp(-(perp * perp) / (2 * sigma * sigma))
		}
		row[idx] = w
		sum += w
	})
	if sum > 1e-9 {
		for idx := range row {
			row[idx] /= sum
		}
	}
	return row
}
