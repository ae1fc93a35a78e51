// Package geo holds the small 2D geometry helpers shared by local
// inference's zone crossing test, the tomography grid's point-to-segment
// kernel, and calibration's wall-candidate midpoint/perpendicular
// construction. PointToSegment is grounded on
// ApiStack-engine-go/fusion/dim_constrain.go's distanceCal, which computes
// the same point-to-line and point-to-endpoint distances for 1D dimension
// constraints; here it is generalized into a single named helper reused
// across three components instead of being re-derived in each one.
package geo

import "math"

// Point is a 2D coordinate in meters.
type Point struct{ X, Y float64 }

// Rect is an axis-aligned rectangle, used to model zones the way
// ApiStack-engine-go/fusion/layer_manager.go's Layer/Region types do.
type Rect struct{ XMin, YMin, XMax, YMax float64 }

// Contains reports whether p lies within r (inclusive).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.XMin && p.X <= r.XMax && p.Y >= r.YMin && p.Y <= r.YMax
}

// PointToSegment returns the perpendicular distance from p to the infinite
// line through (a,b), and the distance from p to the nearest endpoint when
// p's projection falls outside the segment (0 when it falls within).
func PointToSegment(p, a, b Point) (distLine, distEndpoint float64) {
	dx := b.X - a.X
	dy := b.Y - a.Y
	lenSq := dx*dx + dy*dy
	if lenSq < 1e-12 {
		d := math.Hypot(p.X-a.X, p.Y-a.Y)
		return d, d
	}
	A := dy
	B := -dx
	C := dx*a.Y - dy*a.X
	norm := math.Hypot(A, B)
	distLine = math.Abs(A*p.X+B*p.Y+C) / norm

	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	switch {
	case t < 0:
		distEndpoint = math.Hypot(p.X-a.X, p.Y-a.Y)
	case t > 1:
		distEndpoint = math.Hypot(p.X-b.X, p.Y-b.Y)
	default:
		distEndpoint = 0
	}
	return distLine, distEndpoint
}

// SegmentDistance returns the distance from p to the closest point on
// segment (a,b): the perpendicular distance when p's projection falls
// within the segment, otherwise the distance to the nearer endpoint.
func SegmentDistance(p, a, b Point) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	lenSq := dx*dx + dy*dy
	if lenSq < 1e-12 {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	if t < 0 {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}
	if t > 1 {
		return math.Hypot(p.X-b.X, p.Y-b.Y)
	}
	distLine, _ := PointToSegment(p, a, b)
	return distLine
}

// ClosestPointOnSegment returns the point on segment (a,b) nearest to p and
// the parametric t in [0,1] at which it occurs.
func ClosestPointOnSegment(p, a, b Point) (Point, float64) {
	dx := b.X - a.X
	dy := b.Y - a.Y
	lenSq := dx*dx + dy*dy
	if lenSq < 1e-12 {
		return a, 0
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return Point{X: a.X + t*dx, Y: a.Y + t*dy}, t
}

// SegmentIntersectsRect reports whether the segment (a,b) passes through
// rectangle r: either endpoint lies inside r, or the segment crosses one of
// r's four edges.
func SegmentIntersectsRect(a, b Point, r Rect) bool {
	if r.Contains(a) || r.Contains(b) {
		return true
	}
	corners := [4]Point{
		{r.XMin, r.YMin}, {r.XMax, r.YMin}, {r.XMax, r.YMax}, {r.XMin, r.YMax},
	}
	for i := 0; i < 4; i++ {
		c1 := corners[i]
		c2 := corners[(i+1)%4]
		if segmentsIntersect(a, b, c1, c2) {
			return true
		}
	}
	return false
}

func segmentsIntersect(p1, p2, p3, p4 Point) bool {
	d1 := cross(p4, p3, p1)
	d2 := cross(p4, p3, p2)
	d3 := cross(p2, p1, p3)
	d4 := cross(p2, p1, p4)
	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	return false
}

func cross(a, b, c Point) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// Midpoint returns the midpoint of segment (a,b).
func Midpoint(a, b Point) Point {
	return Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}
