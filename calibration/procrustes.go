package calibration

import (
	"errors"

	"gonum.org/v1/gonum/mat"

	"senseye/geo"
)

// ErrInsufficientAnchors is returned when fewer than 2 anchors are
// available to resolve rotation, reflection and translation.
var ErrInsufficientAnchors = errors.New("calibration: fewer than 2 anchors")

// Anchorize aligns an MDS-recovered relative layout to absolute
// coordinates using the nodes present in anchors as control points. It
// solves for the best-fit rotation/reflection and translation via
// orthogonal Procrustes (SVD of the cross-covariance matrix), then applies
// that transform to every node.
func Anchorize(layout map[string]geo.Point, anchors map[string]geo.Point) (map[string]geo.Point, error) {
	var relPts, absPts []geo.Point
	var ids []string
	for id, abs := range anchors {
		rel, ok := layout[id]
		if !ok {
			continue
		}
		relPts = append(relPts, rel)
		absPts = append(absPts, abs)
		ids = append(ids, id)
	}
	if len(relPts) < 2 {
		return nil, ErrInsufficientAnchors
	}

	relMean := centroid(relPts)
	absMean := centroid(absPts)

	h := mat.NewDense(2, 2, nil)
	for i := range relPts {
		rx, ry := relPts[i].X-relMean.X, relPts[i].Y-relMean.Y
		ax, ay := absPts[i].X-absMean.X, absPts[i].Y-absMean.Y
		h.Set(0, 0, h.At(0, 0)+rx*ax)
		h.Set(0, 1, h.At(0, 1)+rx*ay)
		h.Set(1, 0, h.At(1, 0)+ry*ax)
		h.Set(1, 1, h.At(1, 1)+ry*ay)
	}

	var svd mat.SVD
	if !svd.Factorize(h, mat.SVDFull) {
		return nil, ErrInsufficientAnchors
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	var r mat.Dense
	r.Mul(&v, u.T())

	out := make(map[string]geo.Point, len(layout))
	for id, p := range layout {
		dx, dy := p.X-relMean.X, p.Y-relMean.Y
		rx := r.At(0, 0)*dx + r.At(0, 1)*dy
		ry := r.At(1, 0)*dx + r.At(1, 1)*dy
		out[id] = geo.Point{X: rx + absMean.X, Y: ry + absMean.Y}
	}
	return out, nil
}

func centroid(pts []geo.Point) geo.Point {
	var c geo.Point
	for _, p := range pts {
		c.X += p.X
		c.Y += p.Y
	}
	n := float64(len(pts))
	c.X /= n
	c.Y /= n
	return c
}
