package calibration

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"senseye/geo"
)

// ClassicalMDS recovers a 2D relative layout from a fully-connected
// distance matrix via double centering and the top-2 eigenpairs of the
// resulting Gram matrix.
func ClassicalMDS(m *Matrix) (map[string]geo.Point, error) {
	n := len(m.Nodes)
	if n < 3 {
		return nil, ErrTooFewNodes
	}
	if !m.Connected() {
		return nil, ErrDisconnectedGraph
	}

	sq := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			d := m.D[i][j]
			sq.Set(i, j, d*d)
		}
	}

	// Double centering: B = -1/2 J D^2 J, J = I - (1/n) * ones.
	b := mat.NewDense(n, n, nil)
	rowMean := make([]float64, n)
	colMean := make([]float64, n)
	grandMean := 0.0
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := sq.At(i, j)
			rowMean[i] += v
			colMean[j] += v
			grandMean += v
		}
	}
	for i := range rowMean {
		rowMean[i] /= float64(n)
		colMean[i] /= float64(n)
	}
	grandMean /= float64(n * n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			b.Set(i, j, -0.5*(sq.At(i, j)-rowMean[i]-colMean[j]+grandMean))
		}
	}

	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sym.SetSym(i, j, b.At(i, j))
		}
	}

	var eig mat.EigenSym
	if !eig.Factorize(sym, true) {
		return nil, ErrDisconnectedGraph
	}
	values := eig.Values(nil)
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	// EigenSym returns eigenvalues ascending; the layout uses the two
	// largest.
	i1, i2 := n-1, n-2
	l1, l2 := values[i1], values[i2]
	if l1 < 0 {
		l1 = 0
	}
	if l2 < 0 {
		l2 = 0
	}
	s1, s2 := math.Sqrt(l1), math.Sqrt(l2)

	out := make(map[string]geo.Point, n)
	for idx, node := range m.Nodes {
		out[node] = geo.Point{
			X: vecs.At(idx, i1) * s1,
			Y: vecs.At(idx, i2) * s2,
		}
	}
	return out, nil
}
