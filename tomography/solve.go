package tomography

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"senseye/geo"
	"senseye/weight"
)

// Image is the reconstructed occupancy field: one attenuation-density
// value per grid cell.
type Image struct {
	Grid   Grid
	Values []float64
}

// ValueAt returns the reconstructed value at the given world point, or 0
// if outside the grid.
func (img Image) ValueAt(p geo.Point) float64 {
	if !img.Grid.Bounds.Contains(p) {
		return 0
	}
	i := int((p.X - img.Grid.Bounds.XMin) / img.Grid.CellSize)
	j := int((p.Y - img.Grid.Bounds.YMin) / img.Grid.CellSize)
	if i < 0 || i >= img.Grid.NX || j < 0 || j >= img.Grid.NY {
		return 0
	}
	return img.Values[img.Grid.Index(i, j)]
}

// Reconstruct images the occupancy field from the given link readings:
// builds the row-normalized Gaussian sensing matrix, whitens by each
// link's precision, applies adaptive ridge regularization, and solves the
// normal equations via Cholesky, falling back to an SVD pseudoinverse when
// the regularized system is still not positive definite.
func Reconstruct(cfg Config, bounds geo.Rect, links []LinkReading) (Image, error) {
	if len(links) == 0 {
		return Image{}, ErrNoLinks
	}
	g := NewGrid(bounds, cfg.CellSizeM)
	nCells := g.NumCells()
	nLinks := len(links)

	a := mat.NewDense(nLinks, nCells, nil)
	y := mat.NewVecDense(nLinks, nil)
	for r, link := range links {
		row := sensingRow(g, cfg, link)
		sqrtPi := math.Sqrt(weight.Precision(link.Confidence))
		for c, v := range row {
			a.Set(r, c, v*sqrtPi)
		}
		y.SetVec(r, link.AttenuationDB*sqrtPi)
	}

	var ata mat.Dense
	ata.Mul(a.T(), a)

	ridge := adaptiveRidge(cfg, &ata, nCells, nLinks)
	for i := 0; i < nCells; i++ {
		ata.Set(i, i, ata.At(i, i)+ridge)
	}

	var aty mat.VecDense
	aty.MulVec(a.T(), y)

	x, ok := choleskySolve(&ata, &aty)
	if !ok {
		x, ok = pinvSolve(&ata, &aty)
		if !ok {
			return Image{}, ErrIllConditioned
		}
	}

	values := make([]float64, nCells)
	for i := 0; i < nCells; i++ {
		v := x.AtVec(i)
		if v < 0 {
			v = 0
		}
		values[i] = v
	}
	return Image{Grid: g, Values: values}, nil
}

// adaptiveRidge implements α = κ_const · (n_cells/n_links) · (1 + log₁₀(cond)),
// clipped to [cfg.MinRidge, cfg.MaxRidge]. cond(A^T W A) is estimated from
// the ratio of the largest to smallest diagonal entries (a cheap proxy
// avoiding a full eigendecomposition on every reconstruction): an
// underdetermined or poorly-covered grid both inflates n_cells/n_links and
// worsens that ratio, so both factors push the ridge up together.
func adaptiveRidge(cfg Config, ata *mat.Dense, nCells, nLinks int) float64 {
	n, _ := ata.Dims()
	maxDiag, minDiag := 0.0, math.Inf(1)
	for i := 0; i < n; i++ {
		d := ata.At(i, i)
		if d > maxDiag {
			maxDiag = d
		}
		if d > 1e-12 && d < minDiag {
			minDiag = d
		}
	}
	if math.IsInf(minDiag, 1) || minDiag <= 1e-12 {
		return cfg.MaxRidge
	}
	cond := maxDiag / minDiag

	coverage := float64(nCells) / math.Max(1, float64(nLinks))
	ridge := cfg.RidgeConst * coverage * (1 + math.Log10(math.Max(cond, 1)))

	if ridge < cfg.MinRidge {
		ridge = cfg.MinRidge
	}
	if ridge > cfg.MaxRidge {
		ridge = cfg.MaxRidge
	}
	return ridge
}

func choleskySolve(ata *mat.Dense, aty *mat.VecDense) (*mat.VecDense, bool) {
	var chol mat.Cholesky
	sym := mat.NewSymDense(ata.RawMatrix().Rows, nil)
	n, _ := ata.Dims()
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sym.SetSym(i, j, ata.At(i, j))
		}
	}
	if !chol.Factorize(sym) {
		return nil, false
	}
	var x mat.VecDense
	if err := chol.SolveVecTo(&x, aty); err != nil {
		return nil, false
	}
	return &x, true
}
