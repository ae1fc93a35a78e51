package tomography

import "gonum.org/v1/gonum/mat"

// pinvSolve falls back to a pseudoinverse solve via SVD when the
// regularized normal equations are still singular, mirroring the
// teacher's pinv (ApiStack-engine-go/fusion/utils.go).
func pinvSolve(a *mat.Dense, b *mat.VecDense) (*mat.VecDense, bool) {
	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDThin) {
		return nil, false
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	s := svd.Values(nil)

	maxS := 0.0
	if len(s) > 0 {
		maxS = s[0]
	}
	rows, cols := a.Dims()
	n := rows
	if cols > n {
		n = cols
	}
	tol := 1e-15 * float64(n) * maxS

	sigInv := mat.NewDense(len(s), len(s), nil)
	for i, val := range s {
		if val > tol {
			sigInv.Set(i, i, 1.0/val)
		}
	}

	var temp mat.Dense
	temp.Mul(&v, sigInv)
	var pinv mat.Dense
	pinv.Mul(&temp, u.T())

	var out mat.VecDense
	out.MulVec(&pinv, b)
	return &out, true
}
