package trilateration

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"senseye/geo"
)

// Anchor is a known reference position used to trilaterate a device.
type Anchor struct {
	ID  string
	Pos geo.Point
}

// Range is one anchor's distance estimate to the device being located.
type Range struct {
	AnchorID   string
	Distance   float64
	Confidence float64
}

// Result is the outcome of a successful solve.
type Result struct {
	Position geo.Point
	// ResidualRMS is the weighted RMS of |estimate - measured| distance
	// residuals at the solution, over the anchors retained after outlier
	// rejection, weighted by 1/σ².
	ResidualRMS float64
	// Rejected lists anchor IDs excluded by subset-selection outlier
	// rejection.
	Rejected []string
	// Iterations is the number of Gauss-Newton steps taken by the final
	// refit.
	Iterations int
}

// Solve estimates a 2D position from ranges to anchors using IRLS with
// Tukey biweight robust weights and damped Gauss-Newton, choosing among the
// full anchor set, every leave-one-out subset, and (for small anchor
// counts) every size-3 subset by inlier count and residual score, then
// refitting on the winning subset's inliers.
func Solve(cfg Config, anchors map[string]Anchor, ranges []Range) (Result, error) {
	valid := usableRanges(anchors, ranges)
	if len(valid) < cfg.MinAnchors {
		return Result{}, ErrInsufficientAnchors
	}

	var bestPos geo.Point
	var bestNormResid []float64
	bestInliers := -1
	bestScore := math.Inf(1)
	found := false

	for _, idx := range candidateIndexSets(len(valid), cfg.MaxSubsetAnchors, cfg.MinAnchors) {
		subset := make([]Range, len(idx))
		for i, j := range idx {
			subset[i] = valid[j]
		}

		gx, gy := initialGuess(anchors, subset)
		cx, cy := centroid(anchors, subset)
		for _, seed := range [][2]float64{{gx, gy}, {cx, cy}} {
			pos, _, ok := solvePosition(cfg, anchors, subset, seed[0], seed[1])
			if !ok {
				continue
			}
			normResid := normalizedResiduals(cfg, anchors, valid, pos)
			inliers, score := scoreResiduals(normResid, cfg.InlierThreshold, cfg.ScoreCap)
			if inliers > bestInliers || (inliers == bestInliers && score < bestScore) {
				bestInliers, bestScore, bestPos, bestNormResid = inliers, score, pos, normResid
				found = true
			}
		}
	}
	if !found {
		return Result{}, ErrDivergence
	}

	var inlierSet []Range
	var rejected []string
	for i, r := range valid {
		if bestNormResid[i] <= cfg.InlierThreshold {
			inlierSet = append(inlierSet, r)
		} else {
			rejected = append(rejected, r.AnchorID)
		}
	}
	solveSet := inlierSet
	if len(solveSet) < cfg.MinAnchors {
		solveSet = valid
		rejected = nil
	}

	finalPos, iterations, ok := solvePosition(cfg, anchors, solveSet, bestPos.X, bestPos.Y)
	if !ok {
		return Result{}, ErrDivergence
	}

	rms := weightedRMS(cfg, anchors, solveSet, finalPos)
	if math.IsNaN(rms) || math.IsInf(rms, 0) || rms > cfg.MaxResidualRMS {
		return Result{}, ErrDivergence
	}

	return Result{
		Position:    finalPos,
		ResidualRMS: rms,
		Rejected:    rejected,
		Iterations:  iterations,
	}, nil
}

func usableRanges(anchors map[string]Anchor, ranges []Range) []Range {
	out := make([]Range, 0, len(ranges))
	for _, r := range ranges {
		if _, ok := anchors[r.AnchorID]; !ok {
			continue
		}
		if r.Distance <= 0 || math.IsNaN(r.Distance) || math.IsInf(r.Distance, 0) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// candidateIndexSets returns the full index set, every leave-one-out
// (n-1)-subset when n exceeds minAnchors, and (when n is small enough that
// enumeration stays cheap) every size-3 subset, deduplicated.
func candidateIndexSets(n, maxSubsetAnchors, minAnchors int) [][]int {
	full := make([]int, n)
	for i := range full {
		full[i] = i
	}

	seen := map[uint64]bool{}
	var out [][]int
	add := func(idx []int) {
		var key uint64
		for _, i := range idx {
			key |= 1 << uint(i)
		}
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, idx)
	}

	add(full)
	if n > minAnchors {
		for i := range full {
			add(excludeInt(full, i))
		}
	}
	if n <= maxSubsetAnchors {
		for _, c := range combinations(n, 3) {
			add(c)
		}
	}
	return out
}

func excludeInt(xs []int, idx int) []int {
	out := make([]int, 0, len(xs)-1)
	for i, x := range xs {
		if i != idx {
			out = append(out, x)
		}
	}
	return out
}

// combinations returns every k-element subset of {0, ..., n-1} as sorted
// index slices.
func combinations(n, k int) [][]int {
	if k < 0 || k > n {
		return nil
	}
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	var out [][]int
	for {
		out = append(out, append([]int(nil), idx...))
		i := k - 1
		for i >= 0 && idx[i] == n-k+i {
			i--
		}
		if i < 0 {
			return out
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}

// rangeSigma is the distance-dependent range uncertainty model: closer
// ranges are trusted more tightly, farther ones get a wider band.
func rangeSigma(cfg Config, distance float64) float64 {
	sigma := cfg.SigmaSlope*distance + cfg.SigmaIntercept
	if sigma < cfg.SigmaFloor {
		return cfg.SigmaFloor
	}
	return sigma
}

// solvePosition runs IRLS Gauss-Newton over exactly the given ranges,
// starting from (x, y). Each iteration recomputes the Tukey biweight
// robust factor from the current residuals against the sigma-derived
// cutoff, falling back to the base (non-robust) weights if every
// observation would otherwise be zeroed out.
func solvePosition(cfg Config, anchors map[string]Anchor, ranges []Range, x, y float64) (geo.Point, int, bool) {
	n := len(ranges)
	if n == 0 {
		return geo.Point{}, 0, false
	}

	iter := 0
	for ; iter < cfg.MaxIterations; iter++ {
		jac := mat.NewDense(n, 2, nil)
		residuals := make([]float64, n)
		baseWeights := make([]float64, n)
		weights := make([]float64, n)
		maxWeight := 0.0

		for i, r := range ranges {
			a := anchors[r.AnchorID].Pos
			dx, dy := x-a.X, y-a.Y
			d := math.Hypot(dx, dy)
			if d < 1e-9 {
				d = 1e-9
			}
			residuals[i] = d - r.Distance
			jac.Set(i, 0, dx/d)
			jac.Set(i, 1, dy/d)

			sigma := rangeSigma(cfg, r.Distance)
			base := 1.0 / (sigma * sigma)
			baseWeights[i] = base

			cutoff := cfg.TukeyCutoffScale * sigma
			absRes := math.Abs(residuals[i])
			var robust float64
			if absRes < cutoff {
				ratio := absRes / cutoff
				robust = (1 - ratio*ratio) * (1 - ratio*ratio)
			}
			weights[i] = base * robust
			if weights[i] > maxWeight {
				maxWeight = weights[i]
			}
		}
		if maxWeight <= 1e-12 {
			copy(weights, baseWeights)
		}

		delta, ok := gaussNewtonStep(jac, residuals, weights, cfg.DampingEpsilon)
		if !ok {
			return geo.Point{}, iter, false
		}
		x -= delta.AtVec(0)
		y -= delta.AtVec(1)

		if math.Hypot(delta.AtVec(0), delta.AtVec(1)) < cfg.ConvergenceTol {
			iter++
			break
		}
	}
	if iter >= cfg.MaxIterations {
		return geo.Point{}, iter, false
	}
	return geo.Point{X: x, Y: y}, iter, true
}

// gaussNewtonStep solves the damped, weighted normal equations
// (Jw^T Jw + λI) Δ = Jw^T rw, where Jw and rw are the Jacobian and
// residual pre-whitened by sqrt(w), falling back to an SVD pseudoinverse
// when the damped system is still singular.
func gaussNewtonStep(jac *mat.Dense, residuals, w []float64, damping float64) (*mat.VecDense, bool) {
	n, _ := jac.Dims()
	jw := mat.NewDense(n, 2, nil)
	rw := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		sw := math.Sqrt(w[i])
		jw.Set(i, 0, jac.At(i, 0)*sw)
		jw.Set(i, 1, jac.At(i, 1)*sw)
		rw.SetVec(i, residuals[i]*sw)
	}

	var lhs mat.Dense
	lhs.Mul(jw.T(), jw)
	lhs.Add(&lhs, scaledIdentity(2, damping))

	var rhs mat.VecDense
	rhs.MulVec(jw.T(), rw)

	var delta mat.VecDense
	if err := delta.SolveVec(&lhs, &rhs); err != nil {
		return pinvSolve(&lhs, &rhs)
	}
	return &delta, true
}

// pinvSolve falls back to a pseudoinverse solve via SVD when the normal
// equations are singular, in the same style as ApiStack-engine-go/fusion/
// utils.go's pinv.
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
	tol := 1e-15 * float64(maxInt(rows, cols)) * maxS

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
	if !isFiniteVec(&out) {
		return nil, false
	}
	return &out, true
}

func isFiniteVec(v *mat.VecDense) bool {
	for i := 0; i < v.Len(); i++ {
		if math.IsNaN(v.AtVec(i)) || math.IsInf(v.AtVec(i), 0) {
			return false
		}
	}
	return true
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func scaledIdentity(n int, s float64) *mat.Dense {
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, s)
	}
	return m
}

// normalizedResiduals scores a candidate position against the full valid
// range set (not just the subset it was fit from), so a subset's outlier
// exclusion is judged by how well it explains everything observed.
func normalizedResiduals(cfg Config, anchors map[string]Anchor, ranges []Range, pos geo.Point) []float64 {
	out := make([]float64, len(ranges))
	for i, r := range ranges {
		a := anchors[r.AnchorID].Pos
		d := math.Hypot(pos.X-a.X, pos.Y-a.Y)
		out[i] = math.Abs(d-r.Distance) / rangeSigma(cfg, r.Distance)
	}
	return out
}

// scoreResiduals counts inliers (ρ ≤ inlierThreshold) and computes the mean
// of each normalized residual squared, capped, so a single huge outlier
// can't swamp the comparison between candidate subsets.
func scoreResiduals(normResid []float64, inlierThreshold, scoreCap float64) (int, float64) {
	inliers := 0
	sum := 0.0
	for _, rho := range normResid {
		if rho <= inlierThreshold {
			inliers++
		}
		sq := rho * rho
		if sq > scoreCap {
			sq = scoreCap
		}
		sum += sq
	}
	if len(normResid) == 0 {
		return 0, 0
	}
	return inliers, sum / float64(len(normResid))
}

// weightedRMS computes sqrt(Σ w·r² / Σw) with w = 1/σ² over ranges at pos.
func weightedRMS(cfg Config, anchors map[string]Anchor, ranges []Range, pos geo.Point) float64 {
	sumW, sumWSq := 0.0, 0.0
	for _, r := range ranges {
		a := anchors[r.AnchorID].Pos
		d := math.Hypot(pos.X-a.X, pos.Y-a.Y)
		res := d - r.Distance
		sigma := rangeSigma(cfg, r.Distance)
		w := 1.0 / (sigma * sigma)
		sumW += w
		sumWSq += w * res * res
	}
	if sumW <= 0 {
		return math.Inf(1)
	}
	return math.Sqrt(sumWSq / sumW)
}

// initialGuess linearizes the circle equations against the first range
// (subtracting anchor 1's equation from every other cancels the quadratic
// position term) and solves the resulting linear least-squares system,
// falling back to the unweighted centroid when too few ranges are given or
// the system is singular.
func initialGuess(anchors map[string]Anchor, ranges []Range) (float64, float64) {
	if len(ranges) < 3 {
		return centroid(anchors, ranges)
	}

	a0 := anchors[ranges[0].AnchorID].Pos
	d0 := ranges[0].Distance

	rows := len(ranges) - 1
	a := mat.NewDense(rows, 2, nil)
	b := mat.NewVecDense(rows, nil)
	for i := 1; i < len(ranges); i++ {
		ai := anchors[ranges[i].AnchorID].Pos
		di := ranges[i].Distance
		a.Set(i-1, 0, 2*(ai.X-a0.X))
		a.Set(i-1, 1, 2*(ai.Y-a0.Y))
		b.SetVec(i-1, (d0*d0-di*di)-(a0.X*a0.X-ai.X*ai.X)-(a0.Y*a0.Y-ai.Y*ai.Y))
	}

	var sol mat.VecDense
	if err := sol.SolveVec(a, b); err != nil || !isFiniteVec(&sol) {
		return centroid(anchors, ranges)
	}
	return sol.AtVec(0), sol.AtVec(1)
}

func centroid(anchors map[string]Anchor, ranges []Range) (float64, float64) {
	if len(ranges) == 0 {
		return 0, 0
	}
	var sx, sy float64
	for _, r := range ranges {
		a := anchors[r.AnchorID].Pos
		sx += a.X
		sy += a.Y
	}
	n := float64(len(ranges))
	return sx / n, sy / n
}
