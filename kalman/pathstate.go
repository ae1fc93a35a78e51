package kalman

import (
	"math"

	"senseye/measurement"
)

// PathState is the 2-state (rssi, rssi_rate) constant-velocity filter state
// for one signal path, plus the bookkeeping local inference needs. It is
// created on first observation and mutated only by the Kalman bank.
type PathState struct {
	// X is [rssi, rssi_rate].
	X [2]float64
	// P is the 2x2 state covariance, always kept symmetric PSD.
	P [2][2]float64

	LastUpdateMS int64

	// history is a ring buffer of the last N filtered RSSI/distance values.
	history    []float64
	historyLen int
	historyPos int
	filled     bool

	Innovation         float64
	InnovationVariance float64
}

func newPathState(z float64, ts int64, cfg Config) *PathState {
	ps := &PathState{
		LastUpdateMS: ts,
		history:      make([]float64, cfg.HistoryLen),
		historyLen:   0,
	}
	ps.X[0] = z
	ps.X[1] = 0
	ps.P[0][0] = 25.0
	ps.P[1][1] = 1.0
	ps.pushHistory(z)
	return ps
}

func (ps *PathState) pushHistory(v float64) {
	if len(ps.history) == 0 {
		return
	}
	ps.history[ps.historyPos] = v
	ps.historyPos = (ps.historyPos + 1) % len(ps.history)
	if ps.historyLen < len(ps.history) {
		ps.historyLen++
	} else {
		ps.filled = true
	}
}

// History returns a copy of the buffered filtered values, oldest first.
func (ps *PathState) History() []float64 {
	out := make([]float64, ps.historyLen)
	if !ps.filled {
		copy(out, ps.history[:ps.historyLen])
		return out
	}
	n := len(ps.history)
	for i := 0; i < n; i++ {
		out[i] = ps.history[(ps.historyPos+i)%n]
	}
	return out
}

// Samples returns how many observations have landed in the history buffer,
// capped at its capacity — used for local inference's c_samples confidence term.
func (ps *PathState) Samples() int { return ps.historyLen }

// Variance returns the sample variance of the buffered history, used by local inference's
// motion test (var(W) > τ_motion).
func (ps *PathState) Variance() float64 {
	vals := ps.History()
	if len(vals) < 2 {
		return 0
	}
	var mean float64
	for _, v := range vals {
		mean += v
	}
	mean /= float64(len(vals))
	var ss float64
	for _, v := range vals {
		d := v - mean
		ss += d * d
	}
	return ss / float64(len(vals)-1)
}

// predict advances the state by dt seconds using the constant-velocity
// transition F = [[1,dt],[0,1]] and process covariance Q.
func (ps *PathState) predict(dt float64, cfg Config, qScale float64) (xPred [2]float64, pPred [2][2]float64) {
	f := [2][2]float64{{1, dt}, {0, 1}}
	xPred[0] = f[0][0]*ps.X[0] + f[0][1]*ps.X[1]
	xPred[1] = f[1][0]*ps.X[0] + f[1][1]*ps.X[1]

	q := cfg.ProcessNoise * qScale
	dt2 := dt * dt
	dt3 := dt2 * dt
	dt4 := dt3 * dt
	Q := [2][2]float64{
		{q * dt4 / 4.0, q * dt3 / 2.0},
		{q * dt3 / 2.0, q * dt2},
	}

	// P- = F P F^T + Q
	fp := mat2mul(f, ps.P)
	fpft := mat2mul(fp, transpose2(f))
	pPred = mat2add(fpft, Q)
	return xPred, pPred
}

// Update applies one measurement z at absolute time tsMS. Measurements
// older than the last applied sample are discarded. It returns false if the
// measurement was discarded.
func (ps *PathState) update(z float64, tsMS int64, kind measurement.Kind, cfg Config) bool {
	if tsMS < ps.LastUpdateMS {
		return false
	}
	dt := float64(tsMS-ps.LastUpdateMS) / 1000.0
	if dt < 0 {
		dt = 0
	}

	xPred, pPred := ps.predict(dt, cfg, 1.0)

	R := cfg.measurementVariance(kind)
	y := z - xPred[0] // H = [1, 0]
	S := pPred[0][0] + R
	if S < cfg.MinInnovationVariance {
		S = cfg.MinInnovationVariance
	}

	zScore := math.Abs(y) / math.Sqrt(S)
	if zScore > cfg.JumpZScore {
		// Redo the predict step with an inflated process covariance so the
		// filter can track the jump within the next couple of samples
		// instead of lagging behind it.
		xPred, pPred = ps.predict(dt, cfg, cfg.JumpScale)
		y = z - xPred[0]
		S = pPred[0][0] + R
		if S < cfg.MinInnovationVariance {
			S = cfg.MinInnovationVariance
		}
	}

	k0 := pPred[0][0] / S
	k1 := pPred[1][0] / S

	x := [2]float64{xPred[0] + k0*y, xPred[1] + k1*y}

	// Joseph form: P = (I-KH) P- (I-KH)^T + K R K^T
	imkh := [2][2]float64{
		{1 - k0, 0},
		{-k1, 1},
	}
	term1 := mat2mul(mat2mul(imkh, pPred), transpose2(imkh))
	krk := [2][2]float64{
		{k0 * R * k0, k0 * R * k1},
		{k1 * R * k0, k1 * R * k1},
	}
	p := mat2add(term1, krk)

	// Re-symmetrize and clip negative eigenvalues to zero.
	p = symmetrize2(p)
	p = clipNonNegative2(p)

	ps.X = x
	ps.P = p
	ps.LastUpdateMS = tsMS
	ps.Innovation = y
	ps.InnovationVariance = S
	ps.pushHistory(x[0])
	return true
}

// ---- small fixed-size matrix helpers (2x2), kept as plain arithmetic
// rather than gonum.Dense to avoid allocation on the hot per-measurement
// path, in the same style as ApiStack-engine-go/fusion/ekf.go's own
// hand-rolled small-matrix helpers. ----

func mat2mul(a, b [2][2]float64) [2][2]float64 {
	var out [2][2]float64
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			out[i][j] = a[i][0]*b[0][j] + a[i][1]*b[1][j]
		}
	}
	return out
}

func mat2add(a, b [2][2]float64) [2][2]float64 {
	return [2][2]float64{
		{a[0][0] + b[0][0], a[0][1] + b[0][1]},
		{a[1][0] + b[1][0], a[1][1] + b[1][1]},
	}
}

func transpose2(a [2][2]float64) [2][2]float64 {
	return [2][2]float64{{a[0][0], a[1][0]}, {a[0][1], a[1][1]}}
}

func symmetrize2(a [2][2]float64) [2][2]float64 {
	off := (a[0][1] + a[1][0]) / 2.0
	return [2][2]float64{{a[0][0], off}, {off, a[1][1]}}
}

// clipNonNegative2 clips any negative eigenvalue of a symmetric 2x2 matrix
// to zero, reconstructing from the eigendecomposition.
func clipNonNegative2(a [2][2]float64) [2][2]float64 {
	tr := a[0][0] + a[1][1]
	det := a[0][0]*a[1][1] - a[0][1]*a[1][0]
	disc := tr*tr - 4*det
	if disc < 0 {
		disc = 0
	}
	sq := math.Sqrt(disc)
	l1 := (tr + sq) / 2.0
	l2 := (tr - sq) / 2.0
	if l1 >= 0 && l2 >= 0 {
		return a
	}
	if l1 < 0 {
		l1 = 0
	}
	if l2 < 0 {
		l2 = 0
	}
	// Eigenvectors of a symmetric 2x2 matrix; fall back to identity basis
	// when the matrix is already (near) diagonal.
	b := a[0][1]
	if math.Abs(b) < 1e-12 {
		return [2][2]float64{{math.Max(a[0][0], 0), 0}, {0, math.Max(a[1][1], 0)}}
	}
	v1 := [2]float64{l1 - a[1][1], b}
	v2 := [2]float64{l2 - a[1][1], b}
	norm1 := math.Hypot(v1[0], v1[1])
	norm2 := math.Hypot(v2[0], v2[1])
	if norm1 < 1e-12 || norm2 < 1e-12 {
		return [2][2]float64{{math.Max(a[0][0], 0), 0}, {0, math.Max(a[1][1], 0)}}
	}
	v1[0] /= norm1
	v1[1] /= norm1
	v2[0] /= norm2
	v2[1] /= norm2
	var out [2][2]float64
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			out[i][j] = l1*v1[i]*v1[j] + l2*v2[i]*v2[j]
		}
	}
	return symmetrize2(out)
}
