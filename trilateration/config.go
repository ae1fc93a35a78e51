// Package trilateration implements robust weighted trilateration of a
// device's 2D position from a set of anchor distance estimates, grounded on
// original_source/senseye/fusion/trilateration.py's IRLS/Gauss-Newton solve
// and on ApiStack-engine-go/fusion/utils.go's pinv/SVD usage for the
// damped normal-equation fallback.
package trilateration

import "errors"

// ErrInsufficientAnchors is returned when fewer than 3 anchors with
// distance estimates are available; 2D trilateration needs at least 3
// non-collinear ranges.
var ErrInsufficientAnchors = errors.New("trilateration: fewer than 3 usable anchors")

// ErrDivergence is returned when the IRLS/Gauss-Newton iteration fails to
// converge, or the accepted fit's residual is too large to trust.
var ErrDivergence = errors.New("trilateration: solver failed to converge")

// Config holds trilateration solver tunables.
type Config struct {
	// MaxIterations bounds the Gauss-Newton/IRLS loop.
	MaxIterations int
	// ConvergenceTol stops iteration once the position update's norm drops
	// below this threshold (meters).
	ConvergenceTol float64
	// DampingEpsilon is the small fixed ridge added to the Gauss-Newton
	// normal equations for numerical stability on near-degenerate anchor
	// geometries.
	DampingEpsilon float64
	// SigmaFloor, SigmaSlope and SigmaIntercept parameterize the
	// distance-dependent range uncertainty model
	// σ(d) = max(SigmaFloor, SigmaSlope*d + SigmaIntercept).
	SigmaFloor     float64
	SigmaSlope     float64
	SigmaIntercept float64
	// TukeyCutoffScale scales σ into the Tukey biweight cutoff c = TukeyCutoffScale*σ.
	TukeyCutoffScale float64
	// InlierThreshold is the normalized-residual cutoff (ρ = |r|/σ) below
	// which an anchor counts as an inlier, both when scoring candidate
	// subsets and when selecting the final refit set.
	InlierThreshold float64
	// ScoreCap bounds each candidate's squared normalized residual before
	// averaging, so one huge outlier can't dominate subset comparison.
	ScoreCap float64
	// MaxResidualRMS gates a solution as divergent once the weighted RMS
	// residual at convergence exceeds it.
	MaxResidualRMS float64
	// MinAnchors is the minimum anchor count required to attempt a solve.
	MinAnchors int
	// MaxSubsetAnchors bounds how many usable anchors still get exhaustive
	// size-3 subset enumeration; beyond it only the full set and
	// leave-one-out subsets are tried.
	MaxSubsetAnchors int
}

// DefaultConfig returns reasonable solver tunables for indoor ranging
// geometries.
func DefaultConfig() Config {
	return Config{
		MaxIterations:    12,
		ConvergenceTol:   1e-4,
		DampingEpsilon:   1e-6,
		SigmaFloor:       0.35,
		SigmaSlope:       0.08,
		SigmaIntercept:   0.2,
		TukeyCutoffScale: 2.5,
		InlierThreshold:  2.5,
		ScoreCap:         9.0,
		MaxResidualRMS:   8.0,
		MinAnchors:       3,
		MaxSubsetAnchors: 6,
	}
}
