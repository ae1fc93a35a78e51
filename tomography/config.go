// Package tomography implements radio tomographic imaging of a floor
// plan's occupancy field from a set of link attenuation readings, via
// weighted ridge regression over a Gaussian sensing kernel. Grounded on
// ApiStack-engine-go/fusion/utils.go's gonum SVD pseudoinverse for the
// ill-conditioned fallback path.
package tomography

import "errors"

// ErrIllConditioned is returned when the regularized normal equations
// remain singular even after adaptive ridge inflation and the SVD
// pseudoinverse fallback still cannot produce a finite solution.
var ErrIllConditioned = errors.New("tomography: sensing matrix ill-conditioned")

// ErrNoLinks is returned when there are no usable link readings to image.
var ErrNoLinks = errors.New("tomography: no usable links")

// Config holds tomography solver tunables.
type Config struct {
	// CellSizeM is the edge length of a square grid cell in meters.
	CellSizeM float64
	// KernelBandwidth widens or narrows the elliptical sensing kernel
	// around each link's line of sight.
	KernelBandwidth float64
	// RidgeConst (κ_const) scales the adaptive ridge before the
	// cells-per-link and conditioning factors are applied.
	RidgeConst float64
	// MinRidge and MaxRidge clip the adaptive ridge to a range that stays
	// numerically useful regardless of grid size or link count.
	MinRidge float64
	MaxRidge float64
}

// DefaultConfig returns tunables sized for room-scale grids (cells around
// half a meter).
func DefaultConfig() Config {
	return Config{
		CellSizeM:       0.5,
		KernelBandwidth: 1.5,
		RidgeConst:      0.05,
		MinRidge:        0.05,
		MaxRidge:        5.0,
	}
}
