// Package infer implements local inference: turning the Kalman bank's
// filtered paths and the set of observed devices into a Belief with
// per-item confidences.
package infer

import "math"

// Config holds the tunables for local inference.
type Config struct {
	WindowSize              int     // W in the motion/confidence formulas
	MotionVarianceThreshold float64 // τ_motion
	PathLossExponentIndoor  float64 // n = 2.5
	PathLossExponentCalib   float64 // n = 2.0 (used by calibration)
	ReferenceAttenuationA   float64 // A = 45
	MinDistanceM            float64
}

// DefaultConfig returns reasonable indoor defaults.
func DefaultConfig() Config {
	return Config{
		WindowSize:              20,
		MotionVarianceThreshold: 4.0,
		PathLossExponentIndoor:  2.5,
		PathLossExponentCalib:   2.0,
		ReferenceAttenuationA:   45.0,
		MinDistanceM:            0.1,
	}
}

// ExpectedRSSI implements RSSI_expected(d) = -(10*n*log10(d) + A).
func ExpectedRSSI(distanceM, n, a float64) float64 {
	if distanceM < 1e-6 {
		distanceM = 1e-6
	}
	return -(10.0*n*math.Log10(distanceM) + a)
}

// DistanceFromRSSI implements d = 10^((-rssi - A)/(10*n)), floored at
// minDistanceM.
func DistanceFromRSSI(rssi, n, a, minDistanceM float64) float64 {
	d := math.Pow(10.0, (-rssi-a)/(10.0*n))
	if d < minDistanceM {
		d = minDistanceM
	}
	return d
}

// SampleConfidence implements c_samples = min(N_samples/W_size, 1).
func SampleConfidence(nSamples, windowSize int) float64 {
	if windowSize <= 0 {
		return 0
	}
	c := float64(nSamples) / float64(windowSize)
	if c > 1 {
		c = 1
	}
	return c
}

// InnovationConfidence implements p_innov = 1 / (1 + |innovation|/8).
func InnovationConfidence(innovation float64) float64 {
	return 1.0 / (1.0 + math.Abs(innovation)/8.0)
}

// RFConfidence implements c_rf = c_samples * p_innov.
func RFConfidence(nSamples, windowSize int, innovation float64) float64 {
	return SampleConfidence(nSamples, windowSize) * InnovationConfidence(innovation)
}

// SNRConfidence clips an affine map of matched-filter peak SNR (dB) to
// [0,1]. 0 dB maps to 0, 30 dB maps to 1, matching typical acoustic
// chirp-correlation peak SNRs in an indoor room.
func SNRConfidence(snrDB float64) float64 {
	c := snrDB / 30.0
	if c < 0 {
		c = 0
	}
	if c > 1 {
		c = 1
	}
	return c
}

// AcousticConfidence implements c_acoustic = 0.4*c_samples + 0.6*c_snr.
func AcousticConfidence(nSamples, windowSize int, snrDB float64) float64 {
	return 0.4*SampleConfidence(nSamples, windowSize) + 0.6*SNRConfidence(snrDB)
}

// IsMoving implements the motion test var(W) > τ_motion.
func IsMoving(variance float64, threshold float64) bool {
	return variance > threshold
}
