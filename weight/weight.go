// Package weight implements the single numerical contract shared by local
// inference, consensus fusion and tomography: confidence in (0,1) maps to a
// variance, and the reciprocal is a precision used for inverse-variance
// weighted averaging.
package weight

// Epsilon is the small additive term that keeps variance finite at the
// boundary confidences.
const Epsilon = 1e-6

// Clamp restricts a confidence to the safe range (0.01, 0.99) the contract
// operates over (c_eff).
func Clamp(c float64) float64 {
	const lo, hi = 0.01, 0.99
	if c < lo {
		return lo
	}
	if c > hi {
		return hi
	}
	return c
}

// Variance implements σ²(c) = (1 - c_eff)/c_eff + ε.
func Variance(c float64) float64 {
	ceff := Clamp(c)
	return (1-ceff)/ceff + Epsilon
}

// Precision implements π(c) = 1/σ²(c). It is strictly increasing in c_eff,
// and at c_eff=0.5, σ²=1+ε.
func Precision(c float64) float64 {
	return 1.0 / Variance(c)
}

// Contribution is one weighted observation: a scalar value with a
// confidence that the weight package turns into a precision.
type Contribution struct {
	Value      float64
	Confidence float64
}

// WeightedMean computes x̂ = Σ π_i x_i / Σ π_i over contributions. It
// returns (0, 0, false) for an empty input.
func WeightedMean(cs []Contribution) (mean float64, totalPrecision float64, ok bool) {
	if len(cs) == 0 {
		return 0, 0, false
	}
	var num, den float64
	for _, c := range cs {
		pi := Precision(c.Confidence)
		num += pi * c.Value
		den += pi
	}
	if den <= 0 {
		return 0, 0, false
	}
	return num / den, den, true
}

// DisagreementVariance computes v = Σ π_i (x_i - x̂)² / Σ π_i, the weighted
// variance of contributions around their precision-weighted mean.
func DisagreementVariance(cs []Contribution, mean, totalPrecision float64) float64 {
	if totalPrecision <= 0 {
		return 0
	}
	var acc float64
	for _, c := range cs {
		pi := Precision(c.Confidence)
		d := c.Value - mean
		acc += pi * d * d
	}
	return acc / totalPrecision
}

// BaseConfidence implements c_base = Σπ_i / (1 + Σπ_i).
func BaseConfidence(totalPrecision float64) float64 {
	return totalPrecision / (1 + totalPrecision)
}

// DisagreementPenalty implements penalty = 1/(1 + s*v).
func DisagreementPenalty(s, v float64) float64 {
	return 1.0 / (1.0 + s*v)
}
