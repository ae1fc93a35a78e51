package calibration

import (
	"math"

	"senseye/geo"
)

// WallCandidate is a link whose measured attenuation exceeds free-space
// path loss by enough to suggest an intervening wall.
type WallCandidate struct {
	A, B        string
	Midpoint    geo.Point
	ExcessDB    float64
}

// DetectWalls compares each link's measured attenuation against the
// free-space path-loss prediction for its measured distance and flags
// links whose excess attenuation clears the configured threshold.
func DetectWalls(cfg Config, positions map[string]geo.Point, atten map[[2]string]float64, pathLossExponent, refAttenuationA float64) []WallCandidate {
	var out []WallCandidate
	for pair, measured := range atten {
		a, okA := positions[pair[0]]
		b, okB := positions[pair[1]]
		if !okA || !okB {
			continue
		}
		d := math.Hypot(a.X-b.X, a.Y-b.Y)
		if d < 0.1 {
			d = 0.1
		}
		expected := refAttenuationA + 10*pathLossExponent*math.Log10(d)
		excess := measured - expected
		if excess >= cfg.WallAttenuationThresholdDB {
			out = append(out, WallCandidate{
				A: pair[0], B: pair[1],
				Midpoint: geo.Midpoint(a, b),
				ExcessDB: excess,
			})
		}
	}
	return out
}
