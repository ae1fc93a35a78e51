package consensus

import (
	"senseye/belief"
	"senseye/weight"
)

// FuseDevices combines every contributor's DeviceBelief for the same device
// id into one fused DeviceBelief. RSSI and distance each fuse by precision-
// weighted mean, with distance additionally down-weighted by the reporting
// node's own distance to the device (closer observers are more reliable):
// w_{d,i} = π_i / max(d_i, 1)^2.
func FuseDevices(cfg Config, byDevice map[string][]belief.DeviceBelief) map[string]belief.DeviceBelief {
	out := make(map[string]belief.DeviceBelief, len(byDevice))
	for id, contribs := range byDevice {
		if len(contribs) == 0 {
			continue
		}
		rssi := make([]weight.Contribution, len(contribs))
		dist := make([]weight.Contribution, len(contribs))
		anyMoving := false
		for i, c := range contribs {
			rssi[i] = weight.Contribution{Value: c.RSSIDbm, Confidence: c.Confidence}

			pi := weight.Precision(c.Confidence)
			d := c.EstimatedDistance
			if d < 1 {
				d = 1
			}
			wdi := pi / (d * d)
			dist[i] = weight.Contribution{Value: c.EstimatedDistance, Confidence: precisionToConfidence(wdi)}
			if c.Moving {
				anyMoving = true
			}
		}
		meanRSSI, totalPi, ok := weight.WeightedMean(rssi)
		if !ok {
			continue
		}
		meanDist, _, _ := weight.WeightedMean(dist)
		cFused := weight.BaseConfidence(totalPi)

		out[id] = belief.DeviceBelief{
			DeviceID:          id,
			RSSIDbm:           meanRSSI,
			EstimatedDistance: meanDist,
			Moving:            anyMoving,
			Confidence:        cFused,
		}
	}
	return out
}

// precisionToConfidence inverts weight.Precision so an arbitrary precision
// weight (such as the distance-adjusted w_{d,i}) can be fed back through
// weight.WeightedMean, which only accepts confidences.
func precisionToConfidence(pi float64) float64 {
	if pi <= 0 {
		return 0.01
	}
	sigma2 := 1.0 / pi
	c := 1.0 / (sigma2 + 1.0)
	return weight.Clamp(c)
}
