package consensus

import (
	"math"

	"senseye/belief"
	"senseye/weight"
)

// zoneConfidence derives a per-contributor confidence from how far its
// occupied/motion probabilities sit from the uninformative midpoint 0.5:
// c_zone = clamp(0.2 + 0.8*2*max(|o-0.5|,|m-0.5|), 0.05, 0.99), so a zone
// belief that's confidently occupied or confidently motion-free carries
// more weight than one sitting near 50/50.
func zoneConfidence(z belief.ZoneBelief) float64 {
	devOcc := math.Abs(z.OccupiedProb - 0.5)
	devMotion := math.Abs(z.MotionProb - 0.5)
	dev := devOcc
	if devMotion > dev {
		dev = devMotion
	}
	c := 0.2 + 0.8*2*dev
	return weight.Clamp(c)
}

// FuseZones combines every contributor's ZoneBelief for the same zone id
// into one fused ZoneBelief, inverse-variance weighting each contributor by
// zoneConfidence.
func FuseZones(byZone map[string][]belief.ZoneBelief) map[string]belief.ZoneBelief {
	out := make(map[string]belief.ZoneBelief, len(byZone))
	for id, contribs := range byZone {
		if len(contribs) == 0 {
			continue
		}
		occ := make([]weight.Contribution, len(contribs))
		motion := make([]weight.Contribution, len(contribs))
		for i, z := range contribs {
			c := zoneConfidence(z)
			occ[i] = weight.Contribution{Value: z.OccupiedProb, Confidence: c}
			motion[i] = weight.Contribution{Value: z.MotionProb, Confidence: c}
		}
		meanOcc, _, ok := weight.WeightedMean(occ)
		if !ok {
			continue
		}
		meanMotion, _, _ := weight.WeightedMean(motion)
		out[id] = belief.ZoneBelief{ZoneID: id, OccupiedProb: meanOcc, MotionProb: meanMotion}
	}
	return out
}
