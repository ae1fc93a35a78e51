package consensus

import (
	"senseye/belief"
	"senseye/weight"
)

// FuseLinks combines every contributor's LinkBelief for the same pair into
// one fused LinkBelief. Attenuation fuses by precision-weighted mean;
// motion probability fuses the same way; the fused confidence is boosted
// above any single contributor's confidence when contributors agree, and
// suppressed when they disagree.
func FuseLinks(cfg Config, byPair map[belief.PairKey][]belief.LinkBelief) map[string]belief.LinkBelief {
	out := make(map[string]belief.LinkBelief, len(byPair))
	for key, contribs := range byPair {
		if len(contribs) == 0 {
			continue
		}
		atten := make([]weight.Contribution, len(contribs))
		motion := make([]weight.Contribution, len(contribs))
		for i, c := range contribs {
			atten[i] = weight.Contribution{Value: c.AttenuationDB, Confidence: c.Confidence}
			motion[i] = weight.Contribution{Value: c.MotionProb, Confidence: c.Confidence}
		}
		meanAtten, totalPi, ok := weight.WeightedMean(atten)
		if !ok {
			continue
		}
		meanMotion, _, _ := weight.WeightedMean(motion)
		v := weight.DisagreementVariance(atten, meanAtten, totalPi)
		cBase := weight.BaseConfidence(totalPi)
		cFused := cBase * weight.DisagreementPenalty(cfg.DisagreementScale, v)

		out[key.String()] = belief.LinkBelief{
			PeerA:         key.A,
			PeerB:         key.B,
			AttenuationDB: meanAtten,
			MotionProb:    meanMotion,
			Confidence:    cFused,
		}
	}
	return out
}
