package infer

import (
	"math"

	"senseye/belief"
	"senseye/geo"
	"senseye/kalman"
	"senseye/measurement"
	"senseye/weight"
)

// Positions maps a node/device id to its known 2D position, typically
// sourced from a FloorPlan.
type Positions map[string]geo.Point

// Zone describes a region whose occupancy/motion is aggregated from the
// links that cross it. Rects models a zone as a union of axis-aligned
// rectangles, matching ApiStack-engine-go/fusion/layer_manager.go's Region
// bounding boxes.
type Zone struct {
	ID    string
	Rects []geo.Rect
}

// Crosses reports whether the segment (a,b) crosses any of the zone's
// rectangles.
func (z Zone) Crosses(a, b geo.Point) bool {
	for _, r := range z.Rects {
		if geo.SegmentIntersectsRect(a, b, r) {
			return true
		}
	}
	return false
}

// Engine runs local inference over a node's Kalman bank.
type Engine struct {
	cfg   Config
	zones []Zone
}

// NewEngine builds an inference engine over the given zone definitions.
func NewEngine(cfg Config, zones []Zone) *Engine {
	return &Engine{cfg: cfg, zones: zones}
}

// linkContribution is an intermediate per-path reading used to combine
// multiple signal kinds observed between the same pair of nodes before
// emitting a single LinkBelief.
type linkContribution struct {
	attenuation float64
	moving      bool
	confidence  float64
}

// BuildLinks derives LinkBelief entries from every WiFi/BLE path in bank
// whose endpoints have known positions. When more than one signal kind
// observes the same pair, their attenuation readings are combined with the
// shared precision-weighting contract before being emitted as a single
// belief.
func (e *Engine) BuildLinks(bank *kalman.Bank, pos Positions) map[string]belief.LinkBelief {
	byPair := map[belief.PairKey][]linkContribution{}

	for _, p := range bank.Paths() {
		if p.Kind == measurement.Acoustic {
			continue
		}
		a, okA := pos[p.SourceID]
		b, okB := pos[p.TargetID]
		if !okA || !okB {
			continue
		}
		ps, ok := bank.Get(p)
		if !ok {
			continue
		}
		d := dist(a, b)
		n := e.cfg.PathLossExponentIndoor
		expected := ExpectedRSSI(d, n, e.cfg.ReferenceAttenuationA)
		atten := expected - ps.X[0]
		if atten < 0 {
			atten = 0
		}
		moving := IsMoving(ps.Variance(), e.cfg.MotionVarianceThreshold)
		conf := RFConfidence(ps.Samples(), e.cfg.WindowSize, ps.Innovation)

		key := belief.NewPairKey(p.SourceID, p.TargetID)
		byPair[key] = append(byPair[key], linkContribution{attenuation: atten, moving: moving, confidence: conf})
	}

	out := make(map[string]belief.LinkBelief, len(byPair))
	for key, contribs := range byPair {
		wcs := make([]weight.Contribution, len(contribs))
		anyMoving := false
		for i, c := range contribs {
			wcs[i] = weight.Contribution{Value: c.attenuation, Confidence: c.confidence}
			if c.moving {
				anyMoving = true
			}
		}
		mean, _, ok := weight.WeightedMean(wcs)
		if !ok {
			continue
		}
		best := 0.0
		for _, c := range contribs {
			if c.confidence > best {
				best = c.confidence
			}
		}
		motionProb := 0.0
		if anyMoving {
			motionProb = 1.0
		}
		out[key.String()] = belief.LinkBelief{
			PeerA:         key.A,
			PeerB:         key.B,
			AttenuationDB: mean,
			MotionProb:    motionProb,
			Confidence:    best,
		}
	}
	return out
}

// BuildDevices derives DeviceBelief entries for every path whose target is
// not itself a positioned mesh node — i.e. an observed device rather than a
// peer — converting RSSI to distance via the shared path-loss formula.
func (e *Engine) BuildDevices(bank *kalman.Bank, pos Positions) map[string]belief.DeviceBelief {
	out := map[string]belief.DeviceBelief{}
	for _, p := range bank.Paths() {
		if p.Kind == measurement.Acoustic {
			continue
		}
		if _, isNode := pos[p.TargetID]; isNode {
			continue
		}
		ps, ok := bank.Get(p)
		if !ok {
			continue
		}
		n := e.cfg.PathLossExponentIndoor
		d := DistanceFromRSSI(ps.X[0], n, e.cfg.ReferenceAttenuationA, e.cfg.MinDistanceM)
		moving := IsMoving(ps.Variance(), e.cfg.MotionVarianceThreshold)
		conf := RFConfidence(ps.Samples(), e.cfg.WindowSize, ps.Innovation)

		existing, has := out[p.TargetID]
		if has && existing.Confidence >= conf {
			continue
		}
		out[p.TargetID] = belief.DeviceBelief{
			DeviceID:          p.TargetID,
			RSSIDbm:           ps.X[0],
			EstimatedDistance: d,
			Moving:            moving,
			Confidence:        conf,
		}
	}
	return out
}

// BuildAcousticRanges reports the latest smoothed acoustic distance per
// peer, for use as Belief.AcousticRanges.
func (e *Engine) BuildAcousticRanges(bank *kalman.Bank, selfID string) map[string]float64 {
	out := map[string]float64{}
	for _, p := range bank.Paths() {
		if p.Kind != measurement.Acoustic || p.SourceID != selfID {
			continue
		}
		ps, ok := bank.Get(p)
		if !ok {
			continue
		}
		out[p.TargetID] = ps.X[0]
	}
	return out
}

// BuildZones aggregates motion/occupancy probability over every zone whose
// rectangles are crossed by at least one link in links.
func (e *Engine) BuildZones(links map[string]belief.LinkBelief, pos Positions) map[string]belief.ZoneBelief {
	out := make(map[string]belief.ZoneBelief, len(e.zones))
	for _, z := range e.zones {
		nLinks := 0
		nMoving := 0
		var sumAtten float64
		for _, l := range links {
			a, okA := pos[l.PeerA]
			b, okB := pos[l.PeerB]
			if !okA || !okB || !z.Crosses(a, b) {
				continue
			}
			nLinks++
			sumAtten += l.AttenuationDB
			if l.MotionProb > 0.5 {
				nMoving++
			}
		}
		if nLinks == 0 {
			continue
		}
		motionProb := float64(nMoving) / float64(nLinks)
		occProb := (sumAtten / float64(nLinks)) / 20.0
		if occProb > 1 {
			occProb = 1
		}
		out[z.ID] = belief.ZoneBelief{ZoneID: z.ID, OccupiedProb: occProb, MotionProb: motionProb}
	}
	return out
}

func dist(a, b geo.Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
