package worldstate

import (
	"math"

	"senseye/belief"
	"senseye/geo"
)

// ZoneState tracks a room's occupancy/motion with exponential decay
// between updates, so a zone that stops producing crossing links fades
// out smoothly rather than snapping to zero.
type ZoneState struct {
	OccupiedProb    float64
	MotionIntensity float64
	LastUpdateMS    int64
}

// DeviceState is a tracked device's last-known room assignment and signal
// state.
type DeviceState struct {
	DeviceID    string
	RoomID      string
	Position    geo.Point
	HasPosition bool
	RSSIDbm     float64
	Moving      bool
	Confidence  float64
	LastSeenMS  int64
}

// State is the fused world view: per-room occupancy/motion and per-device
// room assignment.
type State struct {
	FloorPlan FloorPlan
	Zones     map[string]*ZoneState
	Devices   map[string]*DeviceState
	DecayHalfLifeMS int64
}

// NewState constructs an empty world state over the given floor plan.
// decayHalfLifeMS controls how quickly a zone's motion intensity decays
// toward zero between updates when no new motion evidence arrives.
func NewState(fp FloorPlan, decayHalfLifeMS int64) *State {
	if decayHalfLifeMS <= 0 {
		decayHalfLifeMS = 5000
	}
	return &State{
		FloorPlan:       fp,
		Zones:           map[string]*ZoneState{},
		Devices:         map[string]*DeviceState{},
		DecayHalfLifeMS: decayHalfLifeMS,
	}
}

// ApplyZones updates every zone named in zones with fresh fused evidence
// at nowMS, applying exponential decay to every other tracked zone so
// rooms with no current evidence fade out rather than holding their last
// reading forever.
func (s *State) ApplyZones(zones map[string]belief.ZoneBelief, nowMS int64) {
	touched := make(map[string]bool, len(zones))
	for id, z := range zones {
		touched[id] = true
		zs, ok := s.Zones[id]
		if !ok {
			zs = &ZoneState{}
			s.Zones[id] = zs
		}
		zs.OccupiedProb = z.OccupiedProb
		zs.MotionIntensity = z.MotionProb
		zs.LastUpdateMS = nowMS
	}
	for id, zs := range s.Zones {
		if touched[id] {
			continue
		}
		elapsed := nowMS - zs.LastUpdateMS
		if elapsed <= 0 {
			continue
		}
		decay := decayFactor(elapsed, s.DecayHalfLifeMS)
		zs.MotionIntensity *= decay
		zs.OccupiedProb *= decay
		zs.LastUpdateMS = nowMS
	}
}

// decayFactor returns 0.5^(elapsedMS / halfLifeMS), the exponential decay
// multiplier for the given elapsed time.
func decayFactor(elapsedMS, halfLifeMS int64) float64 {
	if halfLifeMS <= 0 {
		return 0
	}
	exp := float64(elapsedMS) / float64(halfLifeMS)
	return math.Pow(0.5, exp)
}
