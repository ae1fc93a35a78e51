package infer

import (
	"senseye/belief"
	"senseye/kalman"
)

// BuildBelief assembles this node's local Belief from its Kalman bank at
// the given sequence number and wall-clock timestamp. HopCount starts at
// the configured maximum hop budget; the gossip mesh decrements it on
// relay.
func (e *Engine) BuildBelief(bank *kalman.Bank, selfID string, seq uint64, nowMS int64, pos Positions, maxHops int) belief.Belief {
	links := e.BuildLinks(bank, pos)
	devices := e.BuildDevices(bank, pos)
	zones := e.BuildZones(links, pos)
	ranges := e.BuildAcousticRanges(bank, selfID)

	b := belief.Belief{
		OriginNodeID:   selfID,
		SequenceNumber: seq,
		HopCount:       maxHops,
		WallClockMS:    nowMS,
		Links:          links,
		Devices:        devices,
		Zones:          zones,
	}
	if len(ranges) > 0 {
		b.AcousticRanges = ranges
	}
	return b
}
