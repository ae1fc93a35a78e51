package consensus

import "senseye/belief"

// SelectLatest keeps, for each origin node, only its highest-sequence
// non-stale Belief, so a node's own retransmitted/duplicate Beliefs never
// count twice toward consensus.
func SelectLatest(beliefs []belief.Belief, nowMS, horizonMS int64) map[string]belief.Belief {
	out := map[string]belief.Belief{}
	for _, b := range beliefs {
		if b.Stale(nowMS, horizonMS) {
			continue
		}
		cur, ok := out[b.OriginNodeID]
		if !ok || b.SequenceNumber > cur.SequenceNumber {
			out[b.OriginNodeID] = b
		}
	}
	return out
}

// Fuse runs consensus fusion over a set of Beliefs (typically this node's
// own local Belief plus every peer Belief currently held by the gossip
// mesh), producing one consensus view of links, devices and zones.
func Fuse(cfg Config, beliefs []belief.Belief, nowMS int64) (links map[string]belief.LinkBelief, devices map[string]belief.DeviceBelief, zones map[string]belief.ZoneBelief) {
	latest := SelectLatest(beliefs, nowMS, cfg.StalenessHorizonMS)

	byPair := map[belief.PairKey][]belief.LinkBelief{}
	byDevice := map[string][]belief.DeviceBelief{}
	byZone := map[string][]belief.ZoneBelief{}

	for _, b := range latest {
		for _, l := range b.Links {
			byPair[l.LinkKey()] = append(byPair[l.LinkKey()], l)
		}
		for id, d := range b.Devices {
			byDevice[id] = append(byDevice[id], d)
		}
		for id, z := range b.Zones {
			byZone[id] = append(byZone[id], z)
		}
	}

	links = FuseLinks(cfg, byPair)
	devices = FuseDevices(cfg, byDevice)
	zones = FuseZones(byZone)
	return
}
