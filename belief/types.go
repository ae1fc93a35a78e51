// Package belief defines the data model shared by local inference, the
// gossip mesh and consensus fusion: LinkBelief, DeviceBelief, ZoneBelief
// and the Belief envelope that carries them between nodes.
package belief

// PairKey is the unordered-pair key for a LinkBelief, so (a,b) and (b,a)
// address the same entry in an edge map.
type PairKey struct {
	A, B string
}

// NewPairKey canonicalizes the pair so equal keys compare equal regardless
// of argument order.
func NewPairKey(a, b string) PairKey {
	if a > b {
		a, b = b, a
	}
	return PairKey{A: a, B: b}
}

// String renders the pair as "a|b" for use as a map/JSON key.
func (p PairKey) String() string {
	return p.A + "|" + p.B
}

// LinkBelief describes the inferred state of the signal path(s) between two
// peers.
type LinkBelief struct {
	PeerA         string  `json:"peer_a"`
	PeerB         string  `json:"peer_b"`
	AttenuationDB float64 `json:"attenuation_db"`
	MotionProb    float64 `json:"motion_prob"`
	Confidence    float64 `json:"confidence"`
}

// DeviceBelief describes an observed device (a phone, tag, or other
// transmitting entity not itself participating in the mesh).
type DeviceBelief struct {
	DeviceID          string  `json:"device_id"`
	RSSIDbm           float64 `json:"rssi_dbm"`
	EstimatedDistance float64 `json:"estimated_distance_m"`
	Moving            bool    `json:"moving"`
	Confidence        float64 `json:"confidence"`
}

// ZoneBelief describes occupancy/motion state of a zone (typically a room).
type ZoneBelief struct {
	ZoneID       string  `json:"zone_id"`
	OccupiedProb float64 `json:"occupied_prob"`
	MotionProb   float64 `json:"motion_prob"`
}

// Belief is one node's emission: the links, devices and zones it currently
// believes in, plus the gossip envelope fields.
type Belief struct {
	OriginNodeID   string                  `json:"node_id"`
	SequenceNumber uint64                  `json:"sequence_number"`
	HopCount       int                     `json:"hop_count"`
	WallClockMS    int64                   `json:"timestamp"`
	Links          map[string]LinkBelief   `json:"links"`
	Devices        map[string]DeviceBelief `json:"devices"`
	Zones          map[string]ZoneBelief   `json:"zones"`
	AcousticRanges map[string]float64      `json:"acoustic_ranges,omitempty"`
}

// Stale reports whether this belief's timestamp is older than a
// configurable horizon relative to nowMS.
func (b Belief) Stale(nowMS int64, horizonMS int64) bool {
	return nowMS-b.WallClockMS > horizonMS
}

// LinkKey returns the canonical PairKey for this link.
func (l LinkBelief) LinkKey() PairKey {
	return NewPairKey(l.PeerA, l.PeerB)
}
