// Package gossip implements the peer-to-peer mesh that exchanges Beliefs
// between nodes. Wire messages are newline-delimited JSON over TCP; peer
// connection management is adapted from ApiStack-engine-go/rbc/sender.go's
// reconnect-with-backoff TcpClient.
package gossip

import "senseye/belief"

// Kind distinguishes the gossip message types carried over the mesh.
type Kind string

const (
	KindAnnounce     Kind = "announce"
	KindBelief       Kind = "belief"
	KindAcousticPing Kind = "acoustic_ping"
	KindAcousticPong Kind = "acoustic_pong"
)

// Message is the envelope every mesh participant sends and receives.
// Only the field relevant to Kind is populated.
type Message struct {
	Kind           Kind   `json:"kind"`
	OriginNodeID   string `json:"origin_node_id"`
	SequenceNumber uint64 `json:"sequence_number"`
	HopCount       int    `json:"hop_count"`
	SentAtMS       int64  `json:"sent_at_ms"`

	Belief *belief.Belief `json:"belief,omitempty"`

	// AcousticBand/PingID carry acoustic_ping/acoustic_pong payloads: a
	// node asks a peer to chirp on a given band and expects a pong once
	// it has scheduled the emission.
	AcousticBand int    `json:"acoustic_band,omitempty"`
	PingID       string `json:"ping_id,omitempty"`
}

// dedupKey identifies a message for loop prevention: the same origin node
// never needs to relay the same (kind, sequence number) twice. Kind is
// part of the key because heartbeat announces and belief broadcasts are
// sequenced independently by the same origin.
type dedupKey struct {
	Origin string
	Kind   Kind
	Seq    uint64
}
