// Package collab defines the contracts for external collaborators this
// node depends on but does not implement itself: the RF/acoustic scanner
// hardware abstraction, peer discovery, and floor plan persistence. Real
// implementations live outside this module (a BLE/WiFi scan driver, an
// mDNS responder, a database-backed store); this package only fixes the
// interfaces senseye's pipeline is written against, plus in-memory mocks
// for tests.
package collab

import (
	"context"

	"senseye/belief"
	"senseye/geo"
	"senseye/measurement"
)

// Scanner is the hardware abstraction for RF/BLE measurement collection.
// A real implementation wraps a WiFi/BLE radio driver; ScanOnce returns
// whatever measurements were observed since the last call.
type Scanner interface {
	ScanOnce(ctx context.Context) ([]measurement.Measurement, error)
}

// AcousticDevice is the hardware abstraction for the acoustic ranging
// channel: emitting a chirp on a band and timestamping received chirps
// from peers for time-of-flight ranging.
type AcousticDevice interface {
	EmitChirp(ctx context.Context, band int) error
	ListenOnce(ctx context.Context) ([]AcousticEvent, error)
}

// AcousticEvent is one received chirp, timestamped for time-of-flight
// ranging against the emitter's announced send time.
type AcousticEvent struct {
	FromNodeID string
	Band       int
	SentAtMS   int64
	ReceivedAtMS int64
}

// ServiceRegistry is the peer discovery abstraction (e.g. an mDNS
// responder/browser). Register announces this node; Peers returns
// currently known mesh addresses.
type ServiceRegistry interface {
	Register(ctx context.Context, nodeID, addr string) error
	Peers(ctx context.Context) ([]string, error)
}

// FloorPlanStore persists the calibrated floor plan and node positions
// across restarts.
type FloorPlanStore interface {
	Save(ctx context.Context, nodePositions map[string]geo.Point) error
	Load(ctx context.Context) (map[string]geo.Point, error)
}

// BeliefSink is where a node's own local Belief goes once built, for the
// caller to hand to the gossip mesh for broadcast.
type BeliefSink interface {
	Publish(ctx context.Context, b belief.Belief) error
}
