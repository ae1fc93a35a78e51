// Package kalman implements the adaptive Kalman bank: one 2-state
// constant-velocity filter per (source, target, kind) signal path. It is
// grounded on ApiStack-engine-go/fusion/ekf.go's Joseph-form update and
// adaptive process-noise handling, generalized from a single 6-state
// UWB/BLE position filter down to a bank of independent 2-state RSSI
// smoothers.
package kalman

import (
	"senseye/measurement"
)

// Bank owns every PathState for this node. It is mutated only by the
// pipeline task — callers must not share a Bank across goroutines without
// external synchronization.
type Bank struct {
	cfg   Config
	paths map[measurement.Path]*PathState
}

// NewBank constructs an empty bank with the given configuration.
func NewBank(cfg Config) *Bank {
	return &Bank{cfg: cfg, paths: make(map[measurement.Path]*PathState)}
}

// Observe applies one measurement, creating a new PathState on first sight
// of the path. It returns the path's state after the update, and false if
// the measurement was discarded as out of order.
func (b *Bank) Observe(m measurement.Measurement) (*PathState, bool) {
	key := m.PathOf()
	ps, ok := b.paths[key]
	if !ok {
		ps = newPathState(m.Value, m.TimestampMS, b.cfg)
		b.paths[key] = ps
		return ps, true
	}
	applied := ps.update(m.Value, m.TimestampMS, m.Kind, b.cfg)
	return ps, applied
}

// Get returns the current state for a path, if any.
func (b *Bank) Get(p measurement.Path) (*PathState, bool) {
	ps, ok := b.paths[p]
	return ps, ok
}

// Paths returns every live path key currently tracked.
func (b *Bank) Paths() []measurement.Path {
	out := make([]measurement.Path, 0, len(b.paths))
	for k := range b.paths {
		out = append(out, k)
	}
	return out
}

// Purge destroys any path silent for longer than the configured TTL,
// relative to nowMS.
func (b *Bank) Purge(nowMS int64) int {
	removed := 0
	for k, ps := range b.paths {
		if nowMS-ps.LastUpdateMS > b.cfg.TTLMillis {
			delete(b.paths, k)
			removed++
		}
	}
	return removed
}

// Len reports how many paths are currently tracked.
func (b *Bank) Len() int { return len(b.paths) }
