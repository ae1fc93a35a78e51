// Package pipeline wires the cooperative single-threaded event loop that
// drives one senseyed node: SCAN -> FILTER -> INFER -> SHARE/FUSE -> WORLD
// -> RENDER, each tick, until the context is canceled.
package pipeline

import (
	"context"
	"log"
	"sync"
	"time"

	"senseye/belief"
	"senseye/calibration"
	"senseye/collab"
	"senseye/consensus"
	"senseye/gossip"
	"senseye/infer"
	"senseye/kalman"
	"senseye/renderview"
	"senseye/trilateration"
	"senseye/worldstate"
)

// Config holds pipeline tunables.
type Config struct {
	SelfID     string
	TickPeriod time.Duration
	MaxHops    int
	Kalman     kalman.Config
	Infer      infer.Config
	Consensus  consensus.Config
}

// DefaultConfig returns a pipeline configuration built from each
// component's own defaults.
func DefaultConfig(selfID string) Config {
	return Config{
		SelfID:     selfID,
		TickPeriod: time.Second,
		MaxHops:    5,
		Kalman:     kalman.DefaultConfig(),
		Infer:      infer.DefaultConfig(),
		Consensus:  consensus.DefaultConfig(),
	}
}

// Pipeline owns every component of one node's sense -> infer -> fuse ->
// render loop.
type Pipeline struct {
	cfg   Config
	bank  *kalman.Bank
	infer *infer.Engine
	mesh  *gossip.Mesh
	world *worldstate.State
	hub   *renderview.Hub

	scanner collab.Scanner

	mu          sync.Mutex
	positions   infer.Positions
	peerBeliefs map[string]belief.Belief
	seq         uint64
}

// New wires a pipeline over the given components. hub may be nil when
// running headless.
func New(cfg Config, scanner collab.Scanner, zones []infer.Zone, mesh *gossip.Mesh, world *worldstate.State, hub *renderview.Hub, positions infer.Positions) *Pipeline {
	p := &Pipeline{
		cfg:         cfg,
		bank:        kalman.NewBank(cfg.Kalman),
		infer:       infer.NewEngine(cfg.Infer, zones),
		mesh:        mesh,
		world:       world,
		hub:         hub,
		scanner:     scanner,
		positions:   positions,
		peerBeliefs: map[string]belief.Belief{},
	}
	mesh.OnBelief = p.onPeerBelief
	return p
}

func (p *Pipeline) onPeerBelief(msg gossip.Message) {
	if msg.Belief == nil {
		return
	}
	p.mu.Lock()
	p.peerBeliefs[msg.Belief.OriginNodeID] = *msg.Belief
	p.mu.Unlock()
}

// Run drives the event loop until ctx is canceled, ticking at
// cfg.TickPeriod.
func (p *Pipeline) Run(ctx context.Context) {
	ticker := time.NewTicker(p.cfg.TickPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx, nowMS())
		}
	}
}

func (p *Pipeline) tick(ctx context.Context, nowMS int64) {
	// SCAN
	measurements, err := p.scanner.ScanOnce(ctx)
	if err != nil {
		log.Printf("pipeline: scan failed: %v", err)
		return
	}

	// FILTER
	for _, m := range measurements {
		p.bank.Observe(m)
	}
	p.bank.Purge(nowMS)

	// INFER
	p.seq++
	local := p.infer.BuildBelief(p.bank, p.cfg.SelfID, p.seq, nowMS, p.positions, p.cfg.MaxHops)

	// SHARE
	p.mesh.Broadcast(gossip.Message{
		Kind:           gossip.KindBelief,
		OriginNodeID:   p.cfg.SelfID,
		SequenceNumber: p.seq,
		HopCount:       p.cfg.MaxHops,
		SentAtMS:       nowMS,
		Belief:         &local,
	})

	// FUSE
	p.mu.Lock()
	all := make([]belief.Belief, 0, len(p.peerBeliefs)+1)
	all = append(all, local)
	for _, b := range p.peerBeliefs {
		all = append(all, b)
	}
	p.mu.Unlock()
	links, devices, zones := consensus.Fuse(p.cfg.Consensus, all, nowMS)

	// WORLD
	p.world.ApplyZones(zones, nowMS)
	p.world.ApplyDevices(devices, p.localizeDevices(all), nowMS)
	_ = links

	// RENDER
	if p.hub != nil {
		p.hub.PushSnapshot(renderview.BuildSnapshot(p.world, nowMS))
	}
}

// TriggerRecalibration runs the calibration orchestrator over the
// pipeline's current distance observations and swaps in the resulting
// floor plan. Kept separate from the per-tick loop since it's an
// infrequent, heavier operation; the per-tick loop never calls it, and
// worldstate.RecalibrationTrigger only reports whether it is due.
func (p *Pipeline) TriggerRecalibration(cfg calibration.Config, nodes []string, obs []calibration.DistanceObservation) error {
	res, err := calibration.Run(cfg, nodes, obs, nil, nil, p.cfg.Infer.PathLossExponentCalib, p.cfg.Infer.ReferenceAttenuationA)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.positions = infer.Positions(res.Positions)
	p.mu.Unlock()
	p.world.FloorPlan.NodePositions = res.Positions
	return nil
}

// localizeDevices trilaterates each device's position from every
// contributing node's reported distance to it, treating positioned mesh
// nodes as trilateration anchors. Devices seen by fewer than 3 positioned
// nodes are left unlocalized.
func (p *Pipeline) localizeDevices(beliefs []belief.Belief) map[string]worldstate.PositionedDevice {
	ranges := map[string][]trilateration.Range{}
	for _, b := range beliefs {
		if _, ok := p.positions[b.OriginNodeID]; !ok {
			continue
		}
		for id, d := range b.Devices {
			ranges[id] = append(ranges[id], trilateration.Range{
				AnchorID:   b.OriginNodeID,
				Distance:   d.EstimatedDistance,
				Confidence: d.Confidence,
			})
		}
	}

	anchors := make(map[string]trilateration.Anchor, len(p.positions))
	for id, pos := range p.positions {
		anchors[id] = trilateration.Anchor{ID: id, Pos: pos}
	}

	out := map[string]worldstate.PositionedDevice{}
	for id, rs := range ranges {
		res, err := trilateration.Solve(trilateration.DefaultConfig(), anchors, rs)
		if err != nil {
			continue
		}
		out[id] = worldstate.PositionedDevice{DeviceID: id, Position: res.Position}
	}
	return out
}

func nowMS() int64 {
	return time.Now().UnixMilli()
}
