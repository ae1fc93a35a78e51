package pipeline

import (
	"context"
	"testing"
	"time"

	"senseye/collab"
	"senseye/geo"
	"senseye/gossip"
	"senseye/infer"
	"senseye/measurement"
	"senseye/worldstate"
)

func TestTickBuildsAndBroadcastsBelief(t *testing.T) {
	scanner := collab.NewMockScanner([][]measurement.Measurement{
		{{SourceID: "n1", TargetID: "n2", Kind: measurement.WiFi, TimestampMS: 1000, Value: -60}},
	})
	mesh := gossip.NewMesh("n1", gossip.DefaultConfig())
	fp := worldstate.FloorPlan{NodePositions: map[string]geo.Point{"n1": {X: 0, Y: 0}, "n2": {X: 5, Y: 0}}}
	world := worldstate.NewState(fp, 5000)
	positions := infer.Positions{"n1": {X: 0, Y: 0}, "n2": {X: 5, Y: 0}}

	cfg := DefaultConfig("n1")
	p := New(cfg, scanner, nil, mesh, world, nil, positions)

	p.tick(context.Background(), 1000)

	if p.seq != 1 {
		t.Fatalf("expected sequence 1 after one tick, got %d", p.seq)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	scanner := collab.NewMockScanner(nil)
	mesh := gossip.NewMesh("n1", gossip.DefaultConfig())
	world := worldstate.NewState(worldstate.FloorPlan{}, 5000)
	cfg := DefaultConfig("n1")
	cfg.TickPeriod = 5 * time.Millisecond
	p := New(cfg, scanner, nil, mesh, world, nil, infer.Positions{})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}
