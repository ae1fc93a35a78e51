package collab

import (
	"context"
	"testing"

	"senseye/geo"
	"senseye/measurement"
)

func TestMockScannerReplaysBatchesThenEmpties(t *testing.T) {
	ctx := context.Background()
	s := NewMockScanner([][]measurement.Measurement{
		{{SourceID: "n1", TargetID: "n2"}},
		{{SourceID: "n1", TargetID: "n3"}},
	})
	b1, _ := s.ScanOnce(ctx)
	b2, _ := s.ScanOnce(ctx)
	b3, _ := s.ScanOnce(ctx)
	if len(b1) != 1 || b1[0].TargetID != "n2" {
		t.Fatalf("unexpected first batch: %+v", b1)
	}
	if len(b2) != 1 || b2[0].TargetID != "n3" {
		t.Fatalf("unexpected second batch: %+v", b2)
	}
	if len(b3) != 0 {
		t.Fatalf("expected empty batch after exhaustion, got %+v", b3)
	}
}

func TestMockRegistryGroupSharesPeers(t *testing.T) {
	ctx := context.Background()
	group := NewMockRegistryGroup(2)
	group[0].Register(ctx, "n1", "10.0.0.1:7000")
	peers, _ := group[1].Peers(ctx)
	if len(peers) != 1 || peers[0] != "10.0.0.1:7000" {
		t.Fatalf("expected shared registration visible to peer, got %+v", peers)
	}
}

func TestMockFloorPlanStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMockFloorPlanStore()
	in := map[string]geo.Point{"n1": {X: 1, Y: 2}}
	if err := store.Save(ctx, in); err != nil {
		t.Fatalf("save: %v", err)
	}
	out, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if out["n1"] != in["n1"] {
		t.Errorf("loaded %+v, want %+v", out, in)
	}
}
