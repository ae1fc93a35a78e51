package calibration

import (
	"math"
	"testing"

	"senseye/geo"
)

// square5 places 4 nodes at the corners of a 5x5 square and a 5th at its
// center, matching every pairwise Euclidean distance so MDS should recover
// the layout (up to rotation/reflection) exactly.
func square5() (nodes []string, obs []DistanceObservation, truth map[string]geo.Point) {
	truth = map[string]geo.Point{
		"n1": {X: 0, Y: 0},
		"n2": {X: 5, Y: 0},
		"n3": {X: 5, Y: 5},
		"n4": {X: 0, Y: 5},
		"n5": {X: 2.5, Y: 2.5},
	}
	for id := range truth {
		nodes = append(nodes, id)
	}
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			a, b := truth[nodes[i]], truth[nodes[j]]
			d := math.Hypot(a.X-b.X, a.Y-b.Y)
			obs = append(obs, DistanceObservation{A: nodes[i], B: nodes[j], DistanceM: d, Confidence: 0.9})
		}
	}
	return nodes, obs, truth
}

func TestRunRecoversLayoutUpToAnchors(t *testing.T) {
	nodes, obs, truth := square5()
	anchors := map[string]geo.Point{"n1": truth["n1"], "n2": truth["n2"]}

	res, err := Run(DefaultConfig(), nodes, obs, anchors, nil, 2.5, 45)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Two anchors fix translation and rotation but not which side of the
	// anchor line (y=0) the other nodes fall on, so the whole layout must
	// match either the truth or its mirror image across that line.
	mirrored := true
	for id, want := range truth {
		got := res.Positions[id]
		if math.Hypot(got.X-want.X, got.Y+want.Y) > 0.2 {
			mirrored = false
		}
	}
	for id, want := range truth {
		if mirrored {
			want.Y = -want.Y
		}
		got := res.Positions[id]
		if math.Hypot(got.X-want.X, got.Y-want.Y) > 0.2 {
			t.Errorf("node %s position = %+v, want ~%+v", id, got, want)
		}
	}
}

func TestRunAssignsDistinctAcousticBands(t *testing.T) {
	nodes, obs, _ := square5()
	cfg := DefaultConfig()
	cfg.AcousticBands = 8
	res, err := Run(cfg, nodes, obs, nil, nil, 2.5, 45)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	seen := map[int]bool{}
	for _, b := range res.AcousticBands {
		if seen[b] {
			t.Errorf("acoustic band collision at band %d", b)
		}
		seen[b] = true
	}
}

func TestRunDetectsWallFromExcessAttenuation(t *testing.T) {
	nodes, obs, truth := square5()
	atten := map[[2]string]float64{
		{"n1", "n3"}: 90, // far above free-space prediction across the diagonal
	}
	res, err := Run(DefaultConfig(), nodes, obs, map[string]geo.Point{"n1": truth["n1"], "n2": truth["n2"]}, atten, 2.5, 45)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Walls) == 0 {
		t.Error("expected at least one wall candidate from the elevated attenuation reading")
	}
}

func TestRunTooFewNodes(t *testing.T) {
	_, err := Run(DefaultConfig(), []string{"a", "b"}, nil, nil, nil, 2.5, 45)
	if err != ErrTooFewNodes {
		t.Fatalf("expected ErrTooFewNodes, got %v", err)
	}
}
