package trilateration

import (
	"math"
	"testing"

	"senseye/geo"
)

func square10Anchors() map[string]Anchor {
	return map[string]Anchor{
		"a1": {ID: "a1", Pos: geo.Point{X: 0, Y: 0}},
		"a2": {ID: "a2", Pos: geo.Point{X: 10, Y: 0}},
		"a3": {ID: "a3", Pos: geo.Point{X: 10, Y: 10}},
		"a4": {ID: "a4", Pos: geo.Point{X: 0, Y: 10}},
	}
}

func rangesTo(anchors map[string]Anchor, target geo.Point, conf float64) []Range {
	out := make([]Range, 0, len(anchors))
	for id, a := range anchors {
		d := math.Hypot(target.X-a.Pos.X, target.Y-a.Pos.Y)
		out = append(out, Range{AnchorID: id, Distance: d, Confidence: conf})
	}
	return out
}

func TestSolveExactRangesRecoversPosition(t *testing.T) {
	anchors := square10Anchors()
	target := geo.Point{X: 4, Y: 6}
	ranges := rangesTo(anchors, target, 0.9)

	res, err := Solve(DefaultConfig(), anchors, ranges)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Hypot(res.Position.X-target.X, res.Position.Y-target.Y) > 0.05 {
		t.Errorf("position = %+v, want ~%+v", res.Position, target)
	}
}

func TestSolveRejectsGrossOutlier(t *testing.T) {
	anchors := square10Anchors()
	target := geo.Point{X: 5, Y: 5}
	ranges := rangesTo(anchors, target, 0.9)
	// Corrupt one anchor's range with a gross multipath-style overshoot.
	for i, r := range ranges {
		if r.AnchorID == "a1" {
			ranges[i].Distance += 15
		}
	}

	res, err := Solve(DefaultConfig(), anchors, ranges)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Hypot(res.Position.X-target.X, res.Position.Y-target.Y) > 1.0 {
		t.Errorf("position = %+v, want close to %+v despite outlier", res.Position, target)
	}
}

func TestSolveSubsetEnumerationRejectsCorruptAnchor(t *testing.T) {
	anchors := map[string]Anchor{
		"a1": {ID: "a1", Pos: geo.Point{X: 0, Y: 0}},
		"a2": {ID: "a2", Pos: geo.Point{X: 10, Y: 0}},
		"a3": {ID: "a3", Pos: geo.Point{X: 10, Y: 10}},
		"a4": {ID: "a4", Pos: geo.Point{X: 0, Y: 10}},
		"a5": {ID: "a5", Pos: geo.Point{X: 5, Y: 5}},
	}
	target := geo.Point{X: 5, Y: 5}
	ranges := rangesTo(anchors, target, 0.9)
	for i, r := range ranges {
		if r.AnchorID == "a5" {
			ranges[i].Distance += 5
		}
	}

	res, err := Solve(DefaultConfig(), anchors, ranges)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Hypot(res.Position.X-target.X, res.Position.Y-target.Y) > 0.5 {
		t.Errorf("position = %+v, want close to %+v despite bad anchor", res.Position, target)
	}
	found := false
	for _, id := range res.Rejected {
		if id == "a5" {
			found = true
		}
	}
	if !found {
		t.Errorf("Rejected = %v, want to include a5", res.Rejected)
	}
}

func TestSolveInsufficientAnchors(t *testing.T) {
	anchors := square10Anchors()
	ranges := []Range{
		{AnchorID: "a1", Distance: 5, Confidence: 0.9},
		{AnchorID: "a2", Distance: 5, Confidence: 0.9},
	}
	_, err := Solve(DefaultConfig(), anchors, ranges)
	if err != ErrInsufficientAnchors {
		t.Fatalf("expected ErrInsufficientAnchors, got %v", err)
	}
}
