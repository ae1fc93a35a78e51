package infer

import (
	"math"
	"testing"

	"senseye/geo"
	"senseye/kalman"
	"senseye/measurement"
)

// TestRSSIDistanceRoundTrip checks d_from_rssi(rssi_expected(d)) = d for d
// in [0.1, 100] within tolerance.
func TestRSSIDistanceRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	for d := 0.1; d <= 100; d += 3.3 {
		rssi := ExpectedRSSI(d, cfg.PathLossExponentIndoor, cfg.ReferenceAttenuationA)
		got := DistanceFromRSSI(rssi, cfg.PathLossExponentIndoor, cfg.ReferenceAttenuationA, cfg.MinDistanceM)
		if math.Abs(got-d) > 1e-6 {
			t.Errorf("round trip mismatch at d=%.2f: got %.6f", d, got)
		}
	}
}

func TestBuildLinksProducesAttenuation(t *testing.T) {
	bank := kalman.NewBank(kalman.DefaultConfig())
	ts := int64(0)
	for i := 0; i < 10; i++ {
		ts += 1000
		bank.Observe(measurement.Measurement{
			SourceID: "n1", TargetID: "n2", Kind: measurement.WiFi,
			TimestampMS: ts, Value: -70,
		})
	}
	pos := Positions{
		"n1": {X: 0, Y: 0},
		"n2": {X: 10, Y: 0},
	}
	eng := NewEngine(DefaultConfig(), nil)
	links := eng.BuildLinks(bank, pos)
	if len(links) != 1 {
		t.Fatalf("expected 1 link, got %d", len(links))
	}
	for _, l := range links {
		if l.AttenuationDB < 0 {
			t.Errorf("attenuation should be clamped at 0, got %.2f", l.AttenuationDB)
		}
		if l.Confidence <= 0 || l.Confidence >= 1 {
			t.Errorf("confidence out of range: %.2f", l.Confidence)
		}
	}
}

func TestBuildZonesAggregatesCrossingLinks(t *testing.T) {
	bank := kalman.NewBank(kalman.DefaultConfig())
	ts := int64(0)
	for i := 0; i < 10; i++ {
		ts += 1000
		bank.Observe(measurement.Measurement{SourceID: "n1", TargetID: "n2", Kind: measurement.WiFi, TimestampMS: ts, Value: -75})
	}
	pos := Positions{"n1": {X: 0, Y: 5}, "n2": {X: 10, Y: 5}}
	zone := Zone{ID: "room-a", Rects: []geo.Rect{{XMin: 2, YMin: 0, XMax: 8, YMax: 10}}}
	eng := NewEngine(DefaultConfig(), []Zone{zone})
	links := eng.BuildLinks(bank, pos)
	zones := eng.BuildZones(links, pos)
	zb, ok := zones["room-a"]
	if !ok {
		t.Fatal("expected room-a zone belief")
	}
	if zb.OccupiedProb < 0 || zb.OccupiedProb > 1 {
		t.Errorf("occupied prob out of range: %.3f", zb.OccupiedProb)
	}
}
