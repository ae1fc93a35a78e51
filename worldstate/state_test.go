package worldstate

import (
	"math"
	"testing"

	"senseye/belief"
	"senseye/geo"
)

func TestZoneDecayHalvesAtHalfLife(t *testing.T) {
	fp := FloorPlan{}
	s := NewState(fp, 1000)
	s.ApplyZones(map[string]belief.ZoneBelief{
		"room-a": {ZoneID: "room-a", OccupiedProb: 0.8, MotionProb: 1.0},
	}, 0)

	// No fresh evidence at t=1000 (one half-life later): intensity should
	// have halved.
	s.ApplyZones(map[string]belief.ZoneBelief{}, 1000)
	zs := s.Zones["room-a"]
	if math.Abs(zs.MotionIntensity-0.5) > 0.01 {
		t.Errorf("motion intensity after one half-life = %.4f, want ~0.5", zs.MotionIntensity)
	}
}

func TestZoneFreshEvidenceOverridesDecay(t *testing.T) {
	fp := FloorPlan{}
	s := NewState(fp, 1000)
	s.ApplyZones(map[string]belief.ZoneBelief{"room-a": {ZoneID: "room-a", MotionProb: 0.2}}, 0)
	s.ApplyZones(map[string]belief.ZoneBelief{"room-a": {ZoneID: "room-a", MotionProb: 0.9}}, 500)
	if s.Zones["room-a"].MotionIntensity != 0.9 {
		t.Errorf("fresh evidence should override decay, got %.4f", s.Zones["room-a"].MotionIntensity)
	}
}

func TestDeviceAssignedToRoomByPosition(t *testing.T) {
	fp := FloorPlan{Rooms: []Room{
		{ID: "room-a", Rects: []geo.Rect{{XMin: 0, YMin: 0, XMax: 5, YMax: 5}}},
	}}
	s := NewState(fp, 1000)
	s.ApplyDevices(
		map[string]belief.DeviceBelief{"dev1": {DeviceID: "dev1"}},
		map[string]PositionedDevice{"dev1": {DeviceID: "dev1", Position: geo.Point{X: 2, Y: 2}}},
		1000,
	)
	ds := s.Devices["dev1"]
	if ds.RoomID != "room-a" {
		t.Errorf("device room = %q, want room-a", ds.RoomID)
	}
}

func TestRecalibrationTriggersOnSilentMajority(t *testing.T) {
	trig := DefaultRecalibrationTrigger()
	nodes := []string{"n1", "n2", "n3"}
	lastSeen := map[string]int64{"n1": 100_000}
	if !trig.ShouldRecalibrate(nodes, lastSeen, 200_000) {
		t.Error("expected recalibration trigger when 2/3 nodes are silent")
	}
	lastSeen2 := map[string]int64{"n1": 199_000, "n2": 199_000, "n3": 199_000}
	if trig.ShouldRecalibrate(nodes, lastSeen2, 200_000) {
		t.Error("did not expect recalibration trigger when all nodes are fresh")
	}
}
