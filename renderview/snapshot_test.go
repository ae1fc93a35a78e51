package renderview

import (
	"encoding/json"
	"testing"
	"time"

	"senseye/geo"
	"senseye/worldstate"
)

func TestBuildSnapshotIncludesRoomsAndDevices(t *testing.T) {
	fp := worldstate.FloorPlan{
		NodePositions: map[string]geo.Point{"n1": {X: 0, Y: 0}},
		Rooms:         []worldstate.Room{{ID: "room-a", Rects: []geo.Rect{{XMin: 0, YMin: 0, XMax: 5, YMax: 5}}}},
	}
	s := worldstate.NewState(fp, 5000)
	s.Zones["room-a"] = &worldstate.ZoneState{OccupiedProb: 0.7, MotionIntensity: 0.4}
	s.Devices["dev1"] = &worldstate.DeviceState{DeviceID: "dev1", RoomID: "room-a", HasPosition: true, Position: geo.Point{X: 1, Y: 1}}

	snap := BuildSnapshot(s, 1000)
	if len(snap.Rooms) != 1 || snap.Rooms[0].OccupiedProb != 0.7 {
		t.Fatalf("unexpected rooms: %+v", snap.Rooms)
	}
	if len(snap.Devices) != 1 || snap.Devices[0].RoomID != "room-a" {
		t.Fatalf("unexpected devices: %+v", snap.Devices)
	}

	data, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var round WorldSnapshot
	if err := json.Unmarshal(data, &round); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if round.Devices[0].DeviceID != "dev1" {
		t.Errorf("round trip mismatch: %+v", round)
	}
}

func TestHubBroadcastReachesRegisteredClient(t *testing.T) {
	h := NewHub()
	go h.Run()
	defer h.Stop()

	c := &client{hub: h, send: make(chan []byte, 4)}
	h.register <- c
	// Give the loop goroutine a chance to process registration.
	waitForCount(t, h, 1)

	h.PushSnapshot(WorldSnapshot{TimestampMS: 42})
	select {
	case msg := <-c.send:
		var got WorldSnapshot
		if err := json.Unmarshal(msg, &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if got.TimestampMS != 42 {
			t.Errorf("timestamp = %d, want 42", got.TimestampMS)
		}
	case <-time.After(time.Second):
		t.Fatal("expected a broadcast message on the client's send channel")
	}
}

func waitForCount(t *testing.T, h *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if h.ClientCount() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("hub never reached client count %d", want)
}
