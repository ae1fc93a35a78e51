package renderview

import (
	"encoding/json"
	"log"

	"senseye/geo"
	"senseye/worldstate"
)

// WorldSnapshot is the JSON payload pushed to every connected browser
// client on each render tick.
type WorldSnapshot struct {
	TimestampMS int64                `json:"timestamp"`
	Nodes       map[string]geo.Point `json:"nodes"`
	Rooms       []RoomSnapshot       `json:"rooms"`
	Devices     []DeviceSnapshot     `json:"devices"`
}

// RoomSnapshot is one room's rendered occupancy/motion state.
type RoomSnapshot struct {
	ID              string     `json:"id"`
	Rects           []geo.Rect `json:"rects"`
	OccupiedProb    float64    `json:"occupied_prob"`
	MotionIntensity float64    `json:"motion_intensity"`
}

// DeviceSnapshot is one tracked device's rendered state.
type DeviceSnapshot struct {
	DeviceID    string    `json:"device_id"`
	RoomID      string    `json:"room_id,omitempty"`
	Position    geo.Point `json:"position,omitempty"`
	HasPosition bool      `json:"has_position"`
	RSSIDbm     float64   `json:"rssi_dbm"`
	Moving      bool      `json:"moving"`
	Confidence  float64   `json:"confidence"`
}

// BuildSnapshot renders a worldstate.State into the wire format the
// browser client understands.
func BuildSnapshot(s *worldstate.State, nowMS int64) WorldSnapshot {
	snap := WorldSnapshot{TimestampMS: nowMS, Nodes: s.FloorPlan.NodePositions}
	for _, room := range s.FloorPlan.Rooms {
		zs, ok := s.Zones[room.ID]
		rs := RoomSnapshot{ID: room.ID, Rects: room.Rects}
		if ok {
			rs.OccupiedProb = zs.OccupiedProb
			rs.MotionIntensity = zs.MotionIntensity
		}
		snap.Rooms = append(snap.Rooms, rs)
	}
	for _, d := range s.Devices {
		snap.Devices = append(snap.Devices, DeviceSnapshot{
			DeviceID:    d.DeviceID,
			RoomID:      d.RoomID,
			Position:    d.Position,
			HasPosition: d.HasPosition,
			RSSIDbm:     d.RSSIDbm,
			Moving:      d.Moving,
			Confidence:  d.Confidence,
		})
	}
	return snap
}

// PushSnapshot marshals and broadcasts a snapshot to every connected
// client.
func (h *Hub) PushSnapshot(snap WorldSnapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		log.Printf("renderview: marshal snapshot failed: %v", err)
		return
	}
	h.Broadcast(data)
}
