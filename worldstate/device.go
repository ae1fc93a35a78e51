package worldstate

import (
	"senseye/belief"
	"senseye/geo"
)

// ApplyDevices updates device room assignments from fused DeviceBelief
// entries. A device's position isn't known directly (only RSSI/distance
// to whichever node observed it), so room assignment here only covers
// devices whose position was separately resolved by trilateration;
// positionless devices are tracked by id/confidence only.
func (s *State) ApplyDevices(devices map[string]belief.DeviceBelief, positions map[string]PositionedDevice, nowMS int64) {
	for id, d := range devices {
		ds, ok := s.Devices[id]
		if !ok {
			ds = &DeviceState{DeviceID: id}
			s.Devices[id] = ds
		}
		ds.LastSeenMS = nowMS
		ds.RSSIDbm = d.RSSIDbm
		ds.Moving = d.Moving
		ds.Confidence = d.Confidence
		if pd, ok := positions[id]; ok {
			ds.Position = pd.Position
			ds.HasPosition = true
			if room, ok := s.FloorPlan.RoomAt(pd.Position); ok {
				ds.RoomID = room
			}
		}
	}
}

// PositionedDevice is a device whose 2D position was resolved, typically
// by trilateration against anchors.
type PositionedDevice struct {
	DeviceID string
	Position geo.Point
}
