// Package measurement defines the immutable observation type that flows
// out of scanners and into the Kalman bank.
package measurement

// Kind tags which sensing modality produced a Measurement. Polymorphism over
// sensor kinds is modeled as a tagged variant, not inheritance: each kind
// has its own confidence formula downstream but the pipeline that carries
// it is uniform.
type Kind int

const (
	WiFi Kind = iota
	BLE
	Acoustic
)

func (k Kind) String() string {
	switch k {
	case WiFi:
		return "wifi"
	case BLE:
		return "ble"
	case Acoustic:
		return "acoustic"
	default:
		return "unknown"
	}
}

// Path identifies a directed signal path between two nodes for a given kind.
// It is the key under which a kalman.PathState lives.
type Path struct {
	SourceID string
	TargetID string
	Kind     Kind
}

// Measurement is a single timestamped observation. It is immutable and is
// dropped once consumed by the Kalman bank.
type Measurement struct {
	SourceID    string
	TargetID    string
	Kind        Kind
	TimestampMS int64
	// Value holds RSSI in dBm for WiFi/BLE, or a distance in meters for
	// Acoustic measurements produced by two-way ranging.
	Value float64
	// SNR is only meaningful for Acoustic measurements (matched-filter peak
	// signal-to-noise ratio); zero otherwise.
	SNR float64
}

// PathOf returns the (source, target, kind) key for m.
func (m Measurement) PathOf() Path {
	return Path{SourceID: m.SourceID, TargetID: m.TargetID, Kind: m.Kind}
}
