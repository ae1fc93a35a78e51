package kalman

import "senseye/measurement"

// Config bundles the tunables for the adaptive Kalman bank. Defaults mirror
// values used for indoor RF smoothing; acoustic paths get a tighter
// measurement variance since two-way ranging is much less noisy than RSSI.
type Config struct {
	// ProcessNoise (q) scales the constant-velocity process covariance.
	ProcessNoise float64
	// MeasurementVarianceWiFi, MeasurementVarianceBLE, MeasurementVarianceAcoustic
	// set R per sensor kind.
	MeasurementVarianceWiFi     float64
	MeasurementVarianceBLE      float64
	MeasurementVarianceAcoustic float64
	// JumpZScore (τ_jump) triggers adaptive Q scaling when the innovation
	// z-score exceeds it.
	JumpZScore float64
	// JumpScale (s) is the multiplier applied to Q for one step after a jump.
	JumpScale float64
	// MinInnovationVariance floors S before division (ε).
	MinInnovationVariance float64
	// HistoryLen is the length N of the ring buffer of filtered values kept
	// per path, used by local inference's motion-variance test.
	HistoryLen int
	// TTL purges a path's state after this many milliseconds of silence.
	TTLMillis int64
}

// DefaultConfig uses dt=1s, q=0.1, R=4, τ_jump=3.
func DefaultConfig() Config {
	return Config{
		ProcessNoise:                0.1,
		MeasurementVarianceWiFi:     4.0,
		MeasurementVarianceBLE:      4.0,
		MeasurementVarianceAcoustic: 0.25,
		JumpZScore:                  3.0,
		JumpScale:                   25.0,
		MinInnovationVariance:       1e-6,
		HistoryLen:                  20,
		TTLMillis:                   30_000,
	}
}

func (c Config) measurementVariance(k measurement.Kind) float64 {
	switch k {
	case measurement.BLE:
		return c.MeasurementVarianceBLE
	case measurement.Acoustic:
		return c.MeasurementVarianceAcoustic
	default:
		return c.MeasurementVarianceWiFi
	}
}
