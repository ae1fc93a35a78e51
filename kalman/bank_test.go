package kalman

import (
	"math"
	"testing"

	"senseye/measurement"
)

// TestKalmanSmoothingTracksJump feeds a sequence that jumps from ~-51 to
// ~-80 and checks that the adaptive process noise lets the filter catch up
// within two samples.
func TestKalmanSmoothingTracksJump(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ProcessNoise = 0.1
	cfg.MeasurementVarianceWiFi = 4.0
	cfg.JumpZScore = 3.0

	bank := NewBank(cfg)
	path := measurement.Path{SourceID: "n1", TargetID: "n2", Kind: measurement.WiFi}

	values := []float64{-50, -52, -51, -80, -79, -80}
	var smoothed []float64
	ts := int64(0)
	for _, v := range values {
		ts += 1000
		ps, _ := bank.Observe(measurement.Measurement{
			SourceID: path.SourceID, TargetID: path.TargetID, Kind: path.Kind,
			TimestampMS: ts, Value: v,
		})
		smoothed = append(smoothed, ps.X[0])
	}

	if math.Abs(smoothed[2]-(-51)) > 3 {
		t.Errorf("pre-jump smoothed value = %.2f, want ~-51", smoothed[2])
	}
	if math.Abs(smoothed[len(smoothed)-1]-(-80)) > 3 {
		t.Errorf("post-jump smoothed value = %.2f, want ~-80 within two samples", smoothed[len(smoothed)-1])
	}
}

// TestCovarianceStaysSymmetricPSD checks that after any update P is
// symmetric with non-negative eigenvalues.
func TestCovarianceStaysSymmetricPSD(t *testing.T) {
	cfg := DefaultConfig()
	bank := NewBank(cfg)
	path := measurement.Path{SourceID: "a", TargetID: "b", Kind: measurement.BLE}

	ts := int64(0)
	for i, v := range []float64{-60, -61, -59, -90, -58, -57, -95, -96} {
		ts += 500
		ps, _ := bank.Observe(measurement.Measurement{
			SourceID: path.SourceID, TargetID: path.TargetID, Kind: path.Kind,
			TimestampMS: ts, Value: v,
		})
		if math.Abs(ps.P[0][1]-ps.P[1][0]) > 1e-9 {
			t.Fatalf("iter %d: P not symmetric: %+v", i, ps.P)
		}
		tr := ps.P[0][0] + ps.P[1][1]
		det := ps.P[0][0]*ps.P[1][1] - ps.P[0][1]*ps.P[1][0]
		disc := tr*tr - 4*det
		if disc < 0 {
			disc = 0
		}
		sq := math.Sqrt(disc)
		l1 := (tr + sq) / 2
		l2 := (tr - sq) / 2
		if l1 < -1e-9 || l2 < -1e-9 {
			t.Fatalf("iter %d: negative eigenvalue: l1=%.6f l2=%.6f", i, l1, l2)
		}
	}
}

// TestPredictOnlyGrowsCovariance checks that predict-only steps (no
// measurement) satisfy P_{k+1} >= P_k in trace.
func TestPredictOnlyGrowsCovariance(t *testing.T) {
	cfg := DefaultConfig()
	bank := NewBank(cfg)
	path := measurement.Path{SourceID: "a", TargetID: "b", Kind: measurement.WiFi}
	ps, _ := bank.Observe(measurement.Measurement{SourceID: "a", TargetID: "b", Kind: measurement.WiFi, TimestampMS: 0, Value: -60})
	traceBefore := ps.P[0][0] + ps.P[1][1]

	xPred, pPred := ps.predict(1.0, cfg, 1.0)
	traceAfter := pPred[0][0] + pPred[1][1]
	if traceAfter < traceBefore {
		t.Errorf("predict-only trace shrank: before=%.4f after=%.4f", traceBefore, traceAfter)
	}
	if xPred[0] != ps.X[0]+ps.X[1]*1.0 {
		t.Errorf("predicted mean does not match F x_k")
	}
	_ = path
}

func TestPurgeRemovesSilentPaths(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TTLMillis = 1000
	bank := NewBank(cfg)
	bank.Observe(measurement.Measurement{SourceID: "a", TargetID: "b", Kind: measurement.WiFi, TimestampMS: 0, Value: -60})
	if bank.Len() != 1 {
		t.Fatalf("expected 1 path, got %d", bank.Len())
	}
	removed := bank.Purge(5000)
	if removed != 1 || bank.Len() != 0 {
		t.Fatalf("expected purge to remove the silent path, removed=%d len=%d", removed, bank.Len())
	}
}
