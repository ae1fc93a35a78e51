package weight

import (
	"math"
	"testing"
)

func TestPrecisionMonotoneAndMidpoint(t *testing.T) {
	prev := Precision(0.02)
	for _, c := range []float64{0.1, 0.3, 0.5, 0.7, 0.9, 0.98} {
		p := Precision(c)
		if p <= prev {
			t.Fatalf("precision not increasing at c=%.2f: prev=%.4f cur=%.4f", c, prev, p)
		}
		prev = p
	}
	got := Variance(0.5)
	want := 1.0 + Epsilon
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Variance(0.5) = %.9f, want %.9f", got, want)
	}
}

// TestConsensusAgreementBoost covers three peers reporting attenuation
// {10,11,10} at confidence 0.8 each, and checks that agreement raises the
// fused confidence above any individual contributor's.
func TestConsensusAgreementBoost(t *testing.T) {
	cs := []Contribution{
		{Value: 10, Confidence: 0.8},
		{Value: 11, Confidence: 0.8},
		{Value: 10, Confidence: 0.8},
	}
	mean, totalPi, ok := WeightedMean(cs)
	if !ok {
		t.Fatal("expected ok")
	}
	if math.Abs(mean-10.333333) > 0.01 {
		t.Errorf("fused mean = %.4f, want ~10.333", mean)
	}
	cBase := BaseConfidence(totalPi)
	if math.Abs(cBase-0.923) > 0.02 {
		t.Errorf("c_base = %.4f, want ~0.923", cBase)
	}
	v := DisagreementVariance(cs, mean, totalPi)
	if math.Abs(v-0.222) > 0.01 {
		t.Errorf("disagreement variance = %.4f, want ~0.222", v)
	}
	// s=0.5 is the consensus default (consensus.DefaultConfig's DisagreementScale);
	// exercised directly here to keep this test self-contained.
	penalty := DisagreementPenalty(0.5, v)
	cFused := cBase * penalty
	maxC := 0.8
	if cFused <= maxC {
		t.Errorf("c_fused = %.4f, want > max(c_i) = %.4f", cFused, maxC)
	}
}
