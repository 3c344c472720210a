package errormetric

import "testing"

func TestMaxErrorCollectorGeometricHalving(t *testing.T) {
	out := MaxErrorCollector{}.CollectLevelError(4, 8.0)
	want := []float64{8, 4, 2, 1, 0}
	if len(out) != len(want) {
		t.Fatalf("length = %d, want %d", len(out), len(want))
	}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("out[%d] = %v, want %v", i, out[i], want[i])
		}
	}
}

func TestMaxErrorEstimatorGainIsLinearDifference(t *testing.T) {
	e := MaxErrorEstimator{}
	before, after := 8.0, 4.0
	gain := e.EstimateGain(100, before, after, 0)
	want := e.Estimate(before, 0) - e.Estimate(after, 0)
	if gain != want {
		t.Errorf("gain = %v, want %v", gain, want)
	}
}

func TestMaxErrorEstimatorWeighting(t *testing.T) {
	e := MaxErrorEstimator{Weight: func(level int) float64 { return float64(level + 1) }}
	if got := e.Estimate(2.0, 3); got != 8.0 {
		t.Errorf("Estimate(2.0, level=3) = %v, want 8.0", got)
	}
}

func TestSquaredErrorEstimatorGainPositiveForImprovement(t *testing.T) {
	e := SquaredErrorEstimator{}
	gain := e.EstimateGain(10, 4, 1, 0)
	if gain <= 0 {
		t.Errorf("expected positive gain from reducing per-level error, got %v", gain)
	}
}

func TestFamilyTags(t *testing.T) {
	maxEst := MaxErrorEstimator{}
	sqEst := SquaredErrorEstimator{}
	if maxEst.Family() != MaxError {
		t.Error("MaxErrorEstimator.Family() != MaxError")
	}
	if sqEst.Family() != SquaredError {
		t.Error("SquaredErrorEstimator.Family() != SquaredError")
	}
}
