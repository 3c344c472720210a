package order

import (
	"testing"

	"github.com/go-mdr/mdr/errormetric"
)

func buildLevelErrors(bound float64, numPlanes int) []float64 {
	return errormetric.MaxErrorCollector{}.CollectLevelError(numPlanes, bound)
}

func TestOrderEmitsEveryChunkExactlyOnce(t *testing.T) {
	est := errormetric.MaxErrorEstimator{}
	levelErrors := [][]float64{
		buildLevelErrors(16, 3),
		buildLevelErrors(8, 3),
	}
	sizes := [][]uint32{{10, 10, 10}, {5, 5, 5}}

	chunkOrder, errorPerStep, err := Order(levelErrors, sizes, est)
	if err != nil {
		t.Fatalf("Order: %v", err)
	}

	total := 0
	for _, s := range sizes {
		total += len(s)
	}
	if len(chunkOrder) != total {
		t.Fatalf("chunkOrder length = %d, want %d", len(chunkOrder), total)
	}
	if len(errorPerStep) != total {
		t.Fatalf("errorPerStep length = %d, want %d", len(errorPerStep), total)
	}

	counts := make(map[uint8]int)
	for _, l := range chunkOrder {
		counts[l]++
	}
	if counts[0] != 3 || counts[1] != 3 {
		t.Errorf("chunk counts per level = %v, want {0:3, 1:3}", counts)
	}
}

func TestOrderInitialPassBootstrapsEveryLevel(t *testing.T) {
	est := errormetric.MaxErrorEstimator{}
	levelErrors := [][]float64{
		buildLevelErrors(100, 2),
		buildLevelErrors(1, 2),
		buildLevelErrors(50, 2),
	}
	sizes := [][]uint32{{1, 1}, {1, 1}, {1, 1}}

	chunkOrder, _, err := Order(levelErrors, sizes, est)
	if err != nil {
		t.Fatalf("Order: %v", err)
	}

	seen := map[uint8]bool{}
	for _, l := range chunkOrder[:3] {
		seen[l] = true
	}
	if len(seen) != 3 {
		t.Fatalf("first 3 chunks = %v, want one chunk from every level", chunkOrder[:3])
	}
}

func TestOrderErrorPerStepMonotoneNonIncreasing(t *testing.T) {
	est := errormetric.MaxErrorEstimator{}
	levelErrors := [][]float64{
		buildLevelErrors(32, 5),
		buildLevelErrors(4, 5),
	}
	sizes := [][]uint32{{2, 2, 2, 2, 2}, {1, 1, 1, 1, 1}}

	_, errorPerStep, err := Order(levelErrors, sizes, est)
	if err != nil {
		t.Fatalf("Order: %v", err)
	}
	for i := 1; i < len(errorPerStep); i++ {
		if errorPerStep[i] > errorPerStep[i-1]+1e-9 {
			t.Errorf("errorPerStep not monotone at %d: %v > %v", i, errorPerStep[i], errorPerStep[i-1])
		}
	}
	if last := errorPerStep[len(errorPerStep)-1]; last > 1e-9 {
		t.Errorf("final error = %v, want ~0 after consuming every chunk", last)
	}
}

func TestOrderIsDeterministic(t *testing.T) {
	est := errormetric.MaxErrorEstimator{}
	levelErrors := [][]float64{
		buildLevelErrors(16, 4),
		buildLevelErrors(16, 4),
		buildLevelErrors(16, 4),
	}
	sizes := [][]uint32{{4, 4, 4, 4}, {4, 4, 4, 4}, {4, 4, 4, 4}}

	first, _, err := Order(levelErrors, sizes, est)
	if err != nil {
		t.Fatalf("Order: %v", err)
	}
	second, _, err := Order(levelErrors, sizes, est)
	if err != nil {
		t.Fatalf("Order: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("length mismatch across runs")
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("order diverged at step %d: %d vs %d (ties must break deterministically)", i, first[i], second[i])
		}
	}
}

func TestOrderRejectsMismatchedLengths(t *testing.T) {
	est := errormetric.MaxErrorEstimator{}
	levelErrors := [][]float64{buildLevelErrors(1, 1)}
	sizes := [][]uint32{{1}, {1}}
	if _, _, err := Order(levelErrors, sizes, est); err == nil {
		t.Fatal("expected error for levelErrors/sizes length mismatch")
	}
}
