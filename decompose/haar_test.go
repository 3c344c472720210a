package decompose

import (
	"math"
	"testing"

	"github.com/go-mdr/mdr"
)

func roundTrip[T mdr.Float](t *testing.T, dims mdr.Dims, level uint8, data []T) {
	t.Helper()
	orig := append([]T(nil), data...)

	h := NewHaar[T]()
	if err := h.Decompose(data, dims, level); err != nil {
		t.Fatalf("Decompose: %v", err)
	}
	if err := h.Recompose(data, dims, level); err != nil {
		t.Fatalf("Recompose: %v", err)
	}

	for i := range orig {
		if math.Abs(float64(orig[i])-float64(data[i])) > 1e-9 {
			t.Fatalf("element %d: got %v, want %v", i, data[i], orig[i])
		}
	}
}

func TestHaarRoundTrip1D(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	roundTrip(t, mdr.Dims{8}, 2, data)
}

func TestHaarRoundTripOddExtent(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5}
	roundTrip(t, mdr.Dims{5}, 1, data)
}

func TestHaarRoundTrip2D(t *testing.T) {
	data := make([]float64, 8*8)
	for i := range data {
		data[i] = float64(i) * 0.37
	}
	roundTrip(t, mdr.Dims{8, 8}, 2, data)
}

func TestHaarRoundTrip3DFloat32(t *testing.T) {
	data := make([]float32, 8*8*8)
	for i := range data {
		data[i] = float32(i%17) - 8
	}
	roundTrip(t, mdr.Dims{8, 8, 8}, 2, data)
}

func TestHaarDecomposeConstantArray1D(t *testing.T) {
	dims := mdr.Dims{8}
	data := make([]float64, 8)
	for i := range data {
		data[i] = 5.0
	}
	h := NewHaar[float64]()
	if err := h.Decompose(data, dims, 2); err != nil {
		t.Fatalf("Decompose: %v", err)
	}
	// In 1D the low/high split is a flat prefix/suffix at every level, so a
	// constant input must leave every detail (high) coefficient at zero.
	for i := 4; i < len(data); i++ {
		if data[i] != 0 {
			t.Errorf("detail coefficient at %d = %v, want 0 for constant input", i, data[i])
		}
	}
	if data[0] != 5.0 {
		t.Errorf("coarse coefficient = %v, want 5.0", data[0])
	}
}

func TestHaarInvalidTargetLevel(t *testing.T) {
	h := NewHaar[float64]()
	data := make([]float64, 4)
	if err := h.Decompose(data, mdr.Dims{4}, 5); err == nil {
		t.Fatal("expected error for target level exceeding MaxLevel")
	}
}

func TestHaarDataLengthMismatch(t *testing.T) {
	h := NewHaar[float64]()
	data := make([]float64, 3)
	if err := h.Decompose(data, mdr.Dims{4}, 0); err == nil {
		t.Fatal("expected error for data/dims length mismatch")
	}
}
