package testutil

import (
	"math"
	"testing"
)

func TestMaxAbsDiff(t *testing.T) {
	t.Parallel()

	d, err := MaxAbsDiff([]float32{1, 2, 3}, []float32{1, 2.5, 3})
	if err != nil {
		t.Fatalf("MaxAbsDiff error: %v", err)
	}

	if d != 0.5 {
		t.Fatalf("MaxAbsDiff = %v, want 0.5", d)
	}
}

func TestMaxAbsDiffLengthMismatch(t *testing.T) {
	t.Parallel()

	_, err := MaxAbsDiff([]float32{1}, []float32{1, 2})
	if err == nil {
		t.Fatal("expected error for length mismatch")
	}
}

func TestMaxAbsDiffIdentical(t *testing.T) {
	t.Parallel()

	a := []float32{1, 2, 3}

	d, err := MaxAbsDiff(a, a)
	if err != nil {
		t.Fatalf("MaxAbsDiff error: %v", err)
	}

	if d != 0 {
		t.Fatalf("MaxAbsDiff = %v, want 0 for identical slices", d)
	}
}

func TestMaxAbsDiffNaN(t *testing.T) {
	t.Parallel()

	nan := float32(math.NaN())

	d, err := MaxAbsDiff([]float32{nan, 5}, []float32{0, 1})
	if err != nil {
		t.Fatalf("MaxAbsDiff error: %v", err)
	}

	if !math.IsNaN(float64(d)) {
		t.Fatalf("MaxAbsDiff = %v, want NaN", d)
	}
}

func TestRequireSliceNearPasses(t *testing.T) {
	t.Parallel()

	RequireSliceNear(t, []float32{0.1, 0.2}, []float32{0.1, 0.2000001}, 1e-6)
	RequireNear(t, 8, 8.0000001, 1e-6)
	RequireFinite(t, []float32{0, 1, -1})
}
