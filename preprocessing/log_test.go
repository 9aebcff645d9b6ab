package preprocessing_test

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/detailviews/preprocessing"
)

func TestLog1p10(t *testing.T) {
	tests := []struct {
		x, want float64
	}{
		{0, 0},
		{9, 1},
		{99, 2},
		{999, 3},
	}
	for _, tt := range tests {
		if got := preprocessing.Log1p10(tt.x); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Log1p10(%v): expected %v, got %v", tt.x, tt.want, got)
		}
	}
}

func TestLogRoundTrip(t *testing.T) {
	values := []float64{0, 0.0397, 1, 123, 3091, 16750, 2018, 1e7}
	for _, v := range values {
		got := preprocessing.Exp10m1(preprocessing.Log1p10(v))
		if math.Abs(got-v) > 1e-9*math.Max(1, v) {
			t.Errorf("round trip of %v: got %v", v, got)
		}
	}
}

func TestLogTransformer_SelectedColumns(t *testing.T) {
	X := mat.NewDense(2, 3, []float64{
		9, 5, 99,
		0, 7, 999,
	})

	lt := preprocessing.NewLogTransformer(0, 2)
	logged, err := lt.FitTransform(X)
	if err != nil {
		t.Fatalf("FitTransform failed: %v", err)
	}

	want := mat.NewDense(2, 3, []float64{
		1, 5, 2,
		0, 7, 3,
	})
	if !mat.EqualApprox(logged, want, 1e-12) {
		t.Errorf("unexpected transform:\n%v", mat.Formatted(logged))
	}

	back, err := lt.InverseTransform(logged)
	if err != nil {
		t.Fatalf("InverseTransform failed: %v", err)
	}
	if !mat.EqualApprox(back, X, 1e-9) {
		t.Errorf("round trip mismatch:\n%v", mat.Formatted(back))
	}
}

func TestLogTransformer_AllColumns(t *testing.T) {
	lt := preprocessing.NewLogTransformer()
	logged, err := lt.FitTransform(mat.NewDense(1, 2, []float64{9, 99}))
	if err != nil {
		t.Fatalf("FitTransform failed: %v", err)
	}
	if math.Abs(logged.At(0, 0)-1) > 1e-12 || math.Abs(logged.At(0, 1)-2) > 1e-12 {
		t.Errorf("expected every column transformed, got %v", mat.Formatted(logged))
	}
}

func TestLogTransformer_Errors(t *testing.T) {
	lt := preprocessing.NewLogTransformer(3)
	if err := lt.Fit(mat.NewDense(1, 2, nil)); err == nil {
		t.Error("expected error for out-of-range column index")
	}

	lt = preprocessing.NewLogTransformer(0)
	if _, err := lt.Transform(mat.NewDense(1, 1, nil)); err == nil {
		t.Error("expected NotFittedError")
	}
	_ = lt.Fit(mat.NewDense(1, 2, nil))
	if _, err := lt.Transform(mat.NewDense(1, 3, nil)); err == nil {
		t.Error("expected DimensionError")
	}
}
