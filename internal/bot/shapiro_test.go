package bot

import (
	"math"
	"testing"
)

func TestShapiroWilk(t *testing.T) {
	tests := []struct {
		name   string
		sample []float64
		normal bool
	}{
		{"three evenly spaced", []float64{3, 1, 2}, true},
		{"bell shaped", []float64{1, 2, 2, 3, 3, 3, 4, 4, 5}, true},
		{"single outlier", []float64{0, 0, 0, 0, 0, 0, 0, 0, 0, 20}, false},
		{"large skewed", []float64{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 2, 40}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, p, err := ShapiroWilk(tt.sample)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if w <= 0 || w > 1 {
				t.Errorf("W out of range: %f", w)
			}
			if p < 0 || p > 1 {
				t.Errorf("p out of range: %f", p)
			}
			if got := p > gaussAlpha; got != tt.normal {
				t.Errorf("expected normal=%v, got W=%.4f p=%.4f", tt.normal, w, p)
			}
		})
	}
}

func TestShapiroWilkPerfectThree(t *testing.T) {
	w, p, err := ShapiroWilk([]float64{1, 2, 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(w-1) > 1e-9 || math.Abs(p-1) > 1e-9 {
		t.Errorf("expected W=1 p=1, got W=%f p=%f", w, p)
	}
}

func TestShapiroWilkRejectsDegenerate(t *testing.T) {
	if _, _, err := ShapiroWilk([]float64{1, 2}); err == nil {
		t.Error("expected error for two observations")
	}
	if _, _, err := ShapiroWilk([]float64{4, 4, 4, 4}); err == nil {
		t.Error("expected error for constant sample")
	}
}

func TestShapiroWilkDoesNotReorderInput(t *testing.T) {
	in := []float64{5, 1, 3}
	if _, _, err := ShapiroWilk(in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in[0] != 5 || in[1] != 1 || in[2] != 3 {
		t.Errorf("input mutated: %v", in)
	}
}
