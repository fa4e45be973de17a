package nn

import (
	"errors"
	"math"
	"testing"
)

func hebbCoefficients(edges int, a, b, c, d float64) []float64 {
	out := make([]float64, 0, 4*edges)
	for i := 0; i < edges; i++ {
		out = append(out, a, b, c, d)
	}
	return out
}

func TestHebbianUpdateRule(t *testing.T) {
	h, err := NewHebbianMLP(ActivationIdentity, []int{1, 1}, hebbCoefficients(2, 1, 0, 0, 0), HebbianOptions{
		InitialWeights: []float64{0, 1},
		LearningRate:   0.1,
	})
	if err != nil {
		t.Fatalf("new hebbian: %v", err)
	}
	out, err := h.Apply(0, []float64{2})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if out[0] != 2 {
		t.Fatalf("unexpected first output: %f", out[0])
	}
	// bias: 0 + 0.1*(2*1) = 0.2, weight: 1 + 0.1*(2*2) = 1.4
	w := h.Weights()
	if math.Abs(w[0]-0.2) > 1e-12 || math.Abs(w[1]-1.4) > 1e-12 {
		t.Fatalf("unexpected weights after update: %v", w)
	}
	out, _ = h.Apply(0, []float64{2})
	if math.Abs(out[0]-3.0) > 1e-12 {
		t.Fatalf("update not applied to next call: %f", out[0])
	}
}

func TestHebbianAllCoefficientTerms(t *testing.T) {
	// A=1 B=2 C=3 D=4, pre=2, post=w*pre=1: dw = 0.5*(2 + 2 + 6 + 4) = 7
	h, err := NewHebbianMLP(ActivationIdentity, []int{1, 1}, []float64{0, 0, 0, 0, 1, 2, 3, 4}, HebbianOptions{
		InitialWeights: []float64{0, 0.5},
		LearningRates:  []float64{0, 0.5},
	})
	if err != nil {
		t.Fatalf("new hebbian: %v", err)
	}
	if _, err := h.Apply(0, []float64{2}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if w := h.Weights(); w[0] != 0 || w[1] != 7.5 {
		t.Fatalf("unexpected weights: %v", w)
	}
}

func TestHebbianResetRestoresConstructionWeights(t *testing.T) {
	layers := []int{3, 4, 2}
	initial := randomParams(CountWeights(layers), 3)
	h, err := NewHebbianMLP(ActivationTanh, layers, randomParams(4*CountWeights(layers), 5), HebbianOptions{
		InitialWeights: initial,
	})
	if err != nil {
		t.Fatalf("new hebbian: %v", err)
	}
	for i := 0; i < 25; i++ {
		if _, err := h.Apply(float64(i), []float64{0.1 * float64(i), -0.2, 0.7}); err != nil {
			t.Fatalf("apply: %v", err)
		}
	}
	changed := false
	for i, w := range h.Weights() {
		if w != initial[i] {
			changed = true
		}
	}
	if !changed {
		t.Fatal("expected learning to change weights")
	}
	h.Reset()
	for i, w := range h.Weights() {
		if w != initial[i] {
			t.Fatalf("weight %d not restored: got=%f want=%f", i, w, initial[i])
		}
	}
}

func TestHebbianLearningToggle(t *testing.T) {
	h, _ := NewHebbianMLP(ActivationIdentity, []int{1, 1}, hebbCoefficients(2, 1, 1, 1, 1), HebbianOptions{
		InitialWeights: []float64{0.1, 0.2},
	})
	h.SetLearning(false)
	for i := 0; i < 5; i++ {
		_, _ = h.Apply(0, []float64{1})
	}
	if w := h.Weights(); w[0] != 0.1 || w[1] != 0.2 {
		t.Fatalf("weights changed with learning disabled: %v", w)
	}
	h.SetLearning(true)
	_, _ = h.Apply(0, []float64{1})
	if w := h.Weights(); w[1] == 0.2 {
		t.Fatal("weights unchanged with learning enabled")
	}
}

func TestHebbianNormalization(t *testing.T) {
	h, _ := NewHebbianMLP(ActivationIdentity, []int{1, 1}, hebbCoefficients(2, 1, 0, 0, 0), HebbianOptions{
		InitialWeights: []float64{0, 1},
		LearningRate:   1,
		Normalize:      true,
	})
	_, _ = h.Apply(0, []float64{2})
	// raw update gives [2, 5], rescaled by 5
	w := h.Weights()
	if math.Abs(w[0]-0.4) > 1e-12 || math.Abs(w[1]-1) > 1e-12 {
		t.Fatalf("unexpected normalized weights: %v", w)
	}
}

func TestHebbianParamsAreCoefficients(t *testing.T) {
	layers := []int{2, 2}
	h, err := NewHebbianMLP(ActivationTanh, layers, nil, HebbianOptions{})
	if err != nil {
		t.Fatalf("new hebbian: %v", err)
	}
	if got, want := len(h.Params()), 4*CountWeights(layers); got != want {
		t.Fatalf("unexpected param length: got=%d want=%d", got, want)
	}
	if err := h.SetParams(make([]float64, CountWeights(layers))); !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got: %v", err)
	}
	if _, err := NewHebbianMLP(ActivationTanh, layers, nil, HebbianOptions{LearningRates: []float64{1}}); !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch for rates, got: %v", err)
	}
	if _, err := NewHebbianMLP(ActivationTanh, layers, nil, HebbianOptions{InitialWeights: []float64{1}}); !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch for weights, got: %v", err)
	}
}
