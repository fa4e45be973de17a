package nn

import (
	"errors"
	"testing"
)

func TestRecurrentRequiresThreeLayers(t *testing.T) {
	for _, layers := range [][]int{{2, 1}, {2, 3, 3, 1}} {
		if _, err := NewRecurrentNetwork(ActivationTanh, layers, nil); !errors.Is(err, ErrInvalidConfiguration) {
			t.Fatalf("layers=%v: expected ErrInvalidConfiguration, got: %v", layers, err)
		}
	}
}

func TestRecurrentParamCount(t *testing.T) {
	if got := RecurrentParamCount(3, 4, 2); got != 4*(3+4+1)+2*(4+1) {
		t.Fatalf("unexpected param count: %d", got)
	}
	r, err := NewRecurrentNetwork(ActivationTanh, []int{3, 4, 2}, nil)
	if err != nil {
		t.Fatalf("new recurrent: %v", err)
	}
	if len(r.Params()) != 42 {
		t.Fatalf("unexpected params length: %d", len(r.Params()))
	}
	if err := r.SetParams(make([]float64, 26)); !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got: %v", err)
	}
}

func TestRecurrentCarriesHiddenState(t *testing.T) {
	// hidden: [bias=0, w_in=1, w_rec=1], output: [bias=0, w=1]
	r, err := NewRecurrentNetwork(ActivationIdentity, []int{1, 1, 1}, []float64{0, 1, 1, 0, 1})
	if err != nil {
		t.Fatalf("new recurrent: %v", err)
	}
	for step, want := range []float64{1, 2, 3} {
		out, err := r.Apply(float64(step), []float64{1})
		if err != nil {
			t.Fatalf("apply: %v", err)
		}
		if out[0] != want {
			t.Fatalf("step %d: got=%f want=%f", step, out[0], want)
		}
	}
	r.Reset()
	if h := r.Hidden(); h[0] != 0 {
		t.Fatalf("hidden state not cleared: %v", h)
	}
	out, _ := r.Apply(0, []float64{1})
	if out[0] != 1 {
		t.Fatalf("unexpected output after reset: %f", out[0])
	}
}

func TestRecurrentParamsRoundTrip(t *testing.T) {
	layers := []int{2, 3, 2}
	params := randomParams(RecurrentParamCount(2, 3, 2), 4)
	a, _ := NewRecurrentNetwork(ActivationTanh, layers, params)
	b, _ := NewRecurrentNetwork(ActivationTanh, layers, nil)
	if err := b.SetParams(a.Params()); err != nil {
		t.Fatalf("set params: %v", err)
	}
	for step := 0; step < 4; step++ {
		in := []float64{float64(step) * 0.1, -0.5}
		x, _ := a.Apply(0, in)
		y, _ := b.Apply(0, in)
		for i := range x {
			if x[i] != y[i] {
				t.Fatalf("step %d: outputs differ %v vs %v", step, x, y)
			}
		}
	}
}
