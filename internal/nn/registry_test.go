package nn

import (
	"errors"
	"math"
	"testing"
)

func TestRegisterAndGetActivation(t *testing.T) {
	resetActivationRegistryForTests()
	t.Cleanup(resetActivationRegistryForTests)

	if err := RegisterActivation("quad", func(x float64) float64 { return x * x }, Domain{Min: 0, Max: math.Inf(1)}); err != nil {
		t.Fatalf("register activation: %v", err)
	}
	fn, err := GetActivation("quad")
	if err != nil {
		t.Fatalf("get activation: %v", err)
	}
	if got := fn(3); got != 9 {
		t.Fatalf("unexpected activation result: got=%f want=9", got)
	}
	domain, err := ActivationDomain("quad")
	if err != nil {
		t.Fatalf("activation domain: %v", err)
	}
	if domain.Min != 0 || !math.IsInf(domain.Max, 1) {
		t.Fatalf("unexpected domain: %+v", domain)
	}
}

func TestRegisterActivationValidation(t *testing.T) {
	resetActivationRegistryForTests()
	t.Cleanup(resetActivationRegistryForTests)

	if err := RegisterActivation("", func(x float64) float64 { return x }, Unbounded()); err == nil {
		t.Fatal("expected empty name error")
	}
	if err := RegisterActivation("nil", nil, Unbounded()); err == nil {
		t.Fatal("expected nil function error")
	}
	if err := RegisterActivationWithSpec(ActivationSpec{
		Name:          "bad-version",
		Func:          func(x float64) float64 { return x },
		SchemaVersion: 99,
		CodecVersion:  1,
	}); !errors.Is(err, ErrActivationVersion) {
		t.Fatalf("expected ErrActivationVersion, got: %v", err)
	}
}

func TestRegisterActivationDuplicate(t *testing.T) {
	resetActivationRegistryForTests()
	t.Cleanup(resetActivationRegistryForTests)

	if err := RegisterActivation(ActivationSin, math.Cos, Unbounded()); !errors.Is(err, ErrActivationExists) {
		t.Fatalf("expected ErrActivationExists, got: %v", err)
	}
}

func TestGetActivationNotFound(t *testing.T) {
	resetActivationRegistryForTests()
	t.Cleanup(resetActivationRegistryForTests)

	_, err := GetActivation("missing")
	if !errors.Is(err, ErrActivationNotFound) {
		t.Fatalf("expected ErrActivationNotFound, got: %v", err)
	}
}

func TestUnknownActivationIsConfigurationError(t *testing.T) {
	_, err := NewMLP("softplus", []int{1, 1}, nil)
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got: %v", err)
	}
	if !errors.Is(err, ErrActivationNotFound) {
		t.Fatalf("expected wrapped ErrActivationNotFound, got: %v", err)
	}
}

func TestListActivationsSorted(t *testing.T) {
	names := ListActivations()
	want := []Activation{ActivationIdentity, ActivationReLU, ActivationSigmoid, ActivationSin, ActivationTanh}
	if len(names) != len(want) {
		t.Fatalf("unexpected activation list: %+v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("unexpected activation list: %+v", names)
		}
	}
}

func TestBuiltinDomains(t *testing.T) {
	cases := map[Activation]Domain{
		ActivationSigmoid: {Min: 0, Max: 1},
		ActivationTanh:    {Min: -1, Max: 1},
		ActivationSin:     {Min: -1, Max: 1},
	}
	for name, want := range cases {
		got, err := ActivationDomain(name)
		if err != nil {
			t.Fatalf("domain %s: %v", name, err)
		}
		if got != want {
			t.Fatalf("domain %s: got=%+v want=%+v", name, got, want)
		}
		fn, _ := GetActivation(name)
		for _, x := range []float64{-10, -1, 0, 1, 10} {
			if !got.Contains(fn(x)) {
				t.Fatalf("%s(%f)=%f outside %+v", name, x, fn(x), got)
			}
		}
	}
}
