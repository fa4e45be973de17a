package control

import (
	"fmt"
	"math"

	"voxelbrain/internal/grid"
	"voxelbrain/internal/nn"
)

type HoldMode string

const (
	// HoldStep repeats the last computed grid between updates.
	HoldStep HoldMode = "step"
	// HoldImpulse publishes zeros between updates.
	HoldImpulse HoldMode = "impulse"
)

// Discontinuous only consults its inner controller every interval.
type Discontinuous struct {
	inner    Controller
	interval float64
	mode     HoldMode

	last    grid.Grid[float64]
	lastT   float64
	hasLast bool
}

func NewDiscontinuous(inner Controller, interval float64, mode HoldMode) (*Discontinuous, error) {
	if inner == nil {
		return nil, fmt.Errorf("%w: inner controller is required", nn.ErrInvalidConfiguration)
	}
	if interval < 0 || math.IsNaN(interval) {
		return nil, fmt.Errorf("%w: negative interval %v", nn.ErrInvalidConfiguration, interval)
	}
	if mode == "" {
		mode = HoldStep
	}
	if mode != HoldStep && mode != HoldImpulse {
		return nil, fmt.Errorf("%w: unsupported hold mode %q", nn.ErrInvalidConfiguration, mode)
	}
	return &Discontinuous{inner: inner, interval: interval, mode: mode}, nil
}

func (d *Discontinuous) Control(t float64, inputs grid.Grid[[]float64]) (grid.Grid[float64], error) {
	if !d.hasLast || t-d.lastT >= d.interval {
		out, err := d.inner.Control(t, inputs)
		if err != nil {
			return out, err
		}
		d.last = out.Clone()
		d.lastT = t
		d.hasLast = true
		return out, nil
	}
	if d.mode == HoldImpulse {
		return grid.Map(d.last, func(grid.Cell, float64) float64 { return 0 }), nil
	}
	return d.last.Clone(), nil
}

func (d *Discontinuous) Reset() {
	d.last = grid.Grid[float64]{}
	d.lastT = 0
	d.hasLast = false
	d.inner.Reset()
}

func (d *Discontinuous) Unwrap() Controller {
	return d.inner
}

// Smoothed moves each published actuation towards the inner controller's
// value by at most speed per time unit.
type Smoothed struct {
	inner Controller
	speed float64

	current grid.Grid[float64]
	lastT   float64
	started bool
}

func NewSmoothed(inner Controller, speed float64) (*Smoothed, error) {
	if inner == nil {
		return nil, fmt.Errorf("%w: inner controller is required", nn.ErrInvalidConfiguration)
	}
	if speed < 0 || math.IsNaN(speed) {
		return nil, fmt.Errorf("%w: negative speed %v", nn.ErrInvalidConfiguration, speed)
	}
	return &Smoothed{inner: inner, speed: speed}, nil
}

func (s *Smoothed) Control(t float64, inputs grid.Grid[[]float64]) (grid.Grid[float64], error) {
	target, err := s.inner.Control(t, inputs)
	if err != nil {
		return target, err
	}
	if !s.started || !grid.SameShape(s.current, target) {
		s.current = grid.Map(target, func(grid.Cell, float64) float64 { return 0 })
		s.lastT = t
		s.started = true
	}
	maxStep := s.speed * (t - s.lastT)
	if maxStep < 0 {
		maxStep = 0
	}
	for _, c := range target.Cells() {
		want, _ := target.Get(c.X, c.Y)
		cur, _ := s.current.Get(c.X, c.Y)
		s.current.Set(c.X, c.Y, cur+nn.Sat(want-cur, maxStep, -maxStep))
	}
	s.lastT = t
	return s.current.Clone(), nil
}

func (s *Smoothed) Reset() {
	s.current = grid.Grid[float64]{}
	s.lastT = 0
	s.started = false
	s.inner.Reset()
}

func (s *Smoothed) Unwrap() Controller {
	return s.inner
}

// Step calls its inner controller every round but refreshes the published
// grid only every stepT.
type Step struct {
	inner Controller
	stepT float64

	last    grid.Grid[float64]
	lastT   float64
	hasLast bool
}

func NewStep(inner Controller, stepT float64) (*Step, error) {
	if inner == nil {
		return nil, fmt.Errorf("%w: inner controller is required", nn.ErrInvalidConfiguration)
	}
	if stepT < 0 || math.IsNaN(stepT) {
		return nil, fmt.Errorf("%w: negative step %v", nn.ErrInvalidConfiguration, stepT)
	}
	return &Step{inner: inner, stepT: stepT}, nil
}

func (s *Step) Control(t float64, inputs grid.Grid[[]float64]) (grid.Grid[float64], error) {
	out, err := s.inner.Control(t, inputs)
	if err != nil {
		return out, err
	}
	if !s.hasLast || t-s.lastT >= s.stepT {
		s.last = out.Clone()
		s.lastT = t
		s.hasLast = true
	}
	return s.last.Clone(), nil
}

func (s *Step) Reset() {
	s.last = grid.Grid[float64]{}
	s.lastT = 0
	s.hasLast = false
	s.inner.Reset()
}

func (s *Step) Unwrap() Controller {
	return s.inner
}
