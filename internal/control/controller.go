// Package control drives a modular body: it turns per-cell sensor readings
// into one actuation value per occupied cell, round by round.
package control

import (
	"errors"
	"fmt"

	"voxelbrain/internal/grid"
	"voxelbrain/internal/nn"
)

var ErrNotParametrized = errors.New("controller has no parameters")

// Controller computes one actuation per occupied cell for instant t.
// inputs holds the sensor readings of every occupied cell.
type Controller interface {
	Control(t float64, inputs grid.Grid[[]float64]) (grid.Grid[float64], error)
	Reset()
}

// Parametrized controllers expose a flat parameter vector for optimization.
type Parametrized interface {
	Params() []float64
	SetParams(params []float64) error
}

// Wrapper is implemented by controllers that decorate another controller.
type Wrapper interface {
	Unwrap() Controller
}

// Params returns the parameters of the outermost parametrized controller in
// the wrapper chain starting at c.
func Params(c Controller) ([]float64, error) {
	p, err := findParametrized(c)
	if err != nil {
		return nil, err
	}
	return p.Params(), nil
}

// SetParams sets the parameters of the outermost parametrized controller in
// the wrapper chain starting at c.
func SetParams(c Controller, params []float64) error {
	p, err := findParametrized(c)
	if err != nil {
		return err
	}
	return p.SetParams(params)
}

func findParametrized(c Controller) (Parametrized, error) {
	for c != nil {
		if p, ok := c.(Parametrized); ok {
			return p, nil
		}
		w, ok := c.(Wrapper)
		if !ok {
			break
		}
		c = w.Unwrap()
	}
	return nil, ErrNotParametrized
}

// FunctionFactory builds the neural function of one cell.
type FunctionFactory func(inputDim, outputDim int) (nn.Function, error)

func checkFunction(fn nn.Function, inputDim, outputDim int) error {
	if fn == nil {
		return fmt.Errorf("%w: factory returned no function", nn.ErrInvalidConfiguration)
	}
	if fn.InputDim() != inputDim {
		return fmt.Errorf("%w: function input got=%d want=%d", nn.ErrDimensionMismatch, fn.InputDim(), inputDim)
	}
	if fn.OutputDim() != outputDim {
		return fmt.Errorf("%w: function output got=%d want=%d", nn.ErrDimensionMismatch, fn.OutputDim(), outputDim)
	}
	return nil
}

func occupiedCells(body grid.Grid[bool]) []grid.Cell {
	out := make([]grid.Cell, 0)
	for _, c := range body.Cells() {
		if v, _ := body.Get(c.X, c.Y); v {
			out = append(out, c)
		}
	}
	return out
}

func checkInputGrid(body grid.Grid[bool], inputs grid.Grid[[]float64]) error {
	if inputs.W() != body.W() || inputs.H() != body.H() {
		return fmt.Errorf("%w: input grid %dx%d want=%dx%d", nn.ErrDimensionMismatch, inputs.W(), inputs.H(), body.W(), body.H())
	}
	return nil
}

func sensorsAt(inputs grid.Grid[[]float64], c grid.Cell, want int) ([]float64, error) {
	values, ok := inputs.Get(c.X, c.Y)
	if !ok {
		return nil, fmt.Errorf("%w: no sensor reading for cell (%d,%d)", nn.ErrDimensionMismatch, c.X, c.Y)
	}
	if len(values) != want {
		return nil, fmt.Errorf("%w: cell (%d,%d) sensors got=%d want=%d", nn.ErrDimensionMismatch, c.X, c.Y, len(values), want)
	}
	return values, nil
}
