package control

import (
	"fmt"

	"voxelbrain/internal/grid"
	"voxelbrain/internal/nn"
)

// Centralized feeds the readings of every occupied cell, concatenated in
// canonical order, to a single function producing one actuation per cell.
type Centralized struct {
	body    grid.Grid[bool]
	cells   []grid.Cell
	sensors int
	fn      nn.Function
	input   []float64
}

func NewCentralized(body grid.Grid[bool], sensors int, factory FunctionFactory) (*Centralized, error) {
	if sensors < 0 {
		return nil, fmt.Errorf("%w: sensors=%d", nn.ErrInvalidConfiguration, sensors)
	}
	if factory == nil {
		return nil, fmt.Errorf("%w: function factory is required", nn.ErrInvalidConfiguration)
	}
	cells := occupiedCells(body)
	if len(cells) == 0 {
		return nil, fmt.Errorf("%w: body has no occupied cell", nn.ErrInvalidConfiguration)
	}
	inputDim, outputDim := sensors*len(cells), len(cells)
	fn, err := factory(inputDim, outputDim)
	if err != nil {
		return nil, err
	}
	if err := checkFunction(fn, inputDim, outputDim); err != nil {
		return nil, err
	}
	return &Centralized{
		body:    body.Clone(),
		cells:   cells,
		sensors: sensors,
		fn:      fn,
		input:   make([]float64, inputDim),
	}, nil
}

func (c *Centralized) Control(t float64, inputs grid.Grid[[]float64]) (grid.Grid[float64], error) {
	if err := checkInputGrid(c.body, inputs); err != nil {
		return grid.Grid[float64]{}, err
	}
	for i, pos := range c.cells {
		values, err := sensorsAt(inputs, pos, c.sensors)
		if err != nil {
			return grid.Grid[float64]{}, err
		}
		copy(c.input[i*c.sensors:], values)
	}
	out, err := c.fn.Apply(t, c.input)
	if err != nil {
		return grid.Grid[float64]{}, err
	}
	if len(out) != len(c.cells) {
		return grid.Grid[float64]{}, fmt.Errorf("%w: output got=%d want=%d", nn.ErrDimensionMismatch, len(out), len(c.cells))
	}
	actuation := grid.Like[float64](c.body)
	for i, pos := range c.cells {
		actuation.Set(pos.X, pos.Y, out[i])
	}
	return actuation, nil
}

func (c *Centralized) Reset() {
	clear(c.input)
	nn.ResetIfSupported(c.fn)
}

func (c *Centralized) Params() []float64 {
	return c.fn.Params()
}

func (c *Centralized) SetParams(params []float64) error {
	return c.fn.SetParams(params)
}

func (c *Centralized) Function() nn.Function {
	return c.fn
}
