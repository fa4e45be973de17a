package control

import (
	"voxelbrain/internal/grid"
	"voxelbrain/internal/nn"
)

// scriptedFunction records its inputs and answers with emit.
type scriptedFunction struct {
	in, out int
	params  []float64
	emit    func(t float64, input []float64) []float64
	inputs  [][]float64
	resets  int
}

func (f *scriptedFunction) Apply(t float64, input []float64) ([]float64, error) {
	f.inputs = append(f.inputs, append([]float64(nil), input...))
	out := make([]float64, f.out)
	if f.emit != nil {
		copy(out, f.emit(t, input))
	}
	return out, nil
}

func (f *scriptedFunction) Params() []float64 { return append([]float64(nil), f.params...) }

func (f *scriptedFunction) SetParams(p []float64) error {
	if len(p) != len(f.params) {
		return nn.ErrDimensionMismatch
	}
	copy(f.params, p)
	return nil
}

func (f *scriptedFunction) InputDim() int  { return f.in }
func (f *scriptedFunction) OutputDim() int { return f.out }
func (f *scriptedFunction) Reset()         { f.resets++ }

// scriptedFactory hands out scripted functions in canonical cell order and
// keeps them for inspection.
type scriptedFactory struct {
	params int
	emit   func(cell int) func(t float64, input []float64) []float64
	made   []*scriptedFunction
}

func (s *scriptedFactory) build(in, out int) (nn.Function, error) {
	f := &scriptedFunction{in: in, out: out, params: make([]float64, s.params)}
	if s.emit != nil {
		f.emit = s.emit(len(s.made))
	}
	s.made = append(s.made, f)
	return f, nil
}

func sensorGrid(body grid.Grid[bool], sensors int, value float64) grid.Grid[[]float64] {
	return grid.Map(body, func(grid.Cell, bool) []float64 {
		out := make([]float64, sensors)
		for i := range out {
			out[i] = value
		}
		return out
	})
}

// clockController publishes t + x for every occupied cell.
type clockController struct {
	body   grid.Grid[bool]
	calls  int
	resets int
}

func (c *clockController) Control(t float64, _ grid.Grid[[]float64]) (grid.Grid[float64], error) {
	c.calls++
	return grid.Map(c.body, func(cell grid.Cell, _ bool) float64 { return t + float64(cell.X) }), nil
}

func (c *clockController) Reset() { c.resets++ }

// constantController publishes a fixed value for every occupied cell.
type constantController struct {
	body  grid.Grid[bool]
	value float64
}

func (c *constantController) Control(float64, grid.Grid[[]float64]) (grid.Grid[float64], error) {
	return grid.Map(c.body, func(grid.Cell, bool) float64 { return c.value }), nil
}

func (c *constantController) Reset() {}
