package control

import (
	"fmt"

	"voxelbrain/internal/grid"
	"voxelbrain/internal/nn"
)

// GridNetworkConfig describes the per-cell controllers of a GridNetwork.
type GridNetworkConfig struct {
	// Sensors is the number of local sensor readings per cell.
	Sensors int
	// Signals is the width of the block exchanged with each neighbor.
	Signals int
	// Directional cells emit one block per direction; otherwise a single
	// block is broadcast towards every neighbor.
	Directional bool
	// Homogeneous cells share one parameter vector.
	Homogeneous bool
	Factory     FunctionFactory
}

type cellState struct {
	pos      grid.Cell
	fn       nn.Function
	params   int
	input    []float64
	previous []float64
	current  []float64
}

// GridNetwork runs one neural function per occupied cell and lets cells
// exchange signal blocks with their four neighbors. Every round gathers the
// committed signals of the previous round, computes all cells, and only then
// commits the new signals, so evaluation order never matters.
type GridNetwork struct {
	body  grid.Grid[bool]
	cfg   GridNetworkConfig
	cells []*cellState
	index grid.Grid[int]
}

func NewGridNetwork(body grid.Grid[bool], cfg GridNetworkConfig) (*GridNetwork, error) {
	if cfg.Sensors < 0 || cfg.Signals < 0 {
		return nil, fmt.Errorf("%w: sensors=%d signals=%d", nn.ErrInvalidConfiguration, cfg.Sensors, cfg.Signals)
	}
	if cfg.Factory == nil {
		return nil, fmt.Errorf("%w: function factory is required", nn.ErrInvalidConfiguration)
	}
	positions := occupiedCells(body)
	if len(positions) == 0 {
		return nil, fmt.Errorf("%w: body has no occupied cell", nn.ErrInvalidConfiguration)
	}

	n := &GridNetwork{
		body:  body.Clone(),
		cfg:   cfg,
		cells: make([]*cellState, 0, len(positions)),
		index: grid.Like[int](body),
	}
	inputDim, outputDim := n.CellInputDim(), n.CellOutputDim()
	for i, pos := range positions {
		fn, err := cfg.Factory(inputDim, outputDim)
		if err != nil {
			return nil, fmt.Errorf("cell (%d,%d): %w", pos.X, pos.Y, err)
		}
		if err := checkFunction(fn, inputDim, outputDim); err != nil {
			return nil, fmt.Errorf("cell (%d,%d): %w", pos.X, pos.Y, err)
		}
		n.cells = append(n.cells, &cellState{
			pos:      pos,
			fn:       fn,
			params:   len(fn.Params()),
			input:    make([]float64, inputDim),
			previous: make([]float64, 4*cfg.Signals),
			current:  make([]float64, 4*cfg.Signals),
		})
		n.index.Set(pos.X, pos.Y, i)
	}
	if cfg.Homogeneous {
		for _, c := range n.cells[1:] {
			if c.params != n.cells[0].params {
				return nil, fmt.Errorf("%w: homogeneous cells need equal parameter counts", nn.ErrInvalidConfiguration)
			}
		}
	}
	return n, nil
}

// CellInputDim is sensors + 4*signals.
func (n *GridNetwork) CellInputDim() int {
	return n.cfg.Sensors + 4*n.cfg.Signals
}

// CellOutputDim is 1 actuation plus the outgoing signals.
func (n *GridNetwork) CellOutputDim() int {
	if n.cfg.Directional {
		return 1 + 4*n.cfg.Signals
	}
	return 1 + n.cfg.Signals
}

func (n *GridNetwork) Body() grid.Grid[bool] {
	return n.body.Clone()
}

func (n *GridNetwork) Signals() int {
	return n.cfg.Signals
}

func (n *GridNetwork) Directional() bool {
	return n.cfg.Directional
}

// Control runs one gather, compute, commit round. Every sensor reading is
// checked before any cell function runs; on error nothing is committed.
func (n *GridNetwork) Control(t float64, inputs grid.Grid[[]float64]) (grid.Grid[float64], error) {
	if err := checkInputGrid(n.body, inputs); err != nil {
		return grid.Grid[float64]{}, err
	}

	readings := make([][]float64, len(n.cells))
	for i, c := range n.cells {
		sensors, err := sensorsAt(inputs, c.pos, n.cfg.Sensors)
		if err != nil {
			return grid.Grid[float64]{}, err
		}
		readings[i] = sensors
	}

	outputs := make([][]float64, len(n.cells))
	for i, c := range n.cells {
		copy(c.input, readings[i])
		n.gather(c, c.input[n.cfg.Sensors:])

		out, err := c.fn.Apply(t, c.input)
		if err != nil {
			return grid.Grid[float64]{}, fmt.Errorf("cell (%d,%d): %w", c.pos.X, c.pos.Y, err)
		}
		if len(out) != n.CellOutputDim() {
			return grid.Grid[float64]{}, fmt.Errorf("%w: cell (%d,%d) output got=%d want=%d", nn.ErrDimensionMismatch, c.pos.X, c.pos.Y, len(out), n.CellOutputDim())
		}
		outputs[i] = out
	}

	actuation := grid.Like[float64](n.body)
	for i, c := range n.cells {
		n.commit(c, outputs[i][1:])
		actuation.Set(c.pos.X, c.pos.Y, outputs[i][0])
	}
	return actuation, nil
}

// gather fills dst with the signals last committed by the neighbors: the
// block received from direction d is what that neighbor sent towards d's
// opposite.
func (n *GridNetwork) gather(c *cellState, dst []float64) {
	s := n.cfg.Signals
	for _, d := range grid.Directions {
		block := dst[int(d)*s : (int(d)+1)*s]
		nb := c.pos.Neighbor(d)
		j, ok := n.index.Get(nb.X, nb.Y)
		if !ok {
			clear(block)
			continue
		}
		from := int(d.Opposite()) * s
		copy(block, n.cells[j].current[from:from+s])
	}
}

func (n *GridNetwork) commit(c *cellState, signals []float64) {
	c.previous, c.current = c.current, c.previous
	if n.cfg.Directional {
		copy(c.current, signals)
		return
	}
	s := n.cfg.Signals
	for _, d := range grid.Directions {
		copy(c.current[int(d)*s:(int(d)+1)*s], signals)
	}
}

// Reset zeroes every signal buffer and resets the cell functions.
func (n *GridNetwork) Reset() {
	for _, c := range n.cells {
		clear(c.previous)
		clear(c.current)
		clear(c.input)
		nn.ResetIfSupported(c.fn)
	}
}

// Params concatenates the cell parameters in canonical cell order, or returns
// the shared vector when cells are homogeneous.
func (n *GridNetwork) Params() []float64 {
	if n.cfg.Homogeneous {
		return n.cells[0].fn.Params()
	}
	out := make([]float64, 0)
	for _, c := range n.cells {
		out = append(out, c.fn.Params()...)
	}
	return out
}

func (n *GridNetwork) SetParams(params []float64) error {
	if n.cfg.Homogeneous {
		if len(params) != n.cells[0].params {
			return fmt.Errorf("%w: params got=%d want=%d", nn.ErrDimensionMismatch, len(params), n.cells[0].params)
		}
		for _, c := range n.cells {
			if err := c.fn.SetParams(params); err != nil {
				return err
			}
		}
		return nil
	}

	want := 0
	for _, c := range n.cells {
		want += c.params
	}
	if len(params) != want {
		return fmt.Errorf("%w: params got=%d want=%d", nn.ErrDimensionMismatch, len(params), want)
	}
	offset := 0
	for _, c := range n.cells {
		if err := c.fn.SetParams(params[offset : offset+c.params]); err != nil {
			return fmt.Errorf("cell (%d,%d): %w", c.pos.X, c.pos.Y, err)
		}
		offset += c.params
	}
	return nil
}

// Function returns the neural function of the cell at (x, y).
func (n *GridNetwork) Function(x, y int) (nn.Function, bool) {
	i, ok := n.index.Get(x, y)
	if !ok {
		return nil, false
	}
	return n.cells[i].fn, true
}

// Current returns a copy of the signals committed by (x, y) in the last round.
func (n *GridNetwork) Current(x, y int) ([]float64, bool) {
	i, ok := n.index.Get(x, y)
	if !ok {
		return nil, false
	}
	return append([]float64(nil), n.cells[i].current...), true
}

// Previous returns a copy of the signals committed by (x, y) one round earlier.
func (n *GridNetwork) Previous(x, y int) ([]float64, bool) {
	i, ok := n.index.Get(x, y)
	if !ok {
		return nil, false
	}
	return append([]float64(nil), n.cells[i].previous...), true
}

// LastInput returns a copy of the input vector the cell at (x, y) received in
// the last round.
func (n *GridNetwork) LastInput(x, y int) ([]float64, bool) {
	i, ok := n.index.Get(x, y)
	if !ok {
		return nil, false
	}
	return append([]float64(nil), n.cells[i].input...), true
}
